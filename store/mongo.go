package store

import (
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// duplicateKeyCode is the MongoDB server error code for a unique-index
// violation.
const duplicateKeyCode = 11000

// IsDuplicateKeyError reports whether err represents a unique-index
// violation from a MongoDB write, covering both the single-document
// and bulk-write error shapes the driver can return.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}

	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		for _, we := range writeErr.WriteErrors {
			if we.Code == duplicateKeyCode {
				return true
			}
		}
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		if cmdErr.Code == duplicateKeyCode {
			return true
		}
	}

	var bulkErr mongo.BulkWriteException
	if errors.As(err, &bulkErr) {
		for _, we := range bulkErr.WriteErrors {
			if we.Code == duplicateKeyCode {
				return true
			}
		}
	}

	return false
}
