// Package codec decodes a raw alert packet into a typed envelope.
//
// A packet is framed as a single magic byte, a 4-byte big-endian
// schema id, and a payload encoded under that schema:
//
//	+------+----+----+----+----+----------------------+
//	| 0x00 | S3 | S2 | S1 | S0 | payload (schema S)    |
//	+------+----+----+----+----+----------------------+
//
// The payload is Avro's binary encoding: a self-delimiting format
// whose nullable unions and byte fields this package's decoder is a
// conforming consumer of (via github.com/hamba/avro/v2). A trailing
// byte beyond the payload is ignored; nothing here asserts the buffer
// is fully drained past the parsed frame.
package codec

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hamba/avro/v2"

	"github.com/lsst-broker/alertworker/dia"
)

const (
	magicByte  byte = 0x00
	headerSize      = 5
)

// ErrMagicBytes is returned when a packet's leading byte is not the
// magic value 0x00.
var ErrMagicBytes = errors.New("codec: invalid magic byte")

// ErrDecode wraps any structural mismatch between the payload and its
// resolved schema, or between the decoded value tree and the typed
// envelope.
var ErrDecode = errors.New("codec: decode error")

// SchemaResolver resolves a (subject, version) pair to a schema. It is
// satisfied by *registry.Client.
type SchemaResolver interface {
	Resolve(ctx context.Context, subject string, version uint32) (avro.Schema, error)
}

// schemaSubject is the contextual constant every packet's schema id is
// resolved against; the wire header carries only the version.
const schemaSubject = "alert-packet"

// Decode parses a raw packet into a fully populated envelope.
func Decode(ctx context.Context, resolver SchemaResolver, raw []byte) (*dia.Envelope, error) {
	if len(raw) < headerSize {
		return nil, fmt.Errorf("%w: packet shorter than header (%d bytes)", ErrMagicBytes, len(raw))
	}
	if raw[0] != magicByte {
		return nil, fmt.Errorf("%w: got 0x%02x", ErrMagicBytes, raw[0])
	}
	schemaID := binary.BigEndian.Uint32(raw[1:headerSize])
	payload := raw[headerSize:]

	schema, err := resolver.Resolve(ctx, schemaSubject, schemaID)
	if err != nil {
		return nil, err
	}

	var tree map[string]any
	if err := avro.Unmarshal(schema, payload, &tree); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDecode, err)
	}

	envelope, err := dia.FromAvroMap(tree)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDecode, err)
	}
	return envelope, nil
}
