package worker

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// unixEpochJulianDate is the Julian Date of the Unix epoch
// (1970-01-01T00:00:00Z), used to convert wall-clock time into the
// Julian Date convention the auxiliary collection's timestamps use.
const unixEpochJulianDate = 2440587.5

// defaultJulianDateNow is the default clock a Worker uses when
// Dependencies.Now is unset: wall-clock time expressed as a Julian
// Date, matching the timestamp convention of the stored records
// rather than importing an astronomy time library for a single unit
// conversion.
func defaultJulianDateNow() float64 {
	return unixEpochJulianDate + float64(time.Now().UnixNano())/86400e9
}

// noopCrossmatcher is the default enrich.Crossmatcher a Worker uses
// when none is configured: no catalogs, empty match document.
type noopCrossmatcher struct{}

func (noopCrossmatcher) Crossmatch(ctx context.Context, ra, dec float64) (bson.M, error) {
	return bson.M{}, nil
}
