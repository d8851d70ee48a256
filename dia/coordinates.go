package dia

import "go.mongodb.org/mongo-driver/v2/bson"

// Coordinates builds the GeoJSON coordinates substructure attached to
// envelope and auxiliary records at enrichment time.
//
// The -180 degree longitude shift is a deliberate storage convention:
// GeoJSON longitude ranges over [-180, 180] while ra ranges over
// [0, 360]. It must be reversed before any scientific use of the
// stored coordinate.
func Coordinates(ra, dec float64) bson.M {
	return bson.M{
		"radec_geojson": bson.M{
			"type":        "Point",
			"coordinates": bson.A{ra - 180.0, dec},
		},
	}
}
