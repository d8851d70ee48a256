package enrich

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoCatalogCrossmatcher implements Crossmatcher against a fixed set
// of catalog collections, each indexed on a GeoJSON point field named
// "radec_geojson" using the same [ra-180, dec] convention dia.Coordinates
// writes for alert documents.
type MongoCatalogCrossmatcher struct {
	// Catalogs maps a result key (written under cross_matches in the
	// stored auxiliary document) to the *mongo.Collection holding that
	// catalog's entries.
	Catalogs map[string]*mongo.Collection
	// RadiusMeters is the search radius passed to each catalog's
	// $nearSphere query.
	RadiusMeters float64
	// Limit bounds how many matches are returned per catalog.
	Limit int64
}

// Crossmatch queries every configured catalog for entries within
// RadiusMeters of (ra, dec) and returns one array of matches per
// catalog key. A catalog with no nearby entries contributes an empty
// array, not an absent key, so downstream consumers can rely on every
// configured catalog being represented.
func (m MongoCatalogCrossmatcher) Crossmatch(ctx context.Context, ra, dec float64) (bson.M, error) {
	result := bson.M{}

	point := bson.M{
		"type":        "Point",
		"coordinates": bson.A{ra - 180.0, dec},
	}
	filter := bson.M{
		"radec_geojson": bson.M{
			"$nearSphere": bson.M{
				"$geometry":    point,
				"$maxDistance": m.RadiusMeters,
			},
		},
	}

	for key, coll := range m.Catalogs {
		opts := options.Find()
		if m.Limit > 0 {
			opts.SetLimit(m.Limit)
		}
		cur, err := coll.Find(ctx, filter, opts)
		if err != nil {
			return nil, fmt.Errorf("enrich: crossmatch against %s: %w", key, err)
		}

		var matches []bson.M
		if err := cur.All(ctx, &matches); err != nil {
			return nil, fmt.Errorf("enrich: decoding %s matches: %w", key, err)
		}
		if matches == nil {
			matches = []bson.M{}
		}
		result[key] = matches
	}

	return result, nil
}
