package store

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// MongoAlertCollection adapts a *mongo.Collection to AlertCollection.
type MongoAlertCollection struct{ Collection *mongo.Collection }

func (c MongoAlertCollection) InsertOne(ctx context.Context, doc bson.M) error {
	_, err := c.Collection.InsertOne(ctx, doc)
	return err
}

// MongoCutoutCollection adapts a *mongo.Collection to CutoutCollection.
type MongoCutoutCollection struct{ Collection *mongo.Collection }

func (c MongoCutoutCollection) InsertOne(ctx context.Context, doc bson.M) error {
	_, err := c.Collection.InsertOne(ctx, doc)
	return err
}

// MongoAuxCollection adapts a *mongo.Collection to AuxCollection.
type MongoAuxCollection struct{ Collection *mongo.Collection }

func (c MongoAuxCollection) CountByID(ctx context.Context, id int64) (int64, error) {
	return c.Collection.CountDocuments(ctx, bson.M{"_id": id})
}

func (c MongoAuxCollection) InsertOne(ctx context.Context, doc bson.M) error {
	_, err := c.Collection.InsertOne(ctx, doc)
	return err
}

// AddToSetAndTouch merges prvCandidates and fpHists into the existing
// arrays by value, deduplicating on exact document equality, and bumps
// updated_at. $addToSet/$each, rather than $push, is what gives
// reprocessing of an already-merged packet no effect on the stored
// arrays.
func (c MongoAuxCollection) AddToSetAndTouch(ctx context.Context, id int64, prvCandidates, fpHists []bson.M, updatedAt float64) error {
	update := bson.M{
		"$addToSet": bson.M{
			"prv_candidates": bson.M{"$each": prvCandidates},
			"fp_hists":       bson.M{"$each": fpHists},
		},
		"$set": bson.M{"updated_at": updatedAt},
	}
	_, err := c.Collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}
