// Package store implements the persistence coordinator: the
// three-collection write protocol that splits one logical alert across
// a primary detection record, a cutout-imagery record, and a
// per-object auxiliary history record.
//
// The three phases are ordered so that a partial failure leaves at
// most the primary record (and, if the auxiliary phase failed, its
// cutout record) written, with no auxiliary history for that alert: a
// retry observes the duplicate primary key and fails with
// ErrAlertExists, which callers should treat as a successful (already
// ingested) outcome.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/lsst-broker/alertworker/clog"
	"github.com/lsst-broker/alertworker/dia"
	"github.com/lsst-broker/alertworker/enrich"
)

// Errors returned by ProcessAlert, one sentinel per failure mode in
// the three-phase write protocol. ErrAlertExists is the expected,
// non-fatal signal that a packet is a duplicate.
var (
	ErrAlertExists        = errors.New("store: alert already exists")
	ErrInsertAlertError   = errors.New("store: insert alert failed")
	ErrInsertCutoutError  = errors.New("store: insert cutout failed")
	ErrFindObjectIDError  = errors.New("store: find object id failed")
	ErrInsertAuxAlertError = errors.New("store: insert auxiliary record failed")
	ErrUpdateAuxAlertError = errors.New("store: update auxiliary record failed")
)

// AlertCollection is the primary collection. It must enforce
// uniqueness on _id; IsDuplicateKeyError classifies that specific
// failure.
type AlertCollection interface {
	InsertOne(ctx context.Context, doc bson.M) error
}

// CutoutCollection is the cutout-imagery collection.
type CutoutCollection interface {
	InsertOne(ctx context.Context, doc bson.M) error
}

// AuxCollection is the per-object auxiliary-history collection. It
// must support an element-wise set-union update (AddToSetAndTouch).
type AuxCollection interface {
	CountByID(ctx context.Context, id int64) (int64, error)
	InsertOne(ctx context.Context, doc bson.M) error
	AddToSetAndTouch(ctx context.Context, id int64, prvCandidates, fpHists []bson.M, updatedAt float64) error
}

// Collections groups the three handles a Coordinator writes through.
type Collections struct {
	Alerts  AlertCollection
	Cutouts CutoutCollection
	Aux     AuxCollection
}

// Coordinator implements the three-phase write protocol against one
// stream's Collections.
type Coordinator struct {
	collections Collections
	xmatch      enrich.Crossmatcher
	now         func() float64
	log         clog.Clog
}

// NewCoordinator builds a Coordinator. now returns the current time as
// a Julian Date, captured once per ProcessAlert call and used for both
// created_at and updated_at.
func NewCoordinator(collections Collections, xmatch enrich.Crossmatcher, now func() float64, log clog.Clog) *Coordinator {
	return &Coordinator{collections: collections, xmatch: xmatch, now: now, log: log}
}

// ProcessAlert persists an already decoded and enriched envelope in
// three phases: primary insert, cutout insert, auxiliary create-or-merge.
// It returns the alert's candid on success.
func (c *Coordinator) ProcessAlert(ctx context.Context, env *dia.Envelope) (int64, error) {
	done := c.log.Phase("persist alert %d", env.Candid)
	defer done()

	now := c.now()
	objectID := env.Candidate.ObjectID
	if objectID == nil {
		return 0, fmt.Errorf("%w: current candidate has no objectId", ErrInsertAlertError)
	}
	ra, dec := env.Candidate.Ra, env.Candidate.Dec

	candidateDoc := dia.Mongify(env.Candidate)

	alertDoc := bson.M{
		"_id":        env.Candid,
		"objectId":   *objectID,
		"candidate":  candidateDoc,
		"coordinates": dia.Coordinates(ra, dec),
		"created_at": now,
		"updated_at": now,
	}

	if err := c.collections.Alerts.InsertOne(ctx, alertDoc); err != nil {
		if IsDuplicateKeyError(err) {
			return 0, ErrAlertExists
		}
		return 0, fmt.Errorf("%w: %s", ErrInsertAlertError, err)
	}

	cutoutDoc := bson.M{
		"_id":              env.Candid,
		"cutoutScience":    binaryOrNil(env.CutoutScience),
		"cutoutTemplate":   binaryOrNil(env.CutoutTemplate),
		"cutoutDifference": binaryOrNil(env.CutoutDifference),
	}
	if err := c.collections.Cutouts.InsertOne(ctx, cutoutDoc); err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInsertCutoutError, err)
	}

	prvDocs := make([]bson.M, 0, len(env.PrvCandidates)+1)
	for i := range env.PrvCandidates {
		prvDocs = append(prvDocs, dia.Mongify(env.PrvCandidates[i]))
	}
	prvDocs = append(prvDocs, candidateDoc)

	fpDocs := make([]bson.M, 0, len(env.FpHists))
	for i := range env.FpHists {
		fpDocs = append(fpDocs, dia.Mongify(env.FpHists[i]))
	}

	if err := c.upsertAux(ctx, *objectID, ra, dec, prvDocs, fpDocs, now); err != nil {
		return 0, err
	}

	return env.Candid, nil
}

func (c *Coordinator) upsertAux(ctx context.Context, objectID int64, ra, dec float64, prvDocs, fpDocs []bson.M, now float64) error {
	count, err := c.collections.Aux.CountByID(ctx, objectID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrFindObjectIDError, err)
	}

	if count == 0 {
		crossMatches, err := c.xmatch.Crossmatch(ctx, ra, dec)
		if err != nil {
			return fmt.Errorf("%w: crossmatch failed: %s", ErrInsertAuxAlertError, err)
		}
		auxDoc := bson.M{
			"_id":            objectID,
			"prv_candidates": prvDocs,
			"fp_hists":       fpDocs,
			"cross_matches":  crossMatches,
			"created_at":     now,
			"updated_at":     now,
			"coordinates":    dia.Coordinates(ra, dec),
		}
		err = c.collections.Aux.InsertOne(ctx, auxDoc)
		if err == nil {
			return nil
		}
		if !IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrInsertAuxAlertError, err)
		}
		// Another worker won the race between CountByID and InsertOne;
		// retry once as the update branch.
	}

	if err := c.collections.Aux.AddToSetAndTouch(ctx, objectID, prvDocs, fpDocs, now); err != nil {
		return fmt.Errorf("%w: %s", ErrUpdateAuxAlertError, err)
	}
	return nil
}

func binaryOrNil(b []byte) any {
	if b == nil {
		return nil
	}
	return bson.Binary{Subtype: 0x00, Data: b}
}
