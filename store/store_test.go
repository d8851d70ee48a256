package store

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/lsst-broker/alertworker/clog"
	"github.com/lsst-broker/alertworker/dia"
)

type fakeAlerts struct {
	docs map[int64]bson.M
}

func newFakeAlerts() *fakeAlerts { return &fakeAlerts{docs: map[int64]bson.M{}} }

func (f *fakeAlerts) InsertOne(ctx context.Context, doc bson.M) error {
	id := doc["_id"].(int64)
	if _, exists := f.docs[id]; exists {
		return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: duplicateKeyCode}}}
	}
	f.docs[id] = doc
	return nil
}

type fakeCutouts struct {
	docs []bson.M
}

func (f *fakeCutouts) InsertOne(ctx context.Context, doc bson.M) error {
	f.docs = append(f.docs, doc)
	return nil
}

type fakeAux struct {
	docs            map[int64]bson.M
	insertErr       error
	failInsertsOnce bool
}

func newFakeAux() *fakeAux { return &fakeAux{docs: map[int64]bson.M{}} }

func (f *fakeAux) CountByID(ctx context.Context, id int64) (int64, error) {
	if _, ok := f.docs[id]; ok {
		return 1, nil
	}
	return 0, nil
}

func (f *fakeAux) InsertOne(ctx context.Context, doc bson.M) error {
	if f.failInsertsOnce {
		f.failInsertsOnce = false
		return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: duplicateKeyCode}}}
	}
	if f.insertErr != nil {
		return f.insertErr
	}
	id := doc["_id"].(int64)
	f.docs[id] = doc
	return nil
}

func (f *fakeAux) AddToSetAndTouch(ctx context.Context, id int64, prv, fp []bson.M, updatedAt float64) error {
	doc, ok := f.docs[id]
	if !ok {
		doc = bson.M{"_id": id, "prv_candidates": bson.A{}, "fp_hists": bson.A{}}
		f.docs[id] = doc
	}
	var prvArr bson.A
	switch existing := doc["prv_candidates"].(type) {
	case bson.A:
		prvArr = existing
	case []bson.M:
		for _, p := range existing {
			prvArr = append(prvArr, p)
		}
	}
	for _, p := range prv {
		prvArr = append(prvArr, p)
	}
	doc["prv_candidates"] = prvArr
	doc["updated_at"] = updatedAt
	f.docs[id] = doc
	return nil
}

type fakeCrossmatcher struct {
	result bson.M
	err    error
}

func (f fakeCrossmatcher) Crossmatch(ctx context.Context, ra, dec float64) (bson.M, error) {
	return f.result, f.err
}

func testEnvelope(candid, objectID int64) *dia.Envelope {
	return &dia.Envelope{
		Candid: candid,
		Candidate: dia.DiaSource{
			Candid:   candid,
			ObjectID: &objectID,
			Ra:       10.0,
			Dec:      20.0,
			MJD:      60000.0,
		},
	}
}

func newCoordinator(alerts *fakeAlerts, cutouts *fakeCutouts, aux *fakeAux) *Coordinator {
	return NewCoordinator(
		Collections{Alerts: alerts, Cutouts: cutouts, Aux: aux},
		fakeCrossmatcher{result: bson.M{"gaia": bson.A{}}},
		func() float64 { return 2460000.0 },
		clog.NewLogger("[test] "),
	)
}

func TestProcessAlertHappyPath(t *testing.T) {
	alerts := newFakeAlerts()
	aux := newFakeAux()
	c := newCoordinator(alerts, newFakeCutouts(), aux)

	candid, err := c.ProcessAlert(context.Background(), testEnvelope(1, 42))
	if err != nil {
		t.Fatalf("ProcessAlert: %v", err)
	}
	if candid != 1 {
		t.Fatalf("candid = %d, want 1", candid)
	}
	if _, ok := alerts.docs[1]; !ok {
		t.Fatalf("expected alert document to be inserted")
	}
	if _, ok := aux.docs[42]; !ok {
		t.Fatalf("expected auxiliary document to be created")
	}
}

func TestProcessAlertDuplicatePrimaryReturnsAlertExists(t *testing.T) {
	alerts := newFakeAlerts()
	aux := newFakeAux()
	c := newCoordinator(alerts, newFakeCutouts(), aux)

	if _, err := c.ProcessAlert(context.Background(), testEnvelope(1, 42)); err != nil {
		t.Fatalf("first ProcessAlert: %v", err)
	}
	_, err := c.ProcessAlert(context.Background(), testEnvelope(1, 42))
	if !errors.Is(err, ErrAlertExists) {
		t.Fatalf("err = %v, want ErrAlertExists", err)
	}
}

func TestProcessAlertMergesIntoExistingAuxRecord(t *testing.T) {
	alerts := newFakeAlerts()
	aux := newFakeAux()
	c := newCoordinator(alerts, newFakeCutouts(), aux)

	if _, err := c.ProcessAlert(context.Background(), testEnvelope(1, 42)); err != nil {
		t.Fatalf("first ProcessAlert: %v", err)
	}
	if _, err := c.ProcessAlert(context.Background(), testEnvelope(2, 42)); err != nil {
		t.Fatalf("second ProcessAlert: %v", err)
	}

	prv, _ := aux.docs[42]["prv_candidates"].(bson.A)
	if len(prv) != 2 {
		t.Fatalf("len(prv_candidates) = %d, want 2", len(prv))
	}
}

func TestProcessAlertRetriesAsUpdateOnAuxInsertRace(t *testing.T) {
	alerts := newFakeAlerts()
	aux := newFakeAux()
	aux.failInsertsOnce = true
	c := newCoordinator(alerts, newFakeCutouts(), aux)

	candid, err := c.ProcessAlert(context.Background(), testEnvelope(1, 42))
	if err != nil {
		t.Fatalf("ProcessAlert: %v", err)
	}
	if candid != 1 {
		t.Fatalf("candid = %d, want 1", candid)
	}
	if _, ok := aux.docs[42]; !ok {
		t.Fatalf("expected the update branch to have created the auxiliary doc")
	}
}

func newFakeCutouts() *fakeCutouts { return &fakeCutouts{} }
