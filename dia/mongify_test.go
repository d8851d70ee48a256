package dia

import (
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func float32p(f float32) *float32 { return &f }
func int64p(i int64) *int64       { return &i }

func TestMongifyOmitsAbsentOptionalFields(t *testing.T) {
	s := DiaSource{
		Candid: 1,
		Visit:  2,
		MJD:    60000.5,
		Ra:     10,
		Dec:    20,
	}
	doc := Mongify(s)

	if _, ok := doc["objectId"]; ok {
		t.Fatalf("expected objectId to be omitted, got %v", doc["objectId"])
	}
	if _, ok := doc["psfFlux"]; ok {
		t.Fatalf("expected psfFlux to be omitted")
	}
	if doc["candid"] != int64(1) {
		t.Fatalf("candid = %v, want 1", doc["candid"])
	}
}

func TestMongifyPreservesNilVsEmptyCutoutBuffer(t *testing.T) {
	env := Envelope{
		Candid:        1,
		CutoutScience: []byte{},
	}
	doc := Mongify(env)

	sci, ok := doc["cutoutScience"]
	if !ok {
		t.Fatalf("expected cutoutScience present (non-nil empty slice)")
	}
	if b, ok := sci.(bson.Binary); !ok || len(b.Data) != 0 {
		t.Fatalf("cutoutScience = %#v, want empty bson.Binary", sci)
	}

	if _, ok := doc["cutoutTemplate"]; ok {
		t.Fatalf("expected cutoutTemplate omitted (nil slice)")
	}
}

func TestMongifyDiaObjectPerBandFields(t *testing.T) {
	obj := DiaObject{ObjectID: 42, Ra: 1, Dec: 2}
	obj.BandAggregate("g").PsfFluxMean = float32p(123.5)

	doc := Mongify(obj)
	if doc["g_psfFluxMean"] != float32(123.5) {
		t.Fatalf("g_psfFluxMean = %v, want 123.5", doc["g_psfFluxMean"])
	}
	if _, ok := doc["u_psfFluxMean"]; ok {
		t.Fatalf("expected u_psfFluxMean omitted, band never set")
	}
	if _, ok := doc["U"]; ok {
		t.Fatalf("expected no raw band struct field in the document")
	}
}

func TestMongifyNestedDiaObjectRoutesThroughBandProjection(t *testing.T) {
	obj := DiaObject{ObjectID: 7, Ra: 1, Dec: 2}
	obj.BandAggregate("r").PsfFluxMean = float32p(9.5)
	env := Envelope{Candid: 1, Object: &obj}

	doc := Mongify(env)
	nested, ok := doc["dia_object"].(bson.M)
	if !ok {
		t.Fatalf("dia_object = %#v, want bson.M", doc["dia_object"])
	}
	if nested["r_psfFluxMean"] != float32(9.5) {
		t.Fatalf("r_psfFluxMean = %v, want 9.5", nested["r_psfFluxMean"])
	}
}

func TestMongifyPrvCandidatesArray(t *testing.T) {
	env := Envelope{
		Candid: 1,
		PrvCandidates: []DiaSource{
			{Candid: 2, ObjectID: int64p(99)},
		},
	}
	doc := Mongify(env)
	arr, ok := doc["prv_candidates"].(bson.A)
	if !ok || len(arr) != 1 {
		t.Fatalf("prv_candidates = %#v", doc["prv_candidates"])
	}
	first, ok := arr[0].(bson.M)
	if !ok || first["candid"] != int64(2) {
		t.Fatalf("prv_candidates[0] = %#v", arr[0])
	}
}
