package codec

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/hamba/avro/v2"
)

const testSchemaText = `{
  "type": "record",
  "name": "AlertPacket",
  "fields": [
    {"name": "alertId", "type": "long"},
    {"name": "diaSource", "type": {
      "type": "record",
      "name": "DiaSource",
      "fields": [
        {"name": "diaSourceId", "type": "long"},
        {"name": "visit", "type": "long"},
        {"name": "detector", "type": "int"},
        {"name": "midpointMjdTai", "type": "double"},
        {"name": "ra", "type": "double"},
        {"name": "dec", "type": "double"}
      ]
    }},
    {"name": "prvDiaSources", "type": ["null", {"type": "array", "items": "DiaSource"}], "default": null},
    {"name": "prvDiaForcedSources", "type": ["null", {"type": "array", "items": "long"}], "default": null},
    {"name": "prvDiaNondetectionLimits", "type": ["null", {"type": "array", "items": "long"}], "default": null},
    {"name": "diaObject", "type": ["null", "long"], "default": null},
    {"name": "cutoutScience", "type": ["null", "bytes"], "default": null},
    {"name": "cutoutTemplate", "type": ["null", "bytes"], "default": null},
    {"name": "cutoutDifference", "type": ["null", "bytes"], "default": null}
  ]
}`

type fakeResolver struct {
	schema avro.Schema
	err    error
}

func (f fakeResolver) Resolve(ctx context.Context, subject string, version uint32) (avro.Schema, error) {
	return f.schema, f.err
}

func validPacket(t *testing.T, schemaID uint32) []byte {
	t.Helper()
	schema := avro.MustParse(testSchemaText)

	payload, err := avro.Marshal(schema, map[string]any{
		"alertId": int64(1),
		"diaSource": map[string]any{
			"diaSourceId":    int64(100),
			"visit":          int64(200),
			"detector":       int32(5),
			"midpointMjdTai": float64(60000.0),
			"ra":             float64(10.0),
			"dec":            float64(20.0),
		},
		"prvDiaSources":            nil,
		"prvDiaForcedSources":      nil,
		"prvDiaNondetectionLimits": nil,
		"diaObject":                nil,
		"cutoutScience":            nil,
		"cutoutTemplate":           nil,
		"cutoutDifference":         nil,
	})
	if err != nil {
		t.Fatalf("avro.Marshal: %v", err)
	}

	header := make([]byte, headerSize)
	header[0] = magicByte
	binary.BigEndian.PutUint32(header[1:], schemaID)
	return append(header, payload...)
}

func TestDecodeHappyPath(t *testing.T) {
	schema := avro.MustParse(testSchemaText)
	raw := validPacket(t, 7)

	env, err := Decode(context.Background(), fakeResolver{schema: schema}, raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if env.Candid != 1 {
		t.Fatalf("Candid = %d, want 1", env.Candid)
	}
	if env.Candidate.Candid != 100 {
		t.Fatalf("Candidate.Candid = %d, want 100", env.Candidate.Candid)
	}
}

func TestDecodeRejectsBadMagicByte(t *testing.T) {
	raw := validPacket(t, 7)
	raw[0] = 0xFF

	_, err := Decode(context.Background(), fakeResolver{}, raw)
	if !errors.Is(err, ErrMagicBytes) {
		t.Fatalf("err = %v, want ErrMagicBytes", err)
	}
}

func TestDecodeRejectsShortPacket(t *testing.T) {
	_, err := Decode(context.Background(), fakeResolver{}, []byte{0x00, 0x01})
	if !errors.Is(err, ErrMagicBytes) {
		t.Fatalf("err = %v, want ErrMagicBytes", err)
	}
}

func TestDecodePropagatesResolverError(t *testing.T) {
	wantErr := errors.New("schema not found")
	raw := validPacket(t, 7)

	_, err := Decode(context.Background(), fakeResolver{err: wantErr}, raw)
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}
