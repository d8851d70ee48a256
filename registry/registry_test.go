package registry

import (
	"context"
	"errors"
	"testing"
)

const testSchema = `{"type":"record","name":"x","fields":[{"name":"a","type":"long"}]}`

type fakeTransport struct {
	subjects      []string
	versions      map[string][]uint32
	schemas       map[string]string
	subjectsCalls int
	versionsCalls int
	schemaCalls   int
}

func (f *fakeTransport) Subjects(ctx context.Context) ([]string, error) {
	f.subjectsCalls++
	return f.subjects, nil
}

func (f *fakeTransport) Versions(ctx context.Context, subject string) ([]uint32, error) {
	f.versionsCalls++
	return f.versions[subject], nil
}

func (f *fakeTransport) SchemaText(ctx context.Context, subject string, version uint32) (string, error) {
	f.schemaCalls++
	return f.schemas[cacheKey(subject, version)], nil
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		subjects: []string{"alert-packet"},
		versions: map[string][]uint32{"alert-packet": {1}},
		schemas:  map[string]string{"alert-packet:1": testSchema},
	}
}

func TestResolveCachesAfterFirstFetch(t *testing.T) {
	ft := newFakeTransport()
	c := NewClient(ft)

	if _, err := c.Resolve(context.Background(), "alert-packet", 1); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, err := c.Resolve(context.Background(), "alert-packet", 1); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if ft.schemaCalls != 1 {
		t.Fatalf("schemaCalls = %d, want 1 (second Resolve should hit the cache)", ft.schemaCalls)
	}
}

func TestResolveUnknownSubject(t *testing.T) {
	ft := newFakeTransport()
	c := NewClient(ft)

	_, err := c.Resolve(context.Background(), "does-not-exist", 1)
	if !errors.Is(err, ErrInvalidSubject) {
		t.Fatalf("err = %v, want ErrInvalidSubject", err)
	}
}

func TestResolveUnknownVersion(t *testing.T) {
	ft := newFakeTransport()
	c := NewClient(ft)

	_, err := c.Resolve(context.Background(), "alert-packet", 99)
	if !errors.Is(err, ErrInvalidVersion) {
		t.Fatalf("err = %v, want ErrInvalidVersion", err)
	}
}

func TestResolveInvalidSchemaText(t *testing.T) {
	ft := newFakeTransport()
	ft.schemas["alert-packet:1"] = "not json"
	c := NewClient(ft)

	_, err := c.Resolve(context.Background(), "alert-packet", 1)
	if !errors.Is(err, ErrInvalidSchema) {
		t.Fatalf("err = %v, want ErrInvalidSchema", err)
	}
}
