// Package registry fetches, parses, and memoizes decode schemas from a
// remote schema registry, keyed by (subject, version).
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hamba/avro/v2"
)

// Errors returned by Client.Resolve, matching the registry's failure
// modes one-to-one: a transport failure is ErrConnection, a
// non-conforming response body is ErrParsing, and the three validation
// steps (subject exists, version exists, schema parses) each have their
// own sentinel.
var (
	ErrConnection    = errors.New("registry: connection error")
	ErrParsing       = errors.New("registry: parsing error")
	ErrInvalidSubject = errors.New("registry: invalid subject")
	ErrInvalidVersion = errors.New("registry: invalid version")
	ErrInvalidSchema  = errors.New("registry: invalid schema")
)

// Transport is the registry's three-endpoint REST surface. A
// production implementation talks to the registry over HTTP (see
// HTTPTransport); tests substitute a fake.
type Transport interface {
	Subjects(ctx context.Context) ([]string, error)
	Versions(ctx context.Context, subject string) ([]uint32, error)
	SchemaText(ctx context.Context, subject string, version uint32) (string, error)
}

// Client resolves and caches schemas. Each worker.Worker builds its
// own Client, and the cache is never evicted: the set of live schemas per
// process is bounded and small, since a schema id is published once
// and never changes. The mutex is a defensive measure, not a
// correctness requirement of the sequential-consumer design.
type Client struct {
	transport Transport

	mu     sync.RWMutex
	cache  map[string]avro.Schema
}

// NewClient builds a Client against the given Transport.
func NewClient(transport Transport) *Client {
	return &Client{
		transport: transport,
		cache:     make(map[string]avro.Schema),
	}
}

func cacheKey(subject string, version uint32) string {
	return fmt.Sprintf("%s:%d", subject, version)
}

// Resolve returns the schema for (subject, version), fetching and
// caching it from the registry on a cache miss.
func (c *Client) Resolve(ctx context.Context, subject string, version uint32) (avro.Schema, error) {
	key := cacheKey(subject, version)

	c.mu.RLock()
	schema, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return schema, nil
	}

	schema, err := c.fetch(ctx, subject, version)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[key] = schema
	c.mu.Unlock()
	return schema, nil
}

func (c *Client) fetch(ctx context.Context, subject string, version uint32) (avro.Schema, error) {
	subjects, err := c.transport.Subjects(ctx)
	if err != nil {
		return nil, wrapTransport(err)
	}
	if !contains(subjects, subject) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSubject, subject)
	}

	versions, err := c.transport.Versions(ctx, subject)
	if err != nil {
		return nil, wrapTransport(err)
	}
	if !containsVersion(versions, version) {
		return nil, fmt.Errorf("%w: %s version %d", ErrInvalidVersion, subject, version)
	}

	text, err := c.transport.SchemaText(ctx, subject, version)
	if err != nil {
		return nil, wrapTransport(err)
	}

	schema, err := avro.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSchema, err)
	}
	return schema, nil
}

// wrapTransport classifies a Transport error as a connection failure
// unless it already carries a more specific registry sentinel (e.g. a
// fake transport used in tests returning ErrParsing directly).
func wrapTransport(err error) error {
	if errors.Is(err, ErrParsing) {
		return err
	}
	return fmt.Errorf("%w: %s", ErrConnection, err)
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func containsVersion(xs []uint32, x uint32) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
