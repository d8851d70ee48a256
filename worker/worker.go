// Package worker assembles the schema registry, decoder, enrichment
// stage, and persistence coordinator into one named stream's
// processing entry point.
package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/lsst-broker/alertworker/clog"
	"github.com/lsst-broker/alertworker/codec"
	"github.com/lsst-broker/alertworker/enrich"
	"github.com/lsst-broker/alertworker/registry"
	"github.com/lsst-broker/alertworker/store"
)

// StreamNames are the five resource names derived from a single stream
// label, exactly per the naming convention a deployment's queue and
// collection provisioning follows.
type StreamNames struct {
	InputQueue        string
	OutputQueue       string
	AlertsCollection  string
	CutoutsCollection string
	AuxCollection     string
}

// DeriveStreamNames builds the five per-stream names from a stream
// label, e.g. label "lsst" yields input queue "lsst_alerts_packets_queue".
func DeriveStreamNames(label string) StreamNames {
	return StreamNames{
		InputQueue:        label + "_alerts_packets_queue",
		OutputQueue:       label + "_alerts_filter_queue",
		AlertsCollection:  label + "_alerts",
		CutoutsCollection: label + "_alerts_cutouts",
		AuxCollection:     label + "_alerts_aux",
	}
}

// Store is the subset of a document store's administrative surface
// the façade uses to confirm connectivity and collection layout at
// construction time.
type Store interface {
	ListCollectionNames(ctx context.Context) ([]string, error)
}

// Dependencies are the externally supplied collaborators a Worker
// wires together. Transport, Store and Collections are left abstract
// so tests can substitute fakes; Crossmatcher defaults to a no-op if
// nil.
type Dependencies struct {
	Transport    registry.Transport
	Store        Store
	Collections  store.Collections
	Crossmatcher enrich.Crossmatcher
	Now          func() float64
	Log          clog.Clog
}

// Config names the stream and tunes enrichment.
type Config struct {
	StreamLabel string
	Magnitude   enrich.MagnitudeConfig
}

// Valid fails fast on a missing stream label and fills in the default
// magnitude configuration when unset.
func (c *Config) Valid() error {
	if c.StreamLabel == "" {
		return errors.New("worker: StreamLabel must not be empty")
	}
	if c.Magnitude == (enrich.MagnitudeConfig{}) {
		c.Magnitude = enrich.DefaultMagnitudeConfig()
	}
	return nil
}

// Worker processes packets for one named stream.
type Worker struct {
	names       StreamNames
	magnitude   enrich.MagnitudeConfig
	registry    *registry.Client
	coordinator *store.Coordinator
	log         clog.Clog
}

// New validates cfg, derives the stream's resource names, probes the
// store for reachability, and wires a registry client, crossmatcher
// and persistence coordinator into a ready Worker. The store probe
// failing is fatal and is never retried here: callers own restart
// policy.
func New(ctx context.Context, cfg Config, deps Dependencies) (*Worker, error) {
	if err := cfg.Valid(); err != nil {
		return nil, err
	}
	if deps.Transport == nil {
		return nil, errors.New("worker: Dependencies.Transport must not be nil")
	}
	if deps.Store == nil {
		return nil, errors.New("worker: Dependencies.Store must not be nil")
	}

	if _, err := deps.Store.ListCollectionNames(ctx); err != nil {
		return nil, fmt.Errorf("worker: store probe failed: %w", err)
	}

	xmatch := deps.Crossmatcher
	if xmatch == nil {
		xmatch = noopCrossmatcher{}
	}
	now := deps.Now
	if now == nil {
		now = defaultJulianDateNow
	}

	names := DeriveStreamNames(cfg.StreamLabel)
	reg := registry.NewClient(deps.Transport)
	coord := store.NewCoordinator(deps.Collections, xmatch, now, deps.Log)

	return &Worker{
		names:       names,
		magnitude:   cfg.Magnitude,
		registry:    reg,
		coordinator: coord,
		log:         deps.Log,
	}, nil
}

// Names returns the five resource names this Worker was constructed
// with.
func (w *Worker) Names() StreamNames {
	return w.names
}

var _ codec.SchemaResolver = (*registry.Client)(nil)

// ProcessPacket runs one packet through decode, enrichment, and
// persistence, returning its candid on success. A duplicate packet
// surfaces store.ErrAlertExists, which callers should treat as a
// successful no-op rather than a failure.
func (w *Worker) ProcessPacket(ctx context.Context, raw []byte) (int64, error) {
	env, err := codec.Decode(ctx, w.registry, raw)
	if err != nil {
		return 0, err
	}

	enrich.EnrichDetection(w.magnitude, &env.Candidate)
	for i := range env.PrvCandidates {
		enrich.EnrichDetection(w.magnitude, &env.PrvCandidates[i])
	}
	for i := range env.FpHists {
		enrich.EnrichForcedSource(w.magnitude, &env.FpHists[i])
	}

	return w.coordinator.ProcessAlert(ctx, env)
}
