package enrich

import (
	"math"
	"testing"

	"github.com/lsst-broker/alertworker/dia"
)

func float32p(f float32) *float32 { return &f }

func TestDerivePhotometryKnownValue(t *testing.T) {
	cfg := DefaultMagnitudeConfig()
	sci := float32(500.0)

	magpsf, sigmapsf := DerivePhotometry(cfg, &sci, 200.0, 10.0)
	if magpsf == nil || sigmapsf == nil {
		t.Fatalf("expected non-nil results for positive flux")
	}

	flux := float64(500.0+200.0) * 1e-6
	wantMag := float32(-2.5*math.Log10(flux) + zeropoint)
	if *magpsf != wantMag {
		t.Fatalf("magpsf = %v, want %v", *magpsf, wantMag)
	}
}

func TestDerivePhotometryMissingScienceFluxUsesDefault(t *testing.T) {
	cfg := DefaultMagnitudeConfig()

	magpsf, _ := DerivePhotometry(cfg, nil, 1.0, 0.5)
	flux := float64(cfg.MissingScienceFluxNanojansky+1.0) * 1e-6
	wantMag := float32(-2.5*math.Log10(flux) + zeropoint)
	if magpsf == nil || *magpsf != wantMag {
		t.Fatalf("magpsf = %v, want %v", magpsf, wantMag)
	}
}

func TestDerivePhotometryNonPositiveFluxYieldsNil(t *testing.T) {
	cfg := MagnitudeConfig{MissingScienceFluxNanojansky: 0}
	sci := float32(-10.0)

	magpsf, sigmapsf := DerivePhotometry(cfg, &sci, 5.0, 1.0)
	if magpsf != nil || sigmapsf != nil {
		t.Fatalf("expected nil results for non-positive effective flux, got (%v, %v)", magpsf, sigmapsf)
	}
}

func TestEnrichDetectionNoopWithoutPsfFlux(t *testing.T) {
	s := &dia.DiaSource{}
	EnrichDetection(DefaultMagnitudeConfig(), s)
	if s.Magpsf != nil || s.Sigmapsf != nil {
		t.Fatalf("expected no derived fields without PsfFlux/PsfFluxErr")
	}
}

func TestEnrichDetectionSetsFields(t *testing.T) {
	s := &dia.DiaSource{
		PsfFlux:    float32p(300.0),
		PsfFluxErr: float32p(5.0),
	}
	EnrichDetection(DefaultMagnitudeConfig(), s)
	if s.Magpsf == nil || s.Sigmapsf == nil {
		t.Fatalf("expected derived fields to be set")
	}
}

func TestEnrichForcedSourceSetsFields(t *testing.T) {
	f := &dia.DiaForcedSource{
		PsfFlux:    float32p(300.0),
		PsfFluxErr: float32p(5.0),
	}
	EnrichForcedSource(DefaultMagnitudeConfig(), f)
	if f.Magpsf == nil || f.Sigmapsf == nil {
		t.Fatalf("expected derived fields to be set")
	}
}
