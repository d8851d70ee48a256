// Package enrich derives calibrated photometric quantities and
// attaches geospatial coordinates to a decoded alert before
// persistence.
package enrich

import (
	"context"
	"math"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/lsst-broker/alertworker/dia"
)

// MagnitudeConfig carries the one parameter the magnitude derivation
// needs that the current upstream alert schema does not supply.
type MagnitudeConfig struct {
	// MissingScienceFluxNanojansky stands in for the wire field
	// scienceFlux, which the current alert schema omits. Acknowledged
	// as a temporary placeholder, routed through this single named slot
	// rather than inlined so it is trivially replaced once the upstream
	// schema grows the field.
	MissingScienceFluxNanojansky float32
}

// DefaultMagnitudeConfig returns the placeholder configuration in use
// until the upstream schema supplies scienceFlux directly.
func DefaultMagnitudeConfig() MagnitudeConfig {
	return MagnitudeConfig{MissingScienceFluxNanojansky: 1000.0}
}

const zeropoint = 8.9

// DerivePhotometry computes magpsf and sigmapsf from flux and
// flux-error inputs. scienceFlux, when nil, is replaced by
// cfg.MissingScienceFluxNanojansky. A non-positive effective flux
// yields two nil results rather than an undefined magnitude.
func DerivePhotometry(cfg MagnitudeConfig, scienceFlux *float32, psfFlux, psfFluxErr float32) (magpsf, sigmapsf *float32) {
	sf := cfg.MissingScienceFluxNanojansky
	if scienceFlux != nil {
		sf = *scienceFlux
	}

	flux := float64(sf+psfFlux) * 1e-6
	fluxErr := float64(psfFluxErr) * 1e-6

	if flux <= 0 {
		return nil, nil
	}

	mag := float32(-2.5*math.Log10(flux) + zeropoint)
	sigma := float32((2.5 / math.Ln10) * (fluxErr / flux))
	return &mag, &sigma
}

// EnrichDetection derives and sets Magpsf/Sigmapsf on a DiaSource in
// place. It is a no-op (fields left nil) when PsfFlux or PsfFluxErr is
// absent, since the formula has no defined result without them.
func EnrichDetection(cfg MagnitudeConfig, s *dia.DiaSource) {
	if s.PsfFlux == nil || s.PsfFluxErr == nil {
		return
	}
	s.Magpsf, s.Sigmapsf = DerivePhotometry(cfg, s.ScienceFlux, *s.PsfFlux, *s.PsfFluxErr)
}

// EnrichForcedSource derives and sets Magpsf/Sigmapsf on a
// DiaForcedSource in place, under the same conditions as
// EnrichDetection.
func EnrichForcedSource(cfg MagnitudeConfig, f *dia.DiaForcedSource) {
	if f.PsfFlux == nil || f.PsfFluxErr == nil {
		return
	}
	f.Magpsf, f.Sigmapsf = DerivePhotometry(cfg, f.ScienceFlux, *f.PsfFlux, *f.PsfFluxErr)
}

// Crossmatcher associates a source position with nearby catalog
// objects. It is opaque to this package; the returned document is
// stored verbatim under cross_matches.
type Crossmatcher interface {
	Crossmatch(ctx context.Context, ra, dec float64) (bson.M, error)
}
