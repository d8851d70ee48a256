// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package dia defines the canonical alert data model: the typed
// records decoded from an alert packet, and their projection onto
// storage documents.
//
// Field names on the wire differ from the names used in storage; each
// field below carries both as struct tags: `avro` is the wire name
// used when projecting a decoded value tree onto these structs, `bson`
// is the storage name used by Mongify. Most fields are optional and
// round-trip the null/absent distinction: a wire field that was absent
// stays a nil pointer and Mongify omits it from the document entirely,
// rather than writing an explicit null.
package dia

// DiaSource is a single on-sky measurement at one epoch (companion
// schema name: DiaSource).
type DiaSource struct {
	// Candid is the unique identifier of this source. Wire name
	// diaSourceId, storage name candid.
	Candid int64 `avro:"diaSourceId" bson:"candid"`
	Visit  int64 `avro:"visit" bson:"visit"`
	// Detector is the wire's Avro int, kept as int32.
	Detector int32 `avro:"detector" bson:"detector"`
	// ObjectID associates this source with a DiaObject, if any. A
	// source is associated with at most one of ObjectID or SSObjectID.
	ObjectID *int64 `avro:"diaObjectId" bson:"objectId,omitempty"`
	// SSObjectID associates this source with a solar-system object.
	SSObjectID *int64 `avro:"ssObjectId" bson:"ssObjectId,omitempty"`
	// ParentSourceID is the source this one was deblended from.
	ParentSourceID *int64 `avro:"parentDiaSourceId" bson:"parentDiaSourceId,omitempty"`

	// MJD is the effective mid-visit time, MJD(TAI). Wire name
	// midpointMjdTai, storage name mjd.
	MJD float64 `avro:"midpointMjdTai" bson:"mjd"`
	Ra  float64 `avro:"ra" bson:"ra"`
	RaErr *float32 `avro:"raErr" bson:"raErr,omitempty"`
	Dec   float64  `avro:"dec" bson:"dec"`
	DecErr *float32 `avro:"decErr" bson:"decErr,omitempty"`

	CentroidFlag *bool `avro:"centroid_flag" bson:"centroid_flag,omitempty"`
	// IsNegative flags a source detected as significantly negative.
	IsNegative *bool `avro:"is_negative" bson:"is_negative,omitempty"`

	ApFlux           *float32 `avro:"apFlux" bson:"apFlux,omitempty"`
	ApFluxErr        *float32 `avro:"apFluxErr" bson:"apFluxErr,omitempty"`
	ApFluxFlag       *bool    `avro:"apFlux_flag" bson:"apFlux_flag,omitempty"`
	ApFluxFlagAperTr *bool    `avro:"apFlux_flag_apertureTruncated" bson:"apFlux_flag_apertureTruncated,omitempty"`

	SNR *float32 `avro:"snr" bson:"snr,omitempty"`

	// PsfFlux is the point-source-model flux: the flux difference
	// between template and visit image. ScienceFlux, below, is
	// currently absent from the upstream schema (see enrich.MagnitudeConfig).
	PsfFlux      *float32 `avro:"psfFlux" bson:"psfFlux,omitempty"`
	PsfFluxErr   *float32 `avro:"psfFluxErr" bson:"psfFluxErr,omitempty"`
	PsfRa        *float64 `avro:"psfRa" bson:"psfRa,omitempty"`
	PsfRaErr     *float32 `avro:"psfRaErr" bson:"psfRaErr,omitempty"`
	PsfDec       *float64 `avro:"psfDec" bson:"psfDec,omitempty"`
	PsfDecErr    *float32 `avro:"psfDecErr" bson:"psfDecErr,omitempty"`
	PsfChi2      *float32 `avro:"psfChi2" bson:"psfChi2,omitempty"`
	PsfNdata     *int32   `avro:"psfNdata" bson:"psfNdata,omitempty"`
	PsfFluxFlag  *bool    `avro:"psfFlux_flag" bson:"psfFlux_flag,omitempty"`
	PsfFluxFlagEdge *bool `avro:"psfFlux_flag_edge" bson:"psfFlux_flag_edge,omitempty"`
	PsfFluxFlagNoGoodPixels *bool `avro:"psfFlux_flag_noGoodPixels" bson:"psfFlux_flag_noGoodPixels,omitempty"`

	TrailFlux       *float32 `avro:"trailFlux" bson:"trailFlux,omitempty"`
	TrailFluxErr    *float32 `avro:"trailFluxErr" bson:"trailFluxErr,omitempty"`
	TrailRa         *float64 `avro:"trailRa" bson:"trailRa,omitempty"`
	TrailRaErr      *float32 `avro:"trailRaErr" bson:"trailRaErr,omitempty"`
	TrailDec        *float64 `avro:"trailDec" bson:"trailDec,omitempty"`
	TrailDecErr     *float32 `avro:"trailDecErr" bson:"trailDecErr,omitempty"`
	TrailLength     *float32 `avro:"trailLength" bson:"trailLength,omitempty"`
	TrailLengthErr  *float32 `avro:"trailLengthErr" bson:"trailLengthErr,omitempty"`
	TrailAngle      *float32 `avro:"trailAngle" bson:"trailAngle,omitempty"`
	TrailAngleErr   *float32 `avro:"trailAngleErr" bson:"trailAngleErr,omitempty"`
	TrailChi2       *float32 `avro:"trailChi2" bson:"trailChi2,omitempty"`
	TrailNdata      *int32   `avro:"trailNdata" bson:"trailNdata,omitempty"`
	TrailFlagEdge   *bool    `avro:"trail_flag_edge" bson:"trail_flag_edge,omitempty"`

	ForcedPsfFluxFlag             *bool `avro:"forced_PsfFlux_flag" bson:"forced_PsfFlux_flag,omitempty"`
	ForcedPsfFluxFlagEdge         *bool `avro:"forced_PsfFlux_flag_edge" bson:"forced_PsfFlux_flag_edge,omitempty"`
	ForcedPsfFluxFlagNoGoodPixels *bool `avro:"forced_PsfFlux_flag_noGoodPixels" bson:"forced_PsfFlux_flag_noGoodPixels,omitempty"`

	SnapDiffFlux    *float32 `avro:"snapDiffFlux" bson:"snapDiffFlux,omitempty"`
	SnapDiffFluxErr *float32 `avro:"snapDiffFluxErr" bson:"snapDiffFluxErr,omitempty"`
	FpBkgd          *float32 `avro:"fpBkgd" bson:"fpBkgd,omitempty"`
	FpBkgdErr       *float32 `avro:"fpBkgdErr" bson:"fpBkgdErr,omitempty"`

	ShapeFlag              *bool `avro:"shape_flag" bson:"shape_flag,omitempty"`
	ShapeFlagNoPixels      *bool `avro:"shape_flag_no_pixels" bson:"shape_flag_no_pixels,omitempty"`
	ShapeFlagNotContained  *bool `avro:"shape_flag_not_contained" bson:"shape_flag_not_contained,omitempty"`
	ShapeFlagParentSource  *bool `avro:"shape_flag_parent_source" bson:"shape_flag_parent_source,omitempty"`

	// Extendedness close to 1 implies extended; close to 0 implies
	// point-like.
	Extendedness *float32 `avro:"extendedness" bson:"extendedness,omitempty"`
	Reliability  *float32 `avro:"reliability" bson:"reliability,omitempty"`
	Band         *string  `avro:"band" bson:"band,omitempty"`

	PixelFlags                         *bool `avro:"pixelFlags" bson:"pixelFlags,omitempty"`
	PixelFlagsBad                      *bool `avro:"pixelFlags_bad" bson:"pixelFlags_bad,omitempty"`
	PixelFlagsCr                       *bool `avro:"pixelFlags_cr" bson:"pixelFlags_cr,omitempty"`
	PixelFlagsCrCenter                 *bool `avro:"pixelFlags_crCenter" bson:"pixelFlags_crCenter,omitempty"`
	PixelFlagsEdge                     *bool `avro:"pixelFlags_edge" bson:"pixelFlags_edge,omitempty"`
	PixelFlagsInterpolated             *bool `avro:"pixelFlags_interpolated" bson:"pixelFlags_interpolated,omitempty"`
	PixelFlagsInterpolatedCenter       *bool `avro:"pixelFlags_interpolatedCenter" bson:"pixelFlags_interpolatedCenter,omitempty"`
	PixelFlagsOffimage                 *bool `avro:"pixelFlags_offimage" bson:"pixelFlags_offimage,omitempty"`
	PixelFlagsSaturated                *bool `avro:"pixelFlags_saturated" bson:"pixelFlags_saturated,omitempty"`
	PixelFlagsSaturatedCenter          *bool `avro:"pixelFlags_saturatedCenter" bson:"pixelFlags_saturatedCenter,omitempty"`
	PixelFlagsSuspect                  *bool `avro:"pixelFlags_suspect" bson:"pixelFlags_suspect,omitempty"`
	PixelFlagsSuspectCenter            *bool `avro:"pixelFlags_suspectCenter" bson:"pixelFlags_suspectCenter,omitempty"`
	PixelFlagsStreak                   *bool `avro:"pixelFlags_streak" bson:"pixelFlags_streak,omitempty"`
	PixelFlagsStreakCenter             *bool `avro:"pixelFlags_streakCenter" bson:"pixelFlags_streakCenter,omitempty"`
	PixelFlagsInjected                 *bool `avro:"pixelFlags_injected" bson:"pixelFlags_injected,omitempty"`
	PixelFlagsInjectedCenter           *bool `avro:"pixelFlags_injectedCenter" bson:"pixelFlags_injectedCenter,omitempty"`
	PixelFlagsInjectedTemplate         *bool `avro:"pixelFlags_injected_template" bson:"pixelFlags_injected_template,omitempty"`
	PixelFlagsInjectedTemplateCenter   *bool `avro:"pixelFlags_injected_templateCenter" bson:"pixelFlags_injected_templateCenter,omitempty"`

	// ScienceFlux is absent from the current upstream schema; see
	// enrich.MagnitudeConfig.MissingScienceFluxNanojansky.
	ScienceFlux *float32 `avro:"scienceFlux" bson:"scienceFlux,omitempty"`

	// Magpsf and Sigmapsf are derived by enrich, never present on the
	// wire.
	Magpsf   *float32 `avro:"-" bson:"magpsf,omitempty"`
	Sigmapsf *float32 `avro:"-" bson:"sigmapsf,omitempty"`
}

// DiaForcedSource is a single-epoch forced-photometry sample at a
// pre-specified location.
type DiaForcedSource struct {
	ForcedSourceID int64   `avro:"diaForcedSourceId" bson:"diaForcedSourceId"`
	ObjectID       int64   `avro:"diaObjectId" bson:"objectId"`
	Ra             float64 `avro:"ra" bson:"ra"`
	Dec            float64 `avro:"dec" bson:"dec"`
	Visit          int64   `avro:"visit" bson:"visit"`
	Detector       int32   `avro:"detector" bson:"detector"`

	PsfFlux    *float32 `avro:"psfFlux" bson:"psfFlux,omitempty"`
	PsfFluxErr *float32 `avro:"psfFluxErr" bson:"psfFluxErr,omitempty"`

	MJD  float64 `avro:"midpointMjdTai" bson:"mjd"`
	Band *string `avro:"band" bson:"band,omitempty"`

	ScienceFlux *float32 `avro:"scienceFlux" bson:"scienceFlux,omitempty"`

	Magpsf   *float32 `avro:"-" bson:"magpsf,omitempty"`
	Sigmapsf *float32 `avro:"-" bson:"sigmapsf,omitempty"`
}

// DiaNondetectionLimit is the faintest flux that would have been
// detected at a given location and epoch.
type DiaNondetectionLimit struct {
	CcdVisitID int64   `avro:"ccdVisitId" bson:"ccdVisitId"`
	MJD        float64 `avro:"midpointMjdTai" bson:"mjd"`
	Band       string  `avro:"band" bson:"band"`
	DiaNoise   float32 `avro:"diaNoise" bson:"diaNoise"`
}

// BandMean holds one band's weighted-mean PSF and forced-photometry
// aggregates, repeated for each of u, g, r, i, z, y on DiaObject.
type BandMean struct {
	PsfFluxMean    *float32 `bson:",omitempty"`
	PsfFluxMeanErr *float32 `bson:",omitempty"`
	PsfFluxChi2    *float32 `bson:",omitempty"`
	PsfFluxNdata   *int32   `bson:",omitempty"`
	PsfFluxErrMean *float32 `bson:",omitempty"`
	FpFluxMean     *float32 `bson:",omitempty"`
	FpFluxMeanErr  *float32 `bson:",omitempty"`
}

// DiaObject is the per-object aggregate summary.
type DiaObject struct {
	ObjectID int64    `avro:"diaObjectId" bson:"objectId"`
	Ra       float64  `avro:"ra" bson:"ra"`
	RaErr    *float32 `avro:"raErr" bson:"raErr,omitempty"`
	Dec      float64  `avro:"dec" bson:"dec"`
	DecErr   *float32 `avro:"decErr" bson:"decErr,omitempty"`
	// RadecMjdTai is the epoch at which Ra/Dec apply.
	RadecMjdTai *float64 `avro:"radecMjdTai" bson:"radecMjdTai,omitempty"`

	PmRa          *float32 `avro:"pmRa" bson:"pmRa,omitempty"`
	PmRaErr       *float32 `avro:"pmRaErr" bson:"pmRaErr,omitempty"`
	PmDec         *float32 `avro:"pmDec" bson:"pmDec,omitempty"`
	PmDecErr      *float32 `avro:"pmDecErr" bson:"pmDecErr,omitempty"`
	Parallax      *float32 `avro:"parallax" bson:"parallax,omitempty"`
	ParallaxErr   *float32 `avro:"parallaxErr" bson:"parallaxErr,omitempty"`
	PmParallaxChi2  *float32 `avro:"pmParallaxChi2" bson:"pmParallaxChi2,omitempty"`
	PmParallaxNdata *int32   `avro:"pmParallaxNdata" bson:"pmParallaxNdata,omitempty"`

	U BandMean `avro:"-" bson:"-"`
	G BandMean `avro:"-" bson:"-"`
	R BandMean `avro:"-" bson:"-"`
	I BandMean `avro:"-" bson:"-"`
	Z BandMean `avro:"-" bson:"-"`
	Y BandMean `avro:"-" bson:"-"`
}

// Bands lists the six photometric bands a DiaObject carries aggregates
// for, in the order the wire schema defines per-band fields.
var Bands = [6]string{"u", "g", "r", "i", "z", "y"}

// BandAggregate returns the aggregate block for one of Bands, or nil
// for an unrecognized band.
func (o *DiaObject) BandAggregate(band string) *BandMean {
	switch band {
	case "u":
		return &o.U
	case "g":
		return &o.G
	case "r":
		return &o.R
	case "i":
		return &o.I
	case "z":
		return &o.Z
	case "y":
		return &o.Y
	default:
		return nil
	}
}

// Envelope is the top-level alert record decoded from one packet.
type Envelope struct {
	// Candid is the alert identifier, used as the primary document key.
	Candid           int64                  `avro:"alertId" bson:"candid"`
	Candidate        DiaSource              `avro:"diaSource" bson:"candidate"`
	PrvCandidates    []DiaSource            `avro:"prvDiaSources" bson:"prv_candidates,omitempty"`
	FpHists          []DiaForcedSource      `avro:"prvDiaForcedSources" bson:"fp_hists,omitempty"`
	PrvNondetections []DiaNondetectionLimit `avro:"prvDiaNondetectionLimits" bson:"prv_nondetections,omitempty"`
	Object           *DiaObject             `avro:"diaObject" bson:"dia_object,omitempty"`

	// CutoutScience, CutoutTemplate and CutoutDifference are opaque
	// imagery buffers. A nil slice means the field was absent on the
	// wire; a non-nil empty slice means it was present but empty — the
	// two are never conflated.
	CutoutScience    []byte `avro:"cutoutScience" bson:"cutoutScience,omitempty"`
	CutoutTemplate   []byte `avro:"cutoutTemplate" bson:"cutoutTemplate,omitempty"`
	CutoutDifference []byte `avro:"cutoutDifference" bson:"cutoutDifference,omitempty"`
}
