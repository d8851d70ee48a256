package dia

import "fmt"

// FromAvroMap projects a decoded Avro value tree (as produced by the
// hamba/avro binary decoder: nullable unions collapse to either nil or
// the bare branch value) onto a typed Envelope, applying the wire-to-
// storage rename contract. It fails with an error naming the missing
// or mistyped field if a required field cannot be found.
func FromAvroMap(m map[string]any) (*Envelope, error) {
	candid, err := reqInt64(m, "alertId")
	if err != nil {
		return nil, err
	}
	candidateMap, err := reqMap(m, "diaSource")
	if err != nil {
		return nil, err
	}
	candidate, err := sourceFromMap(candidateMap)
	if err != nil {
		return nil, fmt.Errorf("diaSource: %w", err)
	}

	env := &Envelope{
		Candid:           candid,
		Candidate:        *candidate,
		CutoutScience:    optBytes(m, "cutoutScience"),
		CutoutTemplate:   optBytes(m, "cutoutTemplate"),
		CutoutDifference: optBytes(m, "cutoutDifference"),
	}

	if prv, ok := optArray(m, "prvDiaSources"); ok {
		for i, raw := range prv {
			sm, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("prvDiaSources[%d]: not a record", i)
			}
			s, err := sourceFromMap(sm)
			if err != nil {
				return nil, fmt.Errorf("prvDiaSources[%d]: %w", i, err)
			}
			env.PrvCandidates = append(env.PrvCandidates, *s)
		}
	}

	if fp, ok := optArray(m, "prvDiaForcedSources"); ok {
		for i, raw := range fp {
			fm, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("prvDiaForcedSources[%d]: not a record", i)
			}
			f, err := forcedSourceFromMap(fm)
			if err != nil {
				return nil, fmt.Errorf("prvDiaForcedSources[%d]: %w", i, err)
			}
			env.FpHists = append(env.FpHists, *f)
		}
	}

	if nd, ok := optArray(m, "prvDiaNondetectionLimits"); ok {
		for i, raw := range nd {
			nm, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("prvDiaNondetectionLimits[%d]: not a record", i)
			}
			n, err := nondetectionFromMap(nm)
			if err != nil {
				return nil, fmt.Errorf("prvDiaNondetectionLimits[%d]: %w", i, err)
			}
			env.PrvNondetections = append(env.PrvNondetections, *n)
		}
	}

	if om, ok := reqMapOpt(m, "diaObject"); ok {
		obj, err := objectFromMap(om)
		if err != nil {
			return nil, fmt.Errorf("diaObject: %w", err)
		}
		env.Object = obj
	}

	return env, nil
}

func sourceFromMap(m map[string]any) (*DiaSource, error) {
	candid, err := reqInt64(m, "diaSourceId")
	if err != nil {
		return nil, err
	}
	visit, err := reqInt64(m, "visit")
	if err != nil {
		return nil, err
	}
	detector, err := reqInt32(m, "detector")
	if err != nil {
		return nil, err
	}
	mjd, err := reqFloat64(m, "midpointMjdTai")
	if err != nil {
		return nil, err
	}
	ra, err := reqFloat64(m, "ra")
	if err != nil {
		return nil, err
	}
	dec, err := reqFloat64(m, "dec")
	if err != nil {
		return nil, err
	}

	return &DiaSource{
		Candid:         candid,
		Visit:          visit,
		Detector:       detector,
		ObjectID:       optInt64(m, "diaObjectId"),
		SSObjectID:     optInt64(m, "ssObjectId"),
		ParentSourceID: optInt64(m, "parentDiaSourceId"),
		MJD:            mjd,
		Ra:             ra,
		RaErr:          optFloat32(m, "raErr"),
		Dec:            dec,
		DecErr:         optFloat32(m, "decErr"),

		CentroidFlag: optBool(m, "centroid_flag"),
		IsNegative:   optBool(m, "is_negative"),

		ApFlux:           optFloat32(m, "apFlux"),
		ApFluxErr:        optFloat32(m, "apFluxErr"),
		ApFluxFlag:       optBool(m, "apFlux_flag"),
		ApFluxFlagAperTr: optBool(m, "apFlux_flag_apertureTruncated"),

		SNR: optFloat32(m, "snr"),

		PsfFlux:                 optFloat32(m, "psfFlux"),
		PsfFluxErr:              optFloat32(m, "psfFluxErr"),
		PsfRa:                   optFloat64(m, "psfRa"),
		PsfRaErr:                optFloat32(m, "psfRaErr"),
		PsfDec:                  optFloat64(m, "psfDec"),
		PsfDecErr:               optFloat32(m, "psfDecErr"),
		PsfChi2:                 optFloat32(m, "psfChi2"),
		PsfNdata:                optInt32(m, "psfNdata"),
		PsfFluxFlag:             optBool(m, "psfFlux_flag"),
		PsfFluxFlagEdge:         optBool(m, "psfFlux_flag_edge"),
		PsfFluxFlagNoGoodPixels: optBool(m, "psfFlux_flag_noGoodPixels"),

		TrailFlux:      optFloat32(m, "trailFlux"),
		TrailFluxErr:   optFloat32(m, "trailFluxErr"),
		TrailRa:        optFloat64(m, "trailRa"),
		TrailRaErr:     optFloat32(m, "trailRaErr"),
		TrailDec:       optFloat64(m, "trailDec"),
		TrailDecErr:    optFloat32(m, "trailDecErr"),
		TrailLength:    optFloat32(m, "trailLength"),
		TrailLengthErr: optFloat32(m, "trailLengthErr"),
		TrailAngle:     optFloat32(m, "trailAngle"),
		TrailAngleErr:  optFloat32(m, "trailAngleErr"),
		TrailChi2:      optFloat32(m, "trailChi2"),
		TrailNdata:     optInt32(m, "trailNdata"),
		TrailFlagEdge:  optBool(m, "trail_flag_edge"),

		ForcedPsfFluxFlag:             optBool(m, "forced_PsfFlux_flag"),
		ForcedPsfFluxFlagEdge:         optBool(m, "forced_PsfFlux_flag_edge"),
		ForcedPsfFluxFlagNoGoodPixels: optBool(m, "forced_PsfFlux_flag_noGoodPixels"),

		SnapDiffFlux:    optFloat32(m, "snapDiffFlux"),
		SnapDiffFluxErr: optFloat32(m, "snapDiffFluxErr"),
		FpBkgd:          optFloat32(m, "fpBkgd"),
		FpBkgdErr:       optFloat32(m, "fpBkgdErr"),

		ShapeFlag:             optBool(m, "shape_flag"),
		ShapeFlagNoPixels:     optBool(m, "shape_flag_no_pixels"),
		ShapeFlagNotContained: optBool(m, "shape_flag_not_contained"),
		ShapeFlagParentSource: optBool(m, "shape_flag_parent_source"),

		Extendedness: optFloat32(m, "extendedness"),
		Reliability:  optFloat32(m, "reliability"),
		Band:         optString(m, "band"),

		PixelFlags:                       optBool(m, "pixelFlags"),
		PixelFlagsBad:                    optBool(m, "pixelFlags_bad"),
		PixelFlagsCr:                     optBool(m, "pixelFlags_cr"),
		PixelFlagsCrCenter:               optBool(m, "pixelFlags_crCenter"),
		PixelFlagsEdge:                   optBool(m, "pixelFlags_edge"),
		PixelFlagsInterpolated:           optBool(m, "pixelFlags_interpolated"),
		PixelFlagsInterpolatedCenter:     optBool(m, "pixelFlags_interpolatedCenter"),
		PixelFlagsOffimage:               optBool(m, "pixelFlags_offimage"),
		PixelFlagsSaturated:              optBool(m, "pixelFlags_saturated"),
		PixelFlagsSaturatedCenter:        optBool(m, "pixelFlags_saturatedCenter"),
		PixelFlagsSuspect:                optBool(m, "pixelFlags_suspect"),
		PixelFlagsSuspectCenter:          optBool(m, "pixelFlags_suspectCenter"),
		PixelFlagsStreak:                 optBool(m, "pixelFlags_streak"),
		PixelFlagsStreakCenter:           optBool(m, "pixelFlags_streakCenter"),
		PixelFlagsInjected:               optBool(m, "pixelFlags_injected"),
		PixelFlagsInjectedCenter:         optBool(m, "pixelFlags_injectedCenter"),
		PixelFlagsInjectedTemplate:       optBool(m, "pixelFlags_injected_template"),
		PixelFlagsInjectedTemplateCenter: optBool(m, "pixelFlags_injected_templateCenter"),

		ScienceFlux: optFloat32(m, "scienceFlux"),
	}, nil
}

func forcedSourceFromMap(m map[string]any) (*DiaForcedSource, error) {
	id, err := reqInt64(m, "diaForcedSourceId")
	if err != nil {
		return nil, err
	}
	objectID, err := reqInt64(m, "diaObjectId")
	if err != nil {
		return nil, err
	}
	ra, err := reqFloat64(m, "ra")
	if err != nil {
		return nil, err
	}
	dec, err := reqFloat64(m, "dec")
	if err != nil {
		return nil, err
	}
	visit, err := reqInt64(m, "visit")
	if err != nil {
		return nil, err
	}
	detector, err := reqInt32(m, "detector")
	if err != nil {
		return nil, err
	}
	mjd, err := reqFloat64(m, "midpointMjdTai")
	if err != nil {
		return nil, err
	}

	return &DiaForcedSource{
		ForcedSourceID: id,
		ObjectID:       objectID,
		Ra:             ra,
		Dec:            dec,
		Visit:          visit,
		Detector:       detector,
		PsfFlux:        optFloat32(m, "psfFlux"),
		PsfFluxErr:     optFloat32(m, "psfFluxErr"),
		MJD:            mjd,
		Band:           optString(m, "band"),
		ScienceFlux:    optFloat32(m, "scienceFlux"),
	}, nil
}

func nondetectionFromMap(m map[string]any) (*DiaNondetectionLimit, error) {
	ccdVisitID, err := reqInt64(m, "ccdVisitId")
	if err != nil {
		return nil, err
	}
	mjd, err := reqFloat64(m, "midpointMjdTai")
	if err != nil {
		return nil, err
	}
	band, err := reqString(m, "band")
	if err != nil {
		return nil, err
	}
	noise, err := reqFloat32(m, "diaNoise")
	if err != nil {
		return nil, err
	}
	return &DiaNondetectionLimit{
		CcdVisitID: ccdVisitID,
		MJD:        mjd,
		Band:       band,
		DiaNoise:   noise,
	}, nil
}

func objectFromMap(m map[string]any) (*DiaObject, error) {
	objectID, err := reqInt64(m, "diaObjectId")
	if err != nil {
		return nil, err
	}
	ra, err := reqFloat64(m, "ra")
	if err != nil {
		return nil, err
	}
	dec, err := reqFloat64(m, "dec")
	if err != nil {
		return nil, err
	}

	obj := &DiaObject{
		ObjectID:        objectID,
		Ra:              ra,
		RaErr:           optFloat32(m, "raErr"),
		Dec:             dec,
		DecErr:          optFloat32(m, "decErr"),
		RadecMjdTai:     optFloat64(m, "radecMjdTai"),
		PmRa:            optFloat32(m, "pmRa"),
		PmRaErr:         optFloat32(m, "pmRaErr"),
		PmDec:           optFloat32(m, "pmDec"),
		PmDecErr:        optFloat32(m, "pmDecErr"),
		Parallax:        optFloat32(m, "parallax"),
		ParallaxErr:     optFloat32(m, "parallaxErr"),
		PmParallaxChi2:  optFloat32(m, "pmParallaxChi2"),
		PmParallaxNdata: optInt32(m, "pmParallaxNdata"),
	}

	for _, band := range Bands {
		agg := obj.BandAggregate(band)
		agg.PsfFluxMean = optFloat32(m, band+"_psfFluxMean")
		agg.PsfFluxMeanErr = optFloat32(m, band+"_psfFluxMeanErr")
		agg.PsfFluxChi2 = optFloat32(m, band+"_psfFluxChi2")
		agg.PsfFluxNdata = optInt32(m, band+"_psfFluxNdata")
		agg.PsfFluxErrMean = optFloat32(m, band+"_psfFluxErrMean")
		agg.FpFluxMean = optFloat32(m, band+"_fpFluxMean")
		agg.FpFluxMeanErr = optFloat32(m, band+"_fpFluxMeanErr")
	}

	return obj, nil
}
