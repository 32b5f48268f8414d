package domain

import "time"

// Variant is a single row of ingested tabular data bound to a ScoreSet
// (spec §3 Variant).
type Variant struct {
	ID         int64
	URN        string
	ScoreSetID int64

	HGVSNt     *string
	HGVSSplice *string
	HGVSPro    *string

	Data VariantData

	CreatedAt time.Time
}

// HasHGVS reports the invariant that at least one HGVS form is present.
func (v *Variant) HasHGVS() bool {
	return v.HGVSNt != nil || v.HGVSSplice != nil || v.HGVSPro != nil
}

// VariantData is the `{score_data: {...}, count_data: {...}}` JSON payload.
type VariantData struct {
	ScoreData map[string]any `json:"score_data"`
	CountData map[string]any `json:"count_data,omitempty"`
}

// Score extracts variant.data.score_data.score as a float64, per the
// calibration engine's per-variant lookup contract (spec §4.C). The second
// return value is false when the score is missing or non-numeric.
func (d VariantData) Score() (float64, bool) {
	if d.ScoreData == nil {
		return 0, false
	}
	raw, ok := d.ScoreData["score"]
	if !ok || raw == nil {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// MappedVariant is the VRS-mapped view of a Variant (spec §3 MappedVariant).
type MappedVariant struct {
	ID                int64
	VariantID         int64
	PreMapped         map[string]any
	PostMapped        map[string]any
	VRSVersion        string
	MappingAPIVersion string
	MappedDate        time.Time
	Current           bool
	ClinGenAlleleID   *string
	ErrorMessage      *string
}

// HasMultiCAID reports whether ClinGenAlleleID names more than one CAID
// (a comma-separated list), the "multi-variant" case from spec §4.H.
func (m *MappedVariant) HasMultiCAID() bool {
	if m.ClinGenAlleleID == nil {
		return false
	}
	for _, r := range *m.ClinGenAlleleID {
		if r == ',' {
			return true
		}
	}
	return false
}

// VariantAnnotationStatus is an append-only history row recording the
// outcome of one annotation attempt (spec §3 VariantAnnotationStatus).
type VariantAnnotationStatus struct {
	ID             int64
	VariantID      int64
	AnnotationType AnnotationType
	Version        *string
	Status         AnnotationStatus
	Current        bool
	AnnotationData map[string]any
	ErrorMessage   *string
	JobRunID       *int64
	CreatedAt      time.Time
}
