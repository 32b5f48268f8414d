package domain

import "time"

// ClinicalControl is an external ClinVar enrichment row, keyed by
// (DbName, DbIdentifier) (spec §3 ClinicalControl).
type ClinicalControl struct {
	ID                   int64
	DbName               string // "ClinVar"
	DbIdentifier         string // VCV accession
	ClinicalSignificance string
	ReviewStatus         string
	GeneSymbol           string
	DbVersion            string // "MM_YYYY"
	CreatedAt            time.Time
}

// GnomADVariant is an external gnomAD enrichment row, keyed by a gnomAD
// variant key (spec §3 GnomADVariant).
type GnomADVariant struct {
	ID              int64
	GnomADVariantID string
	AlleleCount     int
	AlleleNumber    int
	AlleleFrequency float64
	HomozygoteCount int
	CreatedAt       time.Time
}

// ClinVarTSVRow is one parsed row of the ClinVar variant_summary archive
// (spec §4.H), joined against MappedVariants by VCV/allele id.
type ClinVarTSVRow struct {
	VariationID          string
	VCV                  string
	ClinicalSignificance string
	ReviewStatus         string
	GeneSymbol           string
}
