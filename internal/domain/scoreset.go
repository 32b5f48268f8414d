package domain

import "time"

// ExperimentSet is the top-level grouping node over Experiments.
type ExperimentSet struct {
	ID          int64
	URN         string
	Private     bool
	PublishedDate *time.Time
	Contributors  []Contributor
	CreatedAt   time.Time
	ModifiedAt  time.Time
}

// IsTemporary reports whether the entity still carries a tmp: URN, i.e. has
// never been published (spec §6 URN format).
func (es *ExperimentSet) IsTemporary() bool { return isTemporaryURN(es.URN) }

// Experiment groups ScoreSets under an ExperimentSet.
type Experiment struct {
	ID              int64
	URN             string
	ExperimentSetID int64
	Title           string
	Abstract        string
	MethodText      string
	Private         bool
	PublishedDate   *time.Time
	Contributors    []Contributor
	CreatedAt       time.Time
	ModifiedAt      time.Time
}

func (e *Experiment) IsTemporary() bool { return isTemporaryURN(e.URN) }

// TargetGene identifies what a ScoreSet's assay measures: either a bare
// target sequence or a reference accession (spec §3 TargetGene).
type TargetGene struct {
	ID          int64
	ScoreSetID  int64
	Label       string
	Taxonomy    string

	// Exactly one of Sequence / Accession is populated.
	Sequence  *TargetSequence
	Accession *TargetAccession

	// MappedReferenceSequence is the VRS mapper's per-layer reference
	// metadata for this gene, populated by map_variants_for_score_set step 3
	// (spec §4.G "persist pre-mapped and post-mapped metadata per annotation
	// layer, plus mapped HGNC name"). Nil until a mapping run has completed.
	MappedReferenceSequence *ReferenceSequenceInfo
}

// TargetSequence is a bare character sequence plus its declared/inferred kind.
type TargetSequence struct {
	Sequence string
	Type     TargetSequenceType
}

// TargetAccession references an external reference transcript/genome.
type TargetAccession struct {
	Accession  string
	IsBaseEditor bool
}

// IsAccessionBased reports whether this gene is defined by reference
// accession rather than a literal sequence.
func (t *TargetGene) IsAccessionBased() bool { return t.Accession != nil }

// ScoreSet is the unit of published MAVE data (spec §3 ScoreSet).
type ScoreSet struct {
	ID              int64
	URN             string
	ExperimentID    int64
	Title           string
	Abstract        string
	MethodText      string
	LicenseID       int64
	Private         bool
	PublishedDate   *time.Time
	ProcessingState ProcessingState
	MappingState    MappingState
	ProcessingErrors *ProcessingErrors
	MappingErrors    string

	DatasetColumns DatasetColumns
	ScoreRanges    []byte // raw JSON, owned by the calibration engine's schema

	TargetGenes  []TargetGene
	Contributors []Contributor

	// SupersededScoreSetID, when set, is the predecessor this ScoreSet
	// replaces. The chain is linear and acyclic (spec §3 invariants).
	SupersededScoreSetID *int64

	// MetaAnalysisSourceIDs are the ScoreSets this meta-analysis reports on.
	// A non-empty list makes this ScoreSet a meta-analysis.
	MetaAnalysisSourceIDs []int64

	NumVariants int

	CreatedAt  time.Time
	ModifiedAt time.Time
	ModifiedBy int64
}

func (s *ScoreSet) IsTemporary() bool { return isTemporaryURN(s.URN) }

// IsMetaAnalysis reports whether this ScoreSet analyzes one or more source
// ScoreSets rather than owning its own direct experimental data.
func (s *ScoreSet) IsMetaAnalysis() bool { return len(s.MetaAnalysisSourceIDs) > 0 }

// DatasetColumns is the declared score/count column metadata emitted by the
// tabular validator (spec §4.B "Column metadata").
type DatasetColumns struct {
	ScoreColumns []string          `json:"score_columns"`
	CountColumns []string          `json:"count_columns"`
	Columns      map[string]ColumnMeta `json:"columns,omitempty"`
}

// ColumnMeta carries externally supplied descriptive metadata for one
// non-HGVS, non-score column.
type ColumnMeta struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func isTemporaryURN(urn string) bool {
	return len(urn) >= 4 && urn[:4] == "tmp:"
}
