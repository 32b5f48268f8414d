package domain

// ProcessingState tracks the lifecycle of a ScoreSet's variant ingestion.
type ProcessingState string

const (
	ProcessingIncomplete ProcessingState = "incomplete"
	ProcessingInProgress ProcessingState = "processing"
	ProcessingSuccess    ProcessingState = "success"
	ProcessingFailed     ProcessingState = "failed"
)

// MappingState tracks the lifecycle of a ScoreSet's VRS mapping.
type MappingState string

const (
	MappingPending                  MappingState = "pending"
	MappingPendingVariantProcessing MappingState = "pending_variant_processing"
	MappingQueued                   MappingState = "queued"
	MappingProcessing               MappingState = "processing"
	MappingComplete                 MappingState = "complete"
	MappingIncomplete               MappingState = "incomplete"
	MappingFailed                   MappingState = "failed"
	MappingNotAttempted             MappingState = "not_attempted"
)

// TargetSequenceType is the declared or inferred kind of a target sequence.
type TargetSequenceType string

const (
	SequenceDNA     TargetSequenceType = "dna"
	SequenceProtein TargetSequenceType = "protein"
	SequenceInfer   TargetSequenceType = "infer"
)

// FunctionalClass is the coarse functional bucket of a FunctionalClassification.
type FunctionalClass string

const (
	FunctionalNormal      FunctionalClass = "normal"
	FunctionalAbnormal    FunctionalClass = "abnormal"
	FunctionalNotSpecified FunctionalClass = "not_specified"
)

// ACMGCriterion is the ACMG/AMP evidence code a FunctionalClassification may
// carry. The core only needs the functional-assay criteria (PS3/BS3); the
// type is open-ended so additional criteria can be recorded without a schema
// change; only PS3 and BS3 carry point weights.
type ACMGCriterion string

const (
	CriterionPS3 ACMGCriterion = "PS3"
	CriterionBS3 ACMGCriterion = "BS3"
)

func (c ACMGCriterion) IsPathogenic() bool { return len(c) >= 2 && c[:2] == "PS" }
func (c ACMGCriterion) IsBenign() bool     { return len(c) >= 2 && c[:2] == "BS" }

// EvidenceStrength is the ACMG/AMP evidence weight.
type EvidenceStrength string

const (
	StrengthSupporting  EvidenceStrength = "SUPPORTING"
	StrengthModerate    EvidenceStrength = "MODERATE"
	StrengthStrong      EvidenceStrength = "STRONG"
	StrengthVeryStrong  EvidenceStrength = "VERY_STRONG"
)

// JobStatus is the lifecycle state of a JobRun (spec §3 JobRun, §4.F).
type JobStatus string

const (
	JobPending  JobStatus = "PENDING"
	JobRunning  JobStatus = "RUNNING"
	JobSucceeded JobStatus = "SUCCEEDED"
	JobFailed   JobStatus = "FAILED"
	JobRetried  JobStatus = "RETRIED"
)

// PipelineStatus is the lifecycle state of a Pipeline (spec §3/§4.F).
type PipelineStatus string

const (
	PipelineCreated   PipelineStatus = "CREATED"
	PipelineRunning   PipelineStatus = "RUNNING"
	PipelineSucceeded PipelineStatus = "SUCCEEDED"
	PipelineFailed    PipelineStatus = "FAILED"
)

// AnnotationType enumerates the kinds of per-variant annotation status rows
// (spec §3 VariantAnnotationStatus).
type AnnotationType string

const (
	AnnotationVRSMapping             AnnotationType = "VRS_MAPPING"
	AnnotationClinGenAlleleID        AnnotationType = "CLINGEN_ALLELE_ID"
	AnnotationClinVarControl         AnnotationType = "CLINVAR_CONTROL"
	AnnotationGnomADAlleleFrequency  AnnotationType = "GNOMAD_ALLELE_FREQUENCY"
	AnnotationVEPFunctionalConsequence AnnotationType = "VEP_FUNCTIONAL_CONSEQUENCE"
)

// AnnotationStatus is the outcome recorded for one annotation attempt.
type AnnotationStatus string

const (
	AnnotationSuccess AnnotationStatus = "SUCCESS"
	AnnotationFailedStatus AnnotationStatus = "FAILED"
	AnnotationSkipped AnnotationStatus = "SKIPPED"
)

// PipelineType names a pre-registered multi-step workflow (spec §4.F).
type PipelineType string

const (
	PipelineVariantIngestAndMap PipelineType = "variant_ingest_and_map"
)

// JobFunction names the closed set of background jobs (spec §4.G/§4.H).
type JobFunction string

const (
	JobCreateVariantsForScoreSet JobFunction = "create_variants_for_score_set"
	JobMapVariantsForScoreSet    JobFunction = "map_variants_for_score_set"
	JobVariantMapperManager      JobFunction = "variant_mapper_manager"
	JobRefreshClinVarControls    JobFunction = "refresh_clinvar_controls"
	JobLinkGnomADVariants        JobFunction = "link_gnomad_variants"
)
