package domain

import "math"

// PosInf/NegInf are the sentinels representing unbounded interval ends
// (spec §4.C "Interval semantics"). An inclusive infinite end is illegal;
// callers validate that separately.
var (
	PosInf = math.Inf(1)
	NegInf = math.Inf(-1)
)

// ScoreCalibration belongs to a ScoreSet and groups a set of
// FunctionalClassifications (spec §3 ScoreCalibration).
type ScoreCalibration struct {
	ID          int64
	ScoreSetID  int64
	Title       string
	BaselineScore *float64
	ResearchUseOnly bool
	Private         bool
	Primary         bool
	InvestigatorProvided bool

	ThresholdSources      []PublicationIdentifier
	ClassificationSources []PublicationIdentifier
	MethodSources         []PublicationIdentifier

	Classifications []FunctionalClassification
}

// IsClassBased reports whether this calibration classifies variants by a
// symbolic class key rather than a numeric score range. Mixed calibrations
// are rejected by validation, so checking the first classification suffices
// once the calibration is known-valid.
func (c *ScoreCalibration) IsClassBased() bool {
	for _, fc := range c.Classifications {
		return fc.Class != nil
	}
	return false
}

// FunctionalClassification is a single named bucket within a calibration
// (spec §3 FunctionalClassification).
type FunctionalClassification struct {
	ID    int64
	Label string

	// Exactly one of Range / Class is set.
	Range *ScoreRange
	Class *string

	Functional FunctionalClass

	ACMG              *ACMGClassification
	OddspathsRatio    *float64
	PositiveLikelihoodRatio *float64
}

// ScoreRange is an interval between Lower and Upper (spec §4.C). Each end is
// exclusive unless its Inclusive flag is set: a zero-valued ScoreRange is
// the open interval (Lower, Upper), and `[Lower, Upper)` needs
// InclusiveLower set.
type ScoreRange struct {
	Lower float64
	Upper float64

	InclusiveLower bool
	InclusiveUpper bool
}

// Contains reports score ∈ range per the inclusivity flags.
func (r ScoreRange) Contains(score float64) bool {
	lowerOK := score > r.Lower
	if r.InclusiveLower {
		lowerOK = score >= r.Lower
	}
	upperOK := score < r.Upper
	if r.InclusiveUpper {
		upperOK = score <= r.Upper
	}
	return lowerOK && upperOK
}

// ACMGClassification is an ACMG/AMP evidence code paired with a strength,
// carrying the signed point weight used by odds-path inference (spec §4.C).
type ACMGClassification struct {
	Criterion ACMGCriterion
	Strength  EvidenceStrength
}

// acmgPointWeights maps (criterion, strength) to its signed point weight.
// PS3 contributes positive (pathogenic-side) weight; BS3 negative
// (benign-side) weight, per spec §4.C.
var acmgPointWeights = map[ACMGCriterion]map[EvidenceStrength]int{
	CriterionPS3: {
		StrengthSupporting: 1,
		StrengthModerate:   2,
		StrengthStrong:     4,
		StrengthVeryStrong: 8,
	},
	CriterionBS3: {
		StrengthSupporting: -1,
		StrengthModerate:   -2,
		StrengthStrong:     -3,
		StrengthVeryStrong: -4,
	},
}

// PointWeight returns the signed ACMG point weight for this classification,
// and false if the (criterion, strength) pair is not a recognized weight.
func (a ACMGClassification) PointWeight() (int, bool) {
	strengths, ok := acmgPointWeights[a.Criterion]
	if !ok {
		return 0, false
	}
	w, ok := strengths[a.Strength]
	return w, ok
}

// strengthOrder is every EvidenceStrength from weakest to strongest, used to
// walk a criterion's point-weight table from strongest to weakest.
var strengthOrder = []EvidenceStrength{StrengthSupporting, StrengthModerate, StrengthStrong, StrengthVeryStrong}

// StrengthsByDescendingWeight returns (strength, |weight|) pairs for
// criterion, ordered from strongest to weakest evidence. It lets callers
// (the odds-path inference table) walk a criterion's actual weight scale
// without assuming it is linear or exponential.
func StrengthsByDescendingWeight(criterion ACMGCriterion) []struct {
	Strength EvidenceStrength
	Weight   int
} {
	strengths := acmgPointWeights[criterion]
	out := make([]struct {
		Strength EvidenceStrength
		Weight   int
	}, 0, len(strengthOrder))
	for i := len(strengthOrder) - 1; i >= 0; i-- {
		s := strengthOrder[i]
		if w, ok := strengths[s]; ok {
			if w < 0 {
				w = -w
			}
			out = append(out, struct {
				Strength EvidenceStrength
				Weight   int
			}{s, w})
		}
	}
	return out
}
