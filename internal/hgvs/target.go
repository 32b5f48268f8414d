package hgvs

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mavedb/mavedb-core/internal/domain"
)

var (
	dnaAlphabet     = regexp.MustCompile(`^[ACTG]+$`)
	proteinAlphabet = regexp.MustCompile(`^[ACDEFGHIKLMNPQRSTVWY*]+$`)
)

// ResolveTargetType infers the sequence type when declared as SequenceInfer
// and validates the sequence against its resolved alphabet/length rules
// (spec §4.A "Target sequence"). Returns the resolved (non-infer) type.
func ResolveTargetType(t domain.TargetSequence) (domain.TargetSequenceType, error) {
	seq := strings.ToUpper(t.Sequence)
	if seq == "" {
		return "", domain.NewValidationError("target sequence cannot be empty")
	}

	resolved := t.Type
	if resolved == domain.SequenceInfer {
		if dnaAlphabet.MatchString(seq) {
			resolved = domain.SequenceDNA
		} else {
			resolved = domain.SequenceProtein
		}
	}

	switch resolved {
	case domain.SequenceDNA:
		if !dnaAlphabet.MatchString(seq) {
			return "", domain.NewValidationError("DNA target sequence must contain only A/C/T/G")
		}
		if len(seq)%3 != 0 {
			return "", domain.NewValidationError("DNA target sequence length must be a multiple of 3")
		}
	case domain.SequenceProtein:
		if !proteinAlphabet.MatchString(seq) {
			return "", domain.NewValidationError("protein target sequence contains invalid residues")
		}
	default:
		return "", fmt.Errorf("unrecognized target sequence type %q", t.Type)
	}
	return resolved, nil
}

// ProteinView returns the sequence to validate `hgvs_pro` variants against:
// the sequence itself if already protein, or its first-frame translation if
// DNA (spec §4.B step 6: "translated to protein for hgvs_pro when the target
// is DNA").
func ProteinView(t domain.TargetSequence) (string, error) {
	resolved, err := ResolveTargetType(t)
	if err != nil {
		return "", err
	}
	if resolved == domain.SequenceProtein {
		return strings.ToUpper(t.Sequence), nil
	}
	return TranslateSequence(t.Sequence), nil
}
