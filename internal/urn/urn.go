// Package urn assigns the structured `urn:mavedb:...` identifiers a
// ScoreSet/Experiment/ExperimentSet/Variant receives on publish (spec
// §4.I), and recognizes the temporary `tmp:` namespace entities carry
// before then.
package urn

import (
	"fmt"
	"strings"
)

const (
	tmpPrefix   = "tmp:"
	finalPrefix = "urn:mavedb:"
)

// IsTemporary reports whether urn is still in the tmp: namespace.
func IsTemporary(urn string) bool {
	return strings.HasPrefix(urn, tmpPrefix)
}

// Temporary mints a new tmp: URN. token should be unique per call (a UUID
// or similar); the package does not generate randomness itself so callers
// stay in control of entropy source and stay testable.
func Temporary(token string) string {
	return tmpPrefix + token
}

// ExperimentSet formats a final experiment set URN: the zero-padded
// 8-digit experiment_set_id (spec §6 URN format, §4.I step 1).
func ExperimentSet(experimentSetID int64) string {
	return fmt.Sprintf("%s%08d", finalPrefix, experimentSetID)
}

// Experiment formats a final experiment URN under an already-final
// experiment set URN, appending its lowercase alphabetic suffix (a, b, ...,
// z, aa, ab, ...) and, for a meta-analysis experiment, the "-0" marker
// spec §4.I step 2 names ("appending a meta-analysis marker").
func Experiment(experimentSetURN string, suffixIndex int, isMetaAnalysis bool) string {
	urn := fmt.Sprintf("%s-%s", experimentSetURN, letterSuffix(suffixIndex))
	if isMetaAnalysis {
		urn += "-0"
	}
	return urn
}

// ScoreSet formats a final score set URN under an already-final experiment
// URN, appending its 1-based numeric suffix within that experiment.
func ScoreSet(experimentURN string, suffixIndex int) string {
	return fmt.Sprintf("%s-%d", experimentURN, suffixIndex)
}

// Variant formats a variant URN: its owning score set's URN plus a 1-based
// "#n" suffix (spec §6 "variant URNs append #<n> with 1-based numbering"),
// used both for the initial tmp: assignment and the final renumbering on
// publish (spec §4.I step 4).
func Variant(scoreSetURN string, n int) string {
	return fmt.Sprintf("%s#%d", scoreSetURN, n)
}

// VariantNumber extracts the 1-based "n" suffix from a variant URN of the
// form "<score_set_urn>#<n>".
func VariantNumber(variantURN string) (int, error) {
	idx := strings.LastIndexByte(variantURN, '#')
	if idx < 0 {
		return 0, fmt.Errorf("variant urn %q has no #n suffix", variantURN)
	}
	var n int
	if _, err := fmt.Sscanf(variantURN[idx+1:], "%d", &n); err != nil {
		return 0, fmt.Errorf("variant urn %q has a non-numeric suffix: %w", variantURN, err)
	}
	return n, nil
}

// letterSuffix converts a 0-based index into MaveDB's lowercase
// spreadsheet-column-style experiment suffix: 0->"a", 25->"z", 26->"aa".
func letterSuffix(index int) string {
	if index < 0 {
		index = 0
	}
	var letters []byte
	for {
		letters = append([]byte{byte('a' + index%26)}, letters...)
		index = index/26 - 1
		if index < 0 {
			break
		}
	}
	return string(letters)
}
