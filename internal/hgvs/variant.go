package hgvs

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mavedb/mavedb-core/internal/domain"
)

// Column names one of the three HGVS columns a Variant may carry.
type Column string

const (
	ColumnNT     Column = "hgvs_nt"
	ColumnSplice Column = "hgvs_splice"
	ColumnPro    Column = "hgvs_pro"
)

// allowedPrefixes lists the legal prefix letters for each column
// (spec §4.A "HGVS column contract").
var allowedPrefixes = map[Column][]string{
	ColumnNT:     {"c.", "n.", "g.", "m.", "o."},
	ColumnSplice: {"c.", "n."},
	ColumnPro:    {"p."},
}

// prefixOf returns the leading "x." token of an HGVS string, or "" if none
// of the allowed prefixes for col match.
func prefixOf(col Column, s string) (string, bool) {
	for _, p := range allowedPrefixes[col] {
		if strings.HasPrefix(s, p) {
			return p, true
		}
	}
	return "", false
}

// ValidateColumnPrefixConsistency checks that every non-null value in values
// uses the same prefix, and that the prefix is legal for col (spec §4.A).
// Returns one RowError per offending row; row indices are 0-based positions
// into values.
func ValidateColumnPrefixConsistency(col Column, values []*string) []domain.RowError {
	var errs []domain.RowError
	var seenPrefix string

	for i, v := range values {
		if v == nil || strings.TrimSpace(*v) == "" {
			continue
		}
		prefix, ok := prefixOf(col, *v)
		if !ok {
			errs = append(errs, domain.RowError{
				Row:     i,
				Column:  string(col),
				Message: fmt.Sprintf("%q does not use a prefix allowed for %s", *v, col),
			})
			continue
		}
		if seenPrefix == "" {
			seenPrefix = prefix
		} else if prefix != seenPrefix {
			errs = append(errs, domain.RowError{
				Row:     i,
				Column:  string(col),
				Message: fmt.Sprintf("prefix %q is inconsistent with column prefix %q", prefix, seenPrefix),
			})
		}
	}
	return errs
}

// ValidateRowPrefixCombination enforces the single-row prefix combination
// rules of spec §4.A. nt/splice/pro are nil when the column is null for this
// row.
func ValidateRowPrefixCombination(row int, nt, splice, pro *string) *domain.RowError {
	ntPrefix, hasNT := prefixOfOrEmpty(ColumnNT, nt)
	_, hasSplice := prefixOfOrEmpty(ColumnSplice, splice)
	_, hasPro := prefixOfOrEmpty(ColumnPro, pro)

	genomic := hasNT && (ntPrefix == "g." || ntPrefix == "m." || ntPrefix == "o.")
	nonCoding := hasNT && ntPrefix == "n."
	coding := hasNT && ntPrefix == "c."

	switch {
	case !hasNT && !hasSplice && !hasPro:
		return nil // empty row, caught elsewhere as a null-row
	case genomic && hasSplice && hasPro && !isNonCodingSplice(splice):
		return nil // (g/m/o., c., p.)
	case genomic && hasSplice && !hasPro && isNonCodingSplice(splice):
		return nil // (g/m/o., n., ∅)
	case nonCoding && !hasSplice && !hasPro:
		return nil // (n., ∅, ∅)
	case coding && !hasSplice && hasPro:
		return nil // (c., ∅, p.)
	case !hasNT && !hasSplice && hasPro:
		return nil // (∅, ∅, p.)
	default:
		return &domain.RowError{
			Row:     row,
			Message: "illegal combination of hgvs_nt/hgvs_splice/hgvs_pro prefixes for this row",
		}
	}
}

func isNonCodingSplice(splice *string) bool {
	p, ok := prefixOfOrEmpty(ColumnSplice, splice)
	return ok && p == "n."
}

func prefixOfOrEmpty(col Column, v *string) (string, bool) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return "", false
	}
	return prefixOf(col, *v)
}

// Substitution is a parsed single-position HGVS substitution event, the only
// form spec §4.A requires cross-checking against a target sequence.
type Substitution struct {
	Prefix   string
	Position int
	Ref      string
	Alt      string
}

var (
	ntSubPattern  = regexp.MustCompile(`^(c\.|n\.|g\.|m\.|o\.)(\d+)([ACGT]+)>([ACGT]+)$`)
	proSubPattern = regexp.MustCompile(`^p\.([A-Z][a-z]{2})(\d+)([A-Z][a-z]{2}|=|Ter|\*)$`)
	nonSubPattern = regexp.MustCompile(`^(c\.|n\.|g\.|m\.|o\.)(\d+)(_(\d+))?(del|dup|ins[ACGT]+|delins[ACGT]+)$`)
)

// ParseVariant validates a single HGVS variant string's grammar for the
// named column and returns the parsed substitution when the string is a
// simple substitution (the only form checked against a target sequence);
// nucleotide del/dup/ins/delins events parse successfully but return a nil
// Substitution, since spec §4.A only requires position/residue consistency
// checking for substitutions. The only protein form recognized is a
// substitution: protein deletions, duplications and insertions are rejected.
func ParseVariant(col Column, s string) (*Substitution, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, domain.NewValidationError("empty HGVS variant string")
	}

	if col == ColumnPro {
		if m := proSubPattern.FindStringSubmatch(s); m != nil {
			pos, _ := strconv.Atoi(m[2])
			return &Substitution{Prefix: "p.", Position: pos, Ref: m[1], Alt: m[3]}, nil
		}
		if nonSubPattern.MatchString(s) {
			return nil, nil
		}
		return nil, domain.NewValidationError(fmt.Sprintf("%q is not a valid MAVE-HGVS protein variant", s))
	}

	if m := ntSubPattern.FindStringSubmatch(s); m != nil {
		pos, _ := strconv.Atoi(m[2])
		return &Substitution{Prefix: m[1], Position: pos, Ref: m[3], Alt: m[4]}, nil
	}
	if nonSubPattern.MatchString(s) {
		return nil, nil
	}
	return nil, domain.NewValidationError(fmt.Sprintf("%q is not a valid MAVE-HGVS nucleotide variant", s))
}

// CheckAgainstTarget verifies that a parsed substitution's reference
// base/residue matches the target sequence at the stated 1-based position
// (spec §4.A "must additionally be consistent with the target sequence").
func (s Substitution) CheckAgainstTarget(target string) error {
	if s.Position < 1 || s.Position > len(target) {
		return domain.NewValidationError(fmt.Sprintf("position %d is out of range for target sequence of length %d", s.Position, len(target)))
	}
	want := strings.ToUpper(target[s.Position-1 : s.Position])
	got := strings.ToUpper(s.Ref[:1])
	if s.Prefix == "p." {
		// Ref/Alt are three-letter codes; compare against the target's
		// single-letter residue via the reverse codon dictionary.
		three, ok := singleToThree[rune(target[s.Position-1])]
		if !ok || !strings.EqualFold(three, s.Ref) {
			return domain.NewValidationError(fmt.Sprintf("residue at position %d does not match target sequence", s.Position))
		}
		return nil
	}
	if want != got {
		return domain.NewValidationError(fmt.Sprintf("reference base %q at position %d does not match target sequence (%q)", s.Ref, s.Position, want))
	}
	return nil
}

var singleToThree = map[rune]string{
	'A': "Ala", 'R': "Arg", 'N': "Asn", 'D': "Asp", 'C': "Cys",
	'Q': "Gln", 'E': "Glu", 'G': "Gly", 'H': "His", 'I': "Ile",
	'L': "Leu", 'K': "Lys", 'M': "Met", 'F': "Phe", 'P': "Pro",
	'S': "Ser", 'T': "Thr", 'W': "Trp", 'Y': "Tyr", 'V': "Val",
	'*': "Ter",
}

// ValidateColumn parses and, for substitutions, target-checks every non-null
// value in a column, aggregating all failures rather than stopping at the
// first (spec §4.A: "enumerates all invalid variants and their row
// indices").
func ValidateColumn(col Column, values []*string, target string) []domain.RowError {
	var errs []domain.RowError
	for i, v := range values {
		if v == nil || strings.TrimSpace(*v) == "" {
			continue
		}
		sub, err := ParseVariant(col, *v)
		if err != nil {
			errs = append(errs, domain.RowError{Row: i, Column: string(col), Message: err.Error()})
			continue
		}
		if sub == nil || col == ColumnSplice {
			continue // hgvs_splice is not target-checked per spec §4.A
		}
		if err := sub.CheckAgainstTarget(target); err != nil {
			errs = append(errs, domain.RowError{Row: i, Column: string(col), Message: err.Error()})
		}
	}
	return errs
}
