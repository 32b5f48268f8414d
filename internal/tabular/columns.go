package tabular

import (
	"sort"
	"strconv"
	"strings"

	"github.com/mavedb/mavedb-core/internal/domain"
)

// standardNames are lowercased if encountered in any case; every other
// column name keeps its original case (spec §4.B step 1).
var standardNames = map[string]string{
	"hgvs_nt":     "hgvs_nt",
	"hgvs_splice": "hgvs_splice",
	"hgvs_pro":    "hgvs_pro",
	"score":       "score",
}

// canonicalOrder is the fixed column ordering the other standard names sort
// into first (spec §4.B step 2).
var canonicalOrder = []string{"hgvs_nt", "hgvs_splice", "hgvs_pro", "score"}

// StandardizeColumns lowercases recognized standard names (case-insensitive
// match) and leaves every other column name untouched.
func StandardizeColumns(columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		if std, ok := standardNames[strings.ToLower(c)]; ok {
			out[i] = std
		} else {
			out[i] = c
		}
	}
	return out
}

// CanonicalizeOrder sorts columns into hgvs_nt, hgvs_splice, hgvs_pro,
// score, then all extras in their original relative order.
func CanonicalizeOrder(columns []string) []string {
	rank := func(name string) int {
		for i, c := range canonicalOrder {
			if name == c {
				return i
			}
		}
		return len(canonicalOrder)
	}

	out := make([]string, len(columns))
	copy(out, columns)
	sort.SliceStable(out, func(i, j int) bool {
		return rank(out[i]) < rank(out[j])
	})
	return out
}

// ValidateColumnNames enforces spec §4.B step 3: non-empty non-whitespace
// names, no case-insensitive duplicates, at least one HGVS column, at least
// one non-HGVS data column, and hgvs_splice requires both hgvs_nt and
// hgvs_pro present.
func ValidateColumnNames(columns []string) []domain.RowError {
	var errs []domain.RowError
	seen := map[string]bool{}
	hgvsCols := map[string]bool{}
	dataCols := 0

	for _, c := range columns {
		if strings.TrimSpace(c) == "" {
			errs = append(errs, domain.RowError{Column: c, Message: "column names must be non-empty and not pure whitespace"})
			continue
		}
		lower := strings.ToLower(c)
		if seen[lower] {
			errs = append(errs, domain.RowError{Column: c, Message: "duplicate column name (case-insensitive)"})
			continue
		}
		seen[lower] = true

		switch c {
		case "hgvs_nt", "hgvs_splice", "hgvs_pro":
			hgvsCols[c] = true
		default:
			dataCols++
		}
	}

	if len(hgvsCols) == 0 {
		errs = append(errs, domain.RowError{Message: "at least one HGVS column is required"})
	}
	if dataCols == 0 {
		errs = append(errs, domain.RowError{Message: "at least one data column beyond the HGVS columns is required"})
	}
	if hgvsCols["hgvs_splice"] && !(hgvsCols["hgvs_nt"] && hgvsCols["hgvs_pro"]) {
		errs = append(errs, domain.RowError{Message: "hgvs_splice requires both hgvs_nt and hgvs_pro to be present"})
	}
	return errs
}

// ChooseIndexColumn picks the first of (hgvs_nt, hgvs_splice, hgvs_pro) that
// is present and fully non-null (spec §4.B step 5).
func ChooseIndexColumn(df *DataFrame) (string, []*string, *domain.RowError) {
	for _, name := range []string{"hgvs_nt", "hgvs_splice", "hgvs_pro"} {
		col, ok := df.Column(name)
		if !ok {
			continue
		}
		for i, v := range col {
			if v == nil {
				return "", nil, &domain.RowError{Row: i, Column: name, Message: "index HGVS column must be fully non-null"}
			}
		}
		return name, col, nil
	}
	return "", nil, &domain.RowError{Message: "no HGVS column is available to serve as the index"}
}

// ValidateIndexUniqueness checks that the index column's values are unique.
func ValidateIndexUniqueness(column string, values []*string) []domain.RowError {
	var errs []domain.RowError
	seen := map[string]int{}
	for i, v := range values {
		if v == nil {
			continue
		}
		if first, ok := seen[*v]; ok {
			errs = append(errs, domain.RowError{Row: i, Column: column, Message: "duplicate index value, first seen at row " + strconv.Itoa(first)})
			continue
		}
		seen[*v] = i
	}
	return errs
}
