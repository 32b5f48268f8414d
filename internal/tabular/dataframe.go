// Package tabular validates and standardizes the score/count data frames
// uploaded against a ScoreSet (spec §4.B).
package tabular

import "strings"

// DataFrame is a minimal column-oriented table: a header plus nullable
// string cells, the shape the validator operates on once a CSV (or any
// other tabular source) has been loaded (spec §4.B "Two data frames").
type DataFrame struct {
	Columns []string
	Rows    [][]*string // Rows[i][j] is the cell for Columns[j] in row i
}

// Column returns every cell in the named column, or false if it is absent.
// Lookup is exact-match; callers standardize names first.
func (df *DataFrame) Column(name string) ([]*string, bool) {
	idx := -1
	for i, c := range df.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	col := make([]*string, len(df.Rows))
	for i, row := range df.Rows {
		if idx < len(row) {
			col[i] = row[idx]
		}
	}
	return col, true
}

// HasColumn reports whether name is present.
func (df *DataFrame) HasColumn(name string) bool {
	_, ok := df.Column(name)
	return ok
}

// nullTokens is the fixed, case-insensitive set of strings treated as null
// during ingestion (spec §4.B "Null tokens").
var nullTokens = map[string]struct{}{
	"": {}, "na": {}, "n/a": {}, "null": {}, "none": {}, "nan": {},
	"undefined": {}, "nil": {},
}

// Normalize converts a raw cell string into a nullable cell: nil if the
// trimmed, lowercased value is a recognized null token or pure whitespace,
// otherwise a pointer to the original (untrimmed-case-preserved) value.
func Normalize(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	if _, isNull := nullTokens[strings.ToLower(trimmed)]; isNull {
		return nil
	}
	return &raw
}
