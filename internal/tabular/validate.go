package tabular

import (
	"strconv"
	"strings"

	"github.com/mavedb/mavedb-core/internal/domain"
	"github.com/mavedb/mavedb-core/internal/hgvs"
)

// Result is the outcome of validating a scores (+ optional counts)
// DataFrame pair against a score set's target genes.
type Result struct {
	DatasetColumns domain.DatasetColumns
	IndexColumn    string
	Errors         []domain.RowError
}

// Validate runs the full spec §4.B pipeline. targets supplies the resolved
// target sequence to check hgvs_nt/hgvs_pro variants against; counts may be
// nil. extraMeta carries externally supplied descriptive metadata keyed by
// column name, copied into the emitted DatasetColumns.
func Validate(scores, counts *DataFrame, target domain.TargetSequence, extraMeta map[string]domain.ColumnMeta) Result {
	var res Result

	// Renaming preserves each column's physical index (Rows stays aligned);
	// CanonicalizeOrder is applied only to the name lists surfaced in
	// DatasetColumns, never to the DataFrame's row storage itself.
	scores.Columns = StandardizeColumns(scores.Columns)
	if counts != nil {
		counts.Columns = StandardizeColumns(counts.Columns)
	}

	if errs := ValidateColumnNames(scores.Columns); len(errs) > 0 {
		res.Errors = append(res.Errors, errs...)
		return res
	}
	if !scores.HasColumn("score") {
		res.Errors = append(res.Errors, domain.RowError{Message: "scores data frame must declare a score column"})
		return res
	}
	if counts != nil {
		if errs := ValidateColumnNames(counts.Columns); len(errs) > 0 {
			res.Errors = append(res.Errors, errs...)
			return res
		}
		if counts.HasColumn("score") {
			res.Errors = append(res.Errors, domain.RowError{Message: "counts data frame must not declare a score column"})
			return res
		}
	}

	// Step 4: reject any fully-null row.
	res.Errors = append(res.Errors, rejectFullyNullRows(scores)...)
	if counts != nil {
		res.Errors = append(res.Errors, rejectFullyNullRows(counts)...)
	}
	if len(res.Errors) > 0 {
		return res
	}

	// Step 5: choose and validate the index column.
	indexCol, indexValues, err := ChooseIndexColumn(scores)
	if err != nil {
		res.Errors = append(res.Errors, *err)
		return res
	}
	res.IndexColumn = indexCol
	res.Errors = append(res.Errors, ValidateIndexUniqueness(indexCol, indexValues)...)

	// Step 6: validate every populated HGVS column against the target.
	res.Errors = append(res.Errors, validateHGVSColumns(scores, target)...)
	if counts != nil {
		res.Errors = append(res.Errors, validateHGVSColumns(counts, target)...)
	}

	// Step 7: validate the score column is numeric (strings coerce).
	res.Errors = append(res.Errors, validateNumericColumn(scores, "score")...)

	// Step 8: shared HGVS columns must carry the same value sets.
	if counts != nil {
		res.Errors = append(res.Errors, crossCheckSharedColumns(scores, counts)...)
	}

	res.DatasetColumns = buildDatasetColumns(scores, counts, extraMeta)
	return res
}

func rejectFullyNullRows(df *DataFrame) []domain.RowError {
	var errs []domain.RowError
	for i, row := range df.Rows {
		allNull := true
		for _, cell := range row {
			if cell != nil {
				allNull = false
				break
			}
		}
		if allNull {
			errs = append(errs, domain.RowError{Row: i, Message: "row is fully null"})
		}
	}
	return errs
}

func validateHGVSColumns(df *DataFrame, target domain.TargetSequence) []domain.RowError {
	var errs []domain.RowError

	nt, hasNT := df.Column("hgvs_nt")
	splice, hasSplice := df.Column("hgvs_splice")
	pro, hasPro := df.Column("hgvs_pro")

	for _, c := range []struct {
		col    hgvs.Column
		values []*string
		has    bool
	}{
		{hgvs.ColumnNT, nt, hasNT},
		{hgvs.ColumnSplice, splice, hasSplice},
		{hgvs.ColumnPro, pro, hasPro},
	} {
		if !c.has {
			continue
		}
		errs = append(errs, hgvs.ValidateColumnPrefixConsistency(c.col, c.values)...)
	}

	rows := len(df.Rows)
	for i := 0; i < rows; i++ {
		var ntVal, spliceVal, proVal *string
		if hasNT {
			ntVal = nt[i]
		}
		if hasSplice {
			spliceVal = splice[i]
		}
		if hasPro {
			proVal = pro[i]
		}
		if rowErr := hgvs.ValidateRowPrefixCombination(i, ntVal, spliceVal, proVal); rowErr != nil {
			errs = append(errs, *rowErr)
		}
	}

	proteinView, viewErr := hgvs.ProteinView(target)

	if hasNT {
		errs = append(errs, hgvs.ValidateColumn(hgvs.ColumnNT, nt, target.Sequence)...)
	}
	if hasSplice {
		errs = append(errs, hgvs.ValidateColumn(hgvs.ColumnSplice, splice, target.Sequence)...)
	}
	if hasPro {
		if viewErr != nil {
			errs = append(errs, domain.RowError{Column: "hgvs_pro", Message: viewErr.Error()})
		} else {
			errs = append(errs, hgvs.ValidateColumn(hgvs.ColumnPro, pro, proteinView)...)
		}
	}
	return errs
}

func validateNumericColumn(df *DataFrame, name string) []domain.RowError {
	values, ok := df.Column(name)
	if !ok {
		return nil
	}
	var errs []domain.RowError
	for i, v := range values {
		if v == nil {
			continue
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(*v), 64); err != nil {
			errs = append(errs, domain.RowError{Row: i, Column: name, Message: "value is not numeric: " + *v})
		}
	}
	return errs
}

func crossCheckSharedColumns(scores, counts *DataFrame) []domain.RowError {
	var errs []domain.RowError
	for _, name := range []string{"hgvs_nt", "hgvs_splice", "hgvs_pro"} {
		scoreVals, sOK := scores.Column(name)
		countVals, cOK := counts.Column(name)
		if !sOK || !cOK {
			continue
		}
		if !sameValueSet(scoreVals, countVals) {
			errs = append(errs, domain.RowError{Column: name, Message: "scores and counts disagree on the set of values in this shared HGVS column"})
		}
	}
	return errs
}

func sameValueSet(a, b []*string) bool {
	set := map[string]int{}
	for _, v := range a {
		if v != nil {
			set[*v]++
		}
	}
	for _, v := range b {
		if v != nil {
			set[*v]--
		}
	}
	for _, n := range set {
		if n != 0 {
			return false
		}
	}
	return true
}

func isHGVSColumn(name string) bool {
	switch name {
	case "hgvs_nt", "hgvs_splice", "hgvs_pro":
		return true
	}
	return false
}

func buildDatasetColumns(scores, counts *DataFrame, extraMeta map[string]domain.ColumnMeta) domain.DatasetColumns {
	dc := domain.DatasetColumns{Columns: map[string]domain.ColumnMeta{}}
	for _, c := range CanonicalizeOrder(scores.Columns) {
		if !isHGVSColumn(c) {
			dc.ScoreColumns = append(dc.ScoreColumns, c)
		}
	}
	if counts != nil {
		for _, c := range CanonicalizeOrder(counts.Columns) {
			if !isHGVSColumn(c) {
				dc.CountColumns = append(dc.CountColumns, c)
			}
		}
	}
	for name, meta := range extraMeta {
		dc.Columns[name] = meta
	}
	return dc
}
