package tabular

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// LoadCSV reads a comma-separated, UTF-8 tabular upload into a DataFrame,
// applying the null-token normalization. Score/count uploads quote fields
// with `'` rather than `"` (spec §6 "CSV formats"); the standard library's
// csv.Reader hardcodes `"` as its quote character, so single-quoted input is
// translated to double-quoted input first. Genomic/score data never
// contains an embedded apostrophe, so a byte-for-byte swap is safe here;
// this would not be safe for arbitrary free-text CSV.
func LoadCSV(r io.Reader) (*DataFrame, error) {
	translated := bufio.NewScanner(r)
	translated.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var sb strings.Builder
	for translated.Scan() {
		sb.WriteString(strings.ReplaceAll(translated.Text(), "'", "\""))
		sb.WriteByte('\n')
	}
	if err := translated.Err(); err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	reader := csv.NewReader(strings.NewReader(sb.String()))

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	df := &DataFrame{Columns: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		row := make([]*string, len(record))
		for i, cell := range record {
			row[i] = Normalize(cell)
		}
		df.Rows = append(df.Rows, row)
	}
	return df, nil
}
