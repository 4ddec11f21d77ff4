// Package dataset loads numeric training data and produces the fixed,
// reproducible train/test partition consumed by the finalize step.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// Frame is a numeric data table: named columns, row-major values.
type Frame struct {
	Columns []string
	Rows    [][]float64
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Rows)
}

// ColumnIndex returns the index of a named column, or an error when
// the column does not exist.
func (f *Frame) ColumnIndex(name string) (int, error) {
	for i, c := range f.Columns {
		if c == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("dataset: no column %q (have %v)", name, f.Columns)
}

// Split extracts the named target column, returning the remaining
// columns as the feature matrix and the target as a vector.
func (f *Frame) Split(target string) (features [][]float64, y []float64, err error) {
	ti, err := f.ColumnIndex(target)
	if err != nil {
		return nil, nil, err
	}

	features = make([][]float64, len(f.Rows))
	y = make([]float64, len(f.Rows))
	for i, row := range f.Rows {
		feat := make([]float64, 0, len(row)-1)
		for j, v := range row {
			if j == ti {
				y[i] = v
				continue
			}
			feat = append(feat, v)
		}
		features[i] = feat
	}
	return features, y, nil
}

// LoadCSV reads a CSV file into a Frame. The first row is treated as
// headers; every cell must parse as a float.
func LoadCSV(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: parse %s: %w", path, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("csv: %s is empty (no header row)", path)
	}

	headers := records[0]
	rows := make([][]float64, 0, len(records)-1)

	for i, record := range records[1:] {
		if len(record) != len(headers) {
			return nil, fmt.Errorf("csv: row %d has %d columns, expected %d", i+2, len(record), len(headers))
		}
		row := make([]float64, len(headers))
		for j, cell := range record {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("csv: row %d column %q: %q is not numeric", i+2, headers[j], cell)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}

	return &Frame{Columns: headers, Rows: rows}, nil
}
