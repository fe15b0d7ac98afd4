package io

import (
	"encoding/csv"
	"fmt"
	goio "io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/phil-mansfield/table"
)

// ReadTable reads a table of floats where every line is one timestep and
// returns it row by row. Every line must contain skip + width values; the
// first skip values of each line are discarded.
//
// Files ending in .csv are read as comma separated values. All other files
// are read as whitespace separated columns with '#' comments.
func ReadTable(fname string, width, skip int) ([][]float64, error) {
	if width <= 0 {
		return nil, fmt.Errorf("Table width must be positive, not %d.", width)
	} else if skip < 0 {
		return nil, fmt.Errorf("Cannot skip %d columns.", skip)
	}

	if strings.ToLower(filepath.Ext(fname)) == ".csv" {
		f, err := os.Open(fname)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadCSVTable(f, width, skip)
	}

	colIdxs := make([]int, width)
	for i := range colIdxs {
		colIdxs[i] = i + skip
	}
	cols, err := table.ReadTable(fname, colIdxs, nil)
	if err != nil {
		return nil, fmt.Errorf("Could not read table %s: %w", fname, err)
	}

	// Transpose.
	rows := make([][]float64, len(cols[0]))
	for i := range rows {
		rows[i] = make([]float64, width)
		for j := range cols {
			rows[i][j] = cols[j][i]
		}
	}
	return rows, nil
}

// ReadCSVTable reads comma separated rows from rd. Blank lines are ignored
// and trailing empty fields (from a trailing comma) are dropped.
func ReadCSVTable(rd goio.Reader, width, skip int) ([][]float64, error) {
	r := csv.NewReader(rd)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comment = '#'

	rows := [][]float64{}
	for line := 1; ; line++ {
		rec, err := r.Read()
		if err == goio.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		for len(rec) > 0 && strings.TrimSpace(rec[len(rec)-1]) == "" {
			rec = rec[:len(rec)-1]
		}
		if len(rec) == 0 {
			continue
		}

		if len(rec) != width+skip {
			return nil, fmt.Errorf(
				"Row %d has %d values, but %d are required.",
				line, len(rec), width+skip,
			)
		}

		row := make([]float64, width)
		for i := range row {
			tok := strings.TrimSpace(rec[i+skip])
			row[i], err = strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, fmt.Errorf(
					"On row %d, '%s' does not parse as a float.", line, tok,
				)
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// AppendRow appends xs to fname as a single comma separated line, creating
// the file if needed.
func AppendRow(fname string, xs []float64) error {
	f, err := os.OpenFile(fname, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		return err
	}

	if err = WriteRow(f, xs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteRow writes xs to wr as a single comma separated line.
func WriteRow(wr goio.Writer, xs []float64) error {
	toks := make([]string, len(xs))
	for i, x := range xs {
		toks[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	_, err := fmt.Fprintln(wr, strings.Join(toks, ","))
	return err
}
