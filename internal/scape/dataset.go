package scape

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"stackgp/internal/model"
)

var (
	ErrEmptyDataset  = errors.New("dataset is empty")
	ErrRowTooShort   = errors.New("dataset row needs at least one input and one output")
	ErrRaggedDataset = errors.New("dataset rows differ in length")
)

// ValidateDataset checks that every row carries inputs plus an expected
// output and that all rows share one arity.
func ValidateDataset(data model.Dataset) error {
	if len(data) == 0 {
		return ErrEmptyDataset
	}
	width := len(data[0])
	for i, row := range data {
		if len(row) < 2 {
			return fmt.Errorf("row %d: %w", i, ErrRowTooShort)
		}
		if len(row) != width {
			return fmt.Errorf("row %d has %d values, want %d: %w", i, len(row), width, ErrRaggedDataset)
		}
	}
	return nil
}

// LoadCSV reads integer rows. Rows whose first field is not an integer are
// treated as headers while no data row has been read yet.
func LoadCSV(path string) (model.Dataset, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("dataset csv path is required")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset csv %s: %w", path, err)
	}
	defer f.Close()

	data, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("dataset csv %s: %w", path, err)
	}
	return data, nil
}

func ReadCSV(r io.Reader) (model.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	data := make(model.Dataset, 0, 128)
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line+1, err)
		}
		line++

		row := make(model.Row, 0, len(record))
		for col, field := range record {
			v, err := strconv.ParseInt(strings.TrimSpace(field), 10, 32)
			if err != nil {
				if len(data) == 0 && col == 0 {
					row = nil
					break
				}
				return nil, fmt.Errorf("parse row %d column %d: %w", line, col+1, err)
			}
			row = append(row, int32(v))
		}
		if row == nil {
			continue
		}
		data = append(data, row)
	}

	if err := ValidateDataset(data); err != nil {
		return nil, err
	}
	return data, nil
}
