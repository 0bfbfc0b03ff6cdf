package scape

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stackgp/internal/model"
)

func TestValidateDataset(t *testing.T) {
	cases := []struct {
		name string
		data model.Dataset
		want error
	}{
		{name: "empty", data: nil, want: ErrEmptyDataset},
		{name: "short_row", data: model.Dataset{{1, 2}, {3}}, want: ErrRowTooShort},
		{name: "ragged", data: model.Dataset{{1, 2}, {1, 2, 3}}, want: ErrRaggedDataset},
		{name: "ok", data: model.Dataset{{1, 2}, {3, 4}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateDataset(tc.data)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got=%v", tc.want, err)
			}
		})
	}
}

func TestReadCSVSkipsHeader(t *testing.T) {
	data, err := ReadCSV(strings.NewReader("x,y\n1, 2\n-3,4\n"))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(data) != 2 || data[1][0] != -3 || data[1].Expected() != 4 {
		t.Fatalf("unexpected dataset: %v", data)
	}
}

func TestReadCSVRejectsBadValues(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("1,2\nx,4\n")); err == nil {
		t.Fatal("expected parse error after first data row")
	}
	if _, err := ReadCSV(strings.NewReader("1,2\n3\n")); !errors.Is(err, ErrRowTooShort) {
		t.Fatalf("expected short row error, got=%v", err)
	}
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte("0,0\n1,2\n2,8\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	data, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("load csv: %v", err)
	}
	if len(data) != 3 {
		t.Fatalf("expected 3 rows, got=%d", len(data))
	}
	if _, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatal("expected missing file error")
	}
}
