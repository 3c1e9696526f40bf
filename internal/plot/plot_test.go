// SPDX-License-Identifier: MIT
package plot

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPlotSaverWritesPNGAndCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s, err := NewPlotSaver(dir, 4, 3, true)
	if err != nil {
		t.Fatalf("NewPlotSaver: %v", err)
	}

	series := [][]float64{{1, 2, 3}, {4, 5, 6}}
	axis := Axis{
		Title:  "sample",
		XLabel: "q",
		YLabel: "intensity",
		X:      []float64{0, 20, 40},
		Labels: []string{"a", "b"},
	}
	if err := s.Save("sample", series, axis); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "sample.png"))
	if err != nil {
		t.Fatalf("png missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("png is empty")
	}

	f, err := os.Open(filepath.Join(dir, "sample.csv"))
	if err != nil {
		t.Fatalf("csv missing: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	want := [][]string{
		{"q", "a", "b"},
		{"0", "1", "4"},
		{"20", "2", "5"},
		{"40", "3", "6"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestPlotSaverSkipsCSV(t *testing.T) {
	dir := t.TempDir()
	s, err := NewPlotSaver(dir, 0, 0, false)
	if err != nil {
		t.Fatalf("NewPlotSaver: %v", err)
	}
	if err := s.Save("only_png", [][]float64{{1, 2}}, Axis{X: []float64{0, 1}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "only_png.csv")); !os.IsNotExist(err) {
		t.Errorf("expected no csv, stat err = %v", err)
	}
}

func TestPlotSaverRejectsMismatchedSeries(t *testing.T) {
	s, err := NewPlotSaver(t.TempDir(), 0, 0, false)
	if err != nil {
		t.Fatalf("NewPlotSaver: %v", err)
	}

	tests := []struct {
		name   string
		series [][]float64
		axis   Axis
	}{
		{"short series", [][]float64{{1}}, Axis{X: []float64{0, 1}}},
		{"label count", [][]float64{{1, 2}}, Axis{X: []float64{0, 1}, Labels: []string{"a", "b"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Save("bad", tt.series, tt.axis); err == nil {
				t.Error("expected error")
			}
		})
	}
}
