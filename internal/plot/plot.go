// SPDX-License-Identifier: MIT
/*
Package plot persists DDM results as line plots. Each call to Save draws one
line per series against a shared x axis, writes <dir>/<name>.png and, when
enabled, the raw values as <dir>/<name>.csv.
*/
package plot

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	applog "ddm/internal/log"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Axis describes how a set of series is laid out.
type Axis struct {
	Title  string
	XLabel string
	YLabel string
	X      []float64 // Shared abscissa, one value per point
	Labels []string  // Legend entry per series, optional
}

// Saver persists a named set of series.
type Saver interface {
	Save(name string, series [][]float64, axis Axis) error
}

// PlotSaver renders PNG line plots with gonum/plot.
type PlotSaver struct {
	Dir    string
	Width  vg.Length
	Height vg.Length
	CSV    bool // Also write the raw values
}

// NewPlotSaver creates the output directory if needed. Sizes are in inches;
// zero picks 14x6.
func NewPlotSaver(dir string, widthIn, heightIn float64, writeCSV bool) (*PlotSaver, error) {
	if widthIn <= 0 {
		widthIn = 14
	}
	if heightIn <= 0 {
		heightIn = 6
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &PlotSaver{
		Dir:    dir,
		Width:  vg.Length(widthIn) * vg.Inch,
		Height: vg.Length(heightIn) * vg.Inch,
		CSV:    writeCSV,
	}, nil
}

// Save implements Saver.
func (s *PlotSaver) Save(name string, series [][]float64, axis Axis) error {
	if err := validate(series, axis); err != nil {
		return fmt.Errorf("plot %s: %w", name, err)
	}

	p := plot.New()
	p.Title.Text = axis.Title
	p.X.Label.Text = axis.XLabel
	p.Y.Label.Text = axis.YLabel
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	for i, ys := range series {
		pts := make(plotter.XYs, len(ys))
		for j, y := range ys {
			pts[j] = plotter.XY{X: axis.X[j], Y: y}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("plot %s line %d: %w", name, i, err)
		}
		line.Width = vg.Points(1)
		line.Color = plotutil.Color(i)
		p.Add(line)
		if label := labelFor(axis, i); label != "" {
			p.Legend.Add(label, line)
		}
	}

	path := filepath.Join(s.Dir, name+".png")
	if err := p.Save(s.Width, s.Height, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	applog.Infof("Plot: saved %s (%d lines)", path, len(series))

	if s.CSV {
		return writeCSV(filepath.Join(s.Dir, name+".csv"), series, axis)
	}
	return nil
}

func validate(series [][]float64, axis Axis) error {
	for i, ys := range series {
		if len(ys) != len(axis.X) {
			return fmt.Errorf("series %d has %d points, axis has %d", i, len(ys), len(axis.X))
		}
	}
	if len(axis.Labels) > 0 && len(axis.Labels) != len(series) {
		return fmt.Errorf("%d labels for %d series", len(axis.Labels), len(series))
	}
	return nil
}

func labelFor(axis Axis, i int) string {
	if i < len(axis.Labels) {
		return axis.Labels[i]
	}
	return ""
}

// writeCSV writes one row per x value: x followed by every series' value.
func writeCSV(path string, series [][]float64, axis Axis) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := make([]string, 0, len(series)+1)
	header = append(header, axis.XLabel)
	for i := range series {
		label := labelFor(axis, i)
		if label == "" {
			label = "series_" + strconv.Itoa(i)
		}
		header = append(header, label)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, len(series)+1)
	for j, x := range axis.X {
		row[0] = strconv.FormatFloat(x, 'g', -1, 64)
		for i, ys := range series {
			row[i+1] = strconv.FormatFloat(ys[j], 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

var _ Saver = (*PlotSaver)(nil)
