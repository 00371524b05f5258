// Package export writes the dataset to CSV and renders the correlation scatter plot.
package export

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/gocarina/gocsv"
	chart "github.com/wcharczuk/go-chart"

	"github-test-metrics/internal/analysis"
	custom_errors "github-test-metrics/internal/errors"
	"github-test-metrics/internal/model"
)

// Row is one CSV line of the dataset.
type Row struct {
	Project                 string              `csv:"project"`
	UnitPresence            int                 `csv:"unit_presence"`
	UnitRatio               model.OptionalFloat `csv:"unit_ratio"`
	MedianBugResolutionDays model.OptionalFloat `csv:"median_bug_resolution_days"`
	BugCount                int                 `csv:"bug_count"`
}

// Rows converts the dataset into CSV rows, keeping its order.
func Rows(ds model.Dataset) []*Row {
	rows := make([]*Row, 0, len(ds))
	for _, s := range ds {
		presence := 0
		if s.UnitPresence {
			presence = 1
		}
		rows = append(rows, &Row{
			Project:                 s.Project.String(),
			UnitPresence:            presence,
			UnitRatio:               s.UnitRatio,
			MedianBugResolutionDays: s.MedianBugResolutionDays,
			BugCount:                s.BugCount,
		})
	}
	return rows
}

// WriteCSV writes the dataset with a header row to w.
func WriteCSV(w io.Writer, ds model.Dataset) error {
	rows := Rows(ds)
	return gocsv.Marshal(&rows, w)
}

// WriteCSVFile writes the dataset to path, replacing any existing file.
func WriteCSVFile(path string, ds model.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, ds); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// WriteScatter renders unit ratio against median resolution time as a PNG.
// At least two points are needed to lay out the axes.
func WriteScatter(w io.Writer, c analysis.Correlation) error {
	if len(c.X) < 2 {
		return &custom_errors.InsufficientDataError{Have: len(c.X), Need: 2}
	}

	graph := chart.Chart{
		Title:      "Unit Test Emphasis vs Defect Resolution Time",
		TitleStyle: chart.StyleShow(),
		XAxis: chart.XAxis{
			Name:      "Unit Test Ratio",
			NameStyle: chart.StyleShow(),
			Style:     chart.StyleShow(),
			Range:     axisRange(c.X),
		},
		YAxis: chart.YAxis{
			Name:      "Median Bug Resolution Time (days)",
			NameStyle: chart.StyleShow(),
			Style:     chart.StyleShow(),
			Range:     axisRange(c.Y),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "projects",
				XValues: c.X,
				YValues: c.Y,
				Style: chart.Style{
					Show:        true,
					StrokeWidth: chart.Disabled,
					DotWidth:    5,
					DotColor:    chart.ColorBlue,
				},
			},
		},
	}

	return graph.Render(chart.PNG, w)
}

// axisRange pads an axis whose values are all equal, which go-chart cannot
// lay out on its own. Other axes are left to auto-ranging.
func axisRange(values []float64) chart.Range {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo != hi {
		return nil
	}
	return &chart.ContinuousRange{Min: lo - 0.5, Max: hi + 0.5}
}

// WriteScatterFile renders the scatter plot to path. Nothing is left at path
// when rendering fails.
func WriteScatterFile(path string, c analysis.Correlation) error {
	if len(c.X) < 2 {
		return &custom_errors.InsufficientDataError{Have: len(c.X), Need: 2}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteScatter(f, c); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}
