package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github-test-metrics/internal/analysis"
	custom_errors "github-test-metrics/internal/errors"
	"github-test-metrics/internal/model"
)

// UI writes human-readable results. Structured logs go through slog instead.
type UI struct {
	Out    io.Writer
	ErrOut io.Writer
}

// New creates a UI writing to out and errOut, defaulting to stdout/stderr
// when they are nil.
func New(out, errOut io.Writer) *UI {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &UI{Out: out, ErrOut: errOut}
}

var (
	infoColor    = color.New(color.FgHiBlue)
	successColor = color.New(color.FgHiGreen)
	warningColor = color.New(color.FgHiYellow)
	errorColor   = color.New(color.FgHiRed)
)

func (u *UI) Info(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", infoColor.Sprint("i"), fmt.Sprintf(format, a...))
}

func (u *UI) Success(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", successColor.Sprint("✓"), fmt.Sprintf(format, a...))
}

func (u *UI) Warning(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", warningColor.Sprint("⚠"), fmt.Sprintf(format, a...))
}

func (u *UI) Error(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", errorColor.Sprint("✗"), fmt.Sprintf(format, a...))
}

// Table creates a new tablewriter configured with consistent styling.
func (u *UI) Table(headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(u.Out,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}

// Dataset prints one line per project.
func (u *UI) Dataset(ds model.Dataset) error {
	table := u.Table([]string{"Project", "Unit Presence", "Unit Ratio", "Median Days", "Bugs"})
	for _, s := range ds {
		presence := "0"
		if s.UnitPresence {
			presence = "1"
		}
		if err := table.Append([]string{
			s.Project.String(),
			presence,
			formatOptional(s.UnitRatio),
			formatOptional(s.MedianBugResolutionDays),
			strconv.Itoa(s.BugCount),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

// Failures prints the projects that could not be collected.
func (u *UI) Failures(failures []model.ProjectFailure) {
	for _, f := range failures {
		u.Error("%s failed during %s: %v", f.Project, f.Stage, f.Err)
	}
}

// Correlation prints rho and p, or why they could not be computed.
func (u *UI) Correlation(c analysis.Correlation, err error) {
	var ierr *custom_errors.InsufficientDataError
	switch {
	case errors.As(err, &ierr):
		u.Warning("Insufficient data for correlation: %d complete project(s), need at least %d", ierr.Have, ierr.Need)
	case err != nil:
		u.Warning("Correlation not computed: %v", err)
	default:
		fmt.Fprintln(u.Out, "Spearman rho:", c.Rho)
		fmt.Fprintln(u.Out, "p-value:", c.P)
	}
}

func formatOptional(o model.OptionalFloat) string {
	if !o.Valid {
		return "-"
	}
	return strconv.FormatFloat(o.Value, 'f', -1, 64)
}
