package reporter

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"rule628/internal/model"
)

type ConsoleReporter struct {
	out io.Writer
}

func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleReporter{out: out}
}

func (r *ConsoleReporter) Report(results []model.UnitResult) error {
	total := 0
	for _, res := range results {
		for _, f := range res.Findings {
			total++
			// Format: unit:line: [SEVERITY] Message
			loc := fmt.Sprintf("%s:%d", res.SourceUnit.String(), f.Line)
			fmt.Fprintf(r.out, "%s: [%s] %s\n", loc, severityColor(f.Severity).Sprint(f.Severity), f.Message)
			fmt.Fprintf(r.out, "\tCode: %s\n", color.CyanString(truncate(f.Snippet, 120)))
			fmt.Fprintf(r.out, "\tSuggestion: %s\n", f.Suggestion)
			fmt.Fprintln(r.out)
		}
	}

	if total == 0 {
		fmt.Fprintln(r.out, color.GreenString("✔ No access to T881, T881T or T882G found."))
		return nil
	}

	counts := model.CountBySeverity(results)
	fmt.Fprintf(r.out, "%s found %d issues (%d warning, %d info).\n",
		color.RedString("✘"), total, counts[model.SeverityWarning], counts[model.SeverityInfo])
	return nil
}

func severityColor(s model.Severity) *color.Color {
	switch s {
	case model.SeverityError:
		return color.New(color.FgRed, color.Bold)
	case model.SeverityWarning:
		return color.New(color.FgYellow, color.Bold)
	case model.SeverityInfo:
		return color.New(color.FgBlue, color.Bold)
	default:
		return color.New(color.FgWhite)
	}
}

func truncate(s string, max int) string {
	if r := []rune(s); len(r) > max {
		return string(r[:max]) + "..."
	}
	return s
}
