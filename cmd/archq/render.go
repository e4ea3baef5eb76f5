package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"archq/internal/evaluation"
	"archq/internal/measure"
	"archq/internal/qualitymodel"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// resultColors maps category and assessment labels to ANSI colors.
var resultColors = map[string]lipgloss.Color{
	string(qualitymodel.CategoryHigh):     "2",
	string(qualitymodel.CategoryModerate): "3",
	string(qualitymodel.CategoryLow):      "208",
	string(qualitymodel.CategoryNone):     "1",
	evaluation.AssessmentPositive:         "2",
	evaluation.AssessmentSlightlyPositive: "10",
	evaluation.AssessmentNeutral:          "7",
	evaluation.AssessmentSlightlyNegative: "208",
	evaluation.AssessmentNegative:         "1",
	evaluation.AssessmentMixed:            "5",
	measure.NA:                            "8",
}

// entryTable renders entries as a two-column table whose result column is
// colored by value.
func entryTable(title string, entries []evaluation.Entry) string {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.Name, e.Result.String()}
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(title, "Result").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 1 && row >= 0 && row < len(rows) {
				if c, ok := resultColors[rows[row][1]]; ok {
					return cellStyle.Foreground(c)
				}
			}
			return cellStyle
		})
	return t.Render()
}

// renderResult prints aspects, factors and failures of res.
func renderResult(w io.Writer, res *evaluation.Result) {
	fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("%s (run %s)", res.System, res.RunID)))
	fmt.Fprintln(w, entryTable("Quality Aspect", res.Aspects))
	fmt.Fprintln(w, entryTable("Product Factor", res.Factors))
	if len(res.Errors) > 0 {
		fmt.Fprintln(w, headingStyle.Render("Failures"))
		for _, e := range res.Errors {
			fmt.Fprintln(w, errorStyle.Render("  "+e.Error()))
		}
	}
}

// renderCatalog prints the quality model.
func renderCatalog(w io.Writer, qm *qualitymodel.QualityModel) {
	fmt.Fprintln(w, headingStyle.Render("Quality Aspects"))
	for _, a := range qm.Aspects {
		fmt.Fprintf(w, "  %-28s %s\n", a.ID, a.Name)
	}

	fmt.Fprintln(w, headingStyle.Render("Product Factors"))
	rows := make([][]string, 0, len(qm.Factors))
	for _, f := range qm.Factors {
		targets := make([]string, len(f.Impacts))
		for i, imp := range f.Impacts {
			sign := "+"
			if imp.Type == qualitymodel.ImpactNegative {
				sign = "-"
			}
			targets[i] = sign + imp.Target
		}
		rows = append(rows, []string{f.ID, evaluationSummary(f.Evaluation), strings.Join(targets, " ")})
	}
	fmt.Fprintln(w, table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("Factor", "Evaluation", "Impacts").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Render())

	fmt.Fprintln(w, headingStyle.Render("Measures"))
	for _, m := range qm.Measures {
		fmt.Fprintf(w, "  %-40s %s\n", m.ID, m.Name)
	}
}

func evaluationSummary(ev *qualitymodel.EvaluationSpec) string {
	if ev == nil {
		return "-"
	}
	switch ev.Kind {
	case qualitymodel.EvalCombination:
		return fmt.Sprintf("%s(%s)", ev.Operator, strings.Join(ev.Factors, ", "))
	default:
		return fmt.Sprintf("%s %s", ev.Kind, ev.Measure)
	}
}
