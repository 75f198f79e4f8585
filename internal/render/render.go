// Package render turns stored submissions and analytics into the admin
// HTML pages and the CSV export.
package render

import (
	"cardiostent/internal/model"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("pages").Funcs(template.FuncMap{
	"shortDate":   shortDate,
	"upper":       func(v any) string { return strings.ToUpper(fmt.Sprint(v)) },
	"orNA":        orNA,
	"score":       submissionScore,
	"reportScore": reportScore,
	"average":     groupAverage,
	"strategy":    strategyText,
}).ParseFS(templateFS, "templates/*.html"))

// NotAvailable is shown wherever a value is missing
const NotAvailable = "N/A"

// Dashboard writes the admin dashboard page
func Dashboard(w io.Writer, d *model.Dashboard) error {
	return pages.ExecuteTemplate(w, "dashboard.html", d)
}

// Report writes the detailed analysis page of one submission
func Report(w io.Writer, sub *model.Submission) error {
	return pages.ExecuteTemplate(w, "report.html", sub)
}

func shortDate(t time.Time) string {
	if t.IsZero() {
		return NotAvailable
	}
	return t.Format("Jan 2")
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}

func formatScore(v int, ok bool) string {
	if !ok {
		return NotAvailable
	}
	return strconv.Itoa(v)
}

func submissionScore(sub *model.Submission, field string) string {
	return formatScore(sub.Score(model.ScoreField(field)))
}

// reportScore prefers the scores inside the detailed analysis
func reportScore(sub *model.Submission, field string) string {
	f := model.ScoreField(field)
	if sub.FullAnalysis != nil {
		if v, ok := sub.FullAnalysis.Scores.Get(f); ok {
			return strconv.Itoa(v)
		}
	}
	return formatScore(sub.Score(f))
}

func groupAverage(row model.GroupRow, field string) string {
	v, ok := row.Average(model.ScoreField(field))
	if !ok {
		return NotAvailable
	}
	return fmt.Sprintf("%d/100", v)
}

func strategyText(s model.Strategy) string {
	text := s.Label + ": " + s.Message
	switch {
	case s.Alert:
		return "🚨 " + text
	case s.Code == model.StrategyStable:
		return "✅ " + text
	default:
		return text
	}
}
