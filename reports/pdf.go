// Package reports renders the downloadable PDF health report for a cat.
package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/cattus-org/cattus-api/models"
	"github.com/cattus-org/cattus-api/pkg/metrics"
)

// Section names accepted in a report request.
const (
	SectionProfile    = "profile"
	SectionStatus     = "status"
	SectionActivities = "activities"
)

// DefaultSections is used when the request selects nothing.
var DefaultSections = []string{SectionProfile, SectionStatus, SectionActivities}

// ValidSection reports whether s names a known report section.
func ValidSection(s string) bool {
	switch s {
	case SectionProfile, SectionStatus, SectionActivities:
		return true
	}
	return false
}

// Input bundles everything a report can show. Results holds the per-behavior
// aggregation over WindowDays; Activities is the recent history, newest first.
type Input struct {
	Cat        *models.Cat
	WindowDays int
	Results    map[models.ActivityTitle]metrics.Result
	Activities []models.Activity
	Sections   []string
	Now        time.Time
}

// Build renders the selected sections into a PDF document.
func Build(in Input) ([]byte, error) {
	if in.Cat == nil {
		return nil, fmt.Errorf("reports: cat is required")
	}
	sections := in.Sections
	if len(sections) == 0 {
		sections = DefaultSections
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Health report - %s", in.Cat.Name), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, fmt.Sprintf("Health report: %s", in.Cat.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Generated "+in.Now.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	for _, s := range sections {
		switch s {
		case SectionProfile:
			writeProfile(pdf, in)
		case SectionStatus:
			writeStatus(pdf, in)
		case SectionActivities:
			writeActivities(pdf, in)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeHeading(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
}

func writeProfile(pdf *fpdf.Fpdf, in Input) {
	writeHeading(pdf, "Profile")
	cat := in.Cat
	line := func(label, value string) {
		pdf.CellFormat(40, 6, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
	}
	line("Name", cat.Name)
	line("Sex", cat.Sex)
	if cat.BirthDate != nil {
		line("Birth date", cat.BirthDate.Format("2006-01-02"))
		line("Age", fmt.Sprintf("%d years", cat.Age(in.Now)))
	}
	if cat.Weight != nil {
		line("Weight", fmt.Sprintf("%.1f kg", *cat.Weight))
	}
	line("Status", string(cat.Status))
	if cat.Observations != "" {
		pdf.CellFormat(40, 6, "Observations", "", 0, "L", false, 0, "")
		pdf.MultiCell(0, 6, cat.Observations, "", "L", false)
	}
	pdf.Ln(4)
}

func writeStatus(pdf *fpdf.Fpdf, in Input) {
	writeHeading(pdf, fmt.Sprintf("Behavior metrics (last %d days)", in.WindowDays))
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(35, 7, "Behavior", "B", 0, "L", false, 0, "")
	pdf.CellFormat(25, 7, "Count", "B", 0, "R", false, 0, "")
	pdf.CellFormat(45, 7, "Total duration", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, "Avg/day", "B", 0, "R", false, 0, "")
	pdf.CellFormat(45, 7, "Avg duration/day", "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, title := range models.ActivityTitles {
		res := in.Results[title]
		pdf.CellFormat(35, 7, string(title), "", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%d", res.Count), "", 0, "R", false, 0, "")
		pdf.CellFormat(45, 7, metrics.FormatDuration(res.TotalDuration), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%.2f", res.AvgPerDay), "", 0, "R", false, 0, "")
		pdf.CellFormat(45, 7, metrics.FormatDuration(res.AvgDurationPerDay), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
}

func writeActivities(pdf *fpdf.Fpdf, in Input) {
	writeHeading(pdf, "Recent activities")
	if len(in.Activities) == 0 {
		pdf.CellFormat(0, 6, "No activity recorded in this window.", "", 1, "L", false, 0, "")
		pdf.Ln(4)
		return
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(35, 7, "Behavior", "B", 0, "L", false, 0, "")
	pdf.CellFormat(55, 7, "Started", "B", 0, "L", false, 0, "")
	pdf.CellFormat(45, 7, "Duration", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for i := range in.Activities {
		a := &in.Activities[i]
		pdf.CellFormat(35, 7, string(a.Title), "", 0, "L", false, 0, "")
		pdf.CellFormat(55, 7, a.StartedAt.Format("2006-01-02 15:04"), "", 0, "L", false, 0, "")
		pdf.CellFormat(45, 7, durationLabel(a), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

// durationLabel renders the duration column of the activity table. Open
// events, including zero-length intervals, show as in progress.
func durationLabel(a *models.Activity) string {
	if a.InProgress() {
		return "in progress"
	}
	return metrics.FormatElapsed(a.Duration())
}
