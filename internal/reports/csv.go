package reports

import (
	"bytes"
	"encoding/csv"
	"strconv"
)

var activityHeader = []string{"Date", "Type", "Category", "CPE Value", "Status", "Description", "Proof File"}

// ActivityCSV renders the flat tabular export: one row per activity, ordered
// by activity date ascending then id.
func ActivityCSV(data ReportData) ([]byte, error) {
	if err := data.validate("csv"); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(activityHeader); err != nil {
		return nil, &RenderError{Format: "csv", Err: err}
	}
	if err := writeActivityRows(w, data); err != nil {
		return nil, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, &RenderError{Format: "csv", Err: err}
	}
	return buf.Bytes(), nil
}

// SummaryCSV renders the compliance summary followed by the activity detail.
func SummaryCSV(data ReportData) ([]byte, error) {
	if err := data.validate("csv"); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	p := data.Progress
	summary := [][]string{
		{"Certification", data.Certification.Name},
		{"Authority", data.Certification.Authority},
		{"Period Start", formatDate(p.PeriodStart)},
		{"Period End", formatDate(p.PeriodEnd)},
		{"As Of", formatDate(data.AsOf)},
		{"Earned CPE", formatCPE(p.EarnedCPE)},
		{"Required CPE", formatCPE(p.RequiredCPE)},
		{"Days Remaining", strconv.Itoa(p.DaysRemaining)},
		{"Status", string(p.Tier)},
	}
	for _, name := range p.CategoryNames() {
		cp := p.Categories[name]
		summary = append(summary, []string{
			"Category: " + name, formatCPE(cp.Earned) + " / " + formatCPE(cp.Required),
		})
	}
	summary = append(summary, []string{})

	for _, row := range summary {
		if err := w.Write(row); err != nil {
			return nil, &RenderError{Format: "csv", Err: err}
		}
	}
	if err := w.Write(activityHeader); err != nil {
		return nil, &RenderError{Format: "csv", Err: err}
	}
	if err := writeActivityRows(w, data); err != nil {
		return nil, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, &RenderError{Format: "csv", Err: err}
	}
	return buf.Bytes(), nil
}

func writeActivityRows(w *csv.Writer, data ReportData) error {
	for _, a := range data.sortedActivities() {
		proof := a.ProofFilename
		if proof == "" {
			proof = "None"
		}
		row := []string{
			formatDate(a.ActivityDate),
			string(a.Type),
			a.Category,
			formatCPE(a.CPEValue),
			string(a.Status),
			a.Description,
			proof,
		}
		if err := w.Write(row); err != nil {
			return &RenderError{Format: "csv", Err: err}
		}
	}
	return nil
}
