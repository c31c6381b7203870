package reports

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/dferrand/cpetrack/internal/models"
	"github.com/dferrand/cpetrack/internal/services"
)

func sampleData() ReportData {
	d := func(y int, m time.Month, day int) time.Time {
		return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	}
	return ReportData{
		Certification: models.Certification{
			Name:         "CISSP",
			Authority:    models.AuthorityISC2,
			IssueDate:    d(2023, 1, 1),
			PeriodMonths: 36,
			RequiredCPE:  120,
		},
		Progress: services.Progress{
			PeriodStart:   d(2023, 1, 1),
			PeriodEnd:     d(2026, 1, 1),
			EarnedCPE:     130,
			RequiredCPE:   120,
			ActivityCount: 2,
			Compliant:     true,
			DaysRemaining: 549,
			Tier:          services.TierCompliant,
			Categories: map[string]services.CategoryProgress{
				"Technical": {Earned: 90, Required: 40},
			},
		},
		Activities: []models.CPEActivity{
			{ID: 2, Type: models.ActivityConference, CPEValue: 90, ActivityDate: d(2024, 3, 1),
				Description: "Security summit", Status: models.StatusUnverified},
			{ID: 1, Type: models.ActivityTraining, Category: "Technical", CPEValue: 40, ActivityDate: d(2023, 6, 1),
				Description: "SANS course", Status: models.StatusVerified, ProofFilename: "cert.pdf"},
		},
		AsOf: d(2024, 7, 1),
	}
}

func TestActivityCSV(t *testing.T) {
	out, err := ActivityCSV(sampleData())
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "Date" || rows[0][6] != "Proof File" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	// Date ascending regardless of input order.
	if rows[1][0] != "2023-06-01" || rows[2][0] != "2024-03-01" {
		t.Errorf("rows out of order: %v / %v", rows[1], rows[2])
	}
	if rows[1][6] != "cert.pdf" {
		t.Errorf("proof column = %q, want cert.pdf", rows[1][6])
	}
	if rows[2][6] != "None" {
		t.Errorf("missing proof column = %q, want None", rows[2][6])
	}
	if rows[1][3] != "40.0" {
		t.Errorf("cpe column = %q, want 40.0", rows[1][3])
	}
}

func TestActivityCSVDeterministic(t *testing.T) {
	data := sampleData()
	first, err := ActivityCSV(data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	second, err := ActivityCSV(data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("renders of the same snapshot differ")
	}
}

func TestSummaryCSV(t *testing.T) {
	out, err := SummaryCSV(sampleData())
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	r := csv.NewReader(bytes.NewReader(out))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}

	want := map[string]string{
		"Certification":       "CISSP",
		"Authority":           "ISC2",
		"Period Start":        "2023-01-01",
		"Period End":          "2026-01-01",
		"Earned CPE":          "130.0",
		"Required CPE":        "120.0",
		"Days Remaining":      "549",
		"Status":              "compliant",
		"Category: Technical": "90.0 / 40.0",
	}
	got := map[string]string{}
	for _, row := range rows {
		if len(row) == 2 {
			got[row[0]] = row[1]
		}
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("summary[%s] = %q, want %q", k, got[k], v)
		}
	}

	// Detail section follows the summary.
	last := rows[len(rows)-1]
	if last[0] != "2024-03-01" {
		t.Errorf("final detail row starts %q, want 2024-03-01", last[0])
	}
}

func TestRenderValidation(t *testing.T) {
	data := sampleData()
	data.Certification.Name = ""
	_, err := ActivityCSV(data)
	var rerr *RenderError
	if !errors.As(err, &rerr) {
		t.Fatalf("got %v, want *RenderError", err)
	}
	if rerr.Format != "csv" {
		t.Errorf("format = %q, want csv", rerr.Format)
	}

	data = sampleData()
	data.Activities[0].Status = "bogus"
	if _, err := SummaryCSV(data); !errors.As(err, &rerr) {
		t.Errorf("invalid status: got %v, want *RenderError", err)
	}

	data = sampleData()
	data.Activities[1].ActivityDate = time.Time{}
	if _, err := ActivityCSV(data); !errors.As(err, &rerr) {
		t.Errorf("zero date: got %v, want *RenderError", err)
	}
}
