package reports

import (
	"fmt"
	"sort"
	"time"

	"github.com/dferrand/cpetrack/internal/models"
	"github.com/dferrand/cpetrack/internal/services"
)

// RenderError means an export could not be produced. Renders are
// all-or-nothing: a caller never receives partial output alongside one.
type RenderError struct {
	Format string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s report: %v", e.Format, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// ReportData is the input snapshot for one render. For a fixed snapshot and
// as-of date, every render of it is byte-identical.
type ReportData struct {
	Certification models.Certification
	Progress      services.Progress
	Activities    []models.CPEActivity
	AsOf          time.Time
}

// sortedActivities returns the activities ordered by date ascending, ties
// broken by id, leaving the caller's slice untouched.
func (d *ReportData) sortedActivities() []models.CPEActivity {
	out := make([]models.CPEActivity, len(d.Activities))
	copy(out, d.Activities)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ActivityDate.Equal(out[j].ActivityDate) {
			return out[i].ActivityDate.Before(out[j].ActivityDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// validate rejects snapshots a renderer cannot faithfully represent.
func (d *ReportData) validate(format string) error {
	if d.Certification.Name == "" {
		return &RenderError{Format: format, Err: fmt.Errorf("certification name is empty")}
	}
	for _, a := range d.Activities {
		if a.ActivityDate.IsZero() {
			return &RenderError{Format: format, Err: fmt.Errorf("activity %d has no date", a.ID)}
		}
		if !a.Status.Valid() {
			return &RenderError{Format: format, Err: fmt.Errorf("activity %d has invalid status %q", a.ID, a.Status)}
		}
	}
	return nil
}

func formatCPE(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
