package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dferrand/cpetrack/auth"
	"github.com/dferrand/cpetrack/internal/models"
	"github.com/dferrand/cpetrack/internal/reports"
	"github.com/dferrand/cpetrack/internal/services"
	"gorm.io/gorm"
)

type ExportHandler struct {
	db         *gorm.DB
	certs      *services.CertificationService
	compliance *services.ComplianceService
}

func NewExportHandler(db *gorm.DB, certs *services.CertificationService, compliance *services.ComplianceService) *ExportHandler {
	return &ExportHandler{db: db, certs: certs, compliance: compliance}
}

// Export renders a certification's current-period report in the requested
// format. CSV defaults to the flat activity listing; ?summary=1 selects the
// full summary layout. PDF is always the summary layout.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	cert, err := h.certs.Get(userID, parseID(r))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	now := time.Now()
	progress, err := h.compliance.ProgressFor(cert, now)
	if err != nil {
		http.Error(w, "Failed to compute compliance", http.StatusInternalServerError)
		return
	}

	var activities []models.CPEActivity
	if err := h.db.Where("certification_id = ? AND user_id = ?", cert.ID, userID).
		Where("activity_date >= ? AND activity_date < ?", progress.PeriodStart, progress.PeriodEnd).
		Order("activity_date ASC, id ASC").
		Find(&activities).Error; err != nil {
		http.Error(w, "Failed to load activities", http.StatusInternalServerError)
		return
	}

	data := reports.ReportData{
		Certification: *cert,
		Progress:      *progress,
		Activities:    activities,
		AsOf:          now,
	}

	format := r.PathValue("format")
	var body []byte
	var contentType, ext string
	switch format {
	case "csv":
		contentType, ext = "text/csv; charset=utf-8", "csv"
		if r.URL.Query().Get("summary") == "1" {
			body, err = reports.SummaryCSV(data)
		} else {
			body, err = reports.ActivityCSV(data)
		}
	case "pdf":
		contentType, ext = "application/pdf", "pdf"
		body, err = reports.SummaryPDF(data)
	default:
		http.Error(w, "Unsupported export format", http.StatusNotFound)
		return
	}
	if err != nil {
		var rerr *reports.RenderError
		if errors.As(err, &rerr) {
			http.Error(w, "Report could not be rendered", http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, "Failed to render report", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("%s_cpe_report_%s.%s", sanitizeFilename(cert.Name), now.Format("2006-01-02"), ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Write(body)
}

func sanitizeFilename(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		case r == ' ':
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "certification"
	}
	return string(out)
}
