package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/dferrand/cpetrack/auth"
	"github.com/dferrand/cpetrack/internal/models"
	"github.com/dferrand/cpetrack/internal/services"
	"github.com/dferrand/cpetrack/view"
	"gorm.io/gorm"
)

// Reminder is an actionable alert surfaced on the dashboard.
type Reminder struct {
	Certification *models.Certification
	Message       string
	Tier          services.StatusTier
}

type DashboardHandler struct {
	db         *gorm.DB
	compliance *services.ComplianceService
}

func NewDashboardHandler(db *gorm.DB, compliance *services.ComplianceService) *DashboardHandler {
	return &DashboardHandler{db: db, compliance: compliance}
}

func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	now := time.Now()

	var certs []models.Certification
	if err := h.db.Where("user_id = ?", userID).
		Preload("CategoryRequirements").
		Order("name").
		Find(&certs).Error; err != nil {
		http.Error(w, "Failed to load certifications", http.StatusInternalServerError)
		return
	}

	progress := make(map[uint]*services.Progress, len(certs))
	var reminders []Reminder
	var totalEarned, totalRequired float64
	for i := range certs {
		cert := &certs[i]
		p, err := h.compliance.ProgressFor(cert, now)
		if err != nil {
			log.Printf("dashboard progress cert=%d: %v", cert.ID, err)
			continue
		}
		progress[cert.ID] = p
		totalEarned += p.EarnedCPE
		totalRequired += p.RequiredCPE
		reminders = append(reminders, remindersFor(cert, p)...)
	}

	var recent []models.CPEActivity
	h.db.Where("user_id = ?", userID).
		Preload("Certification").
		Order("activity_date DESC, id DESC").
		Limit(5).
		Find(&recent)

	view.Render(w, r, "dashboard.html", map[string]any{
		"Certifications": certs,
		"Progress":       progress,
		"Reminders":      reminders,
		"Recent":         recent,
		"TotalEarned":    totalEarned,
		"TotalRequired":  totalRequired,
	})
}

// remindersFor derives deadline and pacing alerts from a certification's
// current-period progress.
func remindersFor(cert *models.Certification, p *services.Progress) []Reminder {
	var out []Reminder
	if !p.Compliant && p.DaysRemaining <= 90 {
		out = append(out, Reminder{
			Certification: cert,
			Message:       "renewal_deadline_near",
			Tier:          p.Tier,
		})
	}
	if p.RequiredCPE > 0 && p.Percent() < 25 {
		out = append(out, Reminder{
			Certification: cert,
			Message:       "low_progress",
			Tier:          p.Tier,
		})
	}
	return out
}
