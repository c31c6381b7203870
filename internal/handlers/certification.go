package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dferrand/cpetrack/auth"
	"github.com/dferrand/cpetrack/internal/models"
	"github.com/dferrand/cpetrack/internal/services"
	"github.com/dferrand/cpetrack/internal/storage"
	"github.com/dferrand/cpetrack/validation"
	"github.com/dferrand/cpetrack/view"
	"gorm.io/gorm"
)

type CertificationHandler struct {
	db         *gorm.DB
	certs      *services.CertificationService
	compliance *services.ComplianceService
	proofs     storage.Store
}

func NewCertificationHandler(db *gorm.DB, certs *services.CertificationService, compliance *services.ComplianceService, proofs storage.Store) *CertificationHandler {
	return &CertificationHandler{db: db, certs: certs, compliance: compliance, proofs: proofs}
}

func (h *CertificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var certs []models.Certification
	h.db.Where("user_id = ?", userID).Preload("CategoryRequirements").Order("name").Find(&certs)

	// Progress is derived per request, never read from a stored aggregate.
	now := time.Now()
	progress := make(map[uint]*services.Progress, len(certs))
	for i := range certs {
		p, err := h.compliance.ProgressFor(&certs[i], now)
		if err != nil {
			continue
		}
		progress[certs[i].ID] = p
	}

	view.Render(w, r, "certifications/index.html", map[string]any{
		"Certifications": certs,
		"Progress":       progress,
	})
}

func (h *CertificationHandler) New(w http.ResponseWriter, r *http.Request) {
	view.Render(w, r, "certifications/new.html", map[string]any{
		"Authorities": models.Authorities(),
	})
}

func (h *CertificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	cert, v := h.certFromForm(r)
	if !v.Empty() {
		view.Render(w, r, "certifications/new.html", map[string]any{
			"Authorities": models.Authorities(),
			"Violations":  v,
		})
		return
	}
	cert.UserID = userID

	if err := h.db.Create(cert).Error; err != nil {
		http.Error(w, "Failed to create certification", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/certifications", http.StatusSeeOther)
}

func (h *CertificationHandler) View(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := parseID(r)

	cert, err := h.certs.Get(userID, id)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	asOf := time.Now()
	progress, perr := h.compliance.ProgressFor(cert, asOf)
	if perr != nil && !errors.Is(perr, services.ErrInvalidPeriod) {
		http.Error(w, "Failed to compute progress", http.StatusInternalServerError)
		return
	}

	var activities []models.CPEActivity
	h.db.Where("certification_id = ?", cert.ID).
		Order("activity_date ASC, id ASC").
		Find(&activities)

	view.Render(w, r, "certifications/view.html", map[string]any{
		"Certification": cert,
		"Progress":      progress,
		"Activities":    activities,
		"InvalidPeriod": errors.Is(perr, services.ErrInvalidPeriod),
	})
}

func (h *CertificationHandler) Edit(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	cert, err := h.certs.Get(userID, parseID(r))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	view.Render(w, r, "certifications/edit.html", map[string]any{
		"Certification": cert,
		"Authorities":   models.Authorities(),
	})
}

func (h *CertificationHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := parseID(r)

	cert, err := h.certs.Get(userID, id)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	in, v := h.certFromForm(r)
	if !v.Empty() {
		view.Render(w, r, "certifications/edit.html", map[string]any{
			"Certification": cert,
			"Authorities":   models.Authorities(),
			"Violations":    v,
		})
		return
	}

	cert.Name = in.Name
	cert.Authority = in.Authority
	cert.IssueDate = in.IssueDate
	cert.PeriodMonths = in.PeriodMonths
	cert.RequiredCPE = in.RequiredCPE

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("certification_id = ?", cert.ID).Delete(&models.CategoryRequirement{}).Error; err != nil {
			return err
		}
		for i := range in.CategoryRequirements {
			in.CategoryRequirements[i].CertificationID = cert.ID
		}
		cert.CategoryRequirements = in.CategoryRequirements
		return tx.Save(cert).Error
	})
	if err != nil {
		http.Error(w, "Failed to update certification", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/certifications/"+strconv.Itoa(int(cert.ID)), http.StatusSeeOther)
}

func (h *CertificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	proofKeys, err := h.certs.Delete(userID, parseID(r))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "Failed to delete certification", http.StatusInternalServerError)
		return
	}
	// Reclaim stored proof documents once the rows are gone.
	for _, key := range proofKeys {
		if err := h.proofs.DeleteProof(r.Context(), key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			log.Printf("delete proof %s: %v", key, err)
		}
	}
	http.Redirect(w, r, "/certifications", http.StatusSeeOther)
}

func (h *CertificationHandler) Renew(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	renewedAt, err := time.Parse("2006-01-02", r.FormValue("renewed_at"))
	if err != nil {
		renewedAt = time.Now().Truncate(24 * time.Hour)
	}
	if err := h.certs.Renew(userID, parseID(r), renewedAt); err != nil {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/certifications/"+r.PathValue("id"), http.StatusSeeOther)
}

// certFromForm parses and validates the certification form fields, including
// the optional per-category minimums ("Category = points", one per line).
func (h *CertificationHandler) certFromForm(r *http.Request) (*models.Certification, validation.Violations) {
	v := make(validation.Violations)

	name := r.FormValue("name")
	authority := r.FormValue("authority")
	validation.Required("name", name, v)
	validation.MaxLength("name", name, 100, v)
	validation.OneOf("authority", authority, models.Authorities(), v)

	issueDate, err := time.Parse("2006-01-02", r.FormValue("issue_date"))
	if err != nil {
		v["issue_date"] = "required"
	}

	periodMonths, _ := strconv.Atoi(r.FormValue("period_months"))
	validation.PositiveInt("period_months", periodMonths, v)

	requiredCPE, err := strconv.ParseFloat(r.FormValue("required_cpe"), 64)
	if err != nil {
		v["required_cpe"] = "required"
	}
	validation.NonNegativeFloat("required_cpe", requiredCPE, v)

	reqs, perr := parseCategoryRequirements(r.FormValue("category_minimums"))
	if perr != nil {
		v["category_minimums"] = "not_allowed"
	}

	return &models.Certification{
		Name:                 name,
		Authority:            authority,
		IssueDate:            issueDate,
		PeriodMonths:         periodMonths,
		RequiredCPE:          requiredCPE,
		CategoryRequirements: reqs,
	}, v
}

// parseCategoryRequirements reads "Category = points" lines.
func parseCategoryRequirements(s string) ([]models.CategoryRequirement, error) {
	var reqs []models.CategoryRequirement
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, errors.New("malformed category minimum: " + line)
		}
		minCPE, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || minCPE < 0 {
			return nil, errors.New("malformed category minimum: " + line)
		}
		reqs = append(reqs, models.CategoryRequirement{
			Category: strings.TrimSpace(name),
			MinCPE:   minCPE,
		})
	}
	return reqs, nil
}

func parseID(r *http.Request) uint {
	id, _ := strconv.ParseUint(r.PathValue("id"), 10, 32)
	return uint(id)
}
