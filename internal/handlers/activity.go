package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/dferrand/cpetrack/auth"
	"github.com/dferrand/cpetrack/httpx"
	"github.com/dferrand/cpetrack/internal/models"
	"github.com/dferrand/cpetrack/internal/services"
	"github.com/dferrand/cpetrack/internal/storage"
	"github.com/dferrand/cpetrack/validation"
	"github.com/dferrand/cpetrack/view"
	"gorm.io/gorm"
)

type ActivityHandler struct {
	db       *gorm.DB
	intake   *services.IntakeService
	verify   *services.VerifyService
	proofs   storage.Store
	maxBytes int64
}

func NewActivityHandler(db *gorm.DB, intake *services.IntakeService, verify *services.VerifyService, proofs storage.Store, maxBytes int64) *ActivityHandler {
	return &ActivityHandler{db: db, intake: intake, verify: verify, proofs: proofs, maxBytes: maxBytes}
}

func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit := 20
	offset := (page - 1) * limit

	q := h.db.Where("user_id = ?", userID)
	certFilter, _ := strconv.ParseUint(r.URL.Query().Get("certification"), 10, 32)
	if certFilter > 0 {
		q = q.Where("certification_id = ?", certFilter)
	}

	var total int64
	q.Model(&models.CPEActivity{}).Count(&total)

	var activities []models.CPEActivity
	q.Preload("Certification").
		Order("activity_date DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&activities)

	var certs []models.Certification
	h.db.Where("user_id = ?", userID).Order("name").Find(&certs)

	view.Render(w, r, "activities/index.html", map[string]any{
		"Activities":     activities,
		"Certifications": certs,
		"SelectedCert":   uint(certFilter),
		"Page":           page,
		"Total":          total,
		"Limit":          limit,
	})
}

func (h *ActivityHandler) New(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var certs []models.Certification
	h.db.Where("user_id = ?", userID).Order("name").Find(&certs)
	if len(certs) == 0 {
		// Logging an activity needs a certification to hang it on.
		http.Redirect(w, r, "/certifications/new", http.StatusSeeOther)
		return
	}

	view.Render(w, r, "activities/new.html", map[string]any{
		"Certifications": certs,
		"ActivityTypes":  models.ActivityTypes(),
	})
}

func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		http.Error(w, "Upload too large", http.StatusRequestEntityTooLarge)
		return
	}

	certID, _ := strconv.ParseUint(r.FormValue("certification_id"), 10, 32)
	cpeValue, cpeErr := strconv.ParseFloat(r.FormValue("cpe_value"), 64)
	activityDate, _ := time.Parse("2006-01-02", r.FormValue("activity_date"))

	in := services.ActivityInput{
		CertificationID: uint(certID),
		Type:            r.FormValue("activity_type"),
		Category:        r.FormValue("category"),
		CPEValue:        cpeValue,
		ActivityDate:    activityDate,
		Description:     r.FormValue("description"),
	}
	if cpeErr != nil {
		h.renderNewWithViolations(w, r, validation.Violations{"cpe_value": "must_not_be_negative"})
		return
	}

	// Stage the proof upload before intake; validation failure reclaims it.
	file, header, err := r.FormFile("proof_file")
	if err == nil {
		defer file.Close()
		if !storage.Allowed(header.Filename) {
			h.renderNewWithViolations(w, r, validation.Violations{"proof_file": "unsupported_document_type"})
			return
		}
		key, serr := h.proofs.StoreProof(r.Context(), header.Filename, file, header.Size)
		if serr != nil {
			http.Error(w, "Failed to store proof document", http.StatusInternalServerError)
			return
		}
		in.ProofKey = key
		in.ProofFilename = header.Filename
	}

	id, err := h.intake.LogActivity(userID, in)
	if err != nil {
		if in.ProofKey != "" {
			if derr := h.proofs.DeleteProof(r.Context(), in.ProofKey); derr != nil {
				log.Printf("reclaim staged proof %s: %v", in.ProofKey, derr)
			}
		}
		var verr *validation.Error
		switch {
		case errors.As(err, &verr):
			h.renderNewWithViolations(w, r, verr.Violations)
		case errors.Is(err, services.ErrNotFound):
			http.NotFound(w, r)
		default:
			http.Error(w, "Failed to log activity", http.StatusInternalServerError)
		}
		return
	}

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, map[string]any{"id": id})
		return
	}
	http.Redirect(w, r, "/activities", http.StatusSeeOther)
}

func (h *ActivityHandler) renderNewWithViolations(w http.ResponseWriter, r *http.Request, v validation.Violations) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}
	userID, _ := auth.UserIDFromContext(r.Context())
	var certs []models.Certification
	h.db.Where("user_id = ?", userID).Order("name").Find(&certs)
	view.Render(w, r, "activities/new.html", map[string]any{
		"Certifications": certs,
		"ActivityTypes":  models.ActivityTypes(),
		"Violations":     v,
	})
}

func (h *ActivityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var activity models.CPEActivity
	if err := h.db.Where("id = ? AND user_id = ?", parseID(r), userID).First(&activity).Error; err != nil {
		http.NotFound(w, r)
		return
	}

	if err := h.db.Delete(&activity).Error; err != nil {
		http.Error(w, "Failed to delete activity", http.StatusInternalServerError)
		return
	}
	if activity.HasProof() {
		if err := h.proofs.DeleteProof(r.Context(), activity.ProofKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
			log.Printf("delete proof %s: %v", activity.ProofKey, err)
		}
	}
	http.Redirect(w, r, "/activities", http.StatusSeeOther)
}

// Proof streams the stored proof document for an owned activity.
func (h *ActivityHandler) Proof(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var activity models.CPEActivity
	if err := h.db.Where("id = ? AND user_id = ?", parseID(r), userID).First(&activity).Error; err != nil {
		http.NotFound(w, r)
		return
	}
	if !activity.HasProof() {
		http.NotFound(w, r)
		return
	}

	rc, err := h.proofs.FetchProof(r.Context(), activity.ProofKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "Failed to fetch proof document", http.StatusBadGateway)
		return
	}
	defer rc.Close()

	if ct := storage.ContentType(activity.ProofFilename); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Content-Disposition", `inline; filename="`+activity.ProofFilename+`"`)
	io.Copy(w, rc)
}

// Verify runs the automatic verification pass and records its outcome.
// Unverified stays unverified when the engine is not confident.
func (h *ActivityHandler) Verify(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var activity models.CPEActivity
	err := h.db.Where("id = ? AND user_id = ?", parseID(r), userID).
		Preload("Certification").
		First(&activity).Error
	if err != nil {
		http.NotFound(w, r)
		return
	}

	assessment := h.verify.Assess(activity.Certification, &activity)
	updates := map[string]any{"verification_notes": assessment.Notes}
	if assessment.Verified {
		updates["status"] = models.StatusVerified
	}
	if err := h.db.Model(&activity).Updates(updates).Error; err != nil {
		http.Error(w, "Failed to record verification", http.StatusInternalServerError)
		return
	}

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, assessment)
		return
	}
	http.Redirect(w, r, "/activities", http.StatusSeeOther)
}

// Reject marks an activity as rejected so it no longer counts toward totals.
func (h *ActivityHandler) Reject(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	res := h.db.Model(&models.CPEActivity{}).
		Where("id = ? AND user_id = ?", parseID(r), userID).
		Update("status", models.StatusRejected)
	if res.Error != nil {
		http.Error(w, "Failed to reject activity", http.StatusInternalServerError)
		return
	}
	if res.RowsAffected == 0 {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/activities", http.StatusSeeOther)
}
