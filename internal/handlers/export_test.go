package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dferrand/cpetrack/auth"
	"github.com/dferrand/cpetrack/internal/models"
	"github.com/dferrand/cpetrack/internal/services"
)

func exportRequest(userID, certID uint, format, query string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/certifications/%d/export/%s%s", certID, format, query), nil)
	req.SetPathValue("id", strconv.Itoa(int(certID)))
	req.SetPathValue("format", format)
	return req.WithContext(auth.WithUserID(req.Context(), userID))
}

func TestExportCSV(t *testing.T) {
	db := setupTestDB(t)
	u, cert := seedUserAndCert(t, db)
	h := NewExportHandler(db, services.NewCertificationService(db), services.NewComplianceService(db))

	// Anchor the current window at now-6mo so relative dates land inside it.
	renewed := time.Now().AddDate(0, -6, 0)
	if err := db.Model(&cert).Update("last_renewed_at", renewed).Error; err != nil {
		t.Fatalf("renew: %v", err)
	}
	older := time.Now().AddDate(0, -2, 0)
	newer := time.Now().AddDate(0, -1, 0)
	acts := []models.CPEActivity{
		{UserID: u.ID, CertificationID: cert.ID, Type: models.ActivityConference, CPEValue: 90,
			ActivityDate: newer, Description: "summit", Status: models.StatusUnverified},
		{UserID: u.ID, CertificationID: cert.ID, Type: models.ActivityTraining, CPEValue: 40,
			ActivityDate: older, Description: "SANS course", Status: models.StatusVerified},
	}
	for i := range acts {
		if err := db.Create(&acts[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	w := httptest.NewRecorder()
	h.Export(w, exportRequest(u.ID, cert.ID, "csv", ""))
	if w.Code != http.StatusOK {
		t.Fatalf("export: %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") || !strings.Contains(cd, ".csv") {
		t.Errorf("content disposition = %q", cd)
	}

	rows, err := csv.NewReader(bytes.NewReader(w.Body.Bytes())).ReadAll()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[1][0] != older.Format("2006-01-02") {
		t.Errorf("first data row = %v, want date ascending", rows[1])
	}
}

func TestExportPDF(t *testing.T) {
	db := setupTestDB(t)
	u, cert := seedUserAndCert(t, db)
	h := NewExportHandler(db, services.NewCertificationService(db), services.NewComplianceService(db))

	w := httptest.NewRecorder()
	h.Export(w, exportRequest(u.ID, cert.ID, "pdf", ""))
	if w.Code != http.StatusOK {
		t.Fatalf("export: %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %q", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Errorf("body is not a PDF")
	}
}

func TestExportUnknownFormatAndForeignCert(t *testing.T) {
	db := setupTestDB(t)
	u, cert := seedUserAndCert(t, db)
	h := NewExportHandler(db, services.NewCertificationService(db), services.NewComplianceService(db))

	w := httptest.NewRecorder()
	h.Export(w, exportRequest(u.ID, cert.ID, "xlsx", ""))
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown format: got %d, want 404", w.Code)
	}

	other := models.User{Username: "bob", Email: "bob@example.com", Password: "x"}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	w2 := httptest.NewRecorder()
	h.Export(w2, exportRequest(other.ID, cert.ID, "csv", ""))
	if w2.Code != http.StatusNotFound {
		t.Errorf("foreign cert: got %d, want 404", w2.Code)
	}
}
