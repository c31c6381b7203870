package services

import (
	"errors"
	"testing"

	"github.com/dferrand/cpetrack/internal/models"
)

func TestCertificationGetScopedToOwner(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewCertificationService(db)
	owner := seedUser(t, db)
	cert := seedCert(t, db, owner.ID, date(2023, 1, 1), 36, 120)

	got, err := svc.Get(owner.ID, cert.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != cert.Name {
		t.Errorf("name = %q, want %q", got.Name, cert.Name)
	}

	other := models.User{Username: "bob", Email: "bob@example.com", Password: "hash"}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if _, err := svc.Get(other.ID, cert.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-user get: got %v, want ErrNotFound", err)
	}
}

func TestCertificationDeleteCascades(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewCertificationService(db)
	u := seedUser(t, db)
	cert := seedCert(t, db, u.ID, date(2023, 1, 1), 36, 120)

	if err := db.Create(&models.CategoryRequirement{CertificationID: cert.ID, Category: "Technical", MinCPE: 40}).Error; err != nil {
		t.Fatalf("seed requirement: %v", err)
	}
	a := seedActivity(t, db, u.ID, cert.ID, 10, date(2023, 6, 1), models.StatusVerified)
	if err := db.Model(&a).Updates(map[string]any{"proof_key": "cert_ab12cd34.pdf", "proof_filename": "cert.pdf"}).Error; err != nil {
		t.Fatalf("attach proof: %v", err)
	}
	seedActivity(t, db, u.ID, cert.ID, 20, date(2023, 7, 1), models.StatusUnverified)

	keys, err := svc.Delete(u.ID, cert.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(keys) != 1 || keys[0] != "cert_ab12cd34.pdf" {
		t.Errorf("proof keys = %v, want the one attached key", keys)
	}

	var nActs, nReqs, nCerts int64
	db.Model(&models.CPEActivity{}).Where("certification_id = ?", cert.ID).Count(&nActs)
	db.Model(&models.CategoryRequirement{}).Where("certification_id = ?", cert.ID).Count(&nReqs)
	db.Model(&models.Certification{}).Where("id = ?", cert.ID).Count(&nCerts)
	if nActs != 0 || nReqs != 0 || nCerts != 0 {
		t.Errorf("orphans after delete: activities=%d requirements=%d certs=%d", nActs, nReqs, nCerts)
	}
}

func TestCertificationDeleteNotFound(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewCertificationService(db)
	u := seedUser(t, db)

	if _, err := svc.Delete(u.ID, 77); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestCertificationRenewMovesAnchor(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewCertificationService(db)
	u := seedUser(t, db)
	cert := seedCert(t, db, u.ID, date(2021, 1, 1), 36, 120)

	renewed := date(2024, 1, 15)
	if err := svc.Renew(u.ID, cert.ID, renewed); err != nil {
		t.Fatalf("renew: %v", err)
	}

	var got models.Certification
	if err := db.First(&got, cert.ID).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.LastRenewedAt == nil || !got.LastRenewedAt.Equal(renewed) {
		t.Errorf("last renewed = %v, want %v", got.LastRenewedAt, renewed)
	}
	if !got.PeriodAnchor().Equal(renewed) {
		t.Errorf("anchor = %v, want %v", got.PeriodAnchor(), renewed)
	}

	if err := svc.Renew(u.ID, 999, renewed); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing cert renew: got %v, want ErrNotFound", err)
	}
}
