package services

import (
	"errors"
	"time"

	"github.com/dferrand/cpetrack/internal/models"
	"gorm.io/gorm"
)

// CertificationService owns certification lifecycle operations that must be
// transactional, in particular the cascade delete.
type CertificationService struct {
	db *gorm.DB
}

func NewCertificationService(db *gorm.DB) *CertificationService {
	return &CertificationService{db: db}
}

// Get loads a certification owned by the user, with category requirements.
func (s *CertificationService) Get(userID, certID uint) (*models.Certification, error) {
	var cert models.Certification
	err := s.db.Where("id = ? AND user_id = ?", certID, userID).
		Preload("CategoryRequirements").
		First(&cert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cert, nil
}

// Delete removes a certification and everything it owns in one transaction,
// so no activity or category requirement can survive its parent. It returns
// the proof keys of the deleted activities so the caller can reclaim stored
// documents.
func (s *CertificationService) Delete(userID, certID uint) ([]string, error) {
	var proofKeys []string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var cert models.Certification
		if err := tx.Where("id = ? AND user_id = ?", certID, userID).First(&cert).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		var activities []models.CPEActivity
		if err := tx.Where("certification_id = ?", cert.ID).Find(&activities).Error; err != nil {
			return err
		}
		for _, a := range activities {
			if a.HasProof() {
				proofKeys = append(proofKeys, a.ProofKey)
			}
		}
		if err := tx.Where("certification_id = ?", cert.ID).Delete(&models.CPEActivity{}).Error; err != nil {
			return err
		}
		if err := tx.Where("certification_id = ?", cert.ID).Delete(&models.CategoryRequirement{}).Error; err != nil {
			return err
		}
		return tx.Delete(&cert).Error
	})
	if err != nil {
		return nil, err
	}
	return proofKeys, nil
}

// Renew marks the certification as renewed on the given date, which becomes
// the anchor for subsequent period accounting.
func (s *CertificationService) Renew(userID, certID uint, renewedAt time.Time) error {
	res := s.db.Model(&models.Certification{}).
		Where("id = ? AND user_id = ?", certID, userID).
		Update("last_renewed_at", renewedAt)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
