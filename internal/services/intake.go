package services

import (
	"errors"
	"time"

	"github.com/dferrand/cpetrack/internal/models"
	"github.com/dferrand/cpetrack/internal/storage"
	"github.com/dferrand/cpetrack/validation"
	"gorm.io/gorm"
)

// ActivityInput is a candidate activity prior to validation.
type ActivityInput struct {
	CertificationID uint
	Type            string
	Category        string
	CPEValue        float64
	ActivityDate    time.Time
	Description     string
	ProofKey        string
	ProofFilename   string
}

// IntakeService validates and persists logged activities. Each successful
// intake is a single transactional insert; a failed one writes nothing.
type IntakeService struct {
	db        *gorm.DB
	graceDays int
	now       func() time.Time
}

func NewIntakeService(db *gorm.DB, graceDays int) *IntakeService {
	return &IntakeService{db: db, graceDays: graceDays, now: time.Now}
}

// LogActivity validates the candidate and inserts it with status Unverified,
// returning the new activity id. Validation failures come back as a
// *validation.Error carrying field and reason; an unresolvable certification
// reference comes back as ErrNotFound.
func (s *IntakeService) LogActivity(userID uint, in ActivityInput) (uint, error) {
	var cert models.Certification
	err := s.db.Where("id = ? AND user_id = ?", in.CertificationID, userID).First(&cert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	v := make(validation.Violations)
	if !models.ActivityType(in.Type).Valid() {
		v["activity_type"] = "unknown_type"
	}
	validation.Required("description", in.Description, v)
	validation.MaxLength("description", in.Description, 500, v)
	validation.NonNegativeFloat("cpe_value", in.CPEValue, v)
	if in.ActivityDate.IsZero() {
		v["activity_date"] = "required"
	} else {
		validation.DateNotBefore("activity_date", in.ActivityDate, cert.IssueDate, v)
		validation.DateNotAfter("activity_date", in.ActivityDate, s.now().AddDate(0, 0, s.graceDays), v)
	}
	if in.ProofFilename != "" && !storage.Allowed(in.ProofFilename) {
		v["proof_file"] = "unsupported_document_type"
	}
	if !v.Empty() {
		return 0, &validation.Error{Violations: v}
	}

	activity := models.CPEActivity{
		UserID:          userID,
		CertificationID: cert.ID,
		Type:            models.ActivityType(in.Type),
		Category:        in.Category,
		CPEValue:        in.CPEValue,
		ActivityDate:    in.ActivityDate,
		Description:     in.Description,
		ProofKey:        in.ProofKey,
		ProofFilename:   in.ProofFilename,
		Status:          models.StatusUnverified,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Re-check the parent inside the transaction so a concurrent cascade
		// delete of the certification cannot leave an orphaned activity.
		var n int64
		if err := tx.Model(&models.Certification{}).Where("id = ?", cert.ID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return tx.Create(&activity).Error
	})
	if err != nil {
		return 0, err
	}
	return activity.ID, nil
}
