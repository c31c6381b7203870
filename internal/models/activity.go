package models

import "time"

// ActivityType is the closed set of continuing-education activity kinds.
type ActivityType string

const (
	ActivityTraining      ActivityType = "Training"
	ActivityConference    ActivityType = "Conference"
	ActivityWebinar       ActivityType = "Webinar"
	ActivityWorkshop      ActivityType = "Workshop"
	ActivityCertification ActivityType = "Certification"
	ActivitySelfStudy     ActivityType = "Self-Study"
	ActivityTeaching      ActivityType = "Teaching"
	ActivityResearch      ActivityType = "Research"
	ActivityOther         ActivityType = "Other"
)

// ActivityTypes lists the selectable activity types, in form order.
func ActivityTypes() []ActivityType {
	return []ActivityType{
		ActivityTraining, ActivityConference, ActivityWebinar, ActivityWorkshop,
		ActivityCertification, ActivitySelfStudy, ActivityTeaching, ActivityResearch,
		ActivityOther,
	}
}

// Valid reports whether t is one of the enumerated activity types.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityTraining, ActivityConference, ActivityWebinar, ActivityWorkshop,
		ActivityCertification, ActivitySelfStudy, ActivityTeaching, ActivityResearch,
		ActivityOther:
		return true
	}
	return false
}

// VerificationStatus is the review state of a logged activity's proof.
type VerificationStatus string

const (
	StatusUnverified VerificationStatus = "unverified"
	StatusVerified   VerificationStatus = "verified"
	StatusRejected   VerificationStatus = "rejected"
)

// Valid reports whether s is one of the enumerated statuses.
func (s VerificationStatus) Valid() bool {
	switch s {
	case StatusUnverified, StatusVerified, StatusRejected:
		return true
	}
	return false
}

// CPEActivity is one logged unit of continuing education. Identity is
// immutable after intake; Status, ProofKey and VerificationNotes may change
// during review.
type CPEActivity struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID          uint           `gorm:"index;not null" json:"user_id"`
	CertificationID uint           `gorm:"index;not null" json:"certification_id"`
	Certification   *Certification `gorm:"foreignKey:CertificationID" json:"-"`

	Type     ActivityType `gorm:"size:50;not null" json:"type"`
	Category string       `gorm:"size:100" json:"category,omitempty"`

	// CPEValue is non-negative and may be fractional (e.g. 0.25 for a short
	// webinar). Zero-value activities are allowed and contribute nothing.
	CPEValue     float64   `gorm:"not null" json:"cpe_value"`
	ActivityDate time.Time `gorm:"not null" json:"activity_date"`
	Description  string    `gorm:"size:500;not null" json:"description"`

	// ProofKey is the opaque storage reference of the uploaded proof
	// document; ProofFilename keeps the original name for display.
	ProofKey      string `gorm:"size:255" json:"proof_key,omitempty"`
	ProofFilename string `gorm:"size:255" json:"proof_filename,omitempty"`

	Status            VerificationStatus `gorm:"size:20;not null;default:'unverified'" json:"status"`
	VerificationNotes string             `gorm:"size:500" json:"verification_notes,omitempty"`
}

// Counts reports whether the activity contributes to period totals.
// Rejected activities never count, whatever their value.
func (a *CPEActivity) Counts() bool {
	return a.Status != StatusRejected
}

// HasProof reports whether a proof document reference is attached.
func (a *CPEActivity) HasProof() bool {
	return a.ProofKey != ""
}
