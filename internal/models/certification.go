package models

import "time"

// Known certifying bodies. Authority stays a plain string column so users can
// track credentials from bodies we have no policy tables for.
const (
	AuthorityISC2      = "ISC2"
	AuthorityECCouncil = "EC-Council"
	AuthorityCompTIA   = "CompTIA"
	AuthorityOffSec    = "OffSec"
	AuthorityOther     = "Other"
)

// Authorities lists the selectable certifying bodies, in form order.
func Authorities() []string {
	return []string{AuthorityISC2, AuthorityECCouncil, AuthorityCompTIA, AuthorityOffSec, AuthorityOther}
}

// Certification is a single credential held by a user against one authority.
// Compliance totals are always derived from the activity rows; nothing
// aggregated is stored here.
type Certification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// UserID is the owner of this certification (for multi-tenant isolation)
	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Name      string `gorm:"size:100;not null" json:"name"`
	Authority string `gorm:"size:50;not null" json:"authority"`

	// IssueDate anchors the first renewal period. LastRenewedAt, once set,
	// replaces it as the period anchor.
	IssueDate     time.Time  `gorm:"not null" json:"issue_date"`
	LastRenewedAt *time.Time `json:"last_renewed_at,omitempty"`

	// PeriodMonths is the renewal-period length (e.g. 36 for a 3-year cycle).
	PeriodMonths int     `gorm:"not null;default:36" json:"period_months"`
	RequiredCPE  float64 `gorm:"not null" json:"required_cpe"`

	CategoryRequirements []CategoryRequirement `gorm:"constraint:OnDelete:CASCADE" json:"category_requirements,omitempty"`
	Activities           []CPEActivity         `gorm:"constraint:OnDelete:CASCADE" json:"activities,omitempty"`
}

// PeriodAnchor returns the date renewal periods are counted from: the most
// recent renewal date, or the issue date if the certification was never
// renewed.
func (c *Certification) PeriodAnchor() time.Time {
	if c.LastRenewedAt != nil {
		return *c.LastRenewedAt
	}
	return c.IssueDate
}

// CategoryRequirement is an authority-defined per-category CPE minimum for
// one certification, supplied as data rather than hardcoded policy.
type CategoryRequirement struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	CertificationID uint    `gorm:"index;not null" json:"certification_id"`
	Category        string  `gorm:"size:100;not null" json:"category"`
	MinCPE          float64 `gorm:"not null" json:"min_cpe"`
}
