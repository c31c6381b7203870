package models

import "time"

// User represents an authenticated account. A user owns certifications and,
// through them, the CPE activities logged against them.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Username  string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;size:120;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"` // bcrypt hash, never exposed

	Certifications []Certification `gorm:"constraint:OnDelete:CASCADE" json:"certifications,omitempty"`
}
