package services

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/dferrand/cpetrack/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrNotFound means a certification reference did not resolve.
	ErrNotFound = errors.New("certification not found")
	// ErrInvalidPeriod means the renewal-period configuration is malformed.
	ErrInvalidPeriod = errors.New("invalid renewal period")
)

// StatusTier classifies how a certification stands in its current period.
type StatusTier string

const (
	TierCompliant StatusTier = "compliant"
	TierOnTrack   StatusTier = "on-track"
	TierWarning   StatusTier = "warning"
	TierUrgent    StatusTier = "urgent"
	TierExpired   StatusTier = "expired"
)

// CategoryProgress pairs earned CPE in a category with the authority minimum
// for it, if one is defined.
type CategoryProgress struct {
	Earned   float64 `json:"earned"`
	Required float64 `json:"required"`
}

// Progress is the derived compliance state of one certification at a given
// as-of date. It is recomputed from the activity rows on every query; no
// aggregate is ever stored.
type Progress struct {
	PeriodStart   time.Time                   `json:"period_start"`
	PeriodEnd     time.Time                   `json:"period_end"`
	EarnedCPE     float64                     `json:"earned_cpe"`
	RequiredCPE   float64                     `json:"required_cpe"`
	Categories    map[string]CategoryProgress `json:"categories,omitempty"`
	ActivityCount int                         `json:"activity_count"`
	Compliant     bool                        `json:"compliant"`
	DaysRemaining int                         `json:"days_remaining"`
	Tier          StatusTier                  `json:"tier"`
}

// Percent reports progress toward the required total, capped at 100.
func (p *Progress) Percent() float64 {
	if p.RequiredCPE <= 0 {
		return 100
	}
	pct := p.EarnedCPE / p.RequiredCPE * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

// MissingCPE is how many points are still needed for the period total.
func (p *Progress) MissingCPE() float64 {
	if m := p.RequiredCPE - p.EarnedCPE; m > 0 {
		return m
	}
	return 0
}

// CategoryNames returns the categories with earned or required points, in
// stable order.
func (p *Progress) CategoryNames() []string {
	names := make([]string, 0, len(p.Categories))
	for name := range p.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CurrentPeriod returns the renewal-period window [start, end) containing
// asOf. Windows repeat from the period anchor (the most recent renewal date,
// or the issue date for a never-renewed certification), so the returned
// window always contains asOf.
func CurrentPeriod(cert *models.Certification, asOf time.Time) (start, end time.Time, err error) {
	if cert.PeriodMonths <= 0 {
		return time.Time{}, time.Time{}, ErrInvalidPeriod
	}
	start = cert.PeriodAnchor()
	end = start.AddDate(0, cert.PeriodMonths, 0)
	for !asOf.Before(end) {
		start = end
		end = start.AddDate(0, cert.PeriodMonths, 0)
	}
	for asOf.Before(start) {
		end = start
		start = start.AddDate(0, -cert.PeriodMonths, 0)
	}
	return start, end, nil
}

// DaysUntil counts the whole days from asOf until deadline (floor division;
// negative once the deadline has passed).
func DaysUntil(asOf, deadline time.Time) int {
	return int(math.Floor(deadline.Sub(asOf).Hours() / 24))
}

// TierFor maps the compliance flag and days remaining to a status tier.
// A compliant certification reports Compliant whatever the clock says.
func TierFor(compliant bool, daysRemaining int) StatusTier {
	switch {
	case compliant:
		return TierCompliant
	case daysRemaining < 0:
		return TierExpired
	case daysRemaining <= 30:
		return TierUrgent
	case daysRemaining <= 90:
		return TierWarning
	default:
		return TierOnTrack
	}
}

// ComplianceService computes renewal-period progress. Read-only: it never
// writes and never caches.
type ComplianceService struct {
	db *gorm.DB
}

func NewComplianceService(db *gorm.DB) *ComplianceService {
	return &ComplianceService{db: db}
}

// ComputePeriodProgress resolves the certification and computes its
// current-period progress as of the given date. An empty activity selection
// is a valid state and yields zero totals with ActivityCount 0; a missing
// certification yields ErrNotFound.
func (s *ComplianceService) ComputePeriodProgress(certID uint, asOf time.Time) (*Progress, error) {
	var cert models.Certification
	if err := s.db.Preload("CategoryRequirements").First(&cert, certID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.ProgressFor(&cert, asOf)
}

// ProgressFor computes progress for an already-loaded certification (with
// CategoryRequirements preloaded) against the current activity snapshot.
func (s *ComplianceService) ProgressFor(cert *models.Certification, asOf time.Time) (*Progress, error) {
	start, end, err := CurrentPeriod(cert, asOf)
	if err != nil {
		return nil, err
	}

	var activities []models.CPEActivity
	if err := s.db.
		Where("certification_id = ? AND status <> ? AND activity_date >= ? AND activity_date < ?",
			cert.ID, models.StatusRejected, start, end).
		Find(&activities).Error; err != nil {
		return nil, err
	}

	p := &Progress{
		PeriodStart: start,
		PeriodEnd:   end,
		RequiredCPE: cert.RequiredCPE,
		Categories:  map[string]CategoryProgress{},
	}
	for _, a := range activities {
		p.EarnedCPE += a.CPEValue
		if a.Category != "" {
			cp := p.Categories[a.Category]
			cp.Earned += a.CPEValue
			p.Categories[a.Category] = cp
		}
	}
	for _, req := range cert.CategoryRequirements {
		cp := p.Categories[req.Category]
		cp.Required = req.MinCPE
		p.Categories[req.Category] = cp
	}
	p.ActivityCount = len(activities)

	p.Compliant = p.EarnedCPE >= p.RequiredCPE
	for _, cp := range p.Categories {
		if cp.Earned < cp.Required {
			p.Compliant = false
		}
	}

	p.DaysRemaining = DaysUntil(asOf, end)
	p.Tier = TierFor(p.Compliant, p.DaysRemaining)
	return p, nil
}
