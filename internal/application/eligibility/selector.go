package eligibility

import (
	"context"
	"strings"
	"time"

	"wastecert-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 200
	MaxLimit     = 1000
)

// Filter narrows the eligible list. Zero values mean "no restriction".
type Filter struct {
	From     *time.Time
	To       *time.Time
	EntityID *uuid.UUID
	Search   string
	Limit    int
}

// EligibleCollection is a collection plus the display fields the consolidation preview needs.
type EligibleCollection struct {
	ID          uuid.UUID       `json:"id"`
	Code        string          `json:"code"`
	CollectedAt time.Time       `json:"collected_at"`
	EntityID    uuid.UUID       `json:"entity_id"`
	EntityName  string          `json:"entity_name"`
	EntityTaxID string          `json:"entity_tax_id"`
	PointID     *uuid.UUID      `json:"point_id"`
	PointName   *string         `json:"point_name"`
	TotalValue  decimal.Decimal `json:"total_value"`
}

type Selector struct {
	DB *gorm.DB
}

// ListEligible returns active, unbound collections the requester may certify.
func (s *Selector) ListEligible(ctx context.Context, req domain.Requester, f Filter) ([]EligibleCollection, error) {
	out := make([]EligibleCollection, 0)
	if !req.Admin {
		if req.EntityID == nil {
			return out, nil
		}
		if f.EntityID != nil && *f.EntityID != *req.EntityID {
			return out, nil
		}
		f.EntityID = req.EntityID
	}

	q := s.DB.WithContext(ctx).
		Table("waste_collections AS wc").
		Select(`wc.id, wc.code, wc.collected_at, wc.entity_id, wc.point_id, wc.total_value,
			ge.name AS entity_name, ge.tax_id AS entity_tax_id, cp.name AS point_name`).
		Joins("JOIN generating_entities ge ON ge.id = wc.entity_id").
		Joins("LEFT JOIN collection_points cp ON cp.id = wc.point_id").
		Where("wc.deleted_at IS NULL").
		Where("ge.deleted_at IS NULL").
		Where("wc.status = ?", domain.StateActive).
		Where("wc.certificate_id IS NULL")

	if f.EntityID != nil {
		q = q.Where("wc.entity_id = ?", *f.EntityID)
	}
	if f.From != nil {
		q = q.Where("wc.collected_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("wc.collected_at <= ?", *f.To)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(wc.code) LIKE ? OR LOWER(ge.name) LIKE ? OR LOWER(ge.tax_id) LIKE ?", like, like, like)
	}

	if err := q.Order("wc.collected_at ASC, wc.code ASC").Limit(clampLimit(f.Limit)).Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// CheckSelection verifies the requester may certify every collection and that each one is
// still active and unbound. Callers run it against freshly loaded rows.
func CheckSelection(req domain.Requester, collections []domain.WasteCollection) error {
	for _, c := range collections {
		if !req.CanAccessEntity(c.EntityID) {
			return ErrOutOfScope
		}
	}
	for _, c := range collections {
		if c.Status != domain.StateActive || c.Bound() {
			return ErrStaleSelection
		}
	}
	return nil
}

func clampLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultLimit
	case n > MaxLimit:
		return MaxLimit
	}
	return n
}
