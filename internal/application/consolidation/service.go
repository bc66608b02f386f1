package consolidation

import (
	"context"

	"wastecert-backend/internal/application/eligibility"
	"wastecert-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service builds previews from stored collections. It never writes.
type Service struct {
	DB *gorm.DB
}

// Preview resolves ids, validates the selection and consolidates it.
func (s *Service) Preview(ctx context.Context, req domain.Requester, ids []uuid.UUID) (*Preview, error) {
	ids = DedupeIDs(ids)
	if len(ids) == 0 {
		return nil, ErrEmptySelection
	}
	cols, err := LoadSelection(ctx, s.DB, ids)
	if err != nil {
		return nil, err
	}
	if len(cols) != len(ids) {
		return nil, ErrUnknownCollection
	}
	preview, err := Consolidate(cols)
	if err != nil {
		return nil, err
	}
	if err := eligibility.CheckSelection(req, cols); err != nil {
		return nil, err
	}
	return preview, nil
}
