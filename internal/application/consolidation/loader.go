package consolidation

import (
	"context"

	"wastecert-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoadSelection fetches the collections with entity, active residue lines and residue types.
// Missing ids are simply absent from the result; callers compare lengths.
func LoadSelection(ctx context.Context, db *gorm.DB, ids []uuid.UUID) ([]domain.WasteCollection, error) {
	var cols []domain.WasteCollection
	if len(ids) == 0 {
		return cols, nil
	}
	err := db.WithContext(ctx).
		Preload("Entity").
		Preload("Residues", "status = ?", domain.StateActive).
		Preload("Residues.ResidueType").
		Where("id IN ?", ids).
		Order("collected_at ASC").
		Find(&cols).Error
	if err != nil {
		return nil, err
	}
	return cols, nil
}

// DedupeIDs drops repeated ids while keeping first-seen order.
func DedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
