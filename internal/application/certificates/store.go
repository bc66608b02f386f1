package certificates

import (
	"context"
	"errors"
	"time"

	"wastecert-backend/internal/application/consolidation"
	"wastecert-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the persistence the issuer and revoker need. Each method is one store round trip;
// only RevokeCertificate is required to be atomic across rows.
type Store interface {
	LoadSelection(ctx context.Context, ids []uuid.UUID) ([]domain.WasteCollection, error)
	FindCertificate(ctx context.Context, id uuid.UUID) (*domain.Certificate, error)
	// CertificateIDByCode returns the id holding code, or uuid.Nil when the code is free.
	CertificateIDByCode(ctx context.Context, code string) (uuid.UUID, error)
	CreateCertificate(ctx context.Context, cert *domain.Certificate) error
	CreateResidues(ctx context.Context, lines []domain.CertificateResidue) error
	// BindCollections sets the binding on every listed collection that is still active and
	// unbound, and returns how many rows it changed.
	BindCollections(ctx context.Context, certID uuid.UUID, ids []uuid.UUID) (int64, error)
	// DeactivateCertificate moves an active certificate to inactive so it stops validating.
	DeactivateCertificate(ctx context.Context, certID uuid.UUID) error
	UnbindCollections(ctx context.Context, certID uuid.UUID) (int64, error)
	DeleteResidues(ctx context.Context, certID uuid.UUID) error
	DeleteCertificate(ctx context.Context, certID uuid.UUID) error
	AppendLog(ctx context.Context, entry *domain.CertificateLog) error
	// RevokeCertificate flips a non-revoked certificate to revoked, releases its collections
	// and appends entry, all or nothing. revoked is false when the certificate was already revoked.
	RevokeCertificate(ctx context.Context, certID uuid.UUID, rev Revocation, entry *domain.CertificateLog) (revoked bool, released int64, err error)
}

// Revocation carries the audit columns written on revoke.
type Revocation struct {
	At     time.Time
	By     string
	Reason *string
}

// GormStore implements Store on GORM.
type GormStore struct {
	DB *gorm.DB
}

var _ Store = (*GormStore)(nil)

func (s *GormStore) LoadSelection(ctx context.Context, ids []uuid.UUID) ([]domain.WasteCollection, error) {
	return consolidation.LoadSelection(ctx, s.DB, ids)
}

func (s *GormStore) FindCertificate(ctx context.Context, id uuid.UUID) (*domain.Certificate, error) {
	var cert domain.Certificate
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&cert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCertificateNotFound
		}
		return nil, err
	}
	return &cert, nil
}

func (s *GormStore) CertificateIDByCode(ctx context.Context, code string) (uuid.UUID, error) {
	var ids []uuid.UUID
	if err := s.DB.WithContext(ctx).Model(&domain.Certificate{}).Where("code = ?", code).Limit(1).Pluck("id", &ids).Error; err != nil {
		return uuid.Nil, err
	}
	if len(ids) == 0 {
		return uuid.Nil, nil
	}
	return ids[0], nil
}

func (s *GormStore) CreateCertificate(ctx context.Context, cert *domain.Certificate) error {
	return s.DB.WithContext(ctx).Omit(clause.Associations).Create(cert).Error
}

func (s *GormStore) CreateResidues(ctx context.Context, lines []domain.CertificateResidue) error {
	if len(lines) == 0 {
		return nil
	}
	return s.DB.WithContext(ctx).Create(&lines).Error
}

func (s *GormStore) BindCollections(ctx context.Context, certID uuid.UUID, ids []uuid.UUID) (int64, error) {
	res := s.DB.WithContext(ctx).
		Model(&domain.WasteCollection{}).
		Where("id IN ? AND certificate_id IS NULL AND status = ?", ids, domain.StateActive).
		Update("certificate_id", certID)
	return res.RowsAffected, res.Error
}

func (s *GormStore) DeactivateCertificate(ctx context.Context, certID uuid.UUID) error {
	return s.DB.WithContext(ctx).
		Model(&domain.Certificate{}).
		Where("id = ? AND state = ?", certID, domain.StateActive).
		Update("state", domain.StateInactive).Error
}

func (s *GormStore) UnbindCollections(ctx context.Context, certID uuid.UUID) (int64, error) {
	res := s.DB.WithContext(ctx).
		Unscoped().
		Model(&domain.WasteCollection{}).
		Where("certificate_id = ?", certID).
		Update("certificate_id", nil)
	return res.RowsAffected, res.Error
}

func (s *GormStore) DeleteResidues(ctx context.Context, certID uuid.UUID) error {
	return s.DB.WithContext(ctx).Where("certificate_id = ?", certID).Delete(&domain.CertificateResidue{}).Error
}

func (s *GormStore) DeleteCertificate(ctx context.Context, certID uuid.UUID) error {
	return s.DB.WithContext(ctx).Where("id = ?", certID).Delete(&domain.Certificate{}).Error
}

func (s *GormStore) AppendLog(ctx context.Context, entry *domain.CertificateLog) error {
	return s.DB.WithContext(ctx).Create(entry).Error
}

func (s *GormStore) RevokeCertificate(ctx context.Context, certID uuid.UUID, rev Revocation, entry *domain.CertificateLog) (bool, int64, error) {
	var revoked bool
	var released int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Certificate{}).
			Where("id = ? AND state <> ?", certID, domain.StateRevoked).
			Updates(map[string]interface{}{
				"state":         domain.StateRevoked,
				"revoked_at":    rev.At,
				"revoked_by":    rev.By,
				"revoke_reason": rev.Reason,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		revoked = true

		// Unscoped: soft-deleted collections are released too.
		rel := tx.Unscoped().Model(&domain.WasteCollection{}).
			Where("certificate_id = ?", certID).
			Update("certificate_id", nil)
		if rel.Error != nil {
			return rel.Error
		}
		released = rel.RowsAffected

		if entry != nil {
			if err := setReleased(entry, released); err != nil {
				return err
			}
			if err := tx.Create(entry).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	return revoked, released, nil
}
