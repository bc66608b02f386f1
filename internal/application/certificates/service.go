package certificates

import (
	"context"
	"errors"

	"wastecert-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultListLimit = 200
	MaxListLimit     = 1000
)

// Service serves the owner read paths over issued certificates.
type Service struct {
	DB *gorm.DB
}

type ListFilter struct {
	EntityID *uuid.UUID
	State    domain.LifecycleState
	Limit    int
}

// ViewEntity lists certificates newest first. Admins may list any entity (or all of them);
// everyone else only sees their own entity.
func (s *Service) ViewEntity(ctx context.Context, req domain.Requester, f ListFilter) ([]domain.Certificate, error) {
	entityID := f.EntityID
	if !req.Admin {
		if req.EntityID == nil {
			return nil, ErrOutOfScope
		}
		if entityID != nil && *entityID != *req.EntityID {
			return nil, ErrOutOfScope
		}
		entityID = req.EntityID
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	q := s.DB.WithContext(ctx).Model(&domain.Certificate{})
	if entityID != nil {
		q = q.Where("entity_id = ?", *entityID)
	}
	if f.State != "" {
		q = q.Where("state = ?", f.State)
	}
	var certs []domain.Certificate
	if err := q.Order("created_at DESC").Order("code").Limit(limit).Find(&certs).Error; err != nil {
		return nil, persistence("list certificates", err)
	}
	return certs, nil
}

// ViewOne returns a certificate with its residue lines and bound collections.
func (s *Service) ViewOne(ctx context.Context, req domain.Requester, id uuid.UUID) (*domain.Certificate, error) {
	var cert domain.Certificate
	err := s.DB.WithContext(ctx).
		Preload("Residues", func(db *gorm.DB) *gorm.DB {
			return db.Order("residue_name").Order("id")
		}).
		Preload("Collections", func(db *gorm.DB) *gorm.DB {
			return db.Unscoped().Order("collected_at").Order("code")
		}).
		Where("id = ?", id).
		First(&cert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCertificateNotFound
		}
		return nil, persistence("find certificate", err)
	}
	if !req.CanAccessEntity(cert.EntityID) {
		return nil, ErrOutOfScope
	}
	return &cert, nil
}

// Logs returns the audit trail of a certificate, oldest first.
func (s *Service) Logs(ctx context.Context, req domain.Requester, id uuid.UUID) ([]domain.CertificateLog, error) {
	var cert domain.Certificate
	if err := s.DB.WithContext(ctx).Select("id", "entity_id").Where("id = ?", id).First(&cert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCertificateNotFound
		}
		return nil, persistence("find certificate", err)
	}
	if !req.CanAccessEntity(cert.EntityID) {
		return nil, ErrOutOfScope
	}

	var logs []domain.CertificateLog
	if err := s.DB.WithContext(ctx).Where("certificate_id = ?", id).Order("created_at").Order("id").Find(&logs).Error; err != nil {
		return nil, persistence("list certificate logs", err)
	}
	return logs, nil
}
