package certificates

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"wastecert-backend/internal/domain"
	"wastecert-backend/internal/infrastructure/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

// Revoker invalidates certificates and returns their collections to the eligible pool.
type Revoker struct {
	Store Store
	Now   func() time.Time
}

type RevokeRequest struct {
	Requester     domain.Requester
	CertificateID uuid.UUID
	Reason        string
}

type RevokeResult struct {
	CertificateID       uuid.UUID `json:"certificate_id"`
	Code                string    `json:"code"`
	AlreadyRevoked      bool      `json:"already_revoked"`
	ReleasedCollections int64     `json:"released_collections"`
}

// Revoke is idempotent: revoking a revoked certificate succeeds without writing anything.
func (r *Revoker) Revoke(ctx context.Context, req RevokeRequest) (*RevokeResult, error) {
	cert, err := r.Store.FindCertificate(ctx, req.CertificateID)
	if err != nil {
		if errors.Is(err, ErrCertificateNotFound) {
			return nil, err
		}
		return nil, persistence("find certificate", err)
	}
	if !req.Requester.CanAccessEntity(cert.EntityID) {
		return nil, ErrOutOfScope
	}

	res := &RevokeResult{CertificateID: cert.ID, Code: cert.Code}
	if cert.State == domain.StateRevoked {
		res.AlreadyRevoked = true
		return res, nil
	}

	actor := req.Requester.Actor()
	note := strings.TrimSpace(req.Reason)
	var reason *string
	if note != "" {
		reason = &note
	}
	entry := &domain.CertificateLog{
		CertificateID: cert.ID,
		Action:        domain.LogActionRevoked,
		Actor:         actor,
		Note:          note,
	}

	revoked, released, err := r.Store.RevokeCertificate(ctx, cert.ID, Revocation{
		At:     r.now(),
		By:     actor,
		Reason: reason,
	}, entry)
	if err != nil {
		return nil, persistence("revoke certificate", err)
	}
	if !revoked {
		// lost a race with another revoke
		res.AlreadyRevoked = true
		return res, nil
	}

	res.ReleasedCollections = released
	metrics.CertificatesRevoked.Inc()
	log.Info().
		Str("certificate_id", cert.ID.String()).
		Str("code", cert.Code).
		Int64("released", released).
		Str("actor", actor).
		Msg("certificate revoked")
	return res, nil
}

func (r *Revoker) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// setReleased records the number of released collections in the entry's details.
func setReleased(entry *domain.CertificateLog, released int64) error {
	details := map[string]interface{}{}
	if len(entry.Details) > 0 {
		if err := json.Unmarshal(entry.Details, &details); err != nil {
			return err
		}
	}
	details["released_collections"] = released
	b, err := json.Marshal(details)
	if err != nil {
		return err
	}
	entry.Details = datatypes.JSON(b)
	return nil
}
