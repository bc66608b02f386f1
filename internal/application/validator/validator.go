// Package validator answers public certificate checks. The code is the only credential,
// so every failure looks the same to the caller.
package validator

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"wastecert-backend/internal/application/codegen"
	"wastecert-backend/internal/domain"
	"wastecert-backend/internal/infrastructure/metrics"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrInvalidCode covers unknown, malformed, revoked and inactive codes alike.
var ErrInvalidCode = errors.New("Invalid certificate code")

// Lookup results used as metric labels.
const (
	ResultValid     = "valid"
	ResultMalformed = "malformed"
	ResultUnknown   = "unknown"
	ResultNotActive = "not_active"
	ResultError     = "error"
)

type Line struct {
	ResidueName string          `json:"residue_name"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	Value       decimal.Decimal `json:"value"`
}

type Collection struct {
	Code        string    `json:"code"`
	CollectedAt time.Time `json:"collected_at"`
}

// Projection is the public view of a valid certificate.
type Projection struct {
	Code            string          `json:"code"`
	PeriodStart     time.Time       `json:"period_start"`
	PeriodEnd       time.Time       `json:"period_end"`
	TotalQuantity   decimal.Decimal `json:"total_quantity"`
	TotalValue      decimal.Decimal `json:"total_value"`
	Lines           []Line          `json:"lines"`
	Collections     []Collection    `json:"collections"`
	EntityName      string          `json:"entity_name"`
	EntityTaxID     string          `json:"entity_tax_id"`
	IssuedAt        time.Time       `json:"issued_at"`
	VerificationURL string          `json:"verification_url,omitempty"`
}

type Validator struct {
	DB      *gorm.DB
	BaseURL string
}

// Lookup returns the projection of an active certificate or ErrInvalidCode.
// Any other error is a store failure.
func (v *Validator) Lookup(ctx context.Context, code string) (*Projection, error) {
	if !codegen.Valid(code) {
		metrics.ValidatorLookups.WithLabelValues(ResultMalformed).Inc()
		return nil, ErrInvalidCode
	}

	var cert domain.Certificate
	err := v.DB.WithContext(ctx).
		Preload("Residues", func(db *gorm.DB) *gorm.DB {
			return db.Order("residue_name").Order("id")
		}).
		Preload("Collections", func(db *gorm.DB) *gorm.DB {
			return db.Unscoped().Order("collected_at").Order("code")
		}).
		Where("code = ?", code).
		First(&cert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.ValidatorLookups.WithLabelValues(ResultUnknown).Inc()
			return nil, ErrInvalidCode
		}
		metrics.ValidatorLookups.WithLabelValues(ResultError).Inc()
		return nil, err
	}
	if cert.State != domain.StateActive {
		metrics.ValidatorLookups.WithLabelValues(ResultNotActive).Inc()
		return nil, ErrInvalidCode
	}

	metrics.ValidatorLookups.WithLabelValues(ResultValid).Inc()
	return v.project(&cert), nil
}

func (v *Validator) project(cert *domain.Certificate) *Projection {
	p := &Projection{
		Code:            cert.Code,
		PeriodStart:     cert.PeriodStart,
		PeriodEnd:       cert.PeriodEnd,
		TotalQuantity:   cert.TotalQuantity,
		TotalValue:      cert.TotalValue,
		Lines:           make([]Line, 0, len(cert.Residues)),
		Collections:     make([]Collection, 0, len(cert.Collections)),
		EntityName:      cert.EntityName,
		EntityTaxID:     cert.EntityTaxID,
		IssuedAt:        cert.CreatedAt,
		VerificationURL: v.VerificationURL(cert.Code),
	}
	for _, r := range cert.Residues {
		p.Lines = append(p.Lines, Line{ResidueName: r.ResidueName, Unit: r.Unit, Quantity: r.Quantity, Value: r.Value})
	}
	for _, c := range cert.Collections {
		p.Collections = append(p.Collections, Collection{Code: c.Code, CollectedAt: c.CollectedAt})
	}
	return p
}

// VerificationURL is the public page a QR code on the printed certificate points at.
func (v *Validator) VerificationURL(code string) string {
	if v.BaseURL == "" {
		return ""
	}
	return strings.TrimRight(v.BaseURL, "/") + "/validate/" + url.PathEscape(code)
}
