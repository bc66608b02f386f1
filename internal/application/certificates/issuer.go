package certificates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wastecert-backend/internal/application/consolidation"
	"wastecert-backend/internal/application/eligibility"
	"wastecert-backend/internal/domain"
	"wastecert-backend/internal/infrastructure/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DefaultMaxCodeAttempts = 5
	compensationTimeout    = 15 * time.Second
)

// Issuance step names, reported in IssuanceIntegrityError.Step and logs.
const (
	StepValidate = "validate_selection"
	StepInsert   = "insert_certificate"
	StepResidues = "insert_residues"
	StepBind     = "bind_collections"
	StepLog      = "append_log"
)

// CodeGenerator mints validator codes.
type CodeGenerator interface {
	Generate() (string, error)
}

// Issuer creates certificates as a saga: every write after the certificate row is followed,
// on failure, by compensating deletes instead of relying on an enclosing transaction.
type Issuer struct {
	Store           Store
	Codes           CodeGenerator
	MaxCodeAttempts int
	Now             func() time.Time
}

type IssueRequest struct {
	Requester     domain.Requester
	CollectionIDs []uuid.UUID
	Note          string
}

type IssueResult struct {
	CertificateID   uuid.UUID       `json:"certificate_id"`
	Code            string          `json:"code"`
	CollectionCount int             `json:"collection_count"`
	TotalQuantity   decimal.Decimal `json:"total_quantity"`
	TotalValue      decimal.Decimal `json:"total_value"`
}

type stepOutcome int

const (
	stepOK stepOutcome = iota
	// nothing was written; the caller may retry the whole request
	stepRetryable
	// the certificate row exists and must be cleaned up
	stepNeedsCompensation
)

type stepResult struct {
	step    string
	outcome stepOutcome
	err     error
}

func done(step string) stepResult { return stepResult{step: step, outcome: stepOK} }

func compensateAfter(step string, err error) stepResult {
	return stepResult{step: step, outcome: stepNeedsCompensation, err: err}
}

// Issue validates the selection against current data and commits a certificate bound to it.
func (i *Issuer) Issue(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	start := time.Now()
	defer func() {
		metrics.IssueDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	preview, err := i.validate(ctx, req)
	if err != nil {
		metrics.IssuanceRejected.WithLabelValues(rejectionReason(err)).Inc()
		return nil, err
	}

	cert, res := i.insertCertificate(ctx, req, preview)
	if res.outcome != stepOK {
		metrics.IssuanceRejected.WithLabelValues(rejectionReason(res.err)).Inc()
		return nil, res.err
	}

	for _, step := range []func(context.Context, *domain.Certificate, *consolidation.Preview, IssueRequest) stepResult{
		i.insertResidues,
		i.bindCollections,
		i.appendIssuedLog,
	} {
		if res := step(ctx, cert, preview, req); res.outcome != stepOK {
			return nil, i.compensate(ctx, cert, res)
		}
	}

	metrics.CertificatesIssued.Inc()
	log.Info().
		Str("certificate_id", cert.ID.String()).
		Str("code", cert.Code).
		Str("entity_id", cert.EntityID.String()).
		Int("collections", cert.CollectionCount).
		Str("actor", req.Requester.Actor()).
		Msg("certificate issued")

	return &IssueResult{
		CertificateID:   cert.ID,
		Code:            cert.Code,
		CollectionCount: cert.CollectionCount,
		TotalQuantity:   cert.TotalQuantity,
		TotalValue:      cert.TotalValue,
	}, nil
}

// validate re-reads the selection so the preview the user saw cannot be committed stale.
func (i *Issuer) validate(ctx context.Context, req IssueRequest) (*consolidation.Preview, error) {
	ids := consolidation.DedupeIDs(req.CollectionIDs)
	if len(ids) == 0 {
		return nil, ErrEmptySelection
	}
	cols, err := i.Store.LoadSelection(ctx, ids)
	if err != nil {
		return nil, persistence(StepValidate, err)
	}
	if len(cols) != len(ids) {
		return nil, ErrUnknownCollection
	}
	preview, err := consolidation.Consolidate(cols)
	if err != nil {
		return nil, err
	}
	if err := eligibility.CheckSelection(req.Requester, cols); err != nil {
		return nil, err
	}
	return preview, nil
}

func (i *Issuer) insertCertificate(ctx context.Context, req IssueRequest, p *consolidation.Preview) (*domain.Certificate, stepResult) {
	attempts := i.MaxCodeAttempts
	if attempts <= 0 {
		attempts = DefaultMaxCodeAttempts
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		code, err := i.Codes.Generate()
		if err != nil {
			return nil, stepResult{step: StepInsert, outcome: stepRetryable, err: fmt.Errorf("%w: %v", ErrCodeGeneration, err)}
		}
		cert := &domain.Certificate{
			ID:                uuid.New(),
			Code:              code,
			PeriodStart:       p.PeriodStart,
			PeriodEnd:         p.PeriodEnd,
			TotalQuantity:     p.TotalQuantity,
			TotalValue:        p.TotalValue,
			ResidueValueTotal: p.ResidueValueTotal,
			EntityID:          p.EntityID,
			EntityName:        p.EntityName,
			EntityTaxID:       p.EntityTaxID,
			CollectionCount:   len(p.CollectionIDs),
			CreatedBy:         req.Requester.Actor(),
			State:             domain.StateActive,
			CreatedAt:         i.now(),
		}
		err = i.Store.CreateCertificate(ctx, cert)
		if err == nil {
			return cert, done(StepInsert)
		}

		holder, lookupErr := i.Store.CertificateIDByCode(ctx, code)
		switch {
		case lookupErr == nil && holder == cert.ID:
			// The insert landed even though the store reported an error.
			return cert, done(StepInsert)
		case errors.Is(err, gorm.ErrDuplicatedKey) || (lookupErr == nil && holder != uuid.Nil):
			metrics.CodeCollisions.Inc()
			log.Warn().Int("attempt", attempt).Msg("validator code collision, regenerating")
			continue
		}
		return nil, stepResult{step: StepInsert, outcome: stepRetryable, err: persistence(StepInsert, err)}
	}
	return nil, stepResult{step: StepInsert, outcome: stepRetryable, err: ErrCodeGeneration}
}

func (i *Issuer) insertResidues(ctx context.Context, cert *domain.Certificate, p *consolidation.Preview, _ IssueRequest) stepResult {
	lines := make([]domain.CertificateResidue, 0, len(p.Lines))
	for _, l := range p.Lines {
		lines = append(lines, domain.CertificateResidue{
			CertificateID: cert.ID,
			ResidueTypeID: l.ResidueTypeID,
			ResidueName:   l.ResidueName,
			Unit:          l.Unit,
			Quantity:      l.Quantity,
			Value:         l.Value,
		})
	}
	if err := i.Store.CreateResidues(ctx, lines); err != nil {
		return compensateAfter(StepResidues, persistence(StepResidues, err))
	}
	return done(StepResidues)
}

// bindCollections is the conditional bind: a collection taken by a concurrent issuance since
// validation is not overwritten, and the short row count aborts this issuance instead.
func (i *Issuer) bindCollections(ctx context.Context, cert *domain.Certificate, p *consolidation.Preview, _ IssueRequest) stepResult {
	n, err := i.Store.BindCollections(ctx, cert.ID, p.CollectionIDs)
	if err != nil {
		return compensateAfter(StepBind, persistence(StepBind, err))
	}
	if n != int64(len(p.CollectionIDs)) {
		return compensateAfter(StepBind, ErrStaleSelection)
	}
	return done(StepBind)
}

func (i *Issuer) appendIssuedLog(ctx context.Context, cert *domain.Certificate, p *consolidation.Preview, req IssueRequest) stepResult {
	ids := make([]string, 0, len(p.CollectionIDs))
	for _, id := range p.CollectionIDs {
		ids = append(ids, id.String())
	}
	details, err := json.Marshal(map[string]interface{}{
		"code":                cert.Code,
		"collection_ids":      ids,
		"residue_lines":       len(p.Lines),
		"total_quantity":      p.TotalQuantity.String(),
		"total_value":         p.TotalValue.String(),
		"residue_value_total": p.ResidueValueTotal.String(),
	})
	if err != nil {
		return compensateAfter(StepLog, err)
	}
	entry := &domain.CertificateLog{
		CertificateID: cert.ID,
		Action:        domain.LogActionIssued,
		Actor:         req.Requester.Actor(),
		Note:          issuedNote(req.Note, len(p.CollectionIDs), p.TotalQuantity),
		Details:       datatypes.JSON(details),
	}
	if err := i.Store.AppendLog(ctx, entry); err != nil {
		return compensateAfter(StepLog, persistence(StepLog, err))
	}
	return done(StepLog)
}

// compensate undoes a partially written issuance. It runs detached from the request context
// so a cancelled request still gets cleaned up.
func (i *Issuer) compensate(ctx context.Context, cert *domain.Certificate, failed stepResult) error {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	// Withdraw first: whatever cleanup fails below leaves a row the validator rejects.
	deactivateErr := i.Store.DeactivateCertificate(cctx, cert.ID)

	var errs []error
	if _, err := i.Store.UnbindCollections(cctx, cert.ID); err != nil {
		errs = append(errs, fmt.Errorf("unbind collections: %w", err))
	}
	if err := i.Store.DeleteResidues(cctx, cert.ID); err != nil {
		errs = append(errs, fmt.Errorf("delete residues: %w", err))
	}
	// The certificate row goes last and only when nothing can still point at it.
	if len(errs) == 0 {
		if err := i.Store.DeleteCertificate(cctx, cert.ID); err != nil {
			errs = append(errs, fmt.Errorf("delete certificate: %w", err))
		}
	}
	if len(errs) > 0 && deactivateErr != nil {
		errs = append(errs, fmt.Errorf("deactivate certificate: %w", deactivateErr))
	}

	if len(errs) == 0 {
		metrics.IssuanceRejected.WithLabelValues(rejectionReason(failed.err)).Inc()
		log.Warn().
			Str("certificate_id", cert.ID.String()).
			Str("step", failed.step).
			Err(failed.err).
			Msg("issuance rolled back")
		return failed.err
	}

	ie := &IssuanceIntegrityError{
		CertificateID:   cert.ID,
		Code:            cert.Code,
		Step:            failed.step,
		Cause:           failed.err,
		CompensationErr: errors.Join(errs...),
	}
	metrics.IntegrityFailures.Inc()
	metrics.IssuanceRejected.WithLabelValues(metrics.ReasonIntegrity).Inc()
	log.Error().
		Str("certificate_id", cert.ID.String()).
		Str("code", cert.Code).
		Str("step", failed.step).
		Bool("withdrawn", deactivateErr == nil).
		AnErr("cause", failed.err).
		AnErr("compensation_error", ie.CompensationErr).
		Msg("issuance compensation failed, manual reconciliation required")

	details, _ := json.Marshal(map[string]interface{}{
		"step":               failed.step,
		"cause":              fmt.Sprint(failed.err),
		"compensation_error": ie.CompensationErr.Error(),
		"withdrawn":          deactivateErr == nil,
	})
	if err := i.Store.AppendLog(cctx, &domain.CertificateLog{
		CertificateID: cert.ID,
		Action:        domain.LogActionIntegrityFailure,
		Actor:         "system",
		Note:          "issuance left partially written",
		Details:       datatypes.JSON(details),
	}); err != nil {
		log.Error().Str("certificate_id", cert.ID.String()).Err(err).Msg("could not record integrity failure")
	}
	return ie
}

func (i *Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

func issuedNote(note string, collections int, qty decimal.Decimal) string {
	summary := fmt.Sprintf("%d collection(s), %s total quantity", collections, qty.String())
	if note == "" {
		return summary
	}
	return note + " (" + summary + ")"
}

func rejectionReason(err error) string {
	switch {
	case IsValidation(err):
		return metrics.ReasonValidation
	case errors.Is(err, ErrStaleSelection):
		return metrics.ReasonStale
	case errors.Is(err, ErrOutOfScope):
		return metrics.ReasonScope
	case errors.Is(err, ErrCodeGeneration):
		return metrics.ReasonCode
	}
	return metrics.ReasonPersistence
}
