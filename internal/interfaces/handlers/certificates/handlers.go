package certificates

import (
	"errors"
	"strconv"

	certsvc "wastecert-backend/internal/application/certificates"
	"wastecert-backend/internal/application/consolidation"
	"wastecert-backend/internal/application/eligibility"
	"wastecert-backend/internal/domain"
	"wastecert-backend/internal/middleware"
	"wastecert-backend/internal/pkg/response"
	"wastecert-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Selector  *eligibility.Selector
	Previewer *consolidation.Service
	Issuer    *certsvc.Issuer
	Revoker   *certsvc.Revoker
	Service   *certsvc.Service
}

type selectionBody struct {
	CollectionIDs []string `json:"collection_ids"`
	Note          string   `json:"note"`
}

type certificateBody struct {
	CertificateID string `json:"certificate_id"`
	Reason        string `json:"reason"`
}

type previewResponse struct {
	*consolidation.Preview
	ValueDivergence decimal.Decimal `json:"value_divergence"`
}

// GET /api/v1/certificates/eligible?from=&to=&entity_id=&q=&limit=
func (h *Handlers) Eligible(c *fiber.Ctx) error {
	req, ok := middleware.CurrentRequester(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	from, err := validation.ParseDate(c.Query("from"), false)
	if err != nil {
		return response.Error(c, "Invalid from date: "+err.Error(), fiber.StatusBadRequest, nil)
	}
	to, err := validation.ParseDate(c.Query("to"), true)
	if err != nil {
		return response.Error(c, "Invalid to date: "+err.Error(), fiber.StatusBadRequest, nil)
	}
	f := eligibility.Filter{From: from, To: to, Search: c.Query("q")}
	if s := c.Query("entity_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return response.Error(c, "Invalid entity_id format", fiber.StatusBadRequest, nil)
		}
		f.EntityID = &id
	}
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return response.Error(c, "Invalid limit", fiber.StatusBadRequest, nil)
		}
		f.Limit = n
	}

	rows, err := h.Selector.ListEligible(c.UserContext(), req, f)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Eligible collections fetched successfully", rows, fiber.Map{"count": len(rows)})
}

// POST /api/v1/certificates/preview
func (h *Handlers) Preview(c *fiber.Ctx) error {
	req, ok := middleware.CurrentRequester(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	sel, err := parseSelection(c)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	p, err := h.Previewer.Preview(c.UserContext(), req, sel.ids)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Preview generated successfully", previewResponse{Preview: p, ValueDivergence: p.ValueDivergence()}, nil)
}

// POST /api/v1/certificates/issue, 201 with the new certificate id and code.
func (h *Handlers) Issue(c *fiber.Ctx) error {
	req, ok := middleware.CurrentRequester(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	sel, err := parseSelection(c)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	res, err := h.Issuer.Issue(c.UserContext(), certsvc.IssueRequest{
		Requester:     req,
		CollectionIDs: sel.ids,
		Note:          sel.note,
	})
	if err != nil {
		return writeError(c, err)
	}
	return response.SuccessCreated(c, "Certificate issued successfully", res, nil)
}

// POST /api/v1/certificates/revoke
func (h *Handlers) Revoke(c *fiber.Ctx) error {
	req, ok := middleware.CurrentRequester(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var body certificateBody
	if err := c.BodyParser(&body); err != nil || body.CertificateID == "" {
		return response.Error(c, "certificate_id is required", fiber.StatusBadRequest, nil)
	}
	certID, err := uuid.Parse(body.CertificateID)
	if err != nil {
		return response.Error(c, "Invalid certificate_id format", fiber.StatusBadRequest, nil)
	}
	res, err := h.Revoker.Revoke(c.UserContext(), certsvc.RevokeRequest{
		Requester:     req,
		CertificateID: certID,
		Reason:        body.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}
	msg := "Certificate revoked successfully"
	if res.AlreadyRevoked {
		msg = "Certificate was already revoked"
	}
	return response.Success(c, msg, res, nil)
}

// GET /api/v1/certificates/view-entity?entity_id=&state=&limit=
func (h *Handlers) ViewEntity(c *fiber.Ctx) error {
	req, ok := middleware.CurrentRequester(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	f := certsvc.ListFilter{}
	if s := c.Query("entity_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return response.Error(c, "Invalid entity_id format", fiber.StatusBadRequest, nil)
		}
		f.EntityID = &id
	}
	if s := c.Query("state"); s != "" {
		st := domain.LifecycleState(s)
		if !st.Valid() {
			return response.Error(c, "Invalid state", fiber.StatusBadRequest, nil)
		}
		f.State = st
	}
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return response.Error(c, "Invalid limit", fiber.StatusBadRequest, nil)
		}
		f.Limit = n
	}
	certs, err := h.Service.ViewEntity(c.UserContext(), req, f)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Certificates fetched successfully", certs, fiber.Map{"count": len(certs)})
}

// POST /api/v1/certificates/view-one
func (h *Handlers) ViewOne(c *fiber.Ctx) error {
	req, ok := middleware.CurrentRequester(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var body certificateBody
	if err := c.BodyParser(&body); err != nil || body.CertificateID == "" {
		return response.Error(c, "certificate_id is required", fiber.StatusBadRequest, nil)
	}
	certID, err := uuid.Parse(body.CertificateID)
	if err != nil {
		return response.Error(c, "Invalid certificate_id format", fiber.StatusBadRequest, nil)
	}
	cert, err := h.Service.ViewOne(c.UserContext(), req, certID)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Certificate fetched successfully", cert, nil)
}

// GET /api/v1/certificates/logs/:certificate_id
func (h *Handlers) Logs(c *fiber.Ctx) error {
	req, ok := middleware.CurrentRequester(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	certID, err := uuid.Parse(c.Params("certificate_id"))
	if err != nil {
		return response.Error(c, "Invalid certificate_id format", fiber.StatusBadRequest, nil)
	}
	logs, err := h.Service.Logs(c.UserContext(), req, certID)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Certificate logs fetched successfully", logs, nil)
}

type selection struct {
	ids  []uuid.UUID
	note string
}

func parseSelection(c *fiber.Ctx) (*selection, error) {
	var body selectionBody
	if err := c.BodyParser(&body); err != nil {
		return nil, errors.New("Invalid request body")
	}
	if len(body.CollectionIDs) == 0 {
		return nil, errors.New("collection_ids is required")
	}
	ids, err := validation.ParseUUIDList(body.CollectionIDs)
	if err != nil {
		return nil, err
	}
	return &selection{ids: ids, note: body.Note}, nil
}

// writeError maps service errors to status codes. Integrity is checked first because an
// IssuanceIntegrityError also unwraps to its cause.
func writeError(c *fiber.Ctx, err error) error {
	var ie *certsvc.IssuanceIntegrityError
	var pe *certsvc.PersistenceError
	switch {
	case errors.As(err, &ie):
		return response.Error(c, "Certificate issuance failed and needs manual reconciliation", fiber.StatusInternalServerError, fiber.Map{
			"certificate_id": ie.CertificateID,
			"trace_id":       middleware.GetTraceID(c),
		})
	case certsvc.IsValidation(err):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case certsvc.IsConflict(err):
		return response.Error(c, err.Error(), fiber.StatusConflict, nil)
	case errors.Is(err, certsvc.ErrOutOfScope):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, certsvc.ErrCertificateNotFound):
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case errors.Is(err, certsvc.ErrCodeGeneration):
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	case errors.As(err, &pe):
		log.Warn().Str("trace_id", middleware.GetTraceID(c)).Str("op", pe.Op).Err(pe.Err).Msg("store unavailable")
		return response.Error(c, "Service temporarily unavailable, please retry", fiber.StatusServiceUnavailable, nil)
	}
	log.Error().Str("trace_id", middleware.GetTraceID(c)).Err(err).Msg("certificate request failed")
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}
