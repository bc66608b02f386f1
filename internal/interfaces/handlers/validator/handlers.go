package validator

import (
	"errors"

	"wastecert-backend/internal/application/validator"
	"wastecert-backend/internal/middleware"
	"wastecert-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// invalidMessage is the single body returned for every code that does not validate.
const invalidMessage = "Certificate code is not valid"

type Handlers struct {
	Validator *validator.Validator
}

// GET /api/v1/public/certificates/:code, no session.
func (h *Handlers) Lookup(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "no-store")
	p, err := h.Validator.Lookup(c.UserContext(), c.Params("code"))
	if err != nil {
		if errors.Is(err, validator.ErrInvalidCode) {
			return response.Error(c, invalidMessage, fiber.StatusNotFound, nil)
		}
		log.Warn().Str("trace_id", middleware.GetTraceID(c)).Err(err).Msg("validator lookup failed")
		return response.Error(c, "Service temporarily unavailable, please retry", fiber.StatusServiceUnavailable, nil)
	}
	return response.Success(c, "Certificate is valid", p, nil)
}
