package survey

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/anpi-survey/backend/internal/models"
	"github.com/anpi-survey/backend/pkg/response"
)

// Handler serves POST /webhooks/survey.
type Handler struct {
	ingester *Ingester
	logger   *zap.Logger
}

// NewHandler creates a submission webhook handler.
func NewHandler(ingester *Ingester, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{ingester: ingester, logger: logger}
}

// Submit handles POST /webhooks/survey and returns the stored record.
func (h *Handler) Submit(c *gin.Context) {
	var ev models.WebhookEnvelope
	if err := c.ShouldBindJSON(&ev); err != nil {
		h.logger.Error("invalid submission event", zap.Error(err))
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	r, err := h.ingester.Ingest(c.Request.Context(), ev)
	switch {
	case errors.Is(err, ErrMalformedSubmission):
		h.logger.Error("invalid submission event", zap.Error(err))
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrNoEmail):
		h.logger.Error("submission without email", zap.String("person_id", ev.Data.PersonID))
		response.BadRequest(c, err.Error())
	case err != nil:
		h.logger.Error("ingest submission failed", zap.Error(err))
		response.Internal(c, "failed to store response")
	default:
		response.OK(c, r)
	}
}
