package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/anpi-survey/backend/internal/models"
	"github.com/anpi-survey/backend/internal/notify"
	"github.com/anpi-survey/backend/internal/roster"
	"github.com/anpi-survey/backend/internal/webex"
	"github.com/anpi-survey/backend/pkg/response"
)

// ErrMalformedEvent is returned for a message webhook without message id or sender.
var ErrMalformedEvent = errors.New("message event is missing data.id or data.personEmail")

// MessageReader fetches the text of a direct message.
type MessageReader interface {
	GetMessage(ctx context.Context, id string) (*webex.Message, error)
}

// Handler serves POST /webhooks/check.
type Handler struct {
	router     *Router
	messages   MessageReader
	dispatcher *notify.Dispatcher
	roster     roster.Source
	botEmail   string
	logger     *zap.Logger
}

// NewHandler creates a command webhook handler. botEmail is the bot's own address;
// messages it authored are ignored.
func NewHandler(router *Router, messages MessageReader, dispatcher *notify.Dispatcher, src roster.Source, botEmail string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		router:     router,
		messages:   messages,
		dispatcher: dispatcher,
		roster:     src,
		botEmail:   botEmail,
		logger:     logger,
	}
}

// Handle answers one inbound message event. It returns nil results when the sender
// is the bot or administers no organization.
func (h *Handler) Handle(ctx context.Context, env models.WebhookEnvelope) ([]notify.Result, error) {
	if env.Data.ID == "" || env.Data.PersonEmail == "" {
		return nil, ErrMalformedEvent
	}
	sender := env.Data.PersonEmail
	if h.botEmail != "" && sender == h.botEmail {
		return nil, nil
	}

	orgs, err := h.roster.LoadOrganizations()
	if err != nil {
		return nil, fmt.Errorf("load organizations: %w", err)
	}
	if len(models.OrganizationsAdministeredBy(orgs, sender)) == 0 {
		h.logger.Info("message from non-admin ignored", zap.String("email", sender))
		return nil, nil
	}

	msg, err := h.messages.GetMessage(ctx, env.Data.ID)
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", env.Data.ID, err)
	}

	out, err := h.router.Route(ctx, msg.Text, sender, orgs)
	if err != nil {
		return nil, err
	}
	return h.dispatcher.Broadcast(ctx, out), nil
}

// Check handles POST /webhooks/check.
func (h *Handler) Check(c *gin.Context) {
	var env models.WebhookEnvelope
	if err := c.ShouldBindJSON(&env); err != nil {
		h.logger.Error("invalid message event", zap.Error(err))
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	results, err := h.Handle(c.Request.Context(), env)
	if err != nil {
		if errors.Is(err, ErrMalformedEvent) {
			h.logger.Error("invalid message event", zap.Error(err))
			response.BadRequest(c, err.Error())
			return
		}
		h.logger.Error("command failed", zap.Error(err))
		response.Internal(c, "failed to process command")
		return
	}
	if results == nil {
		response.Empty(c)
		return
	}
	response.List(c, notify.Succeeded(results))
}
