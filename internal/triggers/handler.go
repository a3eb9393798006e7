// Package triggers accepts scheduler events and operator requests and turns them into
// queued jobs or direct webhook maintenance.
package triggers

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/anpi-survey/backend/internal/middleware"
	"github.com/anpi-survey/backend/internal/models"
	"github.com/anpi-survey/backend/internal/webhooks"
	"github.com/anpi-survey/backend/pkg/queue"
	"github.com/anpi-survey/backend/pkg/response"
)

// Enqueuer queues a job and returns its id.
type Enqueuer interface {
	Enqueue(ctx context.Context, jobType queue.JobType, payload interface{}) (string, error)
}

// Reconciler replaces the webhook subscriptions.
type Reconciler interface {
	Reconcile(ctx context.Context, t webhooks.Targets, deleteOnly bool) ([]models.WebhookSubscription, error)
}

// Handler serves /events/scheduled and the /admin routes.
type Handler struct {
	jobs       Enqueuer
	reconciler Reconciler
	targets    webhooks.Targets
	source     string
	logger     *zap.Logger
}

// NewHandler creates a trigger handler. source is the value scheduled events must carry.
func NewHandler(jobs Enqueuer, reconciler Reconciler, targets webhooks.Targets, source string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{jobs: jobs, reconciler: reconciler, targets: targets, source: source, logger: logger}
}

// JobAccepted is the body of a 202 reply.
type JobAccepted struct {
	JobID string        `json:"job_id"`
	Type  queue.JobType `json:"type"`
}

// Scheduled handles POST /events/scheduled.
func (h *Handler) Scheduled(c *gin.Context) {
	var ev models.ScheduledEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if ev.Source != h.source {
		h.logger.Warn("scheduled event from unexpected source", zap.String("source", ev.Source))
		response.BadRequest(c, "unexpected event source")
		return
	}

	jobName := ev.Job
	if jobName == "" {
		jobName = string(queue.JobTypeDailyCycle)
	}
	jobType, err := queue.ParseJobType(jobName)
	if err != nil || jobType == queue.JobTypeResend {
		response.BadRequest(c, "unknown job "+jobName)
		return
	}
	at, err := ParseEventTime(ev.Time)
	if err != nil {
		response.BadRequest(c, "invalid time: "+err.Error())
		return
	}

	h.enqueue(c, jobType, queue.SchedulePayload{At: at})
}

// Resend handles POST /admin/resend.
func (h *Handler) Resend(c *gin.Context) {
	var ev models.ManualEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	h.logger.Info("resend requested", zap.String("email", ev.Email), zap.String("operator", c.GetString(middleware.ContextOperator)))
	h.enqueue(c, queue.JobTypeResend, queue.ResendPayload{Email: ev.Email})
}

// ReconcileRequest is the optional body of POST /admin/webhooks/reconcile.
type ReconcileRequest struct {
	DeleteOnly bool `json:"delete_only"`
}

// Reconcile handles POST /admin/webhooks/reconcile.
func (h *Handler) Reconcile(c *gin.Context) {
	var req ReconcileRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request: "+err.Error())
			return
		}
	}
	subs, err := h.reconciler.Reconcile(c.Request.Context(), h.targets, req.DeleteOnly)
	if err != nil {
		h.logger.Error("webhook reconcile failed", zap.Error(err))
		response.Internal(c, "failed to reconcile webhooks")
		return
	}
	h.logger.Info("webhooks reconciled", zap.Int("count", len(subs)), zap.String("operator", c.GetString(middleware.ContextOperator)))
	response.List(c, subs)
}

func (h *Handler) enqueue(c *gin.Context, jobType queue.JobType, payload interface{}) {
	id, err := h.jobs.Enqueue(c.Request.Context(), jobType, payload)
	if err != nil {
		h.logger.Error("enqueue failed", zap.String("type", string(jobType)), zap.Error(err))
		response.ServiceUnavailable(c, "job queue unavailable")
		return
	}
	response.Accepted(c, JobAccepted{JobID: id, Type: jobType})
}

// ParseEventTime parses a scheduler timestamp such as "2024-03-01T00:00:00Z".
// An empty value means now.
func ParseEventTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Now(), nil
	}
	return time.Parse(time.RFC3339, s)
}
