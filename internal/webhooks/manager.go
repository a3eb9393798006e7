// Package webhooks keeps the bot's Webex webhook registrations in their canonical shape.
package webhooks

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/anpi-survey/backend/internal/models"
	"github.com/anpi-survey/backend/internal/webex"
)

// Subscription names shown in the Webex developer portal.
const (
	NameSubmission = "Health Survey Webhook: Attachment action created"
	NameMessage    = "Health Survey Webhook: Message created"
)

// API is the part of the Webex client used for webhook management.
type API interface {
	ListWebhooks(ctx context.Context) ([]models.WebhookSubscription, error)
	CreateWebhook(ctx context.Context, req webex.CreateWebhookRequest) (*models.WebhookSubscription, error)
	DeleteWebhook(ctx context.Context, id string) error
}

// Targets are the inbound URLs of the two subscriptions.
type Targets struct {
	SubmissionURL string
	MessageURL    string
}

// Manager reconciles webhook registrations.
type Manager struct {
	api    API
	secret string
	logger *zap.Logger
}

// NewManager creates a manager. secret is set on created subscriptions; empty means unsigned.
func NewManager(api API, secret string, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{api: api, secret: secret, logger: logger}
}

// Reconcile deletes every registered webhook and, unless deleteOnly, creates the submission
// and message subscriptions. Event delivery is off between the delete and the create.
// The first API error aborts.
func (m *Manager) Reconcile(ctx context.Context, t Targets, deleteOnly bool) ([]models.WebhookSubscription, error) {
	if !deleteOnly && (t.SubmissionURL == "" || t.MessageURL == "") {
		return nil, fmt.Errorf("webhook target urls required")
	}

	existing, err := m.api.ListWebhooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list webhooks: %w", err)
	}
	m.logger.Info("registered webhooks", zap.Int("count", len(existing)))
	for _, w := range existing {
		if err := m.api.DeleteWebhook(ctx, w.ID); err != nil {
			return nil, fmt.Errorf("delete webhook %s: %w", w.ID, err)
		}
		m.logger.Info("webhook deleted", zap.String("id", w.ID), zap.String("resource", w.Resource), zap.String("target_url", w.TargetURL))
	}
	if deleteOnly {
		return []models.WebhookSubscription{}, nil
	}

	wanted := []webex.CreateWebhookRequest{
		{Name: NameSubmission, TargetURL: t.SubmissionURL, Resource: models.ResourceAttachmentActions, Event: models.EventCreated, Secret: m.secret},
		{Name: NameMessage, TargetURL: t.MessageURL, Resource: models.ResourceMessages, Event: models.EventCreated, Secret: m.secret},
	}
	created := make([]models.WebhookSubscription, 0, len(wanted))
	for _, req := range wanted {
		w, err := m.api.CreateWebhook(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("create %s webhook: %w", req.Resource, err)
		}
		m.logger.Info("webhook registered", zap.String("id", w.ID), zap.String("resource", w.Resource), zap.String("target_url", w.TargetURL))
		created = append(created, *w)
	}
	return created, nil
}
