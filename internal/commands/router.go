// Package commands answers admin direct messages (help, list, check).
package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/anpi-survey/backend/internal/metrics"
	"github.com/anpi-survey/backend/internal/models"
	"github.com/anpi-survey/backend/internal/responses"
)

// Command words. Matching is exact and case sensitive.
const (
	CommandHelp  = "help"
	CommandList  = "list"
	CommandCheck = "check"
)

// HelpMessage is the reply to help and to any unrecognized text.
const HelpMessage = "Enter \"check\" to get a list of users who have not reported their safety.  \n" +
	"Enter \"list\" to see all the answers"

// Digests renders per-organization reports.
type Digests interface {
	CheckDigest(ctx context.Context, org models.Organization, responses []models.SurveyResponse) string
	ListDigest(ctx context.Context, org models.Organization, responses []models.SurveyResponse) string
}

// Router maps a command from an admin to the messages to send back.
type Router struct {
	store         responses.Store
	digests       Digests
	substituteURL string
	logger        *zap.Logger
}

// NewRouter creates a router. substituteURL is the delegate submission link
// appended after list and check reports.
func NewRouter(store responses.Store, digests Digests, substituteURL string, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{store: store, digests: digests, substituteURL: substituteURL, logger: logger}
}

// SubstituteNotice is the trailing message of list and check replies.
func (r *Router) SubstituteNotice() string {
	if r.substituteURL == "" {
		return "Substitute application: ask an administrator to submit on your behalf"
	}
	return fmt.Sprintf("Substitute application: %s", r.substituteURL)
}

// Route returns the replies for text sent by senderEmail. A sender who administers no
// organization gets nothing. Unknown text is answered with the help message.
func (r *Router) Route(ctx context.Context, text, senderEmail string, orgs []models.Organization) ([]models.OutboundMessage, error) {
	targets := models.OrganizationsAdministeredBy(orgs, senderEmail)
	if len(targets) == 0 {
		r.logger.Info("sender administers no organization", zap.String("email", senderEmail))
		return nil, nil
	}

	switch text {
	case CommandList, CommandCheck:
		metrics.Commands.WithLabelValues(text).Inc()
		snapshot, err := r.store.Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("read responses: %w", err)
		}
		out := make([]models.OutboundMessage, 0, len(targets)+1)
		for _, org := range targets {
			var body string
			if text == CommandList {
				body = r.digests.ListDigest(ctx, org, snapshot)
			} else {
				body = r.digests.CheckDigest(ctx, org, snapshot)
			}
			r.logger.Debug("digest built", zap.String("org", org.Name), zap.Int("bytes", len(body)))
			out = append(out, models.OutboundMessage{ToPersonEmail: senderEmail, Markdown: body})
		}
		out = append(out, models.OutboundMessage{ToPersonEmail: senderEmail, Markdown: r.SubstituteNotice()})
		return out, nil
	default:
		metrics.Commands.WithLabelValues(CommandHelp).Inc()
		return []models.OutboundMessage{{ToPersonEmail: senderEmail, Markdown: HelpMessage}}, nil
	}
}
