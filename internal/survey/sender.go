package survey

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/anpi-survey/backend/internal/models"
	"github.com/anpi-survey/backend/internal/notify"
	"github.com/anpi-survey/backend/internal/roster"
)

// Sender delivers the survey card to organization users.
type Sender struct {
	dispatcher *notify.Dispatcher
	roster     roster.Source
	loc        *time.Location
	logger     *zap.Logger
}

// NewSender creates a card sender. loc is the zone of the card's date line.
func NewSender(dispatcher *notify.Dispatcher, src roster.Source, loc *time.Location, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Sender{dispatcher: dispatcher, roster: src, loc: loc, logger: logger}
}

// Broadcast sends the card dated now to every user of every organization, once per
// address, in roster order. One failed recipient does not stop the rest.
func (s *Sender) Broadcast(ctx context.Context, now time.Time) ([]notify.Result, error) {
	orgs, def, err := s.load()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var emails []string
	for _, o := range orgs {
		for _, u := range o.Users {
			if !seen[u] {
				seen[u] = true
				emails = append(emails, u)
			}
		}
	}
	s.logger.Info("broadcasting survey card", zap.Int("organizations", len(orgs)), zap.Int("recipients", len(emails)))
	results := s.dispatcher.BroadcastCard(ctx, emails, def.Title, BuildCard(def, now.In(s.loc)))
	if failed := notify.Failed(results); len(failed) > 0 {
		s.logger.Warn("survey card not delivered to some users", zap.Int("failed", len(failed)))
	}
	return results, nil
}

// Resend sends the card to one address. Addresses outside every organization are
// ignored and a nil result is returned.
func (s *Sender) Resend(ctx context.Context, email string, now time.Time) (*notify.Result, error) {
	orgs, def, err := s.load()
	if err != nil {
		return nil, err
	}
	if !models.IsMember(orgs, email) {
		s.logger.Info("address does not belong to any organization", zap.String("email", email))
		return nil, nil
	}
	res := s.dispatcher.SendCard(ctx, email, def.Title, BuildCard(def, now.In(s.loc)))
	return &res, nil
}

func (s *Sender) load() ([]models.Organization, models.SurveyDefinition, error) {
	orgs, err := s.roster.LoadOrganizations()
	if err != nil {
		return nil, models.SurveyDefinition{}, fmt.Errorf("load organizations: %w", err)
	}
	def, err := s.roster.LoadSurveyDefinition()
	if err != nil {
		return nil, models.SurveyDefinition{}, fmt.Errorf("load survey definition: %w", err)
	}
	return orgs, def, nil
}
