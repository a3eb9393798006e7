// Package identity resolves respondent emails to chat display names.
package identity

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anpi-survey/backend/internal/metrics"
	"github.com/anpi-survey/backend/internal/webex"
)

// DefaultWorkers is the lookup pool width used when none is configured.
const DefaultWorkers = 10

// PeopleLister looks people up by email.
type PeopleLister interface {
	ListPeopleByEmail(ctx context.Context, email string) ([]webex.Person, error)
}

// Resolver maps emails to display names with a fixed-width pool of lookups.
type Resolver struct {
	people  PeopleLister
	workers int
	logger  *zap.Logger
}

// NewResolver creates a resolver. workers <= 0 uses DefaultWorkers.
func NewResolver(people PeopleLister, workers int, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Resolver{people: people, workers: workers, logger: logger}
}

// DisplayName returns the display name for email, or email itself when there is no match
// or the lookup fails.
func (r *Resolver) DisplayName(ctx context.Context, email string) string {
	start := time.Now()
	defer func() { metrics.NameLookupDuration.Observe(time.Since(start).Seconds()) }()

	people, err := r.people.ListPeopleByEmail(ctx, email)
	if err != nil {
		r.logger.Warn("display name lookup failed", zap.String("email", email), zap.Error(err))
		return email
	}
	if len(people) == 0 || people[0].DisplayName == "" {
		return email
	}
	return people[0].DisplayName
}

// DisplayNames resolves every email; out[i] is the name for emails[i].
func (r *Resolver) DisplayNames(ctx context.Context, emails []string) []string {
	out := make([]string, len(emails))
	if len(emails) == 0 {
		return out
	}
	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, email := range emails {
		i, email := i, email
		g.Go(func() error {
			out[i] = r.DisplayName(ctx, email)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
