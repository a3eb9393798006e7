package status

import (
	"context"
	"time"

	"github.com/anpi-survey/backend/internal/models"
)

// NameResolver maps emails to display names, out[i] for emails[i].
type NameResolver interface {
	DisplayNames(ctx context.Context, emails []string) []string
}

// Aggregator builds per-organization digests from a snapshot of live responses.
type Aggregator struct {
	names  NameResolver
	def    models.SurveyDefinition
	normal string
}

// NewAggregator creates an aggregator. normal is the answer value meaning "no issue".
func NewAggregator(names NameResolver, def models.SurveyDefinition, normal string) *Aggregator {
	return &Aggregator{names: names, def: def, normal: normal}
}

// Normal returns the all-clear answer value.
func (a *Aggregator) Normal() string { return a.normal }

// CheckDigest renders the pending and anomaly report for org.
func (a *Aggregator) CheckDigest(ctx context.Context, org models.Organization, responses []models.SurveyResponse) string {
	mine := FilterByUsers(responses, org.Users)
	diff := Diff(org.Users, mine)
	flagged := Anomalies(mine, a.normal)

	// one lookup batch for both the pending list and the callouts
	emails := append(append([]string{}, diff.PendingEmails...), models.Emails(flagged)...)
	names := a.names.DisplayNames(ctx, emails)

	d := Digest{
		OrgName:      org.Name,
		PendingNames: names[:len(diff.PendingEmails)],
		Responded:    len(mine),
	}
	for i, r := range flagged {
		d.Callouts = append(d.Callouts, Callout{
			Name:    names[len(diff.PendingEmails)+i],
			Answers: FormatAnswers(a.def, r.Answers, a.normal),
		})
	}
	return FormatDigest(d)
}

// ListDigest renders every answer from org's users.
func (a *Aggregator) ListDigest(ctx context.Context, org models.Organization, responses []models.SurveyResponse) string {
	mine := FilterByUsers(responses, org.Users)
	if len(mine) == 0 {
		return FormatAnswerList(org.Name, nil)
	}
	names := a.names.DisplayNames(ctx, models.Emails(mine))
	entries := make([]Callout, 0, len(mine))
	for i, r := range mine {
		entries = append(entries, Callout{Name: names[i], Answers: FormatAnswers(a.def, r.Answers, a.normal)})
	}
	return FormatAnswerList(org.Name, entries)
}

// ScheduledDigest renders the timed pending report for org.
func (a *Aggregator) ScheduledDigest(ctx context.Context, org models.Organization, responses []models.SurveyResponse, at time.Time) string {
	diff := Diff(org.Users, responses)
	var names []string
	if len(diff.PendingEmails) > 0 {
		names = a.names.DisplayNames(ctx, diff.PendingEmails)
	}
	return FormatScheduledDigest(org.Name, names, at)
}
