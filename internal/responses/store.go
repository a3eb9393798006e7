// Package responses persists the live survey responses of the current cycle,
// one record per respondent email.
package responses

import (
	"context"
	"sort"

	"github.com/anpi-survey/backend/internal/models"
)

// Store is the live response table. Put is an upsert keyed by RespondentEmail.
type Store interface {
	Put(ctx context.Context, r models.SurveyResponse) error
	Scan(ctx context.Context) ([]models.SurveyResponse, error)
	DeleteMany(ctx context.Context, emails []string) error
}

func sortByEmail(list []models.SurveyResponse) {
	sort.Slice(list, func(i, j int) bool { return list[i].RespondentEmail < list[j].RespondentEmail })
}
