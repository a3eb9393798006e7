// Package status computes who has and has not answered, flags answers that need a
// follow-up and renders the digests admins receive.
package status

import (
	"sort"

	"github.com/anpi-survey/backend/internal/models"
)

// Result is the answered/unanswered split for one roster.
type Result struct {
	DoneEmails    []string `json:"doneEmails"`
	PendingEmails []string `json:"pendingEmails"`
}

// Diff returns the sorted distinct respondent emails and the sorted expected emails that
// have not responded. Respondents outside expected appear in DoneEmails only.
func Diff(expected []string, responses []models.SurveyResponse) Result {
	done := make(map[string]struct{}, len(responses))
	for _, r := range responses {
		done[r.RespondentEmail] = struct{}{}
	}
	pending := make(map[string]struct{})
	for _, e := range expected {
		if _, ok := done[e]; !ok {
			pending[e] = struct{}{}
		}
	}
	return Result{DoneEmails: sortedKeys(done), PendingEmails: sortedKeys(pending)}
}

// IsAnomalous reports whether any answer differs from normal.
func IsAnomalous(r models.SurveyResponse, normal string) bool {
	for _, v := range r.Answers {
		if v != normal {
			return true
		}
	}
	return false
}

// Anomalies returns the responses with at least one answer different from normal, in input order.
func Anomalies(responses []models.SurveyResponse, normal string) []models.SurveyResponse {
	var out []models.SurveyResponse
	for _, r := range responses {
		if IsAnomalous(r, normal) {
			out = append(out, r)
		}
	}
	return out
}

// FilterByUsers keeps the responses whose respondent is in users, in input order.
func FilterByUsers(responses []models.SurveyResponse, users []string) []models.SurveyResponse {
	set := make(map[string]struct{}, len(users))
	for _, u := range users {
		set[u] = struct{}{}
	}
	var out []models.SurveyResponse
	for _, r := range responses {
		if _, ok := set[r.RespondentEmail]; ok {
			out = append(out, r)
		}
	}
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
