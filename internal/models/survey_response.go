package models

import "sort"

// SurveyResponse is one respondent's answer for the current cycle.
// JSON names match the archived record layout so old archives stay readable.
type SurveyResponse struct {
	RespondentID    string            `json:"UserId"`
	RespondentEmail string            `json:"PersonEmail"`
	MessageID       string            `json:"MessageId"`
	SubmissionID    string            `json:"AttachmentId"`
	Answers         map[string]string `json:"Answers"`
	RoomID          string            `json:"RoomId"`
	CreatedTime     string            `json:"CreatedTime"`
}

// AnswerKeys returns the question slot labels in card order.
func (r SurveyResponse) AnswerKeys() []string {
	keys := make([]string, 0, len(r.Answers))
	for k := range r.Answers {
		keys = append(keys, k)
	}
	SortAnswerKeys(keys)
	return keys
}

// SortAnswerKeys orders slot labels by length then lexically, so q2 precedes q10.
func SortAnswerKeys(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i] < keys[j]
	})
}

// Emails returns the respondent emails of the given responses, in order.
func Emails(responses []SurveyResponse) []string {
	out := make([]string, 0, len(responses))
	for _, r := range responses {
		out = append(out, r.RespondentEmail)
	}
	return out
}
