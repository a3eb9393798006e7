// Package survey turns card submissions into stored responses and delivers the card
// to respondents.
package survey

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/anpi-survey/backend/internal/metrics"
	"github.com/anpi-survey/backend/internal/models"
	"github.com/anpi-survey/backend/internal/notify"
	"github.com/anpi-survey/backend/internal/responses"
	"github.com/anpi-survey/backend/internal/webex"
)

// AckMessage is sent to a respondent after their answer is stored.
const AckMessage = "The answer has been sent.  \nThank you for your cooperation."

var (
	// ErrNoEmail means the submitting person has no email on their profile.
	ErrNoEmail = errors.New("person has no email")
	// ErrMalformedSubmission means the event lacks data.id or data.personId.
	ErrMalformedSubmission = errors.New("submission event is missing data.id or data.personId")
)

// Platform is the chat API surface used during ingestion.
type Platform interface {
	GetAttachmentAction(ctx context.Context, id string) (*webex.AttachmentAction, error)
	GetPerson(ctx context.Context, id string) (*webex.Person, error)
	DeleteMessage(ctx context.Context, id string) error
}

// Ingester stores card submissions.
type Ingester struct {
	platform   Platform
	store      responses.Store
	dispatcher *notify.Dispatcher
	logger     *zap.Logger
}

// NewIngester creates an ingester.
func NewIngester(platform Platform, store responses.Store, dispatcher *notify.Dispatcher, logger *zap.Logger) *Ingester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingester{platform: platform, store: store, dispatcher: dispatcher, logger: logger}
}

// Ingest stores the answers of one submission, replacing any earlier answer from the
// same person. The card message is deleted and an acknowledgment sent only after the
// store write succeeds; failures of either are logged, not returned.
func (in *Ingester) Ingest(ctx context.Context, ev models.WebhookEnvelope) (*models.SurveyResponse, error) {
	data := ev.Data
	if data.ID == "" || data.PersonID == "" {
		return nil, ErrMalformedSubmission
	}

	action, err := in.platform.GetAttachmentAction(ctx, data.ID)
	if err != nil {
		return nil, fmt.Errorf("get attachment action %s: %w", data.ID, err)
	}
	person, err := in.platform.GetPerson(ctx, data.PersonID)
	if err != nil {
		return nil, fmt.Errorf("get person %s: %w", data.PersonID, err)
	}
	email := person.PrimaryEmail()
	if email == "" {
		return nil, fmt.Errorf("person %s: %w", data.PersonID, ErrNoEmail)
	}

	r := models.SurveyResponse{
		RespondentID:    data.PersonID,
		RespondentEmail: email,
		MessageID:       data.MessageID,
		SubmissionID:    data.ID,
		Answers:         StringifyInputs(action.Inputs),
		RoomID:          data.RoomID,
		CreatedTime:     data.Created,
	}
	if err := in.store.Put(ctx, r); err != nil {
		return nil, fmt.Errorf("store response for %s: %w", email, err)
	}
	metrics.ResponsesIngested.Inc()
	in.logger.Info("survey response stored", zap.String("email", email), zap.Strings("answers", r.AnswerKeys()))

	if data.MessageID != "" {
		if err := in.platform.DeleteMessage(ctx, data.MessageID); err != nil {
			in.logger.Warn("delete survey card failed", zap.String("message_id", data.MessageID), zap.Error(err))
		}
	}
	in.dispatcher.Send(ctx, email, AckMessage)
	return &r, nil
}

// StringifyInputs converts submitted card inputs to strings. Choice sets submit strings
// already; anything else is formatted with %v.
func StringifyInputs(inputs map[string]interface{}) map[string]string {
	out := make(map[string]string, len(inputs))
	for k, v := range inputs {
		switch t := v.(type) {
		case string:
			out[k] = t
		case nil:
			out[k] = ""
		default:
			out[k] = fmt.Sprintf("%v", t)
		}
	}
	return out
}
