// Package notify sends direct messages and isolates failures per recipient.
package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/anpi-survey/backend/internal/metrics"
	"github.com/anpi-survey/backend/internal/models"
	"github.com/anpi-survey/backend/internal/webex"
)

// MessageSender is the part of the chat platform the dispatcher needs.
type MessageSender interface {
	CreateMessage(ctx context.Context, req webex.MessageRequest) (*webex.Message, error)
}

// Result is the outcome of one send.
type Result struct {
	Recipient string
	Message   *webex.Message
	Err       error
}

// OK reports whether the send succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Dispatcher sends messages one recipient at a time.
type Dispatcher struct {
	sender MessageSender
	logger *zap.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(sender MessageSender, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{sender: sender, logger: logger}
}

// Send delivers a markdown message to one person.
func (d *Dispatcher) Send(ctx context.Context, email, markdown string) Result {
	return d.SendCard(ctx, email, markdown, nil)
}

// SendCard delivers a markdown message with optional card attachments to one person.
// Errors are logged and returned in the Result, never raised.
func (d *Dispatcher) SendCard(ctx context.Context, email, markdown string, attachments []webex.Attachment) Result {
	msg, err := d.sender.CreateMessage(ctx, webex.MessageRequest{
		ToPersonEmail: email,
		Markdown:      markdown,
		Attachments:   attachments,
	})
	if err != nil {
		metrics.MessagesSent.WithLabelValues("error").Inc()
		var apiErr *webex.APIError
		if errors.As(err, &apiErr) {
			d.logger.Warn("send a message to webex error",
				zap.String("email", email),
				zap.Int("code", apiErr.StatusCode),
				zap.String("message", apiErr.Message),
			)
		} else {
			d.logger.Error("send a message to webex failed", zap.String("email", email), zap.Error(err))
		}
		return Result{Recipient: email, Err: err}
	}
	metrics.MessagesSent.WithLabelValues("ok").Inc()
	return Result{Recipient: email, Message: msg}
}

// Broadcast sends each message in order. A failed send does not stop the rest.
func (d *Dispatcher) Broadcast(ctx context.Context, msgs []models.OutboundMessage) []Result {
	results := make([]Result, 0, len(msgs))
	for _, m := range msgs {
		results = append(results, d.Send(ctx, m.ToPersonEmail, m.Markdown))
	}
	return results
}

// BroadcastCard sends the same card to every recipient in order.
func (d *Dispatcher) BroadcastCard(ctx context.Context, emails []string, markdown string, attachments []webex.Attachment) []Result {
	results := make([]Result, 0, len(emails))
	for _, email := range emails {
		results = append(results, d.SendCard(ctx, email, markdown, attachments))
	}
	return results
}

// Succeeded returns the messages of the successful sends.
func Succeeded(results []Result) []*webex.Message {
	out := make([]*webex.Message, 0, len(results))
	for _, r := range results {
		if r.OK() {
			out = append(out, r.Message)
		}
	}
	return out
}

// Failed returns the results that carry an error.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}
