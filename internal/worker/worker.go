// Package worker runs the queued survey jobs: the daily cycle, the scheduled status
// report and single-recipient resends.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/anpi-survey/backend/internal/archive"
	"github.com/anpi-survey/backend/internal/models"
	"github.com/anpi-survey/backend/internal/notify"
	"github.com/anpi-survey/backend/internal/responses"
	"github.com/anpi-survey/backend/internal/roster"
	"github.com/anpi-survey/backend/pkg/queue"
)

// ErrUnknownJob is returned for a job type the processor does not handle.
var ErrUnknownJob = errors.New("unknown job type")

// Rotator archives and purges the live responses.
type Rotator interface {
	Rotate(ctx context.Context, asOf time.Time) (*archive.RotationResult, error)
}

// CardSender delivers the survey card.
type CardSender interface {
	Broadcast(ctx context.Context, now time.Time) ([]notify.Result, error)
	Resend(ctx context.Context, email string, now time.Time) (*notify.Result, error)
}

// ScheduledDigests renders the timed pending report for one organization.
type ScheduledDigests interface {
	ScheduledDigest(ctx context.Context, org models.Organization, responses []models.SurveyResponse, at time.Time) string
}

// JobQueue is the queue surface the run loop needs.
type JobQueue interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// Deps groups the processor's collaborators.
type Deps struct {
	Rotator    Rotator
	Sender     CardSender
	Store      responses.Store
	Roster     roster.Source
	Digests    ScheduledDigests
	Dispatcher *notify.Dispatcher
	Location   *time.Location
}

// JobProcessor executes survey jobs.
type JobProcessor struct {
	deps   Deps
	queue  JobQueue
	logger *zap.Logger
}

// NewJobProcessor creates a processor. q may be nil when jobs are only run through Process.
func NewJobProcessor(deps Deps, q JobQueue, logger *zap.Logger) *JobProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	return &JobProcessor{deps: deps, queue: q, logger: logger}
}

// Process executes one job.
func (p *JobProcessor) Process(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeDailyCycle:
		var payload queue.SchedulePayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}
		return p.DailyCycle(ctx, p.at(payload.At))
	case queue.JobTypeStatusReport:
		var payload queue.SchedulePayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}
		return p.StatusReport(ctx, p.at(payload.At))
	case queue.JobTypeResend:
		var payload queue.ResendPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}
		_, err := p.deps.Sender.Resend(ctx, payload.Email, time.Now().In(p.deps.Location))
		return err
	default:
		return fmt.Errorf("%w: %s", ErrUnknownJob, job.Type)
	}
}

// DailyCycle archives yesterday's answers under asOf's date and sends a fresh card.
// If another rotation holds the lock the cycle is skipped; that holder sends the card.
func (p *JobProcessor) DailyCycle(ctx context.Context, asOf time.Time) error {
	res, err := p.deps.Rotator.Rotate(ctx, asOf)
	if errors.Is(err, archive.ErrRotationInProgress) {
		p.logger.Warn("daily cycle skipped, rotation in progress")
		return nil
	}
	if err != nil {
		return fmt.Errorf("rotate: %w", err)
	}
	p.logger.Info("rotation done", zap.String("key", res.Key), zap.Int("archived", res.Archived))

	results, err := p.deps.Sender.Broadcast(ctx, asOf)
	if err != nil {
		return fmt.Errorf("broadcast: %w", err)
	}
	p.logger.Info("survey card sent",
		zap.Int("sent", len(notify.Succeeded(results))),
		zap.Int("failed", len(notify.Failed(results))),
	)
	return nil
}

// StatusReport sends each organization's pending list at time at to its admins.
func (p *JobProcessor) StatusReport(ctx context.Context, at time.Time) error {
	orgs, err := p.deps.Roster.LoadOrganizations()
	if err != nil {
		return fmt.Errorf("load organizations: %w", err)
	}
	snapshot, err := p.deps.Store.Scan(ctx)
	if err != nil {
		return fmt.Errorf("read responses: %w", err)
	}
	var out []models.OutboundMessage
	for _, org := range orgs {
		body := p.deps.Digests.ScheduledDigest(ctx, org, snapshot, at)
		for _, admin := range org.Admins {
			out = append(out, models.OutboundMessage{ToPersonEmail: admin, Markdown: body})
		}
	}
	results := p.deps.Dispatcher.Broadcast(ctx, out)
	p.logger.Info("status report sent", zap.Int("messages", len(results)), zap.Int("failed", len(notify.Failed(results))))
	return nil
}

func (p *JobProcessor) at(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now()
	}
	return t.In(p.deps.Location)
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *JobProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("survey worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			sleep(ctx, queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if errors.Is(err, ErrUnknownJob) {
				continue
			}
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			sleep(ctx, queue.RetryBackoff)
			continue
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
