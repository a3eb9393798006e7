package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anpi-survey/backend/internal/archive"
	"github.com/anpi-survey/backend/internal/models"
	"github.com/anpi-survey/backend/internal/notify"
	"github.com/anpi-survey/backend/internal/responses"
	"github.com/anpi-survey/backend/internal/roster"
	"github.com/anpi-survey/backend/internal/webex"
	"github.com/anpi-survey/backend/pkg/queue"
)

type fakeRotator struct {
	err   error
	asOf  []time.Time
	calls *[]string
}

func (f *fakeRotator) Rotate(_ context.Context, asOf time.Time) (*archive.RotationResult, error) {
	*f.calls = append(*f.calls, "rotate")
	f.asOf = append(f.asOf, asOf)
	if f.err != nil {
		return nil, f.err
	}
	return &archive.RotationResult{Key: archive.ArchiveKey("", asOf)}, nil
}

type fakeCards struct {
	calls   *[]string
	resends []string
}

func (f *fakeCards) Broadcast(context.Context, time.Time) ([]notify.Result, error) {
	*f.calls = append(*f.calls, "broadcast")
	return nil, nil
}

func (f *fakeCards) Resend(_ context.Context, email string, _ time.Time) (*notify.Result, error) {
	f.resends = append(f.resends, email)
	return nil, nil
}

type stubDigests struct{}

func (stubDigests) ScheduledDigest(_ context.Context, org models.Organization, _ []models.SurveyResponse, at time.Time) string {
	return org.Name + "@" + at.Format("15:04")
}

type captureSender struct{ sent []webex.MessageRequest }

func (c *captureSender) CreateMessage(_ context.Context, req webex.MessageRequest) (*webex.Message, error) {
	c.sent = append(c.sent, req)
	return &webex.Message{ID: "m"}, nil
}

func job(t *testing.T, jt queue.JobType, payload interface{}) *queue.Job {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return &queue.Job{ID: "j1", Type: jt, Payload: raw}
}

func newProcessor(rot *fakeRotator, cards *fakeCards, sender *captureSender) *JobProcessor {
	return NewJobProcessor(Deps{
		Rotator: rot,
		Sender:  cards,
		Store:   responses.NewMemoryStore(),
		Roster: roster.Static{Organizations: []models.Organization{
			{Name: "Sales", Admins: []string{"boss@x", "vice@x"}, Users: []string{"a@x"}},
			{Name: "Ops", Admins: []string{"ops@x"}, Users: []string{"b@x"}},
		}},
		Digests:    stubDigests{},
		Dispatcher: notify.NewDispatcher(sender, nil),
		Location:   time.UTC,
	}, nil, nil)
}

func TestDailyCycleRotatesBeforeBroadcast(t *testing.T) {
	var calls []string
	rot := &fakeRotator{calls: &calls}
	p := newProcessor(rot, &fakeCards{calls: &calls}, &captureSender{})

	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, p.Process(context.Background(), job(t, queue.JobTypeDailyCycle, queue.SchedulePayload{At: at})))
	assert.Equal(t, []string{"rotate", "broadcast"}, calls)
	assert.True(t, rot.asOf[0].Equal(at))
}

func TestDailyCycleRotationFailureSkipsBroadcast(t *testing.T) {
	var calls []string
	p := newProcessor(&fakeRotator{calls: &calls, err: errors.New("s3 down")}, &fakeCards{calls: &calls}, &captureSender{})

	err := p.DailyCycle(context.Background(), time.Now())
	require.ErrorContains(t, err, "s3 down")
	assert.Equal(t, []string{"rotate"}, calls)
}

func TestDailyCycleLockedIsSkipped(t *testing.T) {
	var calls []string
	p := newProcessor(&fakeRotator{calls: &calls, err: archive.ErrRotationInProgress}, &fakeCards{calls: &calls}, &captureSender{})

	require.NoError(t, p.DailyCycle(context.Background(), time.Now()))
	assert.Equal(t, []string{"rotate"}, calls)
}

func TestStatusReportGoesToEveryAdmin(t *testing.T) {
	var calls []string
	sender := &captureSender{}
	p := newProcessor(&fakeRotator{calls: &calls}, &fakeCards{calls: &calls}, sender)

	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, p.Process(context.Background(), job(t, queue.JobTypeStatusReport, queue.SchedulePayload{At: at})))
	require.Len(t, sender.sent, 3)
	assert.Equal(t, "boss@x", sender.sent[0].ToPersonEmail)
	assert.Equal(t, "Sales@09:30", sender.sent[1].Markdown)
	assert.Equal(t, "Ops@09:30", sender.sent[2].Markdown)
}

func TestResendJob(t *testing.T) {
	var calls []string
	cards := &fakeCards{calls: &calls}
	p := newProcessor(&fakeRotator{calls: &calls}, cards, &captureSender{})

	require.NoError(t, p.Process(context.Background(), job(t, queue.JobTypeResend, queue.ResendPayload{Email: "a@x"})))
	assert.Equal(t, []string{"a@x"}, cards.resends)
}

func TestUnknownJob(t *testing.T) {
	var calls []string
	p := newProcessor(&fakeRotator{calls: &calls}, &fakeCards{calls: &calls}, &captureSender{})
	err := p.Process(context.Background(), &queue.Job{Type: "reboot"})
	assert.ErrorIs(t, err, ErrUnknownJob)
}

type sliceQueue struct {
	jobs    []*queue.Job
	retried []*queue.Job
	cancel  context.CancelFunc
}

func (q *sliceQueue) Dequeue(context.Context) (*queue.Job, error) {
	if len(q.jobs) == 0 {
		q.cancel()
		return nil, nil
	}
	j := q.jobs[0]
	q.jobs = q.jobs[1:]
	return j, nil
}

func (q *sliceQueue) Retry(_ context.Context, j *queue.Job) error {
	q.retried = append(q.retried, j)
	return nil
}

func TestRunProcessesUntilCancelled(t *testing.T) {
	var calls []string
	ctx, cancel := context.WithCancel(context.Background())
	q := &sliceQueue{cancel: cancel}
	q.jobs = []*queue.Job{
		job(t, queue.JobTypeResend, queue.ResendPayload{Email: "a@x"}),
		{ID: "bad", Type: "reboot"},
		job(t, queue.JobTypeResend, queue.ResendPayload{Email: "b@x"}),
	}
	cards := &fakeCards{calls: &calls}
	p := NewJobProcessor(Deps{Sender: cards, Location: time.UTC}, q, nil)

	p.Run(ctx)
	assert.Equal(t, []string{"a@x", "b@x"}, cards.resends)
	assert.Empty(t, q.retried)
}
