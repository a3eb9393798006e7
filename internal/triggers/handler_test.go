package triggers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anpi-survey/backend/internal/models"
	"github.com/anpi-survey/backend/internal/webhooks"
	"github.com/anpi-survey/backend/pkg/queue"
)

type queued struct {
	jobType queue.JobType
	payload interface{}
}

type fakeQueue struct {
	jobs []queued
	err  error
}

func (f *fakeQueue) Enqueue(_ context.Context, t queue.JobType, p interface{}) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.jobs = append(f.jobs, queued{t, p})
	return "job-1", nil
}

type fakeReconciler struct {
	deleteOnly bool
	targets    webhooks.Targets
}

func (f *fakeReconciler) Reconcile(_ context.Context, t webhooks.Targets, deleteOnly bool) ([]models.WebhookSubscription, error) {
	f.deleteOnly = deleteOnly
	f.targets = t
	if deleteOnly {
		return nil, nil
	}
	return []models.WebhookSubscription{{ID: "w1"}, {ID: "w2"}}, nil
}

func setup(q *fakeQueue, rec *fakeReconciler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(q, rec, webhooks.Targets{SubmissionURL: "https://bot/webhooks/survey", MessageURL: "https://bot/webhooks/check"}, "aws.events", nil)
	r := gin.New()
	r.POST("/events/scheduled", h.Scheduled)
	r.POST("/admin/resend", h.Resend)
	r.POST("/admin/webhooks/reconcile", h.Reconcile)
	return r
}

func post(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestScheduledEnqueuesDailyCycle(t *testing.T) {
	q := &fakeQueue{}
	w := post(setup(q, &fakeReconciler{}), "/events/scheduled", `{"source":"aws.events","time":"2024-03-01T00:00:00Z"}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	require.Len(t, q.jobs, 1)
	assert.Equal(t, queue.JobTypeDailyCycle, q.jobs[0].jobType)
	p := q.jobs[0].payload.(queue.SchedulePayload)
	assert.True(t, p.At.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))

	var body struct {
		Data JobAccepted `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "job-1", body.Data.JobID)
}

func TestScheduledStatusReport(t *testing.T) {
	q := &fakeQueue{}
	w := post(setup(q, &fakeReconciler{}), "/events/scheduled", `{"source":"aws.events","time":"2024-03-01T09:30:00Z","job":"status_report"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, queue.JobTypeStatusReport, q.jobs[0].jobType)
}

func TestScheduledRejects(t *testing.T) {
	q := &fakeQueue{}
	r := setup(q, &fakeReconciler{})

	assert.Equal(t, http.StatusBadRequest, post(r, "/events/scheduled", `{"source":"someone.else"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(r, "/events/scheduled", `{"source":"aws.events","job":"resend"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(r, "/events/scheduled", `{"source":"aws.events","time":"yesterday"}`).Code)
	assert.Empty(t, q.jobs)
}

func TestScheduledQueueDown(t *testing.T) {
	q := &fakeQueue{err: errors.New("redis down")}
	w := post(setup(q, &fakeReconciler{}), "/events/scheduled", `{"source":"aws.events"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestResend(t *testing.T) {
	q := &fakeQueue{}
	r := setup(q, &fakeReconciler{})

	assert.Equal(t, http.StatusBadRequest, post(r, "/admin/resend", `{"email":"not-an-email"}`).Code)
	require.Equal(t, http.StatusAccepted, post(r, "/admin/resend", `{"email":"a@example.com"}`).Code)
	assert.Equal(t, queue.ResendPayload{Email: "a@example.com"}, q.jobs[0].payload)
}

func TestReconcile(t *testing.T) {
	rec := &fakeReconciler{}
	r := setup(&fakeQueue{}, rec)

	w := post(r, "/admin/webhooks/reconcile", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, rec.deleteOnly)
	assert.Equal(t, "https://bot/webhooks/check", rec.targets.MessageURL)

	w = post(r, "/admin/webhooks/reconcile", `{"delete_only":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, rec.deleteOnly)
	assert.JSONEq(t, `{"success":true,"data":[]}`, w.Body.String())
}
