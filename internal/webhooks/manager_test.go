package webhooks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anpi-survey/backend/internal/models"
	"github.com/anpi-survey/backend/internal/webex"
)

// fakeWebex keeps webhook registrations in memory behind the real REST shape.
type fakeWebex struct {
	mu       sync.Mutex
	hooks    map[string]models.WebhookSubscription
	seq      int
	failPost bool
}

func (f *fakeWebex) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/webhooks":
		items := make([]models.WebhookSubscription, 0, len(f.hooks))
		for _, h := range f.hooks {
			items = append(items, h)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"items": items})
	case r.Method == http.MethodPost && r.URL.Path == "/webhooks":
		if f.failPost {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"bad target"}`))
			return
		}
		var req webex.CreateWebhookRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.seq++
		h := models.WebhookSubscription{ID: fmt.Sprintf("wh-%d", f.seq), Name: req.Name, TargetURL: req.TargetURL, Resource: req.Resource, Event: req.Event, Secret: req.Secret}
		f.hooks[h.ID] = h
		_ = json.NewEncoder(w).Encode(h)
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/webhooks/"):
		delete(f.hooks, strings.TrimPrefix(r.URL.Path, "/webhooks/"))
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newFixture(t *testing.T, preexisting int) (*fakeWebex, *Manager) {
	t.Helper()
	fw := &fakeWebex{hooks: map[string]models.WebhookSubscription{}}
	for i := 0; i < preexisting; i++ {
		id := fmt.Sprintf("old-%d", i)
		fw.hooks[id] = models.WebhookSubscription{ID: id, Resource: models.ResourceMessages, Event: models.EventCreated}
	}
	srv := httptest.NewServer(fw)
	t.Cleanup(srv.Close)
	client := webex.NewClient(webex.Config{BaseURL: srv.URL, AccessToken: "t"}, nil)
	return fw, NewManager(client, "s3cret", nil)
}

var targets = Targets{SubmissionURL: "https://bot/webhooks/survey", MessageURL: "https://bot/webhooks/check"}

func TestReconcileIsIdempotent(t *testing.T) {
	fw, m := newFixture(t, 5)
	ctx := context.Background()

	_, err := m.Reconcile(ctx, targets, false)
	require.NoError(t, err)
	created, err := m.Reconcile(ctx, targets, false)
	require.NoError(t, err)

	require.Len(t, created, 2)
	assert.Len(t, fw.hooks, 2)

	byResource := map[string]models.WebhookSubscription{}
	for _, h := range fw.hooks {
		byResource[h.Resource] = h
	}
	assert.Equal(t, targets.SubmissionURL, byResource[models.ResourceAttachmentActions].TargetURL)
	assert.Equal(t, targets.MessageURL, byResource[models.ResourceMessages].TargetURL)
	assert.Equal(t, models.EventCreated, byResource[models.ResourceMessages].Event)
	assert.Equal(t, "s3cret", byResource[models.ResourceMessages].Secret)
}

func TestReconcileDeleteOnly(t *testing.T) {
	fw, m := newFixture(t, 3)

	created, err := m.Reconcile(context.Background(), Targets{}, true)
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Empty(t, fw.hooks)
}

func TestReconcilePropagatesCreateError(t *testing.T) {
	fw, m := newFixture(t, 1)
	fw.failPost = true

	_, err := m.Reconcile(context.Background(), targets, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad target")
}

func TestReconcileRequiresTargets(t *testing.T) {
	fw, m := newFixture(t, 2)

	_, err := m.Reconcile(context.Background(), Targets{SubmissionURL: "x"}, false)
	assert.Error(t, err)
	assert.Len(t, fw.hooks, 2)
}
