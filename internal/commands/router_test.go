package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anpi-survey/backend/internal/models"
	"github.com/anpi-survey/backend/internal/responses"
)

type stubDigests struct{}

func (stubDigests) CheckDigest(_ context.Context, org models.Organization, rs []models.SurveyResponse) string {
	return "check:" + org.Name
}

func (stubDigests) ListDigest(_ context.Context, org models.Organization, rs []models.SurveyResponse) string {
	return "list:" + org.Name
}

type failingStore struct{ responses.MemoryStore }

func (*failingStore) Scan(context.Context) ([]models.SurveyResponse, error) {
	return nil, errors.New("store down")
}

var orgs = []models.Organization{
	{Name: "Sales", Admins: []string{"boss@x"}, Users: []string{"a@x"}},
	{Name: "Ops", Admins: []string{"ops@x"}, Users: []string{"b@x"}},
	{Name: "Board", Admins: []string{"boss@x", "ops@x"}, Users: []string{"boss@x"}},
}

func newRouter() *Router {
	return NewRouter(responses.NewMemoryStore(), stubDigests{}, "https://forms.example.com/proxy", nil)
}

func TestHelpAndFallbackAreIdentical(t *testing.T) {
	r := newRouter()
	ctx := context.Background()

	help, err := r.Route(ctx, "help", "boss@x", orgs)
	require.NoError(t, err)
	other, err := r.Route(ctx, "what is this", "boss@x", orgs)
	require.NoError(t, err)
	upper, err := r.Route(ctx, "CHECK", "boss@x", orgs)
	require.NoError(t, err)

	require.Len(t, help, 1)
	assert.Equal(t, HelpMessage, help[0].Markdown)
	assert.Equal(t, help, other)
	assert.Equal(t, help, upper)
}

func TestNonAdminGetsNothing(t *testing.T) {
	r := newRouter()
	for _, cmd := range []string{"list", "check", "help"} {
		out, err := r.Route(context.Background(), cmd, "a@x", orgs)
		require.NoError(t, err)
		assert.Empty(t, out, cmd)
	}
}

func TestCheckOneDigestPerAdministeredOrg(t *testing.T) {
	r := newRouter()
	out, err := r.Route(context.Background(), "check", "boss@x", orgs)
	require.NoError(t, err)

	require.Len(t, out, 3)
	assert.Equal(t, "check:Sales", out[0].Markdown)
	assert.Equal(t, "check:Board", out[1].Markdown)
	assert.Equal(t, "Substitute application: https://forms.example.com/proxy", out[2].Markdown)
	for _, m := range out {
		assert.Equal(t, "boss@x", m.ToPersonEmail)
	}
}

func TestListUsesListDigest(t *testing.T) {
	r := newRouter()
	out, err := r.Route(context.Background(), "list", "ops@x", orgs)
	require.NoError(t, err)

	require.Len(t, out, 3)
	assert.Equal(t, "list:Ops", out[0].Markdown)
	assert.Equal(t, "list:Board", out[1].Markdown)
}

func TestStoreErrorPropagates(t *testing.T) {
	r := NewRouter(&failingStore{}, stubDigests{}, "", nil)
	_, err := r.Route(context.Background(), "check", "boss@x", orgs)
	assert.ErrorContains(t, err, "store down")
}
