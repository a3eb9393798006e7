package responses

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anpi-survey/backend/internal/models"
)

func TestMemoryStoreUpsert(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, models.SurveyResponse{RespondentEmail: "a@x", Answers: map[string]string{"q1": "false"}}))
	require.NoError(t, s.Put(ctx, models.SurveyResponse{RespondentEmail: "b@x", Answers: map[string]string{"q1": "false"}}))
	require.NoError(t, s.Put(ctx, models.SurveyResponse{RespondentEmail: "a@x", Answers: map[string]string{"q1": "true"}}))

	list, err := s.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a@x", list[0].RespondentEmail)
	assert.Equal(t, "true", list[0].Answers["q1"])
}

func TestMemoryStoreDeleteMany(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for _, e := range []string{"a@x", "b@x", "c@x"} {
		require.NoError(t, s.Put(ctx, models.SurveyResponse{RespondentEmail: e}))
	}

	require.NoError(t, s.DeleteMany(ctx, []string{"a@x", "c@x", "missing@x"}))
	list, err := s.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b@x"}, models.Emails(list))
}

func TestMemoryStoreCopiesAnswers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	answers := map[string]string{"q1": "false"}
	require.NoError(t, s.Put(ctx, models.SurveyResponse{RespondentEmail: "a@x", Answers: answers}))
	answers["q1"] = "true"

	list, _ := s.Scan(ctx)
	assert.Equal(t, "false", list[0].Answers["q1"])
}
