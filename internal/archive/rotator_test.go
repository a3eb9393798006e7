package archive

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anpi-survey/backend/internal/models"
	"github.com/anpi-survey/backend/internal/responses"
	redisx "github.com/anpi-survey/backend/pkg/redis"
)

type memBlob struct {
	objects map[string][]byte
	err     error
	log     *[]string
}

func newMemBlob() *memBlob { return &memBlob{objects: map[string][]byte{}} }

func (b *memBlob) Put(_ context.Context, key, _ string, body []byte) error {
	if b.log != nil {
		*b.log = append(*b.log, "put")
	}
	if b.err != nil {
		return b.err
	}
	b.objects[key] = append([]byte(nil), body...)
	return nil
}

type loggingStore struct {
	*responses.MemoryStore
	log *[]string
}

func (s loggingStore) DeleteMany(ctx context.Context, emails []string) error {
	*s.log = append(*s.log, "delete")
	return s.MemoryStore.DeleteMany(ctx, emails)
}

type heldLock struct{}

func (heldLock) Acquire(context.Context) (func(context.Context) error, error) {
	return nil, fmt.Errorf("rotation: %w", redisx.ErrLockHeld)
}

type countingLock struct{ acquired, released int }

func (l *countingLock) Acquire(context.Context) (func(context.Context) error, error) {
	l.acquired++
	return func(context.Context) error { l.released++; return nil }, nil
}

var march1 = time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)

func seed(t *testing.T, s responses.Store, emails ...string) {
	t.Helper()
	for _, e := range emails {
		require.NoError(t, s.Put(context.Background(), models.SurveyResponse{
			RespondentEmail: e,
			Answers:         map[string]string{"q1": "false"},
		}))
	}
}

func TestRotateArchivesThenPurges(t *testing.T) {
	var log []string
	mem := responses.NewMemoryStore()
	seed(t, mem, "a@x", "b@x")
	blob := newMemBlob()
	blob.log = &log
	lock := &countingLock{}

	r := NewRotator(loggingStore{MemoryStore: mem, log: &log}, blob, lock, "", nil)
	res, err := r.Rotate(context.Background(), march1)
	require.NoError(t, err)

	assert.Equal(t, []string{"put", "delete"}, log)
	assert.Equal(t, "2024-03-01.json", res.Key)
	assert.Equal(t, 2, res.Archived)
	assert.Equal(t, 2, res.Purged)
	assert.Zero(t, mem.Len())
	assert.Equal(t, 1, lock.released)

	items, err := Decode(blob.objects["2024-03-01.json"])
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x", "b@x"}, models.Emails(items))
}

func TestRotateEmptyStoreWritesNothing(t *testing.T) {
	blob := newMemBlob()
	r := NewRotator(responses.NewMemoryStore(), blob, nil, "archive", nil)

	res, err := r.Rotate(context.Background(), march1)
	require.NoError(t, err)
	assert.Empty(t, blob.objects)
	assert.Zero(t, res.Archived)
	assert.Zero(t, res.Purged)
}

func TestRotateArchiveFailureKeepsRecords(t *testing.T) {
	mem := responses.NewMemoryStore()
	seed(t, mem, "a@x")
	blob := newMemBlob()
	blob.err = errors.New("access denied")

	r := NewRotator(mem, blob, nil, "", nil)
	_, err := r.Rotate(context.Background(), march1)
	require.ErrorContains(t, err, "access denied")
	assert.Equal(t, 1, mem.Len())
}

func TestRotateLockHeld(t *testing.T) {
	mem := responses.NewMemoryStore()
	seed(t, mem, "a@x")
	blob := newMemBlob()

	_, err := NewRotator(mem, blob, heldLock{}, "", nil).Rotate(context.Background(), march1)
	assert.ErrorIs(t, err, ErrRotationInProgress)
	assert.Empty(t, blob.objects)
	assert.Equal(t, 1, mem.Len())
}

func TestArchiveKey(t *testing.T) {
	assert.Equal(t, "2024-03-01.json", ArchiveKey("", march1))
	assert.Equal(t, "survey/2024-03-01.json", ArchiveKey("/survey/", march1))
}

func TestEncodeKeepsUTF8(t *testing.T) {
	raw, err := Encode([]models.SurveyResponse{{RespondentEmail: "山田@x", Answers: map[string]string{"q1": "<ok>"}}})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"PersonEmail":"山田@x"`)
	assert.Contains(t, string(raw), `"<ok>"`)
}
