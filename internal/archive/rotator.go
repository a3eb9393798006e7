// Package archive moves the live responses of a cycle into the blob store and purges them.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/anpi-survey/backend/internal/metrics"
	"github.com/anpi-survey/backend/internal/models"
	"github.com/anpi-survey/backend/internal/responses"
	redisx "github.com/anpi-survey/backend/pkg/redis"
)

// ErrRotationInProgress is returned when another rotation holds the lock.
var ErrRotationInProgress = errors.New("rotation already in progress")

// KeyDateLayout names archive objects by day.
const KeyDateLayout = "2006-01-02"

// Blob writes archive objects.
type Blob interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
}

// Locker serializes rotations. Acquire returns a release func, or an error wrapping
// redis.ErrLockHeld when another process holds the lock.
type Locker interface {
	Acquire(ctx context.Context) (func(context.Context) error, error)
}

// RotationResult reports what one rotation did.
type RotationResult struct {
	Key      string
	Archived int
	Purged   int
}

// Rotator archives then purges the live store.
type Rotator struct {
	store  responses.Store
	blob   Blob
	lock   Locker
	prefix string
	logger *zap.Logger
}

// NewRotator creates a rotator. lock may be nil when only one process can rotate.
func NewRotator(store responses.Store, blob Blob, lock Locker, prefix string, logger *zap.Logger) *Rotator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Rotator{store: store, blob: blob, lock: lock, prefix: prefix, logger: logger}
}

// ArchiveKey returns the object key of the archive for asOf's calendar day.
func ArchiveKey(prefix string, asOf time.Time) string {
	name := asOf.Format(KeyDateLayout) + ".json"
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// Rotate writes every live response to the archive object for asOf and, only once
// that write succeeded, deletes the archived records. An empty store writes nothing.
func (r *Rotator) Rotate(ctx context.Context, asOf time.Time) (*RotationResult, error) {
	if r.lock != nil {
		release, err := r.lock.Acquire(ctx)
		if errors.Is(err, redisx.ErrLockHeld) {
			metrics.Rotations.WithLabelValues("locked").Inc()
			return nil, ErrRotationInProgress
		}
		if err != nil {
			return nil, fmt.Errorf("acquire rotation lock: %w", err)
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				r.logger.Warn("release rotation lock failed", zap.Error(err))
			}
		}()
	}

	res, err := r.rotate(ctx, asOf)
	if err != nil {
		metrics.Rotations.WithLabelValues("error").Inc()
		return nil, err
	}
	return res, nil
}

func (r *Rotator) rotate(ctx context.Context, asOf time.Time) (*RotationResult, error) {
	key := ArchiveKey(r.prefix, asOf)
	items, err := r.store.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan responses: %w", err)
	}
	if len(items) == 0 {
		r.logger.Info("no survey response data", zap.String("date", asOf.Format(KeyDateLayout)))
		metrics.Rotations.WithLabelValues("empty").Inc()
		return &RotationResult{Key: key}, nil
	}

	body, err := Encode(items)
	if err != nil {
		return nil, err
	}
	if err := r.blob.Put(ctx, key, "application/json; charset=utf-8", body); err != nil {
		return nil, fmt.Errorf("write archive %s: %w", key, err)
	}
	metrics.ArchivedResponses.Add(float64(len(items)))

	emails := models.Emails(items)
	if err := r.store.DeleteMany(ctx, emails); err != nil {
		return nil, fmt.Errorf("purge %d archived responses: %w", len(emails), err)
	}
	metrics.Rotations.WithLabelValues("archived").Inc()
	r.logger.Info("survey responses archived", zap.String("key", key), zap.Int("count", len(items)))
	return &RotationResult{Key: key, Archived: len(items), Purged: len(emails)}, nil
}

// Encode serializes records as a JSON array, keeping non-ASCII text as UTF-8.
func Encode(items []models.SurveyResponse) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(items); err != nil {
		return nil, fmt.Errorf("encode archive: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Decode parses an archive object.
func Decode(raw []byte) ([]models.SurveyResponse, error) {
	var items []models.SurveyResponse
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode archive: %w", err)
	}
	return items, nil
}
