package responses

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/anpi-survey/backend/internal/models"
)

// DefaultRedisKey is the hash holding live responses, field = respondent email.
const DefaultRedisKey = "survey_responses"

// deleteChunk bounds the number of fields per HDEL.
const deleteChunk = 500

// RedisStore keeps responses in a single Redis hash.
type RedisStore struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewRedisStore creates a Redis-backed store under key (DefaultRedisKey when empty).
func NewRedisStore(client *redis.Client, key string, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key, logger: logger}
}

// Put writes r under its email, replacing any earlier record.
func (s *RedisStore) Put(ctx context.Context, r models.SurveyResponse) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	if err := s.client.HSet(ctx, s.key, r.RespondentEmail, raw).Err(); err != nil {
		return fmt.Errorf("hset: %w", err)
	}
	return nil
}

// Scan returns every record ordered by email. Unparseable fields are skipped and logged.
func (s *RedisStore) Scan(ctx context.Context) ([]models.SurveyResponse, error) {
	all, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall: %w", err)
	}
	out := make([]models.SurveyResponse, 0, len(all))
	for email, raw := range all {
		var r models.SurveyResponse
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			s.logger.Warn("invalid stored response", zap.String("email", email), zap.Error(err))
			continue
		}
		out = append(out, r)
	}
	sortByEmail(out)
	return out, nil
}

// DeleteMany removes the given emails from the hash.
func (s *RedisStore) DeleteMany(ctx context.Context, emails []string) error {
	for start := 0; start < len(emails); start += deleteChunk {
		end := start + deleteChunk
		if end > len(emails) {
			end = len(emails)
		}
		if err := s.client.HDel(ctx, s.key, emails[start:end]...).Err(); err != nil {
			return fmt.Errorf("hdel: %w", err)
		}
	}
	return nil
}
