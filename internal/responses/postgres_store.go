package responses

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anpi-survey/backend/internal/models"
)

// PostgresStore keeps responses in the survey_responses table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Put upserts r keyed by person_email.
func (s *PostgresStore) Put(ctx context.Context, r models.SurveyResponse) error {
	const q = `INSERT INTO survey_responses (person_email, user_id, message_id, attachment_id, answers, room_id, created_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (person_email) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			message_id = EXCLUDED.message_id,
			attachment_id = EXCLUDED.attachment_id,
			answers = EXCLUDED.answers,
			room_id = EXCLUDED.room_id,
			created_time = EXCLUDED.created_time,
			updated_at = NOW()`
	answers := r.Answers
	if answers == nil {
		answers = map[string]string{}
	}
	_, err := s.pool.Exec(ctx, q, r.RespondentEmail, r.RespondentID, r.MessageID, r.SubmissionID, answers, r.RoomID, r.CreatedTime)
	if err != nil {
		return fmt.Errorf("upsert response: %w", err)
	}
	return nil
}

// Scan returns every record ordered by email.
func (s *PostgresStore) Scan(ctx context.Context) ([]models.SurveyResponse, error) {
	const q = `SELECT person_email, user_id, message_id, attachment_id, answers, room_id, created_time
		FROM survey_responses ORDER BY person_email`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("scan responses: %w", err)
	}
	defer rows.Close()
	var list []models.SurveyResponse
	for rows.Next() {
		var r models.SurveyResponse
		if err := rows.Scan(&r.RespondentEmail, &r.RespondentID, &r.MessageID, &r.SubmissionID, &r.Answers, &r.RoomID, &r.CreatedTime); err != nil {
			return nil, err
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

// DeleteMany removes the rows for the given emails in one statement.
func (s *PostgresStore) DeleteMany(ctx context.Context, emails []string) error {
	if len(emails) == 0 {
		return nil
	}
	const q = `DELETE FROM survey_responses WHERE person_email = ANY($1)`
	if _, err := s.pool.Exec(ctx, q, emails); err != nil {
		return fmt.Errorf("delete responses: %w", err)
	}
	return nil
}
