package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// AnswerRepo stores per-field questionnaire answers.
type AnswerRepo struct {
	db *sqlx.DB
}

func NewAnswerRepo(db *sqlx.DB) *AnswerRepo {
	return &AnswerRepo{db: db}
}

// Upsert writes an answer, replacing any previous value for the same field.
// Re-answering after navigating back overwrites in place.
func (r *AnswerRepo) Upsert(ctx context.Context, applicationID uuid.UUID, fieldKey, value string, fieldType FieldType) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO application_answers (id, application_id, field_key, field_type, field_value)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (application_id, field_key)
		DO UPDATE SET field_value = EXCLUDED.field_value, field_type = EXCLUDED.field_type, updated_at = now()`,
		uuid.New(), applicationID, fieldKey, fieldType, value,
	)
	if err != nil {
		return fmt.Errorf("upsert answer %s: %w", fieldKey, err)
	}
	return nil
}

// GetByKey returns one answer, or nil when the field was never answered.
func (r *AnswerRepo) GetByKey(ctx context.Context, applicationID uuid.UUID, fieldKey string) (*Answer, error) {
	var ans Answer
	err := r.db.GetContext(ctx, &ans, `
		SELECT * FROM application_answers
		WHERE application_id = $1 AND field_key = $2`,
		applicationID, fieldKey,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get answer %s: %w", fieldKey, err)
	}
	return &ans, nil
}

// ListByApplication returns all answers ordered by creation time.
func (r *AnswerRepo) ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]Answer, error) {
	var answers []Answer
	err := r.db.SelectContext(ctx, &answers, `
		SELECT * FROM application_answers
		WHERE application_id = $1
		ORDER BY created_at`,
		applicationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	return answers, nil
}
