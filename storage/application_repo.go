package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uzjobs/receptionbot/core/logger"
)

// ApplicationRepo stores application lifecycle records.
type ApplicationRepo struct {
	db *sqlx.DB
}

// NewApplicationRepo wraps the shared database handle.
func NewApplicationRepo(db *sqlx.DB) *ApplicationRepo {
	return &ApplicationRepo{db: db}
}

// Create inserts a fresh IN_PROGRESS application for the applicant.
func (r *ApplicationRepo) Create(ctx context.Context, telegramID int64, initialStep string, vacancyID *uuid.UUID) (*Application, error) {
	var app Application
	err := r.db.GetContext(ctx, &app, `
		INSERT INTO applications (id, telegram_id, status, current_step, vacancy_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *`,
		uuid.New(), telegramID, StatusInProgress, initialStep, vacancyID,
	)
	if err != nil {
		logger.DB.Error("application create failed",
			slog.String("event", "db.application.create"),
			slog.Int64("telegram_id", telegramID),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("create application: %w", err)
	}
	return &app, nil
}

// FindActive returns the applicant's sole IN_PROGRESS application, or nil.
func (r *ApplicationRepo) FindActive(ctx context.Context, telegramID int64) (*Application, error) {
	var app Application
	err := r.db.GetContext(ctx, &app, `
		SELECT * FROM applications
		WHERE telegram_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT 1`,
		telegramID, StatusInProgress,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active application: %w", err)
	}
	return &app, nil
}

// GetByID loads one application.
func (r *ApplicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*Application, error) {
	var app Application
	err := r.db.GetContext(ctx, &app, `SELECT * FROM applications WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	return &app, nil
}

// UpdateStep records durable flow progress for crash recovery.
func (r *ApplicationRepo) UpdateStep(ctx context.Context, id uuid.UUID, step string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE applications SET current_step = $2, updated_at = now()
		WHERE id = $1`,
		id, step,
	)
	if err != nil {
		return fmt.Errorf("update application step: %w", err)
	}
	return nil
}

// UpdateStatus transitions the application lifecycle; SUBMITTED also stamps
// the submission time.
func (r *ApplicationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE applications
		SET status = $2,
		    submitted_at = CASE WHEN $2 = 'SUBMITTED' THEN now() ELSE submitted_at END,
		    updated_at = now()
		WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	return nil
}

// SetVacancy binds the application to a chosen vacancy.
func (r *ApplicationRepo) SetVacancy(ctx context.Context, id, vacancyID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE applications SET vacancy_id = $2, updated_at = now()
		WHERE id = $1`,
		id, vacancyID,
	)
	if err != nil {
		return fmt.Errorf("set application vacancy: %w", err)
	}
	return nil
}

// Approve marks the application APPROVED by the given reviewer.
func (r *ApplicationRepo) Approve(ctx context.Context, id uuid.UUID, reviewerID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE applications
		SET status = $2, reviewer_id = $3, reviewed_at = now(), updated_at = now()
		WHERE id = $1`,
		id, StatusApproved, reviewerID,
	)
	if err != nil {
		return fmt.Errorf("approve application: %w", err)
	}
	return nil
}

// Reject marks the application REJECTED with the given reason.
func (r *ApplicationRepo) Reject(ctx context.Context, id uuid.UUID, reason string, reviewerID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE applications
		SET status = $2, reject_reason = $3, reviewer_id = $4, reviewed_at = now(), updated_at = now()
		WHERE id = $1`,
		id, StatusRejected, reason, reviewerID,
	)
	if err != nil {
		return fmt.Errorf("reject application: %w", err)
	}
	return nil
}
