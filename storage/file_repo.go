package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// FileRepo stores uploaded document references.
type FileRepo struct {
	db *sqlx.DB
}

func NewFileRepo(db *sqlx.DB) *FileRepo {
	return &FileRepo{db: db}
}

// Save records an upload for a slot, replacing any earlier upload there.
func (r *FileRepo) Save(ctx context.Context, applicationID uuid.UUID, slot FileSlot, telegramFileID string, url, publicID *string, meta FileMeta) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal file meta: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO application_files (id, application_id, slot, telegram_file_id, url, public_id, meta)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (application_id, slot)
		DO UPDATE SET telegram_file_id = EXCLUDED.telegram_file_id, url = EXCLUDED.url,
		              public_id = EXCLUDED.public_id, meta = EXCLUDED.meta`,
		uuid.New(), applicationID, slot, telegramFileID, url, publicID, raw,
	)
	if err != nil {
		return fmt.Errorf("save file %s: %w", slot, err)
	}
	return nil
}

// GetBySlot returns the upload in a slot, or nil when none exists.
func (r *FileRepo) GetBySlot(ctx context.Context, applicationID uuid.UUID, slot FileSlot) (*File, error) {
	var f File
	err := r.db.GetContext(ctx, &f, `
		SELECT * FROM application_files
		WHERE application_id = $1 AND slot = $2`,
		applicationID, slot,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get file %s: %w", slot, err)
	}
	return &f, nil
}

// ListByApplication returns every upload attached to the application.
func (r *FileRepo) ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]File, error) {
	var files []File
	err := r.db.SelectContext(ctx, &files, `
		SELECT * FROM application_files
		WHERE application_id = $1
		ORDER BY created_at`,
		applicationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}
