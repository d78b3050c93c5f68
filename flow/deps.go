package flow

import (
	"context"

	"github.com/google/uuid"

	"github.com/uzjobs/receptionbot/storage"
)

// ApplicationStore is the slice of the application repository the engine
// consumes.
type ApplicationStore interface {
	Create(ctx context.Context, telegramID int64, initialStep string, vacancyID *uuid.UUID) (*storage.Application, error)
	FindActive(ctx context.Context, telegramID int64) (*storage.Application, error)
	UpdateStep(ctx context.Context, id uuid.UUID, step string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status storage.Status) error
	SetVacancy(ctx context.Context, id, vacancyID uuid.UUID) error
}

// AnswerStore persists per-field answers.
type AnswerStore interface {
	Upsert(ctx context.Context, applicationID uuid.UUID, fieldKey, value string, fieldType storage.FieldType) error
	GetByKey(ctx context.Context, applicationID uuid.UUID, fieldKey string) (*storage.Answer, error)
	ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]storage.Answer, error)
}

// FileStore persists uploaded attachments.
type FileStore interface {
	Save(ctx context.Context, applicationID uuid.UUID, slot storage.FileSlot, telegramFileID string, url, publicID *string, meta storage.FileMeta) error
	GetBySlot(ctx context.Context, applicationID uuid.UUID, slot storage.FileSlot) (*storage.File, error)
	ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]storage.File, error)
}

// VacancyStore reads the open-vacancy catalogue.
type VacancyStore interface {
	ListActive(ctx context.Context) ([]storage.Vacancy, error)
	GetByID(ctx context.Context, id uuid.UUID) (*storage.Vacancy, error)
}

// Downloader fetches the raw bytes of an inbound Telegram file.
type Downloader interface {
	Download(ctx context.Context, fileID string) ([]byte, error)
}

// Notifier hands a submitted application to the admin review channel.
type Notifier interface {
	Submitted(ctx context.Context, applicationID uuid.UUID) error
}
