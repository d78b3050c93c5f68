// Package storage persists applications, their answers and uploaded files
// in Postgres.
package storage

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

// Status is the lifecycle state of an application.
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusSubmitted  Status = "SUBMITTED"
	StatusApproved   Status = "APPROVED"
	StatusRejected   Status = "REJECTED"
	StatusCancelled  Status = "CANCELLED"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Application is one applicant's durable submission record. At most one
// IN_PROGRESS application exists per applicant.
type Application struct {
	ID           uuid.UUID  `db:"id"`
	TelegramID   int64      `db:"telegram_id"`
	Status       Status     `db:"status"`
	CurrentStep  string     `db:"current_step"`
	VacancyID    *uuid.UUID `db:"vacancy_id"`
	RejectReason *string    `db:"reject_reason"`
	ReviewerID   *int64     `db:"reviewer_id"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	SubmittedAt  *time.Time `db:"submitted_at"`
	ReviewedAt   *time.Time `db:"reviewed_at"`
}

// FieldType tags the shape of a stored answer value.
type FieldType string

const (
	FieldText         FieldType = "TEXT"
	FieldSingleChoice FieldType = "SINGLE_CHOICE"
	FieldMultiChoice  FieldType = "MULTI_CHOICE"
	FieldDate         FieldType = "DATE"
	FieldPhone        FieldType = "PHONE"
)

// Answer is one field value of an application, unique per (application, key).
type Answer struct {
	ID            uuid.UUID `db:"id"`
	ApplicationID uuid.UUID `db:"application_id"`
	FieldKey      string    `db:"field_key"`
	FieldValue    string    `db:"field_value"`
	FieldType     FieldType `db:"field_type"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// FileSlot identifies which upload slot of an application a file fills.
type FileSlot string

const (
	SlotHalfBody       FileSlot = "HALF_BODY"
	SlotPassport       FileSlot = "PASSPORT"
	SlotRecommendation FileSlot = "RECOMMENDATION"
)

// File is an uploaded attachment of an application, unique per
// (application, slot).
type File struct {
	ID             uuid.UUID      `db:"id"`
	ApplicationID  uuid.UUID      `db:"application_id"`
	Slot           FileSlot       `db:"slot"`
	TelegramFileID string         `db:"telegram_file_id"`
	URL            *string        `db:"url"`
	PublicID       *string        `db:"public_id"`
	Meta           types.JSONText `db:"meta"`
	CreatedAt      time.Time      `db:"created_at"`
}

// FileMeta is the validation metadata stored alongside an accepted photo.
type FileMeta struct {
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
	Ratio  float64 `json:"ratio,omitempty"`
	Kind   string  `json:"kind,omitempty"`
}

// Vacancy is one open position applicants can apply to.
type Vacancy struct {
	ID          uuid.UUID `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Active      bool      `db:"active"`
	CreatedAt   time.Time `db:"created_at"`
}
