package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// VacancyRepo reads the open-vacancy catalogue.
type VacancyRepo struct {
	db *sqlx.DB
}

func NewVacancyRepo(db *sqlx.DB) *VacancyRepo {
	return &VacancyRepo{db: db}
}

// ListActive returns open vacancies, newest first.
func (r *VacancyRepo) ListActive(ctx context.Context) ([]Vacancy, error) {
	var vacancies []Vacancy
	err := r.db.SelectContext(ctx, &vacancies, `
		SELECT * FROM vacancies
		WHERE active = true
		ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list vacancies: %w", err)
	}
	return vacancies, nil
}

// GetByID loads one vacancy, or nil when it does not exist.
func (r *VacancyRepo) GetByID(ctx context.Context, id uuid.UUID) (*Vacancy, error) {
	var v Vacancy
	err := r.db.GetContext(ctx, &v, `SELECT * FROM vacancies WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get vacancy: %w", err)
	}
	return &v, nil
}
