package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/clinicore/scheduling-api/internal/model"
	"github.com/clinicore/scheduling-api/internal/repository"
)

func (r *clinicianRepository) Create(ctx context.Context, clinician *model.Clinician) error {
	query := `
		INSERT INTO clinicians (id, name, email, crm, specialty, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		clinician.ID,
		clinician.Name,
		clinician.Email,
		clinician.CRM,
		clinician.Specialty,
		clinician.Status,
		clinician.CreatedAt,
		clinician.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return repository.ErrDuplicateRecord
		}
		return fmt.Errorf("failed to create clinician: %w", err)
	}
	return nil
}

func (r *clinicianRepository) Get(ctx context.Context, id uuid.UUID) (*model.Clinician, error) {
	query := `
		SELECT id, name, email, crm, specialty, status, created_at, updated_at
		FROM clinicians
		WHERE id = $1
	`
	var clinician model.Clinician
	err := r.db.GetContext(ctx, &clinician, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get clinician: %w", err)
	}
	return &clinician, nil
}

func (r *clinicianRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clinicians WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete clinician: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *clinicianRepository) List(ctx context.Context, filters *model.ClinicianFilters) ([]*model.Clinician, error) {
	query := `
		SELECT id, name, email, crm, specialty, status, created_at, updated_at
		FROM clinicians
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters.Specialty != "" {
		query += fmt.Sprintf(" AND specialty = $%d", argCount)
		args = append(args, filters.Specialty)
		argCount++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	filters.Pagination.Normalize()
	query += fmt.Sprintf(" ORDER BY name ASC LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, filters.Pagination.PageSize, filters.Pagination.Offset())

	var clinicians []*model.Clinician
	err := r.db.SelectContext(ctx, &clinicians, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clinicians: %w", err)
	}
	return clinicians, nil
}
