package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/clinicore/scheduling-api/internal/model"
	"github.com/clinicore/scheduling-api/internal/repository"
)

const pgUniqueViolation = "23505"

// Partial unique index names from migrations/0001_schema.up.sql. Their
// violation is the last-resort conflict detector for concurrent bookings.
const (
	clinicianSlotIndex = "appointments_clinician_slot_idx"
	patientDayIndex    = "appointments_patient_day_idx"
)

const appointmentColumns = `
	id, clinic_id, clinician_id, patient_id, scheduled_at,
	encounter_type, fee, location, status, cancel_reason,
	outcome, notes, created_at, updated_at
`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, clinic_id, clinician_id, patient_id, scheduled_at,
			encounter_type, fee, location, status, cancel_reason,
			outcome, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.ClinicID,
		appointment.ClinicianID,
		appointment.PatientID,
		appointment.ScheduledAt,
		appointment.EncounterType,
		appointment.Fee,
		appointment.Location,
		appointment.Status,
		appointment.CancelReason,
		appointment.Outcome,
		appointment.Notes,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		if conflict := translateUniqueViolation(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

// translateUniqueViolation maps a unique_violation on one of the booking
// guard indexes to the matching conflict sentinel.
func translateUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != pgUniqueViolation {
		return nil
	}
	switch pqErr.Constraint {
	case clinicianSlotIndex:
		return repository.ErrClinicianSlotTaken
	case patientDayIndex:
		return repository.ErrPatientDayTaken
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET scheduled_at = $1, fee = $2, outcome = $3, notes = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := r.db.ExecContext(ctx, query,
		appointment.ScheduledAt,
		appointment.Fee,
		appointment.Outcome,
		appointment.Notes,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		if conflict := translateUniqueViolation(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("failed to update appointment: %w", err)
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

func (r *appointmentRepository) UpdateStatus(ctx context.Context, appointment *model.Appointment, expected model.AppointmentStatus) error {
	query := `
		UPDATE appointments
		SET status = $1, cancel_reason = $2, outcome = $3, notes = $4, updated_at = $5
		WHERE id = $6 AND status = $7
	`
	result, err := r.db.ExecContext(ctx, query,
		appointment.Status,
		appointment.CancelReason,
		appointment.Outcome,
		appointment.Notes,
		appointment.UpdatedAt,
		appointment.ID,
		expected,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrStatusChanged
	}

	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
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

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters.ClinicID != uuid.Nil {
		query += fmt.Sprintf(" AND clinic_id = $%d", argCount)
		args = append(args, filters.ClinicID)
		argCount++
	}
	if filters.ClinicianID != uuid.Nil {
		query += fmt.Sprintf(" AND clinician_id = $%d", argCount)
		args = append(args, filters.ClinicianID)
		argCount++
	}
	if filters.PatientID != uuid.Nil {
		query += fmt.Sprintf(" AND patient_id = $%d", argCount)
		args = append(args, filters.PatientID)
		argCount++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}
	if !filters.StartDate.IsZero() {
		query += fmt.Sprintf(" AND scheduled_at >= $%d", argCount)
		args = append(args, filters.StartDate)
		argCount++
	}
	if !filters.EndDate.IsZero() {
		query += fmt.Sprintf(" AND scheduled_at <= $%d", argCount)
		args = append(args, filters.EndDate)
		argCount++
	}

	filters.Pagination.Normalize()
	query += appointmentOrderClause(filters.Sort)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, filters.Pagination.PageSize, filters.Pagination.Offset())

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// Columns List may sort on; anything else falls back to scheduled_at. The
// clause is built from this whitelist, never from caller input directly.
var appointmentSortFields = map[string]string{
	"scheduled_at": "scheduled_at",
	"created_at":   "created_at",
	"fee":          "fee",
}

func appointmentOrderClause(sort model.SortOrder) string {
	field, ok := appointmentSortFields[sort.Field]
	if !ok {
		field = "scheduled_at"
	}
	dir := "ASC"
	if strings.EqualFold(sort.Dir, "desc") {
		dir = "DESC"
	}
	return " ORDER BY " + field + " " + dir
}

func (r *appointmentRepository) ClinicianHasConflict(ctx context.Context, clinicianID uuid.UUID, scheduledAt time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE clinician_id = $1
			AND scheduled_at = $2
			AND status != 'cancelled'
		)
	`
	var hasConflict bool
	err := r.db.GetContext(ctx, &hasConflict, query, clinicianID, scheduledAt)
	if err != nil {
		return false, fmt.Errorf("failed to check clinician conflicts: %w", err)
	}
	return hasConflict, nil
}

func (r *appointmentRepository) PatientHasConflict(ctx context.Context, patientID uuid.UUID, windowStart, windowEnd time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE patient_id = $1
			AND scheduled_at BETWEEN $2 AND $3
			AND status != 'cancelled'
		)
	`
	var hasConflict bool
	err := r.db.GetContext(ctx, &hasConflict, query, patientID, windowStart, windowEnd)
	if err != nil {
		return false, fmt.Errorf("failed to check patient conflicts: %w", err)
	}
	return hasConflict, nil
}

func (r *appointmentRepository) ExistsForClinician(ctx context.Context, clinicianID uuid.UUID) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM appointments WHERE clinician_id = $1)`, clinicianID)
}

func (r *appointmentRepository) ExistsForPatient(ctx context.Context, patientID uuid.UUID) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM appointments WHERE patient_id = $1)`, patientID)
}

func (r *appointmentRepository) ExistsForClinic(ctx context.Context, clinicID uuid.UUID) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM appointments WHERE clinic_id = $1)`, clinicID)
}

func (r *appointmentRepository) exists(ctx context.Context, query string, id uuid.UUID) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("failed to check appointment existence: %w", err)
	}
	return exists, nil
}
