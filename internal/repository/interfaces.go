package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/scheduling-api/internal/model"
)

// Sentinel errors shared by all repository implementations. The two slot
// errors are raised by the storage uniqueness guard when a concurrent insert
// loses the race for the same clinician slot or patient day.
var (
	ErrNotFound             = errors.New("record not found")
	ErrClinicianSlotTaken   = errors.New("clinician slot already booked")
	ErrPatientDayTaken      = errors.New("patient already booked for that day")
	ErrStatusChanged        = errors.New("record status changed concurrently")
	ErrHasAppointments      = errors.New("record is still referenced by appointments")
	ErrDuplicateRecord      = errors.New("record already exists")
)

// All repository interfaces in one file
type (
	AppointmentRepository interface {
		// Create persists a new appointment. The underlying storage enforces
		// uniqueness of (clinician_id, scheduled_at) and (patient_id, day)
		// over non-cancelled rows; violations surface as ErrClinicianSlotTaken
		// and ErrPatientDayTaken.
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		// UpdateStatus transitions status from expected to next in a single
		// guarded statement, returning ErrStatusChanged when the row is no
		// longer in the expected status.
		UpdateStatus(ctx context.Context, appointment *model.Appointment, expected model.AppointmentStatus) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		ClinicianHasConflict(ctx context.Context, clinicianID uuid.UUID, scheduledAt time.Time) (bool, error)
		PatientHasConflict(ctx context.Context, patientID uuid.UUID, windowStart, windowEnd time.Time) (bool, error)
		ExistsForClinician(ctx context.Context, clinicianID uuid.UUID) (bool, error)
		ExistsForPatient(ctx context.Context, patientID uuid.UUID) (bool, error)
		ExistsForClinic(ctx context.Context, clinicID uuid.UUID) (bool, error)
	}

	ClinicianRepository interface {
		Create(ctx context.Context, clinician *model.Clinician) error
		Get(ctx context.Context, id uuid.UUID) (*model.Clinician, error)
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.ClinicianFilters) ([]*model.Clinician, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
	}

	ClinicRepository interface {
		Create(ctx context.Context, clinic *model.Clinic) error
		Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Clinic, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
