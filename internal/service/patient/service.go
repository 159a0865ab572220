package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/scheduling-api/internal/model"
	"github.com/clinicore/scheduling-api/internal/repository"
)

var (
	ErrNotFound        = errors.New("patient not found")
	ErrDuplicate       = errors.New("patient already exists")
	ErrHasAppointments = errors.New("patient still has appointments")
)

type Service struct {
	repo         repository.PatientRepository
	appointments repository.AppointmentRepository
}

func NewService(repo repository.PatientRepository, appointments repository.AppointmentRepository) *Service {
	return &Service{repo: repo, appointments: appointments}
}

func (s *Service) CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	patient := &model.Patient{
		Name:        req.Name,
		Email:       req.Email,
		DateOfBirth: req.DateOfBirth,
		BloodType:   req.BloodType,
		Status:      model.PatientStatusActive,
	}
	patient.ID = uuid.New()
	now := time.Now()
	patient.CreatedAt = now
	patient.UpdatedAt = now

	if err := s.repo.Create(ctx, patient); err != nil {
		if errors.Is(err, repository.ErrDuplicateRecord) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

// DeletePatient removes a patient. Patients referenced by any appointment,
// in any status, cannot be deleted.
func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	referenced, err := s.appointments.ExistsForPatient(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check patient appointments: %w", err)
	}
	if referenced {
		return ErrHasAppointments
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return nil
}

func (s *Service) ListPatients(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	patients, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}
