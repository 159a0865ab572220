package clinician

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/clinicore/scheduling-api/internal/model"
	"github.com/clinicore/scheduling-api/internal/repository"
)

var (
	ErrNotFound        = errors.New("clinician not found")
	ErrDuplicate       = errors.New("clinician already exists")
	ErrHasAppointments = errors.New("clinician still has appointments")
)

const (
	cacheTTL     = 5 * time.Minute
	cacheCleanup = 15 * time.Minute
)

type Service struct {
	repo         repository.ClinicianRepository
	appointments repository.AppointmentRepository
	cache        *cache.Cache
}

func NewService(repo repository.ClinicianRepository, appointments repository.AppointmentRepository) *Service {
	return &Service{
		repo:         repo,
		appointments: appointments,
		cache:        cache.New(cacheTTL, cacheCleanup),
	}
}

func (s *Service) CreateClinician(ctx context.Context, req *model.CreateClinicianRequest) (*model.Clinician, error) {
	clinician := &model.Clinician{
		Name:      req.Name,
		Email:     req.Email,
		CRM:       req.CRM,
		Specialty: req.Specialty,
		Status:    model.ClinicianStatusActive,
	}
	clinician.ID = uuid.New()
	now := time.Now()
	clinician.CreatedAt = now
	clinician.UpdatedAt = now

	if err := s.repo.Create(ctx, clinician); err != nil {
		if errors.Is(err, repository.ErrDuplicateRecord) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create clinician: %w", err)
	}

	s.cache.Set(clinician.ID.String(), clinician, cache.DefaultExpiration)
	return clinician, nil
}

func (s *Service) GetClinician(ctx context.Context, id uuid.UUID) (*model.Clinician, error) {
	if cached, found := s.cache.Get(id.String()); found {
		return cached.(*model.Clinician), nil
	}

	clinician, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get clinician: %w", err)
	}

	s.cache.Set(id.String(), clinician, cache.DefaultExpiration)
	return clinician, nil
}

// DeleteClinician removes a clinician. Clinicians referenced by any
// appointment cannot be deleted.
func (s *Service) DeleteClinician(ctx context.Context, id uuid.UUID) error {
	referenced, err := s.appointments.ExistsForClinician(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check clinician appointments: %w", err)
	}
	if referenced {
		return ErrHasAppointments
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete clinician: %w", err)
	}

	s.cache.Delete(id.String())
	return nil
}

func (s *Service) ListClinicians(ctx context.Context, filters *model.ClinicianFilters) ([]*model.Clinician, error) {
	clinicians, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list clinicians: %w", err)
	}
	return clinicians, nil
}
