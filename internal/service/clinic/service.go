package clinic

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
	ErrNotFound        = errors.New("clinic not found")
	ErrDuplicate       = errors.New("clinic already exists")
	ErrHasAppointments = errors.New("clinic still has appointments")
)

type Service struct {
	repo         repository.ClinicRepository
	appointments repository.AppointmentRepository
	cache        *cache.Cache
}

func NewService(repo repository.ClinicRepository, appointments repository.AppointmentRepository) *Service {
	return &Service{
		repo:         repo,
		appointments: appointments,
		cache:        cache.New(5*time.Minute, 15*time.Minute),
	}
}

func (s *Service) CreateClinic(ctx context.Context, req *model.CreateClinicRequest) (*model.Clinic, error) {
	clinic := &model.Clinic{
		Name:     req.Name,
		CNPJ:     req.CNPJ,
		Location: req.Location,
		Status:   "active",
	}
	clinic.ID = uuid.New()
	now := time.Now()
	clinic.CreatedAt = now
	clinic.UpdatedAt = now

	if err := s.repo.Create(ctx, clinic); err != nil {
		if errors.Is(err, repository.ErrDuplicateRecord) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create clinic: %w", err)
	}

	s.cache.Set(clinic.ID.String(), clinic, cache.DefaultExpiration)
	return clinic, nil
}

func (s *Service) GetClinic(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	if cached, found := s.cache.Get(id.String()); found {
		return cached.(*model.Clinic), nil
	}

	clinic, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}

	s.cache.Set(id.String(), clinic, cache.DefaultExpiration)
	return clinic, nil
}

func (s *Service) DeleteClinic(ctx context.Context, id uuid.UUID) error {
	referenced, err := s.appointments.ExistsForClinic(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check clinic appointments: %w", err)
	}
	if referenced {
		return ErrHasAppointments
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete clinic: %w", err)
	}

	s.cache.Delete(id.String())
	return nil
}

func (s *Service) ListClinics(ctx context.Context) ([]*model.Clinic, error) {
	clinics, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clinics: %w", err)
	}
	return clinics, nil
}
