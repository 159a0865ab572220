package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/scheduling-api/internal/model"
	"github.com/clinicore/scheduling-api/internal/repository"
	"github.com/clinicore/scheduling-api/pkg/logger"
	"github.com/clinicore/scheduling-api/pkg/metrics"
)

// Config holds the clinic operating window used for the patient
// same-day conflict check.
type Config struct {
	OpeningHour int
	ClosingHour int
}

// Service is the sole entry point for creating and transitioning
/// appointments. It is safe for concurrent use: the rule chain and clock are
// stateless, and the storage layer's uniqueness guard settles create races.
type Service struct {
	appointments repository.AppointmentRepository
	clinicians   repository.ClinicianRepository
	patients     repository.PatientRepository
	clinics      repository.ClinicRepository
	outbox       repository.OutboxRepository
	chain        *Chain
	clock        Clock
	cfg          Config
	metrics      *metrics.Metrics
	logger       *logger.Logger
}

func NewService(
	appointments repository.AppointmentRepository,
	clinicians repository.ClinicianRepository,
	patients repository.PatientRepository,
	clinics repository.ClinicRepository,
	outbox repository.OutboxRepository,
	chain *Chain,
	clock Clock,
	cfg Config,
	m *metrics.Metrics,
	l *logger.Logger,
) *Service {
	return &Service{
		appointments: appointments,
		clinicians:   clinicians,
		patients:     patients,
		clinics:      clinics,
		outbox:       outbox,
		chain:        chain,
		clock:        clock,
		cfg:          cfg,
		metrics:      m,
		logger:       l,
	}
}

// CreateAppointment validates the proposal and persists it. Preconditions run
// in a fixed order and the first failure wins; the storage uniqueness guard
// is the backstop for concurrent proposals that pass the checks together.
func (s *Service) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	// Callers may express the timestamp in any UTC offset; all window and
	// rule evaluation, and the persisted value, use the canonical zone.
	req.ScheduledAt = req.ScheduledAt.In(s.clock.Location())

	patient, err := s.patients.Get(ctx, req.PatientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to load patient: %w", err)
	}
	if patient.Status == model.PatientStatusInactive {
		return nil, ErrPatientInactive
	}

	windowStart, windowEnd := s.operatingWindow(req.ScheduledAt)
	patientBusy, err := s.appointments.PatientHasConflict(ctx, req.PatientID, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to check patient conflicts: %w", err)
	}
	if patientBusy {
		s.metrics.BookingConflicts.WithLabelValues("patient_day").Inc()
		return nil, ErrPatientDoubleBooked
	}

	clinician, err := s.clinicians.Get(ctx, req.ClinicianID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClinicianNotFound
		}
		return nil, fmt.Errorf("failed to load clinician: %w", err)
	}
	if !clinician.Qualified() {
		return nil, ErrClinicianNotQualified
	}

	clinicianBusy, err := s.appointments.ClinicianHasConflict(ctx, req.ClinicianID, req.ScheduledAt)
	if err != nil {
		return nil, fmt.Errorf("failed to check clinician conflicts: %w", err)
	}
	if clinicianBusy {
		s.metrics.BookingConflicts.WithLabelValues("clinician_slot").Inc()
		return nil, ErrClinicianDoubleBooked
	}

	if _, err := s.clinics.Get(ctx, req.ClinicID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClinicNotFound
		}
		return nil, fmt.Errorf("failed to load clinic: %w", err)
	}

	if err := s.chain.Validate(req); err != nil {
		var rv *RuleViolationError
		if errors.As(err, &rv) {
			s.metrics.RuleRejections.WithLabelValues(rv.Rule).Inc()
		}
		return nil, err
	}

	now := s.clock.Now()
	apt := &model.Appointment{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ClinicID:      req.ClinicID,
		ClinicianID:   req.ClinicianID,
		PatientID:     req.PatientID,
		ScheduledAt:   req.ScheduledAt,
		EncounterType: req.EncounterType,
		Fee:           req.Fee,
		Location:      req.Location,
		Status:        model.AppointmentStatusScheduled,
		Notes:         req.Notes,
	}

	if err := s.appointments.Create(ctx, apt); err != nil {
		// Race loser: a concurrent create took the slot between the checks
		// above and this insert.
		switch {
		case errors.Is(err, repository.ErrClinicianSlotTaken):
			s.metrics.BookingConflicts.WithLabelValues("clinician_slot").Inc()
			return nil, ErrClinicianDoubleBooked
		case errors.Is(err, repository.ErrPatientDayTaken):
			s.metrics.BookingConflicts.WithLabelValues("patient_day").Inc()
			return nil, ErrPatientDoubleBooked
		}
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.metrics.AppointmentsCreated.Inc()
	s.publishEvent(ctx, model.EventAppointmentCreated, apt)

	return apt, nil
}

// CompleteAppointment closes out a scheduled appointment with its outcome.
// Completed and cancelled appointments cannot be completed again.
func (s *Service) CompleteAppointment(ctx context.Context, id uuid.UUID, req *model.CompleteAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.getAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if apt.Status != model.AppointmentStatusScheduled {
		return nil, ErrInvalidStateTransition
	}

	apt.Status = model.AppointmentStatusCompleted
	apt.Outcome = &req.Outcome
	if req.Notes != nil {
		apt.Notes = req.Notes
	}
	apt.UpdatedAt = s.clock.Now()

	if err := s.appointments.UpdateStatus(ctx, apt, model.AppointmentStatusScheduled); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, ErrInvalidStateTransition
		}
		return nil, fmt.Errorf("failed to complete appointment: %w", err)
	}

	s.metrics.StatusTransitions.WithLabelValues(string(model.AppointmentStatusCompleted)).Inc()
	s.publishEvent(ctx, model.EventAppointmentCompleted, apt)

	return apt, nil
}

// UpdateAppointment changes timestamp, fee, outcome notes or remarks on a
// scheduled appointment. Moving the timestamp re-runs conflict detection and
// the rule chain against the new slot.
func (s *Service) UpdateAppointment(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.getAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if apt.Status != model.AppointmentStatusScheduled {
		return nil, ErrInvalidStateTransition
	}

	if req.ScheduledAt != nil && !req.ScheduledAt.Equal(apt.ScheduledAt) {
		newTime := req.ScheduledAt.In(s.clock.Location())
		if err := s.validateReschedule(ctx, apt, newTime); err != nil {
			return nil, err
		}
		apt.ScheduledAt = newTime
	}
	if req.Fee != nil {
		apt.Fee = *req.Fee
	}
	if req.Outcome != nil {
		apt.Outcome = req.Outcome
	}
	if req.Notes != nil {
		apt.Notes = req.Notes
	}
	apt.UpdatedAt = s.clock.Now()

	if err := s.appointments.Update(ctx, apt); err != nil {
		switch {
		case errors.Is(err, repository.ErrClinicianSlotTaken):
			s.metrics.BookingConflicts.WithLabelValues("clinician_slot").Inc()
			return nil, ErrClinicianDoubleBooked
		case errors.Is(err, repository.ErrPatientDayTaken):
			s.metrics.BookingConflicts.WithLabelValues("patient_day").Inc()
			return nil, ErrPatientDoubleBooked
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	s.publishEvent(ctx, model.EventAppointmentUpdated, apt)

	return apt, nil
}

func (s *Service) validateReschedule(ctx context.Context, apt *model.Appointment, newTime time.Time) error {
	clinicianBusy, err := s.appointments.ClinicianHasConflict(ctx, apt.ClinicianID, newTime)
	if err != nil {
		return fmt.Errorf("failed to check clinician conflicts: %w", err)
	}
	if clinicianBusy {
		s.metrics.BookingConflicts.WithLabelValues("clinician_slot").Inc()
		return ErrClinicianDoubleBooked
	}

	proposal := &model.CreateAppointmentRequest{
		ClinicianID:   apt.ClinicianID,
		PatientID:     apt.PatientID,
		ClinicID:      apt.ClinicID,
		ScheduledAt:   newTime,
		EncounterType: apt.EncounterType,
		Fee:           apt.Fee,
		Location:      apt.Location,
	}
	if err := s.chain.Validate(proposal); err != nil {
		var rv *RuleViolationError
		if errors.As(err, &rv) {
			s.metrics.RuleRejections.WithLabelValues(rv.Rule).Inc()
		}
		return err
	}
	return nil
}

// CancelAppointment transitions a scheduled appointment to cancelled,
// keeping the record for audit. Cancelled slots no longer count as conflicts.
func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID, reason string) (*model.Appointment, error) {
	apt, err := s.getAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if apt.Status != model.AppointmentStatusScheduled {
		return nil, ErrInvalidStateTransition
	}

	apt.Status = model.AppointmentStatusCancelled
	apt.CancelReason = &reason
	apt.UpdatedAt = s.clock.Now()

	if err := s.appointments.UpdateStatus(ctx, apt, model.AppointmentStatusScheduled); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, ErrInvalidStateTransition
		}
		return nil, fmt.Errorf("failed to cancel appointment: %w", err)
	}

	s.metrics.StatusTransitions.WithLabelValues(string(model.AppointmentStatusCancelled)).Inc()
	s.publishEvent(ctx, model.EventAppointmentCancelled, apt)

	return apt, nil
}

// DeleteAppointment removes the record outright, from any status.
func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	apt, err := s.getAppointment(ctx, id)
	if err != nil {
		return err
	}

	if err := s.appointments.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAppointmentNotFound
		}
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	s.publishEvent(ctx, model.EventAppointmentDeleted, apt)

	return nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.getAppointment(ctx, id)
}

func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.appointments.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (s *Service) getAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return apt, nil
}

// operatingWindow returns the clinic's bookable window on the proposal's
// calendar day. A patient holding any non-cancelled appointment inside this
// window is considered double-booked for that day.
func (s *Service) operatingWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), s.cfg.OpeningHour, 0, 0, 0, t.Location())
	end := time.Date(t.Year(), t.Month(), t.Day(), s.cfg.ClosingHour, 59, 59, 0, t.Location())
	return start, end
}

// publishEvent records a lifecycle event in the outbox for asynchronous
// delivery. Event recording never fails the scheduling operation.
func (s *Service) publishEvent(ctx context.Context, eventType string, apt *model.Appointment) {
	payload, err := json.Marshal(apt)
	if err != nil {
		s.logger.Error(err, "failed to marshal appointment event", "event_type", eventType)
		return
	}

	event := &model.OutboxEvent{
		EventType: eventType,
		Payload:   payload,
	}
	if err := s.outbox.Create(ctx, event); err != nil {
		s.logger.Error(err, "failed to record outbox event", "event_type", eventType, "appointment_id", apt.ID)
		return
	}
	s.logger.Debug("recorded appointment event", "event_type", eventType, "appointment_id", apt.ID)
}
