package scheduling

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/scheduling-api/internal/model"
	"github.com/clinicore/scheduling-api/internal/repository"
	"github.com/clinicore/scheduling-api/pkg/logger"
	"github.com/clinicore/scheduling-api/pkg/metrics"
)

// fakeAppointmentRepo is an in-memory AppointmentRepository that enforces the
// same uniqueness guards as the storage layer, under a mutex so concurrent
// create races settle the way the database would.
type fakeAppointmentRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*model.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{items: make(map[uuid.UUID]*model.Appointment)}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (r *fakeAppointmentRepo) Create(_ context.Context, apt *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Status == model.AppointmentStatusCancelled {
			continue
		}
		if existing.ClinicianID == apt.ClinicianID && existing.ScheduledAt.Equal(apt.ScheduledAt) {
			return repository.ErrClinicianSlotTaken
		}
		if existing.PatientID == apt.PatientID && sameDay(existing.ScheduledAt, apt.ScheduledAt) {
			return repository.ErrPatientDayTaken
		}
	}

	copied := *apt
	r.items[apt.ID] = &copied
	return nil
}

func (r *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	apt, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *apt
	return &copied, nil
}

func (r *fakeAppointmentRepo) Update(_ context.Context, apt *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[apt.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *apt
	r.items[apt.ID] = &copied
	return nil
}

func (r *fakeAppointmentRepo) UpdateStatus(_ context.Context, apt *model.Appointment, expected model.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[apt.ID]
	if !ok || current.Status != expected {
		return repository.ErrStatusChanged
	}
	copied := *apt
	r.items[apt.ID] = &copied
	return nil
}

func (r *fakeAppointmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeAppointmentRepo) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*model.Appointment, 0, len(r.items))
	for _, apt := range r.items {
		copied := *apt
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeAppointmentRepo) ClinicianHasConflict(_ context.Context, clinicianID uuid.UUID, scheduledAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, apt := range r.items {
		if apt.Status == model.AppointmentStatusCancelled {
			continue
		}
		if apt.ClinicianID == clinicianID && apt.ScheduledAt.Equal(scheduledAt) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAppointmentRepo) PatientHasConflict(_ context.Context, patientID uuid.UUID, windowStart, windowEnd time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, apt := range r.items {
		if apt.Status == model.AppointmentStatusCancelled {
			continue
		}
		if apt.PatientID != patientID {
			continue
		}
		if !apt.ScheduledAt.Before(windowStart) && !apt.ScheduledAt.After(windowEnd) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAppointmentRepo) ExistsForClinician(_ context.Context, clinicianID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, apt := range r.items {
		if apt.ClinicianID == clinicianID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAppointmentRepo) ExistsForPatient(_ context.Context, patientID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, apt := range r.items {
		if apt.PatientID == patientID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAppointmentRepo) ExistsForClinic(_ context.Context, clinicID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, apt := range r.items {
		if apt.ClinicID == clinicID {
			return true, nil
		}
	}
	return false, nil
}

type fakeClinicianRepo struct {
	items map[uuid.UUID]*model.Clinician
}

func (r *fakeClinicianRepo) Create(_ context.Context, c *model.Clinician) error {
	r.items[c.ID] = c
	return nil
}

func (r *fakeClinicianRepo) Get(_ context.Context, id uuid.UUID) (*model.Clinician, error) {
	c, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

func (r *fakeClinicianRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.items, id)
	return nil
}

func (r *fakeClinicianRepo) List(_ context.Context, _ *model.ClinicianFilters) ([]*model.Clinician, error) {
	return nil, nil
}

type fakePatientRepo struct {
	items map[uuid.UUID]*model.Patient
}

func (r *fakePatientRepo) Create(_ context.Context, p *model.Patient) error {
	r.items[p.ID] = p
	return nil
}

func (r *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (r *fakePatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.items, id)
	return nil
}

func (r *fakePatientRepo) List(_ context.Context, _ *model.PatientFilters) ([]*model.Patient, error) {
	return nil, nil
}

type fakeClinicRepo struct {
	items map[uuid.UUID]*model.Clinic
}

func (r *fakeClinicRepo) Create(_ context.Context, c *model.Clinic) error {
	r.items[c.ID] = c
	return nil
}

func (r *fakeClinicRepo) Get(_ context.Context, id uuid.UUID) (*model.Clinic, error) {
	c, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

func (r *fakeClinicRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.items, id)
	return nil
}

func (r *fakeClinicRepo) List(_ context.Context) ([]*model.Clinic, error) {
	return nil, nil
}

type fakeOutboxRepo struct {
	mu     sync.Mutex
	events []*model.OutboxEvent
}

func (r *fakeOutboxRepo) Create(_ context.Context, e *model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *fakeOutboxRepo) GetPendingEvents(_ context.Context, _ int) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) MarkProcessed(_ context.Context, _ uuid.UUID) error { return nil }

func (r *fakeOutboxRepo) MarkFailed(_ context.Context, _ uuid.UUID, _ string) error { return nil }

func (r *fakeOutboxRepo) DeleteProcessedBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (r *fakeOutboxRepo) eventTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.events))
	for i, e := range r.events {
		types[i] = e.EventType
	}
	return types
}

type fixture struct {
	service      *Service
	appointments *fakeAppointmentRepo
	clinicians   *fakeClinicianRepo
	patients     *fakePatientRepo
	clinics      *fakeClinicRepo
	outbox       *fakeOutboxRepo

	now       time.Time
	clinician *model.Clinician
	patient   *model.Patient
	clinic    *model.Clinic
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	clock := fixedClock{now: now}

	specialty := "cardiology"
	clinician := &model.Clinician{
		Base:      model.Base{ID: uuid.New()},
		Name:      "Dr. Helena Souza",
		Email:     "helena@clinic.test",
		CRM:       "CRM-12345",
		Specialty: &specialty,
		Status:    model.ClinicianStatusActive,
	}
	patient := &model.Patient{
		Base:   model.Base{ID: uuid.New()},
		Name:   "Carlos Lima",
		Email:  "carlos@patient.test",
		Status: model.PatientStatusActive,
	}
	clinic := &model.Clinic{
		Base:     model.Base{ID: uuid.New()},
		Name:     "Central Clinic",
		CNPJ:     "00.000.000/0001-00",
		Location: "Recife",
		Status:   "active",
	}

	f := &fixture{
		appointments: newFakeAppointmentRepo(),
		clinicians:   &fakeClinicianRepo{items: map[uuid.UUID]*model.Clinician{clinician.ID: clinician}},
		patients:     &fakePatientRepo{items: map[uuid.UUID]*model.Patient{patient.ID: patient}},
		clinics:      &fakeClinicRepo{items: map[uuid.UUID]*model.Clinic{clinic.ID: clinic}},
		outbox:       &fakeOutboxRepo{},
		now:          now,
		clinician:    clinician,
		patient:      patient,
		clinic:       clinic,
	}

	chain := NewChain(
		NewLeadTimeRule(clock, 30*time.Minute),
		NewOperatingHoursRule(clock, 7, 18),
	)

	m := metrics.New("scheduling_test", prometheus.NewRegistry())
	l := logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})

	f.service = NewService(
		f.appointments,
		f.clinicians,
		f.patients,
		f.clinics,
		f.outbox,
		chain,
		clock,
		Config{OpeningHour: 7, ClosingHour: 18},
		m,
		l,
	)
	return f
}

func (f *fixture) request() *model.CreateAppointmentRequest {
	return &model.CreateAppointmentRequest{
		ClinicianID:   f.clinician.ID,
		PatientID:     f.patient.ID,
		ClinicID:      f.clinic.ID,
		ScheduledAt:   f.now.Add(2 * time.Hour),
		EncounterType: model.EncounterTypeConsultation,
		Fee:           150,
		Location:      "Room 3",
	}
}

func TestCreateAppointment(t *testing.T) {
	f := newFixture(t)

	apt, err := f.service.CreateAppointment(context.Background(), f.request())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, apt.ID)
	assert.Equal(t, model.AppointmentStatusScheduled, apt.Status)
	assert.Equal(t, f.now, apt.CreatedAt)
	assert.Equal(t, []string{model.EventAppointmentCreated}, f.outbox.eventTypes())
}

func TestCreateAppointmentUnknownPatient(t *testing.T) {
	f := newFixture(t)

	req := f.request()
	req.PatientID = uuid.New()

	_, err := f.service.CreateAppointment(context.Background(), req)
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestCreateAppointmentInactivePatient(t *testing.T) {
	f := newFixture(t)
	f.patient.Status = model.PatientStatusInactive

	_, err := f.service.CreateAppointment(context.Background(), f.request())
	assert.ErrorIs(t, err, ErrPatientInactive)
}

func TestCreateAppointmentUnknownClinician(t *testing.T) {
	f := newFixture(t)

	req := f.request()
	req.ClinicianID = uuid.New()

	_, err := f.service.CreateAppointment(context.Background(), req)
	assert.ErrorIs(t, err, ErrClinicianNotFound)
}

func TestCreateAppointmentUnqualifiedClinician(t *testing.T) {
	f := newFixture(t)
	f.clinician.Specialty = nil

	_, err := f.service.CreateAppointment(context.Background(), f.request())
	assert.ErrorIs(t, err, ErrClinicianNotQualified)
}

func TestCreateAppointmentUnknownClinic(t *testing.T) {
	f := newFixture(t)

	req := f.request()
	req.ClinicID = uuid.New()

	_, err := f.service.CreateAppointment(context.Background(), req)
	assert.ErrorIs(t, err, ErrClinicNotFound)
}

func TestCreateAppointmentClinicianDoubleBooked(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CreateAppointment(context.Background(), f.request())
	require.NoError(t, err)

	// Second patient wants the same clinician at the same instant.
	other := &model.Patient{
		Base:   model.Base{ID: uuid.New()},
		Name:   "Ana Reis",
		Email:  "ana@patient.test",
		Status: model.PatientStatusActive,
	}
	f.patients.items[other.ID] = other

	req := f.request()
	req.PatientID = other.ID

	_, err = f.service.CreateAppointment(context.Background(), req)
	assert.ErrorIs(t, err, ErrClinicianDoubleBooked)
}

func TestCreateAppointmentPatientDoubleBookedSameDay(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CreateAppointment(context.Background(), f.request())
	require.NoError(t, err)

	// Same patient, different clinician, different hour on the same day.
	specialty := "dermatology"
	other := &model.Clinician{
		Base:      model.Base{ID: uuid.New()},
		Name:      "Dr. Bruno Costa",
		Email:     "bruno@clinic.test",
		CRM:       "CRM-67890",
		Specialty: &specialty,
		Status:    model.ClinicianStatusActive,
	}
	f.clinicians.items[other.ID] = other

	req := f.request()
	req.ClinicianID = other.ID
	req.ScheduledAt = f.now.Add(6 * time.Hour)

	_, err = f.service.CreateAppointment(context.Background(), req)
	assert.ErrorIs(t, err, ErrPatientDoubleBooked)
}

func TestCreateAppointmentNextDayAllowed(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CreateAppointment(context.Background(), f.request())
	require.NoError(t, err)

	req := f.request()
	req.ScheduledAt = f.now.Add(26 * time.Hour)

	_, err = f.service.CreateAppointment(context.Background(), req)
	assert.NoError(t, err)
}

func TestCreateAppointmentCancelledSlotReusable(t *testing.T) {
	f := newFixture(t)

	apt, err := f.service.CreateAppointment(context.Background(), f.request())
	require.NoError(t, err)

	_, err = f.service.CancelAppointment(context.Background(), apt.ID, "patient request")
	require.NoError(t, err)

	_, err = f.service.CreateAppointment(context.Background(), f.request())
	assert.NoError(t, err)
}

func TestCreateAppointmentPreconditionOrder(t *testing.T) {
	f := newFixture(t)

	// An inactive patient and an unqualified clinician together: the patient
	// check runs first, so its error wins.
	f.patient.Status = model.PatientStatusInactive
	f.clinician.Specialty = nil

	_, err := f.service.CreateAppointment(context.Background(), f.request())
	assert.ErrorIs(t, err, ErrPatientInactive)
}

func TestCreateAppointmentRuleRejections(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name        string
		scheduledAt time.Time
		wantRule    string
	}{
		{"too soon", f.now.Add(10 * time.Minute), "lead_time"},
		{"before opening", f.now.Add(46 * time.Hour), "operating_hours"}, // 06:00 two days on
		{"after closing", f.now.Add(11 * time.Hour), "operating_hours"},  // 19:00 same day
		{"sunday", f.now.Add(6 * 24 * time.Hour), "operating_hours"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.request()
			req.ScheduledAt = tt.scheduledAt

			_, err := f.service.CreateAppointment(context.Background(), req)
			require.Error(t, err)

			var rv *RuleViolationError
			require.ErrorAs(t, err, &rv)
			assert.Equal(t, tt.wantRule, rv.Rule)
		})
	}
}

func TestCreateAppointmentNormalizesCallerOffset(t *testing.T) {
	f := newFixture(t)
	tokyo := time.FixedZone("+09:00", 9*60*60)

	// A valid slot expressed in a foreign offset is accepted and persisted
	// in the canonical zone.
	req := f.request()
	req.ScheduledAt = req.ScheduledAt.In(tokyo)

	apt, err := f.service.CreateAppointment(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, f.now.Location(), apt.ScheduledAt.Location())

	// An after-closing clinic-time slot stays rejected even when the
	// caller's offset makes it read as mid-morning.
	late := f.request()
	late.ScheduledAt = f.now.Add(11 * time.Hour).In(tokyo) // 19:00 clinic time

	_, err = f.service.CreateAppointment(context.Background(), late)
	require.Error(t, err)

	var rv *RuleViolationError
	require.ErrorAs(t, err, &rv)
	assert.Equal(t, "operating_hours", rv.Rule)
}

func TestCreateAppointmentPatientDayConflictAcrossOffsets(t *testing.T) {
	f := newFixture(t)
	tokyo := time.FixedZone("+09:00", 9*60*60)

	_, err := f.service.CreateAppointment(context.Background(), f.request())
	require.NoError(t, err)

	specialty := "dermatology"
	other := &model.Clinician{
		Base:      model.Base{ID: uuid.New()},
		Name:      "Dr. Bruno Costa",
		Email:     "bruno@clinic.test",
		CRM:       "CRM-67890",
		Specialty: &specialty,
		Status:    model.ClinicianStatusActive,
	}
	f.clinicians.items[other.ID] = other

	// Same clinic day for the same patient, sent with an offset under which
	// the timestamp reads as a different calendar day.
	req := f.request()
	req.ClinicianID = other.ID
	req.ScheduledAt = f.now.Add(8 * time.Hour).In(tokyo) // 16:00 clinic time

	_, err = f.service.CreateAppointment(context.Background(), req)
	assert.ErrorIs(t, err, ErrPatientDoubleBooked)
}

func TestCreateAppointmentRaceLoserGetsDoubleBooked(t *testing.T) {
	f := newFixture(t)

	const attempts = 8
	req := f.request()

	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.service.CreateAppointment(context.Background(), req)
		}(i)
	}
	wg.Wait()

	var created, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrClinicianDoubleBooked), errors.Is(err, ErrPatientDoubleBooked):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, conflicts)
}

func TestCompleteAppointment(t *testing.T) {
	f := newFixture(t)

	apt, err := f.service.CreateAppointment(context.Background(), f.request())
	require.NoError(t, err)

	notes := "follow up in six months"
	completed, err := f.service.CompleteAppointment(context.Background(), apt.ID, &model.CompleteAppointmentRequest{
		Outcome: "routine exam, no findings",
		Notes:   &notes,
	})
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusCompleted, completed.Status)
	require.NotNil(t, completed.Outcome)
	assert.Equal(t, "routine exam, no findings", *completed.Outcome)
	assert.Contains(t, f.outbox.eventTypes(), model.EventAppointmentCompleted)
}

func TestCompleteAppointmentTerminalStates(t *testing.T) {
	f := newFixture(t)

	apt, err := f.service.CreateAppointment(context.Background(), f.request())
	require.NoError(t, err)

	_, err = f.service.CompleteAppointment(context.Background(), apt.ID, &model.CompleteAppointmentRequest{Outcome: "done"})
	require.NoError(t, err)

	// Completing twice, or cancelling after completion, is rejected.
	_, err = f.service.CompleteAppointment(context.Background(), apt.ID, &model.CompleteAppointmentRequest{Outcome: "again"})
	assert.ErrorIs(t, err, ErrInvalidStateTransition)

	_, err = f.service.CancelAppointment(context.Background(), apt.ID, "changed my mind")
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestCancelAppointment(t *testing.T) {
	f := newFixture(t)

	apt, err := f.service.CreateAppointment(context.Background(), f.request())
	require.NoError(t, err)

	cancelled, err := f.service.CancelAppointment(context.Background(), apt.ID, "patient request")
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelReason)
	assert.Equal(t, "patient request", *cancelled.CancelReason)

	// Cancelled is terminal.
	_, err = f.service.CancelAppointment(context.Background(), apt.ID, "again")
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
	_, err = f.service.CompleteAppointment(context.Background(), apt.ID, &model.CompleteAppointmentRequest{Outcome: "done"})
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestUpdateAppointmentFields(t *testing.T) {
	f := newFixture(t)

	apt, err := f.service.CreateAppointment(context.Background(), f.request())
	require.NoError(t, err)

	fee := 200.0
	notes := "bring previous exams"
	updated, err := f.service.UpdateAppointment(context.Background(), apt.ID, &model.UpdateAppointmentRequest{
		Fee:   &fee,
		Notes: &notes,
	})
	require.NoError(t, err)

	assert.Equal(t, 200.0, updated.Fee)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, notes, *updated.Notes)
	assert.Equal(t, apt.ScheduledAt, updated.ScheduledAt)
}

func TestUpdateAppointmentReschedule(t *testing.T) {
	f := newFixture(t)

	apt, err := f.service.CreateAppointment(context.Background(), f.request())
	require.NoError(t, err)

	newTime := f.now.Add(5 * time.Hour)
	updated, err := f.service.UpdateAppointment(context.Background(), apt.ID, &model.UpdateAppointmentRequest{
		ScheduledAt: &newTime,
	})
	require.NoError(t, err)
	assert.True(t, updated.ScheduledAt.Equal(newTime))
}

func TestUpdateAppointmentRescheduleRevalidates(t *testing.T) {
	f := newFixture(t)

	apt, err := f.service.CreateAppointment(context.Background(), f.request())
	require.NoError(t, err)

	// Moving outside operating hours is rejected by the rule chain.
	late := f.now.Add(14 * time.Hour) // 22:00
	_, err = f.service.UpdateAppointment(context.Background(), apt.ID, &model.UpdateAppointmentRequest{
		ScheduledAt: &late,
	})
	require.Error(t, err)
	assert.True(t, IsRuleViolation(err))
}

func TestUpdateAppointmentRescheduleConflicts(t *testing.T) {
	f := newFixture(t)

	first, err := f.service.CreateAppointment(context.Background(), f.request())
	require.NoError(t, err)

	other := &model.Patient{
		Base:   model.Base{ID: uuid.New()},
		Name:   "Ana Reis",
		Email:  "ana@patient.test",
		Status: model.PatientStatusActive,
	}
	f.patients.items[other.ID] = other

	req := f.request()
	req.PatientID = other.ID
	req.ScheduledAt = f.now.Add(4 * time.Hour)
	second, err := f.service.CreateAppointment(context.Background(), req)
	require.NoError(t, err)

	// Moving the second appointment onto the first one's slot collides on
	// the clinician.
	_, err = f.service.UpdateAppointment(context.Background(), second.ID, &model.UpdateAppointmentRequest{
		ScheduledAt: &first.ScheduledAt,
	})
	assert.ErrorIs(t, err, ErrClinicianDoubleBooked)
}

func TestUpdateAppointmentTerminalStates(t *testing.T) {
	f := newFixture(t)

	apt, err := f.service.CreateAppointment(context.Background(), f.request())
	require.NoError(t, err)

	_, err = f.service.CancelAppointment(context.Background(), apt.ID, "patient request")
	require.NoError(t, err)

	fee := 99.0
	_, err = f.service.UpdateAppointment(context.Background(), apt.ID, &model.UpdateAppointmentRequest{Fee: &fee})
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestDeleteAppointment(t *testing.T) {
	f := newFixture(t)

	apt, err := f.service.CreateAppointment(context.Background(), f.request())
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteAppointment(context.Background(), apt.ID))

	_, err = f.service.GetAppointment(context.Background(), apt.ID)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	// Deleting again reports not found.
	err = f.service.DeleteAppointment(context.Background(), apt.ID)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestDeleteAppointmentAnyStatus(t *testing.T) {
	f := newFixture(t)

	apt, err := f.service.CreateAppointment(context.Background(), f.request())
	require.NoError(t, err)
	_, err = f.service.CompleteAppointment(context.Background(), apt.ID, &model.CompleteAppointmentRequest{Outcome: "done"})
	require.NoError(t, err)

	assert.NoError(t, f.service.DeleteAppointment(context.Background(), apt.ID))
}
