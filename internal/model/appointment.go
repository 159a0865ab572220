package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

type EncounterType string

const (
	EncounterTypeConsultation EncounterType = "consultation"
	EncounterTypeFollowup     EncounterType = "followup"
	EncounterTypeEmergency    EncounterType = "emergency"
)

type Appointment struct {
	Base
	ClinicID      uuid.UUID         `db:"clinic_id" json:"clinic_id"`
	ClinicianID   uuid.UUID         `db:"clinician_id" json:"clinician_id"`
	PatientID     uuid.UUID         `db:"patient_id" json:"patient_id"`
	ScheduledAt   time.Time         `db:"scheduled_at" json:"scheduled_at"`
	EncounterType EncounterType     `db:"encounter_type" json:"encounter_type"`
	Fee           float64           `db:"fee" json:"fee"`
	Location      string            `db:"location" json:"location"`
	Status        AppointmentStatus `db:"status" json:"status"`
	CancelReason  *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`
	Outcome       *string           `db:"outcome" json:"outcome,omitempty"`
	Notes         *string           `db:"notes" json:"notes,omitempty"`
}

type CreateAppointmentRequest struct {
	ClinicianID   uuid.UUID     `json:"clinician_id" binding:"required"`
	PatientID     uuid.UUID     `json:"patient_id" binding:"required"`
	ClinicID      uuid.UUID     `json:"clinic_id" binding:"required"`
	ScheduledAt   time.Time     `json:"scheduled_at" binding:"required"`
	EncounterType EncounterType `json:"encounter_type" binding:"required,oneof=consultation followup emergency"`
	Fee           float64       `json:"fee" binding:"gte=0"`
	Location      string        `json:"location" binding:"required,max=120"`
	Notes         *string       `json:"notes" binding:"omitempty,max=255"`
}

type CompleteAppointmentRequest struct {
	Outcome string  `json:"outcome" binding:"required,max=255"`
	Notes   *string `json:"notes" binding:"omitempty,max=255"`
}

type UpdateAppointmentRequest struct {
	ScheduledAt *time.Time `json:"scheduled_at"`
	Fee         *float64   `json:"fee" binding:"omitempty,gte=0"`
	Outcome     *string    `json:"outcome" binding:"omitempty,max=255"`
	Notes       *string    `json:"notes" binding:"omitempty,max=255"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" binding:"required,max=255"`
}

type AppointmentFilters struct {
	ClinicID    uuid.UUID
	ClinicianID uuid.UUID
	PatientID   uuid.UUID
	Status      AppointmentStatus
	StartDate   time.Time
	EndDate     time.Time
	Sort        SortOrder
	Pagination  Pagination
}
