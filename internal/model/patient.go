package model

import "time"

type PatientStatus string

const (
	PatientStatusActive   PatientStatus = "active"
	PatientStatusInactive PatientStatus = "inactive"
)

type Patient struct {
	Base
	Name        string        `db:"name" json:"name"`
	Email       string        `db:"email" json:"email"`
	DateOfBirth *time.Time    `db:"date_of_birth" json:"date_of_birth,omitempty"`
	BloodType   *string       `db:"blood_type" json:"blood_type,omitempty"`
	Status      PatientStatus `db:"status" json:"status"`
}

type CreatePatientRequest struct {
	Name        string     `json:"name" binding:"required,max=120"`
	Email       string     `json:"email" binding:"required,email"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	BloodType   *string    `json:"blood_type" binding:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
}

type PatientFilters struct {
	Status     PatientStatus
	Pagination Pagination
}
