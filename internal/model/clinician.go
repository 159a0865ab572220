package model

type ClinicianStatus string

const (
	ClinicianStatusActive   ClinicianStatus = "active"
	ClinicianStatusInactive ClinicianStatus = "inactive"
)

type Clinician struct {
	Base
	Name      string          `db:"name" json:"name"`
	Email     string          `db:"email" json:"email"`
	CRM       string          `db:"crm" json:"crm"`
	Specialty *string         `db:"specialty" json:"specialty,omitempty"`
	Status    ClinicianStatus `db:"status" json:"status"`
}

// Qualified reports whether the clinician may be booked for appointments.
// Clinicians without an assigned specialty are not bookable.
func (c *Clinician) Qualified() bool {
	return c.Specialty != nil && *c.Specialty != ""
}

type CreateClinicianRequest struct {
	Name      string  `json:"name" binding:"required,max=120"`
	Email     string  `json:"email" binding:"required,email"`
	CRM       string  `json:"crm" binding:"required,max=20"`
	Specialty *string `json:"specialty" binding:"omitempty,max=80"`
}

type ClinicianFilters struct {
	Specialty  string
	Status     ClinicianStatus
	Pagination Pagination
}
