package scheduling

import (
	"errors"
	"fmt"
)

// Every rejection the engine can produce is one of these typed errors, so
// the transport layer can render a specific message for each outcome.
var (
	ErrClinicianNotFound   = errors.New("clinician not found")
	ErrPatientNotFound     = errors.New("patient not found")
	ErrClinicNotFound      = errors.New("clinic not found")
	ErrAppointmentNotFound = errors.New("appointment not found")

	ErrPatientInactive       = errors.New("patient is inactive")
	ErrClinicianNotQualified = errors.New("clinician has no specialty assigned")

	ErrClinicianDoubleBooked = errors.New("clinician already has an appointment at that time")
	ErrPatientDoubleBooked   = errors.New("patient already has an appointment in that day's operating window")

	ErrInvalidStateTransition = errors.New("appointment status does not permit this transition")
)

// RuleViolationError reports which registered rule rejected a proposal.
type RuleViolationError struct {
	Rule   string
	Reason string
}

func (e *RuleViolationError) Error() string {
	return fmt.Sprintf("rule %s: %s", e.Rule, e.Reason)
}

// IsRuleViolation reports whether err is a rule-chain rejection.
func IsRuleViolation(err error) bool {
	var rv *RuleViolationError
	return errors.As(err, &rv)
}
