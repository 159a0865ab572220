package scheduling

import (
	"time"

	"github.com/clinicore/scheduling-api/internal/model"
)

// Rule is a single booking predicate. Rules are stateless and freely shared
// across concurrent validations; registering a new rule with the chain is the
// only change needed to extend validation.
type Rule interface {
	Name() string
	Validate(proposal *model.CreateAppointmentRequest) error
}

// Chain runs rules in registration order and fails fast on the first
// rejection, which is reported as a RuleViolationError.
type Chain struct {
	rules []Rule
}

func NewChain(rules ...Rule) *Chain {
	return &Chain{rules: rules}
}

func (c *Chain) Register(rule Rule) {
	c.rules = append(c.rules, rule)
}

func (c *Chain) Validate(proposal *model.CreateAppointmentRequest) error {
	for _, rule := range c.rules {
		if err := rule.Validate(proposal); err != nil {
			return &RuleViolationError{Rule: rule.Name(), Reason: err.Error()}
		}
	}
	return nil
}

// LeadTimeRule rejects proposals scheduled less than the minimum lead time
// from now, measured against the canonical reference clock.
type LeadTimeRule struct {
	clock   Clock
	minLead time.Duration
}

func NewLeadTimeRule(clock Clock, minLead time.Duration) *LeadTimeRule {
	return &LeadTimeRule{clock: clock, minLead: minLead}
}

func (r *LeadTimeRule) Name() string { return "lead_time" }

func (r *LeadTimeRule) Validate(proposal *model.CreateAppointmentRequest) error {
	lead := proposal.ScheduledAt.Sub(r.clock.Now())
	if lead < r.minLead {
		return &insufficientLeadTime{min: r.minLead}
	}
	return nil
}

type insufficientLeadTime struct {
	min time.Duration
}

func (e *insufficientLeadTime) Error() string {
	return "appointment must be booked at least " + e.min.String() + " in advance"
}

// OperatingHoursRule rejects proposals on the clinic's closed day or outside
// its bookable hours. Hour and weekday are read in the clock's canonical
// zone, never in the offset the caller expressed the timestamp with. The
// closing hour itself is still bookable: a proposal at exactly
// closingHour:00 (or any minute within that hour) is accepted, matching the
// clinic's posted hours.
type OperatingHoursRule struct {
	clock       Clock
	openingHour int
	closingHour int
	closedDay   time.Weekday
}

func NewOperatingHoursRule(clock Clock, openingHour, closingHour int) *OperatingHoursRule {
	return &OperatingHoursRule{
		clock:       clock,
		openingHour: openingHour,
		closingHour: closingHour,
		closedDay:   time.Sunday,
	}
}

func (r *OperatingHoursRule) Name() string { return "operating_hours" }

func (r *OperatingHoursRule) Validate(proposal *model.CreateAppointmentRequest) error {
	t := proposal.ScheduledAt.In(r.clock.Location())

	if t.Weekday() == r.closedDay {
		return &outsideOperatingHours{reason: "clinic is closed on " + r.closedDay.String()}
	}
	if hour := t.Hour(); hour < r.openingHour || hour > r.closingHour {
		return &outsideOperatingHours{reason: "time is outside clinic operating hours"}
	}
	return nil
}

type outsideOperatingHours struct {
	reason string
}

func (e *outsideOperatingHours) Error() string { return e.reason }
