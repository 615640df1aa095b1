package appointments

// Decision is the outcome of a capacity evaluation.
type Decision struct {
	Admit  bool
	Reason string // CodeCapacityExceeded when rejected
}

// Policy decides admission against the configured daily maximum.
// It is a pure function of its inputs: no I/O, no clock, no state
// beyond the process-wide maximum fixed at construction.
type Policy struct {
	dailyMax int
}

// NewPolicy creates a capacity policy. Non-positive maximums fall back
// to the historical default of 10 appointments per day.
func NewPolicy(dailyMax int) Policy {
	if dailyMax <= 0 {
		dailyMax = 10
	}
	return Policy{dailyMax: dailyMax}
}

// DailyMax exposes the configured ceiling for availability reporting.
func (p Policy) DailyMax() int { return p.dailyMax }

// Evaluate admits iff currentCount is below the daily maximum.
// Date validity (well-formed, not in the past) is checked by the
// admission service before the policy is consulted.
func (p Policy) Evaluate(currentCount int) Decision {
	if currentCount < p.dailyMax {
		return Decision{Admit: true}
	}
	return Decision{Admit: false, Reason: CodeCapacityExceeded}
}
