package observer

// Throttle admits a snapshot when its evaluation count is a multiple of
// Frequency. A frequency that never divides the counts the loop reports
// admits nothing; that is accepted behavior.
type Throttle struct {
	Frequency int
}

// NewThrottle validates frequency (>= 1).
func NewThrottle(frequency int) (Throttle, error) {
	if frequency < 1 {
		return Throttle{}, &ConfigError{Field: "frequency", Reason: "must be at least 1"}
	}
	return Throttle{Frequency: frequency}, nil
}

// Allow reports whether a snapshot at the given evaluation count is acted on.
func (t Throttle) Allow(evaluations int) bool {
	return evaluations%t.Frequency == 0
}
