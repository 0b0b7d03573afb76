package gesture

import "math"

// Accumulator turns fractional scroll deltas into whole steps.
type Accumulator struct {
	Sensitivity float64
	Reverse     bool

	value float64
}

// NewAccumulator creates an accumulator. Sensitivity below 1 is raised to 1.
func NewAccumulator(sensitivity float64, reverse bool) *Accumulator {
	if sensitivity < 1 {
		sensitivity = 1
	}
	return &Accumulator{Sensitivity: sensitivity, Reverse: reverse}
}

// Reset drops any accumulated remainder.
func (a *Accumulator) Reset() {
	a.value = 0
}

// Value returns the current accumulated remainder.
func (a *Accumulator) Value() float64 {
	return a.value
}

// Add accumulates delta/sensitivity and returns the whole signed steps that
// became available. The fractional remainder is kept for the next call.
func (a *Accumulator) Add(delta float64) int {
	sens := a.Sensitivity
	if sens < 1 {
		sens = 1
	}
	if a.Reverse {
		delta = -delta
	}
	a.value += delta / sens

	mag := math.Abs(a.value)
	if mag < 1 {
		return 0
	}
	n := math.Floor(mag)
	if a.value < 0 {
		a.value += n
		return -int(n)
	}
	a.value -= n
	return int(n)
}

// WorkspaceAt moves index by delta within a directory of n entries.
// With wrap the result is taken modulo n; otherwise it is clamped to [0, n-1].
// An empty directory always yields 0.
func WorkspaceAt(n, index, delta int, wrap bool) int {
	if n <= 0 {
		return 0
	}
	if index < 0 {
		index = 0
	}
	if index >= n {
		index = n - 1
	}

	next := index + delta
	if wrap {
		next %= n
		if next < 0 {
			next += n
		}
		return next
	}
	if next < 0 {
		return 0
	}
	if next >= n {
		return n - 1
	}
	return next
}

// IndexOf returns the position of id in ids, or -1.
func IndexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
