package index

import (
	"fmt"
	"math"
)

// Unset marks an open slice bound.
const Unset = math.MinInt

// Slice selects positions the way a conventional list slice does: start
// and stop count from the end when negative and are clamped to the length,
// step may be any nonzero integer and walks backward when negative.
type Slice struct {
	Start int
	Stop  int
	Step  int
}

// All selects every position in order.
func All() Slice {
	return Slice{Start: Unset, Stop: Unset, Step: 1}
}

// Indices resolves s against a sequence of the given length and returns the
// first position, the resolved stop, the step and the number of selected
// positions.
func (s Slice) Indices(length int) (start, stop, step, count int, err error) {
	step = s.Step
	if step == 0 {
		return 0, 0, 0, 0, fmt.Errorf("%w: slice step cannot be zero", ErrOutOfRange)
	}

	lower, upper := 0, length
	if step < 0 {
		lower, upper = -1, length-1
	}

	start = clampBound(s.Start, length, lower, upper, step < 0)
	stop = clampBound(s.Stop, length, lower, upper, step > 0)

	switch {
	case step > 0 && start < stop:
		count = (stop-start-1)/step + 1
	case step < 0 && stop < start:
		count = (start-stop-1)/(-step) + 1
	}

	return start, stop, step, count, nil
}

// clampBound resolves one slice bound. An unset bound becomes upper when
// openHigh is set and lower otherwise.
func clampBound(v, length, lower, upper int, openHigh bool) int {
	if v == Unset {
		if openHigh {
			return upper
		}
		return lower
	}
	if v < 0 {
		v += length
		if v < lower {
			return lower
		}
		return v
	}
	if v > upper {
		return upper
	}
	return v
}
