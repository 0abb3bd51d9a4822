// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package cleanup

import "time"

// Clock supplies the current time. The cleaner never reads the wall clock
// directly, so tests can drive sweeps with a deterministic clock instead of
// mutating shared state.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock {
	return realClock{}
}
