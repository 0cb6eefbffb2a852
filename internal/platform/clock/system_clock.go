package clock

import "time"

// SystemClock reads the wall clock. Every timestamp it hands out is UTC,
// matching what the repositories persist.
type SystemClock struct{}

func NewSystemClock() SystemClock { return SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now().UTC() }
