package testutils

import (
	"fmt"
	"sync/atomic"
	"time"
)

// SequentialIDs returns an ID generator yielding prefix-0001, prefix-0002
// and so on. It is safe for concurrent use.
func SequentialIDs(prefix string) func() string {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("%s-%04d", prefix, n.Add(1))
	}
}

// FixedClock returns a clock that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// ContestDay is the instant used by tests that need a stable clock.
var ContestDay = time.Date(2024, 7, 4, 19, 30, 0, 0, time.UTC)
