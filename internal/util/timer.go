package util

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Timer measures how long a request spent in analysis.
type Timer struct {
	start time.Time
}

// StartTimer creates a new timer starting at current time.
func StartTimer() Timer {
	return Timer{start: time.Now()}
}

// Elapsed returns the time since start, or zero for an unstarted timer.
func (t Timer) Elapsed() time.Duration {
	if t.start.IsZero() {
		return 0
	}
	return time.Since(t.start)
}

// ElapsedMs returns the elapsed milliseconds since start.
func (t Timer) ElapsedMs() int64 {
	return t.Elapsed().Milliseconds()
}

// Fields renders the elapsed time for structured log lines.
func (t Timer) Fields() logrus.Fields {
	return logrus.Fields{"duration_ms": t.ElapsedMs()}
}
