package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestActivityInProgress(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	open := Activity{Title: ActivitySleep, StartedAt: start}
	assert.True(t, open.InProgress())
	assert.Equal(t, time.Duration(0), open.Duration())

	// The detection pipeline emits endedAt equal to startedAt for events it
	// has opened but not yet closed. They render as in progress with no
	// measured length, exactly like a nil endedAt.
	zeroLength := Activity{Title: ActivitySleep, StartedAt: start, EndedAt: &start}
	assert.True(t, zeroLength.InProgress())
	assert.Equal(t, time.Duration(0), zeroLength.Duration())

	ended := start.Add(25 * time.Minute)
	closed := Activity{Title: ActivitySleep, StartedAt: start, EndedAt: &ended}
	assert.False(t, closed.InProgress())
	assert.Equal(t, 25*time.Minute, closed.Duration())
}

func TestActivityDurationNeverNegative(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	before := start.Add(-time.Minute)
	a := Activity{Title: ActivityEat, StartedAt: start, EndedAt: &before}
	assert.Equal(t, time.Duration(0), a.Duration())
}
