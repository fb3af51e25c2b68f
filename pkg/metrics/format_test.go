package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{11*time.Hour + 30*time.Minute, "11h30min"},
		{13*time.Hour + 2*time.Minute, "13h02min"},
		{time.Hour, "1h00min"},
		{59 * time.Minute, "59 min"},
		{42*time.Minute + 59*time.Second, "42 min"}, // truncated, not rounded
		{0, "0 min"},
		{-time.Minute, "0 min"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatDuration(tc.in), "input %v", tc.in)
	}
}

func TestFormatElapsed(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00"},
		{time.Second, "00:00:01"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
		{25*time.Hour + 59*time.Second + 900*time.Millisecond, "25:00:59"},
		{-time.Second, "00:00:00"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatElapsed(tc.in), "input %v", tc.in)
	}
}
