package utils

import (
	"time"

	"cloud.google.com/go/civil"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (s SystemClock) Now() time.Time {
	return time.Now()
}

// MockClock always reports FixedNow.
type MockClock struct {
	FixedNow time.Time
}

func (m *MockClock) Now() time.Time {
	return m.FixedNow
}

func (m *MockClock) SetNow(now time.Time) {
	m.FixedNow = now
}

// LocalNow is the clock's current wall-clock date-time in loc.
func LocalNow(c Clock, loc *time.Location) civil.DateTime {
	return civil.DateTimeOf(c.Now().In(loc))
}
