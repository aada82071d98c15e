package shared

import (
	"sync"
	"time"
)

// Clock is an abstraction for time operations, allowing time to be mocked in tests
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the actual system time
type RealClock struct{}

// Now returns the current system time in UTC
func (r *RealClock) Now() time.Time {
	return time.Now().UTC()
}

// NewRealClock creates a RealClock instance
func NewRealClock() Clock {
	return &RealClock{}
}

// MockClock implements Clock with a controllable time for testing.
// Safe for use from the scheduler goroutines in tests.
type MockClock struct {
	mu          sync.Mutex
	currentTime time.Time
}

// NewMockClock creates a MockClock starting at the given time.
// A zero start time is replaced by a fixed reference instant so tests stay deterministic.
func NewMockClock(startTime time.Time) *MockClock {
	if startTime.IsZero() {
		startTime = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	}
	return &MockClock{currentTime: startTime}
}

// Now returns the mock's current time
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentTime
}

// Advance moves the mock clock forward by the given duration
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = m.currentTime.Add(d)
}

// AdvanceSeconds moves the mock clock forward by whole seconds
func (m *MockClock) AdvanceSeconds(seconds int) {
	m.Advance(time.Duration(seconds) * time.Second)
}

// SetTime sets the mock clock to a specific time
func (m *MockClock) SetTime(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = t
}
