// Package alert rate-limits violation alerts per violation type and renders
// the SMS body.
package alert

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"injuryshield/internal/ppe"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// Manager remembers when the last alert went out for each violation type.
// State lives in memory only, a restart makes every type eligible again.
type Manager struct {
	mu       sync.Mutex
	cooldown time.Duration
	clock    Clock
	lastSent map[ppe.ViolationType]time.Time
}

func NewManager(cooldown time.Duration, clock Clock) *Manager {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Manager{
		cooldown: cooldown,
		clock:    clock,
		lastSent: make(map[ppe.ViolationType]time.Time),
	}
}

func (m *Manager) Cooldown() time.Duration {
	return m.cooldown
}

func (m *Manager) Now() time.Time {
	return m.clock.Now()
}

// ShouldSendAlert reports whether the cooldown for vt has elapsed at now.
func (m *Manager) ShouldSendAlert(vt ppe.ViolationType, now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	last, ok := m.lastSent[vt]
	if !ok {
		return true
	}
	return now.Sub(last) >= m.cooldown
}

func (m *Manager) RecordAlertSent(vt ppe.ViolationType, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSent[vt] = now
}

// LastSent returns the time of the last recorded alert for vt.
func (m *Manager) LastSent(vt ppe.ViolationType) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.lastSent[vt]
	return t, ok
}

// FormatAlertMessage aggregates the events by type. Lines are ordered by
// descending count, ties broken by type name.
func FormatAlertMessage(events []ppe.Candidate, frameTime time.Time) string {
	if len(events) == 0 {
		return "No violations detected."
	}

	counts := lo.CountValuesBy(events, func(e ppe.Candidate) ppe.ViolationType {
		return e.Type
	})
	types := lo.Keys(counts)
	sort.Slice(types, func(i, j int) bool {
		if counts[types[i]] != counts[types[j]] {
			return counts[types[i]] > counts[types[j]]
		}
		return types[i] < types[j]
	})

	var b strings.Builder
	fmt.Fprintf(&b, "InjuryShield ALERT at %s:", frameTime.UTC().Format("2006-01-02 15:04:05 UTC"))
	for _, vt := range types {
		fmt.Fprintf(&b, "\n- %dx %s", counts[vt], vt.Describe())
	}
	b.WriteString("\nImmediate action required.")
	return b.String()
}
