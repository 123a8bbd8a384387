package alert

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// historyRing is a fixed-capacity circular buffer of alerts.
type historyRing struct {
	items []*Alert
	head  int
	size  int
	cap   int
}

func newHistoryRing(capacity int) *historyRing {
	return &historyRing{
		items: make([]*Alert, capacity),
		cap:   capacity,
	}
}

func (rb *historyRing) push(a *Alert) {
	idx := (rb.head + rb.size) % rb.cap
	rb.items[idx] = a
	if rb.size < rb.cap {
		rb.size++
	} else {
		rb.head = (rb.head + 1) % rb.cap
	}
}

// snapshot returns all alerts in chronological order (oldest first).
func (rb *historyRing) snapshot() []*Alert {
	out := make([]*Alert, 0, rb.size)
	for i := 0; i < rb.size; i++ {
		out = append(out, rb.items[(rb.head+i)%rb.cap])
	}
	return out
}

// Manager owns the active alert set and the capped alert history.
//
// Dedup invariant: a new alert whose (subsystem, parameter, kind, severity)
// matches an active alert detected within the dedup window is suppressed
// rather than recorded. Active alerts older than the auto-ack age are
// acknowledged automatically and leave the active set; they remain in
// history.
type Manager struct {
	mu           sync.RWMutex
	log          *zap.Logger
	dedupWindow  time.Duration
	autoAckAfter time.Duration

	active  map[string]*Alert
	history *historyRing
}

// NewManager creates an alert manager.
func NewManager(dedupWindow, autoAckAfter time.Duration, historyCap int, log *zap.Logger) *Manager {
	return &Manager{
		log:          log,
		dedupWindow:  dedupWindow,
		autoAckAfter: autoAckAfter,
		active:       make(map[string]*Alert),
		history:      newHistoryRing(historyCap),
	}
}

// Record adds the alert to the active set and history unless an active
// duplicate suppresses it. It reports whether the alert was recorded.
func (m *Manager) Record(a *Alert) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := keyOf(a)
	for _, existing := range m.active {
		if keyOf(existing) == key && a.DetectedAt.Sub(existing.DetectedAt) < m.dedupWindow {
			m.log.Debug("suppressing duplicate alert",
				zap.String("subsystem", a.Subsystem),
				zap.String("parameter", a.Parameter),
				zap.String("kind", string(a.Kind)))
			return false
		}
	}

	m.active[a.ID] = a
	m.history.push(a)
	return true
}

// Acknowledge marks an active alert acknowledged and removes it from the
// active set. It reports whether the id matched an active alert.
func (m *Manager) Acknowledge(id, by string, now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.active[id]
	if !ok {
		return false
	}
	a.Acknowledged = true
	a.AcknowledgedAt = &now
	a.AcknowledgedBy = by
	delete(m.active, id)

	m.log.Info("alert acknowledged",
		zap.String("alert_id", id),
		zap.String("by", by))
	return true
}

// Sweep auto-acknowledges active alerts older than the auto-ack age and
// returns how many were swept.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	swept := 0
	for id, a := range m.active {
		if now.Sub(a.DetectedAt) >= m.autoAckAfter {
			a.Acknowledged = true
			ackAt := now
			a.AcknowledgedAt = &ackAt
			a.AcknowledgedBy = "auto"
			delete(m.active, id)
			swept++
		}
	}
	if swept > 0 {
		m.log.Debug("auto-acknowledged stale alerts", zap.Int("count", swept))
	}
	return swept
}

// Active returns the active alerts, newest first.
func (m *Manager) Active() []*Alert {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Alert, 0, len(m.active))
	for _, a := range m.active {
		copied := *a
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DetectedAt.After(out[j].DetectedAt) })
	return out
}

// ActiveCount reports the size of the active set.
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.active)
}

// History returns retained alerts detected at or after the cutoff, oldest
// first. A zero cutoff returns everything retained.
func (m *Manager) History(cutoff time.Time) []*Alert {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.history.snapshot()
	out := make([]*Alert, 0, len(all))
	for _, a := range all {
		if cutoff.IsZero() || !a.DetectedAt.Before(cutoff) {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out
}
