package telemetry

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/satwatch/satwatch/internal/sched"
)

// FaultState tracks operator-injected faults per subsystem. Each injected
// fault auto-clears after a fixed duration; at most one pending clear timer
// exists per subsystem, and re-injection replaces the timer rather than
// stacking a second one.
type FaultState struct {
	mu       sync.Mutex
	clock    sched.Clock
	duration time.Duration
	log      *zap.Logger

	active map[Category]bool
	timers map[Category]sched.Timer
	gens   map[Category]uint64
}

// NewFaultState creates a FaultState that clears faults after duration.
func NewFaultState(clock sched.Clock, duration time.Duration, log *zap.Logger) *FaultState {
	return &FaultState{
		clock:    clock,
		duration: duration,
		log:      log,
		active:   make(map[Category]bool),
		timers:   make(map[Category]sched.Timer),
		gens:     make(map[Category]uint64),
	}
}

func faultable(c Category) bool {
	switch c {
	case CategoryBattery, CategorySolar, CategoryThermal, CategoryComms:
		return true
	}
	return false
}

// Inject activates the fault for the subsystem and arms the auto-clear
// timer. Unknown subsystems are ignored. Injecting while a fault is already
// active resets the clear timer.
func (f *FaultState) Inject(c Category) {
	if !faultable(c) {
		f.log.Warn("ignoring fault injection for unknown subsystem", zap.String("subsystem", string(c)))
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if t, ok := f.timers[c]; ok {
		t.Stop()
	}
	// The generation ties each timer to the activation that armed it. A
	// timer that already fired and is waiting on the mutex while a
	// re-injection replaces it must not clear the new activation.
	f.gens[c]++
	gen := f.gens[c]
	f.active[c] = true
	f.timers[c] = f.clock.AfterFunc(f.duration, func() {
		f.autoClear(c, gen)
	})
	f.log.Info("fault injected",
		zap.String("subsystem", string(c)),
		zap.Duration("auto_clear_after", f.duration))
}

// Clear deactivates the fault immediately and cancels any pending timer.
// Unknown subsystems are ignored.
func (f *FaultState) Clear(c Category) {
	if !faultable(c) {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if t, ok := f.timers[c]; ok {
		t.Stop()
		delete(f.timers, c)
	}
	if f.active[c] {
		f.active[c] = false
		f.log.Info("fault cleared", zap.String("subsystem", string(c)))
	}
}

// autoClear is invoked by the one-shot timer. Fires from a superseded
// generation are ignored.
func (f *FaultState) autoClear(c Category, gen uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gens[c] != gen {
		return
	}
	delete(f.timers, c)
	if f.active[c] {
		f.active[c] = false
		f.log.Info("fault auto-cleared", zap.String("subsystem", string(c)))
	}
}

// Active reports whether the subsystem currently has a fault.
func (f *FaultState) Active(c Category) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active[c]
}

// Snapshot returns the current fault flags for the faultable subsystems.
func (f *FaultState) Snapshot() map[Category]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[Category]bool, len(FaultCategories()))
	for _, c := range FaultCategories() {
		out[c] = f.active[c]
	}
	return out
}
