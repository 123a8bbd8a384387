package events

import (
	"sync"

	"github.com/satwatch/satwatch/internal/alert"
	"github.com/satwatch/satwatch/internal/telemetry"
)

// Package events provides the typed in-process bus connecting the simulation
// core to its consumers, such as the WebSocket live stream. Three topics
// exist: every tick's telemetry sample, every newly recorded alert, and the
// critical subset of those alerts.
//
// Delivery is synchronous on the publishing goroutine; subscribers must not
// block.

// SampleHandler receives telemetry samples.
type SampleHandler func(telemetry.Sample)

// AlertHandler receives alerts.
type AlertHandler func(alert.Alert)

// Bus fans events out to subscribers.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	samples  map[int]SampleHandler
	alerts   map[int]AlertHandler
	critical map[int]AlertHandler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		samples:  make(map[int]SampleHandler),
		alerts:   make(map[int]AlertHandler),
		critical: make(map[int]AlertHandler),
	}
}

// SubscribeSamples registers a handler for telemetry samples and returns an
// unsubscribe func.
func (b *Bus) SubscribeSamples(fn SampleHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.samples[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.samples, id)
	}
}

// SubscribeAlerts registers a handler for every newly recorded alert.
func (b *Bus) SubscribeAlerts(fn AlertHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.alerts[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.alerts, id)
	}
}

// SubscribeCritical registers a handler invoked only for critical alerts.
func (b *Bus) SubscribeCritical(fn AlertHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.critical[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.critical, id)
	}
}

// PublishSample delivers a telemetry sample to all sample subscribers.
func (b *Bus) PublishSample(s telemetry.Sample) {
	b.mu.RLock()
	handlers := make([]SampleHandler, 0, len(b.samples))
	for _, fn := range b.samples {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(s)
	}
}

// PublishAlert delivers an alert to all alert subscribers, and additionally
// to critical subscribers when severity is critical.
func (b *Bus) PublishAlert(a alert.Alert) {
	b.mu.RLock()
	handlers := make([]AlertHandler, 0, len(b.alerts)+len(b.critical))
	for _, fn := range b.alerts {
		handlers = append(handlers, fn)
	}
	if a.Severity == alert.SeverityCritical {
		for _, fn := range b.critical {
			handlers = append(handlers, fn)
		}
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(a)
	}
}
