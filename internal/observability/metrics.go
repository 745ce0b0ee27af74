package observability

import (
	"sync"
)

// Metrics provides basic in-memory counters for interaction traffic.
type Metrics struct {
	mu               sync.Mutex
	interactionCount map[string]int64
	errorCount       map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		interactionCount: make(map[string]int64),
		errorCount:       make(map[string]int64),
	}
}

// RecordInteraction increments the counter for a routed interaction. The route
// is the custom id or command name the event dispatched on.
func (m *Metrics) RecordInteraction(kind, route string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interactionCount[kind+"|"+route]++
}

// RecordError increments the error counter for a routed interaction.
func (m *Metrics) RecordError(route, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[route+"|"+code]++
}

// InteractionCount returns the current count for a kind/route pair.
func (m *Metrics) InteractionCount(kind, route string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interactionCount[kind+"|"+route]
}
