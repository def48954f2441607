package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

type MetricAdapterRegistry struct {
	mu       sync.RWMutex
	adapters map[MetricID]MetricAdapter
}

func NewMetricAdapterRegistry() *MetricAdapterRegistry {
	return &MetricAdapterRegistry{adapters: make(map[MetricID]MetricAdapter)}
}

func (r *MetricAdapterRegistry) Register(adapter MetricAdapter) error {
	if adapter == nil {
		return fmt.Errorf("core: adapter is nil")
	}
	id := MetricID(strings.TrimSpace(string(adapter.ID())))
	if id == "" {
		return fmt.Errorf("core: adapter metric id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[id]; exists {
		return fmt.Errorf("core: adapter already registered for metric: %s", id)
	}
	r.adapters[id] = adapter
	return nil
}

func (r *MetricAdapterRegistry) Get(metric MetricID) (MetricAdapter, bool) {
	id := MetricID(strings.TrimSpace(string(metric)))
	if id == "" {
		return nil, false
	}
	r.mu.RLock()
	adapter, ok := r.adapters[id]
	r.mu.RUnlock()
	return adapter, ok
}

func (r *MetricAdapterRegistry) List() []MetricAdapter {
	r.mu.RLock()
	keys := make([]MetricID, 0, len(r.adapters))
	for id := range r.adapters {
		keys = append(keys, id)
	}
	r.mu.RUnlock()
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	adapters := make([]MetricAdapter, 0, len(keys))
	r.mu.RLock()
	for _, id := range keys {
		adapters = append(adapters, r.adapters[id])
	}
	r.mu.RUnlock()
	return adapters
}
