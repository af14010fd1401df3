// Package almanac is the shared fact store analysis functions read from and
// publish into. Facts are either runtime values set directly or named
// suppliers resolved lazily and memoized on first use.
package almanac

import (
	"context"
	"fmt"
	"sync"
)

// CorpusFact is the well-known fact name holding the ingested file corpus.
const CorpusFact = "globalFileMetadata"

// Supplier computes a fact value on first resolution.
type Supplier func(ctx context.Context) (interface{}, error)

// Store is a concurrency-safe fact store.
type Store struct {
	mu        sync.RWMutex
	values    map[string]interface{}
	suppliers map[string]Supplier
}

func New() *Store {
	return &Store{
		values:    make(map[string]interface{}),
		suppliers: make(map[string]Supplier),
	}
}

// RegisterSupplier installs a lazy fact. A later AddRuntimeFact under the
// same name shadows the supplier.
func (s *Store) RegisterSupplier(name string, fn Supplier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppliers[name] = fn
}

// AddRuntimeFact publishes a concrete fact value, replacing any prior value
// under the same name.
func (s *Store) AddRuntimeFact(name string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
}

// FactValue resolves a fact by name. Supplier results are memoized, so a
// supplier runs at most once per store.
func (s *Store) FactValue(ctx context.Context, name string) (interface{}, error) {
	s.mu.RLock()
	if value, ok := s.values[name]; ok {
		s.mu.RUnlock()
		return value, nil
	}
	supplier, ok := s.suppliers[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown fact: %s", name)
	}

	value, err := supplier(ctx)
	if err != nil {
		return nil, fmt.Errorf("fact %s: %w", name, err)
	}
	s.mu.Lock()
	// Another resolver may have won the race; keep the first value.
	if existing, ok := s.values[name]; ok {
		value = existing
	} else {
		s.values[name] = value
	}
	s.mu.Unlock()
	return value, nil
}

// Facts returns a snapshot of all resolved fact names.
func (s *Store) Facts() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	return names
}
