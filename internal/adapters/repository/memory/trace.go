// Package adapters provides concrete implementations of trace storage
package adapters

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/pipeflow/pipeflow/internal/core/trace"
	imetrics "github.com/pipeflow/pipeflow/internal/infrastructure/metrics"
	"github.com/pipeflow/pipeflow/pkg/serialization"
)

// InMemorySaver implements trace.Saver with thread-safe in-memory storage.
// Records are stored serialized so that Load/List hand back independent
// copies; callers can mutate results freely.
// PRINCIPLES:
// - KISS: A locked map, no eviction machinery
// - SRP: Single responsibility for in-memory record storage
// - DIP: Implements trace.Saver interface
type InMemorySaver struct {
	mu         sync.RWMutex
	records    map[string][]byte
	order      []string // insertion order for stable List output
	serializer *serialization.Serializer
}

// NewInMemorySaver creates a new in-memory trace saver. A nil serializer
// selects the default (msgpack + zstd).
func NewInMemorySaver(serializer *serialization.Serializer) *InMemorySaver {
	if serializer == nil {
		serializer = serialization.DefaultSerializer()
	}
	return &InMemorySaver{
		records:    make(map[string][]byte),
		serializer: serializer,
	}
}

// DefaultInMemorySaver creates an in-memory saver with default settings
func DefaultInMemorySaver() *InMemorySaver {
	return NewInMemorySaver(nil)
}

// Save stores a record in memory
func (s *InMemorySaver) Save(_ context.Context, record *trace.Record) error {
	if record == nil {
		return trace.ErrInvalidRecordID
	}
	if err := record.Validate(); err != nil {
		return fmt.Errorf("record validation failed: %w", err)
	}

	data, err := s.serializer.Serialize(record)
	if err != nil {
		return fmt.Errorf("%w: %v", trace.ErrSaveFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.ID]; !exists {
		s.order = append(s.order, record.ID)
	}
	s.records[record.ID] = data
	imetrics.TraceSaved("memory", 1)
	return nil
}

// Load retrieves a record by ID
func (s *InMemorySaver) Load(_ context.Context, id string) (*trace.Record, error) {
	if id == "" {
		return nil, trace.ErrInvalidRecordID
	}

	s.mu.RLock()
	data, exists := s.records[id]
	s.mu.RUnlock()
	if !exists {
		return nil, trace.ErrRecordNotFound
	}

	var record trace.Record
	if err := s.serializer.Deserialize(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", trace.ErrLoadFailed, err)
	}
	return &record, nil
}

// List returns records matching the filter, in insertion order
func (s *InMemorySaver) List(_ context.Context, filter trace.Filter) ([]*trace.Record, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	ids := append([]string(nil), s.order...)
	blobs := make(map[string][]byte, len(s.records))
	for id, data := range s.records {
		blobs[id] = data
	}
	s.mu.RUnlock()

	var matched []*trace.Record
	for _, id := range ids {
		var record trace.Record
		if err := s.serializer.Deserialize(blobs[id], &record); err != nil {
			return nil, fmt.Errorf("%w: %v", trace.ErrLoadFailed, err)
		}
		if filter.Matches(&record) {
			matched = append(matched, &record)
		}
	}

	// Stable ordering by start time, then insertion
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].StartTime.Before(matched[j].StartTime)
	})

	return paginate(matched, filter.Offset, filter.Limit), nil
}

// Delete removes a record by ID
func (s *InMemorySaver) Delete(_ context.Context, id string) error {
	if id == "" {
		return trace.ErrInvalidRecordID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[id]; !exists {
		return trace.ErrRecordNotFound
	}
	delete(s.records, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of stored records
func (s *InMemorySaver) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func paginate(records []*trace.Record, offset, limit int) []*trace.Record {
	if offset >= len(records) {
		return nil
	}
	records = records[offset:]
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records
}
