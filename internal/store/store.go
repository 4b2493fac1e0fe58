// Package store provides the collection store: a durable mapping from a
// collection name to an ordered list of records.
//
// The store itself is backend-agnostic. A Backend moves whole collections in
// and out of durable storage; three are provided:
//   - MemoryBackend: process-local, for tests and throwaway sessions
//   - FileBackend: a single JSON document on disk
//   - SQLBackend: a "collections" table managed through GORM (sqlite, postgres, mysql)
//
// Collections that were never written are seeded on first read. Products,
// customers, invoices and users have a fixed default dataset; every other
// collection starts empty. Writes to one collection are serialised, so two
// concurrent read-modify-write cycles cannot lose each other's changes.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"billing/internal/logger"
	"github.com/rs/zerolog"
)

// Record is a single persisted entity in its JSON-like form.
type Record map[string]any

// Backend is the durable key-value transport holding whole collections.
type Backend interface {
	// Get returns the records stored under name. found is false when the
	// collection has never been written.
	Get(ctx context.Context, name string) (records []Record, found bool, err error)

	// Put replaces the records stored under name.
	Put(ctx context.Context, name string, records []Record) error
}

// CollectionStore reads and replaces whole collections on top of a Backend.
type CollectionStore struct {
	backend Backend
	seeds   map[string][]Record

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	log zerolog.Logger
}

// Option configures a CollectionStore.
type Option func(*CollectionStore)

// WithSeeds replaces the default seed dataset.
func WithSeeds(seeds map[string][]Record) Option {
	return func(s *CollectionStore) {
		s.seeds = seeds
	}
}

// NewCollectionStore creates a store over the given backend.
func NewCollectionStore(backend Backend, opts ...Option) *CollectionStore {
	s := &CollectionStore{
		backend: backend,
		seeds:   DefaultSeeds(),
		locks:   make(map[string]*sync.Mutex),
		log:     logger.WithComponent("store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAll returns a copy of every record in the named collection, seeding it
// first if it has never been written.
func (s *CollectionStore) GetAll(ctx context.Context, name string) ([]Record, error) {
	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	return s.load(ctx, name)
}

// ReplaceAll overwrites the named collection with records.
func (s *CollectionStore) ReplaceAll(ctx context.Context, name string, records []Record) error {
	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	return s.put(ctx, name, records)
}

// Modify runs a read-modify-write cycle on the named collection while holding
// its lock. The records returned by fn replace the collection. If fn returns
// an error nothing is written and the error is returned unchanged.
func (s *CollectionStore) Modify(ctx context.Context, name string, fn func([]Record) ([]Record, error)) error {
	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	records, err := s.load(ctx, name)
	if err != nil {
		return err
	}

	updated, err := fn(records)
	if err != nil {
		return err
	}

	return s.put(ctx, name, updated)
}

func (s *CollectionStore) load(ctx context.Context, name string) ([]Record, error) {
	const op = "GetAll"

	records, found, err := s.backend.Get(ctx, name)
	if err != nil {
		return nil, wrapStoreError(op, name, err)
	}
	if found {
		return records, nil
	}

	seed, err := CloneRecords(s.seeds[name])
	if err != nil {
		return nil, wrapStoreError(op, name, err)
	}
	if seed == nil {
		seed = []Record{}
	}

	s.log.Info().
		Str("collection", name).
		Int("records", len(seed)).
		Msg("Seeding uninitialized collection")

	if err := s.put(ctx, name, seed); err != nil {
		return nil, err
	}
	return seed, nil
}

func (s *CollectionStore) put(ctx context.Context, name string, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	if err := s.backend.Put(ctx, name, records); err != nil {
		return wrapStoreError("ReplaceAll", name, err)
	}

	s.log.Debug().
		Str("collection", name).
		Int("records", len(records)).
		Msg("Collection persisted")
	return nil
}

func (s *CollectionStore) lockFor(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[name] = lock
	}
	return lock
}

// Normalize converts v (a struct, map or Record) into a Record holding only
// JSON-native values. Numbers are kept as json.Number so no precision is lost.
func Normalize(v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("normalize record: %w", err)
	}

	var record Record
	if err := decodeJSON(data, &record); err != nil {
		return nil, fmt.Errorf("normalize record: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("normalize record: %T is not an object", v)
	}
	return record, nil
}

// CloneRecords returns a deep copy of records.
func CloneRecords(records []Record) ([]Record, error) {
	if records == nil {
		return nil, nil
	}

	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("clone records: %w", err)
	}
	return DecodeRecords(data)
}

// DecodeRecords parses a JSON array of records.
func DecodeRecords(data []byte) ([]Record, error) {
	records := []Record{}
	if err := decodeJSON(data, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}

func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
