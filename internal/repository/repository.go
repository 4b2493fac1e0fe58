// Package repository implements generic create/read/update/delete over the
// named collections of a store.CollectionStore.
//
// Records are addressed by their "id" field. Ids are assigned on create and
// are unique within a collection; the default generator produces snowflake
// ids, which grow with time so insertion order and id order agree.
//
// Every operation may suspend for a configurable latency before touching the
// store, standing in for the round trip to a remote backend.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"billing/internal/logger"
	"billing/internal/store"
	"github.com/bwmarrin/snowflake"
	"github.com/rs/zerolog"
)

// IDField is the record field holding the identifier.
const IDField = "id"

// maxIDAttempts bounds retries when a generated id already exists.
const maxIDAttempts = 8

// IDGenerator produces record identifiers.
type IDGenerator interface {
	NewID() string
}

// SnowflakeIDs generates time-ordered snowflake ids.
type SnowflakeIDs struct {
	node *snowflake.Node
}

// NewSnowflakeIDs creates a generator for the given node number (0-1023).
func NewSnowflakeIDs(node int64) (*SnowflakeIDs, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node %d: %w", node, err)
	}
	return &SnowflakeIDs{node: n}, nil
}

func (s *SnowflakeIDs) NewID() string {
	return s.node.Generate().String()
}

// Repository provides CRUD operations on store collections.
type Repository struct {
	store   *store.CollectionStore
	ids     IDGenerator
	latency time.Duration
	log     zerolog.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithLatency makes every operation wait d before running.
func WithLatency(d time.Duration) Option {
	return func(r *Repository) {
		r.latency = d
	}
}

// WithIDGenerator replaces the default snowflake generator.
func WithIDGenerator(ids IDGenerator) Option {
	return func(r *Repository) {
		r.ids = ids
	}
}

// New creates a repository over st. Without WithIDGenerator, ids come from
// snowflake node 1.
func New(st *store.CollectionStore, opts ...Option) (*Repository, error) {
	r := &Repository{
		store: st,
		log:   logger.WithComponent("repository"),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.ids == nil {
		ids, err := NewSnowflakeIDs(1)
		if err != nil {
			return nil, err
		}
		r.ids = ids
	}
	return r, nil
}

// Create stores data as a new record in collection and returns it with its
// assigned id. Any id already present in data is replaced.
func (r *Repository) Create(ctx context.Context, collection string, data any) (store.Record, error) {
	const op = "Create"

	if err := r.pause(ctx); err != nil {
		return nil, &RepositoryError{Op: op, Collection: collection, Err: err}
	}

	record, err := store.Normalize(data)
	if err != nil {
		return nil, &RepositoryError{Op: op, Collection: collection, Err: err}
	}

	err = r.store.Modify(ctx, collection, func(records []store.Record) ([]store.Record, error) {
		id, err := r.uniqueID(records)
		if err != nil {
			return nil, err
		}
		record[IDField] = id
		return append(records, record), nil
	})
	if err != nil {
		return nil, wrap(op, collection, "", err)
	}

	r.log.Debug().
		Str("collection", collection).
		Str("id", RecordID(record)).
		Msg("Record created")

	return record, nil
}

// FetchAll returns every record of collection in insertion order.
func (r *Repository) FetchAll(ctx context.Context, collection string) ([]store.Record, error) {
	const op = "FetchAll"

	if err := r.pause(ctx); err != nil {
		return nil, &RepositoryError{Op: op, Collection: collection, Err: err}
	}

	records, err := r.store.GetAll(ctx, collection)
	if err != nil {
		return nil, wrap(op, collection, "", err)
	}
	return records, nil
}

// FetchOne returns the record with the given id or ErrNotFound.
func (r *Repository) FetchOne(ctx context.Context, collection, id string) (store.Record, error) {
	const op = "FetchOne"

	if err := r.pause(ctx); err != nil {
		return nil, &RepositoryError{Op: op, Collection: collection, ID: id, Err: err}
	}

	records, err := r.store.GetAll(ctx, collection)
	if err != nil {
		return nil, wrap(op, collection, id, err)
	}

	idx := indexOf(records, id)
	if idx < 0 {
		return nil, notFound(op, collection, id)
	}
	return records[idx], nil
}

// Update merges the top-level fields of partial into the record with the
// given id and returns the result. The id itself cannot be changed.
func (r *Repository) Update(ctx context.Context, collection, id string, partial any) (store.Record, error) {
	const op = "Update"

	if err := r.pause(ctx); err != nil {
		return nil, &RepositoryError{Op: op, Collection: collection, ID: id, Err: err}
	}

	changes, err := store.Normalize(partial)
	if err != nil {
		return nil, &RepositoryError{Op: op, Collection: collection, ID: id, Err: err}
	}

	var updated store.Record
	err = r.store.Modify(ctx, collection, func(records []store.Record) ([]store.Record, error) {
		idx := indexOf(records, id)
		if idx < 0 {
			return nil, notFound(op, collection, id)
		}

		merged := records[idx]
		for k, v := range changes {
			merged[k] = v
		}
		merged[IDField] = id
		records[idx] = merged
		updated = merged
		return records, nil
	})
	if err != nil {
		return nil, wrap(op, collection, id, err)
	}

	r.log.Debug().
		Str("collection", collection).
		Str("id", id).
		Int("fields", len(changes)).
		Msg("Record updated")

	return updated, nil
}

// Delete removes the record with the given id. Deleting an id that does not
// exist succeeds and leaves the collection untouched.
func (r *Repository) Delete(ctx context.Context, collection, id string) error {
	const op = "Delete"

	if err := r.pause(ctx); err != nil {
		return &RepositoryError{Op: op, Collection: collection, ID: id, Err: err}
	}

	removed := false
	err := r.store.Modify(ctx, collection, func(records []store.Record) ([]store.Record, error) {
		kept := make([]store.Record, 0, len(records))
		for _, rec := range records {
			if RecordID(rec) == id {
				removed = true
				continue
			}
			kept = append(kept, rec)
		}
		return kept, nil
	})
	if err != nil {
		return wrap(op, collection, id, err)
	}

	r.log.Debug().
		Str("collection", collection).
		Str("id", id).
		Bool("removed", removed).
		Msg("Record deleted")

	return nil
}

// pause simulates the latency of a remote call.
func (r *Repository) pause(ctx context.Context) error {
	if r.latency <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(r.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *Repository) uniqueID(records []store.Record) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := r.ids.NewID()
		if id != "" && indexOf(records, id) < 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique id after %d attempts", maxIDAttempts)
}

// RecordID returns the id of a record, or "" when it has none.
func RecordID(record store.Record) string {
	switch id := record[IDField].(type) {
	case string:
		return id
	case json.Number:
		return id.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

func indexOf(records []store.Record, id string) int {
	for i, rec := range records {
		if RecordID(rec) == id {
			return i
		}
	}
	return -1
}

// wrap leaves RepositoryErrors and store errors recognisable to errors.Is
// while adding repository context to anything else.
func wrap(op, collection, id string, err error) error {
	if _, ok := err.(*RepositoryError); ok {
		return err
	}
	return &RepositoryError{Op: op, Collection: collection, ID: id, Err: err}
}

// Decode converts a record into a typed value.
func Decode[T any](record store.Record) (T, error) {
	var out T

	data, err := json.Marshal(record)
	if err != nil {
		return out, fmt.Errorf("failed to encode record: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to decode record into %T: %w", out, err)
	}
	return out, nil
}

// DecodeAll converts every record into a typed value.
func DecodeAll[T any](records []store.Record) ([]T, error) {
	out := make([]T, 0, len(records))
	for _, record := range records {
		v, err := Decode[T](record)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
