package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"billing/internal/store"
	"billing/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequenceIDs hands out predetermined ids, then counts upwards.
type sequenceIDs struct {
	queue []string
	next  int
}

func (s *sequenceIDs) NewID() string {
	if len(s.queue) > 0 {
		id := s.queue[0]
		s.queue = s.queue[1:]
		return id
	}
	s.next++
	return fmt.Sprintf("gen-%d", s.next)
}

func newTestRepository(t *testing.T, opts ...Option) (*Repository, *store.MemoryBackend) {
	t.Helper()
	backend := store.NewMemoryBackend()
	repo, err := New(store.NewCollectionStore(backend), opts...)
	require.NoError(t, err)
	return repo, backend
}

func TestCreateThenFetchOneRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	created, err := repo.Create(ctx, models.CollectionCustomers, models.Customer{
		Name:    "Ravi Kumar",
		Phone:   "9876543210",
		Address: "12 MG Road",
	})
	require.NoError(t, err)
	id := RecordID(created)
	require.NotEmpty(t, id)

	fetched, err := repo.FetchOne(ctx, models.CollectionCustomers, id)
	require.NoError(t, err)
	assert.Equal(t, created, fetched)

	customer, err := Decode[models.Customer](fetched)
	require.NoError(t, err)
	assert.Equal(t, models.Customer{ID: id, Name: "Ravi Kumar", Phone: "9876543210", Address: "12 MG Road"}, customer)
}

func TestCreateAssignsUniqueOrderedIDs(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	var ids []string
	for i := 0; i < 20; i++ {
		rec, err := repo.Create(ctx, "notes", map[string]any{"n": i})
		require.NoError(t, err)
		ids = append(ids, RecordID(rec))
	}

	all, err := repo.FetchAll(ctx, "notes")
	require.NoError(t, err)
	require.Len(t, all, 20)

	seen := map[string]bool{}
	for i, rec := range all {
		assert.Equal(t, ids[i], RecordID(rec), "insertion order preserved")
		assert.Equal(t, json.Number(fmt.Sprint(i)), rec["n"])
		assert.False(t, seen[ids[i]], "duplicate id %s", ids[i])
		seen[ids[i]] = true
	}
}

func TestCreateSkipsCollidingIDs(t *testing.T) {
	ctx := context.Background()
	// "1" collides with the seeded product A.
	repo, _ := newTestRepository(t, WithIDGenerator(&sequenceIDs{queue: []string{"1", "2", "fresh"}}))

	rec, err := repo.Create(ctx, models.CollectionProducts, map[string]any{"name": "Product D"})
	require.NoError(t, err)
	assert.Equal(t, "fresh", RecordID(rec))
}

func TestCreateOverridesCallerID(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t, WithIDGenerator(&sequenceIDs{}))

	rec, err := repo.Create(ctx, "notes", map[string]any{"id": "mine", "text": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "gen-1", RecordID(rec))
}

func TestFetchOneNotFound(t *testing.T) {
	repo, _ := newTestRepository(t)

	_, err := repo.FetchOne(context.Background(), models.CollectionProducts, "404")
	assert.ErrorIs(t, err, ErrNotFound)

	var repoErr *RepositoryError
	require.ErrorAs(t, err, &repoErr)
	assert.Equal(t, "FetchOne", repoErr.Op)
	assert.Equal(t, "404", repoErr.ID)
}

func TestUpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	updated, err := repo.Update(ctx, models.CollectionProducts, "2", map[string]any{
		"unitPrice": "250",
		"id":        "hijack",
	})
	require.NoError(t, err)
	assert.Equal(t, "2", RecordID(updated))
	assert.Equal(t, "250", updated["unitPrice"])
	assert.Equal(t, "Product B", updated["name"], "untouched fields survive")

	fetched, err := repo.FetchOne(ctx, models.CollectionProducts, "2")
	require.NoError(t, err)
	assert.Equal(t, updated, fetched)
}

func TestUpdateNotFoundWritesNothing(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	before, err := repo.FetchAll(ctx, models.CollectionProducts)
	require.NoError(t, err)

	_, err = repo.Update(ctx, models.CollectionProducts, "missing", map[string]any{"name": "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	after, err := repo.FetchAll(ctx, models.CollectionProducts)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	require.NoError(t, repo.Delete(ctx, models.CollectionProducts, "1"))
	_, err := repo.FetchOne(ctx, models.CollectionProducts, "1")
	assert.ErrorIs(t, err, ErrNotFound)

	before, err := repo.FetchAll(ctx, models.CollectionProducts)
	require.NoError(t, err)

	// Deleting a missing id is a successful no-op.
	require.NoError(t, repo.Delete(ctx, models.CollectionProducts, "does-not-exist"))

	after, err := repo.FetchAll(ctx, models.CollectionProducts)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestStorageUnavailablePropagates(t *testing.T) {
	ctx := context.Background()
	repo, backend := newTestRepository(t)
	backend.Unavailable = true

	_, err := repo.FetchAll(ctx, models.CollectionProducts)
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)

	_, err = repo.Create(ctx, models.CollectionProducts, map[string]any{"name": "x"})
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)

	err = repo.Delete(ctx, models.CollectionProducts, "1")
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)
}

func TestLatencyHonoursContext(t *testing.T) {
	repo, _ := newTestRepository(t, WithLatency(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := repo.FetchAll(ctx, models.CollectionProducts)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLatencyDelaysOperations(t *testing.T) {
	repo, _ := newTestRepository(t, WithLatency(20*time.Millisecond))

	start := time.Now()
	_, err := repo.FetchAll(context.Background(), models.CollectionProducts)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestSnowflakeIDsRejectBadNode(t *testing.T) {
	_, err := NewSnowflakeIDs(5000)
	assert.Error(t, err)

	ids, err := NewSnowflakeIDs(3)
	require.NoError(t, err)
	assert.NotEqual(t, ids.NewID(), ids.NewID())
}

func TestRecordID(t *testing.T) {
	assert.Equal(t, "7", RecordID(store.Record{"id": "7"}))
	assert.Equal(t, "8", RecordID(store.Record{"id": json.Number("8")}))
	assert.Equal(t, "", RecordID(store.Record{}))
}
