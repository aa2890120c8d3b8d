package catalog

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstand/internal/cache"
	"bookstand/internal/events"
	"bookstand/internal/events/memory"
	"bookstand/internal/health"
	"bookstand/internal/storage"
	"bookstand/internal/storage/storagetest"
	"bookstand/pkg/model"
)

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{data: make(map[string][]byte)} }

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return v, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *fakeCache) Ping(context.Context) error { return nil }
func (c *fakeCache) Close() error               { return nil }

// newTestService builds a service over the given store with a healthy
// in-memory cache.
func newTestService(t *testing.T, store storage.DocumentStore) (*Service, events.Bus) {
	t.Helper()
	mon := health.NewMonitor(slog.Default(), time.Second)
	mon.MarkAvailable(health.Cache)
	bus := memory.New()
	t.Cleanup(func() { bus.Close() })
	return New(Deps{
		Store:  store,
		Cache:  newFakeCache(),
		Health: mon,
		Bus:    bus,
	}), bus
}

func createAuthor(t *testing.T, svc *Service, name string) model.Author {
	t.Helper()
	author, err := svc.Authors.Create(context.Background(), model.CreateAuthor{
		Name:            name,
		DateOfBirth:     time.Date(1950, 1, 12, 0, 0, 0, 0, time.UTC),
		CountryOfOrigin: "Chile",
		Description:     "Writes about the sea",
	})
	require.NoError(t, err)
	return author
}

func createBook(t *testing.T, svc *Service, authorID, name, summary string) model.Book {
	t.Helper()
	book, err := svc.Books.Create(context.Background(), model.CreateBook{
		Name:            name,
		Summary:         summary,
		PublicationDate: time.Date(2010, 6, 1, 0, 0, 0, 0, time.UTC),
		AuthorID:        authorID,
	})
	require.NoError(t, err)
	return book
}

func TestCreateThenGetReturnsFreshDocument(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t, storagetest.New())
	ctx := context.Background()

	author := createAuthor(t, svc, "Isabel Fuentes")
	require.NotEmpty(t, author.ID)

	got, err := svc.Authors.Get(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, author, got)

	// Second read comes from the cache and must be indistinguishable.
	again, err := svc.Authors.Get(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t, storagetest.New())

	_, err := svc.Authors.Create(context.Background(), model.CreateAuthor{})
	require.ErrorIs(t, err, model.ErrValidation)

	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
}

func TestBookCreateRequiresExistingAuthor(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t, storagetest.New())

	_, err := svc.Books.Create(context.Background(), model.CreateBook{
		Name:            "Orphaned",
		Summary:         "No author to be found",
		PublicationDate: time.Now(),
		AuthorID:        "ghost",
	})
	require.ErrorIs(t, err, model.ErrValidation)

	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "authorId", verr.Field)
}

func TestListReflectsLaterWrites(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t, storagetest.New())
	ctx := context.Background()

	createAuthor(t, svc, "First")
	listed, err := svc.Authors.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	// The listing is cached now; the next create must invalidate it.
	createAuthor(t, svc, "Second")
	listed, err = svc.Authors.List(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestUpdateIsPartial(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t, storagetest.New())
	ctx := context.Background()

	author := createAuthor(t, svc, "Before")
	newName := "After"
	updated, err := svc.Authors.Update(ctx, author.ID, model.UpdateAuthor{Name: &newName})
	require.NoError(t, err)

	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, author.CountryOfOrigin, updated.CountryOfOrigin)
	assert.Equal(t, author.Description, updated.Description)

	got, err := svc.Authors.Get(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", got.Name, "stale cached copy survived the update")
}

func TestUpdateUnknownIDReturnsNotFound(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t, storagetest.New())

	name := "anything"
	_, err := svc.Authors.Update(context.Background(), "missing", model.UpdateAuthor{Name: &name})
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteRemovesCachedCopyAndRepeatsNotFound(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t, storagetest.New())
	ctx := context.Background()

	author := createAuthor(t, svc, "Ephemeral")
	_, err := svc.Authors.Get(ctx, author.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Authors.Delete(ctx, author.ID))

	_, err = svc.Authors.Get(ctx, author.ID)
	require.ErrorIs(t, err, model.ErrNotFound, "cached copy must not outlive the document")

	// Deleting an already-deleted id keeps returning NotFound; the cache
	// invalidation step never turns it into a different failure.
	require.ErrorIs(t, svc.Authors.Delete(ctx, author.ID), model.ErrNotFound)
	require.ErrorIs(t, svc.Authors.Delete(ctx, author.ID), model.ErrNotFound)
}

func TestReadsAgreeWithAndWithoutCache(t *testing.T) {
	t.Parallel()
	store := storagetest.New()
	cached, _ := newTestService(t, store)

	// Same store, no cache at all.
	bare := New(Deps{
		Store:  store,
		Health: health.NewMonitor(slog.Default(), time.Second),
	})
	ctx := context.Background()

	author := createAuthor(t, cached, "Shared")
	book := createBook(t, cached, author.ID, "Common Ground", "One store, two services")

	fromCached, err := cached.Books.Get(ctx, book.ID)
	require.NoError(t, err)
	fromBare, err := bare.Books.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, fromBare, fromCached)

	listCached, err := cached.Authors.List(ctx)
	require.NoError(t, err)
	listBare, err := bare.Authors.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, listBare, listCached)
}

func TestUpvoteIsTheOnlyWayUpvotesMove(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t, storagetest.New())
	ctx := context.Background()

	author := createAuthor(t, svc, "Reviewer Bait")
	book := createBook(t, svc, author.ID, "Reviewed", "Gets opinions")

	review, err := svc.Reviews.Create(ctx, model.CreateReview{
		BookID: book.ID,
		Body:   "Gripping",
		Score:  5,
	})
	require.NoError(t, err)
	assert.Zero(t, review.Upvotes)

	first, err := svc.Reviews.Upvote(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Upvotes)

	second, err := svc.Reviews.Upvote(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Upvotes)

	// A score update must leave the counter alone.
	score := 4
	updated, err := svc.Reviews.Update(ctx, review.ID, model.UpdateReview{Score: &score})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Upvotes)
}

func TestReviewScoreBounds(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t, storagetest.New())
	ctx := context.Background()

	author := createAuthor(t, svc, "Author")
	book := createBook(t, svc, author.ID, "Scored", "Bounds check")

	_, err := svc.Reviews.Create(ctx, model.CreateReview{BookID: book.ID, Body: "x", Score: 6})
	require.ErrorIs(t, err, model.ErrValidation)

	_, err = svc.Reviews.Create(ctx, model.CreateReview{BookID: book.ID, Body: "x", Score: 0})
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestSearchFallsBackToStore(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t, storagetest.New())
	ctx := context.Background()

	author := createAuthor(t, svc, "Searcher")
	createBook(t, svc, author.ID, "The Dragon Keep", "A fortress in the clouds")
	createBook(t, svc, author.ID, "Harbor Lights", "Dragon sightings at sea")
	createBook(t, svc, author.ID, "Quiet Fields", "Nothing stirs")

	res, err := svc.Search(ctx, model.CollectionBooks, "DRAGON", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)
	assert.Len(t, res.Hits, 2)
	assert.Equal(t, int64(1), res.TotalPages)
}

func TestSearchRejectsUnsearchableCollection(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t, storagetest.New())

	_, err := svc.Search(context.Background(), model.CollectionSales, "2010", 1, 10)
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestStoreFailureSurfaces(t *testing.T) {
	t.Parallel()
	store := storagetest.New()
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	author := createAuthor(t, svc, "Unlucky")
	store.FailWith(model.ErrStoreUnavailable)

	// The entity copy is cached from the create, so that read still works.
	got, err := svc.Authors.Get(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, author, got)

	// The listing was never cached; its load hits the store and fails.
	_, err = svc.Authors.List(ctx)
	require.ErrorIs(t, err, model.ErrStoreUnavailable)

	_, err = svc.Authors.Create(ctx, model.CreateAuthor{
		Name:            "Blocked",
		DateOfBirth:     author.DateOfBirth,
		CountryOfOrigin: "Chile",
		Description:     "d",
	})
	require.ErrorIs(t, err, model.ErrStoreUnavailable)
}

func TestWritesPublishChangeEvents(t *testing.T) {
	t.Parallel()
	svc, bus := newTestService(t, storagetest.New())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx, model.CollectionAuthors)
	require.NoError(t, err)

	author := createAuthor(t, svc, "Broadcast")
	require.NoError(t, svc.Authors.Delete(ctx, author.ID))

	want := []events.Type{events.TypeCreated, events.TypeDeleted}
	for _, typ := range want {
		select {
		case ev := <-ch:
			assert.Equal(t, typ, ev.Type)
			assert.Equal(t, author.ID, ev.ID)
			assert.Equal(t, model.CollectionAuthors, ev.Collection)
		case <-time.After(time.Second):
			t.Fatalf("no %s event delivered", typ)
		}
	}
}
