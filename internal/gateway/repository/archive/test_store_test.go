package archive

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	*MemoryStore
	mu        sync.Mutex
	gets      int
	lists     int
	urls      int
	failPut   bool
	presigned string
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: NewMemoryStore()}
}

func (s *countingStore) Put(ctx context.Context, runID, name string, content []byte) error {
	if s.failPut {
		return fmt.Errorf("put failed")
	}
	return s.MemoryStore.Put(ctx, runID, name, content)
}

func (s *countingStore) Get(ctx context.Context, runID, name string) ([]byte, error) {
	s.mu.Lock()
	s.gets++
	s.mu.Unlock()
	return s.MemoryStore.Get(ctx, runID, name)
}

func (s *countingStore) List(ctx context.Context, runID string) ([]string, error) {
	s.mu.Lock()
	s.lists++
	s.mu.Unlock()
	return s.MemoryStore.List(ctx, runID)
}

func (s *countingStore) GetURL(_ context.Context, runID, name string) (string, error) {
	s.mu.Lock()
	s.urls++
	s.mu.Unlock()
	return s.presigned, nil
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Put(ctx, "run-1", ResponseFile, []byte(`{"ok":true}`)))
	require.NoError(t, s.Put(ctx, "run-1", "/"+PromptFile, []byte("prompt")))
	require.NoError(t, s.Put(ctx, "run-2", RequestFile, []byte("{}")))

	got, err := s.Get(ctx, "run-1", PromptFile)
	require.NoError(t, err)
	assert.Equal(t, "prompt", string(got))

	names, err := s.List(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, []string{PromptFile, ResponseFile}, names)

	_, err = s.Get(ctx, "run-1", RequestFile)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, s.Put(ctx, " ", "x", nil))
	assert.Error(t, s.Put(ctx, "run", "", nil))
}

func TestCachedStoreReadThroughAndMetrics(t *testing.T) {
	ctx := context.Background()
	origin := newCountingStore()
	require.NoError(t, origin.MemoryStore.Put(ctx, "r1", "a.txt", []byte("hello")))
	store := NewCachedStore(origin, DefaultCacheConfig())

	for i := 0; i < 3; i++ {
		got, err := store.Get(ctx, "r1", "a.txt")
		require.NoError(t, err)
		assert.Equal(t, "hello", string(got))
	}
	assert.Equal(t, 1, origin.gets)

	_, err := store.List(ctx, "r1")
	require.NoError(t, err)
	_, err = store.List(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 1, origin.lists)

	m := store.Metrics()
	assert.Equal(t, uint64(2), m.BlobHits)
	assert.Equal(t, uint64(1), m.BlobMisses)
	assert.Equal(t, uint64(1), m.ListHits)
}

func TestCachedStorePutInvalidatesList(t *testing.T) {
	ctx := context.Background()
	origin := newCountingStore()
	store := NewCachedStore(origin, DefaultCacheConfig())

	require.NoError(t, store.Put(ctx, "r1", "a.txt", []byte("a")))
	names, err := store.List(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, names)

	require.NoError(t, store.Put(ctx, "r1", "b.txt", []byte("b")))
	names, err = store.List(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, names)

	got, err := store.Get(ctx, "r1", "b.txt")
	require.NoError(t, err)
	assert.Equal(t, "b", string(got))
	assert.Equal(t, 0, origin.gets, "written blobs are served from cache")
}

func TestCachedStoreWriteFailureLeavesCacheCold(t *testing.T) {
	ctx := context.Background()
	origin := newCountingStore()
	origin.failPut = true
	store := NewCachedStore(origin, DefaultCacheConfig())

	assert.Error(t, store.Put(ctx, "r1", "a.txt", []byte("a")))
	_, err := store.Get(ctx, "r1", "a.txt")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, uint64(1), store.Metrics().OriginWriteErr)
}

func TestCachedStoreCachesOnlyNonEmptyURLs(t *testing.T) {
	ctx := context.Background()
	origin := newCountingStore()
	store := NewCachedStore(origin, DefaultCacheConfig())

	_, _ = store.GetURL(ctx, "r1", "a.txt")
	_, _ = store.GetURL(ctx, "r1", "a.txt")
	assert.Equal(t, 2, origin.urls)

	origin.presigned = "https://example.com/r1/a.txt"
	u, err := store.GetURL(ctx, "r1", "b.txt")
	require.NoError(t, err)
	assert.Equal(t, origin.presigned, u)
	_, _ = store.GetURL(ctx, "r1", "b.txt")
	assert.Equal(t, 3, origin.urls)
}

func TestNewS3StoreValidatesConfig(t *testing.T) {
	_, err := NewS3Store(S3Config{})
	assert.ErrorContains(t, err, "endpoint")
	_, err = NewS3Store(S3Config{Endpoint: "minio:9000"})
	assert.ErrorContains(t, err, "access key")
	_, err = NewS3Store(S3Config{Endpoint: "minio:9000", AccessKey: "a", SecretKey: "b"})
	assert.ErrorContains(t, err, "bucket")

	s, err := NewS3Store(S3Config{Endpoint: "minio:9000", AccessKey: "a", SecretKey: "b", Bucket: "runs"})
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", s.region)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", ContentType(ResponseFile))
	assert.Equal(t, "text/plain; charset=utf-8", ContentType(PromptFile))
	assert.Equal(t, "application/octet-stream", ContentType("blob"))
}
