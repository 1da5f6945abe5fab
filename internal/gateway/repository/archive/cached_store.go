package archive

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type CacheConfig struct {
	BlobTTL        time.Duration
	BlobMaxEntries int

	ListTTL        time.Duration
	ListMaxEntries int

	URLTTL        time.Duration
	URLMaxEntries int
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		BlobTTL:        5 * time.Minute,
		BlobMaxEntries: 1024,
		ListTTL:        30 * time.Second,
		ListMaxEntries: 512,
		URLTTL:         5 * time.Minute,
		URLMaxEntries:  1024,
	}
}

type MetricsSnapshot struct {
	BlobHits       uint64
	BlobMisses     uint64
	ListHits       uint64
	ListMisses     uint64
	URLHits        uint64
	URLMisses      uint64
	OriginReads    uint64
	OriginWrites   uint64
	OriginReadErr  uint64
	OriginWriteErr uint64
}

type metrics struct {
	blobHits, blobMisses         atomic.Uint64
	listHits, listMisses         atomic.Uint64
	urlHits, urlMisses           atomic.Uint64
	originReads, originWrites    atomic.Uint64
	originReadErr, originWriteEr atomic.Uint64
}

// CachedStore is a read-through cache in front of an origin Store. Writes go
// to the origin first and then refresh the cache.
type CachedStore struct {
	origin Store

	blobs *expirable.LRU[string, []byte]
	lists *expirable.LRU[string, []string]
	urls  *expirable.LRU[string, string]
	m     metrics
}

func NewCachedStore(origin Store, cfg CacheConfig) *CachedStore {
	def := DefaultCacheConfig()
	if cfg.BlobTTL <= 0 {
		cfg.BlobTTL = def.BlobTTL
	}
	if cfg.BlobMaxEntries <= 0 {
		cfg.BlobMaxEntries = def.BlobMaxEntries
	}
	if cfg.ListTTL <= 0 {
		cfg.ListTTL = def.ListTTL
	}
	if cfg.ListMaxEntries <= 0 {
		cfg.ListMaxEntries = def.ListMaxEntries
	}
	if cfg.URLTTL <= 0 {
		cfg.URLTTL = def.URLTTL
	}
	if cfg.URLMaxEntries <= 0 {
		cfg.URLMaxEntries = def.URLMaxEntries
	}
	return &CachedStore{
		origin: origin,
		blobs:  expirable.NewLRU[string, []byte](cfg.BlobMaxEntries, nil, cfg.BlobTTL),
		lists:  expirable.NewLRU[string, []string](cfg.ListMaxEntries, nil, cfg.ListTTL),
		urls:   expirable.NewLRU[string, string](cfg.URLMaxEntries, nil, cfg.URLTTL),
	}
}

func (s *CachedStore) Put(ctx context.Context, runID, name string, content []byte) error {
	s.m.originWrites.Add(1)
	if err := s.origin.Put(ctx, runID, name, content); err != nil {
		s.m.originWriteEr.Add(1)
		return err
	}
	key := cacheKey(runID, name)
	s.blobs.Add(key, append([]byte(nil), content...))
	s.lists.Remove(strings.TrimSpace(runID))
	s.urls.Remove(key)
	return nil
}

func (s *CachedStore) Get(ctx context.Context, runID, name string) ([]byte, error) {
	key := cacheKey(runID, name)
	if raw, ok := s.blobs.Get(key); ok {
		s.m.blobHits.Add(1)
		return append([]byte(nil), raw...), nil
	}
	s.m.blobMisses.Add(1)
	s.m.originReads.Add(1)

	raw, err := s.origin.Get(ctx, runID, name)
	if err != nil {
		s.m.originReadErr.Add(1)
		return nil, err
	}
	s.blobs.Add(key, append([]byte(nil), raw...))
	return raw, nil
}

func (s *CachedStore) GetURL(ctx context.Context, runID, name string) (string, error) {
	key := cacheKey(runID, name)
	if u, ok := s.urls.Get(key); ok {
		s.m.urlHits.Add(1)
		return u, nil
	}
	s.m.urlMisses.Add(1)
	s.m.originReads.Add(1)

	u, err := s.origin.GetURL(ctx, runID, name)
	if err != nil {
		s.m.originReadErr.Add(1)
		return "", err
	}
	if strings.TrimSpace(u) != "" {
		s.urls.Add(key, u)
	}
	return u, nil
}

func (s *CachedStore) List(ctx context.Context, runID string) ([]string, error) {
	runID = strings.TrimSpace(runID)
	if list, ok := s.lists.Get(runID); ok {
		s.m.listHits.Add(1)
		return append([]string(nil), list...), nil
	}
	s.m.listMisses.Add(1)
	s.m.originReads.Add(1)

	list, err := s.origin.List(ctx, runID)
	if err != nil {
		s.m.originReadErr.Add(1)
		return nil, err
	}
	s.lists.Add(runID, append([]string(nil), list...))
	return list, nil
}

func (s *CachedStore) Metrics() MetricsSnapshot {
	return MetricsSnapshot{
		BlobHits:       s.m.blobHits.Load(),
		BlobMisses:     s.m.blobMisses.Load(),
		ListHits:       s.m.listHits.Load(),
		ListMisses:     s.m.listMisses.Load(),
		URLHits:        s.m.urlHits.Load(),
		URLMisses:      s.m.urlMisses.Load(),
		OriginReads:    s.m.originReads.Load(),
		OriginWrites:   s.m.originWrites.Load(),
		OriginReadErr:  s.m.originReadErr.Load(),
		OriginWriteErr: s.m.originWriteEr.Load(),
	}
}

func cacheKey(runID, name string) string {
	return strings.TrimSpace(runID) + "/" + strings.TrimLeft(strings.TrimSpace(name), "/")
}
