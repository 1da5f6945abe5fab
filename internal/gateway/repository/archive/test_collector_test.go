package archive

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gathered flattens a registry into "name{k=v,...}" -> value.
func gathered(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	out := map[string]float64{}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			var labels []string
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			out[f.GetName()+"{"+strings.Join(labels, ",")+"}"] = m.GetCounter().GetValue()
		}
	}
	return out
}

func TestCachedStoreExportsCounters(t *testing.T) {
	ctx := context.Background()
	origin := newCountingStore()
	origin.failPut = true
	store := NewCachedStore(origin, DefaultCacheConfig())

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(store))

	require.NoError(t, origin.MemoryStore.Put(ctx, "r1", "a.txt", []byte("a")))
	for i := 0; i < 2; i++ {
		_, err := store.Get(ctx, "r1", "a.txt")
		require.NoError(t, err)
	}
	_, err := store.List(ctx, "r1")
	require.NoError(t, err)
	assert.Error(t, store.Put(ctx, "r1", "b.txt", []byte("b")))

	got := gathered(t, reg)
	assert.Equal(t, 1.0, got["askdata_archive_cache_lookups_total{cache=blob,result=hit}"])
	assert.Equal(t, 1.0, got["askdata_archive_cache_lookups_total{cache=blob,result=miss}"])
	assert.Equal(t, 1.0, got["askdata_archive_cache_lookups_total{cache=list,result=miss}"])
	assert.Equal(t, 0.0, got["askdata_archive_cache_lookups_total{cache=url,result=hit}"])
	assert.Equal(t, 2.0, got["askdata_archive_origin_ops_total{op=read}"])
	assert.Equal(t, 1.0, got["askdata_archive_origin_ops_total{op=write}"])
	assert.Equal(t, 1.0, got["askdata_archive_origin_errors_total{op=write}"])
	assert.Len(t, got, 10)
}
