package archive

import "github.com/prometheus/client_golang/prometheus"

var (
	cacheLookupsDesc = prometheus.NewDesc(
		"askdata_archive_cache_lookups_total",
		"Run archive cache lookups by cache and result",
		[]string{"cache", "result"}, nil,
	)
	originOpsDesc = prometheus.NewDesc(
		"askdata_archive_origin_ops_total",
		"Calls reaching the origin store by operation",
		[]string{"op"}, nil,
	)
	originErrorsDesc = prometheus.NewDesc(
		"askdata_archive_origin_errors_total",
		"Failed origin store calls by operation",
		[]string{"op"}, nil,
	)
)

// Describe and Collect export the cache counters, so a CachedStore can be
// handed to prometheus.Register.
func (s *CachedStore) Describe(ch chan<- *prometheus.Desc) {
	ch <- cacheLookupsDesc
	ch <- originOpsDesc
	ch <- originErrorsDesc
}

func (s *CachedStore) Collect(ch chan<- prometheus.Metric) {
	m := s.Metrics()
	lookups := []struct {
		cache, result string
		v             uint64
	}{
		{"blob", "hit", m.BlobHits},
		{"blob", "miss", m.BlobMisses},
		{"list", "hit", m.ListHits},
		{"list", "miss", m.ListMisses},
		{"url", "hit", m.URLHits},
		{"url", "miss", m.URLMisses},
	}
	for _, l := range lookups {
		ch <- prometheus.MustNewConstMetric(cacheLookupsDesc, prometheus.CounterValue, float64(l.v), l.cache, l.result)
	}
	ch <- prometheus.MustNewConstMetric(originOpsDesc, prometheus.CounterValue, float64(m.OriginReads), "read")
	ch <- prometheus.MustNewConstMetric(originOpsDesc, prometheus.CounterValue, float64(m.OriginWrites), "write")
	ch <- prometheus.MustNewConstMetric(originErrorsDesc, prometheus.CounterValue, float64(m.OriginReadErr), "read")
	ch <- prometheus.MustNewConstMetric(originErrorsDesc, prometheus.CounterValue, float64(m.OriginWriteErr), "write")
}
