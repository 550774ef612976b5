package monitoring

const (
	MetricWrites         = "writes_total"
	MetricReads          = "reads_total"
	MetricCacheHits      = "cache_hits_total"
	MetricCacheRefreshes = "cache_refreshes_total"
	MetricCompactions    = "compactions_total"
	MetricReclaimedBytes = "reclaimed_bytes_total"
	MetricStoreBytes     = "store_bytes"
	MetricLiveBytes      = "live_bytes"
)

// Stats collects list activity into a registry.
type Stats struct {
	registry *Registry
}

func NewStats(registry *Registry) *Stats {
	for _, m := range []Metric{
		{Name: MetricWrites, Type: Counter, Description: "Frames appended to the backing store"},
		{Name: MetricReads, Type: Counter, Description: "Frames read from the backing store"},
		{Name: MetricCacheHits, Type: Counter, Description: "Iterator steps served from the window"},
		{Name: MetricCacheRefreshes, Type: Counter, Description: "Iterator window refills"},
		{Name: MetricCompactions, Type: Counter, Description: "Completed compactions"},
		{Name: MetricReclaimedBytes, Type: Counter, Description: "Bytes released by compaction"},
		{Name: MetricStoreBytes, Type: Gauge, Description: "Backing store size in bytes"},
		{Name: MetricLiveBytes, Type: Gauge, Description: "Backing store bytes still referenced"},
	} {
		registry.Register(m)
	}

	return &Stats{registry: registry}
}

func (s *Stats) RecordWrite() {
	s.registry.Add(MetricWrites, 1)
}

func (s *Stats) RecordReads(n int) {
	s.registry.Add(MetricReads, float64(n))
}

func (s *Stats) RecordCacheHit() {
	s.registry.Add(MetricCacheHits, 1)
}

func (s *Stats) RecordCacheRefresh() {
	s.registry.Add(MetricCacheRefreshes, 1)
}

// RecordCompaction counts one compaction that released reclaimed bytes.
func (s *Stats) RecordCompaction(reclaimed int64) {
	s.registry.Add(MetricCompactions, 1)
	s.registry.Add(MetricReclaimedBytes, float64(reclaimed))
}

// SetSizes records the current store size and live byte count.
func (s *Stats) SetSizes(store, live int64) {
	s.registry.Set(MetricStoreBytes, float64(store))
	s.registry.Set(MetricLiveBytes, float64(live))
}

// Count returns a counter or gauge value as an integer.
func (s *Stats) Count(name string) int64 {
	return int64(s.registry.Value(name))
}
