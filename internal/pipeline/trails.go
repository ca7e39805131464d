package pipeline

import (
	"sync"
	"time"

	"github.com/couchcryptid/airport-awareness-etl/internal/domain"
	"github.com/couchcryptid/airport-awareness-etl/internal/observability"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// TrailStore keeps the recent positions of each aircraft, keyed by hex.
// Aircraft not heard from within the TTL, or pushed out by newer aircraft
// once the store is full, lose their trail.
type TrailStore struct {
	mu        sync.Mutex
	cache     *expirable.LRU[string, []domain.TrailPoint]
	maxPoints int
	metrics   *observability.Metrics
}

// NewTrailStore creates a store holding up to size aircraft with at most
// maxPoints positions each.
func NewTrailStore(size, maxPoints int, ttl time.Duration, metrics *observability.Metrics) *TrailStore {
	s := &TrailStore{maxPoints: maxPoints, metrics: metrics}
	// The callback runs under the cache lock, so it must not call back into
	// the cache. Record resyncs the gauge from Len after every Add.
	s.cache = expirable.NewLRU[string, []domain.TrailPoint](size, func(string, []domain.TrailPoint) {
		metrics.TrailsEvicted.Inc()
		metrics.TrailsTracked.Dec()
	}, ttl)
	return s
}

// Record appends pos to the aircraft's trail and returns the updated trail.
// The returned slice is owned by the caller.
func (s *TrailStore) Record(pos domain.AircraftPosition, at time.Time) []domain.TrailPoint {
	alt := pos.AltitudeFt
	point := domain.TrailPoint{Lat: pos.Lat, Lon: pos.Lon, AltitudeFt: &alt, Timestamp: at}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, _ := s.cache.Get(pos.Hex)
	trail := domain.AppendTrail(prev, point, s.maxPoints)
	s.cache.Add(pos.Hex, trail)
	s.metrics.TrailsTracked.Set(float64(s.cache.Len()))

	return append([]domain.TrailPoint(nil), trail...)
}

// Trail returns a copy of the stored trail for hex.
func (s *TrailStore) Trail(hex string) ([]domain.TrailPoint, bool) {
	trail, ok := s.cache.Peek(hex)
	if !ok {
		return nil, false
	}
	return append([]domain.TrailPoint(nil), trail...), true
}

// Len returns the number of aircraft with a stored trail.
func (s *TrailStore) Len() int {
	return s.cache.Len()
}
