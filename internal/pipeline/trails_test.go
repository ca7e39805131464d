package pipeline_test

import (
	"testing"
	"time"

	"github.com/couchcryptid/airport-awareness-etl/internal/domain"
	"github.com/couchcryptid/airport-awareness-etl/internal/observability"
	"github.com/couchcryptid/airport-awareness-etl/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func position(hex string, lat float64) domain.AircraftPosition {
	return domain.AircraftPosition{Hex: hex, Lat: lat, Lon: 129.35, AltitudeFt: 3000}
}

func TestTrailStore_Record(t *testing.T) {
	store := pipeline.NewTrailStore(10, 3, time.Minute, observability.NewMetricsForTesting())

	var trail []domain.TrailPoint
	for i := range 4 {
		trail = store.Record(position("71be01", 35.5+float64(i)*0.01), fixedNow.Add(time.Duration(i)*time.Second))
	}

	require.Len(t, trail, 3)
	assert.InDelta(t, 35.51, trail[0].Lat, 1e-9)
	assert.InDelta(t, 35.53, trail[2].Lat, 1e-9)
	require.NotNil(t, trail[2].AltitudeFt)
	assert.Equal(t, 3000.0, *trail[2].AltitudeFt)
	assert.Equal(t, 1, store.Len())
}

func TestTrailStore_ReturnsCopies(t *testing.T) {
	store := pipeline.NewTrailStore(10, 5, time.Minute, observability.NewMetricsForTesting())

	got := store.Record(position("71be01", 35.5), fixedNow)
	got[0].Lat = 0

	stored, ok := store.Trail("71be01")
	require.True(t, ok)
	assert.InDelta(t, 35.5, stored[0].Lat, 1e-9)

	stored[0].Lat = 0
	again, _ := store.Trail("71be01")
	assert.InDelta(t, 35.5, again[0].Lat, 1e-9)
}

func TestTrailStore_EvictsLeastRecentlyUpdated(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	store := pipeline.NewTrailStore(2, 5, time.Minute, metrics)

	store.Record(position("aaaaaa", 35.5), fixedNow)
	store.Record(position("bbbbbb", 35.5), fixedNow)
	store.Record(position("aaaaaa", 35.6), fixedNow)
	store.Record(position("cccccc", 35.5), fixedNow)

	_, ok := store.Trail("bbbbbb")
	assert.False(t, ok)
	a, ok := store.Trail("aaaaaa")
	require.True(t, ok)
	assert.Len(t, a, 2)
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.TrailsEvicted))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.TrailsTracked))
}

func TestTrailStore_ExpiresIdleAircraft(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	store := pipeline.NewTrailStore(10, 5, 50*time.Millisecond, metrics)
	store.Record(position("71be01", 35.5), fixedNow)
	store.Record(position("71c234", 35.5), fixedNow)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.TrailsTracked))

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.TrailsTracked) == 0
	}, time.Second, 10*time.Millisecond, "expired aircraft leave the tracked gauge")
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.TrailsEvicted))

	require.Eventually(t, func() bool {
		_, ok := store.Trail("71be01")
		return !ok
	}, time.Second, 10*time.Millisecond)

	trail := store.Record(position("71be01", 35.6), fixedNow)
	assert.Len(t, trail, 1, "an expired aircraft starts a fresh trail")
}

func TestTrailStore_UnknownAircraft(t *testing.T) {
	store := pipeline.NewTrailStore(10, 5, time.Minute, observability.NewMetricsForTesting())
	trail, ok := store.Trail("ffffff")
	assert.False(t, ok)
	assert.Nil(t, trail)
}
