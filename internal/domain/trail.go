package domain

import (
	"math"
	"time"
)

const (
	// DefaultMaxJumpDegrees is the largest step between consecutive trail
	// points that FilterAbnormalJumps accepts.
	DefaultMaxJumpDegrees = 0.1

	// DefaultMaxTrailPoints bounds the trail kept per aircraft.
	DefaultMaxTrailPoints = 100
)

// TrailPoint is one past position of an aircraft. Trails are ordered oldest first.
type TrailPoint struct {
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	AltitudeFt *float64  `json:"altitude_ft,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// FilterAbnormalJumps drops sensor glitches from a trail. The first point is
// always kept. Every later point is kept only if its planar distance in
// degrees to the point immediately before it in the input is at most
// maxJumpDegrees.
//
// The comparison is against the raw predecessor, not the last kept point, so
// one outlier also drops the point after it. Consumers depend on that
// cascade; do not switch to last-accepted smoothing without revisiting them.
// The input slice is never modified.
func FilterAbnormalJumps(trail []TrailPoint, maxJumpDegrees float64) []TrailPoint {
	if len(trail) == 0 {
		return []TrailPoint{}
	}

	filtered := make([]TrailPoint, 0, len(trail))
	filtered = append(filtered, trail[0])
	for i := 1; i < len(trail); i++ {
		prev, curr := trail[i-1], trail[i]
		if math.Hypot(curr.Lon-prev.Lon, curr.Lat-prev.Lat) <= maxJumpDegrees {
			filtered = append(filtered, curr)
		}
	}
	return filtered
}

// AppendTrail returns a new trail with point appended, keeping only the last
// maxPoints entries. A non-positive maxPoints means DefaultMaxTrailPoints.
func AppendTrail(trail []TrailPoint, point TrailPoint, maxPoints int) []TrailPoint {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxTrailPoints
	}
	start := 0
	if len(trail)+1 > maxPoints {
		start = len(trail) + 1 - maxPoints
	}
	out := make([]TrailPoint, 0, len(trail)-start+1)
	out = append(out, trail[start:]...)
	return append(out, point)
}
