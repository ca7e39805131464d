package domain

import "math"

const (
	// nmPerDegreeLat is the length of one degree of latitude in nautical miles.
	nmPerDegreeLat = 60.0

	// kmPerDegree is the mean length of one degree of latitude in kilometres.
	kmPerDegree = 111.32
)

// Coordinate is a WGS-84 latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DistanceNM returns the planar-approximation distance between a and b in
// nautical miles. Longitude is scaled by cos(a.Lat) to account for meridian
// convergence, so swapping the arguments changes the result slightly when
// the latitudes differ. Accurate to within a few percent over the few
// hundred NM around a single airport; not a great-circle distance.
func DistanceNM(a, b Coordinate) float64 {
	dLat := (a.Lat - b.Lat) * nmPerDegreeLat
	dLon := (a.Lon - b.Lon) * nmPerDegreeLat * math.Cos(radians(a.Lat))
	return math.Sqrt(dLat*dLat + dLon*dLon)
}

// PointInPolygon reports whether p lies inside polygon using the even-odd
// crossing test. The polygon is implicitly closed (the last vertex connects
// to the first). Polygons with fewer than three vertices contain nothing.
// Points exactly on an edge may land either way.
func PointInPolygon(p Coordinate, polygon []Coordinate) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	for i, j := 0, len(polygon)-1; i < len(polygon); j, i = i, i+1 {
		xi, yi := polygon[i].Lon, polygon[i].Lat
		xj, yj := polygon[j].Lon, polygon[j].Lat
		if (yi > p.Lat) != (yj > p.Lat) && p.Lon < (xj-xi)*(p.Lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// PolygonCentroid returns the arithmetic mean of the polygon's vertices (not
// the area-weighted centroid). An empty polygon yields the zero Coordinate.
func PolygonCentroid(polygon []Coordinate) Coordinate {
	if len(polygon) == 0 {
		return Coordinate{}
	}
	var sumLat, sumLon float64
	for _, c := range polygon {
		sumLat += c.Lat
		sumLon += c.Lon
	}
	n := float64(len(polygon))
	return Coordinate{Lat: sumLat / n, Lon: sumLon / n}
}

// NearestPoint returns the index of the candidate closest to pos by
// DistanceNM. Ties go to the earliest candidate. ok is false when there are
// no candidates.
func NearestPoint(pos Coordinate, candidates []Coordinate) (idx int, ok bool) {
	if len(candidates) == 0 {
		return -1, false
	}
	best := math.Inf(1)
	for i, c := range candidates {
		if d := DistanceNM(pos, c); d < best {
			best = d
			idx = i
		}
	}
	return idx, true
}

// Waypoint is a named navigation fix.
type Waypoint struct {
	Ident string       `json:"ident"`
	Name  string       `json:"name,omitempty"`
	Type  WaypointType `json:"type"`
	Lat   float64      `json:"lat"`
	Lon   float64      `json:"lon"`
}

// WaypointType distinguishes plain fixes from navaids and airports.
type WaypointType string

const (
	WaypointFix     WaypointType = "waypoint"
	WaypointNavaid  WaypointType = "navaid"
	WaypointAirport WaypointType = "airport"
)

// Coordinate returns the waypoint's position.
func (w Waypoint) Coordinate() Coordinate {
	return Coordinate{Lat: w.Lat, Lon: w.Lon}
}

// FindNearestWaypoint returns the waypoint closest to pos.
func FindNearestWaypoint(pos Coordinate, waypoints []Waypoint) (Waypoint, bool) {
	coords := make([]Coordinate, len(waypoints))
	for i, wp := range waypoints {
		coords[i] = wp.Coordinate()
	}
	idx, ok := NearestPoint(pos, coords)
	if !ok {
		return Waypoint{}, false
	}
	return waypoints[idx], true
}

// DefaultAheadAngleDeg is the half-angle of the cone used by FilterWaypointsAhead.
const DefaultAheadAngleDeg = 90.0

// FilterWaypointsAhead keeps the waypoints whose bearing from pos lies within
// maxAngleDeg of trackDeg. Input order is preserved.
func FilterWaypointsAhead(pos Coordinate, trackDeg float64, waypoints []Waypoint, maxAngleDeg float64) []Waypoint {
	ahead := make([]Waypoint, 0, len(waypoints))
	for _, wp := range waypoints {
		bearing := degrees(math.Atan2(
			(wp.Lon-pos.Lon)*math.Cos(radians(pos.Lat)),
			wp.Lat-pos.Lat,
		))
		if math.Abs(normalizeSignedDegrees(bearing-trackDeg)) < maxAngleDeg {
			ahead = append(ahead, wp)
		}
	}
	return ahead
}

// CirclePolygon approximates a circle of radiusDeg around center with
// numPoints segments. The first vertex is repeated at the end. Longitude
// offsets are stretched by 1/cos(lat) so the circle looks round on a map.
func CirclePolygon(center Coordinate, radiusDeg float64, numPoints int) []Coordinate {
	if numPoints <= 0 {
		return nil
	}
	coords := make([]Coordinate, 0, numPoints+1)
	cosLat := math.Cos(radians(center.Lat))
	for i := 0; i <= numPoints; i++ {
		angle := float64(i) / float64(numPoints) * 2 * math.Pi
		coords = append(coords, Coordinate{
			Lat: center.Lat + radiusDeg*math.Sin(angle),
			Lon: center.Lon + radiusDeg*math.Cos(angle)/cosLat,
		})
	}
	return coords
}

// NMToDegrees converts nautical miles to degrees of latitude.
func NMToDegrees(nm float64) float64 { return nm / nmPerDegreeLat }

// KMToDegrees converts kilometres to degrees of latitude.
func KMToDegrees(km float64) float64 { return km / kmPerDegree }

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// normalizeSignedDegrees maps an angle to [-180, 180].
func normalizeSignedDegrees(deg float64) float64 {
	d := math.Mod(deg+180, 360)
	if d < 0 {
		d += 360
	}
	return d - 180
}
