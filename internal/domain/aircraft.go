package domain

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultReferenceAirport is Ulsan airport (RKPU), the airport the phase
// classifier measures proximity against when the caller supplies none.
var DefaultReferenceAirport = Coordinate{Lat: 35.5934, Lon: 129.3518}

// AircraftPosition is one position report for one aircraft. Numeric fields
// left at zero are treated as 0 by the classifier. OnGround, when set,
// overrides the altitude/speed heuristic.
type AircraftPosition struct {
	Hex             string  `json:"hex"` // ICAO 24-bit address
	Callsign        string  `json:"flight,omitempty"`
	Lat             float64 `json:"lat"`
	Lon             float64 `json:"lon"`
	AltitudeFt      float64 `json:"altitude_ft"`
	GroundSpeedKt   float64 `json:"ground_speed"`
	VerticalRateFpm float64 `json:"vertical_rate"`
	TrackDeg        float64 `json:"track,omitempty"`
	Category        string  `json:"category,omitempty"` // ADS-B emitter category, e.g. "A3"
	OnGround        *bool   `json:"on_ground,omitempty"`
}

// Coordinate returns the report's position.
func (p AircraftPosition) Coordinate() Coordinate {
	return Coordinate{Lat: p.Lat, Lon: p.Lon}
}

// FlightPhase is a coarse stage of flight.
type FlightPhase string

const (
	PhaseGround    FlightPhase = "ground"
	PhaseTakeoff   FlightPhase = "takeoff"
	PhaseDeparture FlightPhase = "departure"
	PhaseClimb     FlightPhase = "climb"
	PhaseCruise    FlightPhase = "cruise"
	PhaseDescent   FlightPhase = "descent"
	PhaseApproach  FlightPhase = "approach"
	PhaseLanding   FlightPhase = "landing"
	PhaseEnroute   FlightPhase = "enroute"
	PhaseUnknown   FlightPhase = "unknown"
)

// AllFlightPhases lists every FlightPhase.
var AllFlightPhases = []FlightPhase{
	PhaseGround, PhaseTakeoff, PhaseDeparture, PhaseClimb, PhaseCruise,
	PhaseDescent, PhaseApproach, PhaseLanding, PhaseEnroute, PhaseUnknown,
}

// Phase thresholds. Altitudes in feet, speeds in knots, rates in ft/min,
// distances in NM.
const (
	groundMaxAltFt     = 100
	groundMaxSpeedKt   = 30
	runwayMaxAltFt     = 500
	runwayMinRateFpm   = 300
	runwayMinSpeedKt   = 60
	landingMaxDistNM   = 5
	terminalMaxAltFt   = 10000
	terminalMinRateFpm = 200
	terminalMaxDistNM  = 30
	levelFlightRateFpm = 300
)

// ClassifyFlightPhase maps an instantaneous aircraft state to a phase. The
// rules are evaluated in order and the first match wins, so a low, fast,
// climbing aircraft near the field is a takeoff rather than a departure.
func ClassifyFlightPhase(pos AircraftPosition, airport Coordinate) FlightPhase {
	alt := pos.AltitudeFt
	gs := pos.GroundSpeedKt
	vr := pos.VerticalRateFpm
	dist := DistanceNM(pos.Coordinate(), airport)

	switch {
	case (pos.OnGround != nil && *pos.OnGround) || (alt < groundMaxAltFt && gs < groundMaxSpeedKt):
		return PhaseGround
	case alt < runwayMaxAltFt && vr > runwayMinRateFpm && gs > runwayMinSpeedKt:
		return PhaseTakeoff
	case alt < runwayMaxAltFt && vr < -runwayMinRateFpm && gs > runwayMinSpeedKt && dist < landingMaxDistNM:
		return PhaseLanding
	case alt < terminalMaxAltFt && vr > terminalMinRateFpm && dist < terminalMaxDistNM:
		return PhaseDeparture
	case alt < terminalMaxAltFt && vr < -terminalMinRateFpm && dist < terminalMaxDistNM:
		return PhaseApproach
	case alt >= terminalMaxAltFt || dist > terminalMaxDistNM:
		switch {
		case math.Abs(vr) < levelFlightRateFpm:
			return PhaseCruise
		case vr > 0:
			return PhaseClimb
		default:
			return PhaseDescent
		}
	}
	return PhaseEnroute
}

var flightPhaseColors = map[FlightPhase]string{
	PhaseGround:    "#9E9E9E",
	PhaseTakeoff:   "#4CAF50",
	PhaseDeparture: "#8BC34A",
	PhaseClimb:     "#03A9F4",
	PhaseCruise:    "#2196F3",
	PhaseDescent:   "#00BCD4",
	PhaseApproach:  "#FF5722",
	PhaseLanding:   "#FF9800",
	PhaseEnroute:   "#2196F3",
	PhaseUnknown:   "#9E9E9E",
}

var flightPhaseLabels = map[FlightPhase]string{
	PhaseGround:    "지상",
	PhaseTakeoff:   "이륙",
	PhaseDeparture: "출발",
	PhaseClimb:     "상승",
	PhaseCruise:    "순항",
	PhaseDescent:   "강하",
	PhaseApproach:  "접근",
	PhaseLanding:   "착륙",
	PhaseEnroute:   "비행중",
	PhaseUnknown:   "알 수 없음",
}

// FlightPhaseColor returns the map color for a phase. Values outside the
// closed set are drawn as unknown.
func FlightPhaseColor(p FlightPhase) string {
	if c, ok := flightPhaseColors[p]; ok {
		return c
	}
	return flightPhaseColors[PhaseUnknown]
}

// FlightPhaseLabel returns the Korean display label for a phase.
func FlightPhaseLabel(p FlightPhase) string {
	if l, ok := flightPhaseLabels[p]; ok {
		return l
	}
	return flightPhaseLabels[PhaseUnknown]
}

// IsOnGround reports whether the aircraft is on the ground, trusting the
// explicit flag when present.
func IsOnGround(pos AircraftPosition) bool {
	if pos.OnGround != nil {
		return *pos.OnGround
	}
	return pos.AltitudeFt < groundMaxAltFt && pos.GroundSpeedKt < groundMaxSpeedKt
}

// EstimateETAMinutes returns the straight-line time to dest at the current
// ground speed. ok is false for a stationary aircraft.
func EstimateETAMinutes(pos AircraftPosition, dest Coordinate) (float64, bool) {
	if pos.GroundSpeedKt <= 0 {
		return 0, false
	}
	return DistanceNM(pos.Coordinate(), dest) / pos.GroundSpeedKt * 60, true
}

// FeetToMeters converts feet to metres.
func FeetToMeters(ft float64) float64 { return ft * 0.3048 }

// transitionAltitudeFt is where altitudes switch to flight levels for display.
const transitionAltitudeFt = 18000

var displayPrinter = message.NewPrinter(language.English)

// FormatAltitude renders an altitude for display: "FL350" at or above the
// transition altitude, "4,500ft" below it, "-" when unknown.
func FormatAltitude(ft *float64) string {
	if ft == nil {
		return "-"
	}
	if *ft >= transitionAltitudeFt {
		return fmt.Sprintf("FL%d", int(math.Round(*ft/100)))
	}
	return displayPrinter.Sprintf("%dft", int(math.Round(*ft)))
}

// FormatSpeed renders a ground speed in knots, "-" when unknown.
func FormatSpeed(kt *float64) string {
	if kt == nil {
		return "-"
	}
	return fmt.Sprintf("%dkt", int(math.Round(*kt)))
}

var emitterCategoryColors = map[string]string{
	"A0": "#00BCD4",
	"A1": "#4CAF50",
	"A2": "#8BC34A",
	"A3": "#CDDC39",
	"A4": "#FFEB3B",
	"A5": "#FF9800",
	"A6": "#F44336",
	"A7": "#E91E63",
}

// CategoryColor maps an ADS-B emitter category to a color, grey when unknown.
func CategoryColor(category string) string {
	if c, ok := emitterCategoryColors[category]; ok {
		return c
	}
	return "#9E9E9E"
}

// altitudeColorCeilingFt is the altitude at which AltitudeColor saturates to red.
const altitudeColorCeilingFt = 8000

// AltitudeColor ramps from green at the surface through yellow to red at
// altitudeColorCeilingFt and above.
func AltitudeColor(ft float64) string {
	t := min(1, max(0, ft/altitudeColorCeilingFt))
	if t < 0.5 {
		return fmt.Sprintf("rgb(%d, 255, 50)", int(math.Round(255*t*2)))
	}
	return fmt.Sprintf("rgb(255, %d, 50)", int(math.Round(255*(1-(t-0.5)*2))))
}

// Aircraft is the tracked state of one aircraft: its latest report, the
// trail of past positions, and the derived phase.
type Aircraft struct {
	Hex         string           `json:"hex"`
	Position    AircraftPosition `json:"position"`
	Trail       []TrailPoint     `json:"trail"`
	Phase       FlightPhase      `json:"phase"`
	LastUpdated time.Time        `json:"last_updated"`
}

// NewAircraft builds an Aircraft from its first report.
func NewAircraft(pos AircraftPosition, trail []TrailPoint, airport Coordinate) Aircraft {
	return Aircraft{
		Hex:         pos.Hex,
		Position:    pos,
		Trail:       trail,
		Phase:       ClassifyFlightPhase(pos, airport),
		LastUpdated: clock.Now(),
	}
}

// UpdateAircraft returns a copy of a moved to pos, with the new position
// appended to its trail (bounded by maxTrailPoints) and the phase recomputed.
func UpdateAircraft(a Aircraft, pos AircraftPosition, maxTrailPoints int, airport Coordinate) Aircraft {
	now := clock.Now()
	alt := pos.AltitudeFt
	point := TrailPoint{Lat: pos.Lat, Lon: pos.Lon, AltitudeFt: &alt, Timestamp: now}

	a.Position = pos
	a.Trail = AppendTrail(a.Trail, point, maxTrailPoints)
	a.Phase = ClassifyFlightPhase(pos, airport)
	a.LastUpdated = now
	return a
}
