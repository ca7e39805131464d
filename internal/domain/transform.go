package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned for envelopes whose kind is missing or unsupported.
var ErrUnknownKind = errors.New("unknown record kind")

// Reference is the airport that facts are derived relative to.
type Reference struct {
	ICAO     string
	Location Coordinate

	// Airspaces are checked for containment of every aircraft position.
	Airspaces []Airspace

	// Airports locates NOTAMs that carry no Q-line, keyed by ICAO code.
	Airports map[string]Coordinate

	// MaxJumpDegrees is the trail glitch threshold; zero means DefaultMaxJumpDegrees.
	MaxJumpDegrees float64
}

// DefaultReference is Ulsan airport with no airspaces loaded.
func DefaultReference() Reference {
	return NewReference("RKPU", DefaultReferenceAirport, DefaultMaxJumpDegrees)
}

// NewReference builds a reference for the airport icao at loc. A
// non-positive maxJump selects DefaultMaxJumpDegrees.
func NewReference(icao string, loc Coordinate, maxJump float64) Reference {
	if maxJump <= 0 {
		maxJump = DefaultMaxJumpDegrees
	}
	return Reference{
		ICAO:           icao,
		Location:       loc,
		Airports:       map[string]Coordinate{icao: loc},
		MaxJumpDegrees: maxJump,
	}
}

// ParseEnvelope decodes a raw message into its envelope. The kind header,
// when set, takes precedence over the kind field in the body.
func ParseEnvelope(raw RawEvent) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw.Value, &env); err != nil {
		return Envelope{}, fmt.Errorf("parse envelope: %w", err)
	}
	if k := raw.Headers["kind"]; k != "" {
		env.Kind = RecordKind(k)
	}
	env.Kind = RecordKind(strings.ToLower(strings.TrimSpace(string(env.Kind))))

	switch env.Kind {
	case KindAircraft, KindNotam, KindMetar:
	default:
		return Envelope{}, fmt.Errorf("parse envelope: %w %q", ErrUnknownKind, env.Kind)
	}
	if len(env.Payload) == 0 {
		return Envelope{}, fmt.Errorf("parse envelope: empty %s payload", env.Kind)
	}
	return env, nil
}

// DecodeAircraft decodes an aircraft envelope payload. A report without a hex
// address cannot be tracked and is rejected.
func DecodeAircraft(env Envelope) (AircraftPosition, error) {
	var pos AircraftPosition
	if err := json.Unmarshal(env.Payload, &pos); err != nil {
		return AircraftPosition{}, fmt.Errorf("decode aircraft: %w", err)
	}
	pos.Hex = strings.ToLower(strings.TrimSpace(pos.Hex))
	if pos.Hex == "" {
		return AircraftPosition{}, errors.New("decode aircraft: missing hex")
	}
	pos.Callsign = strings.TrimSpace(pos.Callsign)
	return pos, nil
}

// DecodeNotam decodes a NOTAM envelope payload.
func DecodeNotam(env Envelope) (RawNotam, error) {
	var raw RawNotam
	if err := json.Unmarshal(env.Payload, &raw); err != nil {
		return RawNotam{}, fmt.Errorf("decode notam: %w", err)
	}
	if raw.Number == "" && raw.FullText == "" {
		return RawNotam{}, errors.New("decode notam: missing number and text")
	}
	return raw, nil
}

// DecodeMetar decodes a METAR envelope payload.
func DecodeMetar(env Envelope) (MetarData, error) {
	var m MetarData
	if err := json.Unmarshal(env.Payload, &m); err != nil {
		return MetarData{}, fmt.Errorf("decode metar: %w", err)
	}
	m.StationID = strings.ToUpper(strings.TrimSpace(m.StationID))
	return m, nil
}

// BuildAircraftFact classifies pos against ref. trail is the aircraft's
// recent history including pos; it is glitch-filtered, not modified.
func BuildAircraftFact(pos AircraftPosition, trail []TrailPoint, ref Reference) AircraftFact {
	maxJump := ref.MaxJumpDegrees
	if maxJump <= 0 {
		maxJump = DefaultMaxJumpDegrees
	}
	phase := ClassifyFlightPhase(pos, ref.Location)

	alt := pos.AltitudeFt
	var names []string
	for _, a := range FindContainingAirspaces(pos.Coordinate(), &alt, ref.Airspaces) {
		names = append(names, a.Name)
	}

	return AircraftFact{
		Hex:         pos.Hex,
		Callsign:    pos.Callsign,
		Position:    pos,
		Phase:       phase,
		PhaseColor:  FlightPhaseColor(phase),
		PhaseLabel:  FlightPhaseLabel(phase),
		OnGround:    IsOnGround(pos),
		DistanceNM:  DistanceNM(pos.Coordinate(), ref.Location),
		Trail:       FilterAbnormalJumps(trail, maxJump),
		Airspaces:   names,
		ProcessedAt: clock.Now(),
	}
}

// BuildNotamFact parses raw and derives its validity at the current clock
// time. Cancellation by other NOTAMs is not visible from a single record;
// Cancels names the NOTAM this one cancels or replaces so consumers can
// resolve it over the full set with FilterActive.
func BuildNotamFact(raw RawNotam, ref Reference) NotamFact {
	n := ParseNotam(raw)
	now := clock.Now()

	fact := NotamFact{
		Notam:       n,
		Validity:    n.ValidityAt(now),
		Kind:        KindGeneral,
		Category:    generalCategory,
		Relevant:    IsRelevant(n, ref.ICAO),
		ProcessedAt: now,
	}
	if n.QLine != nil {
		fact.Kind = NotamKindForCode(n.QLine.Code)
		fact.Category = CategorizeNotam(n.QLine.Code)
	}
	if n.Type == NotamCancel || n.Type == NotamReplace {
		fact.Cancels, _ = CancelledRef(n.FullText)
	}
	if area, ok := AreaOf(n, ref.Airports); ok {
		fact.Area = &area
	}
	return fact
}

// BuildWeatherFact derives the flight category and risk for one observation.
func BuildWeatherFact(m MetarData, sigmets []SigmetData) WeatherFact {
	category := m.Category()
	return WeatherFact{
		Station:     m.StationID,
		Category:    category,
		VMC:         !category.AtLeastIFR(),
		Risk:        AssessWeatherRisk(m, sigmets),
		Wind:        m.WindDir,
		ProcessedAt: clock.Now(),
	}
}
