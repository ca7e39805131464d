package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FlightCategory is the VFR/MVFR/IFR/LIFR classification of conditions.
type FlightCategory string

const (
	CategoryVFR  FlightCategory = "VFR"
	CategoryMVFR FlightCategory = "MVFR"
	CategoryIFR  FlightCategory = "IFR"
	CategoryLIFR FlightCategory = "LIFR"
)

// restrictiveness orders categories from best (0) to worst.
var restrictiveness = map[FlightCategory]int{
	CategoryVFR:  0,
	CategoryMVFR: 1,
	CategoryIFR:  2,
	CategoryLIFR: 3,
}

// AtLeastIFR reports whether c requires instrument flight rules.
func (c FlightCategory) AtLeastIFR() bool {
	return restrictiveness[c] >= restrictiveness[CategoryIFR]
}

// Valid reports whether c is one of the four known categories.
func (c FlightCategory) Valid() bool {
	_, ok := restrictiveness[c]
	return ok
}

// DetermineFlightCategory classifies visibility (statute miles) and ceiling
// (feet AGL, nil for unlimited) independently and returns the more
// restrictive of the two:
//
//	visibility: >=5 VFR | >=3 MVFR | >=1 IFR | else LIFR
//	ceiling:    >=3000 VFR | >=1000 MVFR | >=500 IFR | else LIFR
func DetermineFlightCategory(visibilitySM float64, ceilingFt *float64) FlightCategory {
	var byVis FlightCategory
	switch {
	case visibilitySM >= 5:
		byVis = CategoryVFR
	case visibilitySM >= 3:
		byVis = CategoryMVFR
	case visibilitySM >= 1:
		byVis = CategoryIFR
	default:
		byVis = CategoryLIFR
	}

	byCeiling := CategoryVFR
	if ceilingFt != nil {
		switch c := *ceilingFt; {
		case c >= 3000:
			byCeiling = CategoryVFR
		case c >= 1000:
			byCeiling = CategoryMVFR
		case c >= 500:
			byCeiling = CategoryIFR
		default:
			byCeiling = CategoryLIFR
		}
	}

	if restrictiveness[byCeiling] > restrictiveness[byVis] {
		return byCeiling
	}
	return byVis
}

// IsVMC reports whether conditions are visual (VFR or MVFR).
func IsVMC(visibilitySM float64, ceilingFt *float64) bool {
	return !DetermineFlightCategory(visibilitySM, ceilingFt).AtLeastIFR()
}

// MetarData is a decoded METAR observation in aviationweather.gov JSON form.
// The feed sends wdir as a number or "VRB" and visib as a number or text
// such as "10+" or "1 1/2"; UnmarshalJSON accepts both.
type MetarData struct {
	StationID      string         `json:"icaoId"`
	ObsTime        string         `json:"obsTime,omitempty"`
	VisibilitySM   float64        `json:"visib"`
	CeilingFt      *float64       `json:"ceiling,omitempty"`
	WindDir        *WindDirection `json:"wdir,omitempty"`
	WindSpeedKt    float64        `json:"wspd"`
	WindGustKt     float64        `json:"wgst,omitempty"`
	AltimeterHPa   float64        `json:"altim,omitempty"`
	FlightCategory FlightCategory `json:"fltCat,omitempty"`
	Raw            string         `json:"rawOb,omitempty"`
}

// UnmarshalJSON decodes a METAR, normalizing the wdir and visib fields. A
// wind direction that is neither numeric nor "VRB" is left nil; a
// visibility that cannot be read is an error.
func (m *MetarData) UnmarshalJSON(data []byte) error {
	type plain MetarData
	aux := struct {
		*plain
		Visib json.RawMessage `json:"visib"`
		Wdir  json.RawMessage `json:"wdir"`
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if isJSONValue(aux.Visib) {
		v, ok := parseVisibility(unquoteJSON(aux.Visib))
		if !ok {
			return fmt.Errorf("invalid visib %s", aux.Visib)
		}
		m.VisibilitySM = v
	}

	m.WindDir = nil
	switch {
	case !isJSONValue(aux.Wdir):
	case aux.Wdir[0] == '{':
		var wd WindDirection
		if err := json.Unmarshal(aux.Wdir, &wd); err != nil {
			return fmt.Errorf("invalid wdir: %w", err)
		}
		m.WindDir = &wd
	default:
		if wd, ok := ParseWindDirection(unquoteJSON(aux.Wdir)); ok {
			m.WindDir = &wd
		}
	}
	return nil
}

func isJSONValue(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// unquoteJSON returns the text of a JSON string, or raw itself for numbers.
func unquoteJSON(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}

// parseVisibility reads a statute-mile visibility: "10", "10+", "P6SM",
// "1/2", "1 1/2" or "M1/4". Plus and minus qualifiers are dropped.
func parseVisibility(s string) (float64, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, "SM")
	s = strings.TrimSuffix(s, "+")
	s = strings.TrimLeft(s, "PM")

	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return 0, false
	}
	var total float64
	for _, f := range fields {
		num, den, isFraction := strings.Cut(f, "/")
		n, err := strconv.ParseFloat(num, 64)
		if err != nil || n < 0 {
			return 0, false
		}
		if isFraction {
			d, err := strconv.ParseFloat(den, 64)
			if err != nil || d <= 0 {
				return 0, false
			}
			n /= d
		}
		total += n
	}
	return total, true
}

// Category returns the reported flight category, or derives it from
// visibility and ceiling when the report carries none.
func (m MetarData) Category() FlightCategory {
	if m.FlightCategory.Valid() {
		return m.FlightCategory
	}
	return DetermineFlightCategory(m.VisibilitySM, m.CeilingFt)
}

// AdvisoryKind distinguishes SIGMETs from AIRMETs.
type AdvisoryKind string

const (
	AdvisorySIGMET AdvisoryKind = "SIGMET"
	AdvisoryAIRMET AdvisoryKind = "AIRMET"
)

// SigmetData is an in-flight weather hazard advisory.
type SigmetData struct {
	Kind   AdvisoryKind `json:"kind,omitempty"` // empty means SIGMET
	Type   string       `json:"type"`
	Hazard string       `json:"hazard"`
	Raw    string       `json:"raw,omitempty"`
}

// Severe reports whether the advisory describes a severe hazard.
func (s SigmetData) Severe() bool {
	return strings.Contains(strings.ToUpper(s.Hazard), "SEVERE") ||
		strings.Contains(strings.ToUpper(s.Type), "SEVERE")
}

func (s SigmetData) label() string {
	kind := s.Kind
	if kind == "" {
		kind = AdvisorySIGMET
	}
	hazard := s.Hazard
	if hazard == "" {
		hazard = s.Type
	}
	return fmt.Sprintf("%s: %s", kind, hazard)
}

// RiskLevel is the aggregate weather risk.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskSevere   RiskLevel = "severe"
)

var riskRank = map[RiskLevel]int{RiskLow: 0, RiskModerate: 1, RiskHigh: 2, RiskSevere: 3}

// WeatherRisk is the assessed risk level and the reasons for it, in the order
// they were found. Factors is empty exactly when Level is low.
type WeatherRisk struct {
	Level   RiskLevel `json:"level"`
	Factors []string  `json:"factors"`
}

// Risk thresholds. Winds in knots, visibility in statute miles.
const (
	strongWindKt    = 25
	strongGustKt    = 35
	lowVisibilitySM = 2
)

// AssessWeatherRisk combines the flight category, surface wind, and active
// hazard advisories into a single risk level. MVFR alone does not raise the
// level; IFR raises it to high and LIFR to severe. Any severe advisory makes
// the overall level severe.
func AssessWeatherRisk(metar MetarData, sigmets []SigmetData) WeatherRisk {
	r := WeatherRisk{Level: RiskLow, Factors: []string{}}
	raise := func(level RiskLevel, factor string) {
		if riskRank[level] > riskRank[r.Level] {
			r.Level = level
		}
		r.Factors = append(r.Factors, factor)
	}

	category := metar.Category()
	if category.AtLeastIFR() {
		raise(RiskHigh, "IFR conditions")
	}
	if category == CategoryLIFR {
		raise(RiskSevere, "LIFR conditions")
	}
	if metar.WindSpeedKt >= strongWindKt {
		raise(RiskModerate, fmt.Sprintf("Strong wind %gkt", metar.WindSpeedKt))
	}
	if metar.WindGustKt >= strongGustKt {
		raise(RiskHigh, fmt.Sprintf("Gusts %gkt", metar.WindGustKt))
	}
	if metar.VisibilitySM < lowVisibilitySM && category.AtLeastIFR() {
		raise(RiskHigh, fmt.Sprintf("Low visibility %gSM", metar.VisibilitySM))
	}
	for _, s := range sigmets {
		if s.Severe() {
			raise(RiskSevere, s.label())
			continue
		}
		raise(RiskModerate, s.label())
	}
	return r
}

// CalculateCrosswind returns the magnitude of the wind component across a
// runway. Directions are in degrees; the result is in the units of speed.
func CalculateCrosswind(windDirDeg, runwayHeadingDeg, windSpeed float64) float64 {
	angle := normalizeSignedDegrees(windDirDeg - runwayHeadingDeg)
	return math.Abs(math.Sin(radians(angle)) * windSpeed)
}

// CalculateHeadwind returns the wind component along the runway; negative
// values are tailwind.
func CalculateHeadwind(windDirDeg, runwayHeadingDeg, windSpeed float64) float64 {
	angle := normalizeSignedDegrees(windDirDeg - runwayHeadingDeg)
	return math.Cos(radians(angle)) * windSpeed
}

// WindDirection is a decoded METAR wind direction. Variable winds have no
// defined direction.
type WindDirection struct {
	Degrees  float64 `json:"degrees"`
	Variable bool    `json:"variable"`
}

// ParseWindDirection decodes a METAR wind-direction group such as "090" or
// "VRB". ok is false only for text that is neither.
func ParseWindDirection(s string) (WindDirection, bool) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "VRB") {
		return WindDirection{Variable: true}, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return WindDirection{}, false
	}
	return WindDirection{Degrees: v}, true
}
