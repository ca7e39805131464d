package domain

import (
	"encoding/json"
	"fmt"
	"slices"
)

// AirspaceType is the ICAO classification of an airspace block.
type AirspaceType string

const (
	AirspaceCTR  AirspaceType = "CTR"
	AirspaceTMA  AirspaceType = "TMA"
	AirspaceACC  AirspaceType = "ACC"
	AirspaceFIR  AirspaceType = "FIR"
	AirspaceP    AirspaceType = "P" // prohibited
	AirspaceR    AirspaceType = "R" // restricted
	AirspaceD    AirspaceType = "D" // danger
	AirspaceMOA  AirspaceType = "MOA"
	AirspaceADIZ AirspaceType = "ADIZ"
)

// AllAirspaceTypes lists every AirspaceType.
var AllAirspaceTypes = []AirspaceType{
	AirspaceCTR, AirspaceTMA, AirspaceACC, AirspaceFIR,
	AirspaceP, AirspaceR, AirspaceD, AirspaceMOA, AirspaceADIZ,
}

// Airspace is a lateral polygon with vertical limits. A nil CeilingFt means
// the airspace is unlimited upward.
type Airspace struct {
	Name      string       `json:"name"`
	Type      AirspaceType `json:"type"`
	Polygon   []Coordinate `json:"polygon"`
	FloorFt   float64      `json:"floor_ft"`
	CeilingFt *float64     `json:"ceiling_ft,omitempty"`
}

// IsInAirspace reports whether pos lies inside the airspace. When altitudeFt
// is nil only the lateral boundary is checked.
func IsInAirspace(pos Coordinate, altitudeFt *float64, airspace Airspace) bool {
	if altitudeFt != nil {
		if *altitudeFt < airspace.FloorFt {
			return false
		}
		if airspace.CeilingFt != nil && *altitudeFt > *airspace.CeilingFt {
			return false
		}
	}
	return PointInPolygon(pos, airspace.Polygon)
}

// DecodeAirspaces decodes a JSON array of airspaces, such as the file named
// by AIRSPACES_FILE. Every airspace needs a name, a known type, at least
// three vertices, and a ceiling above its floor.
func DecodeAirspaces(data []byte) ([]Airspace, error) {
	var airspaces []Airspace
	if err := json.Unmarshal(data, &airspaces); err != nil {
		return nil, fmt.Errorf("decode airspaces: %w", err)
	}
	for i, a := range airspaces {
		switch {
		case a.Name == "":
			return nil, fmt.Errorf("decode airspaces: airspace %d: missing name", i)
		case !slices.Contains(AllAirspaceTypes, a.Type):
			return nil, fmt.Errorf("decode airspaces: %s: unknown type %q", a.Name, a.Type)
		case len(a.Polygon) < 3:
			return nil, fmt.Errorf("decode airspaces: %s: polygon needs at least 3 vertices", a.Name)
		case a.CeilingFt != nil && *a.CeilingFt <= a.FloorFt:
			return nil, fmt.Errorf("decode airspaces: %s: ceiling %g not above floor %g", a.Name, *a.CeilingFt, a.FloorFt)
		}
	}
	return airspaces, nil
}

// FindContainingAirspaces returns every airspace containing pos, in input order.
func FindContainingAirspaces(pos Coordinate, altitudeFt *float64, airspaces []Airspace) []Airspace {
	var found []Airspace
	for _, a := range airspaces {
		if IsInAirspace(pos, altitudeFt, a) {
			found = append(found, a)
		}
	}
	return found
}

var airspaceColors = map[AirspaceType]string{
	AirspaceCTR:  "#2196F3",
	AirspaceTMA:  "#9C27B0",
	AirspaceACC:  "#4CAF50",
	AirspaceFIR:  "#9E9E9E",
	AirspaceP:    "#F44336",
	AirspaceR:    "#FF9800",
	AirspaceD:    "#FFEB3B",
	AirspaceMOA:  "#8BC34A",
	AirspaceADIZ: "#795548",
}

var airspaceLabels = map[AirspaceType]string{
	AirspaceCTR:  "관제권",
	AirspaceTMA:  "터미널구역",
	AirspaceACC:  "접근관제구역",
	AirspaceFIR:  "비행정보구역",
	AirspaceP:    "비행금지구역",
	AirspaceR:    "비행제한구역",
	AirspaceD:    "위험구역",
	AirspaceMOA:  "군작전구역",
	AirspaceADIZ: "방공식별구역",
}

// AirspaceColor returns the border color used to draw the airspace type.
// Unknown types get the FIR grey.
func AirspaceColor(t AirspaceType) string {
	if c, ok := airspaceColors[t]; ok {
		return c
	}
	return airspaceColors[AirspaceFIR]
}

// AirspaceLabel returns the Korean display name of the airspace type, or the
// raw type code when unknown.
func AirspaceLabel(t AirspaceType) string {
	if l, ok := airspaceLabels[t]; ok {
		return l
	}
	return string(t)
}
