package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// qLineRe matches the ICAO Q) summary line,
	// e.g. "Q) RKRR/QMRLC/IV/NBO/A/000/999/3536N12921E005".
	qLineRe = regexp.MustCompile(`Q\)\s*(\w+)/(\w+)/(\w+)/(\w+)/(\w+)/(\d{3})/(\d{3})/(\d{2})(\d{2})([NS])(\d{3})(\d{2})([EW])(\d{3})`)

	// itemBRe matches the item B) start of validity, e.g. "B) 2501100000".
	itemBRe = regexp.MustCompile(`B\)\s*(\d{10})`)

	// itemCRe matches the item C) end of validity, e.g. "C) 2503312359" or "C) PERM".
	itemCRe = regexp.MustCompile(`C\)\s*(\d{10}|PERM)`)

	// cancelRefRe matches the NOTAM a replacement or cancellation refers to,
	// e.g. "A1081/24 NOTAMC A1045/24" -> "A1045/24".
	cancelRefRe = regexp.MustCompile(`NOTAM[CR]\s+([A-Z]\d{4}/\d{2})`)
)

// permanentEnd stands in for the end of validity of a PERM NOTAM.
var permanentEnd = time.Date(2099, time.December, 31, 0, 0, 0, 0, time.UTC)

// notamDateLen is the length of a YYMMDDHHMM NOTAM date group.
const notamDateLen = 10

// RawNotam is a NOTAM record as delivered by the vendor API.
type RawNotam struct {
	Number         string `json:"notam_number"`
	Location       string `json:"location"`
	FullText       string `json:"full_text"`
	EffectiveStart string `json:"effective_start,omitempty"`
	EffectiveEnd   string `json:"effective_end,omitempty"`
}

// NotamType is the NOTAM series action: new, replacement, or cancellation.
type NotamType string

const (
	NotamNew     NotamType = "N"
	NotamReplace NotamType = "R"
	NotamCancel  NotamType = "C"
)

// QLine holds the decoded Q) line. Altitudes are in feet, radius in NM.
type QLine struct {
	FIR        string  `json:"fir"`
	Code       string  `json:"code"`
	Traffic    string  `json:"traffic"`
	Purpose    string  `json:"purpose"`
	Scope      string  `json:"scope"`
	LowerAltFt int     `json:"lower_alt_ft"`
	UpperAltFt int     `json:"upper_alt_ft"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	RadiusNM   int     `json:"radius_nm"`
}

// Notam is a parsed NOTAM. A nil EffectiveEnd means no end of validity.
type Notam struct {
	ID             string     `json:"id"`
	Number         string     `json:"number"`
	Location       string     `json:"location"`
	Type           NotamType  `json:"type"`
	FullText       string     `json:"full_text"`
	QLine          *QLine     `json:"q_line,omitempty"`
	EffectiveStart *time.Time `json:"effective_start,omitempty"`
	EffectiveEnd   *time.Time `json:"effective_end,omitempty"`
	Permanent      bool       `json:"permanent"`
}

// ParseNotam extracts the structured fields from a raw NOTAM. It never
// fails: fields that cannot be found are left empty.
func ParseNotam(raw RawNotam) Notam {
	n := Notam{
		ID:        raw.Number,
		Number:    raw.Number,
		Location:  raw.Location,
		Type:      ParseNotamType(raw.FullText),
		FullText:  raw.FullText,
		Permanent: strings.Contains(raw.EffectiveEnd, "PERM") || strings.Contains(raw.FullText, "C) PERM"),
	}
	if q, ok := ParseQLine(raw.FullText); ok {
		n.QLine = &q
	}
	n.EffectiveStart, n.EffectiveEnd = parseNotamDates(raw)
	return n
}

// ParseNotamType detects the series action from the NOTAMC/NOTAMR markers.
func ParseNotamType(fullText string) NotamType {
	switch {
	case strings.Contains(fullText, "NOTAMC"):
		return NotamCancel
	case strings.Contains(fullText, "NOTAMR"):
		return NotamReplace
	default:
		return NotamNew
	}
}

// ParseQLine decodes the Q) line in text. Altitude limits are given in
// hundreds of feet; the centre point is DDMM[NS]DDDMM[EW] followed by a
// three-digit radius in NM.
func ParseQLine(text string) (QLine, bool) {
	m := qLineRe.FindStringSubmatch(text)
	if m == nil {
		return QLine{}, false
	}

	lat := float64(atoi(m[8])) + float64(atoi(m[9]))/60
	if m[10] == "S" {
		lat = -lat
	}
	lon := float64(atoi(m[11])) + float64(atoi(m[12]))/60
	if m[13] == "W" {
		lon = -lon
	}

	return QLine{
		FIR:        m[1],
		Code:       m[2],
		Traffic:    m[3],
		Purpose:    m[4],
		Scope:      m[5],
		LowerAltFt: atoi(m[6]) * 100,
		UpperAltFt: atoi(m[7]) * 100,
		Lat:        lat,
		Lon:        lon,
		RadiusNM:   atoi(m[14]),
	}, true
}

// atoi parses a regexp digit group; the pattern guarantees digits.
func atoi(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

// ParseNotamDate decodes a YYMMDDHHMM group as UTC in the 2000s. Strings
// shorter than ten characters or with non-numeric fields yield false.
func ParseNotamDate(s string) (time.Time, bool) {
	if len(s) < notamDateLen {
		return time.Time{}, false
	}
	var parts [5]int
	for i := range parts {
		v, err := strconv.Atoi(s[i*2 : i*2+2])
		if err != nil {
			return time.Time{}, false
		}
		parts[i] = v
	}
	return time.Date(2000+parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], 0, 0, time.UTC), true
}

// parseNotamDates prefers the explicit effective fields and falls back to the
// B) and C) items of the text for whichever bound is still missing.
func parseNotamDates(raw RawNotam) (start, end *time.Time) {
	if t, ok := ParseNotamDate(raw.EffectiveStart); ok {
		start = &t
	}

	switch {
	case strings.Contains(raw.EffectiveEnd, "PERM"):
		t := permanentEnd
		end = &t
	case strings.Contains(raw.EffectiveEnd, "EST"):
		// Estimated end times are not trusted.
	default:
		if t, ok := ParseNotamDate(raw.EffectiveEnd); ok {
			end = &t
		}
	}

	if start == nil {
		if m := itemBRe.FindStringSubmatch(raw.FullText); m != nil {
			if t, ok := ParseNotamDate(m[1]); ok {
				start = &t
			}
		}
	}
	if end == nil {
		if m := itemCRe.FindStringSubmatch(raw.FullText); m != nil {
			if m[1] == "PERM" {
				t := permanentEnd
				end = &t
			} else if t, ok := ParseNotamDate(m[1]); ok {
				end = &t
			}
		}
	}
	return start, end
}

// NotamValidity is the lifecycle state of a NOTAM at a point in time.
type NotamValidity string

const (
	ValidityActive    NotamValidity = "active"
	ValidityFuture    NotamValidity = "future"
	ValidityExpired   NotamValidity = "expired"
	ValidityCancelled NotamValidity = "cancelled"
)

// AllNotamValidities lists every NotamValidity.
var AllNotamValidities = []NotamValidity{ValidityActive, ValidityFuture, ValidityExpired, ValidityCancelled}

// ValidityAt returns the lifecycle state of n at now. Cancellations are
// always cancelled; otherwise the end bound is checked before the start.
func (n Notam) ValidityAt(now time.Time) NotamValidity {
	switch {
	case n.Type == NotamCancel:
		return ValidityCancelled
	case n.EffectiveEnd != nil && now.After(*n.EffectiveEnd):
		return ValidityExpired
	case n.EffectiveStart != nil && now.Before(*n.EffectiveStart):
		return ValidityFuture
	default:
		return ValidityActive
	}
}

// Validity returns the lifecycle state of n at the current clock time.
func (n Notam) Validity() NotamValidity {
	return n.ValidityAt(clock.Now())
}

// RemainingHoursAt returns the whole hours until n expires, floored at zero.
// ok is false for permanent NOTAMs and those without an end.
func (n Notam) RemainingHoursAt(now time.Time) (int, bool) {
	if n.EffectiveEnd == nil || n.Permanent {
		return 0, false
	}
	hours := math.Round(n.EffectiveEnd.Sub(now).Hours())
	return int(max(0, hours)), true
}

// CancelledRef returns the NOTAM id referenced by a NOTAMC or NOTAMR marker.
func CancelledRef(fullText string) (string, bool) {
	m := cancelRefRe.FindStringSubmatch(fullText)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// CancelledSet collects the ids referenced by every cancellation or
// replacement in the batch.
func CancelledSet(notams []Notam) map[string]struct{} {
	set := make(map[string]struct{})
	for _, n := range notams {
		if n.Type != NotamCancel && n.Type != NotamReplace {
			continue
		}
		if ref, ok := CancelledRef(n.FullText); ok {
			set[ref] = struct{}{}
		}
	}
	return set
}

// FilterActiveAt returns the NOTAMs still in force at now: cancellations
// themselves, NOTAMs cancelled or replaced by another member of the batch,
// and expired NOTAMs are removed; future ones are kept. The whole batch must
// be passed at once since cancellations refer across records.
func FilterActiveAt(notams []Notam, now time.Time) []Notam {
	cancelled := CancelledSet(notams)

	active := make([]Notam, 0, len(notams))
	for _, n := range notams {
		if n.Type == NotamCancel {
			continue
		}
		if _, gone := cancelled[n.Number]; gone && n.Number != "" {
			continue
		}
		if v := n.ValidityAt(now); v == ValidityActive || v == ValidityFuture {
			active = append(active, n)
		}
	}
	return active
}

// FilterActive is FilterActiveAt at the current clock time.
func FilterActive(notams []Notam) []Notam {
	return FilterActiveAt(notams, clock.Now())
}

// firByCountryPrefix maps an ICAO nationality prefix to the FIR whose
// NOTAMs apply to every airport in that country.
var firByCountryPrefix = map[string]string{
	"RK": "RKRR", // Incheon
	"RJ": "RJJJ", // Fukuoka
	"RC": "RCAA", // Taipei
	"RP": "RPHI", // Manila
	"ZK": "ZKKP", // Pyongyang
}

// IsRelevant reports whether n concerns the airport: either it is issued for
// the airport itself, or for the FIR covering the airport's country.
func IsRelevant(n Notam, airportICAO string) bool {
	if n.Location == airportICAO {
		return true
	}
	if len(airportICAO) < 2 {
		return false
	}
	fir, ok := firByCountryPrefix[airportICAO[:2]]
	if !ok {
		return false
	}
	return n.Location == fir || (n.QLine != nil && n.QLine.FIR == fir)
}

// NotamKind is the coarse operational effect of a NOTAM, from its Q-code.
type NotamKind string

const (
	KindRunwayClosed  NotamKind = "RWY_CLOSED"
	KindTaxiwayClosed NotamKind = "TWY_CLOSED"
	KindNavOutage     NotamKind = "NAV_OUTAGE"
	KindAirspace      NotamKind = "AIRSPACE"
	KindGeneral       NotamKind = "GENERAL"
)

// NotamKindForCode classifies a Q-code such as "QMRLC". Unrecognised codes
// are general.
func NotamKindForCode(qCode string) NotamKind {
	switch {
	case strings.HasPrefix(qCode, "QMR"):
		return KindRunwayClosed
	case strings.HasPrefix(qCode, "QMX"):
		return KindTaxiwayClosed
	case strings.HasPrefix(qCode, "QN"):
		return KindNavOutage
	case strings.HasPrefix(qCode, "QR"):
		return KindAirspace
	default:
		return KindGeneral
	}
}

// NotamSeverity ranks how much a NOTAM category affects operations.
type NotamSeverity string

const (
	NotamSeverityLow    NotamSeverity = "low"
	NotamSeverityMedium NotamSeverity = "medium"
	NotamSeverityHigh   NotamSeverity = "high"
)

// NotamCategory is the display category and severity of a Q-code subject.
type NotamCategory struct {
	Category string        `json:"category"`
	Severity NotamSeverity `json:"severity"`
}

var generalCategory = NotamCategory{Category: "general", Severity: NotamSeverityLow}

// notamSubjectCategories is keyed by the two-letter subject (the letters
// after the leading Q). Single-letter keys cover a whole subject group.
var notamSubjectCategories = map[string]NotamCategory{
	"FA": {"aerodrome", NotamSeverityMedium},
	"FL": {"lighting", NotamSeverityMedium},
	"FN": {"navigation aid", NotamSeverityHigh},
	"LA": {"air route", NotamSeverityMedium},
	"LC": {"air traffic control", NotamSeverityHigh},
	"MR": {"runway", NotamSeverityHigh},
	"MT": {"taxiway", NotamSeverityMedium},
	"R":  {"restricted airspace", NotamSeverityHigh},
	"W":  {"warning", NotamSeverityHigh},
}

// CategorizeNotam returns the display category of a Q-code. Codes may be
// given with or without the leading Q.
func CategorizeNotam(qCode string) NotamCategory {
	subject := strings.TrimPrefix(qCode, "Q")
	if len(subject) >= 2 {
		if c, ok := notamSubjectCategories[subject[:2]]; ok {
			return c
		}
	}
	if len(subject) >= 1 {
		if c, ok := notamSubjectCategories[subject[:1]]; ok {
			return c
		}
	}
	return generalCategory
}

var validityColors = map[NotamValidity]string{
	ValidityActive:    "#F44336",
	ValidityFuture:    "#FF9800",
	ValidityExpired:   "#9E9E9E",
	ValidityCancelled: "#607D8B",
}

// ValidityColor returns the display color of a validity state.
func ValidityColor(v NotamValidity) string {
	if c, ok := validityColors[v]; ok {
		return c
	}
	return validityColors[ValidityExpired]
}

// DefaultNotamRadiusNM is drawn around NOTAMs that carry no usable radius.
const DefaultNotamRadiusNM = 5

// NotamArea is the circle a NOTAM applies to.
type NotamArea struct {
	Center   Coordinate `json:"center"`
	RadiusNM int        `json:"radius_nm"`
}

// AreaOf locates a NOTAM: the Q-line centre and radius when present,
// otherwise the coordinates of its location from airports.
func AreaOf(n Notam, airports map[string]Coordinate) (NotamArea, bool) {
	if n.QLine != nil && n.QLine.Lat != 0 && n.QLine.Lon != 0 {
		radius := n.QLine.RadiusNM
		if radius == 0 {
			radius = DefaultNotamRadiusNM
		}
		return NotamArea{Center: Coordinate{Lat: n.QLine.Lat, Lon: n.QLine.Lon}, RadiusNM: radius}, true
	}
	if c, ok := airports[n.Location]; ok {
		return NotamArea{Center: c, RadiusNM: DefaultNotamRadiusNM}, true
	}
	return NotamArea{}, false
}
