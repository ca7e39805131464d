package domain

import (
	"context"
	"encoding/json"
	"time"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// RecordKind names the feed a raw record came from.
type RecordKind string

const (
	KindAircraft RecordKind = "aircraft"
	KindNotam    RecordKind = "notam"
	KindMetar    RecordKind = "metar"
)

// Envelope is the JSON wrapper the fetch layer publishes around each raw
// record. Kind may instead arrive in the "kind" message header.
type Envelope struct {
	Kind    RecordKind      `json:"kind"`
	Payload json.RawMessage `json:"payload"`

	// Sigmets accompany a metar payload and are assessed together with it.
	Sigmets []SigmetData `json:"sigmets,omitempty"`
}

// AircraftFact is the classified state of one aircraft after a position report.
type AircraftFact struct {
	Hex         string           `json:"hex"`
	Callsign    string           `json:"callsign,omitempty"`
	Position    AircraftPosition `json:"position"`
	Phase       FlightPhase      `json:"phase"`
	PhaseColor  string           `json:"phase_color"`
	PhaseLabel  string           `json:"phase_label"`
	OnGround    bool             `json:"on_ground"`
	DistanceNM  float64          `json:"distance_nm"`
	Trail       []TrailPoint     `json:"trail"`
	Airspaces   []string         `json:"airspaces,omitempty"`
	ProcessedAt time.Time        `json:"processed_at"`
}

// NotamFact is a parsed NOTAM with its derived lifecycle and relevance.
type NotamFact struct {
	Notam       Notam         `json:"notam"`
	Validity    NotamValidity `json:"validity"`
	Kind        NotamKind     `json:"kind"`
	Category    NotamCategory `json:"category"`
	Cancels     string        `json:"cancels,omitempty"`
	Relevant    bool          `json:"relevant"`
	Area        *NotamArea    `json:"area,omitempty"`
	ProcessedAt time.Time     `json:"processed_at"`
}

// WeatherFact is the flight category and risk derived from one observation.
type WeatherFact struct {
	Station     string         `json:"station"`
	Category    FlightCategory `json:"category"`
	VMC         bool           `json:"vmc"`
	Risk        WeatherRisk    `json:"risk"`
	Wind        *WindDirection `json:"wind,omitempty"`
	ProcessedAt time.Time      `json:"processed_at"`
}
