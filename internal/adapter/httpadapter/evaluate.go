package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/couchcryptid/airport-awareness-etl/internal/domain"
)

// maxBodyBytes bounds evaluation request bodies.
const maxBodyBytes = 1 << 20

const (
	outcomeOK         = "ok"
	outcomeBadRequest = "bad_request"
)

type flightPhaseResponse struct {
	Phase      domain.FlightPhase `json:"phase"`
	Color      string             `json:"color"`
	Label      string             `json:"label"`
	OnGround   bool               `json:"on_ground"`
	DistanceNM float64            `json:"distance_nm"`
}

func (s *Server) handleFlightPhase(w http.ResponseWriter, r *http.Request) {
	const route = "flight-phase"

	var pos domain.AircraftPosition
	if !s.decode(w, r, route, &pos) {
		return
	}

	phase := domain.ClassifyFlightPhase(pos, s.ref.Location)
	s.respond(w, route, flightPhaseResponse{
		Phase:      phase,
		Color:      domain.FlightPhaseColor(phase),
		Label:      domain.FlightPhaseLabel(phase),
		OnGround:   domain.IsOnGround(pos),
		DistanceNM: domain.DistanceNM(pos.Coordinate(), s.ref.Location),
	})
}

type activeNotam struct {
	domain.Notam
	Validity domain.NotamValidity `json:"validity"`
	Relevant bool                 `json:"relevant"`
}

// handleActiveNotams filters the whole request body at once so that
// cancellations between NOTAMs in the same request are applied.
func (s *Server) handleActiveNotams(w http.ResponseWriter, r *http.Request) {
	const route = "notams-active"

	var raws []domain.RawNotam
	if !s.decode(w, r, route, &raws) {
		return
	}

	parsed := make([]domain.Notam, len(raws))
	for i, raw := range raws {
		parsed[i] = domain.ParseNotam(raw)
	}

	now := domain.Now()
	active := domain.FilterActiveAt(parsed, now)
	out := make([]activeNotam, len(active))
	for i, n := range active {
		out[i] = activeNotam{
			Notam:    n,
			Validity: n.ValidityAt(now),
			Relevant: domain.IsRelevant(n, s.ref.ICAO),
		}
	}
	s.respond(w, route, out)
}

type weatherRiskRequest struct {
	Metar   *domain.MetarData   `json:"metar"`
	Sigmets []domain.SigmetData `json:"sigmets"`
}

type weatherRiskResponse struct {
	domain.WeatherRisk
	Category domain.FlightCategory `json:"category"`
	VMC      bool                  `json:"vmc"`
}

func (s *Server) handleWeatherRisk(w http.ResponseWriter, r *http.Request) {
	const route = "weather-risk"

	var req weatherRiskRequest
	if !s.decode(w, r, route, &req) {
		return
	}
	if req.Metar == nil {
		s.badRequest(w, route, errors.New("metar is required"))
		return
	}

	fact := domain.BuildWeatherFact(*req.Metar, req.Sigmets)
	s.respond(w, route, weatherRiskResponse{
		WeatherRisk: fact.Risk,
		Category:    fact.Category,
		VMC:         fact.VMC,
	})
}

// decode reads a JSON body into v, answering 400 itself on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, route string, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		s.badRequest(w, route, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func (s *Server) badRequest(w http.ResponseWriter, route string, err error) {
	s.metrics.APIEvaluations.WithLabelValues(route, outcomeBadRequest).Inc()
	s.logger.Debug("evaluation rejected", "route", route, "error", err)
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

func (s *Server) respond(w http.ResponseWriter, route string, v any) {
	s.metrics.APIEvaluations.WithLabelValues(route, outcomeOK).Inc()
	writeJSON(w, http.StatusOK, v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client went away
}
