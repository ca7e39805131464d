package httpadapter_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/airport-awareness-etl/internal/adapter/httpadapter"
	"github.com/couchcryptid/airport-awareness-etl/internal/domain"
	"github.com/couchcryptid/airport-awareness-etl/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

func newTestServer(t *testing.T, readyErr error) (*httpadapter.Server, *observability.Metrics) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })

	metrics := observability.NewMetricsForTesting()
	srv := httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, domain.DefaultReference(), metrics, slog.New(slog.DiscardHandler))
	return srv, metrics
}

func post(srv http.Handler, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz(t *testing.T) {
	ready, _ := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	ready.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	notReady, _ := newTestServer(t, fmt.Errorf("pipeline has not processed any messages yet"))
	rec = httptest.NewRecorder()
	notReady.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestFlightPhase(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		phase domain.FlightPhase
	}{
		{
			name:  "takeoff",
			body:  `{"hex":"71be01","lat":35.5900,"lon":129.3515,"altitude_ft":300,"ground_speed":150,"vertical_rate":2000}`,
			phase: domain.PhaseTakeoff,
		},
		{
			name:  "on ground flag",
			body:  `{"hex":"71be01","lat":35.5934,"lon":129.3518,"altitude_ft":2000,"ground_speed":200,"on_ground":true}`,
			phase: domain.PhaseGround,
		},
		{
			name:  "cruise",
			body:  `{"hex":"71be01","lat":36.5,"lon":129.3518,"altitude_ft":35000,"ground_speed":450,"vertical_rate":0}`,
			phase: domain.PhaseCruise,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, metrics := newTestServer(t, nil)
			rec := post(srv, "/v1/flight-phase", tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var body struct {
				Phase domain.FlightPhase `json:"phase"`
				Color string             `json:"color"`
				Label string             `json:"label"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.phase, body.Phase)
			assert.Equal(t, domain.FlightPhaseColor(tt.phase), body.Color)
			assert.Equal(t, domain.FlightPhaseLabel(tt.phase), body.Label)
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.APIEvaluations.WithLabelValues("flight-phase", "ok")))
		})
	}
}

func TestActiveNotams(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	body := `[
		{"notam_number":"A1045/24","location":"RKPU","full_text":"A1045/24 NOTAMN\nA) RKPU B) 2501050000 C) 2503312359\nE) RWY 18/36 CLSD"},
		{"notam_number":"A1081/24","location":"RKPU","full_text":"A1081/24 NOTAMC A1045/24\nA) RKPU B) 2501090000"},
		{"notam_number":"A0500/25","location":"RKRR","full_text":"A0500/25 NOTAMN\nA) RKRR B) 2501080000 C) 2501150900"},
		{"notam_number":"A0100/25","location":"RKPU","full_text":"A0100/25 NOTAMN\nA) RKPU B) 2412010000 C) 2412312359"},
		{"notam_number":"A0900/25","location":"RJTT","full_text":"A0900/25 NOTAMN\nA) RJTT B) 2502010000 C) 2502282359"}
	]`

	rec := post(srv, "/v1/notams/active", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got []struct {
		ID       string               `json:"id"`
		Validity domain.NotamValidity `json:"validity"`
		Relevant bool                 `json:"relevant"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "A0500/25", got[0].ID)
	assert.Equal(t, domain.ValidityActive, got[0].Validity)
	assert.True(t, got[0].Relevant)
	assert.Equal(t, "A0900/25", got[1].ID)
	assert.Equal(t, domain.ValidityFuture, got[1].Validity)
	assert.False(t, got[1].Relevant)
}

func TestActiveNotams_EmptyList(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := post(srv, "/v1/notams/active", `[]`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestWeatherRisk(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	body := `{
		"metar": {"icaoId":"RKPU","visib":0.5,"ceiling":300,"wspd":35,"wgst":50},
		"sigmets": [{"type":"SIGMET","hazard":"SEVERE TURBULENCE"}]
	}`

	rec := post(srv, "/v1/weather/risk", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got struct {
		Level    domain.RiskLevel      `json:"level"`
		Factors  []string              `json:"factors"`
		Category domain.FlightCategory `json:"category"`
		VMC      bool                  `json:"vmc"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, domain.RiskSevere, got.Level)
	assert.Equal(t, domain.CategoryLIFR, got.Category)
	assert.False(t, got.VMC)
	assert.Contains(t, got.Factors, "SIGMET: SEVERE TURBULENCE")
}

func TestWeatherRisk_Calm(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := post(srv, "/v1/weather/risk", `{"metar":{"icaoId":"RKPU","visib":10,"wspd":5}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"level":"low","factors":[],"category":"VFR","vmc":true}`, rec.Body.String())
}

func TestWeatherRisk_FeedTextFields(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := post(srv, "/v1/weather/risk", `{"metar":{"icaoId":"RKPU","visib":"10+","wdir":"VRB","wspd":3}}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"level":"low","factors":[],"category":"VFR","vmc":true}`, rec.Body.String())
}

func TestEvaluationBadRequests(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		body  string
		route string
	}{
		{"flight phase invalid json", "/v1/flight-phase", `{"lat":`, "flight-phase"},
		{"flight phase wrong type", "/v1/flight-phase", `{"altitude_ft":"high"}`, "flight-phase"},
		{"notams not a list", "/v1/notams/active", `{"notam_number":"A1/25"}`, "notams-active"},
		{"weather missing metar", "/v1/weather/risk", `{"sigmets":[]}`, "weather-risk"},
		{"weather invalid json", "/v1/weather/risk", `not-json{{{`, "weather-risk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, metrics := newTestServer(t, nil)
			rec := post(srv, tt.path, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.APIEvaluations.WithLabelValues(tt.route, "bad_request")))
		})
	}
}

func TestEvaluationRejectsOtherContentTypes(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/flight-phase", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestEvaluationMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/weather/risk", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
