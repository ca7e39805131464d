package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsInAirspace(t *testing.T) {
	ctr := Airspace{Name: "ULSAN CTR", Type: AirspaceCTR, Polygon: testSquare, CeilingFt: floatPtr(5000)}
	tma := Airspace{Name: "ULSAN TMA", Type: AirspaceTMA, Polygon: testSquare, FloorFt: 1000}
	inside := Coordinate{Lat: 5, Lon: 5}

	tests := []struct {
		name     string
		pos      Coordinate
		alt      *float64
		airspace Airspace
		want     bool
	}{
		{"inside within limits", inside, floatPtr(3000), ctr, true},
		{"above ceiling", inside, floatPtr(6000), ctr, false},
		{"at ceiling", inside, floatPtr(5000), ctr, true},
		{"lateral only", inside, nil, ctr, true},
		{"below floor", inside, floatPtr(500), tma, false},
		{"unlimited ceiling", inside, floatPtr(60000), tma, true},
		{"outside laterally", Coordinate{Lat: 15, Lon: 15}, floatPtr(3000), ctr, false},
		{"degenerate polygon", inside, nil, Airspace{Polygon: testSquare[:2]}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsInAirspace(tt.pos, tt.alt, tt.airspace))
		})
	}
}

func TestFindContainingAirspaces(t *testing.T) {
	airspaces := []Airspace{
		{Name: "FIR", Type: AirspaceFIR, Polygon: testSquare},
		{Name: "FAR", Type: AirspaceR, Polygon: []Coordinate{{Lat: 20, Lon: 20}, {Lat: 20, Lon: 30}, {Lat: 30, Lon: 30}}},
		{Name: "CTR", Type: AirspaceCTR, Polygon: testSquare, CeilingFt: floatPtr(5000)},
	}

	found := FindContainingAirspaces(Coordinate{Lat: 5, Lon: 5}, floatPtr(2000), airspaces)
	require.Len(t, found, 2)
	assert.Equal(t, "FIR", found[0].Name)
	assert.Equal(t, "CTR", found[1].Name)

	found = FindContainingAirspaces(Coordinate{Lat: 5, Lon: 5}, floatPtr(9000), airspaces)
	require.Len(t, found, 1)
	assert.Equal(t, "FIR", found[0].Name)

	assert.Empty(t, FindContainingAirspaces(Coordinate{Lat: 50, Lon: 50}, nil, airspaces))
}

func TestAirspaceTables(t *testing.T) {
	for _, at := range AllAirspaceTypes {
		t.Run(string(at), func(t *testing.T) {
			assert.Contains(t, airspaceColors, at)
			assert.Contains(t, airspaceLabels, at)
		})
	}

	assert.Equal(t, "#2196F3", AirspaceColor(AirspaceCTR))
	assert.Equal(t, AirspaceColor(AirspaceFIR), AirspaceColor("TRA"))
	assert.Equal(t, "관제권", AirspaceLabel(AirspaceCTR))
	assert.Equal(t, "TRA", AirspaceLabel("TRA"))
}

func TestDecodeAirspaces(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		airspaces, err := DecodeAirspaces([]byte(`[
			{"name":"ULSAN CTR","type":"CTR","floor_ft":0,"ceiling_ft":3000,
			 "polygon":[{"lat":0,"lon":0},{"lat":0,"lon":10},{"lat":10,"lon":10},{"lat":10,"lon":0}]},
			{"name":"R-118","type":"R","polygon":[{"lat":1,"lon":1},{"lat":1,"lon":2},{"lat":2,"lon":2}]}
		]`))
		require.NoError(t, err)
		require.Len(t, airspaces, 2)
		assert.Equal(t, AirspaceCTR, airspaces[0].Type)
		assert.Equal(t, testSquare, airspaces[0].Polygon)
		require.NotNil(t, airspaces[0].CeilingFt)
		assert.Equal(t, 3000.0, *airspaces[0].CeilingFt)
		assert.Nil(t, airspaces[1].CeilingFt)
	})

	t.Run("empty list", func(t *testing.T) {
		airspaces, err := DecodeAirspaces([]byte(`[]`))
		require.NoError(t, err)
		assert.Empty(t, airspaces)
	})

	errCases := []struct {
		name string
		data string
		want string
	}{
		{"not an array", `{"name":"X"}`, "decode airspaces: json"},
		{"missing name", `[{"type":"CTR","polygon":[{"lat":0,"lon":0},{"lat":0,"lon":1},{"lat":1,"lon":1}]}]`, "missing name"},
		{"unknown type", `[{"name":"X","type":"ZZ","polygon":[{"lat":0,"lon":0},{"lat":0,"lon":1},{"lat":1,"lon":1}]}]`, `unknown type "ZZ"`},
		{"too few vertices", `[{"name":"X","type":"CTR","polygon":[{"lat":0,"lon":0},{"lat":0,"lon":1}]}]`, "at least 3 vertices"},
		{"ceiling below floor", `[{"name":"X","type":"TMA","floor_ft":5000,"ceiling_ft":3000,"polygon":[{"lat":0,"lon":0},{"lat":0,"lon":1},{"lat":1,"lon":1}]}]`, "not above floor"},
	}
	for _, tt := range errCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeAirspaces([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
