// Command validate performs end-to-end integrity checks on the airport mock
// data: the raw record fixture, the facts the pipeline derives from it, and
// optionally the facts fixture written by genmock. It verifies record
// counts, decodability, rule invariants on every derived fact, and
// byte-for-byte agreement with the committed facts.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -records data/mock/airport_records.json \
//	  -facts data/mock/airport_facts.json
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/couchcryptid/airport-awareness-etl/internal/config"
	"github.com/couchcryptid/airport-awareness-etl/internal/domain"
	"github.com/couchcryptid/airport-awareness-etl/internal/observability"
	"github.com/couchcryptid/airport-awareness-etl/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

// Replay clock and trail settings; must match genmock.
var replayStart = time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC)

const (
	replayStep     = 5 * time.Second
	trailMaxPoints = 100
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// factRecord mirrors the genmock fixture entry.
type factRecord struct {
	Key     string            `json:"key"`
	Headers map[string]string `json:"headers"`
	Fact    json.RawMessage   `json:"fact"`
}

func main() {
	recordsPath := flag.String("records", "data/mock/airport_records.json", "path to the raw airport record fixture")
	factsPath := flag.String("facts", "", "optional path to the genmock facts fixture")
	flag.Parse()

	if code := run(*recordsPath, *factsPath); code != 0 {
		os.Exit(code)
	}
}

func run(recordsPath, factsPath string) int {
	clk := clockwork.NewFakeClockAt(replayStart)
	domain.SetClock(clk)
	defer domain.SetClock(nil)

	fmt.Println("=== Airport Data Integrity Validation ===")
	fmt.Println()

	envelopes, err := loadJSON[json.RawMessage](recordsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load records: %v\n", err)
		return 1
	}

	var committed []factRecord
	if factsPath != "" {
		committed, err = loadJSON[factRecord](factsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load facts: %v\n", err)
			return 1
		}
	}

	derived, replay := replayRecords(clk, envelopes)

	phases := []*phase{
		validateRawRecords(envelopes),
		replay,
		validateAircraftFacts(derived),
		validateNotamFacts(derived),
		validateWeatherFacts(derived),
	}
	if factsPath != "" {
		phases = append(phases, validateCommittedFacts(derived, committed))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d raw, %d derived facts, %d committed facts\n", len(envelopes), len(derived), len(committed))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ── Phase 1: Raw Records ──
// Every envelope must decode into a known kind with its identifying field.

func validateRawRecords(envelopes []json.RawMessage) *phase {
	p := &phase{name: "Phase 1: Raw Records (envelopes)"}

	if len(envelopes) == 0 {
		p.errorf("fixture contains no records")
	}
	for i, raw := range envelopes {
		env, err := domain.ParseEnvelope(domain.RawEvent{Value: raw})
		if err != nil {
			p.errorf("record %d: %v", i, err)
			continue
		}
		switch env.Kind {
		case domain.KindAircraft:
			if _, err := domain.DecodeAircraft(env); err != nil {
				p.errorf("record %d: %v", i, err)
			}
		case domain.KindNotam:
			if _, err := domain.DecodeNotam(env); err != nil {
				p.errorf("record %d: %v", i, err)
			}
		case domain.KindMetar:
			m, err := domain.DecodeMetar(env)
			if err != nil {
				p.errorf("record %d: %v", i, err)
			} else if m.StationID == "" {
				p.errorf("record %d: metar without station", i)
			}
		}
	}
	return p
}

// ── Phase 2: Replay ──
// Every record must transform through the real pipeline transformer.

func replayRecords(clk *clockwork.FakeClock, envelopes []json.RawMessage) ([]factRecord, *phase) {
	p := &phase{name: "Phase 2: Replay (pipeline transformer)"}

	codec, err := pipeline.NewCodec(config.EncodingJSON)
	if err != nil {
		p.errorf("codec: %v", err)
		return nil, p
	}
	metrics := observability.NewMetricsForTesting()
	trails := pipeline.NewTrailStore(1000, trailMaxPoints, time.Hour, metrics)
	transformer := pipeline.NewTransformer(domain.DefaultReference(), trails, codec, slog.New(slog.DiscardHandler), metrics)

	facts := make([]factRecord, 0, len(envelopes))
	for i, env := range envelopes {
		ev, err := transformer.Transform(context.Background(), domain.RawEvent{Value: env, Offset: int64(i)})
		clk.Advance(replayStep)
		if err != nil {
			p.errorf("record %d: %v", i, err)
			continue
		}
		for _, h := range []string{pipeline.HeaderRecordKind, pipeline.HeaderProcessedAt, pipeline.HeaderContentType} {
			if ev.Headers[h] == "" {
				p.errorf("record %d: missing %s header", i, h)
			}
		}
		if len(ev.Key) == 0 {
			p.errorf("record %d: empty message key", i)
		}
		facts = append(facts, factRecord{Key: string(ev.Key), Headers: ev.Headers, Fact: ev.Value})
	}
	return facts, p
}

func factsOfKind[T any](p *phase, facts []factRecord, kind domain.RecordKind) []T {
	var out []T
	for i, f := range facts {
		if f.Headers[pipeline.HeaderRecordKind] != string(kind) {
			continue
		}
		var v T
		if err := json.Unmarshal(f.Fact, &v); err != nil {
			p.errorf("fact %d: unmarshal %s: %v", i, kind, err)
			continue
		}
		out = append(out, v)
	}
	return out
}

// ── Phase 3: Aircraft ──

func validateAircraftFacts(facts []factRecord) *phase {
	p := &phase{name: "Phase 3: Aircraft Facts (phase, trail)"}
	maxJump := domain.DefaultReference().MaxJumpDegrees

	for _, a := range factsOfKind[domain.AircraftFact](p, facts, domain.KindAircraft) {
		if a.PhaseColor != domain.FlightPhaseColor(a.Phase) {
			p.errorf("%s: phase color %q does not match phase %s", a.Hex, a.PhaseColor, a.Phase)
		}
		if a.PhaseLabel == "" {
			p.errorf("%s: empty phase label", a.Hex)
		}
		if a.OnGround && a.Phase != domain.PhaseGround {
			p.errorf("%s: on ground but phase %s", a.Hex, a.Phase)
		}
		if len(a.Trail) == 0 || len(a.Trail) > trailMaxPoints {
			p.errorf("%s: trail length %d outside [1, %d]", a.Hex, len(a.Trail), trailMaxPoints)
		}
		for i := 1; i < len(a.Trail); i++ {
			prev, cur := a.Trail[i-1], a.Trail[i]
			if math.Hypot(cur.Lat-prev.Lat, cur.Lon-prev.Lon) > maxJump {
				p.errorf("%s: trail point %d jumps more than %g degrees", a.Hex, i, maxJump)
			}
			if cur.Timestamp.Before(prev.Timestamp) {
				p.errorf("%s: trail point %d goes back in time", a.Hex, i)
			}
		}
	}
	return p
}

// ── Phase 4: NOTAMs ──

func validateNotamFacts(facts []factRecord) *phase {
	p := &phase{name: "Phase 4: NOTAM Facts (validity, cancels)"}

	notamFacts := factsOfKind[domain.NotamFact](p, facts, domain.KindNotam)
	notams := make([]domain.Notam, 0, len(notamFacts))
	for _, n := range notamFacts {
		notams = append(notams, n.Notam)

		switch n.Validity {
		case domain.ValidityActive, domain.ValidityFuture, domain.ValidityExpired, domain.ValidityCancelled:
		default:
			p.errorf("%s: unknown validity %q", n.Notam.ID, n.Validity)
		}
		if (n.Notam.Type == domain.NotamCancel) != (n.Validity == domain.ValidityCancelled) {
			p.errorf("%s: type %s with validity %s", n.Notam.ID, n.Notam.Type, n.Validity)
		}
		if n.Notam.Type != domain.NotamNew && n.Cancels == "" {
			p.errorf("%s: %s without a cancelled reference", n.Notam.ID, n.Notam.Type)
		}
	}

	cancelled := domain.CancelledSet(notams)
	for _, n := range domain.FilterActive(notams) {
		if _, gone := cancelled[n.Number]; gone {
			p.errorf("%s: cancelled but still active after batch filter", n.ID)
		}
		if n.Type == domain.NotamCancel {
			p.errorf("%s: cancellation survived batch filter", n.ID)
		}
	}
	return p
}

// ── Phase 5: Weather ──

func validateWeatherFacts(facts []factRecord) *phase {
	p := &phase{name: "Phase 5: Weather Facts (category, risk)"}

	for _, w := range factsOfKind[domain.WeatherFact](p, facts, domain.KindMetar) {
		if !w.Category.Valid() {
			p.errorf("%s: invalid category %q", w.Station, w.Category)
		}
		if w.VMC == w.Category.AtLeastIFR() {
			p.errorf("%s: vmc=%t with category %s", w.Station, w.VMC, w.Category)
		}
		if (w.Risk.Level == domain.RiskLow) != (len(w.Risk.Factors) == 0) {
			p.errorf("%s: risk %s with %d factors", w.Station, w.Risk.Level, len(w.Risk.Factors))
		}
	}
	return p
}

// ── Phase 6: Committed Facts ──
// The committed fixture must match a fresh replay exactly.

func validateCommittedFacts(derived, committed []factRecord) *phase {
	p := &phase{name: "Phase 6: Committed Facts (genmock parity)"}

	if len(derived) != len(committed) {
		p.errorf("count: derived %d, committed %d", len(derived), len(committed))
	}
	for i := range min(len(derived), len(committed)) {
		d, c := derived[i], committed[i]
		if d.Key != c.Key {
			p.errorf("fact %d: key derived=%q committed=%q", i, d.Key, c.Key)
		}
		var dv, cv bytes.Buffer
		if err := json.Compact(&dv, d.Fact); err != nil {
			p.errorf("fact %d: derived: %v", i, err)
			continue
		}
		if err := json.Compact(&cv, c.Fact); err != nil {
			p.errorf("fact %d: committed: %v", i, err)
			continue
		}
		if !bytes.Equal(dv.Bytes(), cv.Bytes()) {
			p.errorf("fact %d (%s): value differs from fresh replay", i, d.Key)
		}
	}
	return p
}
