// Command genmock replays the raw airport record fixture through the real
// transformer and writes the resulting facts as a second fixture, so
// downstream consumers can test against exactly what the pipeline emits.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -in data/mock/airport_records.json \
//	  -out data/mock/airport_facts.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/couchcryptid/airport-awareness-etl/internal/config"
	"github.com/couchcryptid/airport-awareness-etl/internal/domain"
	"github.com/couchcryptid/airport-awareness-etl/internal/observability"
	"github.com/couchcryptid/airport-awareness-etl/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

// replayStart is the fixed clock for reproducible ProcessedAt timestamps.
// Each record advances it by replayStep.
var replayStart = time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC)

const replayStep = 5 * time.Second

// factRecord is one entry of the facts fixture.
type factRecord struct {
	Key     string            `json:"key"`
	Headers map[string]string `json:"headers"`
	Fact    json.RawMessage   `json:"fact"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "data/mock/airport_records.json", "raw airport record fixture")
	out := flag.String("out", "", "output path for the facts fixture")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	clk := clockwork.NewFakeClockAt(replayStart)
	domain.SetClock(clk)
	defer domain.SetClock(nil)

	envelopes, err := readEnvelopes(*in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", *in, err)
	}
	log.Printf("loaded %d raw records", len(envelopes))

	codec, err := pipeline.NewCodec(config.EncodingJSON)
	if err != nil {
		return err
	}
	metrics := observability.NewMetricsForTesting()
	trails := pipeline.NewTrailStore(1000, 100, time.Hour, metrics)
	transformer := pipeline.NewTransformer(domain.DefaultReference(), trails, codec, slog.New(slog.DiscardHandler), metrics)

	facts := make([]factRecord, 0, len(envelopes))
	for i, env := range envelopes {
		ev, err := transformer.Transform(context.Background(), domain.RawEvent{Value: env, Offset: int64(i)})
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		facts = append(facts, factRecord{Key: string(ev.Key), Headers: ev.Headers, Fact: ev.Value})
		clk.Advance(replayStep)
	}

	if err := writeJSON(*out, facts); err != nil {
		return fmt.Errorf("writing facts fixture: %w", err)
	}
	log.Printf("wrote facts fixture: %s", *out)

	printStats(facts)
	return nil
}

func readEnvelopes(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var envelopes []json.RawMessage
	if err := json.Unmarshal(data, &envelopes); err != nil {
		return nil, err
	}
	return envelopes, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

// statsResult holds aggregated counts for printStats reporting.
type statsResult struct {
	kindCounts     map[string]int
	phaseCounts    map[domain.FlightPhase]int
	validityCounts map[domain.NotamValidity]int
	riskCounts     map[domain.RiskLevel]int
	trailLengths   map[string]int
}

func collectStats(facts []factRecord) statsResult {
	s := statsResult{
		kindCounts:     map[string]int{},
		phaseCounts:    map[domain.FlightPhase]int{},
		validityCounts: map[domain.NotamValidity]int{},
		riskCounts:     map[domain.RiskLevel]int{},
		trailLengths:   map[string]int{},
	}
	for _, f := range facts {
		kind := f.Headers[pipeline.HeaderRecordKind]
		s.kindCounts[kind]++

		switch domain.RecordKind(kind) {
		case domain.KindAircraft:
			var a domain.AircraftFact
			if json.Unmarshal(f.Fact, &a) == nil {
				s.phaseCounts[a.Phase]++
				s.trailLengths[a.Hex] = len(a.Trail)
			}
		case domain.KindNotam:
			var n domain.NotamFact
			if json.Unmarshal(f.Fact, &n) == nil {
				s.validityCounts[n.Validity]++
			}
		case domain.KindMetar:
			var w domain.WeatherFact
			if json.Unmarshal(f.Fact, &w) == nil {
				s.riskCounts[w.Risk.Level]++
			}
		}
	}
	return s
}

func printStats(facts []factRecord) {
	stats := collectStats(facts)

	fmt.Println("\n=== Facts Summary ===")
	printCounts("Record kinds", stats.kindCounts)
	printCounts("Flight phases", stats.phaseCounts)
	printCounts("NOTAM validity", stats.validityCounts)
	printCounts("Weather risk", stats.riskCounts)
	printCounts("Published trail length by aircraft", stats.trailLengths)
}

func printCounts[K ~string](title string, counts map[K]int) {
	fmt.Printf("\n%s:\n", title)
	for _, k := range slices.Sorted(maps.Keys(counts)) {
		fmt.Printf("  %-12s %d\n", k, counts[k])
	}
}
