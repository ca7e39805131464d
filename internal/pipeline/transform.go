package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/airport-awareness-etl/internal/domain"
	"github.com/couchcryptid/airport-awareness-etl/internal/observability"
)

// Output header keys.
const (
	HeaderRecordKind  = "record_kind"
	HeaderProcessedAt = "processed_at"
	HeaderContentType = "content_type"
)

// RecordTransformer implements Transformer by dispatching each envelope to
// the domain rules for its kind. Aircraft reports are joined with the
// aircraft's stored trail before classification.
type RecordTransformer struct {
	ref     domain.Reference
	trails  *TrailStore
	codec   Codec
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewTransformer creates a RecordTransformer deriving facts relative to ref.
func NewTransformer(ref domain.Reference, trails *TrailStore, codec Codec, logger *slog.Logger, metrics *observability.Metrics) *RecordTransformer {
	return &RecordTransformer{
		ref:     ref,
		trails:  trails,
		codec:   codec,
		logger:  logger,
		metrics: metrics,
	}
}

func (t *RecordTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	env, err := domain.ParseEnvelope(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	var (
		key         string
		fact        any
		processedAt time.Time
	)

	switch env.Kind {
	case domain.KindAircraft:
		pos, err := domain.DecodeAircraft(env)
		if err != nil {
			return domain.OutputEvent{}, err
		}
		trail := t.trails.Record(pos, domain.Now())
		f := domain.BuildAircraftFact(pos, trail, t.ref)
		t.metrics.FlightPhases.WithLabelValues(string(f.Phase)).Inc()
		t.logger.Debug("aircraft classified", "hex", f.Hex, "phase", f.Phase, "trail_points", len(f.Trail))
		key, fact, processedAt = f.Hex, f, f.ProcessedAt

	case domain.KindNotam:
		rn, err := domain.DecodeNotam(env)
		if err != nil {
			return domain.OutputEvent{}, err
		}
		f := domain.BuildNotamFact(rn, t.ref)
		t.metrics.NotamValidity.WithLabelValues(string(f.Validity)).Inc()
		if f.Cancels != "" {
			t.logger.Info("notam supersedes earlier notam", "id", f.Notam.ID, "cancels", f.Cancels, "type", f.Notam.Type)
		}
		key, fact, processedAt = f.Notam.ID, f, f.ProcessedAt

	case domain.KindMetar:
		m, err := domain.DecodeMetar(env)
		if err != nil {
			return domain.OutputEvent{}, err
		}
		f := domain.BuildWeatherFact(m, env.Sigmets)
		t.metrics.WeatherRisk.WithLabelValues(string(f.Risk.Level)).Inc()
		key, fact, processedAt = f.Station, f, f.ProcessedAt

	default:
		return domain.OutputEvent{}, fmt.Errorf("transform: %w %q", domain.ErrUnknownKind, env.Kind)
	}

	t.metrics.RecordsByKind.WithLabelValues(string(env.Kind)).Inc()
	return t.serialize(env.Kind, key, fact, processedAt)
}

func (t *RecordTransformer) serialize(kind domain.RecordKind, key string, fact any, processedAt time.Time) (domain.OutputEvent, error) {
	data, err := t.codec.Marshal(fact)
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("serialize %s fact: %w", kind, err)
	}
	return domain.OutputEvent{
		Key:   []byte(key),
		Value: data,
		Headers: map[string]string{
			HeaderRecordKind:  string(kind),
			HeaderProcessedAt: processedAt.Format(time.RFC3339),
			HeaderContentType: t.codec.ContentType(),
		},
	}, nil
}
