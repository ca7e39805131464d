package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Sink encodings accepted in SINK_ENCODING.
const (
	EncodingJSON        = "json"
	EncodingMsgpack     = "msgpack"
	EncodingMsgpackZstd = "msgpack+zstd"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	SinkEncoding     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	LogFile          string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Reference airport the facts are derived against.
	AirportICAO string
	AirportLat  float64
	AirportLon  float64

	// AirspacesFile is a JSON array of airspace polygons; empty disables
	// airspace containment.
	AirspacesFile string

	// Per-aircraft trail tracking.
	TrailMaxPoints  int
	TrailMaxJumpDeg float64
	TrailCacheSize  int
	TrailTTL        time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	lat, err := parseFloat("AIRPORT_LAT", "35.5934", -90, 90)
	if err != nil {
		return nil, err
	}
	lon, err := parseFloat("AIRPORT_LON", "129.3518", -180, 180)
	if err != nil {
		return nil, err
	}

	maxPoints, err := parsePositiveInt("TRAIL_MAX_POINTS", 100)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parsePositiveInt("TRAIL_CACHE_SIZE", 5000)
	if err != nil {
		return nil, err
	}
	maxJump, err := parseFloat("TRAIL_MAX_JUMP_DEG", "0.1", 0, 180)
	if err != nil {
		return nil, err
	}
	if maxJump == 0 {
		return nil, errors.New("invalid TRAIL_MAX_JUMP_DEG: must be positive")
	}

	trailTTL, err := time.ParseDuration(sharedcfg.EnvOrDefault("TRAIL_TTL", "10m"))
	if err != nil || trailTTL <= 0 {
		return nil, errors.New("invalid TRAIL_TTL")
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "raw-airport-records"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "airport-facts"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "airport-awareness-etl"),
		SinkEncoding:       strings.ToLower(sharedcfg.EnvOrDefault("SINK_ENCODING", EncodingJSON)),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		LogFile:            sharedcfg.EnvOrDefault("LOG_FILE", ""),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		AirportICAO: strings.ToUpper(sharedcfg.EnvOrDefault("AIRPORT_ICAO", "RKPU")),
		AirportLat:  lat,
		AirportLon:  lon,

		AirspacesFile: sharedcfg.EnvOrDefault("AIRSPACES_FILE", ""),

		TrailMaxPoints:  maxPoints,
		TrailMaxJumpDeg: maxJump,
		TrailCacheSize:  cacheSize,
		TrailTTL:        trailTTL,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if len(cfg.AirportICAO) != 4 {
		return nil, fmt.Errorf("invalid AIRPORT_ICAO %q: must be a 4-letter ICAO code", cfg.AirportICAO)
	}
	switch cfg.SinkEncoding {
	case EncodingJSON, EncodingMsgpack, EncodingMsgpackZstd:
	default:
		return nil, fmt.Errorf("invalid SINK_ENCODING %q: must be json, msgpack, or msgpack+zstd", cfg.SinkEncoding)
	}

	return cfg, nil
}

func parseFloat(name, def string, lo, hi float64) (float64, error) {
	v, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(name, def), 64)
	if err != nil || v < lo || v > hi {
		return 0, fmt.Errorf("invalid %s: must be a number in [%g, %g]", name, lo, hi)
	}
	return v, nil
}

func parsePositiveInt(name string, def int) (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault(name, strconv.Itoa(def)))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", name)
	}
	return n, nil
}
