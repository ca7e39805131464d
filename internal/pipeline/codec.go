package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/couchcryptid/airport-awareness-etl/internal/config"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec serializes facts for the sink topic.
type Codec interface {
	Marshal(v any) ([]byte, error)
	ContentType() string
}

// NewCodec returns the codec for a SINK_ENCODING value.
func NewCodec(encoding string) (Codec, error) {
	switch encoding {
	case config.EncodingJSON, "":
		return jsonCodec{}, nil
	case config.EncodingMsgpack:
		return msgpackCodec{}, nil
	case config.EncodingMsgpackZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if err != nil {
			return nil, fmt.Errorf("create zstd encoder: %w", err)
		}
		return zstdCodec{inner: msgpackCodec{}, enc: enc}, nil
	default:
		return nil, fmt.Errorf("unsupported sink encoding %q", encoding)
	}
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) ContentType() string { return "application/json" }

// msgpackCodec reuses the json struct tags so both encodings share field names.
type msgpackCodec struct{}

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (msgpackCodec) ContentType() string { return "application/msgpack" }

// zstdCodec compresses another codec's output as a single zstd frame.
// EncodeAll is safe for concurrent use.
type zstdCodec struct {
	inner Codec
	enc   *zstd.Encoder
}

func (c zstdCodec) Marshal(v any) ([]byte, error) {
	data, err := c.inner.Marshal(v)
	if err != nil {
		return nil, err
	}
	return c.enc.EncodeAll(data, nil), nil
}

func (c zstdCodec) ContentType() string { return c.inner.ContentType() + "+zstd" }
