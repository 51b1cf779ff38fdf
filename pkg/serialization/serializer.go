// Package serialization provides the snapshot wire format: a pluggable
// codec (msgpack, json) behind optional compression (zstd, gzip), with a
// small self-describing header so readers need no prior configuration.
// PRINCIPLES:
// - KISS: Simple interface with multiple codec implementations
// - DRY: Reusable across all snapshot stores
// - SOLID: Interface segregation for different serializers
package serialization

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Format errors
var (
	ErrBadHeader          = errors.New("malformed serialization header")
	ErrUnknownCodec       = errors.New("unknown codec")
	ErrUnknownCompression = errors.New("unknown compression")
)

// Codec interface for serialization
// PRINCIPLES:
// - ISP: Simple interface with <=5 methods
// - SRP: Single responsibility for serialization
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
	Name() string
}

// CompressionType represents compression algorithms
type CompressionType string

const (
	CompressionNone CompressionType = "none"
	CompressionGzip CompressionType = "gzip"
	CompressionZstd CompressionType = "zstd"
)

// magic prefixes every serialized payload, followed by the length-prefixed
// codec name and a one-byte compression id.
var magic = []byte("PBAY")

const (
	compressionIDNone byte = 0
	compressionIDGzip byte = 1
	compressionIDZstd byte = 2
)

// Serializer runs the encode-compress pipeline and prepends the header
// PRINCIPLES:
// - KISS: Simple interface hiding the pipeline
// - SRP: Single responsibility for the complete serialization pipeline
type Serializer struct {
	codec       Codec
	compression CompressionType
}

// Option configures a Serializer
type Option func(*Serializer)

// WithCodec selects the codec used for encoding
func WithCodec(c Codec) Option {
	return func(s *Serializer) { s.codec = c }
}

// WithCompression selects the compression applied after encoding
func WithCompression(ct CompressionType) Option {
	return func(s *Serializer) { s.compression = ct }
}

// New creates a serializer; the default is msgpack with zstd compression
func New(opts ...Option) *Serializer {
	s := &Serializer{
		codec:       NewMsgPackCodec(),
		compression: CompressionZstd,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serialize encodes and compresses v, prefixed with the format header
func (s *Serializer) Serialize(v any) ([]byte, error) {
	name := s.codec.Name()
	if len(name) > 255 {
		return nil, fmt.Errorf("codec name too long: %s", name)
	}

	data, err := s.codec.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("codec encoding failed: %w", err)
	}
	data, err = compress(s.compression, data)
	if err != nil {
		return nil, fmt.Errorf("compression failed: %w", err)
	}

	out := make([]byte, 0, len(magic)+2+len(name)+len(data))
	out = append(out, magic...)
	out = append(out, byte(len(name)))
	out = append(out, name...)
	out = append(out, compressionToID(s.compression))
	return append(out, data...), nil
}

// Deserialize reads the header, then decompresses and decodes into v. The
// header selects the codec and compression, so data written with any
// configuration round-trips through any serializer as long as the codec is
// known.
func (s *Serializer) Deserialize(data []byte, v any) error {
	codecName, ct, payload, err := parseHeader(data)
	if err != nil {
		return err
	}
	codec, err := s.resolveCodec(codecName)
	if err != nil {
		return err
	}
	payload, err = decompress(ct, payload)
	if err != nil {
		return fmt.Errorf("decompression failed: %w", err)
	}
	if err := codec.Decode(payload, v); err != nil {
		return fmt.Errorf("codec decoding failed: %w", err)
	}
	return nil
}

func (s *Serializer) resolveCodec(name string) (Codec, error) {
	if s.codec.Name() == name {
		return s.codec, nil
	}
	switch name {
	case "json":
		return NewJSONCodec(), nil
	case "msgpack":
		return NewMsgPackCodec(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCodec, name)
}

func parseHeader(data []byte) (string, CompressionType, []byte, error) {
	if len(data) < len(magic)+2 || !bytes.Equal(data[:len(magic)], magic) {
		return "", "", nil, ErrBadHeader
	}
	rest := data[len(magic):]
	nameLen := int(rest[0])
	if len(rest) < 1+nameLen+1 {
		return "", "", nil, ErrBadHeader
	}
	name := string(rest[1 : 1+nameLen])
	ct, ok := compressionFromID(rest[1+nameLen])
	if !ok {
		return "", "", nil, ErrUnknownCompression
	}
	return name, ct, rest[1+nameLen+1:], nil
}

func compressionToID(ct CompressionType) byte {
	switch ct {
	case CompressionGzip:
		return compressionIDGzip
	case CompressionZstd:
		return compressionIDZstd
	default:
		return compressionIDNone
	}
}

func compressionFromID(b byte) (CompressionType, bool) {
	switch b {
	case compressionIDNone:
		return CompressionNone, true
	case compressionIDGzip:
		return CompressionGzip, true
	case compressionIDZstd:
		return CompressionZstd, true
	}
	return "", false
}

// compress applies the selected compression
func compress(ct CompressionType, data []byte) ([]byte, error) {
	switch ct {
	case CompressionGzip:
		return compressGzip(data)
	case CompressionZstd:
		return compressZstd(data)
	default:
		return data, nil
	}
}

// decompress removes the selected compression
func decompress(ct CompressionType, data []byte) ([]byte, error) {
	switch ct {
	case CompressionGzip:
		return decompressGzip(data)
	case CompressionZstd:
		return decompressZstd(data)
	default:
		return data, nil
	}
}

func compressGzip(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)

	if _, err := writer.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func decompressGzip(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return io.ReadAll(reader)
}

func compressZstd(data []byte) ([]byte, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer encoder.Close()

	return encoder.EncodeAll(data, nil), nil
}

func decompressZstd(data []byte) ([]byte, error) {
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer decoder.Close()

	return decoder.DecodeAll(data, nil)
}

// JSONCodec implements JSON serialization
type JSONCodec struct{}

func (c *JSONCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (c *JSONCodec) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (c *JSONCodec) Name() string {
	return "json"
}

// MsgPackCodec implements MessagePack serialization
type MsgPackCodec struct{}

func (c *MsgPackCodec) Encode(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (c *MsgPackCodec) Decode(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

func (c *MsgPackCodec) Name() string {
	return "msgpack"
}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() Codec {
	return &JSONCodec{}
}

// NewMsgPackCodec creates a new MessagePack codec
func NewMsgPackCodec() Codec {
	return &MsgPackCodec{}
}
