package navstore

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/katalvlaran/terranav/navgrid"
)

// Version is the format version written by Encode.
const Version byte = 1

const flagZstd byte = 1 << 0

var magic = [4]byte{'T', 'N', 'A', 'V'}

// Option configures Encode.
type Option func(*encodeConfig)

type encodeConfig struct {
	compress bool
	level    zstd.EncoderLevel
}

// WithCompression compresses the body with zstd at the default level.
func WithCompression() Option {
	return func(c *encodeConfig) { c.compress = true }
}

// WithCompressionLevel compresses the body with zstd at level.
// Panics if level is not a valid zstd.EncoderLevel.
func WithCompressionLevel(level zstd.EncoderLevel) Option {
	if level < zstd.SpeedFastest || level > zstd.SpeedBestCompression {
		panic(fmt.Sprintf("navstore: invalid compression level %d", level))
	}
	return func(c *encodeConfig) { c.compress, c.level = true, level }
}

// Encode writes g to w.
//
// Complexity: O(V + C) for V cells and C connections.
func Encode(w io.Writer, g *navgrid.Grid, opts ...Option) error {
	cfg := encodeConfig{level: zstd.SpeedDefault}
	for _, opt := range opts {
		opt(&cfg)
	}
	if g == nil {
		return fmt.Errorf("navstore: encode: grid is nil")
	}

	header := []byte{magic[0], magic[1], magic[2], magic[3], Version, 0}
	if cfg.compress {
		header[5] |= flagZstd
	}
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("navstore: write header: %w", err)
	}

	rec := snapshot(g)
	if !cfg.compress {
		if err := msgpack.NewEncoder(w).Encode(&rec); err != nil {
			return fmt.Errorf("navstore: encode body: %w", err)
		}
		return nil
	}

	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(cfg.level))
	if err != nil {
		return fmt.Errorf("navstore: zstd writer: %w", err)
	}
	if err := msgpack.NewEncoder(zw).Encode(&rec); err != nil {
		zw.Close()
		return fmt.Errorf("navstore: encode body: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("navstore: flush zstd: %w", err)
	}
	return nil
}

// Decode reads a grid written by Encode.
func Decode(r io.Reader) (*navgrid.Grid, error) {
	br := bufio.NewReader(r)
	var header [6]byte
	if _, err := io.ReadFull(br, header[:]); err != nil {
		return nil, fmt.Errorf("%w: short header: %w", ErrBadMagic, err)
	}
	if !bytes.Equal(header[:4], magic[:]) {
		return nil, fmt.Errorf("%w: %q", ErrBadMagic, header[:4])
	}
	if header[4] != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, header[4])
	}
	if header[5]&^flagZstd != 0 {
		return nil, fmt.Errorf("%w: unknown flags %#x", ErrCorrupt, header[5])
	}

	var body io.Reader = br
	if header[5]&flagZstd != 0 {
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd reader: %w", ErrCorrupt, err)
		}
		defer zr.Close()
		body = zr
	}

	var rec gridRecord
	if err := msgpack.NewDecoder(body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return restore(rec)
}

// Marshal returns the encoding of g.
func Marshal(g *navgrid.Grid, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, g, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a grid from data.
func Unmarshal(data []byte) (*navgrid.Grid, error) {
	return Decode(bytes.NewReader(data))
}
