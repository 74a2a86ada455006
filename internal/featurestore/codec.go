package featurestore

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"

	"shotscan/internal/features"
)

// Compression selects how vector blobs are written.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
)

type codecID int

const (
	codecRaw codecID = iota
	codecZstd
)

var (
	encoderPool sync.Pool
	decoderPool sync.Pool
)

func getEncoder() *zstd.Encoder {
	if v := encoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getDecoder() *zstd.Decoder {
	if v := decoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// encodeVector packs v as little endian float32 values. With zstd selected the
// compressed form is kept only when it is actually smaller.
func encodeVector(v features.Vector, c Compression) (codecID, []byte) {
	raw := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(x))
	}
	if c != CompressionZstd {
		return codecRaw, raw
	}
	enc := getEncoder()
	defer encoderPool.Put(enc)
	packed := enc.EncodeAll(raw, nil)
	if len(packed) >= len(raw) {
		return codecRaw, raw
	}
	return codecZstd, packed
}

func decodeVector(id codecID, dim int, blob []byte) (features.Vector, error) {
	raw := blob
	switch id {
	case codecRaw:
	case codecZstd:
		dec := getDecoder()
		defer decoderPool.Put(dec)
		out, err := dec.DecodeAll(blob, make([]byte, 0, 4*dim))
		if err != nil {
			return nil, fmt.Errorf("decompress vector: %w", err)
		}
		raw = out
	default:
		return nil, fmt.Errorf("unknown vector codec %d", id)
	}
	if len(raw) != 4*dim {
		return nil, fmt.Errorf("vector blob holds %d bytes, want %d", len(raw), 4*dim)
	}
	v := make(features.Vector, dim)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return v, nil
}
