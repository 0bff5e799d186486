// Package compression frames event payloads with an optional snappy body.
//
// A frame is one algorithm byte followed by the (possibly compressed)
// payload, so readers can decode without knowing the publisher's settings.
package compression

import (
	"errors"
	"fmt"

	"github.com/golang/snappy"
)

// Algorithm defines compression types
type Algorithm uint8

const (
	None   Algorithm = 0
	Snappy Algorithm = 1
)

func (a Algorithm) String() string {
	switch a {
	case None:
		return "none"
	case Snappy:
		return "snappy"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(a))
	}
}

// ErrEmptyFrame is returned when decoding a zero-length frame
var ErrEmptyFrame = errors.New("empty frame")

// Compressor interface for compression algorithms
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
	Algorithm() Algorithm
}

// GetCompressor returns a compressor for the given algorithm
func GetCompressor(algo Algorithm) (Compressor, error) {
	switch algo {
	case None:
		return NoneCompressor{}, nil
	case Snappy:
		return SnappyCompressor{}, nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %d", algo)
	}
}

// NoneCompressor passes data through
type NoneCompressor struct{}

func (NoneCompressor) Compress(data []byte) ([]byte, error)   { return data, nil }
func (NoneCompressor) Decompress(data []byte) ([]byte, error) { return data, nil }
func (NoneCompressor) Algorithm() Algorithm                   { return None }

// SnappyCompressor implements Compressor using the snappy block format
type SnappyCompressor struct{}

func (SnappyCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}
	return snappy.Encode(nil, data), nil
}

func (SnappyCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}
	out, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("snappy decompress failed: %w", err)
	}
	return out, nil
}

func (SnappyCompressor) Algorithm() Algorithm { return Snappy }

// EncodeFrame compresses payload with algo and prepends the algorithm byte
func EncodeFrame(algo Algorithm, payload []byte) ([]byte, error) {
	c, err := GetCompressor(algo)
	if err != nil {
		return nil, err
	}
	body, err := c.Compress(payload)
	if err != nil {
		return nil, err
	}
	frame := make([]byte, 1+len(body))
	frame[0] = byte(algo)
	copy(frame[1:], body)
	return frame, nil
}

// DecodeFrame reverses EncodeFrame
func DecodeFrame(frame []byte) ([]byte, Algorithm, error) {
	if len(frame) == 0 {
		return nil, None, ErrEmptyFrame
	}
	algo := Algorithm(frame[0])
	c, err := GetCompressor(algo)
	if err != nil {
		return nil, algo, err
	}
	payload, err := c.Decompress(frame[1:])
	if err != nil {
		return nil, algo, err
	}
	return payload, algo, nil
}
