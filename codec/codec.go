// Package codec wraps go-scale encoding for values exchanged between ranks.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/spacemeshos/go-scale"
)

// ErrTrailingBytes is returned by Decode when the buffer holds more data than
// the decoded value consumed.
var ErrTrailingBytes = errors.New("trailing bytes after decoded value")

// Encodable is a value with a scale encoding.
type Encodable = scale.Encodable

// Decodable is a value that can be filled from a scale encoding.
type Decodable = scale.Decodable

// EncodeTo encodes value to a writer stream.
func EncodeTo(w io.Writer, value Encodable) (int, error) {
	n, err := value.EncodeScale(scale.NewEncoder(w))
	if err != nil {
		return n, fmt.Errorf("encode scale: %w", err)
	}
	return n, nil
}

// DecodeFrom decodes a value using data from a reader stream.
func DecodeFrom(r io.Reader, value Decodable) (int, error) {
	n, err := value.DecodeScale(scale.NewDecoder(r))
	if err != nil {
		return n, fmt.Errorf("decode scale: %w", err)
	}
	return n, nil
}

var encoderPool = sync.Pool{
	New: func() any {
		b := new(bytes.Buffer)
		b.Grow(64)
		return b
	},
}

func getEncoderBuffer() *bytes.Buffer {
	return encoderPool.Get().(*bytes.Buffer)
}

func putEncoderBuffer(b *bytes.Buffer) {
	b.Reset()
	encoderPool.Put(b)
}

// Encode value to a byte buffer.
func Encode(value Encodable) ([]byte, error) {
	b := getEncoderBuffer()
	defer putEncoderBuffer(b)
	if _, err := EncodeTo(b, value); err != nil {
		return nil, err
	}
	buf := make([]byte, b.Len())
	copy(buf, b.Bytes())
	return buf, nil
}

// MustEncode encodes value and panics on error.
func MustEncode(value Encodable) []byte {
	buf, err := Encode(value)
	if err != nil {
		panic(err)
	}
	return buf
}

// Decode value from a byte buffer. The whole buffer must be consumed.
func Decode(buf []byte, value Decodable) error {
	n, err := DecodeFrom(bytes.NewReader(buf), value)
	if err != nil {
		return fmt.Errorf("decode from buffer: %w", err)
	}
	if n != len(buf) {
		return fmt.Errorf("%w: %d of %d", ErrTrailingBytes, len(buf)-n, len(buf))
	}
	return nil
}

// EncodeSlice encodes a slice of structs, refusing slices longer than limit.
func EncodeSlice[V any, H scale.EncodablePtr[V]](value []V, limit uint32) ([]byte, error) {
	var b bytes.Buffer
	if _, err := scale.EncodeStructSlice[V, H](scale.NewEncoder(&b, scale.WithEncodeMaxElements(limit)), value); err != nil {
		return nil, fmt.Errorf("encode struct slice: %w", err)
	}
	return b.Bytes(), nil
}

// DecodeSlice decodes a slice of structs, refusing slices longer than limit.
func DecodeSlice[V any, H scale.DecodablePtr[V]](buf []byte, limit uint32) ([]V, error) {
	dec := scale.NewDecoder(bytes.NewReader(buf), scale.WithDecodeMaxElements(limit))
	v, n, err := scale.DecodeStructSlice[V, H](dec)
	if err != nil {
		return nil, fmt.Errorf("decode struct slice: %w", err)
	}
	if n != len(buf) {
		return nil, fmt.Errorf("%w: %d of %d", ErrTrailingBytes, len(buf)-n, len(buf))
	}
	return v, nil
}

// MustEncodeSlice encodes a slice of structs and panics on error.
func MustEncodeSlice[V any, H scale.EncodablePtr[V]](value []V, limit uint32) []byte {
	buf, err := EncodeSlice[V, H](value, limit)
	if err != nil {
		panic(err)
	}
	return buf
}
