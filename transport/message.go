package transport

import (
	"github.com/spacemeshos/go-scale"
)

//go:generate scalegen -types Message

// MaxMessageSize bounds the payload of a decoded Message.
const MaxMessageSize = 1 << 30

// Message carries the contribution of one rank to the collective round Seq.
type Message struct {
	Seq  uint64
	Data []byte
}

// vector is the payload of an all-reduce round. Values are bit cast to
// uint64 to keep the encoding fixed width.
type vector []int64

func (v vector) EncodeScale(enc *scale.Encoder) (total int, err error) {
	n, err := scale.EncodeCompact32(enc, uint32(len(v)))
	if err != nil {
		return total, err
	}
	total += n
	for _, x := range v {
		n, err := scale.EncodeUint64(enc, uint64(x))
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (v *vector) DecodeScale(dec *scale.Decoder) (total int, err error) {
	length, n, err := scale.DecodeCompact32(dec)
	if err != nil {
		return total, err
	}
	total += n
	out := make(vector, 0, min(length, 1024))
	for range length {
		x, n, err := scale.DecodeUint64(dec)
		if err != nil {
			return total, err
		}
		total += n
		out = append(out, int64(x))
	}
	*v = out
	return total, nil
}
