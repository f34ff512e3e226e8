package codec

import (
	"testing"

	"github.com/spacemeshos/go-scale"
	"github.com/stretchr/testify/require"
)

type point struct {
	X, Y uint64
}

func (p *point) EncodeScale(enc *scale.Encoder) (total int, err error) {
	for _, v := range []uint64{p.X, p.Y} {
		n, err := scale.EncodeUint64(enc, v)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (p *point) DecodeScale(dec *scale.Decoder) (total int, err error) {
	for _, v := range []*uint64{&p.X, &p.Y} {
		field, n, err := scale.DecodeUint64(dec)
		if err != nil {
			return total, err
		}
		*v = field
		total += n
	}
	return total, nil
}

func TestEncodeDecode(t *testing.T) {
	buf, err := Encode(&point{X: 1, Y: 2})
	require.NoError(t, err)
	require.Len(t, buf, 16)

	var got point
	require.NoError(t, Decode(buf, &got))
	require.Equal(t, point{X: 1, Y: 2}, got)

	require.ErrorIs(t, Decode(append(buf, 0), &got), ErrTrailingBytes)
	require.Error(t, Decode(buf[:10], &got))
}

func TestEncodeDoesNotAlias(t *testing.T) {
	first := MustEncode(&point{X: 1})
	second := MustEncode(&point{X: 2})
	require.NotEqual(t, first, second)
	require.Equal(t, byte(1), first[0])
}

func TestSlice(t *testing.T) {
	points := []point{{X: 1, Y: 2}, {X: 3, Y: 4}, {X: 5, Y: 6}}
	buf, err := EncodeSlice(points, 3)
	require.NoError(t, err)
	require.Equal(t, buf, MustEncodeSlice(points, 3))

	got, err := DecodeSlice[point](buf, 3)
	require.NoError(t, err)
	require.Equal(t, points, got)

	_, err = EncodeSlice(points, 2)
	require.Error(t, err)
	_, err = DecodeSlice[point](buf, 2)
	require.Error(t, err)
	_, err = DecodeSlice[point](append(buf, 7), 3)
	require.ErrorIs(t, err, ErrTrailingBytes)

	empty, err := DecodeSlice[point](MustEncodeSlice[point]([]point(nil), 1), 1)
	require.NoError(t, err)
	require.Empty(t, empty)
}
