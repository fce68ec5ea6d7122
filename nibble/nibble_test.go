package nibble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombine(t *testing.T) {
	for _, tc := range []struct {
		hi, lo uint8
		want   uint8
	}{
		{0x0, 0x0, 0x00},
		{0xf, 0x0, 0xf0},
		{0x0, 0xf, 0x0f},
		{0xa, 0x3, 0xa3},
	} {
		got := Combine(FromLo(tc.hi), FromLo(tc.lo))
		assert.Equalf(t, tc.want, got, "Combine(%#x, %#x)", tc.hi, tc.lo)
	}
}

func TestFromHiLoRoundTrip(t *testing.T) {
	for b := 0; b < 256; b++ {
		hi := FromHi(uint8(b))
		lo := FromLo(uint8(b))
		assert.Equal(t, uint8(b), Combine(hi, lo))
	}
}

func TestDecodePackedU8(t *testing.T) {
	got, err := DecodePackedU8(0x24)
	require.NoError(t, err)
	assert.Equal(t, uint8(24), got)

	_, err = DecodePackedU8(0xA0)
	assert.Error(t, err)

	_, err = DecodePackedU8(0x0A)
	assert.Error(t, err)
}

func TestDecodePackedU16(t *testing.T) {
	got, err := DecodePackedU16(0x1234)
	require.NoError(t, err)
	assert.Equal(t, uint16(1234), got)

	_, err = DecodePackedU16(0x12FF)
	assert.Error(t, err)
}
