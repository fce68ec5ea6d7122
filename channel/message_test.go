package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEncodeRoundTrip(t *testing.T) {
	for _, msg := range []HidppMessage{
		ShortMessage{0x02, 0x00, 0x01, 0x01, 0x00, 0x00},
		LongMessage{0xFF, 0xB5, 0x51, 0x02, 0xAA, 0xBB, 0xCC, 0xDD},
	} {
		var buf [LongReportLength]byte
		n, err := EncodeMessage(msg, buf[:])
		require.NoError(t, err)

		decoded, ok := DecodeMessage(buf[:n])
		require.True(t, ok)
		assert.Equal(t, msg, decoded)
	}
}

func TestDecodeMessage_BoundaryLengths(t *testing.T) {
	// One byte short of a valid short frame.
	_, ok := DecodeMessage(append([]byte{ShortReportID}, make([]byte, 5)...))
	assert.False(t, ok)

	// One byte short of a valid long frame.
	_, ok = DecodeMessage(append([]byte{LongReportID}, make([]byte, 17)...))
	assert.False(t, ok)
}

func TestDecodeMessage_UnknownReportID(t *testing.T) {
	_, ok := DecodeMessage(append([]byte{0x01}, make([]byte, 6)...))
	assert.False(t, ok)
}

func TestDecodeMessage_Empty(t *testing.T) {
	_, ok := DecodeMessage(nil)
	assert.False(t, ok)
}
