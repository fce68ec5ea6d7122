package v20

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/relvacode/hidpp/channel"
	"github.com/relvacode/hidpp/nibble"
)

func TestShortMessageRoundTrip(t *testing.T) {
	msg := ShortMessage{
		Hdr: MessageHeader{
			DeviceIndex:  2,
			FeatureIndex: 7,
			FunctionID:   nibble.FromLo(2),
			SoftwareID:   nibble.FromLo(5),
		},
		Payload: [3]byte{0xAA, 0xBB, 0xCC},
	}

	raw := ToHidpp(msg)
	back := FromHidpp(raw)

	short, ok := back.(ShortMessage)
	if assert.True(t, ok) {
		assert.Equal(t, msg, short)
	}
}

func TestLongMessageRoundTrip(t *testing.T) {
	msg := LongMessage{
		Hdr: MessageHeader{
			DeviceIndex:  1,
			FeatureIndex: 3,
			FunctionID:   nibble.FromLo(1),
			SoftwareID:   nibble.FromLo(9),
		},
	}
	for i := range msg.Payload {
		msg.Payload[i] = byte(i)
	}

	raw := ToHidpp(msg)
	back := FromHidpp(raw)

	long, ok := back.(LongMessage)
	if assert.True(t, ok) {
		assert.Equal(t, msg, long)
	}
}

func TestShortMessage_ExtendPayload(t *testing.T) {
	msg := ShortMessage{Payload: [3]byte{1, 2, 3}}
	got := msg.ExtendPayload()
	assert.Equal(t, [16]byte{1, 2, 3}, got)
}

func TestFromHidpp_FunctionAndSoftwareIDPacking(t *testing.T) {
	var raw channel.ShortMessage
	raw[2] = 0x35 // hi nibble 3 = function id, lo nibble 5 = software id

	msg := FromHidpp(raw)
	hdr := msg.Header()
	assert.Equal(t, nibble.FromLo(3), hdr.FunctionID)
	assert.Equal(t, nibble.FromLo(5), hdr.SoftwareID)
}

func TestLongMessageRoundTrip_StructDiff(t *testing.T) {
	msg := LongMessage{
		Hdr: MessageHeader{
			DeviceIndex:  4,
			FeatureIndex: 11,
			FunctionID:   nibble.FromLo(6),
			SoftwareID:   nibble.FromLo(2),
		},
		Payload: [16]byte{0xDE, 0xAD, 0xBE, 0xEF},
	}

	back := FromHidpp(ToHidpp(msg))
	long, ok := back.(LongMessage)
	if !assert.True(t, ok) {
		return
	}

	if diff := cmp.Diff(msg, long, cmp.AllowUnexported(nibble.U4{})); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
