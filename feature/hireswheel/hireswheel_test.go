package hireswheel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relvacode/hidpp/internal/hidpptest"
	"github.com/relvacode/hidpp/nibble"
	"github.com/relvacode/hidpp/protocol/v20"
)

func TestGetWheelCapabilities(t *testing.T) {
	ch, raw := hidpptest.NewChannel(nil)
	defer ch.Close()

	h := New(ch, 2, 11)
	defer h.Close()

	raw.AfterWrite[1] = [][]byte{hidpptest.EncodeFrame(v20.ToHidpp(v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex: 2, FeatureIndex: 11,
			FunctionID: nibble.FromLo(0), SoftwareID: nibble.FromLo(1),
		},
		Payload: [3]byte{8, 0b1100, 18},
	}))}

	caps, err := h.GetWheelCapabilities()
	require.NoError(t, err)
	assert.Equal(t, byte(8), caps.Multiplier)
	assert.True(t, caps.HasInvert)
	assert.True(t, caps.HasSwitch)
	assert.Equal(t, byte(18), caps.RatchesPerRotation)
}

func TestSetWheelMode(t *testing.T) {
	ch, raw := hidpptest.NewChannel(nil)
	defer ch.Close()

	h := New(ch, 2, 11)
	defer h.Close()

	raw.AfterWrite[1] = [][]byte{hidpptest.EncodeFrame(v20.ToHidpp(v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex: 2, FeatureIndex: 11,
			FunctionID: nibble.FromLo(2), SoftwareID: nibble.FromLo(1),
		},
		Payload: [3]byte{0b111, 0, 0},
	}))}

	mode, err := h.SetWheelMode(Diverted, High, true)
	require.NoError(t, err)
	assert.True(t, mode.Inverted)
	assert.Equal(t, High, mode.Resolution)
	assert.Equal(t, Diverted, mode.Target)
}

func TestListen_WheelMovementAndRatchetSwitch(t *testing.T) {
	ch, raw := hidpptest.NewChannel(nil)
	defer ch.Close()

	h := New(ch, 2, 11)
	defer h.Close()

	events := h.Listen()

	movement := v20.ToHidpp(v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex: 2, FeatureIndex: 11,
			FunctionID: nibble.FromLo(0), SoftwareID: nibble.FromLo(0),
		},
		Payload: [3]byte{(1 << 4) | 3, 0x00, 0x05},
	})
	raw.PushRead(hidpptest.EncodeFrame(movement))

	select {
	case ev := <-events:
		m, ok := ev.(WheelMovement)
		require.True(t, ok)
		assert.Equal(t, High, m.Resolution)
		assert.Equal(t, int16(5), m.DeltaVertical)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for wheel movement event")
	}

	ratchet := v20.ToHidpp(v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex: 2, FeatureIndex: 11,
			FunctionID: nibble.FromLo(1), SoftwareID: nibble.FromLo(0),
		},
		Payload: [3]byte{1, 0, 0},
	})
	raw.PushRead(hidpptest.EncodeFrame(ratchet))

	select {
	case ev := <-events:
		r, ok := ev.(RatchetSwitch)
		require.True(t, ok)
		assert.Equal(t, Ratchet, r.State)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for ratchet switch event")
	}
}
