package devicefriendlyname

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relvacode/hidpp/internal/hidpptest"
	"github.com/relvacode/hidpp/nibble"
	"github.com/relvacode/hidpp/protocol/v20"
)

func TestGetWholeFriendlyName(t *testing.T) {
	ch, raw := hidpptest.NewChannel(nil)
	defer ch.Close()

	d := New(ch, 2, 6)

	raw.AfterWrite[1] = [][]byte{hidpptest.EncodeFrame(v20.ToHidpp(v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex: 2, FeatureIndex: 6,
			FunctionID: nibble.FromLo(0), SoftwareID: nibble.FromLo(1),
		},
		Payload: [3]byte{4, 15, 4},
	}))}

	var chunkPayload [16]byte
	copy(chunkPayload[1:], "desk")
	raw.AfterWrite[2] = [][]byte{hidpptest.EncodeFrame(v20.ToHidpp(v20.LongMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex: 2, FeatureIndex: 6,
			FunctionID: nibble.FromLo(1), SoftwareID: nibble.FromLo(1),
		},
		Payload: chunkPayload,
	}))}

	name, err := d.GetWholeFriendlyName()
	require.NoError(t, err)
	assert.Equal(t, "desk", name)
}

func TestSetFriendlyName(t *testing.T) {
	ch, raw := hidpptest.NewChannel(nil)
	defer ch.Close()

	d := New(ch, 2, 6)

	raw.AfterWrite[1] = [][]byte{hidpptest.EncodeFrame(v20.ToHidpp(v20.LongMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex: 2, FeatureIndex: 6,
			FunctionID: nibble.FromLo(3), SoftwareID: nibble.FromLo(1),
		},
		Payload: [16]byte{5},
	}))}

	var chunk [15]byte
	copy(chunk[:], "desk")
	newLen, err := d.SetFriendlyName(0, chunk)
	require.NoError(t, err)
	assert.Equal(t, byte(5), newLen)
}
