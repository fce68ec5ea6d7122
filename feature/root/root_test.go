package root

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relvacode/hidpp/internal/hidpptest"
	"github.com/relvacode/hidpp/nibble"
	"github.com/relvacode/hidpp/protocol/v20"
)

func TestPing(t *testing.T) {
	ch, raw := hidpptest.NewChannel(nil)
	defer ch.Close()

	r := New(ch, 2)

	raw.AfterWrite[1] = [][]byte{hidpptest.EncodeFrame(v20.ToHidpp(v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex: 2, FeatureIndex: 0,
			FunctionID: nibble.FromLo(1), SoftwareID: nibble.FromLo(1),
		},
		Payload: [3]byte{0, 0, 0x5A},
	}))}

	got, err := r.Ping(0x5A)
	require.NoError(t, err)
	assert.Equal(t, byte(0x5A), got)
}

func TestGetFeature_NotSupported(t *testing.T) {
	ch, raw := hidpptest.NewChannel(nil)
	defer ch.Close()

	r := New(ch, 2)

	raw.AfterWrite[1] = [][]byte{hidpptest.EncodeFrame(v20.ToHidpp(v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex: 2, FeatureIndex: 0,
			FunctionID: nibble.FromLo(0), SoftwareID: nibble.FromLo(1),
		},
		Payload: [3]byte{0, 0, 0},
	}))}

	info, err := r.GetFeature(0x1004)
	require.NoError(t, err)
	assert.Equal(t, byte(0), info.Index)
}
