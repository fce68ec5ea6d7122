package devicetypeandname

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relvacode/hidpp/internal/hidpptest"
	"github.com/relvacode/hidpp/nibble"
	"github.com/relvacode/hidpp/protocol/v20"
)

func TestGetWholeDeviceName(t *testing.T) {
	ch, raw := hidpptest.NewChannel(nil)
	defer ch.Close()

	d := New(ch, 2, 4)

	raw.AfterWrite[1] = [][]byte{hidpptest.EncodeFrame(v20.ToHidpp(v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex: 2, FeatureIndex: 4,
			FunctionID: nibble.FromLo(0), SoftwareID: nibble.FromLo(1),
		},
		Payload: [3]byte{5, 0, 0},
	}))}

	raw.AfterWrite[2] = [][]byte{hidpptest.EncodeFrame(v20.ToHidpp(v20.LongMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex: 2, FeatureIndex: 4,
			FunctionID: nibble.FromLo(1), SoftwareID: nibble.FromLo(1),
		},
		Payload: [16]byte{'M', 'X', ' ', 'M', '5'},
	}))}

	name, err := d.GetWholeDeviceName()
	require.NoError(t, err)
	assert.Equal(t, "MX M5", name)
}

func TestGetDeviceType(t *testing.T) {
	ch, raw := hidpptest.NewChannel(nil)
	defer ch.Close()

	d := New(ch, 2, 4)

	raw.AfterWrite[1] = [][]byte{hidpptest.EncodeFrame(v20.ToHidpp(v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex: 2, FeatureIndex: 4,
			FunctionID: nibble.FromLo(2), SoftwareID: nibble.FromLo(1),
		},
		Payload: [3]byte{3, 0, 0},
	}))}

	dt, err := d.GetDeviceType()
	require.NoError(t, err)
	assert.Equal(t, Mouse, dt)
	assert.Equal(t, "mouse", dt.String())
}
