package unifiedbattery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relvacode/hidpp/internal/hidpptest"
	"github.com/relvacode/hidpp/nibble"
	"github.com/relvacode/hidpp/protocol/v20"
)

func TestGetBatteryCapabilities(t *testing.T) {
	ch, raw := hidpptest.NewChannel(nil)
	defer ch.Close()

	u := New(ch, 2, 9)
	defer u.Close()

	raw.AfterWrite[1] = [][]byte{hidpptest.EncodeFrame(v20.ToHidpp(v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex: 2, FeatureIndex: 9,
			FunctionID: nibble.FromLo(0), SoftwareID: nibble.FromLo(1),
		},
		Payload: [3]byte{0b1110, 0b11, 0},
	}))}

	caps, err := u.GetBatteryCapabilities()
	require.NoError(t, err)
	assert.True(t, caps.ReportedLevels[Low])
	assert.True(t, caps.ReportedLevels[Good])
	assert.True(t, caps.ReportedLevels[Full])
	assert.False(t, caps.ReportedLevels[Critical])
	assert.True(t, caps.Rechargeable)
	assert.True(t, caps.Percentage)
}

func TestGetBatteryInfo(t *testing.T) {
	ch, raw := hidpptest.NewChannel(nil)
	defer ch.Close()

	u := New(ch, 2, 9)
	defer u.Close()

	raw.AfterWrite[1] = [][]byte{hidpptest.EncodeFrame(v20.ToHidpp(v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex: 2, FeatureIndex: 9,
			FunctionID: nibble.FromLo(1), SoftwareID: nibble.FromLo(1),
		},
		Payload: [3]byte{72, byte(Good), byte(Charging)},
	}))}

	info, err := u.GetBatteryInfo()
	require.NoError(t, err)
	assert.Equal(t, byte(72), info.ChargingPercentage)
	assert.Equal(t, Good, info.Level)
	assert.Equal(t, Charging, info.Status)
}

func TestListen_UnsolicitedNotification(t *testing.T) {
	ch, raw := hidpptest.NewChannel(nil)
	defer ch.Close()

	u := New(ch, 2, 9)
	defer u.Close()

	events := u.Listen()

	notification := v20.ToHidpp(v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex: 2, FeatureIndex: 9,
			FunctionID: nibble.FromLo(0), SoftwareID: nibble.FromLo(0),
		},
		Payload: [3]byte{50, byte(Low), byte(Discharging)},
	})
	raw.PushRead(hidpptest.EncodeFrame(notification))

	select {
	case info := <-events:
		assert.Equal(t, byte(50), info.ChargingPercentage)
		assert.Equal(t, Low, info.Level)
		assert.Equal(t, Discharging, info.Status)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for battery notification")
	}
}
