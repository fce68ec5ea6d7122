package wirelessdevicestatus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/relvacode/hidpp/internal/hidpptest"
	"github.com/relvacode/hidpp/nibble"
	"github.com/relvacode/hidpp/protocol/v20"
)

func TestListen_StatusBroadcast(t *testing.T) {
	ch, raw := hidpptest.NewChannel(nil)
	defer ch.Close()

	w := New(ch, 2, 14)
	defer w.Close()

	events := w.Listen()

	raw.PushRead(hidpptest.EncodeFrame(v20.ToHidpp(v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex: 2, FeatureIndex: 14,
			FunctionID: nibble.FromLo(0), SoftwareID: nibble.FromLo(0),
		},
		Payload: [3]byte{byte(Reconnection), byte(SoftwareReconfigurationNeeded), byte(PowerSwitchActivated)},
	})))

	select {
	case broadcast := <-events:
		assert.Equal(t, Reconnection, broadcast.Status)
		assert.Equal(t, SoftwareReconfigurationNeeded, broadcast.Request)
		assert.Equal(t, PowerSwitchActivated, broadcast.Reason)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for wireless device status broadcast")
	}
}

func TestListen_IgnoresUndocumentedReason(t *testing.T) {
	ch, raw := hidpptest.NewChannel(nil)
	defer ch.Close()

	w := New(ch, 2, 14)
	defer w.Close()

	events := w.Listen()

	raw.PushRead(hidpptest.EncodeFrame(v20.ToHidpp(v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex: 2, FeatureIndex: 14,
			FunctionID: nibble.FromLo(0), SoftwareID: nibble.FromLo(0),
		},
		Payload: [3]byte{byte(Reconnection), byte(NoRequest), 0xAB},
	})))

	select {
	case <-events:
		t.Fatal("expected no event for undocumented reason byte")
	case <-time.After(100 * time.Millisecond):
	}
}
