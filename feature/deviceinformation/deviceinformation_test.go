package deviceinformation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relvacode/hidpp/internal/hidpptest"
	"github.com/relvacode/hidpp/nibble"
	"github.com/relvacode/hidpp/protocol/v20"
)

func TestGetFwInfo_PackedBCD(t *testing.T) {
	ch, raw := hidpptest.NewChannel(nil)
	defer ch.Close()

	di := New(ch, 2, 3)

	var payload [16]byte
	payload[0] = byte(MainApplication)
	copy(payload[1:4], "RBK")
	payload[4] = 0x24                   // firmware_number packed BCD -> 24
	payload[5] = 0x07                   // revision packed BCD -> 7
	payload[6], payload[7] = 0x12, 0x34 // build packed BCD -> 1234
	payload[8] = 1                      // active
	payload[9], payload[10] = 0x00, 0x01

	raw.AfterWrite[1] = [][]byte{hidpptest.EncodeFrame(v20.ToHidpp(v20.LongMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex: 2, FeatureIndex: 3,
			FunctionID: nibble.FromLo(1), SoftwareID: nibble.FromLo(1),
		},
		Payload: payload,
	}))}

	info, err := di.GetFwInfo(0)
	require.NoError(t, err)
	assert.Equal(t, MainApplication, info.EntityType)
	assert.Equal(t, "RBK", info.FirmwarePrefix)
	assert.Equal(t, uint8(24), info.FirmwareNumber)
	assert.Equal(t, uint8(7), info.Revision)
	assert.Equal(t, uint16(1234), info.Build)
	assert.True(t, info.Active)
}

func TestGetFwInfo_NonBCDFails(t *testing.T) {
	ch, raw := hidpptest.NewChannel(nil)
	defer ch.Close()

	di := New(ch, 2, 3)

	var payload [16]byte
	payload[0] = byte(MainApplication)
	copy(payload[1:4], "RBK")
	payload[4] = 0xAB // not packed BCD

	raw.AfterWrite[1] = [][]byte{hidpptest.EncodeFrame(v20.ToHidpp(v20.LongMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex: 2, FeatureIndex: 3,
			FunctionID: nibble.FromLo(1), SoftwareID: nibble.FromLo(1),
		},
		Payload: payload,
	}))}

	_, err := di.GetFwInfo(0)
	require.Error(t, err)
	var unsupported *v20.UnsupportedResponseError
	require.ErrorAs(t, err, &unsupported)
}

func TestGetDeviceInfo(t *testing.T) {
	ch, raw := hidpptest.NewChannel(nil)
	defer ch.Close()

	di := New(ch, 2, 3)

	var payload [16]byte
	payload[0] = 5 // entity_count
	copy(payload[1:5], []byte{1, 2, 3, 4})
	payload[6] = 0b1000 // usb
	payload[7], payload[8] = 0x04, 0x6D
	payload[9], payload[10] = 0xC5, 0x48
	payload[11], payload[12] = 0x00, 0x00
	payload[13] = 1
	payload[14] = 1 // serial number supported

	raw.AfterWrite[1] = [][]byte{hidpptest.EncodeFrame(v20.ToHidpp(v20.LongMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex: 2, FeatureIndex: 3,
			FunctionID: nibble.FromLo(0), SoftwareID: nibble.FromLo(1),
		},
		Payload: payload,
	}))}

	info, err := di.GetDeviceInfo()
	require.NoError(t, err)
	assert.Equal(t, byte(5), info.EntityCount)
	assert.Equal(t, [4]byte{1, 2, 3, 4}, info.UnitID)
	assert.True(t, info.Transport.USB)
	assert.Equal(t, uint16(0x046D), info.ModelID[0])
	assert.True(t, info.Capabilities.SerialNumber)
}
