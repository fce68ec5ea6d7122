package smartshift

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relvacode/hidpp/internal/hidpptest"
	"github.com/relvacode/hidpp/nibble"
	"github.com/relvacode/hidpp/protocol/v20"
)

func TestGetRatchetControlMode(t *testing.T) {
	ch, raw := hidpptest.NewChannel(nil)
	defer ch.Close()

	s := New(ch, 2, 13)

	raw.AfterWrite[1] = [][]byte{hidpptest.EncodeFrame(v20.ToHidpp(v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex: 2, FeatureIndex: 13,
			FunctionID: nibble.FromLo(0), SoftwareID: nibble.FromLo(1),
		},
		Payload: [3]byte{byte(Ratchet), 0xff, 10},
	}))}

	mode, err := s.GetRatchetControlMode()
	require.NoError(t, err)
	assert.Equal(t, Ratchet, mode.WheelMode)
	assert.Equal(t, byte(0xff), mode.AutoDisengage)
	assert.Equal(t, byte(10), mode.AutoDisengageDefault)
}

func TestSetRatchetControlMode(t *testing.T) {
	ch, raw := hidpptest.NewChannel(nil)
	defer ch.Close()

	s := New(ch, 2, 13)

	raw.AfterWrite[1] = [][]byte{hidpptest.EncodeFrame(v20.ToHidpp(v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex: 2, FeatureIndex: 13,
			FunctionID: nibble.FromLo(1), SoftwareID: nibble.FromLo(1),
		},
	}))}

	mode := Freespin
	err := s.SetRatchetControlMode(&mode, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{byte(Freespin), 0, 0}, func() []byte {
		w := raw.Writes()
		last := w[len(w)-1]
		return []byte{last[4], last[5], last[6]}
	}())
}
