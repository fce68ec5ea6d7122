// Package devicefriendlyname implements the HID++2.0 DeviceFriendlyName
// feature (0x0007): a user-settable display name for the device, distinct
// from the fixed marketing name exposed by feature/devicetypeandname.
package devicefriendlyname

import (
	"strings"
	"unicode/utf8"

	"github.com/relvacode/hidpp/channel"
	"github.com/relvacode/hidpp/feature"
	"github.com/relvacode/hidpp/nibble"
	"github.com/relvacode/hidpp/protocol/v20"
)

// FeatureID is the HID++2.0 feature ID for DeviceFriendlyName.
const FeatureID uint16 = 0x0007

func init() {
	feature.Register(FeatureID, "DeviceFriendlyName", 0, func(ch *channel.Channel, deviceIndex, featureIndex byte) any {
		return New(ch, deviceIndex, featureIndex)
	})
}

// DeviceFriendlyName calls the DeviceFriendlyName feature on a single
// device.
type DeviceFriendlyName struct {
	ch           *channel.Channel
	deviceIndex  byte
	featureIndex byte
}

// New builds a DeviceFriendlyName bound to deviceIndex at the given
// runtime feature index.
func New(ch *channel.Channel, deviceIndex, featureIndex byte) *DeviceFriendlyName {
	return &DeviceFriendlyName{ch: ch, deviceIndex: deviceIndex, featureIndex: featureIndex}
}

// Length reports the current, maximum, and default lengths of the
// device's friendly name, as returned by GetFriendlyNameLength.
type Length struct {
	NameLength        byte
	NameMaxLength     byte
	DefaultNameLength byte
}

// GetFriendlyNameLength retrieves the length data of the friendly name
// feature.
func (d *DeviceFriendlyName) GetFriendlyNameLength() (Length, error) {
	resp, err := v20.SendV20(d.ch, v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex:  d.deviceIndex,
			FeatureIndex: d.featureIndex,
			FunctionID:   nibble.FromLo(0),
			SoftwareID:   d.ch.GetSwID(),
		},
	})
	if err != nil {
		return Length{}, err
	}
	payload := resp.ExtendPayload()
	return Length{
		NameLength:        payload[0],
		NameMaxLength:     payload[1],
		DefaultNameLength: payload[2],
	}, nil
}

// GetFriendlyName retrieves 15 bytes of the friendly name starting at
// index, zero-padded if the name is shorter.
func (d *DeviceFriendlyName) GetFriendlyName(index byte) ([15]byte, error) {
	return d.getNameChunk(1, index)
}

// GetDefaultFriendlyName retrieves 15 bytes of the factory default
// friendly name starting at index, zero-padded if shorter.
func (d *DeviceFriendlyName) GetDefaultFriendlyName(index byte) ([15]byte, error) {
	return d.getNameChunk(2, index)
}

func (d *DeviceFriendlyName) getNameChunk(functionID byte, index byte) ([15]byte, error) {
	var out [15]byte

	resp, err := v20.SendV20(d.ch, v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex:  d.deviceIndex,
			FeatureIndex: d.featureIndex,
			FunctionID:   nibble.FromLo(functionID),
			SoftwareID:   d.ch.GetSwID(),
		},
		Payload: [3]byte{index, 0, 0},
	})
	if err != nil {
		return out, err
	}

	payload := resp.ExtendPayload()
	copy(out[:], payload[1:16])
	return out, nil
}

// GetWholeFriendlyName assembles the full friendly name by calling
// GetFriendlyNameLength and then repeatedly calling GetFriendlyName.
func (d *DeviceFriendlyName) GetWholeFriendlyName() (string, error) {
	length, err := d.GetFriendlyNameLength()
	if err != nil {
		return "", err
	}
	return d.assembleName(length.NameLength, d.GetFriendlyName)
}

// GetWholeDefaultFriendlyName assembles the full factory default friendly
// name by calling GetFriendlyNameLength and then repeatedly calling
// GetDefaultFriendlyName.
func (d *DeviceFriendlyName) GetWholeDefaultFriendlyName() (string, error) {
	length, err := d.GetFriendlyNameLength()
	if err != nil {
		return "", err
	}
	return d.assembleName(length.DefaultNameLength, d.GetDefaultFriendlyName)
}

func (d *DeviceFriendlyName) assembleName(count byte, get func(byte) ([15]byte, error)) (string, error) {
	var b strings.Builder
	b.Grow(int(count))

	for b.Len() < int(count) {
		part, err := get(byte(b.Len()))
		if err != nil {
			return "", err
		}
		if !utf8.Valid(part[:]) {
			return "", v20.NewUnsupportedResponseError("friendly name chunk is not valid utf-8")
		}
		b.Write(part[:])
	}
	return strings.TrimRight(b.String()[:count], "\x00"), nil
}

// SetFriendlyName sets a 15-byte chunk of the friendly name starting at
// index. The device truncates the result to its maximum supported length;
// the returned value is the new total length.
func (d *DeviceFriendlyName) SetFriendlyName(index byte, chunk [15]byte) (byte, error) {
	var payload [16]byte
	payload[0] = index
	copy(payload[1:], chunk[:])

	resp, err := v20.SendV20(d.ch, v20.LongMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex:  d.deviceIndex,
			FeatureIndex: d.featureIndex,
			FunctionID:   nibble.FromLo(3),
			SoftwareID:   d.ch.GetSwID(),
		},
		Payload: payload,
	})
	if err != nil {
		return 0, err
	}
	return resp.ExtendPayload()[0], nil
}

// SetWholeFriendlyName sets the entire friendly name in 15-byte chunks.
// The name is not truncated locally: the device truncates it to its
// maximum supported length, and each chunk is written at the length the
// device returned for the previous one. Returns the total length after
// setting it.
func (d *DeviceFriendlyName) SetWholeFriendlyName(name string) (byte, error) {
	b := []byte(name)

	var index byte
	var err error
	for len(b) > 0 {
		var chunk [15]byte
		n := copy(chunk[:], b)
		b = b[n:]

		index, err = d.SetFriendlyName(index, chunk)
		if err != nil {
			return 0, err
		}
	}
	return index, nil
}

// ResetFriendlyName resets the friendly name to the factory default.
// Returns the total length after resetting it.
func (d *DeviceFriendlyName) ResetFriendlyName() (byte, error) {
	resp, err := v20.SendV20(d.ch, v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex:  d.deviceIndex,
			FeatureIndex: d.featureIndex,
			FunctionID:   nibble.FromLo(4),
			SoftwareID:   d.ch.GetSwID(),
		},
	})
	if err != nil {
		return 0, err
	}
	return resp.ExtendPayload()[0], nil
}
