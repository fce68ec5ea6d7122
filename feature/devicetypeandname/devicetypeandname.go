// Package devicetypeandname implements the HID++2.0 DeviceTypeAndName
// feature (0x0005): the device's marketing name (returned as raw
// ASCII/UTF-8 character chunks the caller assembles) and its marketing
// type.
package devicetypeandname

import (
	"github.com/relvacode/hidpp/channel"
	"github.com/relvacode/hidpp/feature"
	"github.com/relvacode/hidpp/nibble"
	"github.com/relvacode/hidpp/protocol/v20"
)

// FeatureID is the HID++2.0 feature ID for DeviceTypeAndName.
const FeatureID uint16 = 0x0005

func init() {
	feature.Register(FeatureID, "DeviceTypeAndName", 0, func(ch *channel.Channel, deviceIndex, featureIndex byte) any {
		return New(ch, deviceIndex, featureIndex)
	})
}

// DeviceTypeAndName calls the DeviceTypeAndName feature on a single device.
type DeviceTypeAndName struct {
	ch           *channel.Channel
	deviceIndex  byte
	featureIndex byte
}

// New builds a DeviceTypeAndName bound to deviceIndex at the given runtime
// feature index.
func New(ch *channel.Channel, deviceIndex, featureIndex byte) *DeviceTypeAndName {
	return &DeviceTypeAndName{ch: ch, deviceIndex: deviceIndex, featureIndex: featureIndex}
}

// GetDeviceNameCount returns the number of characters in the device's
// marketing name.
func (d *DeviceTypeAndName) GetDeviceNameCount() (byte, error) {
	resp, err := v20.SendV20(d.ch, v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex:  d.deviceIndex,
			FeatureIndex: d.featureIndex,
			FunctionID:   nibble.FromLo(0),
			SoftwareID:   d.ch.GetSwID(),
		},
	})
	if err != nil {
		return 0, err
	}
	return resp.ExtendPayload()[0], nil
}

// GetDeviceName returns a chunk of the marketing name starting at index
// (inclusive). Depending on whether the channel speaks short or long
// frames, this returns at most 3 or 16 bytes; use GetWholeDeviceName to
// assemble the full name.
func (d *DeviceTypeAndName) GetDeviceName(index byte) ([]byte, error) {
	resp, err := v20.SendV20(d.ch, v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex:  d.deviceIndex,
			FeatureIndex: d.featureIndex,
			FunctionID:   nibble.FromLo(1),
			SoftwareID:   d.ch.GetSwID(),
		},
		Payload: [3]byte{index, 0, 0},
	})
	if err != nil {
		return nil, err
	}

	switch msg := resp.(type) {
	case v20.LongMessage:
		return append([]byte(nil), msg.Payload[:]...), nil
	case v20.ShortMessage:
		return append([]byte(nil), msg.Payload[:]...), nil
	default:
		return nil, nil
	}
}

// GetWholeDeviceName retrieves the full marketing name by first calling
// GetDeviceNameCount and then repeatedly calling GetDeviceName until all
// characters have been received.
func (d *DeviceTypeAndName) GetWholeDeviceName() (string, error) {
	count, err := d.GetDeviceNameCount()
	if err != nil {
		return "", err
	}

	buf := make([]byte, 0, count)
	for len(buf) < int(count) {
		part, err := d.GetDeviceName(byte(len(buf)))
		if err != nil {
			return "", err
		}
		remaining := int(count) - len(buf)
		if remaining < len(part) {
			part = part[:remaining]
		}
		buf = append(buf, part...)
	}
	return string(buf), nil
}

// Type is the marketing type of a device as reported by GetDeviceType.
// Codes outside the documented range are preserved as Other.
type Type struct {
	code byte
}

var (
	Keyboard               = Type{0}
	RemoteControl          = Type{1}
	Numpad                 = Type{2}
	Mouse                  = Type{3}
	Trackpad               = Type{4}
	Trackball              = Type{5}
	Presenter              = Type{6}
	Receiver               = Type{7}
	Headset                = Type{8}
	Webcam                 = Type{9}
	SteeringWheel          = Type{10}
	Joystick               = Type{11}
	Gamepad                = Type{12}
	Dock                   = Type{13}
	Speaker                = Type{14}
	Microphone             = Type{15}
	IlluminationLight      = Type{16}
	ProgrammableController = Type{17}
	CarSimPedals           = Type{18}
	Adapter                = Type{19}
)

var typeNames = map[byte]string{
	0: "keyboard", 1: "remote control", 2: "numpad", 3: "mouse",
	4: "trackpad", 5: "trackball", 6: "presenter", 7: "receiver",
	8: "headset", 9: "webcam", 10: "steering wheel", 11: "joystick",
	12: "gamepad", 13: "dock", 14: "speaker", 15: "microphone",
	16: "illumination light", 17: "programmable controller",
	18: "car sim pedals", 19: "adapter",
}

// Other wraps an undocumented device type code.
func Other(code byte) Type { return Type{code} }

// Code returns the raw wire value of the device type.
func (t Type) Code() byte { return t.code }

func (t Type) String() string {
	if name, ok := typeNames[t.code]; ok {
		return name
	}
	return "other"
}

func typeFromByte(b byte) Type { return Type{b} }

// GetDeviceType returns the device's marketing type.
func (d *DeviceTypeAndName) GetDeviceType() (Type, error) {
	resp, err := v20.SendV20(d.ch, v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex:  d.deviceIndex,
			FeatureIndex: d.featureIndex,
			FunctionID:   nibble.FromLo(2),
			SoftwareID:   d.ch.GetSwID(),
		},
	})
	if err != nil {
		return Type{}, err
	}
	return typeFromByte(resp.ExtendPayload()[0]), nil
}
