// Package v20 implements the HID++2.0 (feature-indexed) protocol layer:
// typed headers, feature-error detection, and the send-and-match-reply
// helper built on top of a channel.Channel.
package v20

import (
	"github.com/relvacode/hidpp/channel"
	"github.com/relvacode/hidpp/nibble"
)

// MessageHeader is the header every HID++2.0 message starts with.
type MessageHeader struct {
	DeviceIndex  byte
	FeatureIndex byte
	FunctionID   nibble.U4
	SoftwareID   nibble.U4
}

// Message is a HID++2.0 message: either Short (3 bytes of payload beyond
// the header) or Long (16 bytes).
type Message interface {
	Header() MessageHeader
	// ExtendPayload returns the payload zero-padded to the long length.
	ExtendPayload() [16]byte
}

type ShortMessage struct {
	Hdr     MessageHeader
	Payload [3]byte
}

type LongMessage struct {
	Hdr     MessageHeader
	Payload [16]byte
}

func (m ShortMessage) Header() MessageHeader { return m.Hdr }
func (m LongMessage) Header() MessageHeader  { return m.Hdr }

func (m ShortMessage) ExtendPayload() [16]byte {
	var out [16]byte
	copy(out[:], m.Payload[:])
	return out
}

func (m LongMessage) ExtendPayload() [16]byte { return m.Payload }

// FromHidpp converts the generic channel envelope into a typed v2.0
// message by splitting off the (device_index, feature_index,
// function_id|software_id) header.
func FromHidpp(msg channel.HidppMessage) Message {
	switch m := msg.(type) {
	case channel.ShortMessage:
		return ShortMessage{
			Hdr: MessageHeader{
				DeviceIndex:  m[0],
				FeatureIndex: m[1],
				FunctionID:   nibble.FromHi(m[2]),
				SoftwareID:   nibble.FromLo(m[2]),
			},
			Payload: [3]byte(m[3:]),
		}
	case channel.LongMessage:
		return LongMessage{
			Hdr: MessageHeader{
				DeviceIndex:  m[0],
				FeatureIndex: m[1],
				FunctionID:   nibble.FromHi(m[2]),
				SoftwareID:   nibble.FromLo(m[2]),
			},
			Payload: [16]byte(m[3:]),
		}
	default:
		panic("v20: unknown channel message variant")
	}
}

// ToHidpp converts a typed v2.0 message back into the generic channel
// envelope ready to be written to the wire.
func ToHidpp(msg Message) channel.HidppMessage {
	switch m := msg.(type) {
	case ShortMessage:
		var raw channel.ShortMessage
		raw[0], raw[1] = m.Hdr.DeviceIndex, m.Hdr.FeatureIndex
		raw[2] = nibble.Combine(m.Hdr.FunctionID, m.Hdr.SoftwareID)
		copy(raw[3:], m.Payload[:])
		return raw
	case LongMessage:
		var raw channel.LongMessage
		raw[0], raw[1] = m.Hdr.DeviceIndex, m.Hdr.FeatureIndex
		raw[2] = nibble.Combine(m.Hdr.FunctionID, m.Hdr.SoftwareID)
		copy(raw[3:], m.Payload[:])
		return raw
	default:
		panic("v20: unknown v20 message variant")
	}
}
