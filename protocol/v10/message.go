// Package v10 implements the HID++1.0 (RAP, register-access) protocol
// layer: typed message headers, sub-ID and error-code enums, and the
// short/long register read/write helpers built on top of a channel.Channel.
package v10

import "github.com/relvacode/hidpp/channel"

// MessageHeader is the header every HID++1.0 message starts with.
type MessageHeader struct {
	DeviceIndex byte
	SubID       byte
}

// Message is a HID++1.0 message: either Short (4 bytes of payload beyond
// the header) or Long (17 bytes).
type Message interface {
	Header() MessageHeader
	// ExtendPayload returns the payload zero-padded to the long length,
	// so callers can index into it uniformly regardless of frame size.
	ExtendPayload() [17]byte
}

type ShortMessage struct {
	Hdr     MessageHeader
	Payload [4]byte
}

type LongMessage struct {
	Hdr     MessageHeader
	Payload [17]byte
}

func (m ShortMessage) Header() MessageHeader { return m.Hdr }
func (m LongMessage) Header() MessageHeader  { return m.Hdr }

func (m ShortMessage) ExtendPayload() [17]byte {
	var out [17]byte
	copy(out[:], m.Payload[:])
	return out
}

func (m LongMessage) ExtendPayload() [17]byte { return m.Payload }

// FromHidpp converts the generic channel envelope into a typed v1.0
// message by splitting off the (device_index, sub_id) header.
func FromHidpp(msg channel.HidppMessage) Message {
	switch m := msg.(type) {
	case channel.ShortMessage:
		return ShortMessage{
			Hdr:     MessageHeader{DeviceIndex: m[0], SubID: m[1]},
			Payload: [4]byte(m[2:]),
		}
	case channel.LongMessage:
		return LongMessage{
			Hdr:     MessageHeader{DeviceIndex: m[0], SubID: m[1]},
			Payload: [17]byte(m[2:]),
		}
	default:
		panic("v10: unknown channel message variant")
	}
}

// ToHidpp converts a typed v1.0 message back into the generic channel
// envelope ready to be written to the wire.
func ToHidpp(msg Message) channel.HidppMessage {
	switch m := msg.(type) {
	case ShortMessage:
		var raw channel.ShortMessage
		raw[0], raw[1] = m.Hdr.DeviceIndex, m.Hdr.SubID
		copy(raw[2:], m.Payload[:])
		return raw
	case LongMessage:
		var raw channel.LongMessage
		raw[0], raw[1] = m.Hdr.DeviceIndex, m.Hdr.SubID
		copy(raw[2:], m.Payload[:])
		return raw
	default:
		panic("v10: unknown v10 message variant")
	}
}
