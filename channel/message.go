// Package channel implements the HID++ wire envelope and the channel that
// multiplexes request/response exchanges and unsolicited notifications over
// one underlying raw HID endpoint.
package channel

import "fmt"

// Wire constants shared by both HID++1.0 and HID++2.0: the two report IDs
// HID++ traffic is carried on and the fixed frame lengths that go with them.
const (
	ShortReportID = 0x10
	LongReportID  = 0x11

	ShortReportLength = 7
	LongReportLength  = 20

	// ShortPayloadLength and LongPayloadLength are the frame lengths minus
	// the leading report-ID byte.
	ShortPayloadLength = ShortReportLength - 1
	LongPayloadLength  = LongReportLength - 1

	MaxReportDescriptorLength = 0x1000

	HidppUsagePage   = 0xff00
	ShortReportUsage = 0x0001
	LongReportUsage  = 0x0002
)

// HidppMessage is the tagged envelope every HID++ frame decodes into: either
// a Short or a Long message. The framing layer never interprets the bytes of
// the payload; that is left to the protocol layers (v10, v20).
type HidppMessage interface {
	isHidppMessage()
}

// ShortMessage is the 6-byte payload of a short (7-byte-on-the-wire) frame.
type ShortMessage [ShortPayloadLength]byte

// LongMessage is the 19-byte payload of a long (20-byte-on-the-wire) frame.
type LongMessage [LongPayloadLength]byte

func (ShortMessage) isHidppMessage() {}
func (LongMessage) isHidppMessage()  {}

// DecodeMessage tries to read a HidppMessage from a raw HID input report.
// It returns false if data is too short, carries an unrecognized report ID,
// or has the wrong length for its report ID.
func DecodeMessage(data []byte) (HidppMessage, bool) {
	if len(data) == 0 {
		return nil, false
	}

	switch data[0] {
	case ShortReportID:
		if len(data) != ShortReportLength {
			return nil, false
		}
		var msg ShortMessage
		copy(msg[:], data[1:])
		return msg, true
	case LongReportID:
		if len(data) != LongReportLength {
			return nil, false
		}
		var msg LongMessage
		copy(msg[:], data[1:])
		return msg, true
	default:
		return nil, false
	}
}

// EncodeMessage writes msg into buf as [report_id, payload...] and returns
// the number of bytes written. buf must be at least ShortReportLength or
// LongReportLength long, matching msg's variant.
func EncodeMessage(msg HidppMessage, buf []byte) (int, error) {
	switch m := msg.(type) {
	case ShortMessage:
		if len(buf) < ShortReportLength {
			return 0, fmt.Errorf("channel: buffer too small for short message: %d", len(buf))
		}
		buf[0] = ShortReportID
		copy(buf[1:ShortReportLength], m[:])
		return ShortReportLength, nil
	case LongMessage:
		if len(buf) < LongReportLength {
			return 0, fmt.Errorf("channel: buffer too small for long message: %d", len(buf))
		}
		buf[0] = LongReportID
		copy(buf[1:LongReportLength], m[:])
		return LongReportLength, nil
	default:
		return 0, fmt.Errorf("channel: unknown message variant %T", msg)
	}
}
