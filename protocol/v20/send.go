package v20

import (
	"github.com/relvacode/hidpp/channel"
	"github.com/relvacode/hidpp/nibble"
)

// rawBytes returns the raw wire bytes of a channel message (sans report ID)
// as a slice, regardless of whether it's Short or Long.
func rawBytes(msg channel.HidppMessage) []byte {
	switch m := msg.(type) {
	case channel.ShortMessage:
		return m[:]
	case channel.LongMessage:
		return m[:]
	default:
		panic("v20: unknown channel message variant")
	}
}

// matchErrorReply checks whether raw is the HID++2.0 error frame for a
// request with the given header, as described in §4.5. The error frame is
// [device_index, 0xFF, orig_feature_index, combine(orig_function, orig_sw),
// error_code, ...]: the original header bytes shifted right by one to make
// room for the 0xFF marker. errorCode reports the byte at the error-code
// position when the frame matches.
func matchErrorReply(hdr MessageHeader, raw []byte) (errorCode byte, matched bool) {
	if len(raw) < 5 {
		return 0, false
	}
	if raw[0] != hdr.DeviceIndex || raw[1] != 0xFF {
		return 0, false
	}
	if raw[2] != hdr.FeatureIndex {
		return 0, false
	}
	if raw[3] != nibble.Combine(hdr.FunctionID, hdr.SoftwareID) {
		return 0, false
	}
	return raw[4], true
}

// SendV20 sends a v2.0 message and waits for either its success reply
// (identical header) or the corresponding error reply.
func SendV20(ch *channel.Channel, msg Message) (Message, error) {
	hdr := msg.Header()

	raw, err := ch.Send(ToHidpp(msg), func(resp channel.HidppMessage) bool {
		v20resp := FromHidpp(resp)
		if v20resp.Header() == hdr {
			return true
		}
		_, matched := matchErrorReply(hdr, rawBytes(resp))
		return matched
	})
	if err != nil {
		return nil, err
	}

	if code, matched := matchErrorReply(hdr, rawBytes(raw)); matched {
		errType, perr := ParseErrorType(code)
		if perr != nil {
			return nil, NewUnsupportedResponseError(perr.Error())
		}
		return nil, &FeatureError{Code: errType}
	}

	return FromHidpp(raw), nil
}
