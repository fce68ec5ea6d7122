package v10

import "github.com/relvacode/hidpp/channel"

// isRapResponse recognizes either a success reply to msgType/address or the
// HID++1.0 error-reply shape that reports a failure for that same
// msgType/address, as described in §4.4.
func isRapResponse(device byte, msgType MessageType, address byte, msg channel.HidppMessage) bool {
	v10msg := FromHidpp(msg)
	hdr := v10msg.Header()
	if hdr.DeviceIndex != device {
		return false
	}

	payload := v10msg.ExtendPayload()

	if hdr.SubID == byte(msgType) && payload[0] == address {
		return true
	}
	if hdr.SubID == byte(ErrorReply) && payload[0] == byte(msgType) && payload[1] == address {
		return true
	}
	return false
}

// ReadRegister reads a short 3-byte register using HID++1.0/RAP.
func ReadRegister(ch *channel.Channel, device, address byte, params [3]byte) ([3]byte, error) {
	var out [3]byte

	var data [4]byte
	data[0] = address
	copy(data[1:], params[:])

	raw, err := ch.Send(ToHidpp(ShortMessage{
		Hdr:     MessageHeader{DeviceIndex: device, SubID: byte(GetRegister)},
		Payload: data,
	}), func(resp channel.HidppMessage) bool {
		return isRapResponse(device, GetRegister, address, resp)
	})
	if err != nil {
		return out, err
	}

	resp := FromHidpp(raw)
	payload := resp.ExtendPayload()

	if resp.Header().SubID == byte(ErrorReply) {
		code, perr := ParseErrorType(payload[2])
		if perr != nil {
			return out, &UnsupportedResponseError{reason: perr.Error()}
		}
		return out, &RegisterAccessError{Code: code}
	}

	copy(out[:], payload[1:4])
	return out, nil
}

// WriteRegister writes a short 3-byte register using HID++1.0/RAP.
func WriteRegister(ch *channel.Channel, device, address byte, payload [3]byte) error {
	var data [4]byte
	data[0] = address
	copy(data[1:], payload[:])

	raw, err := ch.Send(ToHidpp(ShortMessage{
		Hdr:     MessageHeader{DeviceIndex: device, SubID: byte(SetRegister)},
		Payload: data,
	}), func(resp channel.HidppMessage) bool {
		return isRapResponse(device, SetRegister, address, resp)
	})
	if err != nil {
		return err
	}

	resp := FromHidpp(raw)
	if resp.Header().SubID == byte(ErrorReply) {
		code, perr := ParseErrorType(resp.ExtendPayload()[2])
		if perr != nil {
			return &UnsupportedResponseError{reason: perr.Error()}
		}
		return &RegisterAccessError{Code: code}
	}
	return nil
}

// ReadLongRegister reads a long 16-byte register using HID++1.0/RAP. The
// request is a short frame; the response is long.
func ReadLongRegister(ch *channel.Channel, device, address byte, params [3]byte) ([16]byte, error) {
	var out [16]byte

	var data [4]byte
	data[0] = address
	copy(data[1:], params[:])

	raw, err := ch.Send(ToHidpp(ShortMessage{
		Hdr:     MessageHeader{DeviceIndex: device, SubID: byte(GetLongRegister)},
		Payload: data,
	}), func(resp channel.HidppMessage) bool {
		return isRapResponse(device, GetLongRegister, address, resp)
	})
	if err != nil {
		return out, err
	}

	resp := FromHidpp(raw)
	payload := resp.ExtendPayload()

	if resp.Header().SubID == byte(ErrorReply) {
		code, perr := ParseErrorType(payload[2])
		if perr != nil {
			return out, &UnsupportedResponseError{reason: perr.Error()}
		}
		return out, &RegisterAccessError{Code: code}
	}

	copy(out[:], payload[1:17])
	return out, nil
}

// WriteLongRegister writes a long 16-byte register using HID++1.0/RAP.
func WriteLongRegister(ch *channel.Channel, device, address byte, payload [16]byte) error {
	var data [17]byte
	data[0] = address
	copy(data[1:], payload[:])

	raw, err := ch.Send(ToHidpp(LongMessage{
		Hdr:     MessageHeader{DeviceIndex: device, SubID: byte(SetLongRegister)},
		Payload: data,
	}), func(resp channel.HidppMessage) bool {
		return isRapResponse(device, SetLongRegister, address, resp)
	})
	if err != nil {
		return err
	}

	resp := FromHidpp(raw)
	if resp.Header().SubID == byte(ErrorReply) {
		code, perr := ParseErrorType(resp.ExtendPayload()[2])
		if perr != nil {
			return &UnsupportedResponseError{reason: perr.Error()}
		}
		return &RegisterAccessError{Code: code}
	}
	return nil
}
