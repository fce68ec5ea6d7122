package v20

import (
	"github.com/relvacode/hidpp/channel"
	"github.com/relvacode/hidpp/nibble"
	"github.com/relvacode/hidpp/protocol/v10"
)

// ProtocolVersion is the result of probing a device index: either the
// device speaks HID++1.0 only, or it speaks HID++2.0 and reports its
// protocol number and target software identifier.
type ProtocolVersion interface {
	isProtocolVersion()
}

// ProtocolV10 indicates the device only responds to HID++1.0 framing.
type ProtocolV10 struct{}

// ProtocolV20 carries the protocol number and target software ID reported
// by a HID++2.0 device's root ping.
type ProtocolV20 struct {
	ProtocolNum byte
	TargetSW    byte
}

func (ProtocolV10) isProtocolVersion() {}
func (ProtocolV20) isProtocolVersion() {}

// versionProbeSoftwareID is the default low-nibble software ID used to tag
// the version probe request.
var versionProbeSoftwareID = nibble.FromLo(1)

// DetermineVersion probes a device index to determine which HID++
// generation it speaks, as described in §4.6. The probe is a v2.0 Short
// message to feature_index=0x00, function_id=0x01. A genuine HID++1.0
// device cannot have a legal sub-ID of 0x00, so it replies with
// InvalidSubId; this is the canonical fingerprint that distinguishes it
// from a HID++2.0 device, which answers the ping directly.
//
// The second return value reports whether a device answered at all: false
// means no reply was observed (not present) or the device replied with a
// v1.0 error other than InvalidSubId (index does not resolve to a usable
// device); in both cases version is nil and err is nil.
func DetermineVersion(ch *channel.Channel, deviceIndex byte) (ProtocolVersion, bool, error) {
	reqHdr := MessageHeader{
		DeviceIndex:  deviceIndex,
		FeatureIndex: 0x00,
		FunctionID:   nibble.FromLo(1),
		SoftwareID:   versionProbeSoftwareID,
	}
	req := ShortMessage{Hdr: reqHdr, Payload: [3]byte{0, 0, 0}}

	raw, err := ch.Send(ToHidpp(req), func(resp channel.HidppMessage) bool {
		b := rawBytes(resp)
		if len(b) < 4 {
			return false
		}
		if b[0] != deviceIndex {
			return false
		}
		// v2.0 success: header matches exactly.
		if FromHidpp(resp).Header() == reqHdr {
			return true
		}
		// v1.0 error shape: sub_id=0x8F, payload[0]=0x00 (orig feature_index
		// as sub_id), payload[1]=combine(orig function_id, orig software_id).
		return b[1] == 0x8F && b[2] == 0x00 && b[3] == nibble.Combine(reqHdr.FunctionID, reqHdr.SoftwareID)
	})
	if err != nil {
		if _, ok := err.(*channel.NoResponseError); ok {
			return nil, false, nil
		}
		return nil, false, err
	}

	b := rawBytes(raw)
	if FromHidpp(raw).Header() == reqHdr {
		return ProtocolV20{ProtocolNum: b[3], TargetSW: b[4]}, true, nil
	}

	// v1.0 error reply.
	code, perr := v10.ParseErrorType(b[4])
	if perr != nil {
		return nil, false, nil
	}
	if code == v10.InvalidSubId {
		return ProtocolV10{}, true, nil
	}
	return nil, false, nil
}
