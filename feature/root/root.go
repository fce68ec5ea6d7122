// Package root implements the HID++2.0 Root feature (0x0000), always
// present at feature index 0 on every HID++2.0 device. It is the entry
// point for looking up the runtime index of every other feature.
package root

import (
	"github.com/relvacode/hidpp/channel"
	"github.com/relvacode/hidpp/feature"
	"github.com/relvacode/hidpp/nibble"
	"github.com/relvacode/hidpp/protocol/v20"
)

// FeatureID is the HID++2.0 feature ID for Root.
const FeatureID uint16 = 0x0000

// Root calls the Root feature on a single device. It is always installed
// at feature index 0, so it is constructed directly by device.New rather
// than discovered through feature.LookupVersion.
type Root struct {
	ch           *channel.Channel
	deviceIndex  byte
	featureIndex byte
}

// New builds a Root bound to deviceIndex. Root is always feature index 0.
func New(ch *channel.Channel, deviceIndex byte) *Root {
	return &Root{ch: ch, deviceIndex: deviceIndex, featureIndex: 0}
}

// GetFeature looks up the runtime feature index and metadata for
// featureID. If the returned index is 0, the device does not implement
// the feature.
func (r *Root) GetFeature(featureID uint16) (feature.Information, error) {
	req := v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex:  r.deviceIndex,
			FeatureIndex: r.featureIndex,
			FunctionID:   nibble.FromLo(0),
			SoftwareID:   r.ch.GetSwID(),
		},
		Payload: [3]byte{byte(featureID >> 8), byte(featureID), 0},
	}

	resp, err := v20.SendV20(r.ch, req)
	if err != nil {
		return feature.Information{}, err
	}

	payload := resp.ExtendPayload()
	return feature.Information{
		Index:   payload[0],
		Type:    feature.TypeFromByte(payload[1]),
		Version: payload[2],
	}, nil
}

// Ping sends function_id=1 carrying a caller-chosen byte and returns the
// device's echo of that byte. The version probe run by device.New
// (v20.DetermineVersion) builds its own ping request and does not call
// this method.
func (r *Root) Ping(b byte) (byte, error) {
	req := v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex:  r.deviceIndex,
			FeatureIndex: r.featureIndex,
			FunctionID:   nibble.FromLo(1),
			SoftwareID:   r.ch.GetSwID(),
		},
		Payload: [3]byte{0, 0, b},
	}

	resp, err := v20.SendV20(r.ch, req)
	if err != nil {
		return 0, err
	}
	return resp.ExtendPayload()[2], nil
}
