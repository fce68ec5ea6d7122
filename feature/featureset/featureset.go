// Package featureset implements the HID++2.0 FeatureSet feature (0x0001),
// which enumerates every feature a device implements by runtime index.
package featureset

import (
	"github.com/relvacode/hidpp/channel"
	"github.com/relvacode/hidpp/feature"
	"github.com/relvacode/hidpp/nibble"
	"github.com/relvacode/hidpp/protocol/v20"
)

// FeatureID is the HID++2.0 feature ID for FeatureSet.
const FeatureID uint16 = 0x0001

func init() {
	feature.Register(FeatureID, "FeatureSet", 0, func(ch *channel.Channel, deviceIndex, featureIndex byte) any {
		return New(ch, deviceIndex, featureIndex)
	})
}

// FeatureSet calls the FeatureSet feature on a single device.
type FeatureSet struct {
	ch           *channel.Channel
	deviceIndex  byte
	featureIndex byte
}

// New builds a FeatureSet bound to deviceIndex at the given runtime
// feature index.
func New(ch *channel.Channel, deviceIndex, featureIndex byte) *FeatureSet {
	return &FeatureSet{ch: ch, deviceIndex: deviceIndex, featureIndex: featureIndex}
}

// Count returns the number of features (excluding Root) this device
// implements; valid runtime indices for GetFeature are 1..=Count().
func (f *FeatureSet) Count() (byte, error) {
	req := v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex:  f.deviceIndex,
			FeatureIndex: f.featureIndex,
			FunctionID:   nibble.FromLo(0),
			SoftwareID:   f.ch.GetSwID(),
		},
	}

	resp, err := v20.SendV20(f.ch, req)
	if err != nil {
		return 0, err
	}
	return resp.ExtendPayload()[0], nil
}

// Entry describes one feature slot in a device's runtime feature table, as
// returned by GetFeature: the globally assigned feature ID, its type
// flags, and the version of it this device implements.
type Entry struct {
	ID      uint16
	Type    feature.Type
	Version byte
}

// GetFeature returns the feature ID, type flags, and version implemented
// at runtime index i.
func (f *FeatureSet) GetFeature(i byte) (Entry, error) {
	req := v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex:  f.deviceIndex,
			FeatureIndex: f.featureIndex,
			FunctionID:   nibble.FromLo(1),
			SoftwareID:   f.ch.GetSwID(),
		},
		Payload: [3]byte{i, 0, 0},
	}

	resp, err := v20.SendV20(f.ch, req)
	if err != nil {
		return Entry{}, err
	}

	payload := resp.ExtendPayload()
	return Entry{
		ID:      uint16(payload[0])<<8 | uint16(payload[1]),
		Type:    feature.TypeFromByte(payload[2]),
		Version: payload[3],
	}, nil
}
