// Package deviceinformation implements the HID++2.0 DeviceInformation
// feature (0x0003): device-level identity, per-entity firmware versions,
// and (from feature version 4) the serial number.
package deviceinformation

import (
	"fmt"
	"unicode/utf8"

	"github.com/relvacode/hidpp/channel"
	"github.com/relvacode/hidpp/feature"
	"github.com/relvacode/hidpp/nibble"
	"github.com/relvacode/hidpp/protocol/v20"
)

// FeatureID is the HID++2.0 feature ID for DeviceInformation.
const FeatureID uint16 = 0x0003

func init() {
	feature.Register(FeatureID, "DeviceInformation", 0, func(ch *channel.Channel, deviceIndex, featureIndex byte) any {
		return New(ch, deviceIndex, featureIndex)
	})
}

// DeviceInformation calls the DeviceInformation feature on a single device.
type DeviceInformation struct {
	ch           *channel.Channel
	deviceIndex  byte
	featureIndex byte
}

// New builds a DeviceInformation bound to deviceIndex at the given runtime
// feature index.
func New(ch *channel.Channel, deviceIndex, featureIndex byte) *DeviceInformation {
	return &DeviceInformation{ch: ch, deviceIndex: deviceIndex, featureIndex: featureIndex}
}

// Transport is the bitfield of transport protocols a device supports,
// reported as part of Info.
type Transport struct {
	USB       bool
	EQuad     bool
	BTLE      bool
	Bluetooth bool
}

func transportFromByte(b byte) Transport {
	return Transport{
		USB:       b&(1<<3) != 0,
		EQuad:     b&(1<<2) != 0,
		BTLE:      b&(1<<1) != 0,
		Bluetooth: b&1 != 0,
	}
}

// Capabilities is the bitfield of additional capabilities this feature
// supports, reported as part of Info.
type Capabilities struct {
	// SerialNumber reports whether GetSerialNumber is supported. Added in
	// feature version 4; always false for older versions.
	SerialNumber bool
}

func capabilitiesFromByte(b byte) Capabilities {
	return Capabilities{SerialNumber: b&1 != 0}
}

// Info is the device-level identity reported by GetDeviceInfo.
type Info struct {
	EntityCount     byte
	UnitID          [4]byte
	Transport       Transport
	ModelID         [3]uint16
	ExtendedModelID byte
	Capabilities    Capabilities
}

// GetDeviceInfo retrieves general information about the device and its
// capabilities.
func (d *DeviceInformation) GetDeviceInfo() (Info, error) {
	req := v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex:  d.deviceIndex,
			FeatureIndex: d.featureIndex,
			FunctionID:   nibble.FromLo(0),
			SoftwareID:   d.ch.GetSwID(),
		},
	}

	resp, err := v20.SendV20(d.ch, req)
	if err != nil {
		return Info{}, err
	}
	payload := resp.ExtendPayload()

	var unitID [4]byte
	copy(unitID[:], payload[1:5])

	return Info{
		EntityCount: payload[0],
		UnitID:      unitID,
		Transport:   transportFromByte(payload[6]),
		ModelID: [3]uint16{
			be16(payload[7], payload[8]),
			be16(payload[9], payload[10]),
			be16(payload[11], payload[12]),
		},
		ExtendedModelID: payload[13],
		Capabilities:    capabilitiesFromByte(payload[14]),
	}, nil
}

// EntityType identifies the kind of firmware entity a
// DeviceEntityFirmwareInfo describes.
type EntityType byte

const (
	MainApplication    EntityType = 0
	Bootloader         EntityType = 1
	Hardware           EntityType = 2
	Touchpad           EntityType = 3
	OpticalSensor      EntityType = 4
	Softdevice         EntityType = 5
	RfCompanionMcu     EntityType = 6
	FactoryApplication EntityType = 7
	RgbCustomEffect    EntityType = 8
	MotorDrive         EntityType = 9
)

var entityTypeNames = map[EntityType]string{
	MainApplication:    "main application",
	Bootloader:         "bootloader",
	Hardware:           "hardware",
	Touchpad:           "touchpad",
	OpticalSensor:      "optical sensor",
	Softdevice:         "softdevice",
	RfCompanionMcu:     "RF companion MCU",
	FactoryApplication: "factory application",
	RgbCustomEffect:    "RGB custom effect",
	MotorDrive:         "motor drive",
}

func (t EntityType) String() string {
	if name, ok := entityTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", byte(t))
}

func parseEntityType(b byte) (EntityType, bool) {
	_, ok := entityTypeNames[EntityType(b)]
	return EntityType(b), ok
}

// FirmwareInfo is the per-entity firmware version information reported by
// GetFwInfo. FirmwareNumber, Revision, and Build are decoded from their
// wire packed-BCD representation.
type FirmwareInfo struct {
	EntityType     EntityType
	FirmwarePrefix string
	FirmwareNumber uint8
	Revision       uint8
	Build          uint16
	Active         bool
	TransportPID   uint16
	ExtraVersion   [5]byte
}

// GetFwInfo retrieves firmware information about the entity at
// entityIndex, which must be less than Info.EntityCount.
func (d *DeviceInformation) GetFwInfo(entityIndex byte) (FirmwareInfo, error) {
	req := v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex:  d.deviceIndex,
			FeatureIndex: d.featureIndex,
			FunctionID:   nibble.FromLo(1),
			SoftwareID:   d.ch.GetSwID(),
		},
		Payload: [3]byte{entityIndex, 0, 0},
	}

	resp, err := v20.SendV20(d.ch, req)
	if err != nil {
		return FirmwareInfo{}, err
	}
	payload := resp.ExtendPayload()

	entityType, ok := parseEntityType(payload[0])
	if !ok {
		return FirmwareInfo{}, v20.NewUnsupportedResponseError(fmt.Sprintf("undocumented entity type %#02x", payload[0]))
	}

	if !utf8.Valid(payload[1:4]) {
		return FirmwareInfo{}, v20.NewUnsupportedResponseError("firmware prefix is not valid utf-8")
	}

	firmwareNumber, err := nibble.DecodePackedU8(payload[4])
	if err != nil {
		return FirmwareInfo{}, v20.NewUnsupportedResponseError(err.Error())
	}
	revision, err := nibble.DecodePackedU8(payload[5])
	if err != nil {
		return FirmwareInfo{}, v20.NewUnsupportedResponseError(err.Error())
	}
	build, err := nibble.DecodePackedU16(be16(payload[6], payload[7]))
	if err != nil {
		return FirmwareInfo{}, v20.NewUnsupportedResponseError(err.Error())
	}

	var extra [5]byte
	copy(extra[:], payload[11:16])

	return FirmwareInfo{
		EntityType:     entityType,
		FirmwarePrefix: string(payload[1:4]),
		FirmwareNumber: firmwareNumber,
		Revision:       revision,
		Build:          build,
		Active:         payload[8]&1 != 0,
		TransportPID:   be16(payload[9], payload[10]),
		ExtraVersion:   extra,
	}, nil
}

// GetSerialNumber retrieves the device's serial number. Added in feature
// version 4; callers should check Info.Capabilities.SerialNumber first, as
// older versions reply with InvalidFunctionId.
func (d *DeviceInformation) GetSerialNumber() (string, error) {
	req := v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex:  d.deviceIndex,
			FeatureIndex: d.featureIndex,
			FunctionID:   nibble.FromLo(2),
			SoftwareID:   d.ch.GetSwID(),
		},
	}

	resp, err := v20.SendV20(d.ch, req)
	if err != nil {
		return "", err
	}
	payload := resp.ExtendPayload()

	if !utf8.Valid(payload[:12]) {
		return "", v20.NewUnsupportedResponseError("serial number is not valid utf-8")
	}
	return string(payload[:12]), nil
}

func be16(hi, lo byte) uint16 { return uint16(hi)<<8 | uint16(lo) }
