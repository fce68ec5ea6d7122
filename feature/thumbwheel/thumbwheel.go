// Package thumbwheel implements the HID++2.0 Thumbwheel feature (0x2150):
// thumbwheel capabilities, reporting mode control, and rotation status
// notifications.
package thumbwheel

import (
	"encoding/binary"
	"sync"

	"github.com/relvacode/hidpp/channel"
	"github.com/relvacode/hidpp/feature"
	"github.com/relvacode/hidpp/nibble"
	"github.com/relvacode/hidpp/protocol/v20"
)

// FeatureID is the HID++2.0 feature ID for Thumbwheel.
const FeatureID uint16 = 0x2150

func init() {
	feature.Register(FeatureID, "Thumbwheel", 0, func(ch *channel.Channel, deviceIndex, featureIndex byte) any {
		return New(ch, deviceIndex, featureIndex)
	})
}

// Direction determines which thumbwheel rotation corresponds to which
// number range (positive or negative) for StatusUpdate.Rotation. The
// direction descriptors are specific to the device orientation.
type Direction byte

const (
	PositiveWhenLeftOrBack   Direction = 0
	PositiveWhenRightOrFront Direction = 1
)

func parseDirection(b byte) (Direction, bool) {
	if b > 1 {
		return 0, false
	}
	return Direction(b), true
}

// ReportingMode controls whether thumbwheel events reach the native HID
// channel or the diverted HID++ channel.
type ReportingMode byte

const (
	// Native reports thumbwheel events only to the native HID channel.
	Native ReportingMode = 0
	// Diverted reports thumbwheel events only to the diverted HID++
	// channel. This mode is required for Listen to report any events.
	Diverted ReportingMode = 1
)

func parseReportingMode(b byte) (ReportingMode, bool) {
	if b > 1 {
		return 0, false
	}
	return ReportingMode(b), true
}

// RotationStatus is the status of the current thumbwheel rotation, as
// reported in StatusUpdate.RotationStatus.
type RotationStatus byte

const (
	Inactive RotationStatus = 0
	Start    RotationStatus = 1
	Active   RotationStatus = 2
	Stop     RotationStatus = 3
)

func parseRotationStatus(b byte) (RotationStatus, bool) {
	if b > 3 {
		return 0, false
	}
	return RotationStatus(b), true
}

// Capabilities describes which optional signals the thumbwheel supports.
type Capabilities struct {
	TimeStamp bool
	Touch     bool
	Proxy     bool
	SingleTap bool
}

func capabilitiesFromByte(b byte) Capabilities {
	return Capabilities{
		TimeStamp: b&1 != 0,
		Touch:     b&(1<<1) != 0,
		Proxy:     b&(1<<2) != 0,
		SingleTap: b&(1<<3) != 0,
	}
}

// Info describes the thumbwheel's resolution and capabilities, as reported
// by GetThumbwheelInfo.
type Info struct {
	NativeResolution   uint16
	DivertedResolution uint16
	// TimeUnit is the timestamp unit in microseconds used for
	// StatusUpdate.TimeElapsed, if Capabilities.TimeStamp is set.
	// Otherwise this is always 0.
	TimeUnit         uint16
	DefaultDirection Direction
	Capabilities     Capabilities
}

// Status describes the thumbwheel's current reporting configuration, as
// reported by GetThumbwheelStatus.
type Status struct {
	ReportingMode     ReportingMode
	DirectionInverted bool
	Touch             bool
	Proxy             bool
}

// StatusUpdate is the data carried by an unsolicited thumbwheel status
// notification. Requires the thumbwheel to be in Diverted reporting mode.
type StatusUpdate struct {
	// Rotation is relative to Info.NativeResolution or
	// Info.DivertedResolution.
	Rotation       int16
	TimeElapsed    uint16
	RotationStatus RotationStatus
	Touch          bool
	Proxy          bool
	SingleTap      bool
}

// Thumbwheel calls the Thumbwheel feature on a single device and
// broadcasts status update notifications to listeners registered via
// Listen.
type Thumbwheel struct {
	ch           *channel.Channel
	deviceIndex  byte
	featureIndex byte

	listenerHandle uint32

	mu        sync.Mutex
	listeners []chan StatusUpdate
}

// New builds a Thumbwheel bound to deviceIndex at the given runtime
// feature index, and registers a channel-wide message listener to catch
// unsolicited status updates. Call Close when done with it.
func New(ch *channel.Channel, deviceIndex, featureIndex byte) *Thumbwheel {
	t := &Thumbwheel{ch: ch, deviceIndex: deviceIndex, featureIndex: featureIndex}
	t.listenerHandle = ch.AddMsgListener(t.onMessage)
	return t
}

func (t *Thumbwheel) onMessage(msg channel.HidppMessage, matched bool) {
	if matched {
		return
	}

	v20msg := v20.FromHidpp(msg)
	hdr := v20msg.Header()
	if hdr.DeviceIndex != t.deviceIndex || hdr.FeatureIndex != t.featureIndex {
		return
	}
	if hdr.SoftwareID.ToLo() != 0 || hdr.FunctionID.ToLo() != 0 {
		return
	}

	payload := v20msg.ExtendPayload()
	rotationStatus, ok := parseRotationStatus(payload[4])
	if !ok {
		return
	}

	update := StatusUpdate{
		Rotation:       int16(binary.BigEndian.Uint16(payload[0:2])),
		TimeElapsed:    binary.BigEndian.Uint16(payload[2:4]),
		RotationStatus: rotationStatus,
		Touch:          payload[5]&(1<<1) != 0,
		Proxy:          payload[5]&(1<<2) != 0,
		SingleTap:      payload[5]&(1<<3) != 0,
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	alive := t.listeners[:0]
	for _, lch := range t.listeners {
		select {
		case lch <- update:
			alive = append(alive, lch)
		default:
			close(lch)
		}
	}
	t.listeners = alive
}

// Listen registers a new listener and returns a channel that receives
// every subsequent status update. The channel is closed if it would
// otherwise block an update, or when Close is called.
func (t *Thumbwheel) Listen() <-chan StatusUpdate {
	lch := make(chan StatusUpdate, 8)
	t.mu.Lock()
	t.listeners = append(t.listeners, lch)
	t.mu.Unlock()
	return lch
}

// Close deregisters the channel-wide message listener and closes every
// outstanding Listen channel.
func (t *Thumbwheel) Close() error {
	t.ch.RemoveMsgListener(t.listenerHandle)

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, lch := range t.listeners {
		close(lch)
	}
	t.listeners = nil
	return nil
}

// GetThumbwheelInfo retrieves information about the thumbwheel.
func (t *Thumbwheel) GetThumbwheelInfo() (Info, error) {
	resp, err := v20.SendV20(t.ch, v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex:  t.deviceIndex,
			FeatureIndex: t.featureIndex,
			FunctionID:   nibble.FromLo(0),
			SoftwareID:   t.ch.GetSwID(),
		},
	})
	if err != nil {
		return Info{}, err
	}
	payload := resp.ExtendPayload()

	direction, ok := parseDirection(payload[4] & 1)
	if !ok {
		return Info{}, v20.NewUnsupportedResponseError("undocumented default thumbwheel direction")
	}

	return Info{
		NativeResolution:   binary.BigEndian.Uint16(payload[0:2]),
		DivertedResolution: binary.BigEndian.Uint16(payload[2:4]),
		TimeUnit:           binary.BigEndian.Uint16(payload[6:8]),
		DefaultDirection:   direction,
		Capabilities:       capabilitiesFromByte(payload[5]),
	}, nil
}

// GetThumbwheelStatus retrieves the current status of the thumbwheel.
func (t *Thumbwheel) GetThumbwheelStatus() (Status, error) {
	resp, err := v20.SendV20(t.ch, v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex:  t.deviceIndex,
			FeatureIndex: t.featureIndex,
			FunctionID:   nibble.FromLo(1),
			SoftwareID:   t.ch.GetSwID(),
		},
	})
	if err != nil {
		return Status{}, err
	}
	payload := resp.ExtendPayload()

	mode, ok := parseReportingMode(payload[0])
	if !ok {
		return Status{}, v20.NewUnsupportedResponseError("undocumented thumbwheel reporting mode")
	}

	return Status{
		ReportingMode:     mode,
		DirectionInverted: payload[1]&1 != 0,
		Touch:             payload[1]&(1<<1) != 0,
		Proxy:             payload[1]&(1<<2) != 0,
	}, nil
}

// SetThumbwheelReporting sets the reporting mode of the thumbwheel. This
// can be used to divert thumbwheel notifications to HID++.
//
// If invertDirection is set, every subsequent StatusUpdate.Rotation is the
// inverse of what Info.DefaultDirection would otherwise indicate.
func (t *Thumbwheel) SetThumbwheelReporting(mode ReportingMode, invertDirection bool) error {
	var invertByte byte
	if invertDirection {
		invertByte = 1
	}

	_, err := v20.SendV20(t.ch, v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex:  t.deviceIndex,
			FeatureIndex: t.featureIndex,
			FunctionID:   nibble.FromLo(2),
			SoftwareID:   t.ch.GetSwID(),
		},
		Payload: [3]byte{byte(mode), invertByte, 0},
	})
	return err
}
