// Package hireswheel implements the HID++2.0 HiResWheel feature (0x2121):
// high-resolution scroll wheel capabilities, mode control, and wheel
// movement / ratchet switch notifications.
//
// The analytics portion of this feature is not implemented; its payload
// layout is undocumented.
package hireswheel

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/relvacode/hidpp/channel"
	"github.com/relvacode/hidpp/feature"
	"github.com/relvacode/hidpp/nibble"
	"github.com/relvacode/hidpp/protocol/v20"
)

// FeatureID is the HID++2.0 feature ID for HiResWheel.
const FeatureID uint16 = 0x2121

func init() {
	feature.Register(FeatureID, "HiResWheel", 0, func(ch *channel.Channel, deviceIndex, featureIndex byte) any {
		return New(ch, deviceIndex, featureIndex)
	})
}

// Resolution is the reporting resolution of the wheel.
type Resolution byte

const (
	Low  Resolution = 0
	High Resolution = 1
)

func (r Resolution) String() string {
	if r == High {
		return "high"
	}
	return "low"
}

func parseResolution(b byte) (Resolution, bool) {
	if b > 1 {
		return 0, false
	}
	return Resolution(b), true
}

// EventTarget is the destination of wheel movement reports.
type EventTarget byte

const (
	Native   EventTarget = 0
	Diverted EventTarget = 1
)

func (t EventTarget) String() string {
	if t == Diverted {
		return "diverted"
	}
	return "native"
}

func parseEventTarget(b byte) (EventTarget, bool) {
	if b > 1 {
		return 0, false
	}
	return EventTarget(b), true
}

// RatchetState is the mechanical engagement state of the wheel ratchet.
type RatchetState byte

const (
	Freespin RatchetState = 0
	Ratchet  RatchetState = 1
)

func (s RatchetState) String() string {
	if s == Ratchet {
		return "ratchet"
	}
	return "freespin"
}

func parseRatchetState(b byte) (RatchetState, bool) {
	if b > 1 {
		return 0, false
	}
	return RatchetState(b), true
}

// Capabilities describes what the hi-res wheel and this feature support, as
// reported by GetWheelCapabilities.
type Capabilities struct {
	Multiplier         byte
	HasInvert          bool
	HasSwitch          bool
	RatchesPerRotation byte
	WheelDiameter      byte
}

// Mode is the current wheel configuration, as reported by GetWheelMode and
// SetWheelMode.
type Mode struct {
	Inverted   bool
	Resolution Resolution
	Target     EventTarget
}

func modeFromByte(b byte) (Mode, error) {
	resolution, ok := parseResolution((b & (1 << 1)) >> 1)
	if !ok {
		return Mode{}, v20.NewUnsupportedResponseError(fmt.Sprintf("undocumented wheel resolution in mode byte %#02x", b))
	}
	target, ok := parseEventTarget(b & 1)
	if !ok {
		return Mode{}, v20.NewUnsupportedResponseError(fmt.Sprintf("undocumented wheel event target in mode byte %#02x", b))
	}
	return Mode{
		Inverted:   b&(1<<2) != 0,
		Resolution: resolution,
		Target:     target,
	}, nil
}

// Movement is the data carried by a WheelMovement event.
type Movement struct {
	Resolution    Resolution
	Periods       nibble.U4
	DeltaVertical int16
}

// Event is a notification emitted unsolicited by the hi-res wheel: either a
// Movement or a RatchetState change.
type Event interface {
	isEvent()
}

// WheelMovement is emitted whenever the scroll wheel is moved in diverted
// HID++ mode.
type WheelMovement struct {
	Movement
}

// RatchetSwitch is emitted whenever the wheel ratchet mode changes. This
// event is always enabled regardless of mode.
type RatchetSwitch struct {
	State RatchetState
}

func (WheelMovement) isEvent() {}
func (RatchetSwitch) isEvent() {}

// HiResWheel calls the HiResWheel feature on a single device and
// broadcasts movement and ratchet-switch notifications to listeners
// registered via Listen.
type HiResWheel struct {
	ch           *channel.Channel
	deviceIndex  byte
	featureIndex byte

	listenerHandle uint32

	mu        sync.Mutex
	listeners []chan Event
}

// New builds a HiResWheel bound to deviceIndex at the given runtime
// feature index, and registers a channel-wide message listener to catch
// unsolicited wheel events. Call Close when done with it.
func New(ch *channel.Channel, deviceIndex, featureIndex byte) *HiResWheel {
	h := &HiResWheel{ch: ch, deviceIndex: deviceIndex, featureIndex: featureIndex}
	h.listenerHandle = ch.AddMsgListener(h.onMessage)
	return h
}

func (h *HiResWheel) onMessage(msg channel.HidppMessage, matched bool) {
	if matched {
		return
	}

	v20msg := v20.FromHidpp(msg)
	hdr := v20msg.Header()
	if hdr.DeviceIndex != h.deviceIndex || hdr.FeatureIndex != h.featureIndex || hdr.SoftwareID.ToLo() != 0 {
		return
	}

	payload := v20msg.ExtendPayload()

	var event Event
	switch hdr.FunctionID.ToLo() {
	case 0:
		resolution, ok := parseResolution((payload[0] & (1 << 4)) >> 4)
		if !ok {
			return
		}
		event = WheelMovement{Movement{
			Resolution:    resolution,
			Periods:       nibble.FromLo(payload[0]),
			DeltaVertical: int16(binary.BigEndian.Uint16(payload[1:3])),
		}}
	case 1:
		state, ok := parseRatchetState(payload[0] & 1)
		if !ok {
			return
		}
		event = RatchetSwitch{State: state}
	default:
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	alive := h.listeners[:0]
	for _, lch := range h.listeners {
		select {
		case lch <- event:
			alive = append(alive, lch)
		default:
			close(lch)
		}
	}
	h.listeners = alive
}

// Listen registers a new listener and returns a channel that receives
// every subsequent wheel event. The channel is closed if it would
// otherwise block an event, or when Close is called.
func (h *HiResWheel) Listen() <-chan Event {
	lch := make(chan Event, 8)
	h.mu.Lock()
	h.listeners = append(h.listeners, lch)
	h.mu.Unlock()
	return lch
}

// Close deregisters the channel-wide message listener and closes every
// outstanding Listen channel.
func (h *HiResWheel) Close() error {
	h.ch.RemoveMsgListener(h.listenerHandle)

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, lch := range h.listeners {
		close(lch)
	}
	h.listeners = nil
	return nil
}

// GetWheelCapabilities retrieves the capabilities of the hi-res wheel and
// this feature.
func (h *HiResWheel) GetWheelCapabilities() (Capabilities, error) {
	resp, err := v20.SendV20(h.ch, v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex:  h.deviceIndex,
			FeatureIndex: h.featureIndex,
			FunctionID:   nibble.FromLo(0),
			SoftwareID:   h.ch.GetSwID(),
		},
	})
	if err != nil {
		return Capabilities{}, err
	}
	payload := resp.ExtendPayload()
	return Capabilities{
		Multiplier:         payload[0],
		HasInvert:          payload[1]&(1<<3) != 0,
		HasSwitch:          payload[1]&(1<<2) != 0,
		RatchesPerRotation: payload[2],
		WheelDiameter:      payload[3],
	}, nil
}

// GetWheelMode retrieves the current mode of the hi-res wheel.
func (h *HiResWheel) GetWheelMode() (Mode, error) {
	resp, err := v20.SendV20(h.ch, v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex:  h.deviceIndex,
			FeatureIndex: h.featureIndex,
			FunctionID:   nibble.FromLo(1),
			SoftwareID:   h.ch.GetSwID(),
		},
	})
	if err != nil {
		return Mode{}, err
	}
	return modeFromByte(resp.ExtendPayload()[0])
}

// SetWheelMode sets the mode of the hi-res wheel.
//
// Setting the bit to control analytics collection is not supported, as the
// analytics data structure is completely undocumented.
func (h *HiResWheel) SetWheelMode(target EventTarget, resolution Resolution, inverted bool) (Mode, error) {
	var modeByte byte
	if inverted {
		modeByte |= 1 << 2
	}
	modeByte |= byte(resolution) << 1
	modeByte |= byte(target)

	resp, err := v20.SendV20(h.ch, v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex:  h.deviceIndex,
			FeatureIndex: h.featureIndex,
			FunctionID:   nibble.FromLo(2),
			SoftwareID:   h.ch.GetSwID(),
		},
		Payload: [3]byte{modeByte, 0, 0},
	})
	if err != nil {
		return Mode{}, err
	}
	return modeFromByte(resp.ExtendPayload()[0])
}

// GetRatchetSwitchState retrieves the current state of the ratchet switch.
func (h *HiResWheel) GetRatchetSwitchState() (RatchetState, error) {
	resp, err := v20.SendV20(h.ch, v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex:  h.deviceIndex,
			FeatureIndex: h.featureIndex,
			FunctionID:   nibble.FromLo(3),
			SoftwareID:   h.ch.GetSwID(),
		},
	})
	if err != nil {
		return 0, err
	}
	state, ok := parseRatchetState(resp.ExtendPayload()[0] & 1)
	if !ok {
		return 0, v20.NewUnsupportedResponseError("undocumented ratchet switch state")
	}
	return state, nil
}
