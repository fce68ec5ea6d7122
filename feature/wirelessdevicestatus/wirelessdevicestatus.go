// Package wirelessdevicestatus implements the HID++2.0
// WirelessDeviceStatus feature (0x1D4B), which notifies the host about
// device reconnections. It has no retrievable state: the entire feature
// surface is the unsolicited status broadcast.
package wirelessdevicestatus

import (
	"sync"

	"github.com/relvacode/hidpp/channel"
	"github.com/relvacode/hidpp/feature"
	"github.com/relvacode/hidpp/protocol/v20"
)

// FeatureID is the HID++2.0 feature ID for WirelessDeviceStatus.
const FeatureID uint16 = 0x1D4B

func init() {
	feature.Register(FeatureID, "WirelessDeviceStatus", 0, func(ch *channel.Channel, deviceIndex, featureIndex byte) any {
		return New(ch, deviceIndex, featureIndex)
	})
}

// Status is the device status reported in a Broadcast.
type Status byte

const (
	Unknown      Status = 0x00
	Reconnection Status = 0x01
)

func parseStatus(b byte) (Status, bool) {
	switch Status(b) {
	case Unknown, Reconnection:
		return Status(b), true
	default:
		return 0, false
	}
}

// Request is what the device asks of the host, reported in a Broadcast.
type Request byte

const (
	NoRequest                     Request = 0x00
	SoftwareReconfigurationNeeded Request = 0x01
)

func parseRequest(b byte) (Request, bool) {
	switch Request(b) {
	case NoRequest, SoftwareReconfigurationNeeded:
		return Request(b), true
	default:
		return 0, false
	}
}

// Reason is why the device sent a Broadcast.
type Reason byte

const (
	ReasonUnknown        Reason = 0x00
	PowerSwitchActivated Reason = 0x01
)

func parseReason(b byte) (Reason, bool) {
	switch Reason(b) {
	case ReasonUnknown, PowerSwitchActivated:
		return Reason(b), true
	default:
		return 0, false
	}
}

// Broadcast is sent whenever a device (re)connects to the host. This event
// is always enabled.
type Broadcast struct {
	Status  Status
	Request Request
	Reason  Reason
}

// WirelessDeviceStatus broadcasts reconnection notifications to listeners
// registered via Listen.
type WirelessDeviceStatus struct {
	ch           *channel.Channel
	deviceIndex  byte
	featureIndex byte

	listenerHandle uint32

	mu        sync.Mutex
	listeners []chan Broadcast
}

// New builds a WirelessDeviceStatus bound to deviceIndex at the given
// runtime feature index, and registers a channel-wide message listener to
// catch unsolicited status broadcasts. Call Close when done with it.
func New(ch *channel.Channel, deviceIndex, featureIndex byte) *WirelessDeviceStatus {
	w := &WirelessDeviceStatus{ch: ch, deviceIndex: deviceIndex, featureIndex: featureIndex}
	w.listenerHandle = ch.AddMsgListener(w.onMessage)
	return w
}

func (w *WirelessDeviceStatus) onMessage(msg channel.HidppMessage, matched bool) {
	if matched {
		return
	}

	v20msg := v20.FromHidpp(msg)
	hdr := v20msg.Header()
	if hdr.DeviceIndex != w.deviceIndex || hdr.FeatureIndex != w.featureIndex {
		return
	}
	if hdr.SoftwareID.ToLo() != 0 || hdr.FunctionID.ToLo() != 0 {
		return
	}

	payload := v20msg.ExtendPayload()
	status, ok := parseStatus(payload[0])
	if !ok {
		return
	}
	request, ok := parseRequest(payload[1])
	if !ok {
		return
	}
	reason, ok := parseReason(payload[2])
	if !ok {
		return
	}

	broadcast := Broadcast{Status: status, Request: request, Reason: reason}

	w.mu.Lock()
	defer w.mu.Unlock()
	alive := w.listeners[:0]
	for _, lch := range w.listeners {
		select {
		case lch <- broadcast:
			alive = append(alive, lch)
		default:
			close(lch)
		}
	}
	w.listeners = alive
}

// Listen registers a new listener and returns a channel that receives
// every subsequent status broadcast. The channel is closed if it would
// otherwise block a broadcast, or when Close is called.
func (w *WirelessDeviceStatus) Listen() <-chan Broadcast {
	lch := make(chan Broadcast, 4)
	w.mu.Lock()
	w.listeners = append(w.listeners, lch)
	w.mu.Unlock()
	return lch
}

// Close deregisters the channel-wide message listener and closes every
// outstanding Listen channel.
func (w *WirelessDeviceStatus) Close() error {
	w.ch.RemoveMsgListener(w.listenerHandle)

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, lch := range w.listeners {
		close(lch)
	}
	w.listeners = nil
	return nil
}
