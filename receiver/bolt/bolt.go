// Package bolt implements the Logitech Bolt wireless receiver: a
// HID++1.0/RAP device that manages pairings with up to six BLE
// peripherals and reports connection, discovery, and pairing events as
// unsolicited notifications.
//
// There is little public documentation of the registers Bolt supports;
// this implementation follows what other open-source tools (notably
// Solaar) and register fuzzing have established.
package bolt

import (
	"fmt"
	"strings"
	"sync"

	"github.com/relvacode/hidpp/channel"
	"github.com/relvacode/hidpp/protocol/v10"
)

// receiverDeviceIndex is the fixed device index used to address the
// receiver itself, as opposed to one of its paired devices.
const receiverDeviceIndex byte = 0xFF

// VIDPIDPairs lists every known USB vendor/product ID pair identifying a
// Bolt receiver.
var VIDPIDPairs = [][2]uint16{
	{0x046D, 0xC548},
}

func isKnownReceiver(vendorID, productID uint16) bool {
	for _, pair := range VIDPIDPairs {
		if pair[0] == vendorID && pair[1] == productID {
			return true
		}
	}
	return false
}

// ErrUnknownReceiver is returned by New when the channel's vendor/product
// IDs don't match any known Bolt receiver.
var ErrUnknownReceiver = fmt.Errorf("bolt: channel does not address a known Bolt receiver")

// Register enumerates the known HID++1.0 registers exposed by a Bolt
// receiver.
type Register byte

const (
	RegisterConnections  Register = 0x02
	RegisterReceiverInfo Register = 0xB5
	RegisterUniqueID     Register = 0xFB
	RegisterDiscovery    Register = 0xC0
	RegisterPairing      Register = 0xC1
)

// InfoSubRegister enumerates the known sub-registers of RegisterReceiverInfo,
// each offset by the low nibble of a paired device's index (1..15).
type InfoSubRegister byte

const (
	SubRegisterDevicePairingInformation InfoSubRegister = 0x50
	SubRegisterDeviceCodename           InfoSubRegister = 0x60
)

// DeviceKind enumerates the kind of peripheral paired with a Bolt receiver.
type DeviceKind byte

const (
	KindUnknown   DeviceKind = 0x00
	KindKeyboard  DeviceKind = 0x01
	KindMouse     DeviceKind = 0x02
	KindNumpad    DeviceKind = 0x03
	KindPresenter DeviceKind = 0x04
	KindRemote    DeviceKind = 0x07
	KindTrackball DeviceKind = 0x08
	KindTouchpad  DeviceKind = 0x09
	KindTablet    DeviceKind = 0x0A
	KindGamepad   DeviceKind = 0x0B
	KindJoystick  DeviceKind = 0x0C
	KindHeadset   DeviceKind = 0x0D
)

var deviceKindNames = map[DeviceKind]string{
	KindUnknown:   "unknown",
	KindKeyboard:  "keyboard",
	KindMouse:     "mouse",
	KindNumpad:    "numpad",
	KindPresenter: "presenter",
	KindRemote:    "remote",
	KindTrackball: "trackball",
	KindTouchpad:  "touchpad",
	KindTablet:    "tablet",
	KindGamepad:   "gamepad",
	KindJoystick:  "joystick",
	KindHeadset:   "headset",
}

func (k DeviceKind) String() string {
	if name, ok := deviceKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%#02x)", byte(k))
}

func parseDeviceKind(b byte) DeviceKind {
	if _, ok := deviceKindNames[DeviceKind(b)]; ok {
		return DeviceKind(b)
	}
	return KindUnknown
}

// DevicePairingInformation describes a single paired device, as returned
// by GetDevicePairingInformation.
type DevicePairingInformation struct {
	WPID      uint16
	Kind      DeviceKind
	Encrypted bool
	Online    bool
	UnitID    [4]byte
}

// DeviceConnection is emitted whenever a paired device connects to or
// disconnects from the receiver. TriggerDeviceArrival causes one of these
// to be emitted per currently paired device, which is the basis of device
// enumeration via CollectPairedDevices.
type DeviceConnection struct {
	Index     byte
	Kind      DeviceKind
	Encrypted bool
	Online    bool
	WPID      uint16
}

func (DeviceConnection) isEvent() {}

// DiscoveryEventType distinguishes the two payload shapes carried by a
// device-discovery notification.
type DiscoveryEventType byte

const (
	DiscoveryEventDetails DiscoveryEventType = 0
	DiscoveryEventName    DiscoveryEventType = 1
)

// DiscoveryDetails is the "details" variant of a device-discovery event.
// Only the fields below are decoded; the remaining payload bytes are of
// unknown meaning and are not exposed.
type DiscoveryDetails struct {
	Counter uint16
	Kind    DeviceKind
	WPID    uint16
	Address [6]byte
	Auth    byte
}

func (DiscoveryDetails) isEvent() {}

// DiscoveryName is the "name" variant of a device-discovery event.
type DiscoveryName struct {
	Name string
}

func (DiscoveryName) isEvent() {}

// DiscoveryStatus reports whether discovery mode is currently enabled.
type DiscoveryStatus struct {
	Enabled bool
}

func (DiscoveryStatus) isEvent() {}

// PairingErrorCode enumerates the documented outcomes of a pairing
// attempt.
type PairingErrorCode byte

const (
	PairingErrorNone          PairingErrorCode = 0
	PairingErrorDeviceTimeout PairingErrorCode = 1
	PairingErrorFailed        PairingErrorCode = 2
)

// PairingStatus reports the outcome of an in-progress pairing attempt.
// RawStatus is undocumented and exposed verbatim alongside ErrorCode.
type PairingStatus struct {
	RawStatus byte
	ErrorCode PairingErrorCode
	Address   [6]byte
	Slot      byte
}

func (PairingStatus) isEvent() {}

// PasskeyRequest is emitted when the receiver requests the user confirm a
// 6-digit passkey to authenticate a pairing device.
type PasskeyRequest struct {
	Passkey [6]byte
	Address [6]byte
}

func (PasskeyRequest) isEvent() {}

// PasskeyPressType enumerates the stages of passkey entry reported by
// PasskeyKeypress.
type PasskeyPressType byte

const (
	PasskeyPressInit     PasskeyPressType = 0
	PasskeyPressKeypress PasskeyPressType = 1
	PasskeyPressSubmit   PasskeyPressType = 4
)

// PasskeyKeypress reports a single passkey-entry keypress event.
type PasskeyKeypress struct {
	PressType PasskeyPressType
	Address   [6]byte
}

func (PasskeyKeypress) isEvent() {}

// Event is any notification a Bolt receiver can emit. Concrete types are
// DeviceConnection, DiscoveryDetails, DiscoveryName, DiscoveryStatus,
// PairingStatus, PasskeyRequest, and PasskeyKeypress.
type Event interface {
	isEvent()
}

// Receiver drives a Bolt wireless receiver over a HID++1.0/RAP channel:
// pairing-count and unique-ID queries, per-device pairing info and
// codename lookups, discovery/pairing control, and the unsolicited events
// those operations and ambient device activity produce.
type Receiver struct {
	ch *channel.Channel

	listenerHandle uint32

	mu        sync.Mutex
	listeners []chan Event
}

// New builds a Receiver bound to ch, which must already be known to
// address a Bolt receiver's vendor/product ID pair.
func New(ch *channel.Channel) (*Receiver, error) {
	if !isKnownReceiver(ch.VendorID(), ch.ProductID()) {
		return nil, ErrUnknownReceiver
	}

	r := &Receiver{ch: ch}
	r.listenerHandle = ch.AddMsgListener(r.onMessage)
	return r, nil
}

func (r *Receiver) onMessage(msg channel.HidppMessage, matched bool) {
	if matched {
		return
	}

	v10msg := v10.FromHidpp(msg)
	hdr := v10msg.Header()
	payload := v10msg.ExtendPayload()

	var ev Event
	switch hdr.SubID {
	case 0x41:
		ev = DeviceConnection{
			Index:     hdr.DeviceIndex,
			Kind:      parseDeviceKind(payload[1] & 0x0F),
			Encrypted: payload[1]&(1<<5) != 0,
			Online:    payload[1]&(1<<6) == 0,
			WPID:      uint16(payload[2]) | uint16(payload[3])<<8,
		}
	case 0x4F:
		switch payload[2] {
		case byte(DiscoveryEventDetails):
			var address [6]byte
			copy(address[:], payload[6:12])
			ev = DiscoveryDetails{
				Counter: uint16(payload[0]) | uint16(payload[1])<<8,
				Kind:    parseDeviceKind(payload[3] & 0x0F),
				WPID:    uint16(payload[4]) | uint16(payload[5])<<8,
				Address: address,
				Auth:    payload[15],
			}
		case byte(DiscoveryEventName):
			length := int(payload[3])
			if length > len(payload)-4 {
				length = len(payload) - 4
			}
			ev = DiscoveryName{Name: strings.TrimRight(string(payload[4:4+length]), "\x00")}
		default:
			return
		}
	case 0x53:
		ev = DiscoveryStatus{Enabled: payload[0] == 0}
	case 0x54:
		var address [6]byte
		copy(address[:], payload[2:8])
		ev = PairingStatus{
			RawStatus: payload[0],
			ErrorCode: PairingErrorCode(payload[1]),
			Address:   address,
			Slot:      payload[8],
		}
	case 0x4D:
		var passkey, address [6]byte
		copy(passkey[:], payload[1:7])
		copy(address[:], payload[7:13])
		ev = PasskeyRequest{Passkey: passkey, Address: address}
	case 0x4E:
		var address [6]byte
		copy(address[:], payload[1:7])
		ev = PasskeyKeypress{PressType: PasskeyPressType(payload[0]), Address: address}
	default:
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	alive := r.listeners[:0]
	for _, lch := range r.listeners {
		select {
		case lch <- ev:
			alive = append(alive, lch)
		default:
			close(lch)
		}
	}
	r.listeners = alive
}

// Listen registers a new listener and returns a channel that receives
// every subsequent receiver event. The channel is closed if it would
// otherwise block delivery, or when Close is called.
func (r *Receiver) Listen() <-chan Event {
	lch := make(chan Event, 8)
	r.mu.Lock()
	r.listeners = append(r.listeners, lch)
	r.mu.Unlock()
	return lch
}

// Close deregisters the channel-wide message listener and closes every
// outstanding Listen channel.
func (r *Receiver) Close() error {
	r.ch.RemoveMsgListener(r.listenerHandle)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, lch := range r.listeners {
		close(lch)
	}
	r.listeners = nil
	return nil
}

// CountPairings returns the number of devices currently paired to the
// receiver. Paired devices need not be online to be counted.
func (r *Receiver) CountPairings() (byte, error) {
	resp, err := v10.ReadRegister(r.ch, receiverDeviceIndex, byte(RegisterConnections), [3]byte{})
	if err != nil {
		return 0, err
	}
	return resp[1], nil
}

// TriggerDeviceArrival requests the receiver emit a DeviceConnection
// event for every currently paired device, which is how device
// enumeration is done (see CollectPairedDevices).
func (r *Receiver) TriggerDeviceArrival() error {
	return v10.WriteRegister(r.ch, receiverDeviceIndex, byte(RegisterConnections), [3]byte{0x02, 0x00, 0x00})
}

// GetUniqueID returns the receiver's own unique identifier.
func (r *Receiver) GetUniqueID() (string, error) {
	resp, err := v10.ReadLongRegister(r.ch, receiverDeviceIndex, byte(RegisterUniqueID), [3]byte{})
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(resp[:]), "\x00"), nil
}

// GetDevicePairingInformation returns pairing information for the paired
// device at the given index (1..15).
func (r *Receiver) GetDevicePairingInformation(deviceIndex byte) (DevicePairingInformation, error) {
	address := byte(SubRegisterDevicePairingInformation) + (deviceIndex & 0x0F)
	resp, err := v10.ReadLongRegister(r.ch, receiverDeviceIndex, byte(RegisterReceiverInfo), [3]byte{address, 0x00, 0x00})
	if err != nil {
		return DevicePairingInformation{}, err
	}

	var unitID [4]byte
	copy(unitID[:], resp[4:8])

	return DevicePairingInformation{
		WPID:      uint16(resp[2]) | uint16(resp[3])<<8,
		Kind:      parseDeviceKind(resp[1] & 0x0F),
		Encrypted: resp[1]&(1<<5) != 0,
		Online:    resp[1]&(1<<6) == 0,
		UnitID:    unitID,
	}, nil
}

// GetDeviceCodename returns the codename of the paired device at the
// given index (1..15).
//
// Devices with a codename longer than 13 characters may require this to
// be called multiple times with different paging parameters; this is not
// implemented as it could not be verified against real hardware.
func (r *Receiver) GetDeviceCodename(deviceIndex byte) (string, error) {
	address := byte(SubRegisterDeviceCodename) + (deviceIndex & 0x0F)
	resp, err := v10.ReadLongRegister(r.ch, receiverDeviceIndex, byte(RegisterReceiverInfo), [3]byte{address, 0x01, 0x00})
	if err != nil {
		return "", err
	}

	end := int(resp[2])
	if end > len(resp)-3 {
		end = len(resp) - 3
	}
	return string(resp[3 : 3+end]), nil
}

// StartDiscovery puts the receiver into discovery mode for the given
// timeout, in seconds.
func (r *Receiver) StartDiscovery(timeoutSeconds byte) error {
	return v10.WriteRegister(r.ch, receiverDeviceIndex, byte(RegisterDiscovery), [3]byte{timeoutSeconds, 0x01, 0x00})
}

// CancelDiscovery stops an in-progress discovery.
func (r *Receiver) CancelDiscovery() error {
	return v10.WriteRegister(r.ch, receiverDeviceIndex, byte(RegisterDiscovery), [3]byte{0x00, 0x02, 0x00})
}

// Pair requests the receiver pair the device at address, assigning it to
// the given slot (1..15), with the given authentication method and
// entropy byte supplied by the discovery/passkey exchange.
func (r *Receiver) Pair(slot byte, address [6]byte, auth, entropy byte) error {
	var payload [17]byte
	payload[0] = 0x01
	payload[1] = slot
	copy(payload[2:8], address[:])
	payload[8] = auth
	payload[9] = entropy
	return v10.WriteLongRegister(r.ch, receiverDeviceIndex, byte(RegisterPairing), payload)
}

// Unpair requests the receiver remove the pairing occupying the given
// slot.
func (r *Receiver) Unpair(slot byte) error {
	var payload [17]byte
	payload[0] = 0x03
	payload[1] = slot
	return v10.WriteLongRegister(r.ch, receiverDeviceIndex, byte(RegisterPairing), payload)
}

// CollectPairedDevices enumerates every currently paired device by
// registering a listener before triggering device arrival: the receiver
// emits one DeviceConnection per paired device before it confirms the
// triggering register write, and since both travel through the same
// single reader goroutine in arrival order, every DeviceConnection is
// already queued by the time TriggerDeviceArrival returns.
func (r *Receiver) CollectPairedDevices() ([]DeviceConnection, error) {
	lch := make(chan Event, 16)
	r.mu.Lock()
	r.listeners = append(r.listeners, lch)
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		for i, l := range r.listeners {
			if l == lch {
				r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
				break
			}
		}
		r.mu.Unlock()
	}()

	if err := r.TriggerDeviceArrival(); err != nil {
		return nil, err
	}

	var collected []DeviceConnection
	for {
		select {
		case ev := <-lch:
			if dc, ok := ev.(DeviceConnection); ok {
				collected = append(collected, dc)
			}
		default:
			return collected, nil
		}
	}
}
