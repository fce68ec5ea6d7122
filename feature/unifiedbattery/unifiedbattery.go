// Package unifiedbattery implements the HID++2.0 UnifiedBattery feature
// (0x1004): battery charge level, charging status, and unsolicited
// battery-change notifications.
package unifiedbattery

import (
	"fmt"
	"sync"

	"github.com/relvacode/hidpp/channel"
	"github.com/relvacode/hidpp/feature"
	"github.com/relvacode/hidpp/nibble"
	"github.com/relvacode/hidpp/protocol/v20"
)

// FeatureID is the HID++2.0 feature ID for UnifiedBattery.
const FeatureID uint16 = 0x1004

func init() {
	feature.Register(FeatureID, "UnifiedBattery", 0, func(ch *channel.Channel, deviceIndex, featureIndex byte) any {
		return New(ch, deviceIndex, featureIndex)
	})
}

// Level is the approximate battery charge level. Only values present in
// Capabilities.ReportedLevels are ever reported by a given device.
type Level byte

const (
	Critical Level = 1 << 0
	Low      Level = 1 << 1
	Good     Level = 1 << 2
	Full     Level = 1 << 3
)

var levelNames = map[Level]string{Critical: "critical", Low: "low", Good: "good", Full: "full"}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%#02x)", byte(l))
}

func parseLevel(b byte) (Level, bool) {
	_, ok := levelNames[Level(b)]
	return Level(b), ok
}

// Status is the charging status of the battery.
type Status byte

const (
	Discharging  Status = 0
	Charging     Status = 1
	ChargingSlow Status = 2
	StatusFull   Status = 3
	Error        Status = 4
)

var statusNames = map[Status]string{
	Discharging: "discharging", Charging: "charging", ChargingSlow: "charging slowly",
	StatusFull: "full", Error: "error",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", byte(s))
}

func parseStatus(b byte) (Status, bool) {
	_, ok := statusNames[Status(b)]
	return Status(b), ok
}

// Capabilities describes what a device's battery and this feature report.
type Capabilities struct {
	ReportedLevels map[Level]bool
	Rechargeable   bool
	Percentage     bool
}

func capabilitiesFromBytes(b0, b1 byte) Capabilities {
	reported := make(map[Level]bool)
	if b0&(1<<0) != 0 {
		reported[Critical] = true
	}
	if b0&(1<<1) != 0 {
		reported[Low] = true
	}
	if b0&(1<<2) != 0 {
		reported[Good] = true
	}
	if b0&(1<<3) != 0 {
		reported[Full] = true
	}
	return Capabilities{
		ReportedLevels: reported,
		Rechargeable:   b1&(1<<0) != 0,
		Percentage:     b1&(1<<1) != 0,
	}
}

// Info is a single battery reading, delivered both by GetBatteryInfo and by
// Listen.
type Info struct {
	ChargingPercentage byte
	Level              Level
	Status             Status
}

// UnifiedBattery calls the UnifiedBattery feature on a single device and
// broadcasts unsolicited battery-change notifications to listeners
// registered via Listen.
type UnifiedBattery struct {
	ch           *channel.Channel
	deviceIndex  byte
	featureIndex byte

	listenerHandle uint32

	mu        sync.Mutex
	listeners []chan Info
}

// New builds a UnifiedBattery bound to deviceIndex at the given runtime
// feature index, and registers a channel-wide message listener to catch
// unsolicited battery-change notifications. Call Close when done with it.
func New(ch *channel.Channel, deviceIndex, featureIndex byte) *UnifiedBattery {
	u := &UnifiedBattery{ch: ch, deviceIndex: deviceIndex, featureIndex: featureIndex}
	u.listenerHandle = ch.AddMsgListener(u.onMessage)
	return u
}

func (u *UnifiedBattery) onMessage(msg channel.HidppMessage, matched bool) {
	if matched {
		return
	}

	v20msg := v20.FromHidpp(msg)
	hdr := v20msg.Header()
	if hdr.DeviceIndex != u.deviceIndex || hdr.FeatureIndex != u.featureIndex {
		return
	}
	if hdr.SoftwareID.ToLo() != 0 || hdr.FunctionID.ToLo() != 0 {
		return
	}

	payload := v20msg.ExtendPayload()
	level, ok := parseLevel(payload[1])
	if !ok {
		return
	}
	status, ok := parseStatus(payload[2])
	if !ok {
		return
	}

	info := Info{ChargingPercentage: payload[0], Level: level, Status: status}

	u.mu.Lock()
	defer u.mu.Unlock()
	alive := u.listeners[:0]
	for _, lch := range u.listeners {
		select {
		case lch <- info:
			alive = append(alive, lch)
		default:
			close(lch)
		}
	}
	u.listeners = alive
}

// Listen registers a new listener and returns a channel that receives
// every subsequent battery-change notification. The channel is closed if
// it would otherwise block a notification, or when Close is called.
func (u *UnifiedBattery) Listen() <-chan Info {
	lch := make(chan Info, 4)
	u.mu.Lock()
	u.listeners = append(u.listeners, lch)
	u.mu.Unlock()
	return lch
}

// Close deregisters the channel-wide message listener and closes every
// outstanding Listen channel.
func (u *UnifiedBattery) Close() error {
	u.ch.RemoveMsgListener(u.listenerHandle)

	u.mu.Lock()
	defer u.mu.Unlock()
	for _, lch := range u.listeners {
		close(lch)
	}
	u.listeners = nil
	return nil
}

// GetBatteryCapabilities retrieves the capabilities of this feature and the
// battery itself.
func (u *UnifiedBattery) GetBatteryCapabilities() (Capabilities, error) {
	resp, err := v20.SendV20(u.ch, v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex:  u.deviceIndex,
			FeatureIndex: u.featureIndex,
			FunctionID:   nibble.FromLo(0),
			SoftwareID:   u.ch.GetSwID(),
		},
	})
	if err != nil {
		return Capabilities{}, err
	}
	payload := resp.ExtendPayload()
	return capabilitiesFromBytes(payload[0], payload[1]), nil
}

// GetBatteryInfo retrieves the current battery charge and status.
func (u *UnifiedBattery) GetBatteryInfo() (Info, error) {
	resp, err := v20.SendV20(u.ch, v20.ShortMessage{
		Hdr: v20.MessageHeader{
			DeviceIndex:  u.deviceIndex,
			FeatureIndex: u.featureIndex,
			FunctionID:   nibble.FromLo(1),
			SoftwareID:   u.ch.GetSwID(),
		},
	})
	if err != nil {
		return Info{}, err
	}
	payload := resp.ExtendPayload()

	level, ok := parseLevel(payload[1])
	if !ok {
		return Info{}, v20.NewUnsupportedResponseError(fmt.Sprintf("undocumented battery level %#02x", payload[1]))
	}
	status, ok := parseStatus(payload[2])
	if !ok {
		return Info{}, v20.NewUnsupportedResponseError(fmt.Sprintf("undocumented battery status %d", payload[2]))
	}

	// payload[3] carries undocumented external-power-source information; it
	// is intentionally not interpreted here.
	return Info{ChargingPercentage: payload[0], Level: level, Status: status}, nil
}
