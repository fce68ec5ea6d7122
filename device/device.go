// Package device implements the HID++2.0 device abstraction: version
// probing, Root feature installation, and feature table enumeration
// against the process-wide feature registry (feature.Register).
package device

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/relvacode/hidpp/channel"
	"github.com/relvacode/hidpp/feature"
	"github.com/relvacode/hidpp/feature/featureset"
	"github.com/relvacode/hidpp/feature/root"
	"github.com/relvacode/hidpp/protocol/v20"
)

// ErrDeviceNotFound indicates that no device answered the version probe
// for the requested index.
var ErrDeviceNotFound = fmt.Errorf("device: no device found at that index")

// ErrUnsupportedProtocolVersion indicates that the device only speaks
// HID++1.0; this package targets HID++2.0 peripherals only.
var ErrUnsupportedProtocolVersion = fmt.Errorf("device: device only supports HID++1.0")

// Feature pairs an enumerated feature's registry metadata with its
// installed runtime index.
type Feature struct {
	feature.Information
	ID uint16
}

// Device is a single HID++2.0 peripheral reachable over a shared channel.
// A Device owns the Root feature and, after EnumerateFeatures, every
// other installed feature implementation, indexed for typed lookup via
// Get.
type Device struct {
	ch          *channel.Channel
	deviceIndex byte

	Root    *root.Root
	Version v20.ProtocolV20

	mu           sync.Mutex
	features     map[reflect.Type]any
	installedIDs map[uint16]bool
	table        []Feature
}

// New probes deviceIndex on ch and, if it answers HID++2.0, installs the
// Root feature and returns a Device ready for EnumerateFeatures.
func New(ch *channel.Channel, deviceIndex byte) (*Device, error) {
	version, present, err := v20.DetermineVersion(ch, deviceIndex)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, ErrDeviceNotFound
	}
	v2, ok := version.(v20.ProtocolV20)
	if !ok {
		return nil, ErrUnsupportedProtocolVersion
	}

	return &Device{
		ch:           ch,
		deviceIndex:  deviceIndex,
		Root:         root.New(ch, deviceIndex),
		Version:      v2,
		features:     make(map[reflect.Type]any),
		installedIDs: make(map[uint16]bool),
	}, nil
}

// DeviceIndex returns the HID++ device index this Device is bound to.
func (d *Device) DeviceIndex() byte { return d.deviceIndex }

// EnumerateFeatures installs every feature the device reports via
// FeatureSet that the registry has a constructor for, and returns the
// full feature table (including features with no registered
// implementation). Calling this more than once re-walks the table but
// skips constructing an implementation for a feature ID that is already
// installed, so it is safe to call idempotently: event-emitting features
// register their channel listener once in their constructor, and
// re-running that constructor on every call would leak one listener per
// repeat call.
func (d *Device) EnumerateFeatures() ([]Feature, error) {
	featureSetInfo, err := d.Root.GetFeature(featureset.FeatureID)
	if err != nil {
		return nil, err
	}
	if featureSetInfo.Index == 0 {
		return nil, nil
	}

	fs := featureset.New(d.ch, d.deviceIndex, featureSetInfo.Index)
	d.install(fs)

	count, err := fs.Count()
	if err != nil {
		return nil, err
	}

	table := make([]Feature, 0, count)
	for i := byte(1); i <= count; i++ {
		entry, err := fs.GetFeature(i)
		if err != nil {
			return nil, err
		}

		info := feature.Information{Index: i, Type: entry.Type, Version: entry.Version}
		table = append(table, Feature{Information: info, ID: entry.ID})

		if i == featureSetInfo.Index {
			continue
		}

		if d.markInstalled(entry.ID) {
			for _, construct := range feature.LookupVersion(entry.ID, entry.Version) {
				d.install(construct(d.ch, d.deviceIndex, i))
			}
		}
	}

	d.mu.Lock()
	d.table = table
	d.mu.Unlock()

	return table, nil
}

// Features returns the feature table built by the most recent
// EnumerateFeatures call, or nil if it has not been called yet.
func (d *Device) Features() []Feature {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Feature(nil), d.table...)
}

func (d *Device) install(impl any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.features[reflect.TypeOf(impl)] = impl
}

// markInstalled records featureID as installed and reports whether this
// is the first time, so callers can decide whether to construct an
// implementation for it. Once true is returned for a featureID, every
// later call returns false until the Device is discarded.
func (d *Device) markInstalled(featureID uint16) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.installedIDs[featureID] {
		return false
	}
	d.installedIDs[featureID] = true
	return true
}

// Get retrieves a previously installed feature implementation by its
// concrete type, e.g. device.Get[*unifiedbattery.UnifiedBattery](d).
func Get[T any](d *Device) (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var zero T
	v, ok := d.features[reflect.TypeFor[T]()]
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
