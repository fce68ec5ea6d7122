// Package feature defines the HID++2.0 feature registry: a process-wide
// mapping from feature ID to the constructor(s) able to build a typed Go
// value for it, consulted by device.Device when it enumerates a
// peripheral's feature table. Individual feature implementations
// (feature/featureset, feature/unifiedbattery, ...) register themselves
// from an init function and are wired in by blank-importing their package.
// feature/root does not register; device.New constructs it directly.
package feature

import (
	"sort"
	"sync"

	"github.com/relvacode/hidpp/channel"
)

// Constructor builds a typed feature instance bound to a specific feature
// index on a specific device. The returned value's concrete type is what
// callers later retrieve by type from device.Device.
type Constructor func(ch *channel.Channel, deviceIndex, featureIndex byte) any

type versionedConstructor struct {
	startingVersion byte
	construct       Constructor
}

var (
	mu       sync.RWMutex
	registry = make(map[uint16][]versionedConstructor)
	names    = make(map[uint16]string)
)

// Register adds a constructor for featureID, usable starting from
// startingVersion (inclusive). name is a human-readable label used for
// diagnostics. Intended to be called from a feature package's init.
func Register(featureID uint16, name string, startingVersion byte, construct Constructor) {
	mu.Lock()
	defer mu.Unlock()

	names[featureID] = name
	registry[featureID] = append(registry[featureID], versionedConstructor{
		startingVersion: startingVersion,
		construct:       construct,
	})
	sort.Slice(registry[featureID], func(i, j int) bool {
		return registry[featureID][i].startingVersion < registry[featureID][j].startingVersion
	})
}

// LookupVersion returns every registered constructor for featureID whose
// startingVersion is at most version, in ascending starting-version order.
// This allows multiple concurrently installed implementations of the same
// feature ID when the wire protocol has grown surface over time.
func LookupVersion(featureID uint16, version byte) []Constructor {
	mu.RLock()
	defer mu.RUnlock()

	entries := registry[featureID]
	out := make([]Constructor, 0, len(entries))
	for _, e := range entries {
		if e.startingVersion <= version {
			out = append(out, e.construct)
		}
	}
	return out
}

// Name returns the human-readable name registered for featureID, if any.
func Name(featureID uint16) (string, bool) {
	mu.RLock()
	defer mu.RUnlock()
	name, ok := names[featureID]
	return name, ok
}

// Type is the five-flag bitfield reported alongside a feature's ID in
// FeatureSet.get_feature and Root.get_feature, packed into bits 7..3 of a
// single byte.
type Type struct {
	Obsolete                   bool
	Hidden                     bool
	Engineering                bool
	ManufacturingDeactivatable bool
	ComplianceDeactivatable    bool
}

// TypeFromByte unpacks a FeatureType bitfield from its wire byte.
func TypeFromByte(b byte) Type {
	return Type{
		Obsolete:                   b&(1<<7) != 0,
		Hidden:                     b&(1<<6) != 0,
		Engineering:                b&(1<<5) != 0,
		ManufacturingDeactivatable: b&(1<<4) != 0,
		ComplianceDeactivatable:    b&(1<<3) != 0,
	}
}

// Information is the result of a feature lookup (Root.get_feature or
// FeatureSet.get_feature): the feature's runtime index on this device, its
// type flags, and its implemented version. Index zero means the feature is
// not implemented by the device.
type Information struct {
	Index   byte
	Type    Type
	Version byte
}
