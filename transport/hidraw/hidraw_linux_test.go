//go:build linux

package hidraw

import "testing"

func TestParseTopLevelUsage(t *testing.T) {
	desc := []byte{
		0x06, 0x00, 0xFF, // Usage Page (Vendor Defined 0xFF00)
		0x09, 0x01, // Usage (0x01)
		0xA1, 0x01, // Collection (Application)
		0xC0, // End Collection
	}

	usagePage, usage := parseTopLevelUsage(desc)
	if usagePage != 0xFF00 {
		t.Fatalf("usage page = %#x, want 0xff00", usagePage)
	}
	if usage != 0x01 {
		t.Fatalf("usage = %#x, want 0x01", usage)
	}
}

func TestParseTopLevelUsage_Empty(t *testing.T) {
	usagePage, usage := parseTopLevelUsage(nil)
	if usagePage != 0 || usage != 0 {
		t.Fatalf("expected zero usage page/usage for empty descriptor, got %#x/%#x", usagePage, usage)
	}
}

func TestHidIOC_MatchesKernelMacros(t *testing.T) {
	// HIDIOCGRDESCSIZE = _IOR('H', 0x01, int) = 0x80044801
	if got := hidIOC(_IOC_READ, 'H', 0x01, 4); got != 0x80044801 {
		t.Fatalf("HIDIOCGRDESCSIZE = %#x, want 0x80044801", got)
	}
	// HIDIOCGRAWINFO = _IOR('H', 0x03, struct hidraw_devinfo{8 bytes}) = 0x80084803
	if got := hidIOC(_IOC_READ, 'H', 0x03, 8); got != 0x80084803 {
		t.Fatalf("HIDIOCGRAWINFO = %#x, want 0x80084803", got)
	}
}
