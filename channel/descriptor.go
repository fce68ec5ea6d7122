package channel

// parseCapabilities walks a raw HID report descriptor and determines, for
// each of the two HID++ report IDs, whether there is an input report of
// that ID whose declared usage range covers the HID++ usage
// (usage_page=0xff00, usage=0x0001 for short, 0x0002 for long).
//
// This mirrors the byte-level descriptor walk used to recover a device's
// top-level usage page/usage, extended to track the report ID a given Input
// main item applies to (via the Report ID global item) and to test the
// usage range declared for that report rather than just the first
// collection's usage.
func parseCapabilities(desc []byte) (supportsShort, supportsLong bool) {
	var usagePage uint16
	var usageMin, usageMax uint16
	var haveUsage bool
	var reportID byte

	i := 0
	for i < len(desc) {
		prefix := desc[i]
		i++

		if prefix == 0xFE { // long item, not used by HID++ descriptors
			if i+2 > len(desc) {
				break
			}
			size := int(desc[i])
			i += 2 + size
			continue
		}

		sizeCode := int(prefix & 0x03)
		var size int
		switch sizeCode {
		case 0:
			size = 0
		case 1:
			size = 1
		case 2:
			size = 2
		default:
			size = 4
		}

		itemType := (prefix >> 2) & 0x03
		itemTag := (prefix >> 4) & 0x0F

		if i+size > len(desc) {
			break
		}
		var val uint32
		switch size {
		case 1:
			val = uint32(desc[i])
		case 2:
			val = uint32(desc[i]) | uint32(desc[i+1])<<8
		case 4:
			val = uint32(desc[i]) | uint32(desc[i+1])<<8 | uint32(desc[i+2])<<16 | uint32(desc[i+3])<<24
		}
		i += size

		switch itemType {
		case 1: // Global
			switch itemTag {
			case 0x0: // Usage Page
				usagePage = uint16(val)
			case 0x8: // Report ID
				reportID = byte(val)
			}
		case 2: // Local
			switch itemTag {
			case 0x0: // Usage
				usageMin, usageMax = uint16(val), uint16(val)
				haveUsage = true
			case 0x1: // Usage Minimum
				usageMin = uint16(val)
				haveUsage = true
			case 0x2: // Usage Maximum
				usageMax = uint16(val)
				haveUsage = true
			}
		case 0: // Main
			switch itemTag {
			case 0x8: // Input
				if haveUsage && usagePage == HidppUsagePage {
					switch reportID {
					case ShortReportID:
						if usageInRange(ShortReportUsage, usageMin, usageMax) {
							supportsShort = true
						}
					case LongReportID:
						if usageInRange(LongReportUsage, usageMin, usageMax) {
							supportsLong = true
						}
					}
				}
				// Local items (usage range) reset after every main item.
				haveUsage = false
				usageMin, usageMax = 0, 0
			case 0x9, 0xA, 0xB: // Output, Collection, Feature
				haveUsage = false
				usageMin, usageMax = 0, 0
			}
		}
	}

	return supportsShort, supportsLong
}

func usageInRange(usage, min, max uint16) bool {
	if min > max {
		min, max = max, min
	}
	return usage >= min && usage <= max
}
