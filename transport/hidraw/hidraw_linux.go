//go:build linux

// Package hidraw implements channel.RawHidChannel over a Linux /dev/hidrawN
// node: blocking report reads/writes and report-descriptor retrieval via
// the kernel's hidraw ioctls, plus sysfs-based enumeration of candidate
// endpoints.
package hidraw

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Endpoint is a single opened hidraw device node, usable as a
// channel.RawHidChannel.
type Endpoint struct {
	f  *os.File
	fd int

	vendorID  uint16
	productID uint16

	writeMu sync.Mutex
}

// Open opens a hidraw path like "/dev/hidraw2" and reads its vendor and
// product IDs via HIDIOCGRAWINFO.
func Open(path string) (*Endpoint, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}

	e := &Endpoint{f: f, fd: int(f.Fd())}

	var info hidrawDevinfo
	if err := e.ioctl(hidIOC(_IOC_READ, 'H', 0x03, unsafe.Sizeof(info)), unsafe.Pointer(&info)); err != nil {
		f.Close()
		return nil, fmt.Errorf("hidraw: HIDIOCGRAWINFO: %w", err)
	}
	e.vendorID = uint16(info.vendor)
	e.productID = uint16(info.product)

	return e, nil
}

// VendorID implements channel.RawHidChannel.
func (e *Endpoint) VendorID() uint16 { return e.vendorID }

// ProductID implements channel.RawHidChannel.
func (e *Endpoint) ProductID() uint16 { return e.productID }

// Write implements channel.RawHidChannel.
func (e *Endpoint) Write(p []byte) (int, error) {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	return e.f.Write(p)
}

// Read implements channel.RawHidChannel. It blocks until a full input
// report is available.
func (e *Endpoint) Read(p []byte) (int, error) {
	return e.f.Read(p)
}

// ReadReportDescriptor implements channel.RawHidChannel by retrieving the
// device's HID report descriptor via HIDIOCGRDESCSIZE and HIDIOCGRDESC.
func (e *Endpoint) ReadReportDescriptor(p []byte) (int, error) {
	var size int32
	if err := e.ioctl(hidIOC(_IOC_READ, 'H', 0x01, unsafe.Sizeof(size)), unsafe.Pointer(&size)); err != nil {
		return 0, fmt.Errorf("hidraw: HIDIOCGRDESCSIZE: %w", err)
	}

	var desc hidrawReportDescriptor
	desc.size = uint32(size)
	if err := e.ioctl(hidIOC(_IOC_READ, 'H', 0x02, unsafe.Sizeof(desc)), unsafe.Pointer(&desc)); err != nil {
		return 0, fmt.Errorf("hidraw: HIDIOCGRDESC: %w", err)
	}

	n := copy(p, desc.value[:size])
	return n, nil
}

// Close closes the underlying device node.
func (e *Endpoint) Close() error {
	return e.f.Close()
}

func (e *Endpoint) ioctl(req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(e.fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// hidrawDevinfo mirrors the kernel's struct hidraw_devinfo.
type hidrawDevinfo struct {
	bustype uint32
	vendor  int16
	product int16
}

// hidMaxDescriptorSize mirrors the kernel's HID_MAX_DESCRIPTOR_SIZE.
const hidMaxDescriptorSize = 4096

// hidrawReportDescriptor mirrors the kernel's struct
// hidraw_report_descriptor.
type hidrawReportDescriptor struct {
	size  uint32
	value [hidMaxDescriptorSize]byte
}

// ---- Linux _IOC helpers (arch-independent) ----

const (
	_iocNrbits   = 8
	_iocTypebits = 8
	_iocSizebits = 14
	_iocDirbits  = 2

	_iocNrshift   = 0
	_iocTypeshift = _iocNrshift + _iocNrbits
	_iocSizeshift = _iocTypeshift + _iocTypebits
	_iocDirshift  = _iocSizeshift + _iocSizebits

	_IOC_NONE  = 0
	_IOC_WRITE = 1
	_IOC_READ  = 2
)

func _IOC(dir, typ, nr, size uintptr) uintptr {
	return (dir << _iocDirshift) | (typ << _iocTypeshift) | (nr << _iocNrshift) | (size << _iocSizeshift)
}

func hidIOC(dir uintptr, typ byte, nr byte, size uintptr) uintptr {
	return _IOC(dir, uintptr(typ), uintptr(nr), size)
}

// Info describes a candidate hidraw device node discovered by Enumerate,
// before it is opened.
type Info struct {
	Path         string
	VendorID     uint16
	ProductID    uint16
	InterfaceNbr int
	UsagePage    uint16
	Usage        uint16
}

// Enumerate walks /sys/class/hidraw and reports every USB-backed hidraw
// node along with the vendor/product/usage metadata needed to pick out
// HID++ endpoints (usage page 0xff00) without opening every node.
func Enumerate() iter.Seq2[*Info, error] {
	return func(yield func(*Info, error) bool) {
		const sysHidraw = "/sys/class/hidraw"

		entries, err := os.ReadDir(sysHidraw)
		if err != nil {
			yield(nil, err)
			return
		}

		for _, entry := range entries {
			sysPath := filepath.Join(sysHidraw, entry.Name())
			devPath := filepath.Join("/dev", entry.Name())

			devLink := filepath.Join(sysPath, "device")
			realDev, err := filepath.EvalSymlinks(devLink)
			if err != nil {
				if !yield(nil, err) {
					return
				}
				continue
			}

			ifaceDir := realDev
			for {
				if _, err := os.Stat(filepath.Join(ifaceDir, "bInterfaceNumber")); err == nil {
					break
				}
				parent := filepath.Dir(ifaceDir)
				if parent == ifaceDir {
					ifaceDir = ""
					break
				}
				ifaceDir = parent
			}
			if ifaceDir == "" {
				continue
			}

			devDir := ifaceDir
			for {
				if _, err := os.Stat(filepath.Join(devDir, "idVendor")); err == nil {
					break
				}
				parent := filepath.Dir(devDir)
				if parent == devDir {
					devDir = ""
					break
				}
				devDir = parent
			}
			if devDir == "" {
				continue
			}

			info := &Info{
				Path:         devPath,
				InterfaceNbr: readHex8(filepath.Join(ifaceDir, "bInterfaceNumber")),
				VendorID:     readHex16(filepath.Join(devDir, "idVendor")),
				ProductID:    readHex16(filepath.Join(devDir, "idProduct")),
			}

			rdescPaths := []string{
				filepath.Join(sysPath, "device", "report_descriptor"),
				filepath.Join(sysPath, "report_descriptor"),
			}
			for _, p := range rdescPaths {
				if b, err := os.ReadFile(p); err == nil && len(b) > 0 {
					info.UsagePage, info.Usage = parseTopLevelUsage(b)
					break
				}
			}

			if !yield(info, nil) {
				return
			}
		}
	}
}

func readString(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func readHex16(path string) uint16 {
	s := readString(path)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0
	}
	return uint16(v)
}

func readHex8(path string) int {
	s := readString(path)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0
	}
	return int(v)
}

// parseTopLevelUsage parses a HID report descriptor and returns the usage
// page and usage of its first top-level collection.
func parseTopLevelUsage(desc []byte) (uint16, uint16) {
	var usagePage, usage uint16
	i := 0
	for i < len(desc) {
		prefix := desc[i]
		i++

		if prefix == 0xFE {
			if i+2 > len(desc) {
				break
			}
			size := int(desc[i])
			i += 2 + size
			continue
		}

		sizeCode := int(prefix & 0x03)
		size := 0
		switch sizeCode {
		case 1:
			size = 1
		case 2:
			size = 2
		case 3:
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
			if itemTag == 0x0 {
				usagePage = uint16(val & 0xFFFF)
			}
		case 2: // Local
			if itemTag == 0x0 {
				usage = uint16(val & 0xFFFF)
			}
		case 0: // Main
			if itemTag == 0x0A { // Collection
				return usagePage, usage
			}
		}
	}
	return usagePage, usage
}
