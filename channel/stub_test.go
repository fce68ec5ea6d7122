package channel

import (
	"errors"
	"sync"
)

// stubRawHidChannel is a scripted RawHidChannel used to drive the
// channel's reader loop under test without a real HID endpoint. Writes are
// recorded; reads replay a fixed sequence of inbound frames, optionally
// injecting a frame after a specific write index, then blocks until Close
// is called.
type stubRawHidChannel struct {
	vendorID, productID uint16
	short, long         bool

	mu      sync.Mutex
	cond    *sync.Cond
	inbound [][]byte
	writes  [][]byte

	// afterWrite, if non-nil, is appended to inbound once len(writes)
	// reaches the given count, simulating a device reacting to a write.
	afterWrite map[int][][]byte

	closed  chan struct{}
	readIdx int
}

func newStubChannel(short, long bool, inbound [][]byte) *stubRawHidChannel {
	s := &stubRawHidChannel{
		vendorID: 0x046d, productID: 0xc548,
		short: short, long: long,
		inbound:    append([][]byte(nil), inbound...),
		afterWrite: make(map[int][][]byte),
		closed:     make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *stubRawHidChannel) VendorID() uint16  { return s.vendorID }
func (s *stubRawHidChannel) ProductID() uint16 { return s.productID }

func (s *stubRawHidChannel) SupportsShortLongHidpp() (bool, bool) { return s.short, s.long }

func (s *stubRawHidChannel) ReadReportDescriptor(p []byte) (int, error) {
	return 0, nil
}

func (s *stubRawHidChannel) Write(p []byte) (int, error) {
	s.mu.Lock()
	s.writes = append(s.writes, append([]byte(nil), p...))
	if extra, ok := s.afterWrite[len(s.writes)]; ok {
		s.inbound = append(s.inbound, extra...)
		s.cond.Broadcast()
	}
	s.mu.Unlock()
	return len(p), nil
}

func (s *stubRawHidChannel) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.readIdx >= len(s.inbound) {
		select {
		case <-s.closed:
			return 0, errors.New("stub: closed")
		default:
		}
		s.cond.Wait()
	}

	frame := s.inbound[s.readIdx]
	s.readIdx++
	return copy(p, frame), nil
}

func (s *stubRawHidChannel) Close() error {
	s.mu.Lock()
	close(s.closed)
	s.mu.Unlock()
	s.cond.Broadcast()
	return nil
}

func (s *stubRawHidChannel) recordedWrites() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.writes...)
}
