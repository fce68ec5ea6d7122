// Package hidpptest provides a scripted channel.RawHidChannel used across
// the repo's test suites to drive a real channel.Channel without a HID
// endpoint.
package hidpptest

import (
	"errors"
	"sync"

	"github.com/relvacode/hidpp/channel"
)

// Stub is a scripted channel.RawHidChannel. Reads replay a fixed sequence
// of inbound frames; AfterWrite, if set for a given 1-based write count,
// is appended to the inbound queue once that many writes have landed,
// simulating a device reacting to a request.
type Stub struct {
	Short, Long bool

	mu      sync.Mutex
	cond    *sync.Cond
	inbound [][]byte
	writes  [][]byte

	AfterWrite map[int][][]byte

	closed  chan struct{}
	readIdx int
}

// NewStub constructs a Stub that supports both short and long HID++ frames
// and replays inbound on successive Read calls.
func NewStub(inbound [][]byte) *Stub {
	s := &Stub{
		Short:      true,
		Long:       true,
		inbound:    append([][]byte(nil), inbound...),
		AfterWrite: make(map[int][][]byte),
		closed:     make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *Stub) VendorID() uint16  { return 0x046d }
func (s *Stub) ProductID() uint16 { return 0xc548 }

func (s *Stub) SupportsShortLongHidpp() (bool, bool) { return s.Short, s.Long }

func (s *Stub) ReadReportDescriptor(p []byte) (int, error) { return 0, nil }

func (s *Stub) Write(p []byte) (int, error) {
	s.mu.Lock()
	s.writes = append(s.writes, append([]byte(nil), p...))
	if extra, ok := s.AfterWrite[len(s.writes)]; ok {
		s.inbound = append(s.inbound, extra...)
		s.cond.Broadcast()
	}
	s.mu.Unlock()
	return len(p), nil
}

func (s *Stub) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.readIdx >= len(s.inbound) {
		select {
		case <-s.closed:
			return 0, errors.New("hidpptest: closed")
		default:
		}
		s.cond.Wait()
	}

	frame := s.inbound[s.readIdx]
	s.readIdx++
	return copy(p, frame), nil
}

func (s *Stub) Close() error {
	s.mu.Lock()
	close(s.closed)
	s.mu.Unlock()
	s.cond.Broadcast()
	return nil
}

// PushRead appends frame to the inbound queue immediately, simulating an
// unsolicited notification arriving with no preceding write.
func (s *Stub) PushRead(frame []byte) {
	s.mu.Lock()
	s.inbound = append(s.inbound, frame)
	s.cond.Broadcast()
	s.mu.Unlock()
}

// Writes returns a snapshot of every frame written so far.
func (s *Stub) Writes() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.writes...)
}

// NewChannel constructs a channel.Channel wired to a fresh Stub seeded with
// inbound, returning both for further scripting via AfterWrite.
func NewChannel(inbound [][]byte) (*channel.Channel, *Stub) {
	raw := NewStub(inbound)
	ch, err := channel.New(raw)
	if err != nil {
		panic(err)
	}
	return ch, raw
}

// EncodeFrame serializes msg into a wire frame (report ID prefix included).
func EncodeFrame(msg channel.HidppMessage) []byte {
	buf := make([]byte, channel.LongReportLength)
	n, err := channel.EncodeMessage(msg, buf)
	if err != nil {
		panic(err)
	}
	return buf[:n]
}
