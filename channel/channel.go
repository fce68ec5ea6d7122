package channel

import (
	"io"
	"math/rand/v2"
	"sync"

	"github.com/relvacode/hidpp/internal/log"
	"github.com/relvacode/hidpp/nibble"
)

// RawHidChannel abstracts a single OS HID endpoint: plain blocking reads and
// writes of whole HID reports, plus a way to obtain the interface's report
// descriptor so the channel can decide whether HID++ is spoken on it at all.
//
// Read must block until a complete input report is available and return
// its length; if buf is smaller than the report, the remainder is
// discarded, not buffered for a later call.
type RawHidChannel interface {
	VendorID() uint16
	ProductID() uint16

	Write(p []byte) (int, error)
	Read(p []byte) (int, error)

	ReadReportDescriptor(p []byte) (int, error)
}

// CapabilityHinter is an optional interface a RawHidChannel may implement to
// short-circuit report-descriptor parsing by directly reporting whether it
// carries short/long HID++ frames.
type CapabilityHinter interface {
	SupportsShortLongHidpp() (short, long bool)
}

// MsgListenerFunc is invoked for every inbound message, after the correlator
// has decided whether it matched an in-flight request. matched is true if
// the message was delivered to (and consumed by) a pending send call.
//
// Implementations must not block: the reader goroutine calls every listener
// synchronously, so a blocking listener stalls the reader. The channel
// never removes a listener on its own; a listener stays registered until
// RemoveMsgListener is called with its handle.
type MsgListenerFunc func(msg HidppMessage, matched bool)

type pendingRequest struct {
	predicate func(HidppMessage) bool
	result    chan pendingResult
}

type pendingResult struct {
	msg HidppMessage
	err error
}

// Channel multiplexes HID++ request/response exchanges and unsolicited
// notifications over a single RawHidChannel. It spawns exactly one reader
// goroutine for the lifetime of the channel.
type Channel struct {
	raw RawHidChannel

	SupportsShort bool
	SupportsLong  bool

	vendorID  uint16
	productID uint16

	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   []*pendingRequest

	listenerMu sync.Mutex
	listeners  map[uint32]MsgListenerFunc

	swidMu   sync.Mutex
	swid     nibble.U4
	rotating bool

	done chan struct{}
	wg   sync.WaitGroup
}

// New constructs a Channel from a raw HID endpoint. If raw implements
// CapabilityHinter, its hint is trusted and no report descriptor is read.
// Otherwise the report descriptor is fetched and parsed. Fails with
// HidppNotSupportedError if neither short nor long HID++ frames are
// supported.
func New(raw RawHidChannel) (*Channel, error) {
	supportsShort, supportsLong, err := probeCapabilities(raw)
	if err != nil {
		return nil, err
	}
	if !supportsShort && !supportsLong {
		return nil, &HidppNotSupportedError{}
	}

	ch := &Channel{
		raw:           raw,
		SupportsShort: supportsShort,
		SupportsLong:  supportsLong,
		vendorID:      raw.VendorID(),
		productID:     raw.ProductID(),
		listeners:     make(map[uint32]MsgListenerFunc),
		swid:          nibble.FromLo(1),
		done:          make(chan struct{}),
	}

	ch.wg.Add(1)
	go ch.readLoop()

	return ch, nil
}

func probeCapabilities(raw RawHidChannel) (short, long bool, err error) {
	if hinter, ok := raw.(CapabilityHinter); ok {
		short, long = hinter.SupportsShortLongHidpp()
		return short, long, nil
	}

	buf := make([]byte, MaxReportDescriptorLength)
	n, err := raw.ReadReportDescriptor(buf)
	if err != nil {
		return false, false, &ReportDescriptorError{err: err}
	}

	short, long = parseCapabilities(buf[:n])
	return short, long, nil
}

// VendorID returns the USB vendor ID captured from the raw endpoint at
// construction.
func (c *Channel) VendorID() uint16 { return c.vendorID }

// ProductID returns the USB product ID captured from the raw endpoint at
// construction.
func (c *Channel) ProductID() uint16 { return c.productID }

// SupportsMsg reports whether the channel's underlying endpoint supports
// the frame size of msg.
func (c *Channel) SupportsMsg(msg HidppMessage) bool {
	switch msg.(type) {
	case ShortMessage:
		return c.SupportsShort
	case LongMessage:
		return c.SupportsLong
	default:
		return false
	}
}

// GetSwID returns the software ID to attach to the next outbound v2.0
// request. If rotating is enabled, it advances 1→2→…→15→1 on every call;
// otherwise it returns the stored value unchanged.
func (c *Channel) GetSwID() nibble.U4 {
	c.swidMu.Lock()
	defer c.swidMu.Unlock()

	current := c.swid
	if c.rotating {
		next := current.ToLo() + 1
		if next > 15 {
			next = 1
		}
		c.swid = nibble.FromLo(next)
	}
	return current
}

// SetSwID sets the software ID returned by GetSwID when rotation is
// disabled, and the starting point for rotation when it is enabled.
func (c *Channel) SetSwID(id nibble.U4) {
	c.swidMu.Lock()
	defer c.swidMu.Unlock()
	c.swid = id
}

// SetRotatingSwID enables or disables automatic advancement of the
// software ID on every GetSwID call.
func (c *Channel) SetRotatingSwID(rotating bool) {
	c.swidMu.Lock()
	defer c.swidMu.Unlock()
	c.rotating = rotating
}

// Send writes msg to the raw endpoint and blocks until an inbound message
// satisfying predicate arrives, or the channel shuts down. The predicate
// must be decidable from a single inbound message; predicates are tested
// in FIFO order against previously-registered pending sends, so the
// earliest-enqueued acceptor wins a given inbound message.
func (c *Channel) Send(msg HidppMessage, predicate func(HidppMessage) bool) (HidppMessage, error) {
	if !c.SupportsMsg(msg) {
		_, isLong := msg.(LongMessage)
		return nil, &MessageTypeNotSupportedError{long: isLong}
	}

	req := &pendingRequest{predicate: predicate, result: make(chan pendingResult, 1)}

	c.pendingMu.Lock()
	c.pending = append(c.pending, req)
	c.pendingMu.Unlock()

	if err := c.writeMsg(msg); err != nil {
		c.removePending(req)
		return nil, err
	}

	res := <-req.result
	return res.msg, res.err
}

// SendAndForget writes msg to the raw endpoint without waiting for a
// response.
func (c *Channel) SendAndForget(msg HidppMessage) error {
	if !c.SupportsMsg(msg) {
		_, isLong := msg.(LongMessage)
		return &MessageTypeNotSupportedError{long: isLong}
	}
	return c.writeMsg(msg)
}

func (c *Channel) writeMsg(msg HidppMessage) error {
	var buf [LongReportLength]byte
	n, err := EncodeMessage(msg, buf[:])
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	_, err = c.raw.Write(buf[:n])
	c.writeMu.Unlock()
	if err != nil {
		return &ImplementationError{err: err}
	}
	return nil
}

func (c *Channel) removePending(req *pendingRequest) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	for i, p := range c.pending {
		if p == req {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
	}
}

// AddMsgListener registers fn to be invoked for every inbound message and
// returns an opaque handle that can later be passed to RemoveMsgListener.
func (c *Channel) AddMsgListener(fn MsgListenerFunc) uint32 {
	c.listenerMu.Lock()
	defer c.listenerMu.Unlock()

	var handle uint32
	for {
		handle = rand.Uint32()
		if _, exists := c.listeners[handle]; !exists && handle != 0 {
			break
		}
	}
	c.listeners[handle] = fn
	return handle
}

// RemoveMsgListener deregisters the listener addressed by handle, returning
// false if no such listener was registered.
func (c *Channel) RemoveMsgListener(handle uint32) bool {
	c.listenerMu.Lock()
	defer c.listenerMu.Unlock()

	if _, ok := c.listeners[handle]; !ok {
		return false
	}
	delete(c.listeners, handle)
	return true
}

// Close signals the reader goroutine to stop, closes the underlying raw
// endpoint if it implements io.Closer (which unblocks a pending Read), and
// waits for the reader to exit. Pending sends observe NoResponseError.
func (c *Channel) Close() error {
	close(c.done)

	var closeErr error
	if closer, ok := c.raw.(io.Closer); ok {
		closeErr = closer.Close()
	}

	c.wg.Wait()
	return closeErr
}

func (c *Channel) readLoop() {
	defer c.wg.Done()
	defer c.failAllPending()

	buf := make([]byte, LongReportLength)
	for {
		select {
		case <-c.done:
			return
		default:
		}

		n, err := c.raw.Read(buf)
		if err != nil {
			select {
			case <-c.done:
			default:
				log.Error("channel", "reader stopped: %s", err)
			}
			return
		}

		msg, ok := DecodeMessage(buf[:n])
		if !ok {
			continue
		}

		matched := c.dispatch(msg)
		c.notifyListeners(msg, matched)
	}
}

// dispatch delivers msg to the earliest-enqueued pending request whose
// predicate accepts it, removing that request from the queue. Returns
// whether a pending request consumed the message.
func (c *Channel) dispatch(msg HidppMessage) bool {
	c.pendingMu.Lock()
	var matched *pendingRequest
	for i, p := range c.pending {
		if p.predicate(msg) {
			matched = p
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			break
		}
	}
	c.pendingMu.Unlock()

	if matched == nil {
		return false
	}

	matched.result <- pendingResult{msg: msg}
	return true
}

func (c *Channel) notifyListeners(msg HidppMessage, matched bool) {
	c.listenerMu.Lock()
	fns := make([]MsgListenerFunc, 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.listenerMu.Unlock()

	for _, fn := range fns {
		fn(msg, matched)
	}
}

func (c *Channel) failAllPending() {
	c.pendingMu.Lock()
	pending := c.pending
	c.pending = nil
	c.pendingMu.Unlock()

	for _, p := range pending {
		p.result <- pendingResult{err: &NoResponseError{}}
	}
}
