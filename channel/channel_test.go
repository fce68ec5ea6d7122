package channel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relvacode/hidpp/nibble"
)

func TestNew_HidppNotSupported(t *testing.T) {
	raw := newStubChannel(false, false, nil)
	_, err := New(raw)
	assert.ErrorAs(t, err, new(*HidppNotSupportedError))
}

func TestSwIDRotation(t *testing.T) {
	raw := newStubChannel(true, true, nil)
	ch, err := New(raw)
	require.NoError(t, err)
	defer ch.Close()

	ch.SetSwID(nibble.FromLo(1))
	ch.SetRotatingSwID(true)

	var got []uint8
	for i := 0; i < 17; i++ {
		got = append(got, ch.GetSwID().ToLo())
	}

	want := []uint8{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 1, 2}
	assert.Equal(t, want, got)
	for _, v := range got {
		assert.NotZero(t, v)
	}
}

func TestSwID_NonRotating(t *testing.T) {
	raw := newStubChannel(true, true, nil)
	ch, err := New(raw)
	require.NoError(t, err)
	defer ch.Close()

	ch.SetSwID(nibble.FromLo(5))
	assert.Equal(t, uint8(5), ch.GetSwID().ToLo())
	assert.Equal(t, uint8(5), ch.GetSwID().ToLo())
}

func TestRemoveMsgListener_NeverAdded(t *testing.T) {
	raw := newStubChannel(true, true, nil)
	ch, err := New(raw)
	require.NoError(t, err)
	defer ch.Close()

	assert.False(t, ch.RemoveMsgListener(0xDEADBEEF))
}

func TestSend_NoResponseOnClose(t *testing.T) {
	raw := newStubChannel(true, true, nil)
	ch, err := New(raw)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := ch.Send(ShortMessage{0x02, 0x00, 0x01, 0x00, 0x00, 0x00}, func(HidppMessage) bool {
			return false
		})
		done <- err
	}()

	// Give the Send call time to enqueue before shutting down.
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, ch.Close())

	err = <-done
	assert.ErrorAs(t, err, new(*NoResponseError))
}

func TestSend_MessageTypeNotSupported(t *testing.T) {
	raw := newStubChannel(true, false, nil)
	ch, err := New(raw)
	require.NoError(t, err)
	defer ch.Close()

	_, err = ch.Send(LongMessage{}, func(HidppMessage) bool { return true })
	assert.ErrorAs(t, err, new(*MessageTypeNotSupportedError))
}

func TestSend_DeliversMatchingReply(t *testing.T) {
	reply := append([]byte{ShortReportID}, 0x02, 0x00, 0x01, 0x01, 0x00, 0x00)

	raw := newStubChannel(true, true, nil)
	raw.afterWrite[1] = [][]byte{reply}

	ch, err := New(raw)
	require.NoError(t, err)
	defer ch.Close()

	resp, err := ch.Send(ShortMessage{0x02, 0x00, 0x01, 0x01, 0x00, 0x00}, func(msg HidppMessage) bool {
		short, ok := msg.(ShortMessage)
		return ok && short[0] == 0x02
	})
	require.NoError(t, err)
	assert.Equal(t, ShortMessage{0x02, 0x00, 0x01, 0x01, 0x00, 0x00}, resp)
}

func TestAddMsgListener_ReceivesUnmatched(t *testing.T) {
	notification := append([]byte{ShortReportID}, 0xFF, 0x41, 0x02, 0xAB, 0xCD, 0x00)

	raw := newStubChannel(true, true, [][]byte{notification})
	ch, err := New(raw)
	require.NoError(t, err)
	defer ch.Close()

	received := make(chan HidppMessage, 1)
	ch.AddMsgListener(func(msg HidppMessage, matched bool) {
		if !matched {
			received <- msg
		}
	})

	select {
	case msg := <-received:
		assert.Equal(t, ShortMessage{0xFF, 0x41, 0x02, 0xAB, 0xCD, 0x00}, msg)
	case <-time.After(time.Second):
		t.Fatal("listener never received notification")
	}
}
