package relay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func recvFrame(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case b := <-c.Send:
		return b
	case <-time.After(time.Second):
		t.Fatalf("no frame delivered to %s", c.ConnID)
		return nil
	}
}

func assertNoFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case b := <-c.Send:
		t.Fatalf("unexpected frame delivered to %s: %s", c.ConnID, b)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFanout_DeliversToAllIncludingSender(t *testing.T) {
	req := require.New(t)
	f := NewFanout(2, 16)
	defer f.Close()

	sender, other := testClient("sender"), testClient("other")
	payload := []byte(`{"type":"newMessage"}`)

	f.Broadcast([]*Client{sender, other}, payload, nil)

	req.Equal(payload, recvFrame(t, sender), "symmetric visibility: sender gets its own message")
	req.Equal(payload, recvFrame(t, other))
}

func TestFanout_ExcludeSkipsOneClient(t *testing.T) {
	f := NewFanout(2, 16)
	defer f.Close()

	sender, other := testClient("sender"), testClient("other")
	f.Broadcast([]*Client{sender, other}, []byte("x"), sender)

	recvFrame(t, other)
	assertNoFrame(t, sender)
}

func TestFanout_SlowClientDoesNotBlockOthers(t *testing.T) {
	req := require.New(t)
	f := NewFanout(1, 16)
	defer f.Close()

	slow := NewClient("slow", Identity{}, nil, "10.0.0.2", 1)
	slow.Send <- []byte("stuck") // queue full, further frames get dropped
	healthy := testClient("healthy")

	f.Broadcast([]*Client{slow, healthy}, []byte("payload"), nil)

	req.Equal([]byte("payload"), recvFrame(t, healthy),
		"one stalled recipient never aborts delivery to the rest")
}

func TestFanout_BroadcastAfterCloseIsNoOp(t *testing.T) {
	req := require.New(t)
	f := NewFanout(1, 16)
	f.Close()

	healthy := testClient("healthy")
	req.NotPanics(func() {
		f.Broadcast([]*Client{healthy}, []byte("late presence"), nil)
	})
	assertNoFrame(t, healthy)
	f.Close() // idempotent
}

func TestFanout_ClosedClientIsIsolated(t *testing.T) {
	req := require.New(t)
	f := NewFanout(1, 16)
	defer f.Close()

	gone := testClient("gone")
	gone.Close()
	healthy := testClient("healthy")

	f.Broadcast([]*Client{gone, healthy}, []byte("payload"), nil)

	req.Equal([]byte("payload"), recvFrame(t, healthy))
}
