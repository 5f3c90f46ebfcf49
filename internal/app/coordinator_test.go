package app

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmarkhas/huddle/internal/core"
	"github.com/dmarkhas/huddle/internal/domain"
)

// fakeConn records every frame it is handed.
type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	full   bool
}

func (f *fakeConn) TrySend(frame core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return errors.New("backpressure")
	}
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakeConn) Close() {}

func (f *fakeConn) recorded() []core.Frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.Frame, len(f.frames))
	copy(out, f.frames)
	return out
}

func newTestCoordinator() *Coordinator {
	return NewCoordinator(NewRegistry())
}

func connect(t *testing.T, c *Coordinator, pid domain.ParticipantID) *fakeConn {
	t.Helper()
	conn := &fakeConn{}
	c.Connect(pid, conn)
	return conn
}

func TestCoordinator_JoinReturnsExistingPeers(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator()
	room := domain.RoomID("abc")

	connect(t, c, "X")
	others, err := c.Join("X", room)
	req.NoError(err)
	req.Empty(others)

	connect(t, c, "Y")
	others, err = c.Join("Y", room)
	req.NoError(err)
	req.Equal([]domain.ParticipantID{"X"}, others)

	got, ok := c.RoomOf("Y")
	req.True(ok)
	req.Equal(room, got)
}

func TestCoordinator_SecondJoinRejected(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator()

	connect(t, c, "X")
	_, err := c.Join("X", "abc")
	req.NoError(err)

	_, err = c.Join("X", "def")
	req.ErrorIs(err, ErrAlreadyJoined)

	room, ok := c.RoomOf("X")
	req.True(ok)
	req.Equal(domain.RoomID("abc"), room)
}

func TestCoordinator_JoinWithoutConnect(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator()

	_, err := c.Join("ghost", "abc")
	req.Error(err)
}

func TestCoordinator_RoomFullSurfaced(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator()
	room := domain.RoomID("abc")

	for i := 0; i < domain.MaxRoomMembers; i++ {
		pid := domain.ParticipantID(fmt.Sprintf("p%d", i))
		connect(t, c, pid)
		_, err := c.Join(pid, room)
		req.NoError(err)
	}

	connect(t, c, "late")
	_, err := c.Join("late", room)
	req.ErrorIs(err, domain.ErrRoomFull)

	// The rejected participant stays connected and roomless.
	_, ok := c.RoomOf("late")
	req.False(ok)
}

func TestCoordinator_SendTo(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator()

	target := connect(t, c, "B")
	req.True(c.SendTo("B", core.Frame("hello")))
	req.Equal([]core.Frame{core.Frame("hello")}, target.recorded())

	// Unknown targets are a silent drop, reported via the advisory bool.
	req.False(c.SendTo("nobody", core.Frame("lost")))
}

func TestCoordinator_SendTo_Backpressure(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator()

	conn := &fakeConn{full: true}
	c.Connect("B", conn)
	req.False(c.SendTo("B", core.Frame("dropped")))
}

func TestCoordinator_SendTo_FIFOPerPair(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator()

	target := connect(t, c, "B")
	const n = 50
	for i := 0; i < n; i++ {
		req.True(c.SendTo("B", core.Frame(fmt.Sprintf("msg-%03d", i))))
	}

	frames := target.recorded()
	req.Len(frames, n)
	for i, f := range frames {
		req.Equal(fmt.Sprintf("msg-%03d", i), string(f))
	}
}

func TestCoordinator_BroadcastExcludesSender(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator()
	room := domain.RoomID("abc")

	sender := connect(t, c, "X")
	peer1 := connect(t, c, "Y")
	peer2 := connect(t, c, "Z")
	outsider := connect(t, c, "O")

	for _, pid := range []domain.ParticipantID{"X", "Y", "Z"} {
		_, err := c.Join(pid, room)
		req.NoError(err)
	}
	_, err := c.Join("O", "other")
	req.NoError(err)

	sent := c.Broadcast("X", core.Frame("hi"))
	req.Equal(2, sent)
	req.Equal([]core.Frame{core.Frame("hi")}, peer1.recorded())
	req.Equal([]core.Frame{core.Frame("hi")}, peer2.recorded())
	req.Empty(sender.recorded())
	req.Empty(outsider.recorded())
}

func TestCoordinator_BroadcastBeforeJoin(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator()

	connect(t, c, "X")
	req.Zero(c.Broadcast("X", core.Frame("hi")))
}

func TestCoordinator_Disconnect(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator()
	room := domain.RoomID("abc")

	connect(t, c, "X")
	connect(t, c, "Y")
	for _, pid := range []domain.ParticipantID{"X", "Y"} {
		_, err := c.Join(pid, room)
		req.NoError(err)
	}

	gotRoom, remaining, ok := c.Disconnect("X")
	req.True(ok)
	req.Equal(room, gotRoom)
	req.Equal([]domain.ParticipantID{"Y"}, remaining)

	// Identifier is gone from the directory immediately.
	req.False(c.SendTo("X", core.Frame("late")))

	// Repeated disconnects change nothing.
	_, _, ok = c.Disconnect("X")
	req.False(ok)

	// A later join observes only the survivor.
	connect(t, c, "W")
	others, err := c.Join("W", room)
	req.NoError(err)
	req.Equal([]domain.ParticipantID{"Y"}, others)
}

func TestCoordinator_DisconnectBeforeJoin(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator()

	connect(t, c, "X")
	room, remaining, ok := c.Disconnect("X")
	req.True(ok)
	req.Empty(room)
	req.Nil(remaining)
}

func TestCoordinator_Rooms(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator()

	connect(t, c, "X")
	_, err := c.Join("X", "abc")
	req.NoError(err)

	infos := c.Rooms()
	req.Len(infos, 1)
	req.Equal(domain.RoomID("abc"), infos[0].ID)
	req.Equal(1, infos[0].MemberCount)
}
