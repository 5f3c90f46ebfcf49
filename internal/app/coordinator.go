package app

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dmarkhas/huddle/internal/core"
	"github.com/dmarkhas/huddle/internal/domain"
)

var ErrAlreadyJoined = errors.New("already in a room")

// session is one participant's connection record: transport handle plus
// current room, if any.
type session struct {
	Room domain.RoomID
	Conn core.SignalConnection
}

// Coordinator owns the connection directory and routes frames between
// participants. Membership itself lives in the Registry; the coordinator
// keeps the two consistent on join and disconnect.
type Coordinator struct {
	registry *Registry

	mu       sync.RWMutex
	sessions map[domain.ParticipantID]*session
}

func NewCoordinator(registry *Registry) *Coordinator {
	return &Coordinator{
		registry: registry,
		sessions: make(map[domain.ParticipantID]*session),
	}
}

// Connect registers a participant's transport handle. The participant is
// not in any room until Join succeeds.
func (c *Coordinator) Connect(pid domain.ParticipantID, conn core.SignalConnection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[pid] = &session{Conn: conn}
	log.Info().Str("module", "app.coordinator").Str("pid", string(pid)).Msg("connected")
}

// Join puts pid into the room and returns the members that were already
// there, in join order. A second join on the same connection is rejected
// without touching the registry.
func (c *Coordinator) Join(pid domain.ParticipantID, room domain.RoomID) ([]domain.ParticipantID, error) {
	// Held across the registry call so a concurrent Disconnect cannot
	// slip between membership and the session's room assignment.
	c.mu.Lock()
	defer c.mu.Unlock()
	sess, ok := c.sessions[pid]
	if !ok {
		return nil, errors.New("no session")
	}
	if sess.Room != "" {
		return nil, ErrAlreadyJoined
	}

	others, err := c.registry.Join(room, pid)
	if err != nil {
		return nil, err
	}
	sess.Room = room
	return others, nil
}

// RoomOf reports pid's current room; ok is false when pid has not joined.
func (c *Coordinator) RoomOf(pid domain.ParticipantID) (domain.RoomID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sess, ok := c.sessions[pid]
	if !ok || sess.Room == "" {
		return "", false
	}
	return sess.Room, true
}

// SendTo delivers a frame to exactly one participant. The returned bool is
// advisory: false means the target is gone or its queue is full, and the
// frame was dropped. Callers relaying negotiation traffic ignore it.
func (c *Coordinator) SendTo(target domain.ParticipantID, f core.Frame) bool {
	c.mu.RLock()
	sess, ok := c.sessions[target]
	c.mu.RUnlock()
	if !ok {
		log.Debug().Str("module", "app.coordinator").Str("target", string(target)).Msg("drop: unknown target")
		return false
	}
	if err := sess.Conn.TrySend(f); err != nil {
		log.Debug().Err(err).Str("module", "app.coordinator").Str("target", string(target)).Msg("drop: send failed")
		return false
	}
	return true
}

// Broadcast fans a frame out to every other member of from's room and
// returns the delivered count. A participant that has not joined a room
// broadcasts to nobody.
func (c *Coordinator) Broadcast(from domain.ParticipantID, f core.Frame) int {
	room, ok := c.RoomOf(from)
	if !ok {
		return 0
	}
	sent := 0
	for _, pid := range c.registry.MembersOf(room) {
		if pid == from {
			continue
		}
		if c.SendTo(pid, f) {
			sent++
		}
	}
	return sent
}

// Disconnect removes pid from the directory and from its room, returning
// the room and the remaining members so the caller can fan out the
// departure notice. Safe to call more than once; later calls report ok
// false and change nothing.
func (c *Coordinator) Disconnect(pid domain.ParticipantID) (domain.RoomID, []domain.ParticipantID, bool) {
	c.mu.Lock()
	sess, ok := c.sessions[pid]
	if !ok {
		c.mu.Unlock()
		return "", nil, false
	}
	delete(c.sessions, pid)
	room := sess.Room
	c.mu.Unlock()

	log.Info().Str("module", "app.coordinator").Str("pid", string(pid)).Msg("disconnected")
	if room == "" {
		return "", nil, true
	}
	remaining := c.registry.Leave(room, pid)
	return room, remaining, true
}

// Rooms exposes the registry's room listing for the HTTP API.
func (c *Coordinator) Rooms() []RoomInfo {
	return c.registry.List()
}
