package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dmarkhas/huddle/internal/domain"
)

// Registry is the authoritative room -> member mapping.
// Member order is join order. A room with zero members is deleted,
// never left as an empty record.
type Registry struct {
	mu    sync.Mutex
	rooms map[domain.RoomID][]domain.ParticipantID
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[domain.RoomID][]domain.ParticipantID)}
}

// Join appends pid to the room, creating the room on first join.
// It returns the members present before the join, in join order,
// or domain.ErrRoomFull without mutating anything.
func (r *Registry) Join(room domain.RoomID, pid domain.ParticipantID) ([]domain.ParticipantID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members := r.rooms[room]
	if len(members) >= domain.MaxRoomMembers {
		log.Warn().Str("module", "app.registry").Str("room", string(room)).Int("members", len(members)).Msg("join rejected: room full")
		return nil, domain.ErrRoomFull
	}
	others := make([]domain.ParticipantID, len(members))
	copy(others, members)
	r.rooms[room] = append(members, pid)
	log.Info().Str("module", "app.registry").Str("room", string(room)).Str("pid", string(pid)).Int("members", len(members)+1).Msg("joined room")
	return others, nil
}

// Leave removes pid from the room and returns the remaining members.
// Leaving a room pid is not in is a no-op. The last leave deletes
// the room entry.
func (r *Registry) Leave(room domain.RoomID, pid domain.ParticipantID) []domain.ParticipantID {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.rooms[room]
	if !ok {
		return nil
	}
	for i, id := range members {
		if id == pid {
			members = append(members[:i], members[i+1:]...)
			if len(members) == 0 {
				delete(r.rooms, room)
				log.Info().Str("module", "app.registry").Str("room", string(room)).Msg("room deleted")
				return nil
			}
			r.rooms[room] = members
			log.Info().Str("module", "app.registry").Str("room", string(room)).Str("pid", string(pid)).Int("members", len(members)).Msg("left room")
			break
		}
	}
	remaining := make([]domain.ParticipantID, len(members))
	copy(remaining, members)
	return remaining
}

// MembersOf returns a snapshot of the room's members in join order.
func (r *Registry) MembersOf(room domain.RoomID) []domain.ParticipantID {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.rooms[room]
	if !ok {
		return nil
	}
	out := make([]domain.ParticipantID, len(members))
	copy(out, members)
	return out
}

// MemberCount reports the room's size; 0 means the room does not exist.
func (r *Registry) MemberCount(room domain.RoomID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms[room])
}

// RoomInfo is a read-only view for APIs.
type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"member_count"`
}

func (r *Registry) List() []RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RoomInfo, 0, len(r.rooms))
	for id, members := range r.rooms {
		out = append(out, RoomInfo{ID: id, MemberCount: len(members)})
	}
	return out
}
