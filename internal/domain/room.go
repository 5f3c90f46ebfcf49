// Package domain contains entities without logic, just meta-data.
package domain

import "errors"

const (
	// MaxRoomMembers caps a single room; the seventh join is rejected.
	MaxRoomMembers = 6

	MaxRoomIDLen = 64
)

var (
	ErrRoomFull    = errors.New("room full")
	ErrRoomIDEmpty = errors.New("room id empty")
)

type RoomID string

// NewRoomID validates a caller-supplied room identifier.
// Room ids are not reserved; two creators independently picking the same
// short id end up in the same room.
func NewRoomID(raw string) (RoomID, error) {
	if raw == "" {
		return "", ErrRoomIDEmpty
	}
	if len(raw) > MaxRoomIDLen {
		raw = raw[:MaxRoomIDLen]
	}
	return RoomID(raw), nil
}
