package domain

import "github.com/google/uuid"

// ParticipantID identifies one connection. Assigned by the coordinator,
// stable for the connection's lifetime, never reused.
type ParticipantID string

// NewParticipantID avoids ad-hoc uuid calls in adapters.
func NewParticipantID() ParticipantID {
	return ParticipantID(uuid.NewString())
}
