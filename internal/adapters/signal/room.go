package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dmarkhas/huddle/internal/domain"
)

func (ctl *WSController) handleJoinRoom(pid domain.ParticipantID, conn *wsConn, data []byte) {
	if !ctl.limiter.Allow(pid) {
		log.Warn().Str("module", "signal").Str("pid", string(pid)).Msg("join rate limited")
		return
	}

	var p struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("pid", string(pid)).Msg("bad join payload")
		return
	}
	room, err := domain.NewRoomID(p.RoomID)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("pid", string(pid)).Msg("bad room id")
		return
	}

	others, err := ctl.Coord.Join(pid, room)
	switch {
	case errors.Is(err, domain.ErrRoomFull):
		ctl.sendJSON(conn, struct {
			Type string `json:"type"`
		}{"room-full"})
		return
	case err != nil:
		log.Warn().Err(err).Str("module", "signal").Str("pid", string(pid)).Str("room", string(room)).Msg("join refused")
		return
	}

	log.Info().Str("module", "signal").Str("pid", string(pid)).Str("room", string(room)).Msg("join")

	// Existing members hear about the newcomer before the newcomer gets
	// its peer list, so by the time the client starts negotiating every
	// peer already expects it.
	joined, err := json.Marshal(struct {
		Type string               `json:"type"`
		ID   domain.ParticipantID `json:"id"`
	}{"user-joined", pid})
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("marshal user-joined")
		return
	}
	for _, other := range others {
		ctl.Coord.SendTo(other, joined)
	}

	if others == nil {
		others = []domain.ParticipantID{}
	}
	ctl.sendJSON(conn, struct {
		Type  string                 `json:"type"`
		Peers []domain.ParticipantID `json:"peers"`
	}{"peers", others})
}

// onDisconnect runs once per connection when the read side ends, for any
// reason. Departure is fanned out to whoever is still in the room.
func (ctl *WSController) onDisconnect(pid domain.ParticipantID) {
	ctl.limiter.Forget(pid)

	room, remaining, ok := ctl.Coord.Disconnect(pid)
	if !ok || room == "" {
		return
	}

	left, err := json.Marshal(struct {
		Type string               `json:"type"`
		ID   domain.ParticipantID `json:"id"`
	}{"user-left", pid})
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("marshal user-left")
		return
	}
	for _, other := range remaining {
		ctl.Coord.SendTo(other, left)
	}
}
