package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dmarkhas/huddle/internal/domain"
)

// relayEnvelope covers offer, answer and ice-candidate in both directions.
// The negotiation body is never parsed, only re-stamped with the sender.
type relayEnvelope struct {
	Type      string               `json:"type"`
	To        domain.ParticipantID `json:"to,omitempty"`
	From      domain.ParticipantID `json:"from,omitempty"`
	Offer     json.RawMessage      `json:"offer,omitempty"`
	Answer    json.RawMessage      `json:"answer,omitempty"`
	Candidate json.RawMessage      `json:"candidate,omitempty"`
}

// handleRelay forwards a targeted negotiation message to its addressee.
// Delivery is best-effort: an unknown or slow target means the frame is
// dropped and the sender is not told.
func (ctl *WSController) handleRelay(pid domain.ParticipantID, kind string, data []byte) {
	if _, ok := ctl.Coord.RoomOf(pid); !ok {
		log.Debug().Str("module", "signal").Str("pid", string(pid)).Str("kind", kind).Msg("relay before join, dropped")
		return
	}

	var p relayEnvelope
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("pid", string(pid)).Str("kind", kind).Msg("bad relay payload")
		return
	}
	if p.To == "" {
		log.Debug().Str("module", "signal").Str("pid", string(pid)).Str("kind", kind).Msg("relay without target, dropped")
		return
	}

	out := relayEnvelope{Type: kind, From: pid}
	switch kind {
	case "offer":
		out.Offer = p.Offer
	case "answer":
		out.Answer = p.Answer
	default:
		out.Candidate = p.Candidate
	}
	frame, err := json.Marshal(out)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("marshal relay")
		return
	}
	ctl.Coord.SendTo(p.To, frame)
}
