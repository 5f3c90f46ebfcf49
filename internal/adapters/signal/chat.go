package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dmarkhas/huddle/internal/domain"
)

// Chat and reactions are room broadcasts. The sender renders its own copy
// locally, so fan-out always excludes it.

func (ctl *WSController) handleChat(pid domain.ParticipantID, data []byte) {
	var p struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("pid", string(pid)).Msg("bad chat payload")
		return
	}

	frame, err := json.Marshal(struct {
		Type string               `json:"type"`
		User domain.ParticipantID `json:"user"`
		Text string               `json:"text"`
	}{"chat-message", pid, p.Text})
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("marshal chat")
		return
	}
	ctl.Coord.Broadcast(pid, frame)
}

func (ctl *WSController) handleReaction(pid domain.ParticipantID, data []byte) {
	var p struct {
		Type  string `json:"type"`
		Emoji string `json:"emoji"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("pid", string(pid)).Msg("bad reaction payload")
		return
	}

	frame, err := json.Marshal(struct {
		Type  string               `json:"type"`
		User  domain.ParticipantID `json:"user"`
		Emoji string               `json:"emoji"`
	}{"reaction", pid, p.Emoji})
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("marshal reaction")
		return
	}
	ctl.Coord.Broadcast(pid, frame)
}
