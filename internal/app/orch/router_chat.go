package orch

import (
	"github.com/google/uuid"

	"github.com/dkeye/Playroom/internal/app"
	"github.com/dkeye/Playroom/internal/core"
	"github.com/dkeye/Playroom/internal/domain"
)

func (o *Orchestrator) handleChat(in *inbound) error {
	var p struct {
		Text string `json:"text"`
	}
	if err := decode(in.data, &p); err != nil {
		return err
	}
	text := domain.Truncate(domain.CollapseSpaces(p.Text), domain.MaxChatTextLen)
	if text == "" {
		return errBadPayload
	}
	if !o.chat.Allow(app.LimiterKey(in.room.Code(), in.from.ID), in.now) {
		return errCooldown
	}

	entry := domain.ChatEntry{
		ID:           uuid.Must(uuid.NewV7()).String(),
		FromMemberID: in.from.ID,
		FromName:     in.from.DisplayName,
		FromSlot:     in.from.Slot,
		Text:         text,
		At:           in.now.UnixMilli(),
	}
	in.room.Meta().Chat.Append(entry)
	in.room.Broadcast(core.ChatMsg{Type: core.KindChat, Entry: entry})
	return nil
}
