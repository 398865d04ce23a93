package orch

import (
	"math"

	"github.com/dkeye/Playroom/internal/core"
)

const MaxLatencyMs = 5000

type pingPayload struct {
	T     *float64 `json:"t"`
	RTTMs *float64 `json:"rttMs"`
}

// handlePing answers the sender directly and rebroadcasts the latency only
// when it moved noticeably or the last broadcast is old enough.
func (o *Orchestrator) handlePing(in *inbound) error {
	var p pingPayload
	if err := decode(in.data, &p); err != nil {
		return err
	}
	if p.T == nil {
		return errBadPayload
	}
	nowMs := in.now.UnixMilli()
	estimate := float64(nowMs) - *p.T
	if p.RTTMs != nil {
		estimate = *p.RTTMs
	}
	latency := int(math.Max(0, math.Min(MaxLatencyMs, math.Round(estimate))))

	m := in.from
	prev := m.LatencyMs
	m.LatencyMs = &latency

	in.room.Send(m.ID, core.PongMsg{Type: core.KindPong, T: int64(*p.T), ServerTime: nowMs, LatencyMs: latency})

	significant := prev == nil || abs(latency-*prev) >= o.Settings.LatencyDeltaMs
	if significant || in.now.Sub(in.room.LatencyBroadcastAt(m.ID)) >= o.Settings.LatencyCooldown {
		in.room.Broadcast(core.MemberLatencyMsg{Type: core.KindMemberLatency, MemberID: m.ID, LatencyMs: latency})
		in.room.SetLatencyBroadcastAt(m.ID, in.now)
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
