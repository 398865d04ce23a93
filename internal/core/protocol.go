package core

import (
	"encoding/json"

	"github.com/dkeye/Playroom/internal/domain"
)

// Inbound message kinds.
const (
	KindPing            = "ping"
	KindHostMedia       = "host_media"
	KindSetReady        = "set_ready"
	KindSetJoinLock     = "set_join_lock"
	KindSetVoiceEnabled = "set_voice_enabled"
	KindSetInputMute    = "set_input_mute"
	KindSetSlot         = "set_slot"
	KindInput           = "input"
	KindQualityHint     = "quality_hint"
	KindChat            = "chat"
	KindWebRTCSignal    = "webrtc_signal"
	KindStreamResync    = "stream_resync_request"
)

// Outbound-only message kinds.
const (
	KindConnected        = "connected"
	KindRoomState        = "room_state"
	KindMemberLatency    = "member_latency"
	KindRemoteInput      = "remote_input"
	KindRemoteInputReset = "remote_input_reset"
	KindInputBlocked     = "input_blocked"
	KindSessionClosed    = "session_closed"
	KindKicked           = "kicked"
	KindPong             = "pong"
)

// Closure reasons carried by session_closed.
const (
	ReasonHostClosed  = "host_closed"
	ReasonHostTimeout = "host_timeout"
	ReasonIdle        = "idle"
	ReasonKicked      = "kicked_by_host"
)

type Envelope struct {
	Type string `json:"type"`
}

type ConnectedMsg struct {
	Type     string          `json:"type"`
	MemberID domain.MemberID `json:"memberId"`
	Slot     int             `json:"slot"`
	IsHost   bool            `json:"isHost"`
}

type RoomStateMsg struct {
	Type string          `json:"type"`
	Room domain.Snapshot `json:"room"`
}

type MemberLatencyMsg struct {
	Type      string          `json:"type"`
	MemberID  domain.MemberID `json:"memberId"`
	LatencyMs int             `json:"latencyMs"`
}

type PongMsg struct {
	Type       string `json:"type"`
	T          int64  `json:"t"`
	ServerTime int64  `json:"serverTime"`
	LatencyMs  int    `json:"latencyMs"`
}

// InputMsg is used for both remote_input and input_blocked.
type InputMsg struct {
	Type     string          `json:"type"`
	MemberID domain.MemberID `json:"memberId"`
	Slot     int             `json:"slot"`
	Payload  json.RawMessage `json:"payload"`
}

type InputResetMsg struct {
	Type string `json:"type"`
	Slot int    `json:"slot"`
}

type QualityHintMsg struct {
	Type     string          `json:"type"`
	MemberID domain.MemberID `json:"memberId"`
	Slot     int             `json:"slot"`
	Preset   string          `json:"preset"`
	Reason   string          `json:"reason,omitempty"`
}

type ChatMsg struct {
	Type  string           `json:"type"`
	Entry domain.ChatEntry `json:"entry"`
}

type SignalMsg struct {
	Type         string          `json:"type"`
	FromMemberID domain.MemberID `json:"fromMemberId"`
	Signal       json.RawMessage `json:"signal"`
}

type ResyncMsg struct {
	Type     string          `json:"type"`
	MemberID domain.MemberID `json:"memberId"`
	Slot     int             `json:"slot"`
}

// ReasonMsg is used for session_closed and kicked.
type ReasonMsg struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

func InputReset(slot int) InputResetMsg {
	return InputResetMsg{Type: KindRemoteInputReset, Slot: slot}
}
