package core

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/dkeye/Playroom/internal/domain"
	"github.com/dkeye/Playroom/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Room is the runtime side of a domain.Room: the attached transports and
// the lock that serializes every effect on the room.
//
// All methods except Code, Lock and Unlock require the lock to be held.
// The room never closes transports on its own; callers decide that.
type Room struct {
	code domain.Code

	mu        sync.Mutex
	meta      *domain.Room
	conns     map[domain.MemberID]SignalConnection
	latencyAt map[domain.MemberID]time.Time
	touched   time.Time
	closed    bool
}

func NewRoom(meta *domain.Room) *Room {
	return &Room{
		code:      meta.Code,
		meta:      meta,
		conns:     make(map[domain.MemberID]SignalConnection),
		latencyAt: make(map[domain.MemberID]time.Time),
		touched:   meta.CreatedAt,
	}
}

func (r *Room) Code() domain.Code { return r.code }

func (r *Room) Lock()   { r.mu.Lock() }
func (r *Room) Unlock() { r.mu.Unlock() }

func (r *Room) Meta() *domain.Room { return r.meta }

func (r *Room) Closed() bool { return r.closed }

// MarkClosed flags the room dead and hands back every attached transport.
func (r *Room) MarkClosed() []SignalConnection {
	r.closed = true
	out := make([]SignalConnection, 0, len(r.conns))
	for id, c := range r.conns {
		out = append(out, c)
		delete(r.conns, id)
	}
	return out
}

// Attach binds c to member id and returns the transport it replaced, if any.
func (r *Room) Attach(id domain.MemberID, c SignalConnection) SignalConnection {
	prev := r.conns[id]
	r.conns[id] = c
	return prev
}

// Detach unbinds c from id only if c is still the current transport.
func (r *Room) Detach(id domain.MemberID, c SignalConnection) bool {
	if cur, ok := r.conns[id]; !ok || cur != c {
		return false
	}
	delete(r.conns, id)
	return true
}

func (r *Room) Conn(id domain.MemberID) (SignalConnection, bool) {
	c, ok := r.conns[id]
	return c, ok
}

// IsCurrent reports whether c is the transport bound to id.
func (r *Room) IsCurrent(id domain.MemberID, c SignalConnection) bool {
	cur, ok := r.conns[id]
	return ok && cur == c
}

func (r *Room) ConnectedCount() int { return len(r.conns) }

func (r *Room) Touch(now time.Time) { r.touched = now }

func (r *Room) LastActivity() time.Time { return r.touched }

func (r *Room) LatencyBroadcastAt(id domain.MemberID) time.Time { return r.latencyAt[id] }

func (r *Room) SetLatencyBroadcastAt(id domain.MemberID, t time.Time) { r.latencyAt[id] = t }

func (r *Room) ForgetMember(id domain.MemberID) { delete(r.latencyAt, id) }

// Send delivers v to one member. Delivery is best effort.
func (r *Room) Send(id domain.MemberID, v any) bool {
	c, ok := r.conns[id]
	if !ok {
		return false
	}
	f, ok := encode(v)
	if !ok {
		return false
	}
	if err := c.TrySend(f); err != nil {
		metrics.FramesDropped.Inc()
		log.Debug().Err(err).Str("module", "core.room").Str("room", string(r.code)).Str("member", string(id)).Msg("send dropped")
		return false
	}
	return true
}

// SendHost delivers v to the host when it is connected.
func (r *Room) SendHost(v any) bool { return r.Send(r.meta.HostID, v) }

// Broadcast delivers v to every connected member.
func (r *Room) Broadcast(v any) PublishResult {
	res := PublishResult{}
	f, ok := encode(v)
	if !ok {
		return res
	}
	for _, c := range r.conns {
		if err := c.TrySend(f); err != nil {
			res.Dropped = append(res.Dropped, c)
			continue
		}
		res.SendTo++
	}
	if n := len(res.Dropped); n > 0 {
		metrics.FramesDropped.Add(float64(n))
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.code)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (r *Room) StateMsg() RoomStateMsg {
	return RoomStateMsg{Type: KindRoomState, Room: r.meta.Snapshot()}
}

// BroadcastState sends the current snapshot to every connected member.
func (r *Room) BroadcastState() PublishResult {
	return r.Broadcast(r.StateMsg())
}

func encode(v any) (Frame, bool) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "core.room").Msg("marshal outbound")
		return nil, false
	}
	return b, true
}
