package orch_test

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Playroom/internal/adapters/rtc"
	"github.com/dkeye/Playroom/internal/app"
	"github.com/dkeye/Playroom/internal/app/orch"
	"github.com/dkeye/Playroom/internal/core"
	"github.com/dkeye/Playroom/internal/domain"
	"github.com/stretchr/testify/require"
)

// recConn records every frame it accepts.
type recConn struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
	full   bool
}

func (c *recConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.ErrConnClosed
	}
	if c.full {
		return core.ErrBackpressure
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *recConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *recConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *recConn) setFull(full bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.full = full
}

func (c *recConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = nil
}

// wire is a union of every outbound message shape.
type wire struct {
	Type         string           `json:"type"`
	MemberID     domain.MemberID  `json:"memberId"`
	FromMemberID domain.MemberID  `json:"fromMemberId"`
	Slot         int              `json:"slot"`
	IsHost       bool             `json:"isHost"`
	Reason       string           `json:"reason"`
	Preset       string           `json:"preset"`
	LatencyMs    int              `json:"latencyMs"`
	Payload      json.RawMessage  `json:"payload"`
	Signal       json.RawMessage  `json:"signal"`
	Room         domain.Snapshot  `json:"room"`
	Entry        domain.ChatEntry `json:"entry"`

	raw core.Frame
}

func (c *recConn) messages(t *testing.T) []wire {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]wire, 0, len(c.frames))
	for _, f := range c.frames {
		var w wire
		require.NoError(t, json.Unmarshal(f, &w))
		w.raw = f
		out = append(out, w)
	}
	return out
}

func (c *recConn) kinds(t *testing.T) []string {
	t.Helper()
	msgs := c.messages(t)
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Type)
	}
	return out
}

func (c *recConn) ofKind(t *testing.T, kind string) []wire {
	t.Helper()
	var out []wire
	for _, m := range c.messages(t) {
		if m.Type == kind {
			out = append(out, m)
		}
	}
	return out
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type harness struct {
	t        *testing.T
	o        *orch.Orchestrator
	clk      *clock
	code     domain.Code
	host     domain.MemberID
	hostConn *recConn
}

func newHarness(t *testing.T, tweak ...func(*orch.Settings)) *harness {
	t.Helper()
	s := orch.DefaultSettings()
	for _, fn := range tweak {
		fn(&s)
	}
	o := orch.New(app.NewRegistry(nil), rtc.Validator{}, s)
	clk := &clock{t: time.UnixMilli(1_700_000_000_000)}
	o.Now = clk.now

	adm, err := o.CreateSession(orch.CreateParams{HostName: "Host"})
	require.NoError(t, err)
	h := &harness{t: t, o: o, clk: clk, code: adm.Code, host: adm.MemberID}
	h.hostConn = h.bind(adm.MemberID)
	return h
}

func (h *harness) join(name string) domain.MemberID {
	h.t.Helper()
	adm, err := h.o.JoinSession(string(h.code), orch.JoinParams{DisplayName: name})
	require.NoError(h.t, err)
	return adm.MemberID
}

func (h *harness) bind(id domain.MemberID) *recConn {
	h.t.Helper()
	c := &recConn{}
	require.NoError(h.t, h.o.Bind(h.code, id, c))
	return c
}

// guest joins and binds a new member, then clears every recorded frame.
func (h *harness) guest(name string) (domain.MemberID, *recConn) {
	h.t.Helper()
	id := h.join(name)
	c := h.bind(id)
	h.hostConn.reset()
	c.reset()
	return id, c
}

func (h *harness) send(id domain.MemberID, conn core.SignalConnection, v any) {
	h.t.Helper()
	data, err := json.Marshal(v)
	require.NoError(h.t, err)
	h.o.Handle(h.code, id, conn, data)
}

func (h *harness) snapshot() domain.Snapshot {
	h.t.Helper()
	snap, err := h.o.GetSession(string(h.code))
	require.NoError(h.t, err)
	return snap
}

func (h *harness) member(id domain.MemberID) domain.MemberView {
	h.t.Helper()
	m, ok := h.snapshot().Member(id)
	require.True(h.t, ok, "member %s missing", id)
	return m
}

type obj = map[string]any
