package signal

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dkeye/Playroom/internal/app/orch"
	"github.com/dkeye/Playroom/internal/core"
	"github.com/dkeye/Playroom/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Session keys remembered by the lifecycle handlers.
const (
	SessionCode   = "room_code"
	SessionMember = "member_id"
)

// ConnState tracks one physical transport: Pending until bound to a
// member, Bound once the gateway accepted it, Active after the first
// inbound message, Closed at the end.
type ConnState int32

const (
	StatePending ConnState = iota
	StateBound
	StateActive
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateBound:
		return "bound"
	case StateActive:
		return "active"
	default:
		return "closed"
	}
}

type SignalWSController struct {
	Orch       *orch.Orchestrator
	ReadLimit  int64
	PingPeriod time.Duration
	SendBuffer int

	upgrader websocket.Upgrader
}

func NewSignalWSController(o *orch.Orchestrator, readLimit int64, pingPeriod time.Duration, sendBuffer int) *SignalWSController {
	if sendBuffer <= 0 {
		sendBuffer = 64
	}
	if pingPeriod <= 0 {
		pingPeriod = 54 * time.Second
	}
	return &SignalWSController{
		Orch:       o,
		ReadLimit:  readLimit,
		PingPeriod: pingPeriod,
		SendBuffer: sendBuffer,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// WsSignalConn implements core.SignalConnection over a websocket. Frames
// are queued for the write pump; a full queue drops the frame.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
	state  atomic.Int32
}

func newWsSignalConn(ws *websocket.Conn, buffer int) *WsSignalConn {
	return &WsSignalConn{conn: ws, send: make(chan core.Frame, buffer)}
}

func (c *WsSignalConn) State() ConnState { return ConnState(c.state.Load()) }

func (c *WsSignalConn) setState(s ConnState) { c.state.Store(int32(s)) }

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

// Close stops accepting frames. The write pump flushes what is queued and
// then closes the socket.
func (c *WsSignalConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.setState(StateClosed)
	close(c.send)
}

// HandleSignal upgrades the request and binds it to the (code, member)
// pair from the query, falling back to the pair remembered in the session.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	rawCode, rawMember := c.Query("code"), c.Query("memberId")
	if rawCode == "" || rawMember == "" {
		sess := sessions.Default(c)
		if v, ok := sess.Get(SessionCode).(string); ok && rawCode == "" {
			rawCode = v
		}
		if v, ok := sess.Get(SessionMember).(string); ok && rawMember == "" {
			rawMember = v
		}
	}
	logger := log.With().Str("module", "signal").Str("room", rawCode).Str("member", rawMember).Logger()

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error().Err(err).Msg("ws upgrade")
		return
	}
	conn := newWsSignalConn(ws, ctl.SendBuffer)

	code, ok := domain.ParseCode(rawCode)
	id := domain.MemberID(rawMember)
	if ok {
		err = ctl.Orch.Bind(code, id, conn)
	} else {
		err = domain.ErrRoomNotFound
	}
	if err != nil {
		logger.Info().Err(err).Msg("bind rejected")
		conn.setState(StateClosed)
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown session")
		_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_ = ws.Close()
		return
	}
	conn.setState(StateBound)
	logger.Info().Msg("transport bound")

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, code, id, conn)
}
