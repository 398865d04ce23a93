package http

import (
	"errors"
	nethttp "net/http"

	"github.com/dkeye/Playroom/internal/adapters/signal"
	"github.com/dkeye/Playroom/internal/app/orch"
	"github.com/dkeye/Playroom/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type createRequest struct {
	HostName   string `json:"hostName"`
	AvatarRef  string `json:"avatarRef"`
	MediaRef   string `json:"mediaRef"`
	MediaTitle string `json:"mediaTitle"`
}

type joinRequest struct {
	DisplayName string `json:"displayName"`
	AvatarRef   string `json:"avatarRef"`
}

type closeRequest struct {
	CallerMemberID string `json:"callerMemberId"`
}

type kickRequest struct {
	CallerMemberID string `json:"callerMemberId"`
	TargetMemberID string `json:"targetMemberId" binding:"required"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SessionHandlers exposes the room lifecycle over REST.
type SessionHandlers struct {
	Orch *orch.Orchestrator
}

func (h *SessionHandlers) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	adm, err := h.Orch.CreateSession(orch.CreateParams{
		HostName:   req.HostName,
		AvatarRef:  req.AvatarRef,
		MediaRef:   req.MediaRef,
		MediaTitle: req.MediaTitle,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	remember(c, adm)
	log.Info().Str("module", "adapters.http").Str("room", string(adm.Code)).Msg("session created")
	c.JSON(nethttp.StatusCreated, gin.H{
		"code":         adm.Code,
		"hostMemberId": adm.MemberID,
		"snapshot":     adm.Snapshot,
	})
}

func (h *SessionHandlers) Join(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	adm, err := h.Orch.JoinSession(c.Param("code"), orch.JoinParams{
		DisplayName: req.DisplayName,
		AvatarRef:   req.AvatarRef,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	remember(c, adm)
	c.JSON(nethttp.StatusOK, gin.H{
		"code":     adm.Code,
		"memberId": adm.MemberID,
		"snapshot": adm.Snapshot,
	})
}

func (h *SessionHandlers) Close(c *gin.Context) {
	var req closeRequest
	// body is optional: the caller may be taken from the session cookie
	_ = c.ShouldBindJSON(&req)
	caller := callerID(c, req.CallerMemberID)
	if err := h.Orch.CloseSession(c.Param("code"), caller); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"closed": true})
}

func (h *SessionHandlers) Kick(c *gin.Context) {
	var req kickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	caller := callerID(c, req.CallerMemberID)
	if err := h.Orch.KickMember(c.Param("code"), caller, domain.MemberID(req.TargetMemberID)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"kicked": true})
}

func (h *SessionHandlers) Get(c *gin.Context) {
	snap, err := h.Orch.GetSession(c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"snapshot": snap})
}

func remember(c *gin.Context, adm orch.Admission) {
	sess := sessions.Default(c)
	sess.Set(signal.SessionCode, string(adm.Code))
	sess.Set(signal.SessionMember, string(adm.MemberID))
	if err := sess.Save(); err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("session save")
	}
}

func callerID(c *gin.Context, explicit string) domain.MemberID {
	if explicit != "" {
		return domain.MemberID(explicit)
	}
	if v, ok := sessions.Default(c).Get(signal.SessionMember).(string); ok {
		return domain.MemberID(v)
	}
	return ""
}

func badRequest(c *gin.Context, err error) {
	c.JSON(nethttp.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
}

// writeError maps domain errors onto status codes. Anything unknown is a 500.
func writeError(c *gin.Context, err error) {
	status, code, msg := nethttp.StatusInternalServerError, "internal", "internal error"
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		status, code, msg = nethttp.StatusNotFound, "not_found", "session not found"
	case errors.Is(err, domain.ErrMemberNotFound):
		status, code, msg = nethttp.StatusNotFound, "member_not_found", "member not found"
	case errors.Is(err, domain.ErrForbidden):
		status, code, msg = nethttp.StatusForbidden, "forbidden", "only the host can do that"
	case errors.Is(err, domain.ErrRoomLocked):
		status, code, msg = nethttp.StatusLocked, "locked", "the host has locked this session"
	case errors.Is(err, domain.ErrRoomFull):
		status, code, msg = nethttp.StatusConflict, "full", "all player slots are taken"
	case errors.Is(err, domain.ErrNameEmpty), errors.Is(err, domain.ErrNameTooLong):
		status, code, msg = nethttp.StatusBadRequest, "invalid_name", err.Error()
	case errors.Is(err, domain.ErrCodeExhausted):
		status, code, msg = nethttp.StatusServiceUnavailable, "unavailable", "could not allocate a session code, try again"
	}
	if status == nethttp.StatusInternalServerError {
		log.Error().Err(err).Str("module", "adapters.http").Str("path", c.FullPath()).Msg("unhandled error")
	}
	c.JSON(status, errorResponse{Error: code, Message: msg})
}
