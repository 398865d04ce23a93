package http

import (
	"context"
	nethttp "net/http"

	"github.com/dkeye/Playroom/internal/adapters/rtc"
	"github.com/dkeye/Playroom/internal/adapters/signal"
	"github.com/dkeye/Playroom/internal/app/orch"
	"github.com/dkeye/Playroom/internal/config"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24, HttpOnly: true})
	r.Use(sessions.Sessions("PlayroomSessions", store))

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(nethttp.StatusOK, gin.H{"status": "ok", "rooms": o.Registry.Len()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")

	h := &SessionHandlers{Orch: o}
	api.POST("/sessions", h.Create)
	api.GET("/sessions/:code", h.Get)
	api.POST("/sessions/:code/join", h.Join)
	api.POST("/sessions/:code/kick", h.Kick)
	api.DELETE("/sessions/:code", h.Close)

	iceServers := rtc.ICEServers(cfg.ICEServers)
	api.GET("/ice-servers", func(c *gin.Context) {
		c.JSON(nethttp.StatusOK, gin.H{"iceServers": iceServers})
	})

	ctrl := signal.NewSignalWSController(o, cfg.ReadLimit, cfg.PingPeriod, cfg.Room.SendBuffer)
	api.GET("/ws", func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("remote", c.ClientIP()).Msg("ws endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	return r
}
