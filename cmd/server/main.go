package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	router "github.com/dkeye/Playroom/internal/adapters/http"
	"github.com/dkeye/Playroom/internal/adapters/rtc"
	"github.com/dkeye/Playroom/internal/app"
	"github.com/dkeye/Playroom/internal/app/orch"
	"github.com/dkeye/Playroom/internal/config"
)

func settingsFrom(cfg *config.Config) orch.Settings {
	return orch.Settings{
		HostGrace:       cfg.Room.HostGrace,
		MemberGrace:     cfg.Room.MemberGrace,
		ChatCooldown:    cfg.Room.ChatCooldown,
		ResyncCooldown:  cfg.Room.ResyncCooldown,
		LatencyCooldown: cfg.Room.LatencyCooldown,
		LatencyDeltaMs:  cfg.Room.LatencyDeltaMs,
		IdleTTL:         cfg.Room.IdleTTL,
		SweepInterval:   cfg.Room.SweepInterval,
	}
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && lvl != zerolog.NoLevel {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.Mode == "release" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	reg := app.NewRegistry(nil)
	o := orch.New(reg, rtc.Validator{}, settingsFrom(cfg))

	r := router.SetupRouter(ctx, cfg, o)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg conc.WaitGroup
	wg.Go(func() { o.Run(ctx) })
	wg.Go(func() {
		log.Info().Str("addr", addr).Msg("Playroom server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	})

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	wg.Wait()
	log.Info().Msg("Server exited gracefully")
}
