package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type RoomConfig struct {
	HostGrace       time.Duration `mapstructure:"host_grace"`
	MemberGrace     time.Duration `mapstructure:"member_grace"`
	ChatCooldown    time.Duration `mapstructure:"chat_cooldown"`
	ResyncCooldown  time.Duration `mapstructure:"resync_cooldown"`
	LatencyCooldown time.Duration `mapstructure:"latency_cooldown"`
	LatencyDeltaMs  int           `mapstructure:"latency_delta_ms"`
	IdleTTL         time.Duration `mapstructure:"idle_ttl"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
	SendBuffer      int           `mapstructure:"send_buffer"`
}

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	Secret     string        `mapstructure:"secret"`
	LogLevel   string        `mapstructure:"log_level"`
	ICEServers []string      `mapstructure:"ice_servers"`
	Room       RoomConfig    `mapstructure:"room"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 131072)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("secret", "change-me")
	v.SetDefault("log_level", "info")
	v.SetDefault("ice_servers", []string{"stun:stun.l.google.com:19302"})

	v.SetDefault("room.host_grace", "30s")
	v.SetDefault("room.member_grace", "60s")
	v.SetDefault("room.chat_cooldown", "750ms")
	v.SetDefault("room.resync_cooldown", "3s")
	v.SetDefault("room.latency_cooldown", "5s")
	v.SetDefault("room.latency_delta_ms", 15)
	v.SetDefault("room.idle_ttl", "30m")
	v.SetDefault("room.sweep_interval", "1m")
	v.SetDefault("room.send_buffer", 64)
}

// Load reads config/config.<CONFIG_ENV>.yaml on top of the defaults.
// PLAYROOM_* environment variables override both (room.host_grace is
// PLAYROOM_ROOM_HOST_GRACE).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("PLAYROOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("static", cfg.StaticPath).Msg("config ready")
	return &cfg, nil
}
