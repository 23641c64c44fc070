package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/park285/cheese-chess/internal/obslog"
)

type AppConfig struct {
	HTTPAddr string
	WSAddr   string

	// WSOrigins are extra origin patterns accepted by the websocket handshake.
	WSOrigins []string

	RedisURL    string
	DatabaseURL string

	ChessDefaultLevel    int
	ChessEngineDelay     time.Duration
	ChessSessionTTL      time.Duration
	ChessMaxSessions     int
	ChessHistoryLimit    int
	ChessRandomSeed      int64
	ChessJanitorInterval time.Duration
	ChessPreferenceTTL   time.Duration
	MessagesDir          string

	Log obslog.Options
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		HTTPAddr:             ":8080",
		WSAddr:               ":8081",
		ChessDefaultLevel:    4,
		ChessEngineDelay:     60 * time.Millisecond,
		ChessSessionTTL:      time.Hour,
		ChessMaxSessions:     200,
		ChessHistoryLimit:    60,
		ChessJanitorInterval: time.Minute,
		ChessPreferenceTTL:   30 * 24 * time.Hour,
		Log: obslog.Options{
			Level:   "info",
			Format:  "legacy",
			Console: true,
			File:    obslog.DefaultFile,
		},
	}

	if v := strings.TrimSpace(os.Getenv("CHESS_HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_WS_ADDR")); v != "" {
		cfg.WSAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_WS_ORIGINS")); v != "" {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.WSOrigins = append(cfg.WSOrigins, o)
			}
		}
	}
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("CHESS_MESSAGES_DIR"))

	if v := strings.TrimSpace(os.Getenv("CHESS_DEFAULT_LEVEL")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ChessDefaultLevel = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_ENGINE_DELAY_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.ChessEngineDelay = time.Duration(n) * time.Millisecond
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_SESSION_TTL")); v != "" {
		if d, ok := parseSeconds(v); ok {
			cfg.ChessSessionTTL = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_JANITOR_INTERVAL")); v != "" {
		if d, ok := parseSeconds(v); ok {
			cfg.ChessJanitorInterval = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_PREFERENCE_TTL")); v != "" {
		if d, ok := parseSeconds(v); ok {
			cfg.ChessPreferenceTTL = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_MAX_SESSIONS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ChessMaxSessions = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_HISTORY_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ChessHistoryLimit = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_RANDOM_SEED")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.ChessRandomSeed = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_FORMAT")); v != "" {
		cfg.Log.Format = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_TO_CONSOLE")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Log.Console = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("LOG_CALLER")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Log.Caller = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("LOG_FILE")); v != "" {
		cfg.Log.File = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_TO_FILE")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && !b {
			cfg.Log.File = ""
		}
	}

	if cfg.ChessDefaultLevel > 10 {
		return nil, fmt.Errorf("CHESS_DEFAULT_LEVEL must be 1..10, got %d", cfg.ChessDefaultLevel)
	}
	if err := validateAddr("CHESS_HTTP_ADDR", cfg.HTTPAddr); err != nil {
		return nil, err
	}
	if err := validateAddr("CHESS_WS_ADDR", cfg.WSAddr); err != nil {
		return nil, err
	}
	if cfg.HTTPAddr == cfg.WSAddr {
		return nil, fmt.Errorf("CHESS_HTTP_ADDR and CHESS_WS_ADDR must differ (%s)", cfg.HTTPAddr)
	}
	return cfg, nil
}

// parseSeconds accepts a whole number of seconds or a Go duration ("90s", "1h").
func parseSeconds(v string) (time.Duration, bool) {
	if n, err := strconv.Atoi(v); err == nil {
		if n <= 0 {
			return 0, false
		}
		return time.Duration(n) * time.Second, true
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

func validateAddr(name, addr string) error {
	if _, port, err := net.SplitHostPort(addr); err != nil || port == "" {
		return fmt.Errorf("%s is not a host:port address: %q", name, addr)
	}
	return nil
}
