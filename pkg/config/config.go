package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/pressing-admin/pkg/env"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	API     APIConfig
	Socket  SocketConfig
	Session SessionConfig
	Redis   RedisConfig
	Wizard  WizardConfig
	Board   BoardConfig
	CORS    CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.API.ensureBaseURL(); err != nil {
		return nil, err
	}
	if err := cfg.Socket.ensureURL(cfg.API.BaseURL); err != nil {
		return nil, err
	}
	if err := cfg.validateRedis(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PRESSING_APP_ENV" default:"dev"`
	Port         string `envconfig:"PRESSING_APP_PORT" default:"8090"`
	LogLevel     string `envconfig:"PRESSING_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PRESSING_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// APIConfig describes how the dashboard reaches the pressing backend.
type APIConfig struct {
	BaseURL   string        `envconfig:"PRESSING_API_URL"`
	Timeout   time.Duration `envconfig:"PRESSING_API_TIMEOUT" default:"10s"`
	Retries   int           `envconfig:"PRESSING_API_RETRIES" default:"3"`
	RetryBase time.Duration `envconfig:"PRESSING_API_RETRY_BASE" default:"1s"`
	LoginPath string        `envconfig:"PRESSING_API_LOGIN_PATH" default:"/auth/login"`
	// LoginRoute is where operators are sent after the backend rejects the session.
	LoginRoute string `envconfig:"PRESSING_LOGIN_ROUTE" default:"/login"`
}

// SocketConfig drives the notification websocket.
type SocketConfig struct {
	URL                  string        `envconfig:"PRESSING_WS_URL"`
	Path                 string        `envconfig:"PRESSING_WS_PATH" default:"/ws"`
	HeartbeatInterval    time.Duration `envconfig:"PRESSING_WS_HEARTBEAT" default:"30s"`
	ReconnectBase        time.Duration `envconfig:"PRESSING_WS_RECONNECT_BASE" default:"3s"`
	MaxReconnectAttempts int           `envconfig:"PRESSING_WS_MAX_RECONNECT_ATTEMPTS" default:"5"`
	FeedSize             int           `envconfig:"PRESSING_WS_FEED_SIZE" default:"50"`
}

type SessionConfig struct {
	Store    string `envconfig:"PRESSING_SESSION_STORE" default:"file"`
	FilePath string `envconfig:"PRESSING_SESSION_FILE" default:".pressing-session.json"`
	RedisKey string `envconfig:"PRESSING_SESSION_REDIS_KEY" default:"dashboard"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PRESSING_REDIS_URL"`
	Address      string        `envconfig:"PRESSING_REDIS_ADDR"`
	Password     string        `envconfig:"PRESSING_REDIS_PASSWORD"`
	DB           int           `envconfig:"PRESSING_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PRESSING_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PRESSING_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PRESSING_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PRESSING_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PRESSING_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type WizardConfig struct {
	DraftStore string        `envconfig:"PRESSING_WIZARD_DRAFT_STORE" default:"memory"`
	DraftTTL   time.Duration `envconfig:"PRESSING_WIZARD_DRAFT_TTL" default:"2h"`
}

type BoardConfig struct {
	RefreshInterval time.Duration `envconfig:"PRESSING_BOARD_REFRESH_INTERVAL" default:"1m"`
	PerPage         int           `envconfig:"PRESSING_BOARD_PER_PAGE" default:"50"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"PRESSING_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a *APIConfig) ensureBaseURL() error {
	if strings.TrimSpace(a.BaseURL) == "" {
		a.BaseURL = env.Get(EnvNextPublicAPIURL, DefaultAPIBaseURL)
	}
	parsed, err := url.Parse(strings.TrimSpace(a.BaseURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("%s must be an absolute url, got %q", EnvAPIURL, a.BaseURL)
	}
	a.BaseURL = strings.TrimRight(parsed.String(), "/")
	if a.Retries < 0 {
		return fmt.Errorf("%s must not be negative", EnvAPIRetries)
	}
	return nil
}

func (s *SocketConfig) ensureURL(apiBase string) error {
	if strings.TrimSpace(s.URL) != "" {
		return nil
	}
	parsed, err := url.Parse(apiBase)
	if err != nil {
		return fmt.Errorf("deriving socket url: %w", err)
	}
	switch parsed.Scheme {
	case "https":
		parsed.Scheme = "wss"
	default:
		parsed.Scheme = "ws"
	}
	// The API base usually carries an /api suffix the socket endpoint does not share.
	parsed.Path = "/" + strings.TrimLeft(s.Path, "/")
	parsed.RawQuery = ""
	s.URL = parsed.String()
	return nil
}

func (c *Config) validateRedis() error {
	needsRedis := strings.EqualFold(c.Session.Store, SessionStoreRedis) ||
		strings.EqualFold(c.Wizard.DraftStore, DraftStoreRedis)
	if needsRedis && !c.Redis.Enabled() {
		return fmt.Errorf("either %s or %s is required when a redis store is selected", EnvRedisURL, EnvRedisAddr)
	}
	return nil
}
