package config

const (
	EnvPrefix = "PRESSING"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	// DefaultAPIBaseURL is the preview backend used when nothing is configured.
	DefaultAPIBaseURL = "https://pressing-api-preview.up.railway.app/api"

	SessionStoreFile   = "file"
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"

	DraftStoreRedis  = "redis"
	DraftStoreMemory = "memory"
)

const (
	EnvAppEnv           = "PRESSING_APP_ENV"
	EnvPort             = "PRESSING_APP_PORT"
	EnvLogLevel         = "PRESSING_LOG_LEVEL"
	EnvAPIURL           = "PRESSING_API_URL"
	EnvNextPublicAPIURL = "NEXT_PUBLIC_API_URL"
	EnvAPITimeout       = "PRESSING_API_TIMEOUT"
	EnvAPIRetries       = "PRESSING_API_RETRIES"
	EnvWSURL            = "PRESSING_WS_URL"
	EnvSessionStore     = "PRESSING_SESSION_STORE"
	EnvDraftStore       = "PRESSING_WIZARD_DRAFT_STORE"
	EnvRedisURL         = "PRESSING_REDIS_URL"
	EnvRedisAddr        = "PRESSING_REDIS_ADDR"
)
