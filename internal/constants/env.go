// Package constants provides centralized definitions of constants used throughout the application
package constants

// Environment variable names
const (
	// EnvPort is the API listen port
	EnvPort = "PORT"
	// EnvLogLevel is the logrus level name
	EnvLogLevel = "LOG_LEVEL"

	// EnvDBHost is the postgres host
	EnvDBHost = "DB_HOST"
	// EnvDBPort is the postgres port
	EnvDBPort = "DB_PORT"
	// EnvDBUser is the postgres user
	EnvDBUser = "DB_USER"
	// EnvDBPassword is the postgres password
	EnvDBPassword = "DB_PASSWORD"
	// EnvDBName is the postgres database name
	EnvDBName = "DB_NAME"
	// EnvDBSSLEnabled toggles sslmode=require
	EnvDBSSLEnabled = "DB_SSL_ENABLED"
	// EnvDBAutoMigrate toggles gorm AutoMigrate at startup
	EnvDBAutoMigrate = "DB_AUTO_MIGRATE"

	// EnvWorkerMode selects pull or push coordination with the scraping worker
	EnvWorkerMode = "WORKER_MODE"
	// EnvWorkerURL is the base URL of the push-mode worker
	EnvWorkerURL = "WORKER_URL"
	// EnvWorkerToken is the shared secret sent as X-Worker-Token
	EnvWorkerToken = "WORKER_TOKEN"

	// EnvDispatchInterval is the period of the dispatch sweep
	EnvDispatchInterval = "DISPATCH_INTERVAL"
	// EnvDispatchBatch is the number of jobs dispatched per sweep
	EnvDispatchBatch = "DISPATCH_BATCH"
	// EnvStuckSweepInterval is the period of the stuck job sweep
	EnvStuckSweepInterval = "STUCK_SWEEP_INTERVAL"
	// EnvStuckThreshold is the age after which a running job is considered stuck
	EnvStuckThreshold = "STUCK_THRESHOLD"
	// EnvNightlySchedule is the cron expression of the nightly refresh
	EnvNightlySchedule = "NIGHTLY_SCHEDULE"

	// EnvExtractorURL is the base URL of an OpenAI compatible endpoint
	EnvExtractorURL = "EXTRACTOR_URL"
	// EnvExtractorAPIKey is the bearer token for the extractor endpoint
	EnvExtractorAPIKey = "EXTRACTOR_API_KEY"
	// EnvExtractorModel is the model name sent to the extractor endpoint
	EnvExtractorModel = "EXTRACTOR_MODEL"
	// EnvExtractorTimeout bounds a single extraction
	EnvExtractorTimeout = "EXTRACTOR_TIMEOUT"

	// EnvRedisURL enables badge change notifications over redis pub/sub
	EnvRedisURL = "REDIS_URL"

	// EnvAPIURL is the orchestrator base URL used by the CLI and the agent
	EnvAPIURL = "NEON_API_URL"
	// EnvAgentConfig is the path to the agent YAML configuration
	EnvAgentConfig = "AGENT_CONFIG"
)
