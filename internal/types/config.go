package types

type RunMode string

const (
	// ModeLocal is the mode for running both the API server and the cron endpoints locally
	ModeLocal RunMode = "local"
	// ModeAPI is the mode for running just the API server
	ModeAPI RunMode = "api"
	// ModeCron is the mode for running just the cron endpoints
	ModeCron RunMode = "cron"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
)
