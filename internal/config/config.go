package config

import "time"

type Config interface {
	EnvConfig
	BackendConfig
	GuardConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
}

// BackendConfig describes how to reach the partner backend service. Every
// business operation lives behind it; the portal only consumes and forwards.
type BackendConfig interface {
	GetBackendURL() string
	EmbeddedBackend() bool
	GetBackendPort() string
	GetBackendSecret() string
}

// GuardConfig tunes the single-tab session guard.
type GuardConfig interface {
	GetProbeTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
