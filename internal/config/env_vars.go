package config

import (
	"fmt"
	"os"
	"time"
)

const (
	portEnvVar          = "PORT"
	appNameVar          = "APP_NAME"
	backendURLVar       = "BACKEND_URL"
	backendPortVar      = "BACKEND_PORT"
	backendSecretVar    = "BACKEND_SECRET"
	embeddedBackendVar  = "EMBEDDED_BACKEND"
	guardProbeTimeoutMS = "GUARD_PROBE_TIMEOUT_MS"
)

type EnvVars struct{}

var _ Config = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "3000")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Partner Portal")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetBackendURL returns the base URL of the partner backend service. When the
// embedded dev backend is enabled this is derived from its listen port instead.
func (e EnvVars) GetBackendURL() string {
	if e.EmbeddedBackend() {
		return fmt.Sprintf("http://localhost%s", e.GetBackendPort())
	}
	return GetEnv(backendURLVar, "http://localhost:8080")
}

func (EnvVars) EmbeddedBackend() bool {
	return GetEnv(embeddedBackendVar, "") == "true"
}

func (e EnvVars) GetBackendPort() string {
	port := GetEnv(backendPortVar, "8080")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

// GetBackendSecret is the HS256 signing secret of the embedded dev backend.
// The real backend owns its own keys; the portal never verifies signatures.
func (EnvVars) GetBackendSecret() string {
	return GetEnv(backendSecretVar, "dev-only-secret")
}

// GetProbeTimeout bounds how long a new tab waits for an I_EXIST reply before
// presuming it is the sole active tab. The broadcast channel has no completion
// signal, so the wait has to be a fixed budget.
func (EnvVars) GetProbeTimeout() time.Duration {
	ms := GetEnv(guardProbeTimeoutMS, "200")
	d, err := time.ParseDuration(ms + "ms")
	if err != nil {
		return 200 * time.Millisecond
	}
	return d
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
