package web

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvListenAddr = "SIGIMAGE_LISTEN"
	EnvDevMode    = "SIGIMAGE_DEV"
	EnvStaticDir  = "SIGIMAGE_STATIC_DIR"
)

// ServerConfig contains settings for running the HTTP server.
type ServerConfig struct {
	ListenAddr string
	DevMode    bool
	StaticDir  string
}

func DefaultServerConfigFromEnv(defaultListenAddr string) (ServerConfig, error) {
	listenAddr := os.Getenv(EnvListenAddr)
	if listenAddr == "" {
		listenAddr = defaultListenAddr
	}

	devMode := false
	if raw := os.Getenv(EnvDevMode); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("%s must be a boolean (got %q): %w", EnvDevMode, raw, err)
		}
		devMode = parsed
	}

	return ServerConfig{ListenAddr: listenAddr, DevMode: devMode, StaticDir: os.Getenv(EnvStaticDir)}, nil
}
