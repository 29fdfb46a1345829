package config

import (
	"os"
	"path/filepath"
)

// SessionConfig controls where credentials live and how bootstrap treats outages.
type SessionConfig struct {
	Path string
	// PreserveOnNetworkError keeps a cached session when /auth/me cannot be
	// reached at all. Rejections always clear it.
	PreserveOnNetworkError bool
}

func loadSession(file fileSession) SessionConfig {
	return SessionConfig{
		Path:                   envOrDefault(envSessionPath, stringOr(file.Path, defaultSessionPath())),
		PreserveOnNetworkError: boolEnvOrDefault(envSessionPreserve, boolOr(file.PreserveOnNetworkError, false)),
	}
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "." + defaultSessionDir + "-" + defaultSessionFile
	}
	return filepath.Join(dir, defaultSessionDir, defaultSessionFile)
}
