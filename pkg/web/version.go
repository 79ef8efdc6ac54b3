package web

import "sync"

// VersionInfo describes the running build
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

var (
	verMu   sync.RWMutex
	version = VersionInfo{Version: "dev", Commit: "unknown", BuildTime: "unknown"}
)

// SetVersionInfo sets the build information reported by /api/status
func SetVersionInfo(v VersionInfo) {
	verMu.Lock()
	defer verMu.Unlock()
	version = v
}

// GetVersionInfo returns the build information
func GetVersionInfo() VersionInfo {
	verMu.RLock()
	defer verMu.RUnlock()
	return version
}
