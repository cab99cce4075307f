// Package version хранит сведения о сборке, подставляемые через -ldflags:
//
//	go build -ldflags "-X github.com/vladislavdragonenkov/whiskies/internal/version.version=v1.2.0"
package version

import (
	"fmt"
	"runtime"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// BuildInfo содержит сведения о сборке для CLI и /healthz.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
}

// Get возвращает сведения о текущей сборке.
func Get() BuildInfo {
	return BuildInfo{Version: version, Commit: commit, Date: date, GoVersion: runtime.Version()}
}

// GetVersion возвращает версию сборки.
func GetVersion() string { return version }

func String() string {
	info := Get()
	return fmt.Sprintf("version=%s commit=%s date=%s go=%s", info.Version, info.Commit, info.Date, info.GoVersion)
}
