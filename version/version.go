// Package version exposes build version information for menustream.
//
// Version and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/skillsenselab/menustream/version.Version=1.0.0"
package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

var (
	// Version is the release version, "dev" for local builds.
	Version = "dev"
	// GitCommit is the short commit hash.
	GitCommit = ""
	// BuildTime is the RFC 3339 build timestamp.
	BuildTime = ""
)

// Info holds resolved build information.
type Info struct {
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit"`
	BuildTime string    `json:"build_time"`
	GoVersion string    `json:"go_version"`
	BuildDate time.Time `json:"build_date"`
	Dirty     bool      `json:"dirty"`
}

// Get resolves build information, falling back to the Go build info
// embedded by the toolchain when ldflags were not set.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = s.Value
					if len(info.GitCommit) > 7 {
						info.GitCommit = info.GitCommit[:7]
					}
				}
			case "vcs.modified":
				info.Dirty = s.Value == "true"
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = s.Value
				}
			}
		}
	}

	if info.BuildTime != "" {
		if t, err := time.Parse(time.RFC3339, info.BuildTime); err == nil {
			info.BuildDate = t
		}
	}
	return info
}

// Short returns the compact version string used in logs.
func Short() string {
	info := Get()
	if info.GitCommit == "" {
		return info.Version
	}
	if info.Dirty {
		return fmt.Sprintf("%s-%s-dirty", info.Version, info.GitCommit)
	}
	return fmt.Sprintf("%s-%s", info.Version, info.GitCommit)
}
