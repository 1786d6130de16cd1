package version

import (
	"strings"
	"testing"
)

func saveAndRestore() func() {
	origVersion, origCommit, origBuildTime := Version, GitCommit, BuildTime
	return func() {
		Version = origVersion
		GitCommit = origCommit
		BuildTime = origBuildTime
	}
}

func TestGetDefaults(t *testing.T) {
	defer saveAndRestore()()
	Version = "dev"
	GitCommit = ""
	BuildTime = ""

	info := Get()
	if info.Version != "dev" {
		t.Errorf("expected version 'dev', got %q", info.Version)
	}
}

func TestGetWithLdflags(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.0.0"
	GitCommit = "abc1234"
	BuildTime = "2026-01-15T10:30:00Z"

	info := Get()
	if info.Version != "1.0.0" {
		t.Errorf("expected '1.0.0', got %q", info.Version)
	}
	if info.GitCommit != "abc1234" {
		t.Errorf("expected 'abc1234', got %q", info.GitCommit)
	}
	if info.BuildDate.Year() != 2026 {
		t.Errorf("expected build year 2026, got %d", info.BuildDate.Year())
	}
}

func TestShort(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.0.0"
	GitCommit = "abc1234"
	BuildTime = "2026-01-15T10:30:00Z"

	sv := Short()
	if !strings.HasPrefix(sv, "1.0.0-abc1234") {
		t.Errorf("expected short version to start with '1.0.0-abc1234', got %q", sv)
	}
}

func TestShortWithoutLdflags(t *testing.T) {
	defer saveAndRestore()()
	Version = "2.3.4"
	GitCommit = ""
	BuildTime = ""

	// Commit may or may not resolve from embedded build info; the version
	// prefix is stable either way.
	sv := Short()
	if !strings.HasPrefix(sv, "2.3.4") {
		t.Errorf("expected short version to start with '2.3.4', got %q", sv)
	}
}
