// SPDX-License-Identifier: MIT
package build

import (
	"runtime/debug"
	"testing"
)

func setFlags(t *testing.T, name, time, commit, version string) {
	t.Helper()
	origName, origTime, origCommit, origVersion := buildName, buildTime, buildCommit, buildVersion
	origRead := readBuildInfo
	t.Cleanup(func() {
		buildName, buildTime, buildCommit, buildVersion = origName, origTime, origCommit, origVersion
		readBuildInfo = origRead
	})
	buildName, buildTime, buildCommit, buildVersion = name, time, commit, version
}

func TestResolve(t *testing.T) {
	vcs := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.2.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}

	tests := []struct {
		name  string
		flags [4]string
		bi    *debug.BuildInfo
		want  Info
	}{
		{
			"linker flags win",
			[4]string{"mixref-test", "2026-10-01", "abcdef1", "1.0.0"},
			vcs,
			Info{Name: "mixref-test", Time: "2026-10-01", Commit: "abcdef1", Version: "1.0.0"},
		},
		{
			"vcs fallback",
			[4]string{},
			vcs,
			Info{Name: DefaultName, Time: "2026-01-02T03:04:05Z", Commit: "0123456789ab", Version: "v0.2.1"},
		},
		{
			"devel build",
			[4]string{},
			&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			Info{Name: DefaultName, Time: unknown, Commit: unknown, Version: "dev"},
		},
		{
			"no build info",
			[4]string{},
			nil,
			Info{Name: DefaultName, Time: unknown, Commit: unknown, Version: "dev"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setFlags(t, tt.flags[0], tt.flags[1], tt.flags[2], tt.flags[3])
			readBuildInfo = func() (*debug.BuildInfo, bool) { return tt.bi, tt.bi != nil }

			got := resolve()
			tt.want.Description = DefaultDescription
			if got != tt.want {
				t.Errorf("resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestInfoString(t *testing.T) {
	i := Info{Version: "1.0.0", Commit: "abc", Time: "today"}
	if got, want := i.String(), "1.0.0 (commit abc, built today)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestGetIsStable(t *testing.T) {
	if Get() != Get() {
		t.Error("Get() should resolve once")
	}
}
