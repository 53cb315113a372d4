// SPDX-License-Identifier: MIT
//
// Package build exposes version metadata embedded at link time, for example:
//
//	go build -ldflags "-X mixref/pkg/build.buildVersion=0.3.0 -X mixref/pkg/build.buildCommit=$(git rev-parse --short HEAD)"
//
// Values not set by the linker fall back to the VCS stamp Go records in the
// binary, then to "unknown".
package build

import (
	"fmt"
	"runtime/debug"
	"sync"
)

const (
	DefaultName        = "mixref"
	DefaultDescription = "Compare a mix against a reference track"
	unknown            = "unknown"
)

// Info describes the running binary.
type Info struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

// Set with -ldflags -X.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
)

var (
	readBuildInfo = debug.ReadBuildInfo
	once          sync.Once
	info          Info
)

// Get returns the build information, resolving it on first use.
func Get() Info {
	once.Do(func() { info = resolve() })
	return info
}

func resolve() Info {
	i := Info{
		Name:        orDefault(buildName, DefaultName),
		Description: DefaultDescription,
		Time:        buildTime,
		Commit:      buildCommit,
		Version:     buildVersion,
	}

	if bi, ok := readBuildInfo(); ok {
		if i.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			i.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if i.Commit == "" {
					i.Commit = s.Value
					if len(i.Commit) > 12 {
						i.Commit = i.Commit[:12]
					}
				}
			case "vcs.time":
				if i.Time == "" {
					i.Time = s.Value
				}
			}
		}
	}

	i.Time = orDefault(i.Time, unknown)
	i.Commit = orDefault(i.Commit, unknown)
	i.Version = orDefault(i.Version, "dev")
	return i
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// String formats the info for --version.
func (i Info) String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", i.Version, i.Commit, i.Time)
}
