// Package version reports the version of the build.
package version

import (
	"runtime/debug"
	"strings"
)

// Version can be set at build time with
// go build -ldflags "-X github.com/vsariola/organya/version.Version=$(git describe --dirty)"
var Version string

// Hash is the short VCS revision the binary was built from, with a "-dirty"
// suffix for modified trees, or "" if the build info has no revision.
var Hash = revision()

func revision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var rev string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	if rev != "" && dirty {
		rev += "-dirty"
	}
	return rev
}

// String returns Version if it was set, otherwise Hash, otherwise "devel".
func String() string {
	for _, s := range []string{Version, Hash} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return "devel"
}
