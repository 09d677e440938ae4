package artifact

import (
	"regexp"
	"runtime"

	"github.com/veranemoloko/mc-fetch/internal/domain"
)

// Platform is the normalized OS/arch pair that rules and native maps are evaluated against.
type Platform struct {
	OS      string // windows, linux or osx
	Arch    string // x86, x86_64, arm32 or arm64
	Version string // OS version, empty when unknown
}

// CurrentPlatform describes the running process.
func CurrentPlatform() Platform {
	return Platform{OS: NormalizeOS(runtime.GOOS), Arch: NormalizeArch(runtime.GOARCH)}
}

// NormalizeOS maps a GOOS value to the launcher's OS names.
func NormalizeOS(goos string) string {
	switch goos {
	case "darwin":
		return "osx"
	case "windows":
		return "windows"
	default:
		return "linux"
	}
}

// NormalizeArch maps a GOARCH value to the launcher's architecture names.
func NormalizeArch(goarch string) string {
	switch goarch {
	case "386":
		return "x86"
	case "amd64":
		return "x86_64"
	case "arm":
		return "arm32"
	default:
		return goarch
	}
}

// Bits returns "32" or "64", the value substituted for ${arch} in native classifiers.
func (p Platform) Bits() string {
	if p.Arch == "x86" || p.Arch == "arm32" {
		return "32"
	}
	return "64"
}

// Allowed evaluates a library's rule list.
//
// No rules: included. Otherwise the starting verdict is "included" when every
// rule is a disallow rule and "excluded" as soon as any allow rule exists. Rules
// are then applied in order and the last one that matches the platform decides.
// Rules gated on launcher features never match.
func Allowed(rules []domain.Rule, p Platform) bool {
	if len(rules) == 0 {
		return true
	}

	allowed := true
	for _, r := range rules {
		if r.Action == domain.RuleAllow {
			allowed = false
			break
		}
	}

	for _, r := range rules {
		if !applies(r, p) {
			continue
		}
		allowed = r.Action == domain.RuleAllow
	}
	return allowed
}

func applies(r domain.Rule, p Platform) bool {
	if len(r.Features) > 0 {
		return false
	}
	if r.OS == nil {
		return true
	}
	if r.OS.Name != "" && r.OS.Name != p.OS {
		return false
	}
	if r.OS.Arch != "" && r.OS.Arch != p.Arch {
		return false
	}
	if r.OS.Version != "" {
		if p.Version == "" {
			return false
		}
		re, err := regexp.Compile(r.OS.Version)
		if err != nil || !re.MatchString(p.Version) {
			return false
		}
	}
	return true
}
