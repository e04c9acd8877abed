// Package version parses the build version and derives the settings
// version marker from it.
package version

import (
	"regexp"
	"strconv"
	"strings"
)

// Base is the release line a development build reports for settings purposes
const Base = "v1.0.0"

// IsDevelopmentVersion returns true for non-release versions.
func IsDevelopmentVersion(v string) bool {
	if v == "" || v == "unknown" || v == "dev" || v == "devel" {
		return true
	}
	if strings.HasPrefix(v, "devel+") {
		return true
	}
	return false
}

// validVersionRegex matches valid semver versions (v1.2.3, v1.2.3-beta, etc.)
var validVersionRegex = regexp.MustCompile(`^v?\d+\.\d+\.\d+(-[a-zA-Z0-9]+([.-][a-zA-Z0-9]+)*)?$`)

// IsValid reports whether v is a well-formed release version
func IsValid(v string) bool {
	return validVersionRegex.MatchString(v)
}

// parseSemver extracts major, minor and patch. Prerelease and build
// metadata are dropped; missing parts are 0.
func parseSemver(v string) [3]int {
	var out [3]int
	v = strings.TrimPrefix(v, "v")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	for i, part := range strings.SplitN(v, ".", 3) {
		n, err := strconv.Atoi(part)
		if err != nil {
			return [3]int{}
		}
		out[i] = n
	}
	return out
}

// IsNewer reports whether a is a later release than b
func IsNewer(a, b string) bool {
	pa, pb := parseSemver(a), parseSemver(b)
	for i := range pa {
		if pa[i] != pb[i] {
			return pa[i] > pb[i]
		}
	}
	return false
}

// Major returns the major version number as a string. Development
// builds report the major of Base.
func Major(v string) string {
	if IsDevelopmentVersion(v) {
		v = Base
	}
	return strconv.Itoa(parseSemver(v)[0])
}
