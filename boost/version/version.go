// Copyright (c) 2015-2022 The Decred developers
// Use of this source code is governed by an ISC license
// that can be found at https://github.com/decred/dcrd/blob/master/LICENSE.

package version

import (
	"fmt"
	"regexp"
	"runtime/debug"
	"strconv"
	"strings"
)

// semanticAlphabet defines the allowed characters for the pre-release and
// build metadata portions of a semantic version string.
const semanticAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-."

var semverRE = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)` +
	`(?:-((?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(?:\.(?:0|[1-9]\d*|\d*` +
	`[a-zA-Z-][0-9a-zA-Z-]*))*))?(?:\+([0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?$`)

// SemVer is a parsed semantic version.
type SemVer struct {
	Major, Minor, Patch uint32
	PreRelease, Build   string
}

// String formats the version per the semantic versioning 2.0.0 spec.
func (v *SemVer) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.PreRelease != "" {
		s += "-" + v.PreRelease
	}
	if v.Build != "" {
		s += "+" + v.Build
	}
	return s
}

func parseUint32(s string, fieldName string) (uint32, error) {
	val, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("malformed semver %s: %w", fieldName, err)
	}
	return uint32(val), err
}

func checkSemString(s, fieldName string) error {
	for _, r := range s {
		if !strings.ContainsRune(semanticAlphabet, r) {
			return fmt.Errorf("malformed semver %s: %q invalid", fieldName, r)
		}
	}
	return nil
}

// ParseSemVer parses the provided string into its semver components.
func ParseSemVer(s string) (*SemVer, error) {
	m := semverRE.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("malformed version string %q: does not conform to "+
			"semver specification", s)
	}
	var v SemVer
	var err error
	if v.Major, err = parseUint32(m[1], "major"); err != nil {
		return nil, err
	}
	if v.Minor, err = parseUint32(m[2], "minor"); err != nil {
		return nil, err
	}
	if v.Patch, err = parseUint32(m[3], "patch"); err != nil {
		return nil, err
	}
	v.PreRelease = m[4]
	if err = checkSemString(v.PreRelease, "pre-release"); err != nil {
		return nil, err
	}
	v.Build = m[5]
	if err = checkSemString(v.Build, "buildmetadata"); err != nil {
		return nil, err
	}
	return &v, nil
}

// Parse returns the application version as a properly formed string. If the
// version has no build metadata, the VCS revision embedded by the go tool is
// used when available. Parse panics on a malformed version, since it is only
// applied to a compile-time constant.
func Parse(version string) string {
	v, err := ParseSemVer(version)
	if err != nil {
		panic(err)
	}
	if v.Build == "" {
		v.Build = NormalizeString(vcsCommitID())
	}
	return v.String()
}

func vcsCommitID() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var revision string
	var dirty bool
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if len(revision) > 9 {
		revision = revision[:9]
	}
	if revision != "" && dirty {
		revision += "-dirty"
	}
	return revision
}

// NormalizeString returns the passed string stripped of all characters which
// are not valid for pre-release and build metadata strings.
func NormalizeString(str string) string {
	var result strings.Builder
	for _, r := range str {
		if strings.ContainsRune(semanticAlphabet, r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}
