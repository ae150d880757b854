// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package config

import (
	"fmt"
	"net"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// ExpandPath expands environment variables and a leading ~ or ~user, and
// cleans the result. Windows %VAR% syntax is not expanded, but $VAR is. An
// empty path stays empty.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	path = os.ExpandEnv(path)
	rest, tilde := strings.CutPrefix(path, "~")
	if !tilde {
		return filepath.Clean(path)
	}
	name := rest
	if i := strings.IndexFunc(rest, func(r rune) bool {
		return r == '/' || r == os.PathSeparator
	}); i >= 0 {
		name, rest = rest[:i], rest[i:]
	} else {
		rest = ""
	}
	return filepath.Join(homeDir(name), rest)
}

// homeDir is the home directory of the named user, or the current user if
// name is empty. Falls back to the working directory.
func homeDir(name string) string {
	var u *user.User
	var err error
	if name == "" {
		u, err = user.Current()
	} else {
		u, err = user.Lookup(name)
	}
	if err != nil || u.HomeDir == "" {
		return "."
	}
	return u.HomeDir
}

// ListenAddr fills in a missing host or port of a listen address. A URL is
// an error.
func ListenAddr(addr, defaultHost, defaultPort string) (string, error) {
	if strings.Contains(addr, "://") {
		return "", fmt.Errorf("listen address %q should not have a scheme", addr)
	}
	if addr == "" {
		return net.JoinHostPort(defaultHost, defaultPort), nil
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		// Try again assuming only the port is missing.
		var portErr error
		if host, port, portErr = net.SplitHostPort(addr + ":"); portErr != nil {
			return "", fmt.Errorf("invalid listen address %q: %w", addr, err)
		}
	}
	if host == "" {
		host = defaultHost
	}
	if port == "" {
		port = defaultPort
	}
	return net.JoinHostPort(host, port), nil
}
