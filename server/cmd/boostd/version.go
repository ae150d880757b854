// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package main

import "github.com/boostxyz/boost-protocol-sub000/boost/version"

const appName = "boostd"

// Version is a semantic version. Set it at build time with
// -ldflags "-X main.Version=x.y.z". init panics if it is not valid semver.
var Version = "0.1.0-pre"

func init() {
	Version = version.Parse(Version)
}
