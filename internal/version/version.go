// Package version holds the build-time version string for kubectl-smart.
package version

// Version is overridden at build time via:
//
//	go build -ldflags "-X github.com/srijanshukla18/kubectl-smart/internal/version.Version=v1.2.3"
var Version = "dev"
