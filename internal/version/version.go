// Package version centralizes service identity used in logs and telemetry.
package version

const (
	// Name identifies the service in telemetry and logs.
	Name = "finboard"
	// Version is the current service release.
	Version = "0.1.0"
)
