package telemetry

// Version information for the finalwatch emission subsystem.
// Vars so the build can stamp them via -ldflags "-X".
var (
	// Version is the current library version
	Version = "development"

	// BuildDate is set during build time
	BuildDate = "development"

	// GitCommit is set during build time
	GitCommit = "unknown"
)
