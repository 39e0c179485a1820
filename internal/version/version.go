package version

// Version is overridden at build time with -ldflags "-X .../internal/version.Version=...".
var Version = "0.1.0"

// FullVersion returns the version with a v prefix.
func FullVersion() string {
	return "v" + Version
}
