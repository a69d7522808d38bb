// internal/buildinfo/version.go
package buildinfo

import "fmt"

// Set via ldflags: -X github-portfolio-api/internal/buildinfo.Version=...
var (
	Version = "1.0.0"
	Commit  = "none"
	Date    = "unknown"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "GitHub Template API"

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
