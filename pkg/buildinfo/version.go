// Package buildinfo provides build-time version information.
//
// Variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/matzehuels/agentflow/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/agentflow/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/agentflow/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

var (
	// Version is the semantic version (e.g., "v1.2.3").
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// shortCommitLen matches git's default abbreviation.
const shortCommitLen = 7

// Short returns the version with an abbreviated commit, e.g.
// "v1.2.3 (3f9a1c2)". Builds without a commit return the version alone.
// Compiled documents carry this string in their footer.
func Short() string {
	if Commit == "" || Commit == "none" {
		return Version
	}
	c := Commit
	if len(c) > shortCommitLen {
		c = c[:shortCommitLen]
	}
	return fmt.Sprintf("%s (%s)", Version, c)
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
