package builder

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Set by -ldflags "-X github.com/zxhio/tapresp/pkg/builder.Version=..."
var (
	Version   = "unknown"
	Commit    = "unknown"
	Date      = "unknown"
	GoVersion = runtime.Version()
)

func BuildInfo() string {
	return fmt.Sprintf("%s %s (%s %s) %s", filepath.Base(os.Args[0]), Version, Commit, Date, GoVersion)
}

// Fields returns the build information as structured log fields.
func Fields() map[string]interface{} {
	return map[string]interface{}{
		"version":    Version,
		"commit":     Commit,
		"date":       Date,
		"go_version": GoVersion,
	}
}
