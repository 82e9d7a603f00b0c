// Package content embeds the built-in screening script. It is the default
// catalog source when no script directory is configured, and the fixture
// used by the engine tests.
package content

import (
	"embed"
	"io/fs"
)

//go:embed script
var scripts embed.FS

// Files returns the embedded script directory as a file system, one YAML
// file per language plus the shared rules file.
func Files() fs.FS {
	sub, err := fs.Sub(scripts, "script")
	if err != nil {
		// The embedded tree always contains "script"; reaching this means a
		// broken build, not a runtime condition.
		panic(err)
	}
	return sub
}
