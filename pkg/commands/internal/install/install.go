// Package install records a completed deployment in the target's state.
package install

import (
	"time"

	"github.com/arthur-debert/acforge/pkg/state"
	"github.com/arthur-debert/acforge/pkg/templates"
)

// Catalog is the subset of the template catalog recording needs.
type Catalog interface {
	Files() ([]string, error)
	Checksum(path string) (string, error)
}

// Record rewrites the installation and per-file checksums so the state
// mirrors the catalog exactly.
func Record(st *state.State, catalog Catalog, bundleSum, cliVersion string, now time.Time) error {
	files, err := catalog.Files()
	if err != nil {
		return err
	}

	st.Templates.Checksum = bundleSum
	st.Templates.Files = make(map[string]state.FileState, len(files))
	for _, tmpl := range files {
		sum, err := catalog.Checksum(tmpl)
		if err != nil {
			return err
		}
		st.Templates.Files[tmpl] = state.FileState{Checksum: sum}
	}

	st.Installation = &state.Installation{
		TemplateVersion: templates.ShortChecksum(bundleSum),
		InstalledAt:     now,
		CLIVersion:      cliVersion,
	}
	return nil
}
