// Package status implements the status command: a read-only report of the
// target's installation against the bundled templates.
package status

import (
	"github.com/arthur-debert/acforge/pkg/deploy"
	"github.com/arthur-debert/acforge/pkg/logging"
	"github.com/arthur-debert/acforge/pkg/paths"
	"github.com/arthur-debert/acforge/pkg/templates"
	"github.com/arthur-debert/acforge/pkg/types"
	updatepkg "github.com/arthur-debert/acforge/pkg/update"
)

// Options defines the options for the Status command.
type Options struct {
	// Target is the repository root to inspect.
	Target string

	Catalog deploy.Catalog
}

// Status analyzes the target without writing anything.
func Status(opts Options) (*types.StatusResult, error) {
	if opts.Catalog == nil {
		opts.Catalog = templates.NewManager()
	}
	log := logging.GetLogger("commands.status")
	log.Debug().Str("target", opts.Target).Msg("Executing status")

	target, err := paths.NewTarget(opts.Target)
	if err != nil {
		return nil, err
	}

	analysis, err := updatepkg.NewAnalyzer(opts.Catalog, target).Analyze()
	if err != nil {
		return nil, err
	}

	return &types.StatusResult{
		Target:   target.Root(),
		Analysis: analysis,
	}, nil
}
