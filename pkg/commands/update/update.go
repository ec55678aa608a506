// Package update implements the update command: analyze the target
// against the bundle, gate on customization conflicts, and deploy the
// changed templates with customizations preserved across the write.
package update

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/arthur-debert/acforge/pkg/commands/internal/install"
	"github.com/arthur-debert/acforge/pkg/commands/internal/params"
	"github.com/arthur-debert/acforge/pkg/config"
	"github.com/arthur-debert/acforge/pkg/deploy"
	"github.com/arthur-debert/acforge/pkg/errors"
	"github.com/arthur-debert/acforge/pkg/logging"
	"github.com/arthur-debert/acforge/pkg/paths"
	"github.com/arthur-debert/acforge/pkg/preserve"
	"github.com/arthur-debert/acforge/pkg/repodetect"
	"github.com/arthur-debert/acforge/pkg/state"
	"github.com/arthur-debert/acforge/pkg/templates"
	"github.com/arthur-debert/acforge/pkg/types"
	updatepkg "github.com/arthur-debert/acforge/pkg/update"
)

// Options defines the options for the Update command.
type Options struct {
	// Target is the repository root to update.
	Target string
	// CLIVersion is recorded in the installation state.
	CLIVersion string
	// Parameters overrides detected parameter values.
	Parameters map[string]string
	// Force proceeds despite customization conflicts.
	Force bool
	// DryRun reports what would happen without writing anything.
	DryRun bool
	// NoPreserve skips the customization backup/restore pass even when
	// the target's config enables it.
	NoPreserve bool

	Catalog  deploy.Catalog
	Detector *repodetect.Detector
}

func (o *Options) defaults() {
	if o.Catalog == nil {
		o.Catalog = templates.NewManager()
	}
	if o.Detector == nil {
		o.Detector = repodetect.New()
	}
}

// Update brings the target's deployed templates up to the bundled version.
// When customization conflicts are found and Force is not set, the result
// carries the analysis and an ErrConflict error; nothing is written.
func Update(ctx context.Context, opts Options) (*types.UpdateResult, error) {
	opts.defaults()
	log := logging.GetLogger("commands.update")
	log.Debug().Str("target", opts.Target).Bool("dryRun", opts.DryRun).Msg("Executing update")

	target, err := paths.NewTarget(opts.Target)
	if err != nil {
		return nil, err
	}

	analysis, err := updatepkg.NewAnalyzer(opts.Catalog, target).Analyze()
	if err != nil {
		return nil, err
	}

	result := &types.UpdateResult{
		Target:    target.Root(),
		DryRun:    opts.DryRun,
		Analysis:  analysis,
		Timestamp: time.Now(),
	}

	switch analysis.Status {
	case types.StatusNotInitialized:
		return nil, errors.New(errors.ErrNotInitialized,
			"target is not initialized; run 'acforge init' first")
	case types.StatusUpToDate:
		result.Message = fmt.Sprintf("already up to date (version %s)", analysis.CurrentVersion)
		return result, nil
	}

	if analysis.HasConflicts() && !opts.Force {
		for _, c := range analysis.Conflicts {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s shadows %s", c.Path, c.Template))
		}
		result.Message = "update blocked by customization conflicts"
		return result, errors.Newf(errors.ErrConflict,
			"%d customization conflict(s) block the update; use --force to proceed",
			len(analysis.Conflicts))
	}

	cfg, err := config.Load(target)
	if err != nil {
		return nil, err
	}

	preserveEnabled := cfg.Preserve.Enabled && !opts.NoPreserve

	if opts.DryRun {
		return dryRun(ctx, opts, target, cfg, analysis, result, preserveEnabled)
	}

	preserver := preserve.New(target)
	var preserved map[string]string
	if preserveEnabled {
		preserved, err = preserver.Preserve(analysis.PreservedCustomizations, result.Timestamp)
		if err != nil {
			return nil, err
		}
		for rel := range preserved {
			result.FilesPreserved = append(result.FilesPreserved, rel)
		}
		sort.Strings(result.FilesPreserved)
	}

	deployed, err := run(ctx, opts, target, cfg, analysis, result)
	if err != nil {
		return nil, err
	}
	result.FilesUpdated = deployed.Written
	result.Errors = append(result.Errors, deployed.Errors...)

	if preserveEnabled {
		restored, err := preserver.Restore(preserved)
		result.FilesRestored = restored
		if err != nil {
			return nil, err
		}
	}

	// A partial deploy must not be recorded as the new version, or the
	// next run would report up to date with files still missing.
	if len(deployed.Errors) > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("state not updated: %d file(s) failed to deploy", len(deployed.Errors)))
		result.Message = fmt.Sprintf("update incomplete: %d file(s) failed to deploy", len(deployed.Errors))
		log.Warn().Int("failed", len(deployed.Errors)).Msg("Update incomplete, state unchanged")
		return result, nil
	}

	bundleSum, err := opts.Catalog.BundleChecksum()
	if err != nil {
		return nil, err
	}
	err = state.NewManager(target).Transaction(func(st *state.State) error {
		return install.Record(st, opts.Catalog, bundleSum, opts.CLIVersion, result.Timestamp)
	})
	if err != nil {
		return nil, err
	}

	result.Message = fmt.Sprintf("updated %s -> %s",
		analysis.CurrentVersion, analysis.AvailableVersion)
	log.Info().
		Int("updated", len(result.FilesUpdated)).
		Int("preserved", len(result.FilesPreserved)).
		Msg("Update complete")
	return result, nil
}

// run deploys the changed templates and removes files whose templates left
// the bundle.
func run(ctx context.Context, opts Options, target *paths.Target, cfg *config.Config, analysis *types.Analysis, result *types.UpdateResult) (*deploy.Result, error) {
	parameters := params.Build(ctx, opts.Detector, target.Root(),
		opts.CLIVersion, analysis.AvailableVersion, result.Timestamp,
		cfg.Parameters, opts.Parameters)

	deployer := deploy.New(opts.Catalog, target, false)
	deployed, err := deployer.Deploy(ctx, analysis.TemplatesToDeploy(), parameters)
	if err != nil {
		return nil, err
	}

	for _, tmpl := range analysis.RemovedTemplates {
		dest := target.DestinationFor(tmpl)
		if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("could not remove obsolete file %s: %v", target.RelativeToRoot(dest), err))
			continue
		}
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("removed obsolete file %s", target.RelativeToRoot(dest)))
	}
	return deployed, nil
}

// dryRun fills the result with what an update would do, touching nothing.
func dryRun(ctx context.Context, opts Options, target *paths.Target, cfg *config.Config, analysis *types.Analysis, result *types.UpdateResult, preserveEnabled bool) (*types.UpdateResult, error) {
	parameters := params.Build(ctx, opts.Detector, target.Root(),
		opts.CLIVersion, analysis.AvailableVersion, result.Timestamp,
		cfg.Parameters, opts.Parameters)

	deployer := deploy.New(opts.Catalog, target, true)
	deployed, err := deployer.Deploy(ctx, analysis.TemplatesToDeploy(), parameters)
	if err != nil {
		return nil, err
	}

	result.FilesUpdated = deployed.Written
	result.Errors = append(result.Errors, deployed.Errors...)
	if preserveEnabled {
		result.FilesPreserved = analysis.PreservedCustomizations
	}
	result.Message = fmt.Sprintf("would update %s -> %s",
		analysis.CurrentVersion, analysis.AvailableVersion)
	return result, nil
}
