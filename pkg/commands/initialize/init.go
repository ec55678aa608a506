// Package initialize implements the init command: deploy the full
// template bundle into a fresh target and record the installation.
package initialize

import (
	"context"
	"os"
	"time"

	"github.com/arthur-debert/acforge/pkg/commands/internal/install"
	"github.com/arthur-debert/acforge/pkg/commands/internal/params"
	"github.com/arthur-debert/acforge/pkg/config"
	"github.com/arthur-debert/acforge/pkg/deploy"
	"github.com/arthur-debert/acforge/pkg/errors"
	"github.com/arthur-debert/acforge/pkg/logging"
	"github.com/arthur-debert/acforge/pkg/paths"
	"github.com/arthur-debert/acforge/pkg/repodetect"
	"github.com/arthur-debert/acforge/pkg/state"
	"github.com/arthur-debert/acforge/pkg/templates"
	"github.com/arthur-debert/acforge/pkg/types"
)

// Options defines the options for the Init command.
type Options struct {
	// Target is the repository root to initialize.
	Target string
	// CLIVersion is recorded in the installation state.
	CLIVersion string
	// Parameters overrides detected parameter values.
	Parameters map[string]string
	// Force allows re-initializing an already initialized target.
	Force bool
	// DryRun reports what would happen without writing anything.
	DryRun bool

	// Catalog and Detector default to the embedded bundle and the real
	// gh/git chain; tests inject their own.
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

// Init deploys the bundle into the target and records the installation.
func Init(ctx context.Context, opts Options) (*types.InitResult, error) {
	opts.defaults()
	log := logging.GetLogger("commands.init")
	log.Debug().Str("target", opts.Target).Bool("dryRun", opts.DryRun).Msg("Executing init")

	target, err := paths.NewTarget(opts.Target)
	if err != nil {
		return nil, err
	}

	states := state.NewManager(target)
	st, err := states.Load()
	if err != nil {
		return nil, err
	}
	if st.Initialized() && !opts.Force {
		return nil, errors.Newf(errors.ErrAlreadyInitialized,
			"target is already initialized (version %s); use --force to redeploy",
			st.Installation.TemplateVersion)
	}
	// A pre-existing .claude tree or .acforge dir counts as an
	// installation even without a state file, except a state dir holding
	// only the gen-config starter.
	if !opts.Force {
		hasState, hasConfig := target.HasExistingConfiguration()
		if hasConfig {
			return nil, errors.Newf(errors.ErrAlreadyInitialized,
				"%s already exists; use --force to overwrite", paths.ConfigDirName)
		}
		if hasState && !onlyStarterConfig(target) {
			return nil, errors.Newf(errors.ErrAlreadyInitialized,
				"%s already exists; use --force to overwrite", paths.StateDirName)
		}
	}

	cfg, err := config.Load(target)
	if err != nil {
		return nil, err
	}

	bundleSum, err := opts.Catalog.BundleChecksum()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	parameters := params.Build(ctx, opts.Detector, target.Root(),
		opts.CLIVersion, templates.ShortChecksum(bundleSum), now,
		cfg.Parameters, opts.Parameters)

	deployer := deploy.New(opts.Catalog, target, opts.DryRun)
	deployed, err := deployer.Deploy(ctx, nil, parameters)
	if err != nil {
		return nil, err
	}

	result := &types.InitResult{
		Target:         target.Root(),
		DryRun:         opts.DryRun,
		FilesCreated:   deployed.Written,
		ParametersUsed: parameters,
		BundleChecksum: bundleSum,
		Errors:         deployed.Errors,
		Timestamp:      now,
	}

	if opts.DryRun {
		return result, nil
	}

	err = states.Transaction(func(st *state.State) error {
		return install.Record(st, opts.Catalog, bundleSum, opts.CLIVersion, now)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("target", target.Root()).
		Int("files", len(result.FilesCreated)).
		Msg("Initialized target")
	return result, nil
}

// onlyStarterConfig reports whether the state dir holds nothing beyond the
// gen-config starter file.
func onlyStarterConfig(target *paths.Target) bool {
	entries, err := os.ReadDir(target.StateDir())
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.Name() != paths.ConfigFileName {
			return false
		}
	}
	return true
}
