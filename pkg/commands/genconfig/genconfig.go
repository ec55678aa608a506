// Package genconfig implements the gen-config command: write a starter
// .acforge/config.toml seeded with the detected parameters, fully
// commented out.
package genconfig

import (
	"context"
	"os"
	"time"

	"github.com/arthur-debert/acforge/pkg/commands/internal/params"
	"github.com/arthur-debert/acforge/pkg/config"
	"github.com/arthur-debert/acforge/pkg/errors"
	"github.com/arthur-debert/acforge/pkg/logging"
	"github.com/arthur-debert/acforge/pkg/paths"
	"github.com/arthur-debert/acforge/pkg/repodetect"
	"github.com/arthur-debert/acforge/pkg/templates"
	"github.com/arthur-debert/acforge/pkg/types"
)

// Options defines the options for the GenConfig command.
type Options struct {
	// Target is the repository root to write the config into.
	Target string
	// CLIVersion seeds the ACFORGE_VERSION parameter.
	CLIVersion string
	// Force overwrites an existing config file.
	Force bool
	// DryRun returns the content without writing it.
	DryRun bool

	Detector *repodetect.Detector
}

// GenConfig writes a commented starter config for the target.
func GenConfig(ctx context.Context, opts Options) (*types.GenConfigResult, error) {
	if opts.Detector == nil {
		opts.Detector = repodetect.New()
	}
	log := logging.GetLogger("commands.genconfig")

	target, err := paths.NewTarget(opts.Target)
	if err != nil {
		return nil, err
	}

	catalog := templates.NewManager()
	bundleSum, err := catalog.BundleChecksum()
	if err != nil {
		return nil, err
	}

	parameters := params.Build(ctx, opts.Detector, target.Root(),
		opts.CLIVersion, templates.ShortChecksum(bundleSum), time.Now())

	content, err := config.GenerateContent(parameters)
	if err != nil {
		return nil, err
	}

	result := &types.GenConfigResult{
		Target:  target.Root(),
		Path:    target.ConfigFilePath(),
		DryRun:  opts.DryRun,
		Content: content,
	}
	if opts.DryRun {
		return result, nil
	}

	if _, err := os.Stat(result.Path); err == nil && !opts.Force {
		return nil, errors.Newf(errors.ErrAlreadyInitialized,
			"config file already exists: %s; use --force to overwrite", result.Path)
	}

	if err := os.MkdirAll(target.StateDir(), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "could not create %s", target.StateDir())
	}
	if err := os.WriteFile(result.Path, []byte(content), 0644); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileWrite, "could not write config: %s", result.Path)
	}

	result.Written = true
	log.Info().Str("path", result.Path).Msg("Wrote starter config")
	return result, nil
}
