// Package deploy renders templates and writes them into a target
// repository. Rendering and planning are pure; all filesystem mutation
// goes through a synthfs pipeline, and dry-run mode stops before the
// pipeline runs so it never touches disk.
package deploy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/synthfs/pkg/synthfs"
	"github.com/arthur-debert/synthfs/pkg/synthfs/core"
	"github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
	"github.com/arthur-debert/synthfs/pkg/synthfs/operations"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/acforge/pkg/errors"
	"github.com/arthur-debert/acforge/pkg/logging"
	"github.com/arthur-debert/acforge/pkg/paths"
	"github.com/arthur-debert/acforge/pkg/substitute"
	"github.com/arthur-debert/acforge/pkg/templates"
)

// Catalog is the template source a deployer reads from.
// *templates.Manager satisfies it.
type Catalog interface {
	Files() ([]string, error)
	Content(path string) (string, error)
	Checksum(path string) (string, error)
	BundleChecksum() (string, error)
}

// Result reports one deployment run.
type Result struct {
	// Deployed lists template paths that were (or in dry-run, would be)
	// written, sorted.
	Deployed []string
	// Written lists the destinations relative to the target root, sorted.
	Written []string
	// Parameters lists the parameter names actually substituted.
	Parameters []string
	// Errors collects per-file failures; a failed file never aborts the
	// rest of the run.
	Errors []string
	DryRun bool
}

// Deployer writes rendered templates into one target.
type Deployer struct {
	catalog    Catalog
	target     *paths.Target
	filesystem synthfs.FileSystem
	logger     zerolog.Logger
	dryRun     bool
}

// New returns a deployer for the given catalog and target.
func New(catalog Catalog, target *paths.Target, dryRun bool) *Deployer {
	return &Deployer{
		catalog:    catalog,
		target:     target,
		filesystem: filesystem.NewOSFileSystem("/"),
		logger:     logging.GetLogger("deploy"),
		dryRun:     dryRun,
	}
}

type plannedFile struct {
	template    string
	destination string
	content     string
	mode        os.FileMode
}

// Deploy renders and writes the given templates with the given parameters.
// A nil or empty selection deploys the whole catalog. Per-file read
// failures are accumulated in the result; only pipeline-level failures
// return an error.
func (d *Deployer) Deploy(ctx context.Context, selected []string, params map[string]string) (*Result, error) {
	result := &Result{DryRun: d.dryRun}

	if len(selected) == 0 {
		all, err := d.catalog.Files()
		if err != nil {
			return nil, err
		}
		selected = all
	}

	sub := substitute.New(params)
	var planned []plannedFile
	for _, tmpl := range selected {
		content, err := d.catalog.Content(tmpl)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", tmpl, err))
			continue
		}

		mode := os.FileMode(0644)
		if templates.IsScript(tmpl) {
			mode = 0755
		}

		planned = append(planned, plannedFile{
			template:    tmpl,
			destination: d.target.DestinationFor(tmpl),
			content:     sub.Substitute(content),
			mode:        mode,
		})
	}

	sort.Slice(planned, func(i, j int) bool { return planned[i].template < planned[j].template })
	for _, pf := range planned {
		result.Deployed = append(result.Deployed, pf.template)
		result.Written = append(result.Written, d.target.RelativeToRoot(pf.destination))
	}
	result.Parameters = sub.SubstitutedParameters()

	if d.dryRun {
		for _, pf := range planned {
			d.logger.Info().
				Str("template", pf.template).
				Str("destination", pf.destination).
				Int("contentLen", len(pf.content)).
				Msg("Would write file")
		}
		return result, nil
	}

	if err := d.execute(ctx, planned); err != nil {
		return nil, err
	}
	return result, nil
}

// execute runs the planned writes through a synthfs pipeline.
func (d *Deployer) execute(ctx context.Context, planned []plannedFile) error {
	if len(planned) == 0 {
		d.logger.Info().Msg("No files to write")
		return nil
	}

	// synthfs validation rejects creating over an existing file, and
	// deployments overwrite by design, so clear destinations first.
	for _, pf := range planned {
		if _, err := os.Lstat(pf.destination); err == nil {
			if err := os.Remove(pf.destination); err != nil {
				return errors.Wrapf(err, errors.ErrDeploy,
					"could not replace existing file: %s", pf.destination)
			}
		}
	}

	pipeline := synthfs.NewMemPipeline()

	for _, dir := range d.missingDirs(planned) {
		relPath, err := filepath.Rel("/", dir)
		if err != nil {
			return errors.Wrapf(err, errors.ErrInvalidInput, "failed to convert path: %s", dir)
		}
		opID := core.OperationID(fmt.Sprintf("create-dir-%s", dir))
		dirOp := operations.NewCreateDirectoryOperation(opID, relPath)
		dirOp.SetItem(&directoryItem{path: relPath, mode: 0755})
		if err := pipeline.Add(synthfs.NewOperationsPackageAdapter(dirOp)); err != nil {
			return errors.Wrap(err, errors.ErrDeploy, "failed to add operation to pipeline")
		}
	}

	for _, pf := range planned {
		relPath, err := filepath.Rel("/", pf.destination)
		if err != nil {
			return errors.Wrapf(err, errors.ErrInvalidInput, "failed to convert path: %s", pf.destination)
		}
		opID := core.OperationID(fmt.Sprintf("write-file-%s", pf.destination))
		fileOp := operations.NewCreateFileOperation(opID, relPath)
		fileOp.SetItem(&fileItem{path: relPath, content: []byte(pf.content), mode: pf.mode})
		if err := pipeline.Add(synthfs.NewOperationsPackageAdapter(fileOp)); err != nil {
			return errors.Wrap(err, errors.ErrDeploy, "failed to add operation to pipeline")
		}
	}

	d.logger.Info().Int("files", len(planned)).Msg("Executing deployment")

	executor := synthfs.NewExecutor()
	runResult := executor.Run(ctx, pipeline, d.filesystem)
	if runResult.GetError() != nil {
		return errors.Wrap(runResult.GetError(), errors.ErrDeploy, "deployment pipeline failed")
	}

	d.logger.Info().Msg("Deployment complete")
	return nil
}

// missingDirs returns the parent directories the planned writes need but
// that do not exist yet, sorted shallow-first so creation order is valid.
func (d *Deployer) missingDirs(planned []plannedFile) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, pf := range planned {
		for dir := filepath.Dir(pf.destination); dir != d.target.Root() && dir != "/" && dir != "."; dir = filepath.Dir(dir) {
			if seen[dir] {
				break
			}
			seen[dir] = true
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				dirs = append(dirs, dir)
			}
		}
	}
	sort.Strings(dirs)
	return dirs
}
