// Package update compares a target's recorded installation against the
// bundled templates and classifies what an update would change. Analysis
// is read-only: it inspects state, bundle, and customizations but never
// writes.
package update

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"

	"github.com/sergi/go-diff/diffmatchpatch"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/acforge/pkg/errors"
	"github.com/arthur-debert/acforge/pkg/logging"
	"github.com/arthur-debert/acforge/pkg/paths"
	"github.com/arthur-debert/acforge/pkg/preserve"
	"github.com/arthur-debert/acforge/pkg/state"
	"github.com/arthur-debert/acforge/pkg/templates"
	"github.com/arthur-debert/acforge/pkg/types"
)

// OverridesFileName is the optional manifest mapping customization files
// to the templates they shadow, overriding the name-based heuristic.
const OverridesFileName = "overrides.yaml"

// Catalog is the template source an analyzer reads from.
type Catalog interface {
	Files() ([]string, error)
	Content(path string) (string, error)
	Checksum(path string) (string, error)
	BundleChecksum() (string, error)
}

// Analyzer computes the update picture for one target.
type Analyzer struct {
	catalog  Catalog
	states   *state.Manager
	preserve *preserve.Preserver
	target   *paths.Target
}

// NewAnalyzer returns an analyzer over the given catalog and target.
func NewAnalyzer(catalog Catalog, target *paths.Target) *Analyzer {
	return &Analyzer{
		catalog:  catalog,
		states:   state.NewManager(target),
		preserve: preserve.New(target),
		target:   target,
	}
}

// Analyze classifies the bundle against the recorded state: overall status,
// per-file new/updated/removed sets, customizations, and any conflicts
// between customizations and incoming changes.
func (a *Analyzer) Analyze() (*types.Analysis, error) {
	logger := logging.GetLogger("update")

	st, err := a.states.Load()
	if err != nil {
		return nil, err
	}

	bundleSum, err := a.catalog.BundleChecksum()
	if err != nil {
		return nil, err
	}

	analysis := &types.Analysis{
		AvailableVersion: templates.ShortChecksum(bundleSum),
	}

	if !st.Initialized() {
		analysis.Status = types.StatusNotInitialized
		logger.Debug().Msg("target not initialized")
		return analysis, nil
	}
	analysis.CurrentVersion = st.Installation.TemplateVersion

	customizations, err := a.preserve.FindCustomizations()
	if err != nil {
		return nil, err
	}
	analysis.PreservedCustomizations = customizations

	if st.Templates.Checksum == bundleSum {
		analysis.Status = types.StatusUpToDate
		logger.Debug().Str("version", analysis.CurrentVersion).Msg("target up to date")
		return analysis, nil
	}
	analysis.Status = types.StatusUpdateAvailable

	if err := a.classifyFiles(st, analysis); err != nil {
		return nil, err
	}
	if err := a.findConflicts(analysis); err != nil {
		return nil, err
	}

	logger.Debug().
		Int("new", len(analysis.NewTemplates)).
		Int("updated", len(analysis.UpdatedTemplates)).
		Int("removed", len(analysis.RemovedTemplates)).
		Int("conflicts", len(analysis.Conflicts)).
		Msg("analysis complete")
	return analysis, nil
}

// classifyFiles splits the bundle against the recorded file map into new,
// updated, and removed sets.
func (a *Analyzer) classifyFiles(st *state.State, analysis *types.Analysis) error {
	files, err := a.catalog.Files()
	if err != nil {
		return err
	}

	inBundle := make(map[string]bool, len(files))
	for _, tmpl := range files {
		inBundle[tmpl] = true

		recorded, known := st.Templates.Files[tmpl]
		if !known {
			analysis.NewTemplates = append(analysis.NewTemplates, tmpl)
			continue
		}

		sum, err := a.catalog.Checksum(tmpl)
		if err != nil {
			return err
		}
		if sum != recorded.Checksum {
			analysis.UpdatedTemplates = append(analysis.UpdatedTemplates, tmpl)
		}
	}

	for tmpl := range st.Templates.Files {
		if !inBundle[tmpl] {
			analysis.RemovedTemplates = append(analysis.RemovedTemplates, tmpl)
		}
	}

	sort.Strings(analysis.NewTemplates)
	sort.Strings(analysis.UpdatedTemplates)
	sort.Strings(analysis.RemovedTemplates)
	return nil
}

// findConflicts flags customizations that shadow a template the update is
// about to add or change. An explicit overrides manifest wins over the
// name-based heuristic.
func (a *Analyzer) findConflicts(analysis *types.Analysis) error {
	if len(analysis.PreservedCustomizations) == 0 {
		return nil
	}

	incoming := make([]string, 0, len(analysis.NewTemplates)+len(analysis.UpdatedTemplates))
	incoming = append(incoming, analysis.NewTemplates...)
	incoming = append(incoming, analysis.UpdatedTemplates...)
	if len(incoming) == 0 {
		return nil
	}

	overrides, err := a.loadOverrides()
	if err != nil {
		return err
	}
	incomingSet := make(map[string]bool, len(incoming))
	for _, tmpl := range incoming {
		incomingSet[tmpl] = true
	}

	for _, custom := range analysis.PreservedCustomizations {
		var tmpl string
		var shadowed bool

		if mapped, ok := overrides[custom]; ok {
			tmpl, shadowed = mapped, incomingSet[mapped]
		} else {
			tmpl, shadowed = preserve.ShadowedTemplate(custom, incoming)
		}
		if !shadowed {
			continue
		}

		// An empty customization holds nothing back; only files with
		// actual content gate the update.
		data, err := os.ReadFile(filepath.Join(a.target.ConfigDir(), filepath.FromSlash(custom)))
		if err != nil || len(bytes.TrimSpace(data)) == 0 {
			continue
		}

		diff, err := a.conflictDiff(custom, tmpl)
		if err != nil {
			return err
		}
		analysis.Conflicts = append(analysis.Conflicts, types.Conflict{
			Path:     custom,
			Template: tmpl,
			Diff:     diff,
		})
	}

	sort.Slice(analysis.Conflicts, func(i, j int) bool {
		return analysis.Conflicts[i].Path < analysis.Conflicts[j].Path
	})
	return nil
}

// conflictDiff renders a patch between the file currently deployed for the
// shadowed template and the incoming template content, so the user can see
// what their customization is holding back.
func (a *Analyzer) conflictDiff(customization, tmpl string) (string, error) {
	incoming, err := a.catalog.Content(tmpl)
	if err != nil {
		return "", err
	}

	current := ""
	if data, err := os.ReadFile(a.target.DestinationFor(tmpl)); err == nil {
		current = string(data)
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(current, incoming, false)
	return dmp.PatchToText(dmp.PatchMake(current, diffs)), nil
}

type overridesManifest struct {
	Overrides map[string]string `yaml:"overrides"`
}

// loadOverrides reads the optional .claude/overrides.yaml manifest. A
// missing file yields an empty map.
func (a *Analyzer) loadOverrides() (map[string]string, error) {
	path := filepath.Join(a.target.ConfigDir(), OverridesFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "could not read overrides manifest: %s", path)
	}

	var manifest overridesManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "overrides manifest is malformed: %s", path)
	}
	return manifest.Overrides, nil
}
