package update

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/acforge/pkg/commands/initialize"
	acferrors "github.com/arthur-debert/acforge/pkg/errors"
	"github.com/arthur-debert/acforge/pkg/paths"
	"github.com/arthur-debert/acforge/pkg/repodetect"
	"github.com/arthur-debert/acforge/pkg/state"
	"github.com/arthur-debert/acforge/pkg/templates"
	"github.com/arthur-debert/acforge/pkg/types"
)

func catalogOf(files map[string]string) *templates.Manager {
	fsys := fstest.MapFS{}
	for path, content := range files {
		fsys[path] = &fstest.MapFile{Data: []byte(content)}
	}
	return templates.NewManagerFromFS(fsys)
}

func v1Catalog() *templates.Manager {
	return catalogOf(map[string]string{
		"CLAUDE.md.template":          "# {{PROJECT_NAME}} v1\n",
		"commands/review.md.template": "review v1\n",
	})
}

func v2Catalog() *templates.Manager {
	return catalogOf(map[string]string{
		"CLAUDE.md.template":          "# {{PROJECT_NAME}} v2\n",
		"commands/review.md.template": "review v2\n",
		"commands/ship.md.template":   "ship v1\n",
	})
}

func testDetector() *repodetect.Detector {
	return repodetect.NewWithRunner(func(_ context.Context, _, name string, _ ...string) ([]byte, error) {
		if name == "gh" {
			return []byte(`{"owner":{"login":"acme"},"name":"widgets","url":"https://github.com/acme/widgets"}`), nil
		}
		return nil, errors.New("not scripted")
	})
}

// initialized sets up a target deployed from the v1 catalog.
func initialized(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := initialize.Init(context.Background(), initialize.Options{
		Target:     dir,
		CLIVersion: "1.0.0-test",
		Catalog:    v1Catalog(),
		Detector:   testDetector(),
	})
	require.NoError(t, err)
	return dir
}

func updateOptions(dir string, catalog *templates.Manager) Options {
	return Options{
		Target:     dir,
		CLIVersion: "1.1.0-test",
		Catalog:    catalog,
		Detector:   testDetector(),
	}
}

func TestUpdateNotInitialized(t *testing.T) {
	_, err := Update(context.Background(), updateOptions(t.TempDir(), v1Catalog()))
	require.Error(t, err)
	assert.True(t, acferrors.IsErrorCode(err, acferrors.ErrNotInitialized))
}

func TestUpdateUpToDateIsNoOp(t *testing.T) {
	dir := initialized(t)
	before, err := os.ReadFile(filepath.Join(dir, "CLAUDE.md"))
	require.NoError(t, err)

	result, err := Update(context.Background(), updateOptions(dir, v1Catalog()))
	require.NoError(t, err)
	assert.Equal(t, types.StatusUpToDate, result.Analysis.Status)
	assert.Empty(t, result.FilesUpdated)
	assert.Contains(t, result.Message, "already up to date")

	after, err := os.ReadFile(filepath.Join(dir, "CLAUDE.md"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUpdateDeploysChangedAndNewTemplates(t *testing.T) {
	dir := initialized(t)

	result, err := Update(context.Background(), updateOptions(dir, v2Catalog()))
	require.NoError(t, err)
	assert.Equal(t, types.StatusUpdateAvailable, result.Analysis.Status)
	assert.Len(t, result.FilesUpdated, 3)

	data, err := os.ReadFile(filepath.Join(dir, "CLAUDE.md"))
	require.NoError(t, err)
	assert.Equal(t, "# widgets v2\n", string(data))

	data, err = os.ReadFile(filepath.Join(dir, ".claude", "commands", "ship.md"))
	require.NoError(t, err)
	assert.Equal(t, "ship v1\n", string(data))

	// State now mirrors v2; a second update is a no-op.
	again, err := Update(context.Background(), updateOptions(dir, v2Catalog()))
	require.NoError(t, err)
	assert.Equal(t, types.StatusUpToDate, again.Analysis.Status)
}

func TestUpdateRemovesObsoleteFiles(t *testing.T) {
	dir := initialized(t)

	smaller := catalogOf(map[string]string{
		"CLAUDE.md.template": "# {{PROJECT_NAME}} v2\n",
	})
	result, err := Update(context.Background(), updateOptions(dir, smaller))
	require.NoError(t, err)
	assert.Equal(t, []string{"commands/review.md.template"}, result.Analysis.RemovedTemplates)

	_, statErr := os.Stat(filepath.Join(dir, ".claude", "commands", "review.md"))
	assert.True(t, os.IsNotExist(statErr))

	target, err := paths.NewTarget(dir)
	require.NoError(t, err)
	st, err := state.NewManager(target).Load()
	require.NoError(t, err)
	assert.NotContains(t, st.Templates.Files, "commands/review.md.template")
}

func TestUpdateConflictBlocksAndWritesNothing(t *testing.T) {
	dir := initialized(t)
	local := filepath.Join(dir, ".claude", "commands", "review.local.md")
	require.NoError(t, os.WriteFile(local, []byte("my custom review\n"), 0644))

	before, err := os.ReadFile(filepath.Join(dir, "CLAUDE.md"))
	require.NoError(t, err)

	result, err := Update(context.Background(), updateOptions(dir, v2Catalog()))
	require.Error(t, err)
	assert.True(t, acferrors.IsErrorCode(err, acferrors.ErrConflict))
	require.NotNil(t, result)
	assert.True(t, result.Analysis.HasConflicts())
	assert.NotEmpty(t, result.Errors)

	// Zero writes: the target is exactly as it was.
	after, err := os.ReadFile(filepath.Join(dir, "CLAUDE.md"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
	_, statErr := os.Stat(filepath.Join(dir, ".claude", "commands", "ship.md"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestUpdateForceOverridesConflictAndPreservesCustomization(t *testing.T) {
	dir := initialized(t)
	local := filepath.Join(dir, ".claude", "commands", "review.local.md")
	require.NoError(t, os.WriteFile(local, []byte("my custom review\n"), 0644))

	opts := updateOptions(dir, v2Catalog())
	opts.Force = true
	result, err := Update(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"commands/review.local.md"}, result.FilesPreserved)
	assert.Equal(t, []string{"commands/review.local.md"}, result.FilesRestored)

	// The customization survived the update byte for byte.
	data, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.Equal(t, "my custom review\n", string(data))

	// And the shadowed base file was still updated.
	data, err = os.ReadFile(filepath.Join(dir, ".claude", "commands", "review.md"))
	require.NoError(t, err)
	assert.Equal(t, "review v2\n", string(data))
}

func TestUpdateDryRunWritesNothing(t *testing.T) {
	dir := initialized(t)

	opts := updateOptions(dir, v2Catalog())
	opts.DryRun = true
	result, err := Update(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Len(t, result.FilesUpdated, 3)
	assert.Contains(t, result.Message, "would update")

	// Files still carry v1 content and the state still records v1.
	data, err := os.ReadFile(filepath.Join(dir, "CLAUDE.md"))
	require.NoError(t, err)
	assert.Equal(t, "# widgets v1\n", string(data))

	again, err := Update(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, types.StatusUpdateAvailable, again.Analysis.Status)
}

func TestUpdatePreservationDisabledByConfig(t *testing.T) {
	dir := initialized(t)
	target, err := paths.NewTarget(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(target.ConfigFilePath(),
		[]byte("[preserve]\nenabled = false\n"), 0644))

	local := filepath.Join(dir, ".claude", "notes.local.md")
	require.NoError(t, os.WriteFile(local, []byte("unrelated customization\n"), 0644))

	result, err := Update(context.Background(), updateOptions(dir, v2Catalog()))
	require.NoError(t, err)
	assert.Empty(t, result.FilesPreserved)
	assert.Empty(t, result.FilesRestored)
}

// failingCatalog wraps a manager and refuses to read one template.
type failingCatalog struct {
	*templates.Manager
	fail string
}

func (c *failingCatalog) Content(path string) (string, error) {
	if path == c.fail {
		return "", acferrors.Newf(acferrors.ErrTemplateRead, "could not read template: %s", path)
	}
	return c.Manager.Content(path)
}

func TestUpdatePartialDeployLeavesStateUnchanged(t *testing.T) {
	dir := initialized(t)

	opts := updateOptions(dir, v1Catalog())
	opts.Catalog = &failingCatalog{Manager: v2Catalog(), fail: "commands/ship.md.template"}
	result, err := Update(context.Background(), opts)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Message, "incomplete")

	// The files that could be rendered were still written.
	data, err := os.ReadFile(filepath.Join(dir, "CLAUDE.md"))
	require.NoError(t, err)
	assert.Equal(t, "# widgets v2\n", string(data))

	// But the state still records v1, so the next run retries instead of
	// reporting up to date with ship.md missing.
	again, err := Update(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, types.StatusUpdateAvailable, again.Analysis.Status)
}

func TestUpdateNoPreserveOptionSkipsBackup(t *testing.T) {
	dir := initialized(t)
	local := filepath.Join(dir, ".claude", "notes.local.md")
	require.NoError(t, os.WriteFile(local, []byte("unrelated customization\n"), 0644))

	opts := updateOptions(dir, v2Catalog())
	opts.NoPreserve = true
	result, err := Update(context.Background(), opts)
	require.NoError(t, err)
	assert.Empty(t, result.FilesPreserved)
	assert.Empty(t, result.FilesRestored)

	target, err := paths.NewTarget(dir)
	require.NoError(t, err)
	_, statErr := os.Stat(target.BackupsDir())
	assert.True(t, os.IsNotExist(statErr))
}
