package deploy

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/acforge/pkg/paths"
	"github.com/arthur-debert/acforge/pkg/templates"
)

func testCatalog() *templates.Manager {
	return templates.NewManagerFromFS(fstest.MapFS{
		"CLAUDE.md.template":        {Data: []byte("# {{PROJECT_NAME}} by {{GITHUB_OWNER}}\n")},
		"commands/go.md.template":   {Data: []byte("run {{PROJECT_NAME}}\n")},
		"guidelines/style.md":       {Data: []byte("no parameters here\n")},
		"scripts/setup.sh.template": {Data: []byte("#!/bin/sh\necho {{PROJECT_NAME}}\n")},
	})
}

func testParams() map[string]string {
	return map[string]string{
		"PROJECT_NAME": "widgets",
		"GITHUB_OWNER": "acme",
	}
}

func testTarget(t *testing.T) *paths.Target {
	t.Helper()
	target, err := paths.NewTarget(t.TempDir())
	require.NoError(t, err)
	return target
}

func TestDeployWritesRenderedFiles(t *testing.T) {
	target := testTarget(t)
	d := New(testCatalog(), target, false)

	result, err := d.Deploy(context.Background(), nil, testParams())
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Equal(t, []string{
		"CLAUDE.md.template",
		"commands/go.md.template",
		"guidelines/style.md",
		"scripts/setup.sh.template",
	}, result.Deployed)
	assert.ElementsMatch(t, []string{"GITHUB_OWNER", "PROJECT_NAME"}, result.Parameters)

	data, err := os.ReadFile(target.RootDocumentPath())
	require.NoError(t, err)
	assert.Equal(t, "# widgets by acme\n", string(data))

	data, err = os.ReadFile(filepath.Join(target.ConfigDir(), "commands", "go.md"))
	require.NoError(t, err)
	assert.Equal(t, "run widgets\n", string(data))

	data, err = os.ReadFile(filepath.Join(target.ConfigDir(), "guidelines", "style.md"))
	require.NoError(t, err)
	assert.Equal(t, "no parameters here\n", string(data))
}

func TestDeployScriptsAreExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}

	target := testTarget(t)
	d := New(testCatalog(), target, false)

	_, err := d.Deploy(context.Background(), nil, testParams())
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(target.ConfigDir(), "scripts", "setup.sh"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0100, "script should be executable")
}

func TestDeployDryRunWritesNothing(t *testing.T) {
	target := testTarget(t)
	d := New(testCatalog(), target, true)

	result, err := d.Deploy(context.Background(), nil, testParams())
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Len(t, result.Deployed, 4)
	assert.Len(t, result.Written, 4)

	// The target must be untouched.
	entries, err := os.ReadDir(target.Root())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeploySelectionDeploysOnlyListed(t *testing.T) {
	target := testTarget(t)
	d := New(testCatalog(), target, false)

	result, err := d.Deploy(context.Background(), []string{"commands/go.md.template"}, testParams())
	require.NoError(t, err)
	assert.Equal(t, []string{"commands/go.md.template"}, result.Deployed)

	_, err = os.Stat(target.RootDocumentPath())
	assert.True(t, os.IsNotExist(err), "unselected templates must not be written")
}

func TestDeployOverwritesExistingFiles(t *testing.T) {
	target := testTarget(t)
	require.NoError(t, os.WriteFile(target.RootDocumentPath(), []byte("stale\n"), 0644))

	d := New(testCatalog(), target, false)
	_, err := d.Deploy(context.Background(), []string{"CLAUDE.md.template"}, testParams())
	require.NoError(t, err)

	data, err := os.ReadFile(target.RootDocumentPath())
	require.NoError(t, err)
	assert.Equal(t, "# widgets by acme\n", string(data))
}

func TestDeployAccumulatesPerFileErrors(t *testing.T) {
	target := testTarget(t)
	d := New(testCatalog(), target, false)

	result, err := d.Deploy(context.Background(), []string{
		"CLAUDE.md.template",
		"missing/ghost.md.template",
	}, testParams())
	require.NoError(t, err)
	assert.Equal(t, []string{"CLAUDE.md.template"}, result.Deployed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "missing/ghost.md.template")

	// The readable file still deployed.
	_, statErr := os.Stat(target.RootDocumentPath())
	assert.NoError(t, statErr)
}

func TestDeployLeavesUnknownTokensVerbatim(t *testing.T) {
	catalog := templates.NewManagerFromFS(fstest.MapFS{
		"CLAUDE.md.template": {Data: []byte("known {{PROJECT_NAME}}, unknown {{MYSTERY}}\n")},
	})
	target := testTarget(t)
	d := New(catalog, target, false)

	result, err := d.Deploy(context.Background(), nil, testParams())
	require.NoError(t, err)
	assert.Equal(t, []string{"PROJECT_NAME"}, result.Parameters)

	data, err := os.ReadFile(target.RootDocumentPath())
	require.NoError(t, err)
	assert.Equal(t, "known widgets, unknown {{MYSTERY}}\n", string(data))
}
