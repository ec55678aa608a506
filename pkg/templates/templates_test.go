package templates

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/acforge/pkg/errors"
)

func testBundle() fstest.MapFS {
	return fstest.MapFS{
		"CLAUDE.md.template":       {Data: []byte("# {{PROJECT_NAME}}\n")},
		"commands/go.md.template":  {Data: []byte("run it\n")},
		"guidelines/style.md":      {Data: []byte("match the code\n")},
		"scripts/boot.sh.template": {Data: []byte("#!/bin/sh\n")},
	}
}

func TestFilesSortedAndComplete(t *testing.T) {
	m := NewManagerFromFS(testBundle())

	files, err := m.Files()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"CLAUDE.md.template",
		"commands/go.md.template",
		"guidelines/style.md",
		"scripts/boot.sh.template",
	}, files)
}

func TestContentAndChecksum(t *testing.T) {
	m := NewManagerFromFS(testBundle())

	content, err := m.Content("guidelines/style.md")
	require.NoError(t, err)
	assert.Equal(t, "match the code\n", content)

	sum, err := m.Checksum("guidelines/style.md")
	require.NoError(t, err)
	expected := sha256.Sum256([]byte("match the code\n"))
	assert.Equal(t, hex.EncodeToString(expected[:]), sum)
}

func TestMissingTemplateError(t *testing.T) {
	m := NewManagerFromFS(testBundle())

	_, err := m.Content("no/such/file.md")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateRead))

	_, err = m.Checksum("no/such/file.md")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateRead))
}

func TestBundleChecksumStableAndContentSensitive(t *testing.T) {
	m := NewManagerFromFS(testBundle())

	first, err := m.BundleChecksum()
	require.NoError(t, err)
	second, err := m.BundleChecksum()
	require.NoError(t, err)
	assert.Equal(t, first, second, "same bundle must hash identically")

	changed := testBundle()
	changed["commands/go.md.template"] = &fstest.MapFile{Data: []byte("run it twice\n")}
	other, err := NewManagerFromFS(changed).BundleChecksum()
	require.NoError(t, err)
	assert.NotEqual(t, first, other, "single file change must change the bundle checksum")
}

func TestShortChecksum(t *testing.T) {
	assert.Equal(t, "abcd1234", ShortChecksum("abcd1234ef567890"))
	assert.Equal(t, "abc", ShortChecksum("abc"))
}

func TestIsScript(t *testing.T) {
	assert.True(t, IsScript("scripts/setup.sh.template"))
	assert.True(t, IsScript("scripts/setup.sh"))
	assert.False(t, IsScript("commands/review.md.template"))
	assert.False(t, IsScript("CLAUDE.md.template"))
}

func TestEmbeddedBundle(t *testing.T) {
	m := NewManager()

	files, err := m.Files()
	require.NoError(t, err)
	assert.NotEmpty(t, files)
	assert.Contains(t, files, "CLAUDE.md.template")
	assert.Contains(t, files, "settings.json.template")

	content, err := m.Content("CLAUDE.md.template")
	require.NoError(t, err)
	assert.Contains(t, content, "{{PROJECT_NAME}}")

	sum, err := m.BundleChecksum()
	require.NoError(t, err)
	assert.Len(t, sum, 64)
}
