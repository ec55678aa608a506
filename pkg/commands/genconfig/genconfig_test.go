package genconfig

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	acferrors "github.com/arthur-debert/acforge/pkg/errors"
	"github.com/arthur-debert/acforge/pkg/repodetect"
)

func testDetector() *repodetect.Detector {
	return repodetect.NewWithRunner(func(_ context.Context, _, name string, _ ...string) ([]byte, error) {
		if name == "gh" {
			return []byte(`{"owner":{"login":"acme"},"name":"widgets","url":"https://github.com/acme/widgets"}`), nil
		}
		return nil, errors.New("not scripted")
	})
}

func TestGenConfigWritesStarterFile(t *testing.T) {
	dir := t.TempDir()
	result, err := GenConfig(context.Background(), Options{
		Target:     dir,
		CLIVersion: "1.0.0-test",
		Detector:   testDetector(),
	})
	require.NoError(t, err)
	assert.True(t, result.Written)

	data, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[parameters]")
	assert.Contains(t, string(data), "widgets")
	assert.Contains(t, string(data), "acme")
}

func TestGenConfigRefusesOverwriteWithoutForce(t *testing.T) {
	dir := t.TempDir()
	opts := Options{Target: dir, CLIVersion: "1.0.0-test", Detector: testDetector()}
	_, err := GenConfig(context.Background(), opts)
	require.NoError(t, err)

	_, err = GenConfig(context.Background(), opts)
	require.Error(t, err)
	assert.True(t, acferrors.IsErrorCode(err, acferrors.ErrAlreadyInitialized))

	opts.Force = true
	result, err := GenConfig(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, result.Written)
}

func TestGenConfigDryRunReturnsContentWithoutWriting(t *testing.T) {
	dir := t.TempDir()
	result, err := GenConfig(context.Background(), Options{
		Target:     dir,
		CLIVersion: "1.0.0-test",
		DryRun:     true,
		Detector:   testDetector(),
	})
	require.NoError(t, err)
	assert.False(t, result.Written)
	assert.Contains(t, result.Content, "[preserve]")

	_, statErr := os.Stat(result.Path)
	assert.True(t, os.IsNotExist(statErr))
}
