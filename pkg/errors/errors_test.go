package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrNotInitialized, "repository not initialized")

	assert.Equal(t, ErrNotInitialized, err.Code)
	assert.Equal(t, "repository not initialized", err.Message)
	assert.Equal(t, "[NOT_INITIALIZED] repository not initialized", err.Error())
}

func TestNewf(t *testing.T) {
	err := Newf(ErrTemplateRead, "could not read template: %s", "agents/context.md")

	assert.Equal(t, ErrTemplateRead, err.Code)
	assert.Equal(t, "could not read template: agents/context.md", err.Message)
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	err := Wrap(cause, ErrStateSave, "failed to save state")

	require.NotNil(t, err)
	assert.Equal(t, ErrStateSave, err.Code)
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.Contains(t, err.Error(), "permission denied")
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrStateSave, "should be nil"))
	assert.Nil(t, Wrapf(nil, ErrStateSave, "should be %s", "nil"))
}

func TestIs(t *testing.T) {
	err := New(ErrConflict, "customization conflict")

	assert.True(t, errors.Is(err, New(ErrConflict, "other message")))
	assert.False(t, errors.Is(err, New(ErrNotFound, "other code")))
}

func TestIsErrorCode(t *testing.T) {
	err := Wrap(fmt.Errorf("io"), ErrFileAccess, "cannot read")

	assert.True(t, IsErrorCode(err, ErrFileAccess))
	assert.False(t, IsErrorCode(err, ErrFileWrite))
	assert.False(t, IsErrorCode(fmt.Errorf("plain"), ErrFileAccess))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrDeploy, GetErrorCode(New(ErrDeploy, "deploy failed")))
	assert.Equal(t, ErrUnknown, GetErrorCode(fmt.Errorf("plain")))

	// Wrapped AcforgeError is still found through a plain wrapper
	wrapped := fmt.Errorf("outer: %w", New(ErrConflict, "inner"))
	assert.Equal(t, ErrConflict, GetErrorCode(wrapped))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrDeploy, "deploy failed").
		WithDetail("template", "commands/review.md").
		WithDetail("target", "/tmp/repo")

	assert.Equal(t, "commands/review.md", err.Details["template"])
	assert.Equal(t, "/tmp/repo", err.Details["target"])
}
