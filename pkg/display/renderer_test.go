package display

import (
	"bytes"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"github.com/arthur-debert/acforge/pkg/types"
)

func plainRender(fn func(r *Renderer)) string {
	var buf bytes.Buffer
	fn(New(&buf, true))
	return buf.String()
}

func TestRenderInitGolden(t *testing.T) {
	out := plainRender(func(r *Renderer) {
		r.RenderInit(&types.InitResult{
			Target: "/work/widgets",
			FilesCreated: []string{
				"CLAUDE.md",
				".claude/commands/review.md",
			},
			ParametersUsed: map[string]string{"PROJECT_NAME": "widgets"},
			BundleChecksum: "abcd1234ef567890abcd1234ef567890",
			Timestamp:      time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
		})
	})

	g := goldie.New(t)
	g.Assert(t, "init", []byte(out))
}

func TestRenderUpdateConflictGolden(t *testing.T) {
	out := plainRender(func(r *Renderer) {
		r.RenderUpdate(&types.UpdateResult{
			Target:  "/work/widgets",
			Message: "update blocked by customization conflicts",
			Analysis: &types.Analysis{
				Status:           types.StatusUpdateAvailable,
				CurrentVersion:   "abcd1234",
				AvailableVersion: "ef567890",
				UpdatedTemplates: []string{"commands/review.md.template"},
				Conflicts: []types.Conflict{
					{Path: "commands/review.local.md", Template: "commands/review.md.template"},
				},
			},
			Errors: []string{"commands/review.local.md shadows commands/review.md.template"},
		})
	})

	g := goldie.New(t)
	g.Assert(t, "update_conflict", []byte(out))
}

func TestRenderStatusGolden(t *testing.T) {
	out := plainRender(func(r *Renderer) {
		r.RenderStatus(&types.StatusResult{
			Target: "/work/widgets",
			Analysis: &types.Analysis{
				Status:           types.StatusUpdateAvailable,
				CurrentVersion:   "abcd1234",
				AvailableVersion: "ef567890",
				NewTemplates:     []string{"commands/ship.md.template"},
				UpdatedTemplates: []string{"CLAUDE.md.template"},
			},
		})
	})

	g := goldie.New(t)
	g.Assert(t, "status_update_available", []byte(out))
}

func TestRenderStatusNotInitialized(t *testing.T) {
	out := plainRender(func(r *Renderer) {
		r.RenderStatus(&types.StatusResult{
			Target: "/work/widgets",
			Analysis: &types.Analysis{
				Status:           types.StatusNotInitialized,
				AvailableVersion: "ef567890",
			},
		})
	})

	assert.Contains(t, out, "not initialized")
	assert.Contains(t, out, "ef567890")
}

func TestRenderDryRunVerbs(t *testing.T) {
	out := plainRender(func(r *Renderer) {
		r.RenderInit(&types.InitResult{
			Target:       "/work/widgets",
			DryRun:       true,
			FilesCreated: []string{"CLAUDE.md"},
		})
	})

	assert.Contains(t, out, "would create")
	assert.NotContains(t, out, "  created")
}

func TestPlainOutputHasNoEscapeCodes(t *testing.T) {
	out := plainRender(func(r *Renderer) {
		r.RenderStatus(&types.StatusResult{
			Target:   "/work/widgets",
			Analysis: &types.Analysis{Status: types.StatusUpToDate, CurrentVersion: "abcd1234"},
		})
	})

	assert.NotContains(t, out, "\x1b[")
}
