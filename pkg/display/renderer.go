// Package display renders command results for the terminal. Rich mode
// styles output with lipgloss and pterm prefixes; plain mode emits the
// same structure without escape codes, for pipes and tests.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"

	"github.com/arthur-debert/acforge/pkg/style"
	"github.com/arthur-debert/acforge/pkg/types"
)

// Renderer writes command results to an output stream.
type Renderer struct {
	out   io.Writer
	plain bool
}

// New returns a renderer. Plain mode disables all styling.
func New(out io.Writer, plain bool) *Renderer {
	if plain {
		pterm.DisableColor()
	}
	return &Renderer{out: out, plain: plain}
}

// NewAuto returns a renderer that styles output only when stdout is an
// interactive terminal.
func NewAuto(out io.Writer) *Renderer {
	return New(out, !style.IsTerminal())
}

func (r *Renderer) title(s string) string {
	if r.plain {
		return s
	}
	return style.TitleStyle.Render(s)
}

func (r *Renderer) success(s string) string {
	if r.plain {
		return s
	}
	return style.SuccessStyle.Render(s)
}

func (r *Renderer) warning(s string) string {
	if r.plain {
		return s
	}
	return style.WarningStyle.Render(s)
}

func (r *Renderer) errorText(s string) string {
	if r.plain {
		return s
	}
	return style.ErrorStyle.Render(s)
}

func (r *Renderer) muted(s string) string {
	if r.plain {
		return s
	}
	return style.MutedStyle.Render(s)
}

func (r *Renderer) path(s string) string {
	if r.plain {
		return s
	}
	return style.PathStyle.Render(s)
}

func (r *Renderer) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.out, format, args...)
}

// RenderInit writes an init result.
func (r *Renderer) RenderInit(result *types.InitResult) {
	if result.DryRun {
		r.printf("%s\n\n", r.title("Init (dry run)"))
	} else {
		r.printf("%s\n\n", r.title("Initialized "+result.Target))
	}

	for _, file := range result.FilesCreated {
		verb := "created"
		if result.DryRun {
			verb = "would create"
		}
		r.printf("  %s %s\n", r.muted(verb), r.path(file))
	}

	if len(result.FilesCreated) > 0 {
		r.printf("\n")
	}
	r.printf("%s %s\n", r.muted("template version:"),
		shortChecksum(result.BundleChecksum))

	r.renderIssues(result.Warnings, result.Errors)
}

// RenderUpdate writes an update result.
func (r *Renderer) RenderUpdate(result *types.UpdateResult) {
	r.printf("%s\n", r.title(result.Message))

	if len(result.FilesUpdated) > 0 {
		r.printf("\n")
		verb := "updated"
		if result.DryRun {
			verb = "would update"
		}
		for _, file := range result.FilesUpdated {
			r.printf("  %s %s\n", r.muted(verb), r.path(file))
		}
	}

	if len(result.FilesPreserved) > 0 {
		r.printf("\n%s\n", r.success("Preserved customizations"))
		for _, file := range result.FilesPreserved {
			r.printf("  %s\n", r.path(file))
		}
	}

	if result.Analysis != nil && result.Analysis.HasConflicts() {
		r.printf("\n%s\n", r.errorText("Conflicts"))
		for _, c := range result.Analysis.Conflicts {
			r.printf("  %s %s %s\n", r.path(c.Path), r.muted("shadows"), r.path(c.Template))
		}
	}

	r.renderIssues(result.Warnings, result.Errors)
}

// RenderStatus writes a status report.
func (r *Renderer) RenderStatus(result *types.StatusResult) {
	a := result.Analysis
	r.printf("%s\n\n", r.title("Status for "+result.Target))

	switch a.Status {
	case types.StatusNotInitialized:
		r.printf("%s\n", r.warning("not initialized"))
		r.printf("%s %s\n", r.muted("available version:"), a.AvailableVersion)
		return
	case types.StatusUpToDate:
		r.printf("%s %s\n", r.success("up to date"), r.muted("(version "+a.CurrentVersion+")"))
	case types.StatusUpdateAvailable:
		r.printf("%s %s\n", r.warning("update available"),
			r.muted(a.CurrentVersion+" -> "+a.AvailableVersion))
	}

	r.renderFileSet("new", a.NewTemplates)
	r.renderFileSet("updated", a.UpdatedTemplates)
	r.renderFileSet("removed", a.RemovedTemplates)

	if len(a.PreservedCustomizations) > 0 {
		r.printf("\n%s\n", r.title("Customizations"))
		for _, file := range a.PreservedCustomizations {
			r.printf("  %s\n", r.path(file))
		}
	}

	if a.HasConflicts() {
		r.printf("\n%s\n", r.errorText("Conflicts"))
		for _, c := range a.Conflicts {
			r.printf("  %s %s %s\n", r.path(c.Path), r.muted("shadows"), r.path(c.Template))
			if c.Diff != "" {
				r.printf("%s\n", indent(r.muted(strings.TrimRight(c.Diff, "\n")), 4))
			}
		}
	}
}

// RenderGenConfig writes a gen-config result.
func (r *Renderer) RenderGenConfig(result *types.GenConfigResult) {
	if result.DryRun {
		r.printf("%s\n\n%s\n", r.title("Generated config (dry run)"), result.Content)
		return
	}
	r.printf("%s %s\n", r.success("wrote"), r.path(result.Path))
}

// RenderError writes an error in the standard shape.
func (r *Renderer) RenderError(err error) {
	r.printf("%s %v\n", r.errorText("error:"), err)
}

func (r *Renderer) renderFileSet(label string, files []string) {
	if len(files) == 0 {
		return
	}
	r.printf("\n%s\n", r.title(capitalize(label)+" templates"))
	for _, file := range files {
		r.printf("  %s %s\n", r.muted(label), r.path(file))
	}
}

func (r *Renderer) renderIssues(warnings, errs []string) {
	if len(warnings) > 0 {
		r.printf("\n")
		for _, w := range warnings {
			r.printf("%s %s\n", r.warning("warning:"), w)
		}
	}
	if len(errs) > 0 {
		r.printf("\n")
		for _, e := range errs {
			r.printf("%s %s\n", r.errorText("error:"), e)
		}
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func shortChecksum(sum string) string {
	if len(sum) > 8 {
		return sum[:8]
	}
	return sum
}

func indent(s string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = pad + line
		}
	}
	return strings.Join(lines, "\n")
}
