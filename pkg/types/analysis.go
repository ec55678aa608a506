package types

// UpdateStatus classifies the outcome of an update analysis.
type UpdateStatus string

const (
	// StatusNotInitialized means no installation record exists yet.
	StatusNotInitialized UpdateStatus = "not_initialized"

	// StatusUpToDate means the installed bundle checksum matches the
	// available bundle.
	StatusUpToDate UpdateStatus = "up_to_date"

	// StatusUpdateAvailable means the checksums differ and per-file
	// classification is populated.
	StatusUpdateAvailable UpdateStatus = "update_available"
)

// Analysis is the read-only classification of installed state against the
// available template bundle. It is computed fresh on every call and never
// mutates anything.
type Analysis struct {
	Status           UpdateStatus `json:"status"`
	CurrentVersion   string       `json:"currentVersion"`
	AvailableVersion string       `json:"availableVersion"`

	// Per-file classification, only populated for StatusUpdateAvailable.
	// Paths present in both bundles with equal checksums are not reported.
	NewTemplates     []string `json:"newTemplates"`
	UpdatedTemplates []string `json:"updatedTemplates"`
	RemovedTemplates []string `json:"removedTemplates"`

	// PreservedCustomizations are all .local.* files found under the
	// config directory, relative to it. Every one is backed up and
	// restored around a deploy pass.
	PreservedCustomizations []string `json:"preservedCustomizations"`

	// Conflicts is the subset of PreservedCustomizations with non-empty
	// content that shadows a new or updated template.
	Conflicts []Conflict `json:"conflicts"`
}

// Conflict describes one customization file that collides with an incoming
// template change.
type Conflict struct {
	// Path is the customization file relative to the config directory.
	Path string `json:"path"`

	// Template is the bundle path of the template it shadows.
	Template string `json:"template"`

	// Diff is a unified diff between the customization content and the
	// incoming template content, for display only.
	Diff string `json:"diff,omitempty"`
}

// NeedsUpdate reports whether the analysis calls for a deployment pass.
func (a *Analysis) NeedsUpdate() bool {
	return a.Status == StatusUpdateAvailable
}

// HasConflicts reports whether any customization conflicts were detected.
func (a *Analysis) HasConflicts() bool {
	return len(a.Conflicts) > 0
}

// TemplatesToDeploy returns the union of new and updated template paths.
func (a *Analysis) TemplatesToDeploy() []string {
	out := make([]string, 0, len(a.NewTemplates)+len(a.UpdatedTemplates))
	out = append(out, a.NewTemplates...)
	out = append(out, a.UpdatedTemplates...)
	return out
}
