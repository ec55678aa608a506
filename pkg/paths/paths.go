// Package paths provides centralized path handling for acforge.
// All locations inside a target repository are derived here so the
// rest of the codebase never assembles them by hand.
package paths

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/acforge/pkg/errors"
)

// Directory and file names inside a target repository.
// IMPORTANT: These constants define acforge's on-disk layout and are NOT
// user-configurable. They must remain consistent across installations so
// that state written by one version is readable by the next.
const (
	// StateDirName is the directory holding acforge bookkeeping
	StateDirName = ".acforge"

	// ConfigDirName is the directory templates are deployed into
	ConfigDirName = ".claude"

	// StateFileName is the persisted installation state document
	StateFileName = "state.json"

	// ConfigFileName is the optional user configuration file
	ConfigFileName = "config.toml"

	// BackupsDirName holds timestamped customization backups
	BackupsDirName = "backups"

	// RootDocumentName is the single template deployed at the target root
	RootDocumentName = "CLAUDE.md"

	// TemplateSuffix is stripped from template file names on deployment
	TemplateSuffix = ".template"

	// LocalMarker identifies user customization files (foo.local.md
	// overrides foo.md)
	LocalMarker = ".local."

	// backupTimestampFormat namespaces each preservation run
	backupTimestampFormat = "20060102_150405"
)

// Target describes the acforge-relevant locations inside one target
// repository.
type Target struct {
	root string
}

// NewTarget resolves and validates a target repository root. The path must
// exist and be a directory.
func NewTarget(root string) (*Target, error) {
	if root == "" {
		root = "."
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve target path %q", root)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrInvalidInput, "target directory does not exist: %s", abs)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to stat target: %s", abs)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrInvalidInput, "target is not a directory: %s", abs)
	}

	return &Target{root: abs}, nil
}

// Root returns the absolute target repository root.
func (t *Target) Root() string {
	return t.root
}

// StateDir returns the .acforge bookkeeping directory.
func (t *Target) StateDir() string {
	return filepath.Join(t.root, StateDirName)
}

// ConfigDir returns the .claude directory templates are deployed into.
func (t *Target) ConfigDir() string {
	return filepath.Join(t.root, ConfigDirName)
}

// StateFilePath returns the persisted state document path.
func (t *Target) StateFilePath() string {
	return filepath.Join(t.StateDir(), StateFileName)
}

// ConfigFilePath returns the optional user config file path.
func (t *Target) ConfigFilePath() string {
	return filepath.Join(t.StateDir(), ConfigFileName)
}

// BackupsDir returns the root of all preservation backups.
func (t *Target) BackupsDir() string {
	return filepath.Join(t.StateDir(), BackupsDirName)
}

// NewBackupDir returns a fresh, timestamp-namespaced backup directory for
// one preservation run. The directory is not created here.
func (t *Target) NewBackupDir(now time.Time) string {
	return filepath.Join(t.BackupsDir(), now.Format(backupTimestampFormat))
}

// RootDocumentPath returns where the root document template lands.
func (t *Target) RootDocumentPath() string {
	return filepath.Join(t.root, RootDocumentName)
}

// HasExistingConfiguration reports whether the target already carries an
// acforge or claude configuration.
func (t *Target) HasExistingConfiguration() (hasState, hasConfig bool) {
	if _, err := os.Stat(t.StateDir()); err == nil {
		hasState = true
	}
	if _, err := os.Stat(t.ConfigDir()); err == nil {
		hasConfig = true
	}
	return hasState, hasConfig
}

// DestinationFor maps a template's bundle-relative path to its absolute
// destination inside the target. The root document template is placed at
// the target root; everything else preserves its relative path under the
// config directory. The .template suffix is stripped from the final name.
func (t *Target) DestinationFor(templatePath string) string {
	name := strings.TrimSuffix(templatePath, TemplateSuffix)

	if name == RootDocumentName {
		return t.RootDocumentPath()
	}

	return filepath.Join(t.ConfigDir(), filepath.FromSlash(name))
}

// RelativeToRoot returns path relative to the target root, for reporting.
// Falls back to the input on failure.
func (t *Target) RelativeToRoot(path string) string {
	rel, err := filepath.Rel(t.root, path)
	if err != nil {
		return path
	}
	return rel
}

// IsCustomization reports whether a file name carries the .local. marker.
func IsCustomization(name string) bool {
	return strings.Contains(filepath.Base(name), LocalMarker)
}

// CustomizationBase derives the base template name a customization file
// shadows: foo.local.md -> foo.md.
func CustomizationBase(relPath string) string {
	return strings.Replace(relPath, ".local", "", 1)
}
