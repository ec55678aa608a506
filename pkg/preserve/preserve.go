// Package preserve keeps user customizations alive across deployments.
// Before an update overwrites the configuration tree, customization files
// are copied into a timestamped backup directory; after the deployment
// they are restored byte for byte.
package preserve

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/arthur-debert/acforge/pkg/errors"
	"github.com/arthur-debert/acforge/pkg/logging"
	"github.com/arthur-debert/acforge/pkg/paths"
)

// Preserver backs up and restores customization files for one target.
type Preserver struct {
	target *paths.Target
}

// New returns a preserver for the given target.
func New(target *paths.Target) *Preserver {
	return &Preserver{target: target}
}

// FindCustomizations walks the config directory and returns every file
// carrying the .local. marker, as paths relative to the config directory,
// sorted. A missing config directory yields an empty list.
func (p *Preserver) FindCustomizations() ([]string, error) {
	var found []string

	root := p.target.ConfigDir()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !paths.IsCustomization(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		found = append(found, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "could not scan for customizations in %s", root)
	}

	sort.Strings(found)
	return found, nil
}

// Preserve copies the given customization files (paths relative to the
// config directory) into a fresh backup directory. Files that no longer
// exist are skipped silently. Returns the backed-up paths keyed to their
// backup locations.
func (p *Preserver) Preserve(relPaths []string, now time.Time) (map[string]string, error) {
	logger := logging.GetLogger("preserve")
	backupDir := p.target.NewBackupDir(now)

	preserved := make(map[string]string)
	for _, rel := range relPaths {
		src := filepath.Join(p.target.ConfigDir(), filepath.FromSlash(rel))
		dst := filepath.Join(backupDir, filepath.FromSlash(rel))

		data, err := os.ReadFile(src)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Debug().Str("path", rel).Msg("customization vanished, skipping")
				continue
			}
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "could not read customization: %s", rel)
		}

		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return nil, errors.Wrapf(err, errors.ErrDirCreate, "could not create backup directory for %s", rel)
		}
		mode := fileMode(src)
		if err := os.WriteFile(dst, data, mode); err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileWrite, "could not back up customization: %s", rel)
		}

		preserved[rel] = dst
		logger.Debug().Str("path", rel).Str("backup", dst).Msg("preserved customization")
	}

	return preserved, nil
}

// Restore copies backed-up customizations back into the config directory,
// byte for byte. Missing backups are skipped, mirroring Preserve. Returns
// the restored paths, sorted.
func (p *Preserver) Restore(preserved map[string]string) ([]string, error) {
	logger := logging.GetLogger("preserve")

	var restored []string
	for rel, backup := range preserved {
		data, err := os.ReadFile(backup)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Debug().Str("path", rel).Msg("backup missing, skipping")
				continue
			}
			return restored, errors.Wrapf(err, errors.ErrFileAccess, "could not read backup: %s", backup)
		}

		dst := filepath.Join(p.target.ConfigDir(), filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return restored, errors.Wrapf(err, errors.ErrDirCreate, "could not create directory for %s", rel)
		}
		if err := os.WriteFile(dst, data, fileMode(backup)); err != nil {
			return restored, errors.Wrapf(err, errors.ErrFileWrite, "could not restore customization: %s", rel)
		}

		restored = append(restored, rel)
		logger.Debug().Str("path", rel).Msg("restored customization")
	}

	sort.Strings(restored)
	return restored, nil
}

func fileMode(path string) os.FileMode {
	if info, err := os.Stat(path); err == nil {
		return info.Mode().Perm()
	}
	return 0644
}

// ShadowedTemplate reports whether a customization (relative to the config
// directory) shadows any of the given template names, and which one. A
// customization shadows a template when its base form (the .local marker
// removed) matches the template's deployed path, appears inside it, or
// shares its file name.
func ShadowedTemplate(customization string, templatePaths []string) (string, bool) {
	base := paths.CustomizationBase(customization)
	baseName := filepath.Base(base)

	for _, tmpl := range templatePaths {
		deployed := strings.TrimSuffix(tmpl, paths.TemplateSuffix)
		if deployed == base || strings.Contains(deployed, base) || filepath.Base(deployed) == baseName {
			return tmpl, true
		}
	}
	return "", false
}
