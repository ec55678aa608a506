// Package templates exposes the bundled template catalog. The bundle ships
// embedded in the binary and is read-only: the catalog computes content
// checksums on demand and never writes anything.
package templates

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/arthur-debert/acforge/pkg/errors"
)

// ShortChecksumLen is the length of the abbreviated bundle checksum used as
// the human-facing template version.
const ShortChecksumLen = 8

// Manager is a read-only catalog over a template bundle. All methods are
// side-effect free and deterministic for a given bundle.
type Manager struct {
	fsys fs.FS
}

// NewManager returns the catalog over the embedded bundle.
func NewManager() *Manager {
	return &Manager{fsys: bundleFS()}
}

// NewManagerFromFS returns a catalog over an arbitrary bundle filesystem.
// Used by tests to simulate bundle releases.
func NewManagerFromFS(fsys fs.FS) *Manager {
	return &Manager{fsys: fsys}
}

// Files returns every template path in the bundle, sorted.
func (m *Manager) Files() ([]string, error) {
	var files []string
	err := fs.WalkDir(m.fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTemplateRead, "failed to walk template bundle")
	}
	sort.Strings(files)
	return files, nil
}

// Content returns the raw content of one template.
func (m *Manager) Content(path string) (string, error) {
	data, err := fs.ReadFile(m.fsys, path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrTemplateRead, "could not read template: %s", path)
	}
	return string(data), nil
}

// Checksum returns the hex SHA-256 of one template's raw bytes.
func (m *Manager) Checksum(path string) (string, error) {
	data, err := fs.ReadFile(m.fsys, path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrTemplateRead, "could not read template: %s", path)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// BundleChecksum returns the aggregate checksum over the whole bundle:
// the SHA-256 of every "path:checksum" line in sorted path order. Changing
// any single file's content changes the aggregate.
func (m *Manager) BundleChecksum() (string, error) {
	files, err := m.Files()
	if err != nil {
		return "", err
	}

	h := sha256.New()
	for _, path := range files {
		sum, err := m.Checksum(path)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(h, "%s:%s\n", path, sum)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ShortChecksum abbreviates a checksum for display as a template version.
func ShortChecksum(checksum string) string {
	if len(checksum) <= ShortChecksumLen {
		return checksum
	}
	return checksum[:ShortChecksumLen]
}

// IsScript reports whether a template should carry the executable bit once
// deployed.
func IsScript(path string) bool {
	name := strings.TrimSuffix(path, ".template")
	return strings.HasSuffix(name, ".sh")
}
