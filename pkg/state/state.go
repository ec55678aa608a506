// Package state persists what acforge knows about a target repository:
// which bundle release is installed and the checksum of every deployed
// file. The state file lives at .acforge/state.json inside the target.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/arthur-debert/acforge/pkg/errors"
	"github.com/arthur-debert/acforge/pkg/logging"
	"github.com/arthur-debert/acforge/pkg/paths"
)

// Installation records the deployment that produced the current tree.
// A nil Installation means the target has never been initialized.
type Installation struct {
	TemplateVersion string    `json:"template_version"`
	InstalledAt     time.Time `json:"installed_at"`
	CLIVersion      string    `json:"cli_version"`
}

// FileState is the recorded identity of one deployed template.
type FileState struct {
	Checksum string `json:"checksum"`
}

// TemplateState records the bundle that was deployed: the aggregate
// checksum plus a per-file checksum map keyed by template path.
type TemplateState struct {
	Checksum string               `json:"checksum"`
	Files    map[string]FileState `json:"files"`
}

// State is the full persisted model.
type State struct {
	Installation *Installation `json:"installation"`
	Templates    TemplateState `json:"templates"`
}

// Initialized reports whether an installation has been recorded.
func (s *State) Initialized() bool {
	return s != nil && s.Installation != nil
}

// NewState returns an empty, uninitialized state.
func NewState() *State {
	return &State{
		Templates: TemplateState{Files: make(map[string]FileState)},
	}
}

// Manager loads and saves the state file for one target.
type Manager struct {
	target *paths.Target
}

// NewManager returns a state manager for the given target.
func NewManager(target *paths.Target) *Manager {
	return &Manager{target: target}
}

// Load reads the state file. A missing file is not an error: it returns a
// fresh uninitialized state, so callers can treat "never deployed" and
// "deployed" uniformly.
func (m *Manager) Load() (*State, error) {
	logger := logging.GetLogger("state")

	data, err := os.ReadFile(m.target.StateFilePath())
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug().Str("path", m.target.StateFilePath()).Msg("no state file, starting fresh")
			return NewState(), nil
		}
		return nil, errors.Wrapf(err, errors.ErrStateLoad, "could not read state file: %s", m.target.StateFilePath())
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errors.Wrapf(err, errors.ErrStateLoad, "state file is corrupt: %s", m.target.StateFilePath())
	}
	if state.Templates.Files == nil {
		state.Templates.Files = make(map[string]FileState)
	}

	logger.Debug().
		Bool("initialized", state.Initialized()).
		Int("files", len(state.Templates.Files)).
		Msg("loaded state")
	return &state, nil
}

// Save persists the state atomically. The file is written next to its
// final location and renamed into place, so a crash mid-write leaves the
// previous state intact.
func (m *Manager) Save(state *State) error {
	if err := os.MkdirAll(m.target.StateDir(), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "could not create state directory: %s", m.target.StateDir())
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrStateSave, "could not encode state")
	}
	data = append(data, '\n')

	if err := writeAtomic(m.target.StateFilePath(), data); err != nil {
		return err
	}

	logger := logging.GetLogger("state")
	logger.Debug().
		Str("path", m.target.StateFilePath()).
		Int("files", len(state.Templates.Files)).
		Msg("saved state")
	return nil
}

// Transaction loads the state, applies fn, and saves the result only if
// fn succeeds. The on-disk file is untouched when fn returns an error.
func (m *Manager) Transaction(fn func(*State) error) error {
	state, err := m.Load()
	if err != nil {
		return err
	}
	if err := fn(state); err != nil {
		return err
	}
	return m.Save(state)
}

// writeAtomic writes data to path via a temp file in the same directory
// followed by a rename.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return errors.Wrapf(err, errors.ErrStateSave, "could not create temp file in %s", dir)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, errors.ErrStateSave, "could not write state")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, errors.ErrStateSave, "could not flush state")
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrStateSave, "could not replace state file: %s", path)
	}
	return nil
}
