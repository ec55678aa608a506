// Package repodetect discovers repository metadata for a target directory.
// It tries three sources in order of fidelity: the gh CLI, the git origin
// remote, and finally the directory name. Detection never fails: worse
// sources fill in what better ones could not.
package repodetect

import (
	"context"
	"encoding/json"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/arthur-debert/acforge/pkg/logging"
)

const (
	ghTimeout  = 10 * time.Second
	gitTimeout = 5 * time.Second
)

// Info is the detected repository identity.
type Info struct {
	Owner  string
	Name   string
	URL    string
	Source string // "gh", "git", or "dirname"
}

// Runner executes an external command and returns its stdout. It exists so
// tests can detect without gh or git installed.
type Runner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.Output()
}

// Detector resolves repository info for a directory.
type Detector struct {
	run Runner
}

// New returns a detector that shells out to gh and git.
func New() *Detector {
	return &Detector{run: execRunner}
}

// NewWithRunner returns a detector with a custom command runner.
func NewWithRunner(run Runner) *Detector {
	return &Detector{run: run}
}

// Detect resolves the repository identity of dir.
func (d *Detector) Detect(ctx context.Context, dir string) Info {
	logger := logging.GetLogger("repodetect")

	if info, ok := d.fromGH(ctx, dir); ok {
		logger.Debug().Str("owner", info.Owner).Str("name", info.Name).Msg("detected via gh")
		return info
	}
	if info, ok := d.fromGitRemote(ctx, dir); ok {
		logger.Debug().Str("owner", info.Owner).Str("name", info.Name).Msg("detected via git remote")
		return info
	}

	info := fromDirname(dir)
	logger.Debug().Str("name", info.Name).Msg("falling back to directory name")
	return info
}

type ghRepoView struct {
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (d *Detector) fromGH(ctx context.Context, dir string) (Info, bool) {
	ctx, cancel := context.WithTimeout(ctx, ghTimeout)
	defer cancel()

	out, err := d.run(ctx, dir, "gh", "repo", "view", "--json", "owner,name,url")
	if err != nil {
		return Info{}, false
	}

	var view ghRepoView
	if err := json.Unmarshal(out, &view); err != nil {
		return Info{}, false
	}
	if view.Owner.Login == "" || view.Name == "" {
		return Info{}, false
	}

	url := view.URL
	if url == "" {
		url = "https://github.com/" + view.Owner.Login + "/" + view.Name
	}
	return Info{Owner: view.Owner.Login, Name: view.Name, URL: url, Source: "gh"}, true
}

func (d *Detector) fromGitRemote(ctx context.Context, dir string) (Info, bool) {
	ctx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()

	out, err := d.run(ctx, dir, "git", "remote", "get-url", "origin")
	if err != nil {
		return Info{}, false
	}

	owner, name, ok := ParseGitHubRemote(strings.TrimSpace(string(out)))
	if !ok {
		return Info{}, false
	}
	return Info{
		Owner:  owner,
		Name:   name,
		URL:    "https://github.com/" + owner + "/" + name,
		Source: "git",
	}, true
}

// githubRemote matches both SSH (git@github.com:owner/repo.git) and HTTPS
// (https://github.com/owner/repo) remote URLs.
var githubRemote = regexp.MustCompile(`github\.com[:/]([^/]+)/([^/]+?)(?:\.git)?/?$`)

// ParseGitHubRemote extracts owner and repository name from a git remote
// URL. Returns false for non-GitHub remotes.
func ParseGitHubRemote(remote string) (owner, name string, ok bool) {
	m := githubRemote.FindStringSubmatch(remote)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

func fromDirname(dir string) Info {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	return Info{Name: filepath.Base(abs), Source: "dirname"}
}
