// Package params assembles the substitution parameter set for a target:
// detected repository identity, tool and bundle versions, and the
// timestamp, with config and caller overrides layered on top.
package params

import (
	"context"
	"time"

	"github.com/arthur-debert/acforge/pkg/repodetect"
)

// Template parameter names.
const (
	GitHubOwner     = "GITHUB_OWNER"
	ProjectName     = "PROJECT_NAME"
	RepoURL         = "REPO_URL"
	CreationDate    = "CREATION_DATE"
	AcforgeVersion  = "ACFORGE_VERSION"
	TemplateVersion = "TEMPLATE_VERSION"
)

// Build resolves the full parameter set for a deployment. Overrides are
// applied in order, so later maps win; empty override values are ignored.
func Build(ctx context.Context, detector *repodetect.Detector, dir, cliVersion, templateVersion string, now time.Time, overrides ...map[string]string) map[string]string {
	info := detector.Detect(ctx, dir)

	params := map[string]string{
		GitHubOwner:     info.Owner,
		ProjectName:     info.Name,
		RepoURL:         info.URL,
		CreationDate:    now.UTC().Format("2006-01-02"),
		AcforgeVersion:  cliVersion,
		TemplateVersion: templateVersion,
	}

	for _, override := range overrides {
		for name, value := range override {
			if value != "" {
				params[name] = value
			}
		}
	}
	return params
}
