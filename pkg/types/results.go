package types

import "time"

// InitResult holds the result of the 'init' command.
type InitResult struct {
	Target         string            `json:"target"`
	DryRun         bool              `json:"dryRun"`
	FilesCreated   []string          `json:"filesCreated"`
	ParametersUsed map[string]string `json:"parametersUsed"`
	BundleChecksum string            `json:"bundleChecksum"`
	Warnings       []string          `json:"warnings"`
	Errors         []string          `json:"errors"`
	Timestamp      time.Time         `json:"timestamp"`
}

// UpdateResult holds the result of the 'update' command.
type UpdateResult struct {
	Target         string    `json:"target"`
	DryRun         bool      `json:"dryRun"`
	Analysis       *Analysis `json:"analysis"`
	FilesUpdated   []string  `json:"filesUpdated"`
	FilesPreserved []string  `json:"filesPreserved"`
	FilesRestored  []string  `json:"filesRestored"`
	Message        string    `json:"message"`
	Warnings       []string  `json:"warnings"`
	Errors         []string  `json:"errors"`
	Timestamp      time.Time `json:"timestamp"`
}

// GenConfigResult holds the result of the 'gen-config' command.
type GenConfigResult struct {
	Target  string `json:"target"`
	Path    string `json:"path"`
	DryRun  bool   `json:"dryRun"`
	Content string `json:"content"`
	Written bool   `json:"written"`
}

// StatusResult holds the result of the 'status' command.
type StatusResult struct {
	Target   string    `json:"target"`
	Analysis *Analysis `json:"analysis"`
}
