package types

import "github.com/crimsonvanitas/brew/pkg/errors"

// FileChange records the values written to one file.
type FileChange struct {
	Path           string  `json:"path" yaml:"path"`
	OldRPath       *string `json:"old_rpath,omitempty" yaml:"old_rpath,omitempty"`
	NewRPath       *string `json:"new_rpath,omitempty" yaml:"new_rpath,omitempty"`
	OldInterpreter *string `json:"old_interpreter,omitempty" yaml:"old_interpreter,omitempty"`
	NewInterpreter *string `json:"new_interpreter,omitempty" yaml:"new_interpreter,omitempty"`
}

// FileFailure records a file-level error.
type FileFailure struct {
	Path  string           `json:"path" yaml:"path"`
	Code  errors.ErrorCode `json:"code" yaml:"code"`
	Error string           `json:"error" yaml:"error"`
}

// Summary is the outcome of relocating one package.
type Summary struct {
	Package string  `json:"package" yaml:"package"`
	Root    string  `json:"root" yaml:"root"`
	Mapping Mapping `json:"mapping" yaml:"mapping"`
	DryRun  bool    `json:"dry_run" yaml:"dry_run"`

	// SkippedByPolicy is set when the whole package was intentionally
	// left alone; it holds the reason.
	SkippedByPolicy string `json:"skipped_by_policy,omitempty" yaml:"skipped_by_policy,omitempty"`

	// Identity is set when the mapping could not change anything.
	Identity bool `json:"identity,omitempty" yaml:"identity,omitempty"`

	Relocated []FileChange  `json:"relocated" yaml:"relocated"`
	Unchanged []string      `json:"unchanged" yaml:"unchanged"`
	Ignored   []string      `json:"ignored" yaml:"ignored"`
	Failed    []FileFailure `json:"failed" yaml:"failed"`
}

// NewSummary creates an empty summary for pkg
func NewSummary(pkg Package, m Mapping) *Summary {
	return &Summary{
		Package:   pkg.Name,
		Root:      pkg.Root,
		Mapping:   m,
		Relocated: []FileChange{},
		Unchanged: []string{},
		Ignored:   []string{},
		Failed:    []FileFailure{},
	}
}

// AddFailure records err against path
func (s *Summary) AddFailure(path string, err error) {
	s.Failed = append(s.Failed, FileFailure{
		Path:  path,
		Code:  errors.GetErrorCode(err),
		Error: err.Error(),
	})
}

// HasFailures reports whether any file failed
func (s *Summary) HasFailures() bool {
	return len(s.Failed) > 0
}
