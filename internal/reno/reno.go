// Package reno implements the git-history scanner that attributes
// release-note files to the versions they belong to.
package reno

import (
	"io"
	"log/slog"
)

// Opts are the options provided to the entry point New.
type Opts struct {
	RepoPath string
	Config   *Config // overrides layered onto DefaultConfig; may be nil
	Logger   *slog.Logger
}

// New opens a repository and returns a ready-to-use Scanner. Callers must
// defer Close.
func New(o *Opts) (*Scanner, error) {
	l := o.Logger
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cfg, err := LoadConfig(o.RepoPath, o.Config)
	if err != nil {
		return nil, err
	}
	return NewScanner(o.RepoPath, cfg, l.With("name", "scanner"))
}
