package reno

import (
	"fmt"
	"path"

	"github.com/go-git/go-git/v5/plumbing"
)

// hashFromHex parses a commit id hex string into a plumbing.Hash,
// rejecting the WorkingCopy sentinel (callers must branch on that
// separately).
func hashFromHex(s string) (plumbing.Hash, error) {
	if s == "" || s == WorkingCopy {
		return plumbing.Hash{}, fmt.Errorf("not a commit hash: %q", s)
	}
	return plumbing.NewHash(s), nil
}

// joinRepoPath joins repository-relative path segments with '/', the
// separator git always uses internally regardless of host OS.
func joinRepoPath(parts ...string) string {
	return path.Join(parts...)
}

// pathBase returns the final path segment, e.g. for matching against
// ignore_notes basenames.
func pathBase(p string) string {
	return path.Base(p)
}
