// Package notewriter creates new, blank release-note files in the shape
// the scanner expects to find them: a random UID baked into the filename
// and a template-rendered YAML body.
package notewriter

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/nwallace/reno/internal/reno"
)

// Writer creates note files under a repository's configured notes
// directory.
type Writer struct {
	repoRoot string
	config   *reno.Config
}

// New constructs a Writer for the given repository root and config.
func New(repoRoot string, config *reno.Config) *Writer {
	return &Writer{repoRoot: repoRoot, config: config}
}

// New generates a random UID, renders the configured template, and writes
// <reporoot>/<relnotesdir>/<notesdir>/<slug>-<uid>.yaml. It returns the
// path written, relative to the repository root. Staging the result with
// git and invoking an editor are both left to the caller.
func (w *Writer) New(slug string) (string, error) {
	uid, err := randomUID()
	if err != nil {
		return "", fmt.Errorf("generating note uid: %w", err)
	}

	tmpl, err := template.New("note").Parse(w.config.Template)
	if err != nil {
		return "", fmt.Errorf("parsing note template: %w", err)
	}

	notesDir := filepath.Join(w.repoRoot, filepath.FromSlash(w.config.NotesPath()))
	if err := os.MkdirAll(notesDir, 0o755); err != nil {
		return "", fmt.Errorf("creating notes dir: %w", err)
	}

	name := fmt.Sprintf("%s-%s.yaml", slug, uid)
	relPath := filepath.Join(w.config.NotesPath(), name)
	fullPath := filepath.Join(notesDir, name)

	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating note file: %w", err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, nil); err != nil {
		return "", fmt.Errorf("rendering note template: %w", err)
	}
	return relPath, nil
}

// randomUID generates a 16-hex-character identifier from a
// cryptographically secure random source, matching the width uid.go
// expects to find embedded in a note's filename.
func randomUID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
