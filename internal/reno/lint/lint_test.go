package lint_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"

	"github.com/nwallace/reno/internal/reno"
	"github.com/nwallace/reno/internal/reno/lint"
)

func createGitRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return dir
}

func writeWorkingNote(t *testing.T, dir, relPath, content string) {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(relPath))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestRunSurfacesUnknownSectionWarning(t *testing.T) {
	dir := createGitRepo(t)
	cfg := reno.DefaultConfig
	writeWorkingNote(t, dir, cfg.NotesPath()+"/wip-1111111111111111.yaml", "totallyunknown:\n  - hi\n")

	repo, err := reno.OpenRepository(dir)
	require.NoError(t, err)
	defer repo.Close()

	loader := reno.NewNoteLoader(repo, &cfg)
	result := reno.ScanResult{
		{
			Version: reno.WorkingCopy,
			Notes: []reno.NoteRef{
				{UID: "1111111111111111", Path: cfg.NotesPath() + "/wip-1111111111111111.yaml", CommitID: reno.WorkingCopy},
			},
		},
	}

	findings, err := lint.Run(loader, result)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	require.Contains(t, findings[0].Message, "totallyunknown")
}

func TestRunReportsLoadFailureAsFinding(t *testing.T) {
	dir := createGitRepo(t)
	cfg := reno.DefaultConfig

	repo, err := reno.OpenRepository(dir)
	require.NoError(t, err)
	defer repo.Close()

	loader := reno.NewNoteLoader(repo, &cfg)
	result := reno.ScanResult{
		{
			Version: reno.WorkingCopy,
			Notes: []reno.NoteRef{
				{UID: "2222222222222222", Path: cfg.NotesPath() + "/missing-2222222222222222.yaml", CommitID: reno.WorkingCopy},
			},
		},
	}

	findings, err := lint.Run(loader, result)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	require.Equal(t, cfg.NotesPath()+"/missing-2222222222222222.yaml", findings[0].Path)
}
