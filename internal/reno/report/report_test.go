package report_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nwallace/reno/internal/reno"
	"github.com/nwallace/reno/internal/reno/report"
)

func TestRenderOrdersSectionsAndVersions(t *testing.T) {
	cfg := reno.DefaultConfig
	result := reno.ScanResult{
		{
			Version: "1.1.0",
			Notes: []reno.NoteRef{
				{UID: "aaaa000000000000", Path: "notes/a.yaml", CommitID: "c1"},
			},
		},
		{
			Version: "1.0.0",
			Notes: []reno.NoteRef{
				{UID: "bbbb000000000000", Path: "notes/b.yaml", CommitID: "c2"},
			},
		},
	}
	contents := report.Contents{
		{Path: "notes/a.yaml", CommitID: "c1"}: {
			Prelude:  "Headline for 1.1.0.",
			Sections: map[string][]string{"features": {"added a thing"}},
		},
		{Path: "notes/b.yaml", CommitID: "c2"}: {
			Sections: map[string][]string{"fixes": {"fixed a bug"}},
		},
	}

	out := report.Render(result, contents, &cfg)

	idx110 := indexOf(out, "1.1.0")
	idx100 := indexOf(out, "1.0.0")
	require.GreaterOrEqual(t, idx110, 0)
	require.GreaterOrEqual(t, idx100, 0)
	require.Less(t, idx110, idx100, "newer version should render first")
	require.Contains(t, out, "New Features")
	require.Contains(t, out, "Bug Fixes")
	require.Contains(t, out, "- added a thing")
	require.Contains(t, out, "Headline for 1.1.0.")
}

func TestRenderSkipsEmptySections(t *testing.T) {
	cfg := reno.DefaultConfig
	result := reno.ScanResult{
		{Version: "1.0.0", Notes: []reno.NoteRef{{UID: "a", Path: "notes/a.yaml", CommitID: "c1"}}},
	}
	contents := report.Contents{
		{Path: "notes/a.yaml", CommitID: "c1"}: {Sections: map[string][]string{"fixes": {"x"}}},
	}

	out := report.Render(result, contents, &cfg)
	require.Contains(t, out, "Bug Fixes")
	require.NotContains(t, out, "New Features")
	require.NotContains(t, out, "Known Issues")
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
