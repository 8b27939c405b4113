package cache_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nwallace/reno/internal/reno"
	"github.com/nwallace/reno/internal/reno/cache"
)

func TestWriteReadRoundTrip(t *testing.T) {
	result := reno.ScanResult{
		{
			Version: "1.2.0",
			Notes: []reno.NoteRef{
				{UID: "abcdef0123456789", Path: "releasenotes/notes/fix-abcdef0123456789.yaml", CommitID: "deadbeef"},
			},
		},
		{
			Version: reno.WorkingCopy,
			Notes: []reno.NoteRef{
				{UID: "1111111111111111", Path: "releasenotes/notes/wip-1111111111111111.yaml", CommitID: reno.WorkingCopy},
			},
		},
	}
	raw := map[string]string{
		"releasenotes/notes/fix-abcdef0123456789.yaml": "fixes:\n  - something\n",
	}
	dates := map[string]string{"1.2.0": "2024-01-02T03:04:05Z"}

	var buf bytes.Buffer
	require.NoError(t, cache.Write(&buf, result, raw, dates))

	gotResult, gotRaw, err := cache.Read(&buf)
	require.NoError(t, err)
	require.Equal(t, result, gotResult)
	require.Equal(t, raw, gotRaw)
}

func TestReadEmptyDocument(t *testing.T) {
	r := bytes.NewBufferString("notes: []\n")
	result, raw, err := cache.Read(r)
	require.NoError(t, err)
	require.Empty(t, result)
	require.Empty(t, raw)
}

func TestReadMalformed(t *testing.T) {
	r := bytes.NewBufferString("notes: \"not-a-list\"\n")
	_, _, err := cache.Read(r)
	require.Error(t, err)
}
