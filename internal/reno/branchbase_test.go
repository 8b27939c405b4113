package reno

import (
	"testing"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/require"
)

func TestBranchBaseFindsDivergencePoint(t *testing.T) {
	// default branch: d2 -> base; series branch: s1 -> base.
	base, d2, s1 := hash(1), hash(2), hash(3)
	graph := map[plumbing.Hash][]plumbing.Hash{
		d2:   {base},
		s1:   {base},
		base: {},
	}
	parents := fakeParents(graph)

	got, found, err := BranchBase(d2, s1, parents)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, base, got)
}

func TestBranchBaseUnrelatedHistoriesNotFound(t *testing.T) {
	a, b := hash(1), hash(2)
	graph := map[plumbing.Hash][]plumbing.Hash{
		a: {},
		b: {},
	}
	parents := fakeParents(graph)

	_, found, err := BranchBase(a, b, parents)
	require.NoError(t, err)
	require.False(t, found)
}

func TestLatestVersionTagOnPrefersMostRecentDate(t *testing.T) {
	c := newClassifier(t)
	commit := hash(1)
	tags := []TagRef{
		{Name: "1.0.0", Commit: commit, Date: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Name: "1.0.1", Commit: commit, Date: time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)},
		{Name: "2.0.0", Commit: hash(2), Date: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	got, ok := LatestVersionTagOn(commit, tags, c)
	require.True(t, ok)
	require.Equal(t, "1.0.1", got.Name)
}

func TestSeriesBranchNamesFiltersAndSorts(t *testing.T) {
	c := newClassifier(t)
	names := []string{"main", "stable/2024.2", "stable/2024.1", "stable/2024.1"}
	got := SeriesBranchNames(names, c)
	require.Equal(t, []string{"stable/2024.1", "stable/2024.2"}, got)
}

func TestImmediatelyOlderSeriesBranch(t *testing.T) {
	series := []string{"stable/2024.1", "stable/2024.2", "stable/2024.3"}
	require.Equal(t, "stable/2024.1", immediatelyOlderSeriesBranch("stable/2024.2", series))
	require.Equal(t, "", immediatelyOlderSeriesBranch("stable/2024.1", series))
	require.Equal(t, "", immediatelyOlderSeriesBranch("unknown", series))
}

func TestStopPointNoEarliestVersion(t *testing.T) {
	c := newClassifier(t)
	tag, found, err := StopPoint("", nil, true, "", "master", nil, nil, c)
	require.NoError(t, err)
	require.False(t, found)
	require.Equal(t, "", tag)
}

func TestStopPointSkipsSameCanonicalWhenCollapsing(t *testing.T) {
	c := newClassifier(t)
	versionsByDate := []string{"1.2.0", "1.1.0.0rc2", "1.1.0.0rc1", "1.0.0"}
	tag, found, err := StopPoint("1.1.0.0rc1", versionsByDate, true, "", "master", nil, nil, c)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "1.0.0", tag)
}

func TestStopPointPreReleaseNoCollapseStopsAtNextEntry(t *testing.T) {
	c := newClassifier(t)
	versionsByDate := []string{"1.2.0", "1.1.0.0rc2", "1.1.0.0rc1", "1.0.0"}
	tag, found, err := StopPoint("1.1.0.0rc2", versionsByDate, false, "", "master", nil, nil, c)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "1.1.0.0rc1", tag)
}
