package reno

import (
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

// reachableSet returns every commit hash reachable (via all parents, no
// null-merge elision: this is plain ancestry, not a scan traversal) from
// head.
func reachableSet(head plumbing.Hash, parents parentsOf) (map[plumbing.Hash]bool, error) {
	seen := map[plumbing.Hash]bool{}
	var visit func(h plumbing.Hash) error
	visit = func(h plumbing.Hash) error {
		if seen[h] {
			return nil
		}
		seen[h] = true
		ps, err := parents(h)
		if err != nil {
			return err
		}
		for _, p := range ps {
			if err := visit(p); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit(head); err != nil {
		return nil, err
	}
	return seen, nil
}

// ancestryOrder returns target's ancestry (itself plus all reachable
// commits) in a topological order (children before parents, no
// null-merge elision applied) suitable for finding the first commit also
// reachable from another branch.
func ancestryOrder(target plumbing.Hash, parents parentsOf) ([]plumbing.Hash, error) {
	w := NewWalker(parents, func(plumbing.Hash) (bool, error) { return false, nil }, func(plumbing.Hash) bool { return false }, false)
	return w.Walk(target, plumbing.Hash{})
}

// BranchBase returns the commit where targetBranch diverged from
// defaultBranchHead: the first commit (in targetBranch's topological
// order) that is also reachable from defaultBranchHead. found is false if
// no such commit exists (e.g. unrelated histories). Whether the base
// carries a version tag is not checked here; callers look that up with
// LatestVersionTagOn and take no branch-base shortcut when it has none.
func BranchBase(defaultBranchHead, targetBranchHead plumbing.Hash, parents parentsOf) (base plumbing.Hash, found bool, err error) {
	reachable, err := reachableSet(defaultBranchHead, parents)
	if err != nil {
		return plumbing.Hash{}, false, err
	}
	order, err := ancestryOrder(targetBranchHead, parents)
	if err != nil {
		return plumbing.Hash{}, false, err
	}
	for _, c := range order {
		if reachable[c] {
			return c, true, nil
		}
	}
	return plumbing.Hash{}, false, nil
}

// LatestVersionTagOn returns the most recent (by tagger date, per
// preferTag) version tag whose resolved commit equals commit, among tags.
func LatestVersionTagOn(commit plumbing.Hash, tags []TagRef, classifier *TagClassifier) (TagRef, bool) {
	var best TagRef
	found := false
	for _, t := range tags {
		if t.Commit != commit || !classifier.IsVersionTag(t.Name) {
			continue
		}
		if !found {
			best = t
			found = true
			continue
		}
		best = preferTag(best, t)
	}
	return best, found
}

// SeriesBranchNames scans refNames (already stripped of their
// "refs/heads/"/"refs/remotes/origin/" prefix, as Repository.BranchNames
// returns) for names matching branch_name_re, sorted lexicographically.
func SeriesBranchNames(refNames []string, classifier *TagClassifier) []string {
	var out []string
	seen := map[string]bool{}
	for _, n := range refNames {
		if !classifier.IsSeriesBranch(n) {
			continue
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// immediatelyOlderSeriesBranch returns the series branch immediately
// before current in the sorted series-branch list (lexicographic order is
// assumed to track chronological series order, e.g. stable/2023.1 before
// stable/2023.2), or "" if current is the oldest or not found.
func immediatelyOlderSeriesBranch(current string, series []string) string {
	idx := sort.SearchStrings(series, current)
	if idx == 0 || idx >= len(series) || series[idx] != current {
		return ""
	}
	return series[idx-1]
}

// canonicalEquals reports whether two version tag names share the same
// canonical release per classifier.
func canonicalEquals(a, b string, classifier *TagClassifier) bool {
	return classifier.Canonical(a) == classifier.Canonical(b)
}

// StopPoint implements the §4.7 decision table: given the configured
// earliest_version, the full reverse-chronological tag list, the
// collapse-pre-releases flag, and which branch is being scanned, decides
// the tag at which the scan should stop (exclusive of further history).
// Returns ("", false) when there is no stop point (scan runs to the root).
func StopPoint(
	earliestVersion string,
	versionsByDate []string,
	collapse bool,
	branch string,
	defaultBranch string,
	seriesBranches []string,
	branchBase func(series string) (TagRef, bool, error),
	classifier *TagClassifier,
) (string, bool, error) {
	if earliestVersion == "" {
		return "", false, nil
	}

	if branch != "" && branch != defaultBranch && strings.TrimSpace(branch) != "" {
		older := immediatelyOlderSeriesBranch(branch, seriesBranches)
		if older != "" {
			tag, ok, err := branchBase(older)
			if err != nil {
				return "", false, err
			}
			if ok {
				return tag.Name, true, nil
			}
		}
	}

	idx := indexOf(versionsByDate, earliestVersion)
	if idx == -1 {
		return "", false, nil
	}

	_, isPre := classifier.PreRelease(earliestVersion)
	if isPre && !collapse {
		if idx+1 < len(versionsByDate) {
			return versionsByDate[idx+1], true, nil
		}
		return "", false, nil
	}

	for i := idx + 1; i < len(versionsByDate); i++ {
		if !canonicalEquals(earliestVersion, versionsByDate[i], classifier) {
			return versionsByDate[i], true, nil
		}
	}
	return "", false, nil
}

func indexOf(ss []string, s string) int {
	for i, v := range ss {
		if v == s {
			return i
		}
	}
	return -1
}
