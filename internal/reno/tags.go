package reno

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/coreos/go-semver/semver"
)

// namedGroups runs re against s and returns the named capture groups as a
// map, along with whether the regex matched at all. Mirrors the
// capture-group-to-map idiom the corpus uses for branch rule matching;
// here it reads the pre-release regex's named groups.
func namedGroups(re *regexp.Regexp, s string) (map[string]string, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}
	d := map[string]string{}
	for i, n := range re.SubexpNames() {
		if i == 0 || n == "" {
			continue
		}
		d[n] = m[i]
	}
	return d, true
}

// TagClassifier decides, from configured regular expressions, which tags
// are version tags, which of those are pre-releases, and which tags stand
// in for a closed (deleted) series branch.
type TagClassifier struct {
	releaseTagRe    *regexp.Regexp
	preReleaseTagRe *regexp.Regexp
	branchNameRe    *regexp.Regexp
	closedBranchRe  *regexp.Regexp
	branchPrefix    string
}

// NewTagClassifier compiles the configured regexes, returning the compile
// error for any that fails to compile, and ErrMisconfiguredRegex if
// pre_release_tag_re has no pre_release named group. A tag that matches
// without capturing that group is not a pre-release (see PreRelease).
func NewTagClassifier(c *Config) (*TagClassifier, error) {
	release, err := regexp.Compile(c.ReleaseTagRe)
	if err != nil {
		return nil, fmt.Errorf("compiling release_tag_re: %w", err)
	}
	pre, err := regexp.Compile(c.PreReleaseTagRe)
	if err != nil {
		return nil, fmt.Errorf("compiling pre_release_tag_re: %w", err)
	}
	if idx := pre.SubexpIndex("pre_release"); idx == -1 {
		return nil, fmt.Errorf("%w: pre_release_tag_re has no 'pre_release' group", ErrMisconfiguredRegex)
	}
	branch, err := regexp.Compile(c.BranchNameRe)
	if err != nil {
		return nil, fmt.Errorf("compiling branch_name_re: %w", err)
	}
	closed, err := regexp.Compile(c.ClosedBranchTagRe)
	if err != nil {
		return nil, fmt.Errorf("compiling closed_branch_tag_re: %w", err)
	}
	return &TagClassifier{
		releaseTagRe:    release,
		preReleaseTagRe: pre,
		branchNameRe:    branch,
		closedBranchRe:  closed,
		branchPrefix:    c.BranchNamePrefix,
	}, nil
}

// IsVersionTag reports whether name fully matches release_tag_re.
func (t *TagClassifier) IsVersionTag(name string) bool {
	loc := t.releaseTagRe.FindStringIndex(name)
	return loc != nil && loc[0] == 0 && loc[1] == len(name)
}

// PreRelease reports whether name is a pre-release version tag, and if
// so, returns its canonical (stripped) form.
func (t *TagClassifier) PreRelease(name string) (canonical string, isPre bool) {
	groups, ok := namedGroups(t.preReleaseTagRe, name)
	if !ok {
		return "", false
	}
	suffix, ok := groups["pre_release"]
	if !ok {
		// Compilation already guaranteed the group exists in the pattern;
		// a match with no submatch captured for it (optional group that
		// didn't participate) means this particular tag isn't a pre-release.
		return "", false
	}
	if suffix == "" {
		return "", false
	}
	idx := strings.LastIndex(name, suffix)
	if idx == -1 {
		return "", false
	}
	return name[:idx], true
}

// Canonical returns the canonical release for a version tag: the tag
// itself if it is not a pre-release, or the stripped form if it is.
func (t *TagClassifier) Canonical(name string) string {
	if canon, ok := t.PreRelease(name); ok {
		return canon
	}
	return name
}

// IsSeriesBranch reports whether a (already ref-prefix-stripped) branch
// name matches branch_name_re.
func (t *TagClassifier) IsSeriesBranch(name string) bool {
	return t.branchNameRe.MatchString(name)
}

// ClosedBranchName reports whether tag is a closed-branch marker (an
// "-eol" style tag standing in for a deleted series branch) and, if so,
// returns the synthesized branch name (branch_name_prefix + captured
// series name).
func (t *TagClassifier) ClosedBranchName(tag string) (string, bool) {
	m := t.closedBranchRe.FindStringSubmatch(tag)
	if m == nil || len(m) < 2 {
		return "", false
	}
	return t.branchPrefix + m[1], true
}

// preferTag picks which of two tags sharing a commit should be treated as
// "the" tag for that commit: the one with the more recent tagger date: a
// tie is broken by comparing the tags as semantic versions (stripped of
// a leading 'v'), falling back to a plain
// string comparison when either fails to parse.
func preferTag(a, b TagRef) TagRef {
	if !a.Date.Equal(b.Date) {
		if a.Date.After(b.Date) {
			return a
		}
		return b
	}
	av, aerr := semver.NewVersion(strings.TrimPrefix(a.Name, "v"))
	bv, berr := semver.NewVersion(strings.TrimPrefix(b.Name, "v"))
	if aerr == nil && berr == nil {
		if av.LessThan(*bv) {
			return b
		}
		return a
	}
	if a.Name > b.Name {
		return a
	}
	return b
}
