package reno

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
)

// NoteKey identifies one revision of a note by its (path, commit-id) pair,
// e.g. for looking up its loaded content.
type NoteKey struct {
	Path     string
	CommitID string
}

// VersionBucket is one version's worth of notes in scan output order.
type VersionBucket struct {
	Version string
	Notes   []NoteRef
}

// ScanResult is the scanner's output: an ordered mapping from version to
// its notes, reverse-chronological with WorkingCopy and the synthetic
// current version first.
type ScanResult []VersionBucket

// Scanner composes the repository adapter, tag classifier, walker,
// aggregator and tracker into the full orchestration described in the
// design. It is single-threaded and synchronous: no method may run
// concurrently with another on the same instance.
type Scanner struct {
	repo       *Repository
	cfg        *Config
	classifier *TagClassifier
	logger     *slog.Logger
}

// NewScanner opens repoPath and validates cfg, returning a ready-to-use
// Scanner. Callers must defer Close.
func NewScanner(repoPath string, cfg *Config, logger *slog.Logger) (*Scanner, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	repo, err := OpenRepository(repoPath)
	if err != nil {
		return nil, err
	}
	classifier, err := NewTagClassifier(cfg)
	if err != nil {
		repo.Close()
		return nil, err
	}
	return &Scanner{repo: repo, cfg: cfg, classifier: classifier, logger: logger}, nil
}

// Close releases the underlying repository adapter's resources.
func (s *Scanner) Close() error {
	return s.repo.Close()
}

// Scan performs a full scan and returns the ordered result.
func (s *Scanner) Scan() (ScanResult, error) {
	branchRef := s.cfg.Branch
	targetHash, err := s.repo.ResolveRef(branchRef)
	if err != nil {
		return nil, err
	}

	allTags, err := s.repo.Tags()
	if err != nil {
		return nil, err
	}

	targetAncestry, err := reachableSet(targetHash, s.repo.CommitParents)
	if err != nil {
		return nil, err
	}

	var versionTagsOnBranch []TagRef
	tagAtCommit := map[plumbing.Hash]TagRef{}
	for _, t := range allTags {
		if !s.classifier.IsVersionTag(t.Name) {
			continue
		}
		if !targetAncestry[t.Commit] {
			continue
		}
		versionTagsOnBranch = append(versionTagsOnBranch, t)
		if existing, ok := tagAtCommit[t.Commit]; ok {
			tagAtCommit[t.Commit] = preferTag(existing, t)
		} else {
			tagAtCommit[t.Commit] = t
		}
	}
	sortTagsByDateDesc(versionTagsOnBranch)
	versionsByDate := make([]string, len(versionTagsOnBranch))
	for i, t := range versionTagsOnBranch {
		versionsByDate[i] = t.Name
	}

	currentVersion, err := s.syntheticCurrentVersion(targetHash, tagAtCommit)
	if err != nil {
		return nil, err
	}

	earliestVersion := s.cfg.EarliestVersion
	if earliestVersion != "" && indexOf(versionsByDate, earliestVersion) == -1 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEarliestVersion, earliestVersion)
	}

	branchNames, err := s.repo.BranchNames()
	if err != nil {
		return nil, err
	}
	seriesBranches := SeriesBranchNames(branchNames, s.classifier)

	defaultBranchHash, defaultErr := s.repo.ResolveRef(s.cfg.DefaultBranch)
	branchBaseOf := func(series string) (TagRef, bool, error) {
		if defaultErr != nil {
			return TagRef{}, false, nil
		}
		seriesHash, err := s.repo.ResolveRef(series)
		if err != nil {
			return TagRef{}, false, nil
		}
		base, found, err := BranchBase(defaultBranchHash, seriesHash, s.repo.CommitParents)
		if err != nil || !found {
			return TagRef{}, false, err
		}
		tag, ok := LatestVersionTagOn(base, versionTagsOnBranch, s.classifier)
		return tag, ok, nil
	}

	currentBranchName, _ := s.repo.CurrentBranch()

	if branchRef == "" && s.cfg.EarliestVersion == "" && s.cfg.StopAtBranchBase {
		older := ""
		if currentBranchName != "" && s.classifier.IsSeriesBranch(currentBranchName) {
			older = immediatelyOlderSeriesBranch(currentBranchName, seriesBranches)
		} else if len(seriesBranches) > 0 {
			older = seriesBranches[len(seriesBranches)-1]
		}
		if older != "" {
			baseTag, ok, err := branchBaseOf(older)
			if err != nil {
				return nil, err
			}
			if ok {
				if idx := indexOf(versionsByDate, baseTag.Name); idx > 0 {
					earliestVersion = versionsByDate[idx-1]
				}
			}
		}
	}

	scanStopTag := ""
	if earliestVersion != "" {
		tag, found, err := StopPoint(
			earliestVersion, versionsByDate, s.cfg.CollapsePreReleases,
			branchRef, s.cfg.DefaultBranch, seriesBranches, branchBaseOf, s.classifier,
		)
		if err != nil {
			return nil, err
		}
		if found {
			scanStopTag = tag
		}
	}
	var scanStopHash plumbing.Hash
	if scanStopTag != "" {
		for _, t := range versionTagsOnBranch {
			if t.Name == scanStopTag {
				scanStopHash = t.Commit
				break
			}
		}
	}

	tracker := NewTracker()
	notesSubtree := s.cfg.NotesPath()

	if branchRef == "" {
		idxChanges, wcChanges, err := s.repo.IndexAndWorkingCopyChanges(notesSubtree)
		if err != nil {
			return nil, err
		}
		agg := NewAggregator(s.logger)
		if err := s.applyRaw(tracker, agg, idxChanges, WorkingCopy, WorkingCopy); err != nil {
			return nil, err
		}
		agg2 := NewAggregator(s.logger)
		if err := s.applyRaw(tracker, agg2, wcChanges, WorkingCopy, WorkingCopy); err != nil {
			return nil, err
		}
	}

	hasVersionTag := func(h plumbing.Hash) bool {
		_, ok := tagAtCommit[h]
		return ok
	}
	walker := NewWalker(s.repo.CommitParents, s.repo.SameTree, hasVersionTag, s.cfg.IgnoreNullMerges)
	order, err := walker.Walk(targetHash, scanStopHash)
	if err != nil {
		return nil, err
	}

	agg := NewAggregator(s.logger)
	current := currentVersion
	for _, commit := range order {
		if t, ok := tagAtCommit[commit]; ok {
			current = t.Name
		}
		raw, err := s.repo.ChangesForCommit(commit, notesSubtree)
		if err != nil {
			return nil, err
		}
		if err := s.applyRaw(tracker, agg, raw, current, commit.String()); err != nil {
			return nil, err
		}
	}

	buckets := tracker.Buckets()

	if s.cfg.CollapsePreReleases {
		collapse(buckets, versionsByDate, s.classifier)
	}

	result := trim(buckets, versionsByDate, currentVersion, earliestVersion, s.cfg.IgnoreNotes)
	return result, nil
}

func (s *Scanner) applyRaw(tracker *Tracker, agg *Aggregator, raw []RawChange, version, commitID string) error {
	changes, err := agg.Aggregate(commitID, raw)
	if err != nil {
		return err
	}
	for _, ch := range changes {
		tracker.Apply(version, ch, commitID)
	}
	return nil
}

// syntheticCurrentVersion walks the first-parent chain from head, counting
// commits until a version tag is found; "<tag>" if count is 0, else
// "<tag>-<count>"; "0.0.0" if no tag is ever found.
func (s *Scanner) syntheticCurrentVersion(head plumbing.Hash, tagAtCommit map[plumbing.Hash]TagRef) (string, error) {
	count := 0
	h := head
	for {
		if t, ok := tagAtCommit[h]; ok {
			if count == 0 {
				return t.Name, nil
			}
			return fmt.Sprintf("%s-%d", t.Name, count), nil
		}
		parents, err := s.repo.CommitParents(h)
		if err != nil {
			return "", err
		}
		if len(parents) == 0 {
			return "0.0.0", nil
		}
		h = parents[0]
		count++
	}
}

func sortTagsByDateDesc(tags []TagRef) {
	sort.SliceStable(tags, func(i, j int) bool {
		if !tags[i].Date.Equal(tags[j].Date) {
			return tags[i].Date.After(tags[j].Date)
		}
		return preferTag(tags[i], tags[j]) == tags[i]
	})
}

// collapse folds every pre-release bucket into its canonical release's
// bucket, when that canonical release is itself present in
// versionsByDate, preserving input order within the merged bucket.
func collapse(buckets map[string][]NoteRef, versionsByDate []string, classifier *TagClassifier) {
	canonicalPresent := map[string]bool{}
	for _, v := range versionsByDate {
		canonicalPresent[v] = true
	}
	for _, v := range versionsByDate {
		canonical, isPre := classifier.PreRelease(v)
		if !isPre || !canonicalPresent[canonical] {
			continue
		}
		notes, ok := buckets[v]
		if !ok {
			continue
		}
		buckets[canonical] = append(buckets[canonical], notes...)
		delete(buckets, v)
	}
}

// trim produces the final ordered result: iterate [currentVersion,
// versionsByDate...] (WorkingCopy always first if non-empty), keep
// versions with at least one note, sort each bucket by UID ascending,
// filter ignoreNotes, and stop after emitting earliestVersion if set.
func trim(buckets map[string][]NoteRef, versionsByDate []string, currentVersion, earliestVersion string, ignoreNotes []string) ScanResult {
	ignored := map[string]bool{}
	for _, n := range ignoreNotes {
		ignored[n] = true
	}

	order := append([]string{WorkingCopy, currentVersion}, versionsByDate...)
	seen := map[string]bool{}

	var result ScanResult
	for _, v := range order {
		if seen[v] {
			continue
		}
		seen[v] = true
		notes := filterIgnored(buckets[v], ignored)
		if len(notes) == 0 {
			if v == earliestVersion {
				break
			}
			continue
		}
		sort.Slice(notes, func(i, j int) bool { return notes[i].UID < notes[j].UID })
		result = append(result, VersionBucket{Version: v, Notes: notes})
		if v == earliestVersion {
			break
		}
	}
	return result
}

func filterIgnored(notes []NoteRef, ignored map[string]bool) []NoteRef {
	if len(ignored) == 0 {
		return notes
	}
	var out []NoteRef
	for _, n := range notes {
		if ignored[n.UID] || ignored[pathBase(n.Path)] {
			continue
		}
		out = append(out, n)
	}
	return out
}
