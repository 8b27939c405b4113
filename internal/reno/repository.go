package reno

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
)

// WorkingCopy is the sentinel version/commit-id used for notes that exist
// only in the index or on disk, not yet committed.
const WorkingCopy = "*working-copy*"

// Action classifies a single path change within a commit.
type Action int

const (
	ActionAdd Action = iota
	ActionDelete
	ActionModify
)

func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionDelete:
		return "delete"
	case ActionModify:
		return "modify"
	default:
		return "unknown"
	}
}

// RawChange is a single path change observed within one commit, against
// one of that commit's parents (index 0 for the first parent, etc). A
// root commit is diffed against an empty tree as parent index 0.
type RawChange struct {
	Path        string
	Action      Action
	ParentIndex int
}

// TagRef describes a tag ref together with the commit it ultimately
// resolves to (annotated tags are dereferenced) and its tagger date
// (falling back to the commit's own date for lightweight tags).
type TagRef struct {
	Name   string
	Commit plumbing.Hash
	Date   time.Time
}

// Repository is a read-only adapter over a go-git repository, exposing
// only the operations the scanner needs: ref resolution, commit
// iteration, blob retrieval, tag enumeration, and index/working-copy
// change listing. Mirrors the construct-then-defer-Close idiom of the
// teacher's Git wrapper.
type Repository struct {
	repo *git.Repository
	root string
}

// OpenRepository opens a repository at path. If path is empty, the
// process' current working directory is used.
func OpenRepository(path string) (*Repository, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		path = wd
	}
	r, err := git.PlainOpen(path)
	if err != nil {
		return nil, err
	}
	return &Repository{repo: r, root: path}, nil
}

// Close releases resources held by the repository adapter. go-git itself
// does not hold long-lived file descriptors beyond individual object
// reads, but Close exists so the Scanner can offer the same
// scoped-acquisition guarantee described in the design: construct, defer
// Close, never reuse after.
func (r *Repository) Close() error {
	r.repo = nil
	return nil
}

// Root returns the filesystem path of the repository's working tree.
func (r *Repository) Root() string {
	return r.root
}

// ResolveRef resolves name to a commit hash, trying in order: local
// branch, remote branch, tag, a synthesized "<last-path-segment>-eol" tag,
// and "origin/<name>". Returns ErrUnknownRef if none match. An empty name
// resolves HEAD.
func (r *Repository) ResolveRef(name string) (plumbing.Hash, error) {
	if name == "" {
		head, err := r.repo.Head()
		if err != nil {
			return plumbing.ZeroHash, err
		}
		return r.DereferenceTag(head.Hash())
	}

	candidates := []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(name),
		plumbing.NewRemoteReferenceName("origin", name),
		plumbing.NewTagReferenceName(name),
	}
	for _, cand := range candidates {
		ref, err := r.repo.Reference(cand, true)
		if err == nil {
			return r.DereferenceTag(ref.Hash())
		}
	}

	// synthesized "-eol" tag derived from the last path segment of name.
	seg := name
	if idx := strings.LastIndex(name, "/"); idx != -1 {
		seg = name[idx+1:]
	}
	eolTag := plumbing.NewTagReferenceName(seg + "-eol")
	if ref, err := r.repo.Reference(eolTag, true); err == nil {
		return r.DereferenceTag(ref.Hash())
	}

	originName := "origin/" + name
	if ref, err := r.repo.Reference(plumbing.ReferenceName("refs/remotes/"+originName), true); err == nil {
		return r.DereferenceTag(ref.Hash())
	}

	return plumbing.ZeroHash, fmt.Errorf("%w: %s", ErrUnknownRef, name)
}

// DereferenceTag walks an annotated tag chain to the commit it ultimately
// points to. If hash already names a commit (or a lightweight tag, which
// points directly at one), it is returned unchanged.
func (r *Repository) DereferenceTag(hash plumbing.Hash) (plumbing.Hash, error) {
	for {
		tag, err := r.repo.TagObject(hash)
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return hash, nil
		}
		if err != nil {
			return plumbing.ZeroHash, err
		}
		hash = tag.Target
	}
}

// CurrentBranch returns the short name of HEAD, or an empty string when
// HEAD is detached.
func (r *Repository) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", err
	}
	if !head.Name().IsBranch() {
		return "", nil
	}
	return head.Name().Short(), nil
}

// CommitParents returns the parent hashes of a commit, in order.
func (r *Repository) CommitParents(hash plumbing.Hash) ([]plumbing.Hash, error) {
	c, err := r.repo.CommitObject(hash)
	if err != nil {
		return nil, err
	}
	return c.ParentHashes, nil
}

// FileAt retrieves the contents of a file at the given path as it exists
// in the tree at commit. ok is false if the path does not exist at that
// commit (traversal hit a missing segment or the leaf itself is absent).
func (r *Repository) FileAt(hash plumbing.Hash, filePath string) (content []byte, ok bool, err error) {
	c, err := r.repo.CommitObject(hash)
	if err != nil {
		return nil, false, err
	}
	tree, err := c.Tree()
	if err != nil {
		return nil, false, err
	}
	f, err := tree.File(filePath)
	if errors.Is(err, object.ErrFileNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	rc, err := f.Reader()
	if err != nil {
		return nil, false, err
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// FileOnDisk reads a path relative to the working tree root, for the
// WorkingCopy sentinel commit-id. ok is false if the file does not exist.
func (r *Repository) FileOnDisk(relPath string) (content []byte, ok bool, err error) {
	b, err := os.ReadFile(path.Join(r.root, relPath))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Tags enumerates all tag refs, dereferencing annotated tags to the
// commit they point to and recording the tagger date (or the commit's
// own date, for lightweight tags).
func (r *Repository) Tags() ([]TagRef, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, err
	}
	var out []TagRef
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		hash := ref.Hash()

		tagObj, err := r.repo.TagObject(hash)
		var date time.Time
		var commitHash plumbing.Hash
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			// lightweight tag: hash already names the commit.
			commitHash = hash
			c, cerr := r.repo.CommitObject(commitHash)
			if cerr != nil {
				return cerr
			}
			date = c.Committer.When
		} else if err != nil {
			return err
		} else {
			date = tagObj.Tagger.When
			commitHash, err = r.DereferenceTag(tagObj.Target)
			if err != nil {
				return err
			}
		}

		out = append(out, TagRef{Name: name, Commit: commitHash, Date: date})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// BranchNames lists local and remote branch ref names, stripped of their
// "refs/heads/" or "refs/remotes/origin/" prefix.
func (r *Repository) BranchNames() ([]string, error) {
	refs, err := r.repo.References()
	if err != nil {
		return nil, err
	}
	var out []string
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		n := ref.Name()
		switch {
		case n.IsBranch():
			out = append(out, strings.TrimPrefix(n.String(), "refs/heads/"))
		case n.IsRemote():
			out = append(out, strings.TrimPrefix(n.String(), "refs/remotes/origin/"))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// IndexAndWorkingCopyChanges returns the staged (index) and unstaged
// (working copy) path changes relative to HEAD, confined to subtree. A
// path that exists on disk is an add/modify (the scanner treats both the
// same way for WorkingCopy attribution), including a never-staged
// (Untracked) path — a note just written by notewriter and not yet
// `git add`ed must still surface here; a path missing on disk is a
// delete.
func (r *Repository) IndexAndWorkingCopyChanges(subtree string) (indexChanges, workingChanges []RawChange, err error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, nil, err
	}
	status, err := wt.Status()
	if err != nil {
		return nil, nil, err
	}
	for file, st := range status {
		if subtree != "" && !strings.HasPrefix(file, subtree+"/") {
			continue
		}
		if a, ok := actionFor(st.Staging); ok {
			indexChanges = append(indexChanges, RawChange{Path: file, Action: a})
		}
		if a, ok := actionFor(st.Worktree); ok {
			workingChanges = append(workingChanges, RawChange{Path: file, Action: a})
		}
	}
	return indexChanges, workingChanges, nil
}

func actionFor(code git.StatusCode) (Action, bool) {
	switch code {
	case git.Added, git.Copied, git.Untracked:
		return ActionAdd, true
	case git.Modified, git.Renamed:
		return ActionModify, true
	case git.Deleted:
		return ActionDelete, true
	default:
		return 0, false
	}
}

// ChangesForCommit returns the raw path changes for a commit confined to
// subtree, one set of changes per parent (parent index 0 for a root
// commit diffed against an empty tree). Merge commits therefore surface
// changes relative to every parent, which is what lets the aggregator
// recognize {MODIFY, MODIFY} pairs introduced by both sides of a merge.
func (r *Repository) ChangesForCommit(hash plumbing.Hash, subtree string) ([]RawChange, error) {
	c, err := r.repo.CommitObject(hash)
	if err != nil {
		return nil, err
	}
	commitTree, err := c.Tree()
	if err != nil {
		return nil, err
	}

	if c.NumParents() == 0 {
		changes, err := object.DiffTree(nil, commitTree)
		if err != nil {
			return nil, err
		}
		return filterChanges(changes, subtree, 0)
	}

	var all []RawChange
	for i, ph := range c.ParentHashes {
		parent, err := r.repo.CommitObject(ph)
		if err != nil {
			return nil, err
		}
		parentTree, err := parent.Tree()
		if err != nil {
			return nil, err
		}
		changes, err := object.DiffTree(parentTree, commitTree)
		if err != nil {
			return nil, err
		}
		rcs, err := filterChanges(changes, subtree, i)
		if err != nil {
			return nil, err
		}
		all = append(all, rcs...)
	}
	return all, nil
}

// SameTree reports whether commit's tree is identical to its first
// parent's tree, used by the walker's null-merge elision.
func (r *Repository) SameTree(hash plumbing.Hash) (bool, error) {
	c, err := r.repo.CommitObject(hash)
	if err != nil {
		return false, err
	}
	if c.NumParents() == 0 {
		return false, nil
	}
	parent, err := r.repo.CommitObject(c.ParentHashes[0])
	if err != nil {
		return false, err
	}
	ct, err := c.Tree()
	if err != nil {
		return false, err
	}
	pt, err := parent.Tree()
	if err != nil {
		return false, err
	}
	return ct.Hash == pt.Hash, nil
}

func filterChanges(changes object.Changes, subtree string, parentIndex int) ([]RawChange, error) {
	var out []RawChange
	for _, ch := range changes {
		var name string
		if ch.To.Name != "" {
			name = ch.To.Name
		} else {
			name = ch.From.Name
		}
		if subtree != "" && !strings.HasPrefix(name, subtree+"/") && name != subtree {
			continue
		}
		action, err := ch.Action()
		if err != nil {
			return nil, err
		}
		var a Action
		switch action {
		case merkletrie.Insert:
			a = ActionAdd
		case merkletrie.Delete:
			a = ActionDelete
		case merkletrie.Modify:
			a = ActionModify
		default:
			continue
		}
		out = append(out, RawChange{Path: name, Action: a, ParentIndex: parentIndex})
	}
	return out, nil
}
