package reno

import (
	"github.com/go-git/go-git/v5/plumbing"
)

// parentsOf abstracts commit-parent lookup so the walker can be tested
// without a real repository.
type parentsOf func(plumbing.Hash) ([]plumbing.Hash, error)

// sameTreeAsFirstParent abstracts the null-merge tree-identity check.
type sameTreeAsFirstParent func(plumbing.Hash) (bool, error)

// hasVersionTag abstracts "does this commit carry a version tag", used by
// null-merge elision to decide whether a merge's non-first parents stand
// in for a tagged maintenance branch.
type hasVersionTag func(plumbing.Hash) bool

// Walker produces commits reachable from a head in children-before-parents
// order where, for a merge node M with parents (P0, P1, ...), M is emitted
// first, then the subtree(s) reachable only through P1..., and only then
// does the P0 chain continue.
//
// Implemented as a two-pass iterative algorithm: a discovery pass
// computes, for every reachable commit, its "children" count (the number
// of already-discovered commits that name it as a (traversed) parent);
// an emission pass then repeatedly pops commits off an explicit stack,
// emitting one only once its children count has reached zero (i.e. every
// commit that depends on it has already been emitted), and otherwise
// dropping the premature pop — the commit will be re-pushed, and
// eventually emitted, when its last remaining child is processed.
// Parents are pushed left-to-right (mainline first) so that, being a
// stack, they pop right-to-left: side branches before mainline.
type Walker struct {
	parents    parentsOf
	sameTree   sameTreeAsFirstParent
	hasTag     hasVersionTag
	ignoreNull bool
}

// NewWalker constructs a Walker. ignoreNullMerges enables the optional
// null-merge elision described above.
func NewWalker(parents parentsOf, sameTree sameTreeAsFirstParent, hasTag hasVersionTag, ignoreNullMerges bool) *Walker {
	return &Walker{parents: parents, sameTree: sameTree, hasTag: hasTag, ignoreNull: ignoreNullMerges}
}

// Walk returns commit hashes reachable from head in emission order. If
// stop is non-zero, the walk terminates immediately after emitting stop.
func (w *Walker) Walk(head plumbing.Hash, stop plumbing.Hash) ([]plumbing.Hash, error) {
	children := map[plumbing.Hash]int{}
	visited := map[plumbing.Hash]bool{}
	traverseParents := map[plumbing.Hash][]plumbing.Hash{}

	var discover func(h plumbing.Hash) error
	discover = func(h plumbing.Hash) error {
		if visited[h] {
			return nil
		}
		visited[h] = true
		if _, ok := children[h]; !ok {
			children[h] = 0
		}

		parents, err := w.parents(h)
		if err != nil {
			return err
		}

		traverse := parents
		if w.ignoreNull && len(parents) >= 2 {
			null, err := w.isNullMerge(h, parents)
			if err != nil {
				return err
			}
			if null {
				// non-first parents stand in for a tagged maintenance
				// branch merged without content: mark emitted without
				// traversal by simply never discovering or counting them.
				traverse = parents[:1]
			}
		}
		traverseParents[h] = traverse

		for _, p := range traverse {
			children[p]++
			if err := discover(p); err != nil {
				return err
			}
		}
		return nil
	}
	if err := discover(head); err != nil {
		return nil, err
	}

	stack := []plumbing.Hash{head}
	emitted := map[plumbing.Hash]bool{}
	var order []plumbing.Hash

	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if emitted[h] {
			continue
		}
		if children[h] > 0 {
			// not ready: some commit that depends on h hasn't emitted
			// yet. Drop this pop; h will be pushed again (and eventually
			// become ready) when that commit is processed.
			continue
		}

		emitted[h] = true
		order = append(order, h)

		if stop != (plumbing.Hash{}) && h == stop {
			break
		}

		for _, p := range traverseParents[h] {
			children[p]--
			stack = append(stack, p)
		}
	}

	return order, nil
}

// isNullMerge reports whether h is a merge whose tree equals its first
// parent's tree and at least one non-first parent carries a version tag.
func (w *Walker) isNullMerge(h plumbing.Hash, parents []plumbing.Hash) (bool, error) {
	same, err := w.sameTree(h)
	if err != nil {
		return false, err
	}
	if !same {
		return false, nil
	}
	for _, p := range parents[1:] {
		if w.hasTag(p) {
			return true, nil
		}
	}
	return false, nil
}
