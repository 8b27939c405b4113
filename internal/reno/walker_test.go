package reno

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/require"
)

func hash(b byte) plumbing.Hash {
	var h plumbing.Hash
	h[0] = b
	return h
}

func fakeParents(graph map[plumbing.Hash][]plumbing.Hash) parentsOf {
	return func(h plumbing.Hash) ([]plumbing.Hash, error) {
		return graph[h], nil
	}
}

func noTags(plumbing.Hash) bool { return false }

func TestWalkerLinearHistory(t *testing.T) {
	c, b, a := hash(3), hash(2), hash(1)
	graph := map[plumbing.Hash][]plumbing.Hash{
		c: {b},
		b: {a},
		a: {},
	}
	w := NewWalker(fakeParents(graph), func(plumbing.Hash) (bool, error) { return false, nil }, noTags, false)
	order, err := w.Walk(c, plumbing.Hash{})
	require.NoError(t, err)
	require.Equal(t, []plumbing.Hash{c, b, a}, order)
}

func TestWalkerStopsAtStopHash(t *testing.T) {
	c, b, a := hash(3), hash(2), hash(1)
	graph := map[plumbing.Hash][]plumbing.Hash{
		c: {b},
		b: {a},
		a: {},
	}
	w := NewWalker(fakeParents(graph), func(plumbing.Hash) (bool, error) { return false, nil }, noTags, false)
	order, err := w.Walk(c, b)
	require.NoError(t, err)
	require.Equal(t, []plumbing.Hash{c, b}, order)
}

func TestWalkerMergeEmitsSideBranchBeforeMainline(t *testing.T) {
	// m has parents (mainline, side); side has parent base; mainline has
	// parent base too.
	m, mainline, side, base := hash(4), hash(3), hash(2), hash(1)
	graph := map[plumbing.Hash][]plumbing.Hash{
		m:        {mainline, side},
		mainline: {base},
		side:     {base},
		base:     {},
	}
	w := NewWalker(fakeParents(graph), func(plumbing.Hash) (bool, error) { return false, nil }, noTags, false)
	order, err := w.Walk(m, plumbing.Hash{})
	require.NoError(t, err)
	require.Equal(t, m, order[0])
	require.Equal(t, base, order[len(order)-1])

	idxSide := indexOfHash(order, side)
	idxMainline := indexOfHash(order, mainline)
	require.Less(t, idxSide, idxMainline, "side branch should be emitted before mainline")
}

func TestWalkerElidesNullMerge(t *testing.T) {
	m, mainline, tagged := hash(3), hash(2), hash(1)
	graph := map[plumbing.Hash][]plumbing.Hash{
		m:        {mainline, tagged},
		mainline: {},
		tagged:   {},
	}
	sameTree := func(h plumbing.Hash) (bool, error) { return h == m, nil }
	hasTag := func(h plumbing.Hash) bool { return h == tagged }
	w := NewWalker(fakeParents(graph), sameTree, hasTag, true)
	order, err := w.Walk(m, plumbing.Hash{})
	require.NoError(t, err)
	require.Equal(t, []plumbing.Hash{m, mainline}, order)
}

func indexOfHash(hs []plumbing.Hash, target plumbing.Hash) int {
	for i, h := range hs {
		if h == target {
			return i
		}
	}
	return -1
}
