package reno

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const path1 = "releasenotes/notes/a-abcdef0123456789.yaml"
const path2 = "releasenotes/notes/b-abcdef0123456789.yaml"

func TestAggregateSingleChange(t *testing.T) {
	a := NewAggregator(nil)
	out, err := a.Aggregate("c1", []RawChange{{Path: path1, Action: ActionAdd}})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, KindAdd, out[0].Kind)
	require.Equal(t, path1, out[0].NewPath)
}

func TestAggregateRename(t *testing.T) {
	a := NewAggregator(nil)
	out, err := a.Aggregate("c1", []RawChange{
		{Path: path1, Action: ActionDelete},
		{Path: path2, Action: ActionAdd},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, KindRename, out[0].Kind)
	require.Equal(t, path1, out[0].OldPath)
	require.Equal(t, path2, out[0].NewPath)
}

func TestAggregateAllModify(t *testing.T) {
	a := NewAggregator(nil)
	out, err := a.Aggregate("c1", []RawChange{
		{Path: path1, Action: ActionModify, ParentIndex: 0},
		{Path: path1, Action: ActionModify, ParentIndex: 1},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, ac := range out {
		require.Equal(t, KindModify, ac.Kind)
	}
}

func TestAggregateAllDeleteTaintsUID(t *testing.T) {
	a := NewAggregator(nil)
	out, err := a.Aggregate("c1", []RawChange{
		{Path: path1, Action: ActionDelete, ParentIndex: 0},
		{Path: path1, Action: ActionDelete, ParentIndex: 1},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, ac := range out {
		require.Equal(t, KindDelete, ac.Kind)
	}

	out2, err := a.Aggregate("c0", []RawChange{
		{Path: path1, Action: ActionAdd, ParentIndex: 0},
		{Path: path1, Action: ActionAdd, ParentIndex: 1},
	})
	require.NoError(t, err)
	require.Empty(t, out2)
}

func TestAggregateAllAddWithoutTaintErrors(t *testing.T) {
	a := NewAggregator(nil)
	_, err := a.Aggregate("c1", []RawChange{
		{Path: path1, Action: ActionAdd, ParentIndex: 0},
		{Path: path1, Action: ActionAdd, ParentIndex: 1},
	})
	require.ErrorIs(t, err, ErrDuplicateUIDAdd)
}

func TestAggregateMixedSetErrors(t *testing.T) {
	a := NewAggregator(nil)
	_, err := a.Aggregate("c1", []RawChange{
		{Path: path1, Action: ActionAdd, ParentIndex: 0},
		{Path: path1, Action: ActionModify, ParentIndex: 1},
	})
	require.ErrorIs(t, err, ErrUnrecognizedChangeSet)
}

func TestAggregateIgnoresNonYAML(t *testing.T) {
	a := NewAggregator(nil)
	out, err := a.Aggregate("c1", []RawChange{
		{Path: "releasenotes/notes/README.md", Action: ActionAdd},
	})
	require.NoError(t, err)
	require.Empty(t, out)
}
