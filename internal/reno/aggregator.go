package reno

import (
	"fmt"
	"io"
	"log/slog"
)

// ChangeKind is the aggregated kind of change attributed to one UID
// within one commit, after the multi-entry collapsing rules below run.
type ChangeKind int

const (
	KindAdd ChangeKind = iota
	KindDelete
	KindModify
	KindRename
)

// AggregatedChange is one UID's change within a commit, after collapsing.
type AggregatedChange struct {
	UID     string
	Kind    ChangeKind
	OldPath string // set for Delete, Rename
	NewPath string // set for Add, Modify, Rename
}

// tainted uids survive across aggregation calls within one Scanner run: a
// UID that collapsed a {DELETE, DELETE, ...} set is remembered so that a
// later (in the reverse walk, "earlier in history") {ADD, ADD, ...} for
// the same UID is recognized as the split side of the same event rather
// than raising DuplicateUIDAdd.
type taintedUIDs map[string]bool

// Aggregator collapses a commit's raw per-path changes into per-UID
// AggregatedChanges, per the multi-entry rules: {ADD, DELETE} ->
// Rename, {MODIFY...} -> one Modify per entry, {DELETE...} -> one Delete
// per entry (UID tainted), {ADD...} -> error unless tainted (then
// dropped). Non-.yaml paths are logged and ignored.
type Aggregator struct {
	tainted taintedUIDs
	logger  *slog.Logger
}

// NewAggregator creates an Aggregator. logger may be nil, in which case a
// discarding logger is used.
func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Aggregator{tainted: taintedUIDs{}, logger: logger}
}

// Aggregate processes the raw changes for a single commit and returns the
// aggregated per-UID changes.
func (a *Aggregator) Aggregate(commitHash string, raw []RawChange) ([]AggregatedChange, error) {
	byUID := map[string][]RawChange{}
	for _, rc := range raw {
		if !isNotePath(rc.Path) {
			a.logger.Debug("ignoring non-note file under notes subtree", "path", rc.Path, "commit", commitHash)
			continue
		}
		uid := uniqueID(rc.Path)
		byUID[uid] = append(byUID[uid], rc)
	}

	var out []AggregatedChange
	for uid, entries := range byUID {
		ac, err := a.aggregateOne(uid, entries)
		if err != nil {
			return nil, fmt.Errorf("commit %s: %w", commitHash, err)
		}
		out = append(out, ac...)
	}
	return out, nil
}

func (a *Aggregator) aggregateOne(uid string, entries []RawChange) ([]AggregatedChange, error) {
	if len(entries) == 1 {
		return []AggregatedChange{singleChange(uid, entries[0])}, nil
	}

	kinds := map[Action]int{}
	for _, e := range entries {
		kinds[e.Action]++
	}

	switch {
	case kinds[ActionAdd] == 1 && kinds[ActionDelete] == 1 && len(entries) == 2:
		var add, del RawChange
		for _, e := range entries {
			if e.Action == ActionAdd {
				add = e
			} else {
				del = e
			}
		}
		return []AggregatedChange{{UID: uid, Kind: KindRename, OldPath: del.Path, NewPath: add.Path}}, nil

	case kinds[ActionModify] == len(entries):
		out := make([]AggregatedChange, 0, len(entries))
		for _, e := range entries {
			out = append(out, AggregatedChange{UID: uid, Kind: KindModify, NewPath: e.Path})
		}
		return out, nil

	case kinds[ActionDelete] == len(entries):
		a.tainted[uid] = true
		out := make([]AggregatedChange, 0, len(entries))
		for _, e := range entries {
			out = append(out, AggregatedChange{UID: uid, Kind: KindDelete, OldPath: e.Path})
		}
		return out, nil

	case kinds[ActionAdd] == len(entries):
		if a.tainted[uid] {
			// the matching delete(s) were observed already; this add set
			// is the split side of the same rename-like event, drop it.
			return nil, nil
		}
		return nil, fmt.Errorf("%w: uid %s", ErrDuplicateUIDAdd, uid)

	default:
		return nil, fmt.Errorf("%w: uid %s", ErrUnrecognizedChangeSet, uid)
	}
}

func singleChange(uid string, rc RawChange) AggregatedChange {
	switch rc.Action {
	case ActionAdd:
		return AggregatedChange{UID: uid, Kind: KindAdd, NewPath: rc.Path}
	case ActionDelete:
		return AggregatedChange{UID: uid, Kind: KindDelete, OldPath: rc.Path}
	default:
		return AggregatedChange{UID: uid, Kind: KindModify, NewPath: rc.Path}
	}
}
