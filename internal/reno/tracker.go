package reno

// NoteRef is a resolved (path, commit-id) pair as it should appear in
// scan output. CommitID is WorkingCopy for uncommitted notes.
type NoteRef struct {
	UID      string
	Path     string
	CommitID string
}

// Tracker maintains, across a reverse-chronological traversal, the
// earliest version at which each UID was observed and the most recent
// (path, commit-id) under which it should be reported.
type Tracker struct {
	versions     []string
	versionSeen  map[string]bool
	earliestSeen map[string]string // uid -> version
	lastNameByID map[string]NoteRef
	deletedUIDs  map[string]bool
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		versionSeen:  map[string]bool{},
		earliestSeen: map[string]string{},
		lastNameByID: map[string]NoteRef{},
		deletedUIDs:  map[string]bool{},
	}
}

// Versions returns the versions observed, in first-seen order.
func (t *Tracker) Versions() []string {
	out := make([]string, len(t.versions))
	copy(out, t.versions)
	return out
}

// noteVersion records that version was observed (first occurrence
// recorded in the returned slice order) and remembers the uid's
// earliest-seen version to date. Since the walk is reverse-chronological,
// later calls during the same walk record progressively earlier versions
// for a uid, which is the desired "earliest seen" semantics.
func (t *Tracker) noteVersion(version, uid string) {
	if !t.versionSeen[version] {
		t.versionSeen[version] = true
		t.versions = append(t.versions, version)
	}
	t.earliestSeen[uid] = version
}

// Apply records one aggregated change against the given version,
// following the transition table: add/rename/modify register a name if
// none is known yet (unless the uid was already deleted with no later
// re-add); delete marks the uid deleted unless a later (already-seen)
// name exists for it.
func (t *Tracker) Apply(version string, ch AggregatedChange, commitID string) {
	t.noteVersion(version, ch.UID)

	switch ch.Kind {
	case KindAdd, KindRename, KindModify:
		path := ch.NewPath
		if t.deletedUIDs[ch.UID] {
			return
		}
		if _, known := t.lastNameByID[ch.UID]; known {
			return
		}
		t.lastNameByID[ch.UID] = NoteRef{UID: ch.UID, Path: path, CommitID: commitID}

	case KindDelete:
		if _, known := t.lastNameByID[ch.UID]; known {
			return
		}
		t.deletedUIDs[ch.UID] = true
	}
}

// Buckets inverts the tracker into version -> []NoteRef, using each uid's
// earliest-seen version and its recorded name. UIDs with no recorded name
// (deleted with no later add) are omitted.
func (t *Tracker) Buckets() map[string][]NoteRef {
	out := map[string][]NoteRef{}
	for uid, version := range t.earliestSeen {
		ref, ok := t.lastNameByID[uid]
		if !ok {
			continue
		}
		out[version] = append(out[version], ref)
	}
	return out
}
