package reno

import (
	"path"
	"strings"
)

// uidLength is the fixed width of a note's unique id.
const uidLength = 16

// uniqueID extracts the stable 16-character identifier embedded in a note
// file's base name. Notes are named "<slug>-<uid>.yaml" (modern form) or
// "<uid>-<slug>.yaml" (legacy form, recognized by a '-' inside the
// trailing 16 characters of the stem). The uid is never validated beyond
// being taken verbatim from the name; it is not checked for hex-ness.
func uniqueID(notePath string) string {
	base := path.Base(notePath)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if len(stem) < uidLength {
		return stem
	}
	uid := stem[len(stem)-uidLength:]
	if strings.Contains(uid, "-") {
		// legacy naming: uid is a prefix, not a suffix.
		uid = stem[:uidLength]
	}
	return uid
}

// isNotePath reports whether p names a YAML file (the only files the
// scanner and aggregator consider within the notes subtree). Files under
// the notes subtree that don't end in ".yaml" are logged and ignored.
func isNotePath(p string) bool {
	return path.Ext(p) == ".yaml"
}
