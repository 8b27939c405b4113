package reno

import "errors"

// Sentinel errors for the scanner's error kinds. Callers should use
// errors.Is / errors.As rather than comparing messages.
var (
	// ErrUnknownRef is returned when a ref name resolves to nothing.
	ErrUnknownRef = errors.New("unknown ref")

	// ErrUnknownEarliestVersion is returned when the configured earliest
	// version is not a known tag on the target branch.
	ErrUnknownEarliestVersion = errors.New("unknown earliest version")

	// ErrMisconfiguredRegex is returned when pre_release_tag_re lacks the
	// pre_release named group; the check runs when the tag classifier is
	// built, before any stripping.
	ErrMisconfiguredRegex = errors.New("misconfigured regex")

	// ErrDuplicateUIDAdd is returned when two adds in one commit share a
	// UID and no subsequent delete cleans them up.
	ErrDuplicateUIDAdd = errors.New("duplicate uid add")

	// ErrUnrecognizedChangeSet is returned for an unexpected combination
	// of change types for one UID in one commit.
	ErrUnrecognizedChangeSet = errors.New("unrecognized change set")

	// ErrMalformedNote is returned when a note's YAML top level is not a
	// mapping.
	ErrMalformedNote = errors.New("malformed note")
)
