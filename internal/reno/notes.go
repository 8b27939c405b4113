package reno

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Note is a parsed note file: a prelude string plus the section values
// keyed by section id (a map; section order comes from the config).
type Note struct {
	Prelude  string
	Sections map[string][]string
}

// WarningKind classifies a non-fatal schema deviation found while parsing
// a note.
type WarningKind int

const (
	WarnPreludeNotString WarningKind = iota
	WarnUnknownSection
	WarnMalformedSection
	WarnNonStringNote
)

// Warning is one schema-drift finding surfaced by the note-content loader.
type Warning struct {
	Kind    WarningKind
	Path    string
	Section string
	Detail  string
}

// NoteLoader reads a note's YAML content at a given (path, commit-id)
// pair, consulting Repository for at-commit or working-copy reads.
type NoteLoader struct {
	repo   *Repository
	config *Config
}

// NewNoteLoader constructs a NoteLoader.
func NewNoteLoader(repo *Repository, config *Config) *NoteLoader {
	return &NoteLoader{repo: repo, config: config}
}

// Load reads and parses the note at ref. commitID is WorkingCopy to read
// from disk, otherwise a commit hash hex string.
func (l *NoteLoader) Load(ref NoteRef) (Note, []Warning, error) {
	var content []byte
	var ok bool
	var err error
	if ref.CommitID == WorkingCopy {
		content, ok, err = l.repo.FileOnDisk(ref.Path)
	} else {
		h, perr := hashFromHex(ref.CommitID)
		if perr != nil {
			return Note{}, nil, perr
		}
		content, ok, err = l.repo.FileAt(h, ref.Path)
	}
	if err != nil {
		return Note{}, nil, err
	}
	if !ok {
		return Note{}, nil, fmt.Errorf("note not found: %s at %s", ref.Path, ref.CommitID)
	}
	return l.Parse(ref.Path, content)
}

// Parse parses raw YAML bytes into a Note, emitting warnings for schema
// drift but never failing except when the top-level value isn't a
// mapping (ErrMalformedNote).
func (l *NoteLoader) Parse(path string, content []byte) (Note, []Warning, error) {
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return Note{}, nil, fmt.Errorf("%w: %s: %s", ErrMalformedNote, path, err)
	}

	known := map[string]bool{}
	for _, s := range l.config.Sections {
		known[s.ID] = true
	}

	note := Note{Sections: map[string][]string{}}
	var warnings []Warning

	for key, node := range raw {
		if key == l.config.PreludeSectionName {
			var s string
			if err := node.Decode(&s); err != nil {
				warnings = append(warnings, Warning{Kind: WarnPreludeNotString, Path: path, Section: key, Detail: "prelude is not a single string"})
				var fallback any
				node.Decode(&fallback)
				s = fmt.Sprintf("%v", fallback)
			}
			note.Prelude = s
			continue
		}

		if !known[key] {
			warnings = append(warnings, Warning{Kind: WarnUnknownSection, Path: path, Section: key, Detail: "unrecognized section"})
		}

		items, w, err := decodeSection(path, key, node)
		if err != nil {
			return Note{}, nil, err
		}
		warnings = append(warnings, w...)
		note.Sections[key] = items
	}

	return note, warnings, nil
}

// decodeSection normalizes a section value to a list of strings: a single
// scalar string is wrapped into a one-element list; a sequence has each
// item checked for string-ness; anything else is MalformedSection.
func decodeSection(path, key string, node yaml.Node) ([]string, []Warning, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return nil, nil, fmt.Errorf("%w: %s section %s: %s", ErrMalformedNote, path, key, err)
		}
		return []string{s}, nil, nil

	case yaml.SequenceNode:
		var items []string
		var warnings []Warning
		for _, item := range node.Content {
			if item.Tag != "!!str" {
				warnings = append(warnings, Warning{
					Kind: WarnNonStringNote, Path: path, Section: key,
					Detail: fmt.Sprintf("item parses as %s instead of a string", item.Tag),
				})
				continue
			}
			var s string
			if err := item.Decode(&s); err != nil {
				return nil, nil, fmt.Errorf("%w: %s section %s: %s", ErrMalformedNote, path, key, err)
			}
			items = append(items, s)
		}
		return items, warnings, nil

	default:
		return nil, []Warning{{Kind: WarnMalformedSection, Path: path, Section: key, Detail: "section is neither a string nor a list"}}, nil
	}
}
