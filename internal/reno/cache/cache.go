// Package cache reads and writes the reno.cache file: a serialized scan
// result plus the raw contents of every note it references, so
// downstream tools (report, lint) can skip re-scanning and re-reading
// blobs from git on every invocation.
package cache

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nwallace/reno/internal/reno"
)

// fileEntry is one note's (uid, name, sha) triple within a version block.
type fileEntry struct {
	UID  string `yaml:"uid"`
	Name string `yaml:"name"`
	SHA  string `yaml:"sha"`
}

// versionEntry is one top-level "notes" list item.
type versionEntry struct {
	Version string      `yaml:"version"`
	Files   []fileEntry `yaml:"files"`
}

// document is the on-disk shape: three top-level keys, matching the
// design's reno.cache layout.
type document struct {
	Notes        []versionEntry    `yaml:"notes"`
	FileContents map[string]string `yaml:"file-contents"`
	Dates        map[string]string `yaml:"dates"`
}

// Write serializes result plus the raw content of every note it
// references (keyed by path) and the tagger date of every version that
// has one, into the reno.cache format.
func Write(w io.Writer, result reno.ScanResult, raw map[string]string, dates map[string]string) error {
	doc := document{
		FileContents: raw,
		Dates:        dates,
	}
	for _, bucket := range result {
		entry := versionEntry{Version: bucket.Version}
		for _, note := range bucket.Notes {
			entry.Files = append(entry.Files, fileEntry{UID: note.UID, Name: note.Path, SHA: note.CommitID})
		}
		doc.Notes = append(doc.Notes, entry)
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}
	return nil
}

// Read deserializes a reno.cache document back into a ScanResult plus the
// raw note content keyed by path, preserving note and version order.
func Read(r io.Reader) (reno.ScanResult, map[string]string, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("decoding cache: %w", err)
	}

	var result reno.ScanResult
	for _, v := range doc.Notes {
		bucket := reno.VersionBucket{Version: v.Version}
		for _, f := range v.Files {
			bucket.Notes = append(bucket.Notes, reno.NoteRef{
				UID:      f.UID,
				Path:     f.Name,
				CommitID: f.SHA,
			})
		}
		result = append(result, bucket)
	}
	return result, doc.FileContents, nil
}

// FormatDate renders a tagger date the way the cache format stores it.
func FormatDate(t time.Time) string {
	return t.Format(time.RFC3339)
}
