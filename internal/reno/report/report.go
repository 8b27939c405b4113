// Package report renders a scan result plus loaded note content into a
// reStructuredText release-notes document.
package report

import (
	"fmt"
	"strings"

	"github.com/nwallace/reno/internal/reno"
)

// Contents supplies the parsed Note for every NoteRef a ScanResult
// references, keyed by (path, commit-id).
type Contents map[reno.NoteKey]reno.Note

// Render writes result as reStructuredText: one heading per version in
// scan order, one subsection per section configured in cfg (in configured
// order), a bullet list of that section's entries across every note in
// the version, and prelude paragraphs concatenated ahead of the sections.
func Render(result reno.ScanResult, contents Contents, cfg *reno.Config) string {
	var b strings.Builder
	for i, bucket := range result {
		if i > 0 {
			b.WriteString("\n")
		}
		renderVersion(&b, bucket, contents, cfg)
	}
	return b.String()
}

func renderVersion(b *strings.Builder, bucket reno.VersionBucket, contents Contents, cfg *reno.Config) {
	title := bucket.Version
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len([]rune(title))) + "\n\n")

	var preludes []string
	for _, ref := range bucket.Notes {
		note, ok := contents[reno.NoteKey{Path: ref.Path, CommitID: ref.CommitID}]
		if !ok {
			continue
		}
		if strings.TrimSpace(note.Prelude) != "" {
			preludes = append(preludes, strings.TrimSpace(note.Prelude))
		}
	}
	for _, p := range preludes {
		b.WriteString(p + "\n\n")
	}

	for _, section := range cfg.Sections {
		var entries []string
		for _, ref := range bucket.Notes {
			note, ok := contents[reno.NoteKey{Path: ref.Path, CommitID: ref.CommitID}]
			if !ok {
				continue
			}
			entries = append(entries, note.Sections[section.ID]...)
		}
		if len(entries) == 0 {
			continue
		}
		b.WriteString(section.Title + "\n")
		b.WriteString(strings.Repeat("-", len([]rune(section.Title))) + "\n\n")
		for _, e := range entries {
			writeBullet(b, e)
		}
		b.WriteString("\n")
	}
}

// writeBullet writes a single reStructuredText bullet list item,
// indenting continuation lines so multi-line note entries stay inside
// the list item.
func writeBullet(b *strings.Builder, entry string) {
	lines := strings.Split(strings.TrimRight(entry, "\n"), "\n")
	b.WriteString(fmt.Sprintf("- %s\n", lines[0]))
	for _, l := range lines[1:] {
		b.WriteString("  " + l + "\n")
	}
}
