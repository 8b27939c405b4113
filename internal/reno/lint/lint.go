// Package lint surfaces note-content schema problems across a full scan
// result, without failing the run: a malformed release note is a defect
// to report, not a reason to abort a scan.
package lint

import (
	"fmt"

	"github.com/nwallace/reno/internal/reno"
)

// Finding is one schema-drift problem found in one note.
type Finding struct {
	Path    string
	Commit  string
	Message string
}

// Run loads every note referenced by result through loader and converts
// every resulting warning into a Finding. A note that fails to load
// outright (I/O or decode error) is folded into a Finding rather than
// aborting the whole run, so one bad note never hides problems in the
// rest of the release.
func Run(loader *reno.NoteLoader, result reno.ScanResult) ([]Finding, error) {
	var findings []Finding
	for _, bucket := range result {
		for _, ref := range bucket.Notes {
			_, warnings, err := loader.Load(ref)
			if err != nil {
				findings = append(findings, Finding{
					Path:    ref.Path,
					Commit:  ref.CommitID,
					Message: err.Error(),
				})
				continue
			}
			for _, w := range warnings {
				findings = append(findings, Finding{
					Path:    ref.Path,
					Commit:  ref.CommitID,
					Message: formatWarning(w),
				})
			}
		}
	}
	return findings, nil
}

func formatWarning(w reno.Warning) string {
	if w.Section == "" {
		return w.Detail
	}
	return fmt.Sprintf("%s: %s", w.Section, w.Detail)
}
