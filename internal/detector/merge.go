package detector

import "github.com/nao1215/privacypulse/internal/model"

// Merge appends to backend the local records whose key is not already
// present in backend. Keys compare the lowercased name and the lowercased
// domain, with the name standing in for a missing domain. Backend order is
// kept and backend is not modified.
func Merge(backend, local []model.TrackerRecord) []model.TrackerRecord {
	merged, _ := merge(backend, local)
	return merged
}

// DetectAndMerge runs Detect on doc and merges the result into backend.
// It returns the merged list and the local records that were added.
func (d *Detector) DetectAndMerge(doc Document, backend []model.TrackerRecord) (merged, added []model.TrackerRecord) {
	return merge(backend, d.Detect(doc))
}

func merge(backend, local []model.TrackerRecord) (merged, added []model.TrackerRecord) {
	known := make(map[string]struct{}, len(backend))
	for _, t := range backend {
		known[t.Key()] = struct{}{}
	}

	added = make([]model.TrackerRecord, 0, len(local))
	for _, t := range local {
		if _, ok := known[t.Key()]; ok {
			continue
		}
		added = append(added, t)
	}

	merged = make([]model.TrackerRecord, 0, len(backend)+len(added))
	merged = append(merged, backend...)
	merged = append(merged, added...)
	return merged, added
}
