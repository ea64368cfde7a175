// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

// Index is the existing set for one run: the library snapshot taken at the
// start of the run plus every recipe accepted since. It is not safe for
// concurrent use.
type Index struct {
	detector *Detector
	entries  []Fingerprint
	sources  map[string]string
}

// NewIndex returns an Index seeded with existing fingerprints.
func NewIndex(d *Detector, existing []Fingerprint) *Index {
	if d == nil {
		d = NewDetector()
	}
	idx := &Index{detector: d, sources: make(map[string]string, len(existing))}
	for _, fp := range existing {
		idx.Add(fp)
	}
	return idx
}

// Add records an accepted recipe.
func (i *Index) Add(fp Fingerprint) {
	i.entries = append(i.entries, fp)
	if fp.SourceID != "" {
		i.sources[fp.SourceID] = fp.ID
	}
}

// HasSourceID reports whether a recipe with sourceID is already known and
// returns its library id. Callers use it to skip detail fetches.
func (i *Index) HasSourceID(sourceID string) (string, bool) {
	id, ok := i.sources[sourceID]
	return id, ok
}

// Check runs the full duplicate check of fp against the index.
func (i *Index) Check(fp Fingerprint) Result {
	if id, ok := i.HasSourceID(fp.SourceID); ok && fp.SourceID != "" {
		return Result{Duplicate: true, MatchedID: id, MatchedBy: BySourceID, Score: 1}
	}
	return i.detector.IsDuplicate(fp, i.entries)
}

// Len returns the number of indexed recipes.
func (i *Index) Len() int { return len(i.entries) }
