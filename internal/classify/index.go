package classify

import "sort"

// Index is the auto-vivifying two-level mapping from case identity to
// category to the representative file location. It is populated during one
// classification pass and read-only afterwards; last writer wins for a
// (case, category) pair, with the traversal order as the tie-break.
type Index struct {
	entries map[string]map[string]string
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{entries: make(map[string]map[string]string)}
}

// GetOrCreate returns the category map for a case, inserting an empty map on
// first touch.
func (ix *Index) GetOrCreate(caseID string) map[string]string {
	inner, ok := ix.entries[caseID]
	if !ok {
		inner = make(map[string]string)
		ix.entries[caseID] = inner
	}
	return inner
}

// Put records the location for a (case, category) pair, overwriting any
// earlier entry without conflict detection.
func (ix *Index) Put(caseID, category, location string) {
	ix.GetOrCreate(caseID)[category] = location
}

// Lookup returns the recorded location for a (case, category) pair.
func (ix *Index) Lookup(caseID, category string) (string, bool) {
	location, ok := ix.entries[caseID][category]
	return location, ok
}

// Cases returns the recorded case identities in sorted order.
func (ix *Index) Cases() []string {
	cases := make([]string, 0, len(ix.entries))
	for caseID := range ix.entries {
		cases = append(cases, caseID)
	}
	sort.Strings(cases)
	return cases
}

// Categories returns the categories recorded for a case in sorted order.
func (ix *Index) Categories(caseID string) []string {
	inner := ix.entries[caseID]
	categories := make([]string, 0, len(inner))
	for category := range inner {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

// Len returns the number of recorded cases.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Snapshot returns a deep copy of the index contents, for logging and
// serialization without exposing internal maps.
func (ix *Index) Snapshot() map[string]map[string]string {
	out := make(map[string]map[string]string, len(ix.entries))
	for caseID, inner := range ix.entries {
		copied := make(map[string]string, len(inner))
		for category, location := range inner {
			copied[category] = location
		}
		out[caseID] = copied
	}
	return out
}
