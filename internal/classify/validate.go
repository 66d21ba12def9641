package classify

import (
	"sort"

	"cohort/internal/rules"
)

// FindMissing reports, per recorded case, the configured categories absent
// from the index. Fully complete cases are omitted, so an empty report means
// every case carries every category. The index is not modified and an
// incomplete index stays usable for downstream consumers.
func FindMissing(ix *Index, set *rules.Set) map[string][]string {
	configured := set.Categories()
	missing := make(map[string][]string)

	for _, caseID := range ix.Cases() {
		present := make(map[string]bool)
		for _, category := range ix.Categories(caseID) {
			present[category] = true
		}

		var gaps []string
		for _, category := range configured {
			if !present[category] {
				gaps = append(gaps, category)
			}
		}
		if len(gaps) > 0 {
			sort.Strings(gaps)
			missing[caseID] = gaps
		}
	}
	return missing
}
