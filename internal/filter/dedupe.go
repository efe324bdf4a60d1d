// Package filter collapses the raw card pool and applies exclusion rules.
package filter

import "github.com/sells-group/edhtail/internal/model"

// CollapseByOracle drops records that are not commander faces and collapses
// reprints to one representative per oracle key. The first printing seen wins;
// later entries with the same key are discarded regardless of content.
// Output preserves first-sighting input order.
func CollapseByOracle(cards []model.Card) []model.Card {
	seen := make(map[string]struct{}, len(cards))
	pool := make([]model.Card, 0, len(cards))
	for _, c := range cards {
		if !c.IsCommanderFace() {
			continue
		}
		key := c.OracleKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		pool = append(pool, c)
	}
	return pool
}
