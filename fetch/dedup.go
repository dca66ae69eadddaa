package fetch

import (
	"math/rand"
	"sort"
	"strings"

	"github.com/datapages/irw-go/frame"
)

// dedupSeed makes the random retention draw reproducible across runs.
const dedupSeed = 42

// dedup keeps one row per (id, item[, wave]) group, chosen by a seeded
// random draw. Skipped when a date column is present (timestamped
// responses) and skipped silently when id or item is absent.
func (c *Coordinator) dedup(f *frame.Frame, name string) *frame.Frame {
	if f.HasColumn("date") {
		c.logger.Infow("deduplication skipped: date column detected", "table", name)
		return f
	}
	if !f.HasColumn("id") || !f.HasColumn("item") {
		return f
	}

	keys := []string{"id", "item"}
	if f.HasColumn("wave") {
		keys = append(keys, "wave")
	}

	cols := make([][]frame.Value, len(keys))
	for i, k := range keys {
		cols[i] = f.Column(k)
	}

	groups := map[string][]int{}
	var order []string
	for r := 0; r < f.NumRows(); r++ {
		parts := make([]string, len(cols))
		for i, col := range cols {
			parts[i] = col[r].Key()
		}
		key := strings.Join(parts, "\x1f")
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}

	rng := rand.New(rand.NewSource(dedupSeed))
	chosen := make([]int, 0, len(order))
	for _, key := range order {
		rows := groups[key]
		chosen = append(chosen, rows[rng.Intn(len(rows))])
	}
	sort.Ints(chosen)

	if len(chosen) == f.NumRows() {
		c.logger.Infow("deduplication not needed: no duplicate responses", "table", name)
		return f
	}
	c.logger.Infow("deduplicated: one response randomly retained per group",
		"table", name, "group_keys", keys)

	keep := map[int]struct{}{}
	for _, r := range chosen {
		keep[r] = struct{}{}
	}
	return f.FilterRows(func(r int) bool {
		_, ok := keep[r]
		return ok
	})
}
