package validate

import (
	"context"

	"github.com/autobib/autobib/internal/store"
)

// DetectCycles implements spec.md §4.8.1: for each canonical id,
// restrict to the rows sharing it, build a row_id -> parent_row_id?
// map, then for each unvisited row walk parent pointers recording a
// local path set. A revisit within the path set is a cycle; hitting a
// root (no parent, or a parent outside this canonical's row set) is
// OK. The path is merged into the global visited set after each walk.
// Grounded on rust/src/db/validate/find_cycles.rs.
func DetectCycles(ctx context.Context, tx *store.Tx, canonicalRows map[string][]*store.RecordRow) ([][]int64, error) {
	var cycles [][]int64

	for _, rows := range canonicalRows {
		inSet := make(map[int64]bool, len(rows))
		parentOf := make(map[int64]*int64, len(rows))
		for _, row := range rows {
			inSet[row.Key] = true
		}
		for _, row := range rows {
			if row.ParentKey.Valid && inSet[row.ParentKey.Int64] {
				p := row.ParentKey.Int64
				parentOf[row.Key] = &p
			} else {
				parentOf[row.Key] = nil
			}
		}

		visited := make(map[int64]bool, len(rows))
		for _, row := range rows {
			if visited[row.Key] {
				continue
			}
			path := make(map[int64]bool)
			order := []int64{}
			cur := row.Key
			cycleFound := false
			for {
				if visited[cur] {
					break
				}
				if path[cur] {
					cycleFound = true
					break
				}
				path[cur] = true
				order = append(order, cur)
				parent := parentOf[cur]
				if parent == nil {
					break
				}
				cur = *parent
			}
			if cycleFound {
				cycles = append(cycles, order)
			}
			for k := range path {
				visited[k] = true
			}
		}
	}

	return cycles, nil
}
