package statement

import (
	"github.com/Veraticus/statement-flow/internal/filter"
	"github.com/Veraticus/statement-flow/internal/model"
)

// Merge adds the records of batch not already present in existing, keyed by
// MergeKey, and returns the combined collection newest first along with the
// number of records added. Neither input is modified. Merging the same batch
// again adds nothing.
func Merge(existing, batch []model.Transaction) ([]model.Transaction, int) {
	seen := make(map[string]struct{}, len(existing)+len(batch))
	for _, t := range existing {
		seen[t.MergeKey()] = struct{}{}
	}

	fresh := make([]model.Transaction, 0, len(batch))
	for _, t := range batch {
		key := t.MergeKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		fresh = append(fresh, t)
	}

	out := make([]model.Transaction, 0, len(fresh)+len(existing))
	out = append(out, fresh...)
	out = append(out, existing...)
	filter.ByDateDesc(out)

	return out, len(fresh)
}
