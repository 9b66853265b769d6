package grid

import (
	"cmp"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/peekdb/peek/internal/engine"
)

// comparer orders cell values: numbers numerically, everything else by a
// locale-aware, numeric-aware collation of the display string (so "file10"
// orders after "file2"). Nulls sort last in both directions.
type comparer struct {
	col *collate.Collator
}

func newComparer(locale string) *comparer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	return &comparer{col: collate.New(tag, collate.Numeric)}
}

// sortRows stably reorders the permutation by the values in column c.
// Descending inverts the value comparison but keeps nulls last and keeps
// the sort stable, so ties retain their original relative order.
func (cm *comparer) sortRows(order []int, rows [][]engine.Value, c int, desc bool) {
	sort.SliceStable(order, func(i, j int) bool {
		a := rows[order[i]][c]
		b := rows[order[j]][c]
		switch {
		case a.IsNull() && b.IsNull():
			return false
		case a.IsNull():
			return false
		case b.IsNull():
			return true
		}
		r := cm.compare(a, b)
		if desc {
			return r > 0
		}
		return r < 0
	})
}

func (cm *comparer) compare(a, b engine.Value) int {
	if a.Kind() == engine.KindNumber && b.Kind() == engine.KindNumber {
		return cmp.Compare(a.Num(), b.Num())
	}
	return cm.col.CompareString(a.Display(), b.Display())
}
