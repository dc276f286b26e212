package dashboard

import (
	"sort"

	"tablero/internal/core"
)

// tally sums quantities per category and remembers first-appearance order.
type tally struct {
	order []string
	sums  map[string]float64
}

func newTally() *tally {
	return &tally{sums: make(map[string]float64)}
}

// add ignores records whose category is missing.
func (t *tally) add(key string, quantity float64) {
	if key == "" {
		return
	}
	if _, seen := t.sums[key]; !seen {
		t.order = append(t.order, key)
	}
	t.sums[key] += quantity
}

func (t *tally) len() int {
	return len(t.order)
}

// ascending returns every category sorted by label.
func (t *tally) ascending() core.Series {
	labels := append([]string(nil), t.order...)
	sort.Strings(labels)
	s := core.NewSeries(len(labels))
	for _, l := range labels {
		s.Add(l, t.sums[l])
	}
	return s
}

// ranked returns categories by descending sum; equal sums keep first-appearance order.
func (t *tally) ranked() []string {
	labels := append([]string(nil), t.order...)
	sort.SliceStable(labels, func(i, j int) bool {
		return t.sums[labels[i]] > t.sums[labels[j]]
	})
	return labels
}

// top returns at most n categories in ranked order.
func (t *tally) top(n int) core.Series {
	labels := t.ranked()
	if len(labels) > n {
		labels = labels[:n]
	}
	s := core.NewSeries(len(labels))
	for _, l := range labels {
		s.Add(l, t.sums[l])
	}
	return s
}
