package issue

import (
	"iter"
	"sort"
)

// Bag collects the issues of a run for the host to sort, filter and count.
type Bag struct {
	items []Issue
}

// NewBag returns a bag holding the issues yielded by seq.
func NewBag(seq iter.Seq[Issue]) *Bag {
	b := &Bag{}
	if seq != nil {
		b.AddAll(seq)
	}
	return b
}

// Add appends one issue.
func (b *Bag) Add(i Issue) {
	b.items = append(b.items, i)
}

// AddAll drains seq into the bag.
func (b *Bag) AddAll(seq iter.Seq[Issue]) {
	for i := range seq {
		b.items = append(b.items, i)
	}
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns the collected issues. The slice is shared with the bag.
func (b *Bag) Items() []Issue {
	return b.items
}

// Merge appends every issue of other.
func (b *Bag) Merge(other *Bag) {
	b.items = append(b.items, other.items...)
}

// Max returns the highest severity in the bag and false if it is empty.
func (b *Bag) Max() (Severity, bool) {
	if len(b.items) == 0 {
		return 0, false
	}
	top := b.items[0].Severity
	for _, i := range b.items[1:] {
		if i.Severity > top {
			top = i.Severity
		}
	}
	return top, true
}

// HasAtLeast reports whether any issue is at or above sev.
func (b *Bag) HasAtLeast(sev Severity) bool {
	top, ok := b.Max()
	return ok && top >= sev
}

// Counts returns the number of issues per severity.
func (b *Bag) Counts() map[Severity]int {
	counts := make(map[Severity]int)
	for _, i := range b.items {
		counts[i.Severity]++
	}
	return counts
}

// Filter keeps only the issues for which keep returns true.
func (b *Bag) Filter(keep func(Issue) bool) {
	kept := b.items[:0]
	for _, i := range b.items {
		if keep(i) {
			kept = append(kept, i)
		}
	}
	b.items = kept
}

// Sort orders issues by beatmap, timestamp (untimed first), severity
// descending, check and message, for a stable and deterministic output.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(x, y int) bool {
		a, c := b.items[x], b.items[y]
		if a.Beatmap != c.Beatmap {
			return a.Beatmap < c.Beatmap
		}
		if ta, tc := stampOf(a), stampOf(c); ta != tc {
			return ta < tc
		}
		if a.Severity != c.Severity {
			return a.Severity > c.Severity
		}
		if a.Check != c.Check {
			return a.Check < c.Check
		}
		return a.Message() < c.Message()
	})
}

func stampOf(i Issue) float64 {
	if i.Timestamp == nil {
		return -1 << 53
	}
	return float64(*i.Timestamp)
}

// Dedup removes issues equal to an earlier one.
func (b *Bag) Dedup() {
	kept := make([]Issue, 0, len(b.items))
	seen := make(map[string][]int)
	for _, i := range b.items {
		key := i.Check + "\x00" + i.Beatmap + "\x00" + i.Message()
		dup := false
		for _, k := range seen[key] {
			if kept[k].Equal(i) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		seen[key] = append(seen[key], len(kept))
		kept = append(kept, i)
	}
	b.items = kept
}
