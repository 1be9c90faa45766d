// Package ranking orders category standings and assigns competition ranks.
package ranking

import (
	"sort"

	"github.com/pavelchuchma/vkct/internal/domain/model"
)

// Competition returns the competition rank of each element of an already
// sorted sequence: equal neighbours share a rank and the next distinct value
// gets its 1-based index (1, 1, 3, 4, 4, 4, 7).
func Competition[T comparable](sorted []T) []int {
	ranks := make([]int, len(sorted))
	for i, v := range sorted {
		if i > 0 && v == sorted[i-1] {
			ranks[i] = ranks[i-1]
			continue
		}
		ranks[i] = i + 1
	}
	return ranks
}

// Rank orders st.Results by final standing and fills CumulativeRank of every
// slot after the first. The order is seeded by first-slot points; each later
// slot re-sorts stably by its cumulative points, absent values last.
func Rank(st *model.CategoryStandings) {
	if len(st.Results) == 0 {
		return
	}

	sort.SliceStable(st.Results, func(i, j int) bool {
		return less(slotPoints(st.Results[j], 0), slotPoints(st.Results[i], 0))
	})

	slots := len(st.Results[0].Races)
	for i := 1; i < slots; i++ {
		rankSlot(st.Results, i)
	}
}

func rankSlot(results []*model.PersonalResult, slot int) {
	sort.SliceStable(results, func(a, b int) bool {
		return less(cumulative(results[b], slot), cumulative(results[a], slot))
	})

	values := make([]int, 0, len(results))
	for _, pr := range results {
		v := pr.Races[slot].CumulativePoints
		if v == nil {
			break
		}
		values = append(values, *v)
	}
	for k, r := range Competition(values) {
		results[k].Races[slot].CumulativeRank = model.IntPtr(r)
	}
}

// value is an optional number; absent sorts below every present value.
type value struct {
	n  int
	ok bool
}

func less(a, b value) bool {
	if a.ok != b.ok {
		return b.ok
	}
	return a.n < b.n
}

func slotPoints(pr *model.PersonalResult, slot int) value {
	if slot >= len(pr.Races) {
		return value{}
	}
	n, ok := pr.Races[slot].EffectivePoints()
	return value{n: n, ok: ok}
}

func cumulative(pr *model.PersonalResult, slot int) value {
	if v := pr.Races[slot].CumulativePoints; v != nil {
		return value{n: *v, ok: true}
	}
	return value{}
}

// Total returns the season total of pr: its final cumulative points, or the
// points of the last slot when no cumulative value was computed.
func Total(pr *model.PersonalResult) int {
	last := pr.Final()
	if last == nil {
		return 0
	}
	if last.CumulativePoints != nil {
		return *last.CumulativePoints
	}
	p, _ := last.EffectivePoints()
	return p
}

// FinalRanks returns the competition rank of each result of ranked standings
// by season total.
func FinalRanks(st *model.CategoryStandings) []int {
	totals := make([]int, len(st.Results))
	for i, pr := range st.Results {
		totals[i] = Total(pr)
	}
	return Competition(totals)
}
