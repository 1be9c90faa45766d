package ranking_test

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pavelchuchma/vkct/internal/domain/model"
	"github.com/pavelchuchma/vkct/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCompetition(t *testing.T) {
	Convey("Given a sorted column with ties", t, func() {
		values := []int{90, 90, 80, 70, 70, 70, 10}

		Convey("When it is ranked", func() {
			ranks := ranking.Competition(values)

			Convey("Then ties share a rank and gaps follow ties only", func() {
				So(cmp.Diff([]int{1, 1, 3, 4, 4, 4, 7}, ranks), ShouldBeEmpty)
			})

			Convey("Then ranking is idempotent", func() {
				So(cmp.Diff(ranks, ranking.Competition(values)), ShouldBeEmpty)
			})

			Convey("Then ranks never decrease along the column", func() {
				for i := 1; i < len(ranks); i++ {
					So(ranks[i], ShouldBeGreaterThanOrEqualTo, ranks[i-1])
					if values[i] == values[i-1] {
						So(ranks[i], ShouldEqual, ranks[i-1])
					} else {
						So(ranks[i], ShouldEqual, i+1)
					}
				}
			})
		})

		Convey("When the column is empty or has strings", func() {
			So(ranking.Competition([]int{}), ShouldBeEmpty)
			So(cmp.Diff([]int{1, 2, 2}, ranking.Competition([]string{"a", "b", "b"})), ShouldBeEmpty)
		})
	})
}

func standing(name string, points ...*int) *model.PersonalResult {
	pr := model.NewPersonalResult(&model.Participant{Name: name}, len(points))
	sum := 0
	seen := false
	for i, p := range points {
		pr.Races[i].Points = p
		if p != nil {
			sum += *p
			seen = true
		}
		if seen {
			pr.Races[i].CumulativePoints = model.IntPtr(sum)
		}
	}
	return pr
}

func names(st *model.CategoryStandings) []string {
	out := make([]string, 0, len(st.Results))
	for _, pr := range st.Results {
		out = append(out, pr.Participant.Name)
	}
	return out
}

func ranksAt(st *model.CategoryStandings, slot int) []int {
	out := make([]int, 0, len(st.Results))
	for _, pr := range st.Results {
		if r := pr.Races[slot].CumulativeRank; r != nil {
			out = append(out, *r)
		} else {
			out = append(out, 0)
		}
	}
	return out
}

func TestRank(t *testing.T) {
	p := model.IntPtr

	Convey("Given standings over three events", t, func() {
		st := &model.CategoryStandings{Results: []*model.PersonalResult{
			standing("A", p(10), p(10), p(10)),
			standing("B", p(30), nil, p(5)),
			standing("C", nil, p(20), p(10)),
			standing("D", nil, nil, nil),
			standing("E", p(5), p(25), nil),
		}}

		Convey("When the standings are ranked", func() {
			ranking.Rank(st)

			Convey("Then the final order follows the last cumulative column", func() {
				So(cmp.Diff([]string{"B", "E", "A", "C", "D"}, names(st)), ShouldBeEmpty)
			})

			Convey("Then each later slot carries competition ranks", func() {
				So(cmp.Diff([]int{1, 1, 3, 3, 0}, ranksAt(st, 1)), ShouldBeEmpty)
				So(cmp.Diff([]int{1, 2, 2, 2, 0}, ranksAt(st, 2)), ShouldBeEmpty)
			})

			Convey("Then final ranks follow the season totals", func() {
				So(ranking.Total(st.Results[0]), ShouldEqual, 35)
				So(cmp.Diff([]int{1, 2, 2, 2, 5}, ranking.FinalRanks(st)), ShouldBeEmpty)
			})

			Convey("Then the first slot has no cumulative rank", func() {
				So(cmp.Diff([]int{0, 0, 0, 0, 0}, ranksAt(st, 0)), ShouldBeEmpty)
			})

			Convey("Then ranking again changes nothing", func() {
				before := names(st)
				r1 := ranksAt(st, 1)
				ranking.Rank(st)
				So(cmp.Diff(before, names(st)), ShouldBeEmpty)
				So(cmp.Diff(r1, ranksAt(st, 1)), ShouldBeEmpty)
			})
		})
	})

	Convey("Given a single-event category", t, func() {
		st := &model.CategoryStandings{Results: []*model.PersonalResult{
			standing("A", p(12)),
			standing("B", p(40)),
			standing("C", nil),
			standing("D", p(25)),
		}}

		Convey("When the standings are ranked", func() {
			ranking.Rank(st)

			Convey("Then the order is by event points alone", func() {
				So(cmp.Diff([]string{"B", "D", "A", "C"}, names(st)), ShouldBeEmpty)
				got := make([]int, 0, 3)
				for _, pr := range st.Results[:3] {
					got = append(got, *pr.Races[0].Points)
				}
				So(sort.IsSorted(sort.Reverse(sort.IntSlice(got))), ShouldBeTrue)
			})

			Convey("Then no cumulative rank is populated", func() {
				for _, pr := range st.Results {
					So(pr.Races[0].CumulativeRank, ShouldBeNil)
				}
			})
		})
	})

	Convey("Given empty standings", t, func() {
		st := &model.CategoryStandings{}
		So(func() { ranking.Rank(st) }, ShouldNotPanic)
	})
}
