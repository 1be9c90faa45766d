// Package season merges per-event rows into per-participant season results
// and computes best-N cumulative points.
package season

import (
	"sort"

	"github.com/pavelchuchma/vkct/internal/domain/model"
	"github.com/pavelchuchma/vkct/internal/domain/scoring"
)

// Event is one ingested event input of a category, in input order.
type Event struct {
	Alternative bool
	Rows        []model.EventResultRow
}

// SlotCount returns the number of race slots events occupy.
func SlotCount(events []Event) int {
	n := 0
	for _, ev := range events {
		if !ev.Alternative {
			n++
		}
	}
	if n == 0 && len(events) > 0 {
		return 1
	}
	return n
}

// Aggregate builds the unranked standings of cat from its events. Results are
// in first-appearance order.
func Aggregate(cat model.Category, events []Event, calc scoring.Scorer) *model.CategoryStandings {
	slots := SlotCount(events)
	st := &model.CategoryStandings{Category: cat}
	byKey := make(map[model.Key]*model.PersonalResult)

	slot := -1
	for _, ev := range events {
		if !ev.Alternative {
			slot++
		}
		s := max(slot, 0)

		for _, row := range ev.Rows {
			pts := calc.Points(scoring.Input{
				Position:         row.Position,
				ParticipantCount: len(ev.Rows),
				Alternative:      ev.Alternative,
				CountsPositions:  cat.CountsPositions,
			})

			key := row.Participant.Key()
			pr, ok := byKey[key]
			if !ok {
				p := row.Participant
				pr = model.NewPersonalResult(&p, slots)
				byKey[key] = pr
				st.Results = append(st.Results, pr)
			} else {
				pr.Participant.Backfill(row.Participant)
			}

			pos := row.Position
			rr := &pr.Races[s]
			if ev.Alternative {
				rr.AltPosition = &pos
				rr.AltPoints = model.IntPtr(pts)
				rr.HalfPoints = true
			} else {
				rr.Position = &pos
				rr.Points = model.IntPtr(pts)
			}
		}
	}

	limit := cat.MaxCountedEvents
	if limit <= 0 {
		limit = slots
	}
	for _, pr := range st.Results {
		if cat.CountsPositions {
			MarkIgnored(pr, limit)
		}
		Accumulate(pr, limit, cat.CountsPositions)
	}
	return st
}

type slotPoints struct {
	slot   int
	points int
}

// populated returns the effective points of populated slots 0..last.
func populated(pr *model.PersonalResult, last int) []slotPoints {
	var out []slotPoints
	for i := 0; i <= last && i < len(pr.Races); i++ {
		if p, ok := pr.Races[i].EffectivePoints(); ok {
			out = append(out, slotPoints{slot: i, points: p})
		}
	}
	return out
}

func byPointsDesc(sp []slotPoints) {
	sort.SliceStable(sp, func(i, j int) bool { return sp[i].points > sp[j].points })
}

// MarkIgnored flags every populated slot outside the n best. Equal points
// keep slot order.
func MarkIgnored(pr *model.PersonalResult, n int) {
	sp := populated(pr, len(pr.Races)-1)
	if len(sp) <= n {
		return
	}
	byPointsDesc(sp)
	for _, s := range sp[n:] {
		pr.Races[s.slot].IgnoredInSummary = true
	}
}

// Accumulate sets CumulativePoints of every slot i to the sum of the best
// min(n, i+1) populated slots among 0..i. Participation-only categories count
// every slot of the prefix.
func Accumulate(pr *model.PersonalResult, n int, countsPositions bool) {
	for i := range pr.Races {
		sp := populated(pr, i)
		if len(sp) == 0 {
			pr.Races[i].CumulativePoints = nil
			continue
		}
		window := i + 1
		if countsPositions {
			window = min(n, i+1)
		}
		byPointsDesc(sp)
		sum := 0
		for _, s := range sp[:min(window, len(sp))] {
			sum += s.points
		}
		pr.Races[i].CumulativePoints = model.IntPtr(sum)
	}
}
