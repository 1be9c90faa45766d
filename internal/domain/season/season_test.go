package season_test

import (
	"testing"

	"github.com/pavelchuchma/vkct/internal/domain/model"
	"github.com/pavelchuchma/vkct/internal/domain/scoring"
	"github.com/pavelchuchma/vkct/internal/domain/season"
	. "github.com/smartystreets/goconvey/convey"
)

// placeScorer awards the place as points, or one point per finish in
// participation-only categories.
type placeScorer struct{}

func (placeScorer) Points(in scoring.Input) int {
	if in.Position.IsDNF() {
		return 0
	}
	if !in.CountsPositions {
		return 1
	}
	return in.Position.Place
}

func row(name string, year int, place int) model.EventResultRow {
	return model.EventResultRow{
		Participant: model.Participant{Name: name, BirthYear: model.Year(year)},
		Position:    model.Place(place),
	}
}

func cumulative(pr *model.PersonalResult) []any {
	out := make([]any, len(pr.Races))
	for i, r := range pr.Races {
		if r.CumulativePoints != nil {
			out[i] = *r.CumulativePoints
		}
	}
	return out
}

func TestAggregate(t *testing.T) {
	Convey("Given a scored category counting the best two of three events", t, func() {
		cat := model.Category{Name: "Muži", CountsPositions: true, MaxCountedEvents: 2}
		events := []season.Event{
			{Rows: []model.EventResultRow{row("Jan Novák", 1980, 10)}},
			{Rows: []model.EventResultRow{row("Jan Novák", 1980, 30)}},
			{Rows: []model.EventResultRow{row("Jan Novák", 1980, 20)}},
		}

		Convey("When the season is aggregated", func() {
			st := season.Aggregate(cat, events, placeScorer{})

			Convey("Then the participant has one slot per event", func() {
				So(st.Results, ShouldHaveLength, 1)
				So(st.Results[0].Races, ShouldHaveLength, 3)
			})

			Convey("Then the weakest event is ignored", func() {
				races := st.Results[0].Races
				So(races[0].IgnoredInSummary, ShouldBeTrue)
				So(races[1].IgnoredInSummary, ShouldBeFalse)
				So(races[2].IgnoredInSummary, ShouldBeFalse)
			})

			Convey("Then each prefix sums its own best events", func() {
				So(cumulative(st.Results[0]), ShouldResemble, []any{10, 40, 50})
			})
		})
	})

	Convey("Given rows of the same participant across events", t, func() {
		cat := model.Category{Name: "Ženy", CountsPositions: true, MaxCountedEvents: 3}
		first := row("Anna Malá", 1990, 2)
		second := row("Anna Malá", 1990, 1)
		second.Participant.Team = "TJ Sokol"
		third := row("Anna Malá", 1990, 3)
		third.Participant.Team = "SK Jiný"
		other := row("Anna Malá", 1991, 4)

		Convey("When the season is aggregated", func() {
			st := season.Aggregate(cat, []season.Event{
				{Rows: []model.EventResultRow{first, other}},
				{Rows: []model.EventResultRow{second}},
				{Rows: []model.EventResultRow{third}},
			}, placeScorer{})

			Convey("Then equal keys merge and different birth years do not", func() {
				So(st.Results, ShouldHaveLength, 2)
				pr, ok := st.Find(model.Key{Name: "Anna Malá", BirthYear: model.Year(1990)})
				So(ok, ShouldBeTrue)
				So(*pr.Races[0].Points, ShouldEqual, 2)
				So(*pr.Races[1].Points, ShouldEqual, 1)
			})

			Convey("Then the first team seen is kept", func() {
				So(st.Results[0].Participant.Team, ShouldEqual, "TJ Sokol")
			})

			Convey("Then a missing slot contributes nothing", func() {
				So(cumulative(st.Results[1]), ShouldResemble, []any{4, 4, 4})
				So(st.Results[1].Races[1].Populated(), ShouldBeFalse)
			})
		})
	})

	Convey("Given alternative events", t, func() {
		cat := model.Category{Name: "Děti", CountsPositions: true, MaxCountedEvents: 5}

		Convey("When an alternative event follows a race", func() {
			st := season.Aggregate(cat, []season.Event{
				{Rows: []model.EventResultRow{row("Jan Novák", 2015, 5), row("Petr Malý", 2015, 6)}},
				{Alternative: true, Rows: []model.EventResultRow{row("Jan Novák", 2015, 3), row("Eva Nová", 2015, 4)}},
				{Rows: []model.EventResultRow{row("Jan Novák", 2015, 2)}},
			}, placeScorer{})

			Convey("Then it supplements the current slot without a slot of its own", func() {
				jan := st.Results[0]
				So(jan.Races, ShouldHaveLength, 2)
				So(*jan.Races[0].Points, ShouldEqual, 5)
				So(*jan.Races[0].AltPoints, ShouldEqual, 3)
				So(jan.Races[0].HalfPoints, ShouldBeTrue)
				So(cumulative(jan), ShouldResemble, []any{8, 10})
			})

			Convey("Then an alternative result may stand alone", func() {
				eva, ok := st.Find(model.Key{Name: "Eva Nová", BirthYear: model.Year(2015)})
				So(ok, ShouldBeTrue)
				So(eva.Races[0].Position, ShouldBeNil)
				So(eva.Races[0].DisplayPosition().Place, ShouldEqual, 4)
			})
		})

		Convey("When an alternative event comes first", func() {
			st := season.Aggregate(cat, []season.Event{
				{Alternative: true, Rows: []model.EventResultRow{row("Jan Novák", 2015, 3)}},
				{Rows: []model.EventResultRow{row("Jan Novák", 2015, 7)}},
			}, placeScorer{})

			So(st.Results[0].Races, ShouldHaveLength, 1)
			So(*st.Results[0].Races[0].AltPoints, ShouldEqual, 3)
			So(*st.Results[0].Races[0].Points, ShouldEqual, 7)
		})
	})

	Convey("Given a participation-only category", t, func() {
		cat := model.Category{Name: "Nejmenší", MaxCountedEvents: 1}
		events := []season.Event{
			{Rows: []model.EventResultRow{row("Jan Novák", 2020, 1)}},
			{Rows: []model.EventResultRow{row("Jan Novák", 2020, 2)}},
			{Rows: []model.EventResultRow{row("Jan Novák", 2020, 3)}},
		}

		Convey("When the season is aggregated", func() {
			st := season.Aggregate(cat, events, placeScorer{})

			Convey("Then no slot is ignored and every prefix counts in full", func() {
				for _, r := range st.Results[0].Races {
					So(r.IgnoredInSummary, ShouldBeFalse)
				}
				So(cumulative(st.Results[0]), ShouldResemble, []any{1, 2, 3})
			})
		})
	})
}

func TestMarkIgnored(t *testing.T) {
	Convey("Given a participant with more populated slots than counted", t, func() {
		pr := model.NewPersonalResult(&model.Participant{Name: "X"}, 6)
		for i, p := range []int{5, 9, 5, 1, 9} {
			pr.Races[i].Points = model.IntPtr(p)
		}

		Convey("When best-N is applied", func() {
			season.MarkIgnored(pr, 3)

			Convey("Then exactly the surplus slots are ignored, earlier slots winning ties", func() {
				ignored := 0
				for _, r := range pr.Races {
					if r.IgnoredInSummary {
						ignored++
					}
				}
				So(ignored, ShouldEqual, 2)
				So(pr.Races[0].IgnoredInSummary, ShouldBeFalse)
				So(pr.Races[2].IgnoredInSummary, ShouldBeTrue)
				So(pr.Races[3].IgnoredInSummary, ShouldBeTrue)
				So(pr.Races[5].IgnoredInSummary, ShouldBeFalse)
			})

			Convey("Then the final cumulative equals the best three", func() {
				season.Accumulate(pr, 3, true)
				So(*pr.Final().CumulativePoints, ShouldEqual, 9+9+5)
			})
		})
	})
}
