package model_test

import (
	"errors"
	"math"
	"testing"

	"github.com/pavelchuchma/vkct/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestCell(t *testing.T) {
	convey.Convey("Given raw workbook strings", t, func() {
		convey.Convey("When they are classified", func() {
			convey.So(model.ParseCell("").IsAbsent(), convey.ShouldBeTrue)
			convey.So(model.ParseCell("   ").IsAbsent(), convey.ShouldBeTrue)
			convey.So(model.ParseCell("1985"), convey.ShouldResemble, model.IntCell(1985))
			convey.So(model.ParseCell("1985.0"), convey.ShouldResemble, model.IntCell(1985))
			convey.So(model.ParseCell("3."), convey.ShouldResemble, model.TextCell("3."))
			convey.So(model.ParseCell("DNF").Kind, convey.ShouldEqual, model.CellText)
		})
	})

	convey.Convey("Given cells to coerce into integers", t, func() {
		cases := []struct {
			cell model.Cell
			want int
			ok   bool
		}{
			{model.IntCell(7), 7, true},
			{model.TextCell("12"), 12, true},
			{model.TextCell("12."), 12, true},
			{model.TextCell(" 4) "), 4, true},
			{model.TextCell("1985."), 1985, true},
			{model.TextCell("12.."), 0, false},
			{model.TextCell("DNF"), 0, false},
			{model.TextCell("."), 0, false},
			{model.TextCell("1a2"), 0, false},
			{model.Absent(), 0, false},
		}
		for _, tc := range cases {
			got, ok := tc.cell.CoerceInt()
			convey.So(ok, convey.ShouldEqual, tc.ok)
			convey.So(got, convey.ShouldEqual, tc.want)
		}
	})
}

func TestCategory(t *testing.T) {
	convey.Convey("Given a category with alternative inputs", t, func() {
		cat := model.Category{
			Name:   "Žáci",
			MinAge: 10,
			MaxAge: 12,
			Inputs: []model.EventInput{{}, {Alternative: true}, {}, {}},
		}

		convey.Convey("Then alternative inputs do not count as races", func() {
			convey.So(cat.RaceCount(), convey.ShouldEqual, 3)
			convey.So(cat.SlotCount(), convey.ShouldEqual, 3)
		})

		convey.Convey("Then birth-year bounds derive from the season year", func() {
			convey.So(cat.MinBirthYear(2019), convey.ShouldEqual, 2007)
			convey.So(cat.MaxBirthYear(2019), convey.ShouldEqual, 2009)
			convey.So(cat.InBirthYearRange(2019, 2008), convey.ShouldBeTrue)
			convey.So(cat.InBirthYearRange(2019, 2010), convey.ShouldBeFalse)
		})
	})

	convey.Convey("Given open-ended age bounds", t, func() {
		cat := model.Category{MinAge: 0, MaxAge: 100}

		convey.Convey("Then every birth year fits", func() {
			convey.So(cat.MinBirthYear(2019), convey.ShouldEqual, math.MinInt)
			convey.So(cat.MaxBirthYear(2019), convey.ShouldEqual, math.MaxInt)
			convey.So(cat.InBirthYearRange(2019, 1900), convey.ShouldBeTrue)
			convey.So(cat.InBirthYearRange(2019, 2018), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a category fed only by alternative events", t, func() {
		cat := model.Category{Inputs: []model.EventInput{{Alternative: true}}}
		convey.So(cat.RaceCount(), convey.ShouldEqual, 0)
		convey.So(cat.SlotCount(), convey.ShouldEqual, 1)
	})
}

func TestSeasonNormalize(t *testing.T) {
	convey.Convey("Given a season default for counted events", t, func() {
		s := model.Season{
			Year:             2019,
			MaxCountedEvents: 4,
			Categories: []model.Category{
				{Name: "A", Inputs: make([]model.EventInput, 6)},
				{Name: "B", MaxCountedEvents: 2, Inputs: make([]model.EventInput, 6)},
			},
		}
		s.Normalize()

		convey.So(s.Categories[0].MaxCountedEvents, convey.ShouldEqual, 4)
		convey.So(s.Categories[1].MaxCountedEvents, convey.ShouldEqual, 2)
	})

	convey.Convey("Given no default at all", t, func() {
		s := model.Season{Categories: []model.Category{{Name: "A", Inputs: make([]model.EventInput, 3)}}}
		s.Normalize()
		convey.So(s.Categories[0].MaxCountedEvents, convey.ShouldEqual, 3)
	})
}

func TestSeasonValidate(t *testing.T) {
	input := model.EventInput{File: "zavod1.xlsx", NameCol: "B", PositionCol: "A"}

	convey.Convey("Given a complete season", t, func() {
		s := model.Season{
			Year:       2024,
			Categories: []model.Category{{Name: "Muži", MinAge: 18, MaxAge: 39, Inputs: []model.EventInput{input}}},
		}
		convey.So(s.Validate(), convey.ShouldBeNil)
	})

	convey.Convey("Given broken seasons", t, func() {
		noCats := model.Season{Year: 2024}
		badAges := model.Season{Year: 2024, Categories: []model.Category{{Name: "X", MinAge: 40, MaxAge: 20}}}
		badCol := input
		badCol.NameCol = "B1"
		badInput := model.Season{Year: 2024, Categories: []model.Category{{Name: "X", MaxAge: 100, Inputs: []model.EventInput{badCol}}}}

		for _, s := range []model.Season{noCats, badAges, badInput} {
			err := s.Validate()
			convey.So(errors.Is(err, model.ErrInvalidSeason), convey.ShouldBeTrue)
		}
	})
}

func TestRaceResult(t *testing.T) {
	convey.Convey("Given race slots", t, func() {
		convey.Convey("When the slot is empty", func() {
			var r model.RaceResult
			_, ok := r.EffectivePoints()
			convey.So(r.Populated(), convey.ShouldBeFalse)
			convey.So(ok, convey.ShouldBeFalse)
			convey.So(r.DisplayPosition(), convey.ShouldBeNil)
		})

		convey.Convey("When primary and alternative results coexist", func() {
			pos := model.Place(4)
			alt := model.Place(2)
			r := model.RaceResult{Position: &pos, Points: model.IntPtr(60), AltPosition: &alt, AltPoints: model.IntPtr(24)}
			pts, ok := r.EffectivePoints()
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(pts, convey.ShouldEqual, 84)
			convey.So(*r.DisplayPosition(), convey.ShouldResemble, pos)
		})

		convey.Convey("When only an alternative event filled the slot", func() {
			alt := model.Place(2)
			r := model.RaceResult{AltPosition: &alt, AltPoints: model.IntPtr(24), HalfPoints: true}
			pts, _ := r.EffectivePoints()
			convey.So(pts, convey.ShouldEqual, 24)
			convey.So(*r.DisplayPosition(), convey.ShouldResemble, alt)
		})
	})
}

func TestParticipant(t *testing.T) {
	convey.Convey("Given a participant without a team", t, func() {
		p := &model.Participant{Name: "Jan Novák", BirthYear: model.Year(2008)}

		convey.Convey("When a later record supplies a team", func() {
			p.Backfill(model.Participant{Team: "SK Praha"})
			convey.So(p.Team, convey.ShouldEqual, "SK Praha")

			convey.Convey("Then a further record does not overwrite it", func() {
				p.Backfill(model.Participant{Team: "TJ Brno"})
				convey.So(p.Team, convey.ShouldEqual, "SK Praha")
			})
		})

		convey.Convey("Then its key is comparable", func() {
			other := model.Participant{Name: "Jan Novák", BirthYear: model.Year(2008), Team: "x"}
			convey.So(p.Key() == other.Key(), convey.ShouldBeTrue)
			convey.So(p.Key() == model.Key{Name: "Jan Novák"}, convey.ShouldBeFalse)
		})
	})

	convey.Convey("Given birth years", t, func() {
		convey.So(model.BirthYear{}.Absent(), convey.ShouldBeTrue)
		convey.So(model.BirthYear{Text: "abc"}.Known(), convey.ShouldBeFalse)
		convey.So(model.BirthYear{Text: "abc"}.Absent(), convey.ShouldBeFalse)
		convey.So(model.Year(1990).String(), convey.ShouldEqual, "1990")
	})
}

func TestPosition(t *testing.T) {
	convey.Convey("Given positions", t, func() {
		convey.So(model.IsDNFMark("dns"), convey.ShouldBeTrue)
		convey.So(model.IsDNFMark("DSQ"), convey.ShouldBeFalse)
		convey.So(model.DNF().IsDNF(), convey.ShouldBeTrue)
		convey.So(model.Place(3).String(), convey.ShouldEqual, "3")
		convey.So(model.DNF().String(), convey.ShouldEqual, "DNF")
	})
}
