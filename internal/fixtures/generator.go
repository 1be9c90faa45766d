package fixtures

import (
	"fmt"
	"sort"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/pavelchuchma/vkct/internal/domain/model"
)

// Default generator configuration constants.
const (
	defaultCategories   = 3
	defaultEvents       = 5
	defaultParticipants = 40
	defaultDNFPercent   = 5
	defaultTurnout      = 80
	defaultEventBook    = "zavody.xlsx"
)

var categoryTemplates = []model.Category{
	{Name: "Muži", MinAge: 18, MaxAge: 39, CountsPositions: true},
	{Name: "Ženy", MinAge: 18, MaxAge: 39, CountsPositions: true},
	{Name: "Veteráni", MinAge: 40, MaxAge: 100, CountsPositions: true},
	{Name: "Junioři", MinAge: 15, MaxAge: 17, CountsPositions: true},
	{Name: "Děti", MinAge: 0, MaxAge: 14, CountsPositions: false},
}

// GeneratorOption applies a configuration option to the Generator.
type GeneratorOption func(*Generator)

// WithSeed makes the generated season reproducible.
func WithSeed(seed int64) GeneratorOption {
	return func(g *Generator) { g.seed = seed }
}

// WithYear sets the season year.
func WithYear(year int) GeneratorOption {
	return func(g *Generator) {
		if year > 0 {
			g.year = year
		}
	}
}

// WithCategories sets how many categories are generated.
func WithCategories(n int) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.categories = min(n, len(categoryTemplates))
		}
	}
}

// WithEvents sets how many events each category has.
func WithEvents(n int) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.events = n
		}
	}
}

// WithParticipants sets the size of each category's pool of competitors.
func WithParticipants(n int) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.participants = n
		}
	}
}

// WithDNFPercent sets the share of finishers recorded as DNF.
func WithDNFPercent(p int) GeneratorOption {
	return func(g *Generator) {
		if p >= 0 && p <= 100 {
			g.dnfPercent = p
		}
	}
}

// WithAlternativeEvent appends an alternative event to every category.
func WithAlternativeEvent() GeneratorOption {
	return func(g *Generator) { g.alternative = true }
}

// WithSwappedNames writes some names surname first.
func WithSwappedNames() GeneratorOption {
	return func(g *Generator) { g.swapNames = true }
}

// WithEventBook sets the workbook file name the event inputs point at.
func WithEventBook(name string) GeneratorOption {
	return func(g *Generator) {
		if name != "" {
			g.book = name
		}
	}
}

// Generator produces synthetic seasons.
type Generator struct {
	seed         int64
	year         int
	categories   int
	events       int
	participants int
	dnfPercent   int
	alternative  bool
	swapNames    bool
	book         string
}

// NewGenerator creates a Generator with configuration options.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		seed:         time.Now().UnixNano(),
		year:         time.Now().Year(),
		categories:   defaultCategories,
		events:       defaultEvents,
		participants: defaultParticipants,
		dnfPercent:   defaultDNFPercent,
		book:         defaultEventBook,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Event is one generated event input with its rows.
type Event struct {
	Category string
	Input    model.EventInput
	Rows     []model.RawRow
}

// Generated is a synthetic season with everything needed to compute it.
type Generated struct {
	Season     model.Season
	Events     []Event
	FirstNames []string
	Source     *Source
}

type person struct {
	first, last, team string
	birthYear         int
}

// Generate builds a season. Equal seeds give equal seasons.
func (g *Generator) Generate() *Generated {
	faker := gofakeit.New(uint64(g.seed))
	out := &Generated{
		Season: model.Season{Year: g.year, MaxCountedEvents: max(g.events-1, 1)},
		Source: NewSource(),
	}
	firstNames := make(map[string]struct{})

	for c := 0; c < g.categories; c++ {
		cat := categoryTemplates[c]
		pool := g.pool(faker, cat)
		for _, p := range pool {
			firstNames[p.first] = struct{}{}
		}

		count := g.events
		if g.alternative {
			count++
		}
		for e := 0; e < count; e++ {
			alt := g.alternative && e == count-1
			in := model.EventInput{
				File:         g.book,
				Sheet:        fmt.Sprintf("%s %d", cat.Name, e+1),
				FirstRow:     2,
				Alternative:  alt,
				PositionCol:  "A",
				NameCol:      "B",
				TeamCol:      "C",
				BirthYearCol: "D",
			}
			rows := g.event(faker, pool)
			cat.Inputs = append(cat.Inputs, in)
			out.Source.Add(in, rows...)
			out.Events = append(out.Events, Event{Category: cat.Name, Input: in, Rows: rows})
		}
		out.Season.Categories = append(out.Season.Categories, cat)
	}

	for name := range firstNames {
		out.FirstNames = append(out.FirstNames, name)
	}
	sort.Strings(out.FirstNames)
	return out
}

// pool draws the competitors of a category, all born inside its age window.
func (g *Generator) pool(faker *gofakeit.Faker, cat model.Category) []person {
	youngest, oldest := max(cat.MinAge, 6), min(cat.MaxAge, 75)
	teams := make([]string, 6)
	for i := range teams {
		teams[i] = faker.City()
	}

	seen := make(map[string]struct{})
	out := make([]person, 0, g.participants)
	for len(out) < g.participants {
		p := person{
			first:     faker.FirstName(),
			last:      faker.LastName(),
			birthYear: g.year - faker.Number(youngest, oldest),
		}
		key := p.first + " " + p.last
		if _, dup := seen[key]; dup || p.first == p.last {
			continue
		}
		seen[key] = struct{}{}
		if faker.Number(1, 100) <= 70 {
			p.team = teams[faker.Number(0, len(teams)-1)]
		}
		out = append(out, p)
	}
	return out
}

// event picks the finishers of one event and assigns places 1..n.
func (g *Generator) event(faker *gofakeit.Faker, pool []person) []model.RawRow {
	field := append([]person(nil), pool...)
	faker.ShuffleAnySlice(field)
	n := max(len(field)*faker.Number(defaultTurnout-20, 100)/100, 1)
	field = field[:n]

	rows := make([]model.RawRow, 0, n)
	place := 0
	for _, p := range field {
		name := p.first + " " + p.last
		if g.swapNames && faker.Number(1, 100) <= 30 {
			name = p.last + " " + p.first
		}
		var position any
		if faker.Number(1, 100) <= g.dnfPercent {
			position = "DNF"
		} else {
			place++
			position = place
		}
		rows = append(rows, Row(name, p.team, p.birthYear, position))
	}
	return rows
}
