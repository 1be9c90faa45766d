package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pavelchuchma/vkct/internal/domain/diag"
	"github.com/pavelchuchma/vkct/internal/domain/model"
)

func result(name string, year int, cumulative ...int) *model.PersonalResult {
	pr := model.NewPersonalResult(&model.Participant{Name: name, BirthYear: model.Year(year)}, len(cumulative))
	for i, c := range cumulative {
		pr.Races[i].Points = model.IntPtr(c)
		pr.Races[i].CumulativePoints = model.IntPtr(c)
	}
	return pr
}

func testRun() Run {
	pos := model.Place(1)
	men := &model.CategoryStandings{
		Category: model.Category{Name: "Muži"},
		Results: []*model.PersonalResult{
			result("Jan Novák", 1980, 80, 150),
			result("Petr Svoboda", 1975, 70, 120),
			result("Karel Malý", 1990, 60, 120),
			result("Jan Novák", 1991, 10, 20),
		},
	}
	men.Results[0].Races[0].Position = &pos
	kids := &model.CategoryStandings{
		Category: model.Category{Name: "Děti"},
		Results:  []*model.PersonalResult{result("Eva Nová", 2015, 30)},
	}
	return Run{
		ID:        "run-1",
		Season:    2024,
		Standings: []*model.CategoryStandings{men, kids},
		Diagnostics: []diag.Diagnostic{
			{Severity: diag.Info, Code: diag.CodePositionUnparsed},
			{Severity: diag.Warning, Code: diag.CodeSimilarNames},
			{Severity: diag.Error, Code: diag.CodeSource},
		},
	}
}

func TestMemoryStore_Empty(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.Categories(ctx); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
	if _, err := store.Info(ctx); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}

func TestMemoryStore_Publish(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(WithClock(func() time.Time { return at }))

	if err := store.Publish(ctx, testRun()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cats, err := store.Categories(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cats) != 2 || cats[0] != "Muži" || cats[1] != "Děti" {
		t.Errorf("unexpected categories %v", cats)
	}

	info, err := store.Info(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Info{RunID: "run-1", Season: 2024, PublishedAt: at, Categories: 2, Participants: 5, Diagnostics: 3}
	if info != want {
		t.Errorf("expected %+v, got %+v", want, info)
	}
}

func TestMemoryStore_Standings(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Publish(ctx, testRun()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := store.Standings(ctx, "Muži", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	wantRanks := []int{1, 2, 2, 4}
	for i, r := range rows {
		if r.Rank != wantRanks[i] {
			t.Errorf("row %d: expected rank %d, got %d", i, wantRanks[i], r.Rank)
		}
	}
	if rows[0].Total != 150 || rows[0].Races[0].Position != "1" || rows[0].BirthYear != "1980" {
		t.Errorf("unexpected first row %+v", rows[0])
	}

	top, err := store.Standings(ctx, "Muži", 2)
	if err != nil || len(top) != 2 {
		t.Errorf("expected 2 rows, got %d (%v)", len(top), err)
	}

	single, err := store.Standings(ctx, "Děti", 5)
	if err != nil || len(single) != 1 || single[0].Total != 30 || single[0].Rank != 1 {
		t.Errorf("unexpected single-event standings %+v (%v)", single, err)
	}

	if _, err := store.Standings(ctx, "Muži", 0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
	if _, err := store.Standings(ctx, "Veteráni", 5); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestMemoryStore_Rank(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Publish(ctx, testRun()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e, err := store.Rank(ctx, "Muži", "Karel Malý", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Rank != 2 || e.Total != 120 {
		t.Errorf("unexpected entry %+v", e)
	}

	if _, err := store.Rank(ctx, "Muži", "Jan Novák", ""); !errors.Is(err, ErrAmbiguous) {
		t.Errorf("expected ErrAmbiguous, got %v", err)
	}
	e, err = store.Rank(ctx, "Muži", "Jan Novák", "1991")
	if err != nil || e.Rank != 4 {
		t.Errorf("expected rank 4, got %+v (%v)", e, err)
	}
	if _, err := store.Rank(ctx, "Muži", "Nikdo Neznámý", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_Diagnostics(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Publish(ctx, testRun()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all, _ := store.Diagnostics(ctx, diag.Info)
	warn, _ := store.Diagnostics(ctx, diag.Warning)
	errs, _ := store.Diagnostics(ctx, diag.Error)
	if len(all) != 3 || len(warn) != 2 || len(errs) != 1 {
		t.Errorf("unexpected counts %d/%d/%d", len(all), len(warn), len(errs))
	}
}

func TestMemoryStore_PublishCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := NewMemoryStore()
	if err := store.Publish(ctx, testRun()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
