package usecase

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"checkin_backend/internal/feature/identity/domain/entity"
)

func TestAdminUsecase_ExportCSV(t *testing.T) {
	visitedAt := time.Date(2026, 8, 26, 15, 4, 5, 0, time.UTC)

	records := []VisitRecord{
		{
			VisitedAt:   visitedAt,
			Name:        `Alice "Ace" Alder`,
			Email:       "alice@example.org",
			Disciplines: entity.DisciplineList{entity.DisciplineSoftware, entity.DisciplineArt},
			Reason:      "Soldering workshop,\nbrought my own iron",
		},
		{
			VisitedAt:   visitedAt.Add(-time.Hour),
			Name:        "Bob",
			Email:       "bob@example.org",
			Disciplines: entity.DisciplineList{entity.DisciplineHardware},
			Reason:      "Reviewing the gallery installation",
		},
	}

	newUsecase := func(t *testing.T, wantFilter ExportFilter) *adminUsecase {
		t.Helper()
		repo := &mockAnalyticsRepository{
			FilteredVisitsFunc: func(ctx context.Context, f ExportFilter) ([]VisitRecord, error) {
				if f.Discipline != wantFilter.Discipline || f.Search != wantFilter.Search {
					t.Errorf("expected filter %+v, got %+v", wantFilter, f)
				}
				return records, nil
			},
		}
		return NewAdminUsecase(repo, &mockIdentityReader{})
	}

	t.Run("renders quoted rows newest first", func(t *testing.T) {
		uc := newUsecase(t, ExportFilter{})

		out, err := uc.ExportCSV(context.Background(), ExportFilter{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
		if lines[0] != `"Timestamp","Name","Email","Disciplines","Reason"` {
			t.Errorf("unexpected header: %s", lines[0])
		}
		if !strings.HasPrefix(lines[1], `"2026-08-26T15:04:05Z","Alice ""Ace"" Alder"`) {
			t.Errorf("expected the first data row quoted with doubled quotes, got %s", lines[1])
		}
		if !strings.Contains(out, `"Software; Art"`) {
			t.Errorf("expected disciplines joined with '; ', got:\n%s", out)
		}
	})

	t.Run("output parses back as standard CSV", func(t *testing.T) {
		uc := newUsecase(t, ExportFilter{})

		out, err := uc.ExportCSV(context.Background(), ExportFilter{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
		if err != nil {
			t.Fatalf("export is not valid CSV: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("expected header plus 2 rows, got %d", len(rows))
		}
		if rows[1][1] != `Alice "Ace" Alder` {
			t.Errorf("quote doubling did not round-trip: %q", rows[1][1])
		}
		if rows[1][4] != "Soldering workshop,\nbrought my own iron" {
			t.Errorf("embedded comma and newline did not round-trip: %q", rows[1][4])
		}
		if rows[2][2] != "bob@example.org" {
			t.Errorf("expected the older row second, got %q", rows[2][2])
		}
	})

	t.Run("the filter reaches the repository untouched", func(t *testing.T) {
		want := ExportFilter{Discipline: entity.DisciplineArt, Search: "alice"}
		uc := newUsecase(t, want)

		if _, err := uc.ExportCSV(context.Background(), want); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("no matching visits yields just the header", func(t *testing.T) {
		repo := &mockAnalyticsRepository{
			FilteredVisitsFunc: func(ctx context.Context, f ExportFilter) ([]VisitRecord, error) {
				return nil, nil
			},
		}
		uc := NewAdminUsecase(repo, &mockIdentityReader{})

		out, err := uc.ExportCSV(context.Background(), ExportFilter{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != `"Timestamp","Name","Email","Disciplines","Reason"`+"\n" {
			t.Errorf("expected a header-only export, got %q", out)
		}
	})
}
