package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hylla/dayflow/internal/domain"
)

func TestSnapshotRoundTripThroughService(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()
	_, _ = svc.CreateDay(ctx, "2024-01-01")
	_, _, _ = svc.AddActivity(ctx, "", input("08:00", "09:00", domain.DefaultTags()[0]))
	_, _ = svc.CreateDay(ctx, "2024-01-02")

	snap, err := svc.ExportSnapshot(ctx)
	if err != nil {
		t.Fatalf("ExportSnapshot() error = %v", err)
	}
	if snap.Version != SnapshotVersion || len(snap.Days) != 1 || len(snap.Tags) != 6 {
		t.Fatalf("unexpected snapshot %#v", snap)
	}

	other := newFakeRepo()
	target := newTestService(t, other)
	if err := target.ImportSnapshot(ctx, snap); err != nil {
		t.Fatalf("ImportSnapshot() error = %v", err)
	}
	if got := len(target.Days()); got != 1 {
		t.Fatalf("expected 1 imported day, got %d", got)
	}
	if len(other.tags["u1"]) != 6 {
		t.Fatal("expected tag set persisted")
	}
}

func TestSnapshotValidate(t *testing.T) {
	cases := []struct {
		name string
		snap Snapshot
		want string
	}{
		{name: "version", snap: Snapshot{Version: "x"}, want: "unsupported snapshot version"},
		{name: "date", snap: Snapshot{Days: []domain.Day{{ID: "d", Date: "bad"}}}, want: "days[0].date"},
		{name: "empty", snap: Snapshot{Days: []domain.Day{{ID: "d", Date: "2024-01-01"}}}, want: "has no activities"},
		{
			name: "duplicate",
			snap: Snapshot{Days: []domain.Day{
				{ID: "a", Date: "2024-01-01", Activities: []domain.Activity{{ID: "x"}}},
				{ID: "b", Date: "2024-01-01", Activities: []domain.Activity{{ID: "y"}}},
			}},
			want: "duplicate day date",
		},
		{
			name: "duplicate after trim",
			snap: Snapshot{Days: []domain.Day{
				{ID: "a", Date: "2024-01-01", Activities: []domain.Activity{{ID: "x"}}},
				{ID: "b", Date: " 2024-01-01 ", Activities: []domain.Activity{{ID: "y"}}},
			}},
			want: "duplicate day date",
		},
		{name: "tag", snap: Snapshot{Tags: []domain.Tag{{ID: "1"}}}, want: "tags[0]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.snap.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Validate() error = %v, want %q", err, tc.want)
			}
		})
	}

	svc := newTestService(t, newFakeRepo())
	if err := svc.ImportSnapshot(context.Background(), Snapshot{Version: "x"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestImportSnapshotStoresCanonicalDates(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)
	snap := Snapshot{Days: []domain.Day{{
		ID:         "d1",
		Date:       " 2024-01-01\t",
		Activities: []domain.Activity{{ID: "a1", StartTime: "08:00", EndTime: "09:00", Description: "run"}},
	}}}
	if err := svc.ImportSnapshot(context.Background(), snap); err != nil {
		t.Fatalf("ImportSnapshot() error = %v", err)
	}
	if _, ok := repo.days["u1"]["2024-01-01"]; !ok || len(repo.days["u1"]) != 1 {
		t.Fatalf("expected one document keyed 2024-01-01, got %v", repo.days["u1"])
	}
	day, err := svc.Day("2024-01-01")
	if err != nil || day.Date != "2024-01-01" {
		t.Fatalf("Day() = %#v, %v", day, err)
	}
	if snap.Days[0].Date != " 2024-01-01\t" {
		t.Fatalf("import rewrote the caller's snapshot: %q", snap.Days[0].Date)
	}
}
