package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/hylla/dayflow/internal/adapters/storage/sqlite"
	"github.com/hylla/dayflow/internal/app"
	"github.com/hylla/dayflow/internal/domain"
)

// newTestAdapter builds an adapter over an in-memory sqlite journal for user u1.
func newTestAdapter(t *testing.T) (*AppServiceAdapter, *app.Service) {
	t.Helper()
	repo, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	n := 0
	idGen := func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	svc := app.NewService(repo, app.StaticIdentity("u1"), idGen, func() time.Time { return now }, app.ServiceConfig{Location: time.UTC})
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return NewAppServiceAdapter(svc, nil), svc
}

// TestAddActivityRejectionKeepsTags verifies rejected writes never create tags.
func TestAddActivityRejectionKeepsTags(t *testing.T) {
	adapter, svc := newTestAdapter(t)
	ctx := context.Background()
	before := svc.Tags().List()

	_, err := adapter.AddActivity(ctx, ActivityRequest{
		Date:        "2024-01-01",
		StartTime:   "25:00",
		EndTime:     "09:00",
		Description: "write",
		Tags:        []string{"Novel"},
		CreateTags:  true,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := adapter.CreateDay(ctx, CreateDayRequest{Date: "2024-01-01"}); err != nil {
		t.Fatalf("CreateDay() error = %v", err)
	}
	_, err = adapter.AddActivity(ctx, ActivityRequest{
		Date:        "2024-01-01",
		StartTime:   "25:00",
		EndTime:     "09:00",
		Description: "write",
		Tags:        []string{"Novel"},
		CreateTags:  true,
	})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if diff := cmp.Diff(before, svc.Tags().List()); diff != "" {
		t.Fatalf("rejected adds changed tags (-want +got):\n%s", diff)
	}

	view, err := adapter.AddActivity(ctx, ActivityRequest{
		Date:        "2024-01-01",
		StartTime:   "08:00",
		EndTime:     "09:00",
		Description: "write",
		Tags:        []string{"Novel"},
		CreateTags:  true,
	})
	if err != nil {
		t.Fatalf("AddActivity() error = %v", err)
	}
	if got := view.Day.Activities[0].Tags; len(got) != 1 || got[0].Name != "Novel" {
		t.Fatalf("unexpected activity tags %#v", got)
	}
	if _, ok := domain.FindTagByName(svc.Tags().List(), "Novel"); !ok {
		t.Fatal("expected Novel in registry after accepted add")
	}
}

// TestEditActivityRejectionKeepsTags verifies an invalid edit never creates tags.
func TestEditActivityRejectionKeepsTags(t *testing.T) {
	adapter, svc := newTestAdapter(t)
	ctx := context.Background()
	if _, err := adapter.CreateDay(ctx, CreateDayRequest{Date: "2024-01-01"}); err != nil {
		t.Fatalf("CreateDay() error = %v", err)
	}
	view, err := adapter.AddActivity(ctx, ActivityRequest{StartTime: "08:00", EndTime: "09:00", Description: "write"})
	if err != nil {
		t.Fatalf("AddActivity() error = %v", err)
	}
	_, err = adapter.EditActivity(ctx, ActivityRequest{
		ActivityID:  view.Day.Activities[0].ID,
		StartTime:   "08:00",
		EndTime:     "09:00",
		Description: "   ",
		Tags:        []string{"Novel"},
		CreateTags:  true,
	})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if _, ok := domain.FindTagByName(svc.Tags().List(), "Novel"); ok {
		t.Fatal("rejected edit created a tag")
	}
}

// TestCreateDayAcceptsCurrent verifies "current" selects the current day or today.
func TestCreateDayAcceptsCurrent(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx := context.Background()

	res, err := adapter.CreateDay(ctx, CreateDayRequest{Date: CurrentDay})
	if err != nil {
		t.Fatalf("CreateDay(current) error = %v", err)
	}
	if res.Existed || res.Day.Date != "2026-02-21" {
		t.Fatalf("expected a new day for today, got %#v", res)
	}

	if _, err := adapter.CreateDay(ctx, CreateDayRequest{Date: "2024-01-01"}); err != nil {
		t.Fatalf("CreateDay() error = %v", err)
	}
	res, err = adapter.CreateDay(ctx, CreateDayRequest{Date: "Current"})
	if err != nil {
		t.Fatalf("CreateDay(Current) error = %v", err)
	}
	if !res.Existed || res.Day.Date != "2024-01-01" {
		t.Fatalf("expected the current day 2024-01-01, got %#v", res)
	}
}
