package app

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hylla/dayflow/internal/domain"
)

type recordingGenerator struct {
	last  InsightRequest
	calls int
	err   error
}

func (g *recordingGenerator) GenerateInsight(_ context.Context, req InsightRequest) (string, error) {
	g.calls++
	g.last = req
	if g.err != nil {
		return "", g.err
	}
	return "ok", nil
}

func TestInsightExcludesPrivateActivities(t *testing.T) {
	svc := newTestService(t, newFakeRepo())
	ctx := context.Background()
	_, _ = svc.CreateDay(ctx, "2024-01-01")
	_, _, _ = svc.AddActivity(ctx, "", input("09:00", "10:00", domain.DefaultTags()[1]))
	_, _, _ = svc.AddActivity(ctx, "", domain.ActivityInput{StartTime: "07:00", EndTime: "08:00", Description: "secret", IsPrivate: true})

	gen := &recordingGenerator{}
	text, err := svc.Insight(ctx, gen, "", "")
	if err != nil || text != "ok" {
		t.Fatalf("Insight() = %q, %v", text, err)
	}
	want := InsightRequest{
		Instruction: DefaultInsightInstruction,
		Date:        "2024-01-01",
		Activities:  []ActivitySummary{{StartTime: "09:00", EndTime: "10:00", Description: "block 09:00", Tags: []string{"Estudo"}}},
	}
	if diff := cmp.Diff(want, gen.last); diff != "" {
		t.Fatalf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestInsightEmptyDaySkipsGenerator(t *testing.T) {
	svc := newTestService(t, newFakeRepo())
	_, _ = svc.CreateDay(context.Background(), "2024-01-01")
	gen := &recordingGenerator{}
	text, err := svc.Insight(context.Background(), gen, "", "")
	if err != nil || text != EmptyInsightNotice || gen.calls != 0 {
		t.Fatalf("Insight() = %q, %v, calls=%d", text, err, gen.calls)
	}
}

func TestInsightGeneratorFailure(t *testing.T) {
	svc := newTestService(t, newFakeRepo())
	ctx := context.Background()
	_, _ = svc.CreateDay(ctx, "2024-01-01")
	_, _, _ = svc.AddActivity(ctx, "", input("09:00", "10:00"))
	gen := &recordingGenerator{err: errors.New("quota")}
	if _, err := svc.Insight(ctx, gen, "", "x"); !errors.Is(err, ErrInsightUnavailable) {
		t.Fatalf("expected ErrInsightUnavailable, got %v", err)
	}
	if _, err := svc.Insight(ctx, nil, "", "x"); !errors.Is(err, ErrInsightUnavailable) {
		t.Fatalf("expected ErrInsightUnavailable, got %v", err)
	}
}
