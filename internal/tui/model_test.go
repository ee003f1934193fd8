package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/hylla/dayflow/internal/app"
	"github.com/hylla/dayflow/internal/domain"
)

// memRepo is an in-memory app.Repository for model tests.
type memRepo struct {
	days map[string]domain.Day
	tags []domain.Tag
}

func newMemRepo() *memRepo {
	return &memRepo{days: map[string]domain.Day{}}
}

func (r *memRepo) ListDays(context.Context, string) ([]domain.Day, error) {
	out := make([]domain.Day, 0, len(r.days))
	for _, day := range r.days {
		out = append(out, day.Clone())
	}
	return out, nil
}

func (r *memRepo) PutDay(_ context.Context, _ string, date string, day domain.Day) error {
	r.days[date] = day.Clone()
	return nil
}

func (r *memRepo) DeleteDay(_ context.Context, _ string, date string) error {
	if _, ok := r.days[date]; !ok {
		return app.ErrNotFound
	}
	delete(r.days, date)
	return nil
}

func (r *memRepo) GetTagSet(context.Context, string) ([]domain.Tag, bool, error) {
	if r.tags == nil {
		return nil, false, nil
	}
	return append([]domain.Tag(nil), r.tags...), true, nil
}

func (r *memRepo) PutTagSet(_ context.Context, _ string, tags []domain.Tag) error {
	r.tags = append([]domain.Tag(nil), tags...)
	return nil
}

type stubGenerator struct {
	text string
	err  error
	reqs []app.InsightRequest
}

func (g *stubGenerator) GenerateInsight(_ context.Context, req app.InsightRequest) (string, error) {
	g.reqs = append(g.reqs, req)
	return g.text, g.err
}

func newTestModel(t *testing.T, repo *memRepo, opts ...Option) (Model, *app.Service) {
	t.Helper()
	n := 0
	svc := app.NewService(
		repo,
		app.StaticIdentity("u1"),
		func() string { n++; return fmt.Sprintf("id-%d", n) },
		func() time.Time { return time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC) },
		app.ServiceConfig{Location: time.UTC},
	)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	m := NewModel(svc, opts...)
	m = applyMsg(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m = applyCmd(t, m, m.Init())
	return m, svc
}

func seedDay(t *testing.T, repo *memRepo, date string, completed bool, descs ...string) {
	t.Helper()
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	day, err := domain.NewDay("day-"+date, date, now)
	if err != nil {
		t.Fatalf("NewDay() error = %v", err)
	}
	for i, desc := range descs {
		a, err := domain.NewActivity(fmt.Sprintf("%s-a%d", date, i), domain.ActivityInput{
			StartTime:   fmt.Sprintf("%02d:00", 8+i),
			EndTime:     fmt.Sprintf("%02d:00", 9+i),
			Description: desc,
		})
		if err != nil {
			t.Fatalf("NewActivity() error = %v", err)
		}
		if err := day.AddActivity(a, now); err != nil {
			t.Fatalf("AddActivity() error = %v", err)
		}
	}
	if completed {
		if err := day.Complete(now); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
	}
	repo.days[date] = day
}

// openQuickAdd presses n and drops the cursor blink command.
func openQuickAdd(t *testing.T, m Model) Model {
	t.Helper()
	updated, _ := m.Update(keyRune('n'))
	out, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", updated)
	}
	return out
}

// TestModelQuickAddCreatesToday verifies quick-add on an empty journal creates today's day.
func TestModelQuickAddCreatesToday(t *testing.T) {
	repo := newMemRepo()
	m, _ := newTestModel(t, repo)
	if m.hasDay {
		t.Fatal("expected no current day on an empty journal")
	}

	m = openQuickAdd(t, m)
	if m.mode != modeQuickAdd {
		t.Fatalf("mode = %v, want quick add", m.mode)
	}
	if got := m.quickInput.Value(); got != "00:00-" {
		t.Fatalf("prefill = %q, want 00:00-", got)
	}
	m.quickInput.SetValue("09:00-10:30 Leitura #Estudo #Novo")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	if m.mode != modeNone {
		t.Fatalf("mode = %v, want none", m.mode)
	}
	if !m.hasDay || m.current.Date != "2026-02-21" {
		t.Fatalf("current = %#v, want 2026-02-21", m.current)
	}
	if len(m.current.Activities) != 1 {
		t.Fatalf("activities = %d, want 1", len(m.current.Activities))
	}
	got := m.current.Activities[0]
	if got.Description != "Leitura" || len(got.Tags) != 2 || got.Tags[0].Name != "Estudo" {
		t.Fatalf("unexpected activity %#v", got)
	}
	if _, ok := repo.days["2026-02-21"]; !ok {
		t.Fatal("day was not persisted")
	}
	if len(repo.tags) != len(domain.DefaultTags())+1 {
		t.Fatalf("tags persisted = %d, want %d", len(repo.tags), len(domain.DefaultTags())+1)
	}
	if m.progress.Count != 1 || m.progress.Goal != domain.DefaultDailyGoal {
		t.Fatalf("unexpected progress %#v", m.progress)
	}

	m = openQuickAdd(t, m)
	if got := m.quickInput.Value(); got != "10:30-" {
		t.Fatalf("prefill = %q, want 10:30-", got)
	}
}

// TestModelQuickAddRejectsBadInput verifies parse failures keep the prompt open.
func TestModelQuickAddRejectsBadInput(t *testing.T) {
	m, _ := newTestModel(t, newMemRepo())
	m = openQuickAdd(t, m)
	m.quickInput.SetValue("lunch")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.mode != modeQuickAdd {
		t.Fatalf("mode = %v, want quick add", m.mode)
	}
	if !strings.HasPrefix(m.status, "invalid activity") {
		t.Fatalf("status = %q", m.status)
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.mode != modeNone || m.hasDay {
		t.Fatalf("expected cancelled prompt without a day, mode=%v hasDay=%v", m.mode, m.hasDay)
	}
}

// TestModelCompleteAndReopen verifies finalize, the edit guard, and the reopen confirm.
func TestModelCompleteAndReopen(t *testing.T) {
	repo := newMemRepo()
	seedDay(t, repo, "2026-02-21", false, "a", "b", "c")
	m, _ := newTestModel(t, repo)

	m = applyMsg(t, m, keyRune('c'))
	if !m.current.Completed() {
		t.Fatal("expected day finalized")
	}
	if m.current.CommitmentLevel == nil {
		t.Fatal("expected commitment level")
	}
	if !repo.days["2026-02-21"].IsCompleted {
		t.Fatal("completion was not persisted")
	}

	m = applyMsg(t, m, keyRune('n'))
	if m.mode != modeNone || !strings.Contains(m.status, "finalized") {
		t.Fatalf("expected add blocked, mode=%v status=%q", m.mode, m.status)
	}

	m = applyMsg(t, m, keyRune('o'))
	if m.mode != modeConfirmReopen {
		t.Fatalf("mode = %v, want confirm reopen", m.mode)
	}
	m = applyMsg(t, m, keyRune('n'))
	if m.mode != modeNone || !m.current.Completed() {
		t.Fatal("declining should keep the day finalized")
	}

	m = applyMsg(t, m, keyRune('o'))
	m = applyMsg(t, m, keyRune('y'))
	if m.current.Completed() {
		t.Fatal("expected day reopened")
	}
	if m.current.CommitmentLevel == nil {
		t.Fatal("reopen should keep the previous level")
	}
}

// TestModelCompleteEmptyDay verifies the empty-day rejection surfaces in the status line.
func TestModelCompleteEmptyDay(t *testing.T) {
	m, _ := newTestModel(t, newMemRepo())
	m = applyMsg(t, m, keyRune('t'))
	if !m.hasDay {
		t.Fatal("expected today's draft day")
	}
	m = applyMsg(t, m, keyRune('c'))
	if m.current.Completed() {
		t.Fatal("empty day must not finalize")
	}
	if !strings.Contains(m.status, "add an activity") {
		t.Fatalf("status = %q", m.status)
	}
}

// TestModelRemoveLastActivityDeletesDay verifies removing the only activity drops the day.
func TestModelRemoveLastActivityDeletesDay(t *testing.T) {
	repo := newMemRepo()
	seedDay(t, repo, "2026-02-20", false, "only")
	m, _ := newTestModel(t, repo)
	if m.current.Date != "2026-02-20" {
		t.Fatalf("current = %q, want 2026-02-20", m.current.Date)
	}

	m = applyMsg(t, m, keyRune('x'))
	if _, ok := repo.days["2026-02-20"]; ok {
		t.Fatal("day should be deleted")
	}
	if m.hasDay {
		t.Fatalf("expected no current day, got %#v", m.current)
	}
	if !strings.Contains(m.status, "deleted") {
		t.Fatalf("status = %q", m.status)
	}
}

// TestModelDayNavigation verifies [ and ] walk recorded days and prompt for finalized ones.
func TestModelDayNavigation(t *testing.T) {
	repo := newMemRepo()
	seedDay(t, repo, "2026-02-18", true, "a")
	seedDay(t, repo, "2026-02-19", false, "b")
	seedDay(t, repo, "2026-02-20", false, "c")
	m, _ := newTestModel(t, repo)
	if m.current.Date != "2026-02-20" {
		t.Fatalf("current = %q, want 2026-02-20", m.current.Date)
	}

	m = applyMsg(t, m, keyRune('['))
	if m.current.Date != "2026-02-19" {
		t.Fatalf("current = %q, want 2026-02-19", m.current.Date)
	}
	m = applyMsg(t, m, keyRune('['))
	if m.current.Date != "2026-02-18" || m.mode != modeConfirmReopen {
		t.Fatalf("current = %q mode = %v, want finalized prompt", m.current.Date, m.mode)
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	m = applyMsg(t, m, keyRune('['))
	if m.status != "no earlier day" {
		t.Fatalf("status = %q", m.status)
	}
	m = applyMsg(t, m, keyRune(']'))
	if m.current.Date != "2026-02-19" {
		t.Fatalf("current = %q, want 2026-02-19", m.current.Date)
	}
}

// TestModelInsightAndCopy verifies the insight panel and clipboard actions.
func TestModelInsightAndCopy(t *testing.T) {
	repo := newMemRepo()
	seedDay(t, repo, "2026-02-21", false, "Leitura")
	gen := &stubGenerator{text: "**Good** focus today."}
	var copied []string
	m, _ := newTestModel(t, repo,
		WithInsightGenerator(gen),
		WithClipboard(func(text string) error {
			copied = append(copied, text)
			return nil
		}),
	)

	m = applyMsg(t, m, keyRune('i'))
	if m.mode != modeInsight || m.insightText != gen.text {
		t.Fatalf("mode = %v text = %q", m.mode, m.insightText)
	}
	if len(gen.reqs) != 1 || gen.reqs[0].Date != "2026-02-21" {
		t.Fatalf("unexpected insight requests %#v", gen.reqs)
	}
	if !strings.Contains(m.render(), "Insight for 2026-02-21") {
		t.Fatal("insight panel not rendered")
	}

	m = applyMsg(t, m, keyRune('y'))
	if len(copied) != 1 || copied[0] != gen.text {
		t.Fatalf("copied = %#v", copied)
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	m = applyMsg(t, m, keyRune('y'))
	if len(copied) != 2 || !strings.HasPrefix(copied[1], "2026-02-21 (open)\n- 08:00-09:00 Leitura") {
		t.Fatalf("copied = %#v", copied)
	}
}

// TestModelInsightUnavailable verifies a missing generator reports a status instead of failing.
func TestModelInsightUnavailable(t *testing.T) {
	repo := newMemRepo()
	seedDay(t, repo, "2026-02-21", false, "Leitura")
	m, _ := newTestModel(t, repo, WithInsightGenerator(&stubGenerator{err: errors.New("quota")}))
	m = applyMsg(t, m, keyRune('i'))
	if m.mode != modeNone || !strings.HasPrefix(m.status, "insight unavailable") {
		t.Fatalf("mode = %v status = %q", m.mode, m.status)
	}
}

// TestModelViewRendersDay verifies the main screen shows day, goal, and activities.
func TestModelViewRendersDay(t *testing.T) {
	repo := newMemRepo()
	seedDay(t, repo, "2026-02-19", true, "a", "b")
	seedDay(t, repo, "2026-02-21", false, "Corrida", "Estudo")
	m, _ := newTestModel(t, repo)

	if v := m.View(); v.Content == nil || !v.AltScreen {
		t.Fatal("expected alt-screen view with content")
	}
	content := m.render()
	for _, want := range []string{"dayflow", "2026-02-21", "goal 2/5", "Corrida", "commitment"} {
		if !strings.Contains(content, want) {
			t.Fatalf("view missing %q:\n%s", want, content)
		}
	}

	m = applyMsg(t, m, keyRune('j'))
	if m.selected != 1 {
		t.Fatalf("selected = %d, want 1", m.selected)
	}
	m = applyMsg(t, m, keyRune('j'))
	if m.selected != 1 {
		t.Fatalf("selected = %d, want clamp at 1", m.selected)
	}
}

// TestModelReloadKeepsStoredDays verifies r reloads from storage.
func TestModelReloadKeepsStoredDays(t *testing.T) {
	repo := newMemRepo()
	m, _ := newTestModel(t, repo)
	seedDay(t, repo, "2026-02-10", false, "late sync")
	m = applyMsg(t, m, keyRune('r'))
	if !m.hasDay || m.current.Date != "2026-02-10" {
		t.Fatalf("current = %#v after reload", m.current)
	}
}

// TestAdjacentDate verifies neighbour lookup around gaps.
func TestAdjacentDate(t *testing.T) {
	days := []domain.Day{{Date: "2026-02-03"}, {Date: "2026-02-01"}, {Date: "2026-02-05"}}
	cases := []struct {
		current string
		has     bool
		delta   int
		want    string
		ok      bool
	}{
		{"2026-02-03", true, -1, "2026-02-01", true},
		{"2026-02-03", true, 1, "2026-02-05", true},
		{"2026-02-04", true, 1, "2026-02-05", true},
		{"2026-02-04", true, -1, "2026-02-03", true},
		{"2026-02-05", true, 1, "", false},
		{"", false, -1, "2026-02-05", true},
		{"", false, 1, "", false},
	}
	for _, tt := range cases {
		got, ok := adjacentDate(days, tt.current, tt.has, tt.delta)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("adjacentDate(%q, %d) = %q %v, want %q %v", tt.current, tt.delta, got, ok, tt.want, tt.ok)
		}
	}
}

func applyMsg(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	out, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", updated)
	}
	return applyCmd(t, out, cmd)
}

func applyCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	out := m
	currentCmd := cmd
	for i := 0; i < 6 && currentCmd != nil; i++ {
		msg := currentCmd()
		updated, nextCmd := out.Update(msg)
		casted, ok := updated.(Model)
		if !ok {
			t.Fatalf("expected Model, got %T", updated)
		}
		out = casted
		currentCmd = nextCmd
	}
	return out
}

func keyRune(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}
