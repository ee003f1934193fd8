package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/hylla/dayflow/internal/app"
	"github.com/hylla/dayflow/internal/domain"
)

// Service is the journal session the model drives.
type Service interface {
	Load(context.Context) error
	Days() []domain.Day
	Current() (domain.Day, bool)
	CreateDay(context.Context, string) (app.DayResult, error)
	SelectDay(context.Context, string) (app.DayResult, error)
	AddActivityWithTags(context.Context, string, domain.ActivityInput, app.TagNames) (domain.Day, domain.Activity, error)
	RemoveActivity(context.Context, string, string) (app.RemoveResult, error)
	CompleteDay(context.Context, string) (domain.Day, error)
	ReopenDay(context.Context, string) (domain.Day, error)
	NextStartTime(string) (string, error)
	Progress(string) (domain.GoalProgress, error)
	CommitmentSeries() []domain.CommitmentData
	Insight(context.Context, app.InsightGenerator, string, string) (string, error)
}

// inputMode represents a selectable mode.
type inputMode int

const (
	modeNone inputMode = iota
	modeQuickAdd
	modeConfirmReopen
	modeInsight
)

// Model is the single-screen journal view.
type Model struct {
	svc      Service
	insight  app.InsightGenerator
	copyText func(string) error
	markdown *markdownRenderer

	ready  bool
	width  int
	height int
	err    error

	status string

	help help.Model
	keys keyMap

	days     []domain.Day
	current  domain.Day
	hasDay   bool
	progress domain.GoalProgress
	series   []domain.CommitmentData
	selected int

	mode        inputMode
	quickInput  textinput.Model
	insightText string
}

// loadedMsg carries a fresh read of the session.
type loadedMsg struct {
	days     []domain.Day
	current  domain.Day
	hasDay   bool
	progress domain.GoalProgress
	series   []domain.CommitmentData
	err      error
}

// actionMsg reports the outcome of one mutation.
type actionMsg struct {
	err           error
	status        string
	confirmReopen bool
}

// insightMsg carries generated insight text.
type insightMsg struct {
	text string
	err  error
}

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	quickInput := textinput.New()
	quickInput.Prompt = "+ "
	quickInput.Placeholder = "09:00-10:00 description #tag"
	quickInput.CharLimit = 200
	m := Model{
		svc:        svc,
		copyText:   clipboard.WriteAll,
		markdown:   &markdownRenderer{},
		status:     "loading...",
		help:       h,
		keys:       newKeyMap(),
		quickInput: quickInput,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.days = msg.days
		m.current = msg.current
		m.hasDay = msg.hasDay
		m.progress = msg.progress
		m.series = msg.series
		m.selected = clamp(m.selected, 0, len(m.current.Activities)-1)
		if m.status == "loading..." {
			m.status = "ready"
		}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.status = describeError(msg.err)
			return m, m.loadData
		}
		m.status = msg.status
		if msg.confirmReopen {
			m.mode = modeConfirmReopen
		}
		return m, m.loadData

	case insightMsg:
		if msg.err != nil {
			m.status = describeError(msg.err)
			return m, nil
		}
		m.insightText = msg.text
		m.mode = modeInsight
		m.status = "insight ready"
		return m, nil

	case tea.KeyPressMsg:
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		return m.handleNormalModeKey(msg)

	default:
		return m, nil
	}
}

// loadData reads the session without reloading storage, so unsaved drafts survive.
func (m Model) loadData() tea.Msg {
	out := loadedMsg{
		days:   m.svc.Days(),
		series: m.svc.CommitmentSeries(),
	}
	out.current, out.hasDay = m.svc.Current()
	if out.hasDay {
		progress, err := m.svc.Progress(out.current.Date)
		if err != nil {
			return loadedMsg{err: err}
		}
		out.progress = progress
	}
	return out
}

// reloadData reloads the collection from storage.
func (m Model) reloadData() tea.Msg {
	if err := m.svc.Load(context.Background()); err != nil {
		return loadedMsg{err: err}
	}
	return m.loadData()
}

// handleNormalModeKey handles keys when no prompt is open.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.reloadData
	case key.Matches(msg, m.keys.moveDown):
		m.selected = clamp(m.selected+1, 0, len(m.current.Activities)-1)
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		m.selected = clamp(m.selected-1, 0, len(m.current.Activities)-1)
		return m, nil
	case key.Matches(msg, m.keys.quickAdd):
		if m.hasDay && m.current.Completed() {
			m.status = "day is finalized; press o to reopen"
			return m, nil
		}
		cmd := m.startQuickAdd()
		return m, cmd
	case key.Matches(msg, m.keys.remove):
		activity, ok := m.selectedActivity()
		if !ok {
			m.status = "no activity selected"
			return m, nil
		}
		return m, m.removeActivity(activity)
	case key.Matches(msg, m.keys.complete):
		if !m.hasDay {
			m.status = "no day selected; press t for today"
			return m, nil
		}
		return m, m.completeDay()
	case key.Matches(msg, m.keys.reopen):
		if !m.hasDay || !m.current.Completed() {
			m.status = "day is not finalized"
			return m, nil
		}
		m.mode = modeConfirmReopen
		return m, nil
	case key.Matches(msg, m.keys.prevDay):
		return m.stepDay(-1)
	case key.Matches(msg, m.keys.nextDay):
		return m.stepDay(1)
	case key.Matches(msg, m.keys.today):
		return m, m.openToday()
	case key.Matches(msg, m.keys.insight):
		if !m.hasDay {
			m.status = "no day selected"
			return m, nil
		}
		m.status = "generating insight..."
		return m, m.requestInsight()
	case key.Matches(msg, m.keys.copyDay):
		if !m.hasDay {
			m.status = "no day selected"
			return m, nil
		}
		return m, m.copy(daySummary(m.current), "day copied to clipboard")
	default:
		return m, nil
	}
}

// handleInputModeKey handles keys while a prompt or panel is open.
func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeQuickAdd:
		switch msg.String() {
		case "esc":
			m.mode = modeNone
			m.quickInput.Blur()
			m.status = "add cancelled"
			return m, nil
		case "enter":
			return m.submitQuickAdd()
		}
		var cmd tea.Cmd
		m.quickInput, cmd = m.quickInput.Update(msg)
		return m, cmd

	case modeConfirmReopen:
		switch strings.ToLower(msg.String()) {
		case "y", "enter":
			m.mode = modeNone
			return m, m.reopenDay()
		case "n", "esc", "q":
			m.mode = modeNone
			m.status = "day kept finalized"
		}
		return m, nil

	case modeInsight:
		switch msg.String() {
		case "esc", "q", "i", "enter":
			m.mode = modeNone
			return m, nil
		case "y":
			return m, m.copy(m.insightText, "insight copied to clipboard")
		}
		return m, nil
	}
	m.mode = modeNone
	return m, nil
}

// startQuickAdd opens the quick-add prompt prefilled with the next start time.
func (m *Model) startQuickAdd() tea.Cmd {
	start := domain.DefaultStartTime
	if m.hasDay {
		if next, err := m.svc.NextStartTime(m.current.Date); err == nil {
			start = next
		}
	}
	m.mode = modeQuickAdd
	m.quickInput.SetValue(start + "-")
	m.quickInput.CursorEnd()
	return m.quickInput.Focus()
}

// submitQuickAdd parses the prompt and adds the activity.
func (m Model) submitQuickAdd() (tea.Model, tea.Cmd) {
	parsed, err := domain.ParseQuickAdd(m.quickInput.Value())
	if err != nil {
		m.status = "invalid activity: " + err.Error()
		return m, nil
	}
	m.mode = modeNone
	m.quickInput.Blur()
	m.quickInput.SetValue("")
	return m, m.addActivity(parsed)
}

func (m Model) addActivity(parsed domain.QuickAdd) tea.Cmd {
	date := ""
	if m.hasDay {
		date = m.current.Date
	}
	return func() tea.Msg {
		ctx := context.Background()
		if date == "" {
			res, err := m.svc.CreateDay(ctx, "")
			if err != nil {
				return actionMsg{err: err}
			}
			date = res.Day.Date
		}
		_, activity, err := m.svc.AddActivityWithTags(ctx, date, parsed.Input(nil), app.TagNames{Names: parsed.TagNames, Create: true})
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: fmt.Sprintf("added %s-%s %s", activity.StartTime, activity.EndTime, activity.Description)}
	}
}

func (m Model) removeActivity(activity domain.Activity) tea.Cmd {
	date := m.current.Date
	return func() tea.Msg {
		res, err := m.svc.RemoveActivity(context.Background(), date, activity.ID)
		if err != nil {
			return actionMsg{err: err}
		}
		if res.DayDeleted {
			return actionMsg{status: "last activity removed; day " + date + " deleted"}
		}
		return actionMsg{status: "removed " + activity.Description}
	}
}

func (m Model) completeDay() tea.Cmd {
	date := m.current.Date
	return func() tea.Msg {
		day, err := m.svc.CompleteDay(context.Background(), date)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: fmt.Sprintf("day finalized, commitment %.1f", levelOf(day))}
	}
}

func (m Model) reopenDay() tea.Cmd {
	date := m.current.Date
	return func() tea.Msg {
		if _, err := m.svc.ReopenDay(context.Background(), date); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: "day " + date + " reopened"}
	}
}

func (m Model) openToday() tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.CreateDay(context.Background(), "")
		if err != nil {
			return actionMsg{err: err}
		}
		if res.NeedsReopen {
			return actionMsg{status: "today is finalized; reopen it? (y/n)", confirmReopen: true}
		}
		return actionMsg{status: "today: " + res.Day.Date}
	}
}

// stepDay selects the neighbouring recorded day.
func (m Model) stepDay(delta int) (tea.Model, tea.Cmd) {
	target, ok := adjacentDate(m.days, m.current.Date, m.hasDay, delta)
	if !ok {
		if delta < 0 {
			m.status = "no earlier day"
		} else {
			m.status = "no later day"
		}
		return m, nil
	}
	m.selected = 0
	return m, func() tea.Msg {
		res, err := m.svc.SelectDay(context.Background(), target)
		if err != nil {
			return actionMsg{err: err}
		}
		if res.NeedsReopen {
			return actionMsg{status: target + " is finalized; reopen it? (y/n)", confirmReopen: true}
		}
		return actionMsg{status: "viewing " + target}
	}
}

func (m Model) requestInsight() tea.Cmd {
	date := m.current.Date
	gen := m.insight
	return func() tea.Msg {
		text, err := m.svc.Insight(context.Background(), gen, date, "")
		return insightMsg{text: text, err: err}
	}
}

func (m Model) copy(text, status string) tea.Cmd {
	write := m.copyText
	return func() tea.Msg {
		if err := write(text); err != nil {
			return actionMsg{err: fmt.Errorf("copy to clipboard: %w", err)}
		}
		return actionMsg{status: status}
	}
}

// selectedActivity returns the highlighted activity in display order.
func (m Model) selectedActivity() (domain.Activity, bool) {
	if !m.hasDay {
		return domain.Activity{}, false
	}
	sorted := m.current.SortedActivities()
	if m.selected < 0 || m.selected >= len(sorted) {
		return domain.Activity{}, false
	}
	return sorted[m.selected], true
}

// adjacentDate finds the recorded date before or after current. Without a
// current day, stepping back lands on the latest date.
func adjacentDate(days []domain.Day, current string, hasCurrent bool, delta int) (string, bool) {
	dates := make([]string, 0, len(days))
	for _, day := range days {
		dates = append(dates, day.Date)
	}
	slices.Sort(dates)
	if len(dates) == 0 {
		return "", false
	}
	if !hasCurrent {
		if delta < 0 {
			return dates[len(dates)-1], true
		}
		return "", false
	}
	idx, found := slices.BinarySearch(dates, current)
	switch {
	case delta < 0 && idx > 0:
		return dates[idx-1], true
	case delta > 0 && found && idx+1 < len(dates):
		return dates[idx+1], true
	case delta > 0 && !found && idx < len(dates):
		return dates[idx], true
	}
	return "", false
}

// daySummary renders one day as plain text for the clipboard.
func daySummary(day domain.Day) string {
	var b strings.Builder
	state := "open"
	if day.Completed() {
		state = fmt.Sprintf("finalized, commitment %.1f", levelOf(day))
	}
	fmt.Fprintf(&b, "%s (%s)\n", day.Date, state)
	for _, a := range day.SortedActivities() {
		fmt.Fprintf(&b, "- %s-%s %s", a.StartTime, a.EndTime, a.Description)
		if len(a.Tags) > 0 {
			names := make([]string, 0, len(a.Tags))
			for _, tag := range a.Tags {
				names = append(names, "#"+tag.Name)
			}
			fmt.Fprintf(&b, " %s", strings.Join(names, " "))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func levelOf(day domain.Day) float64 {
	if day.CommitmentLevel == nil {
		return 0
	}
	return *day.CommitmentLevel
}

// describeError turns service errors into status text.
func describeError(err error) string {
	switch {
	case errors.Is(err, domain.ErrDayCompleted):
		return "day is finalized; press o to reopen"
	case errors.Is(err, domain.ErrEmptyDay):
		return "add an activity before finalizing the day"
	case errors.Is(err, app.ErrInsightUnavailable):
		return "insight unavailable: " + err.Error()
	case errors.Is(err, app.ErrUnauthenticated):
		return "no user signed in"
	case errors.Is(err, app.ErrPersistence):
		return "save failed, nothing changed: " + err.Error()
	default:
		return "error: " + err.Error()
	}
}

func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
