package app

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/hylla/dayflow/internal/domain"
)

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	Goal domain.GoalOptions
	// Location anchors "today" when CreateDay receives no date.
	Location *time.Location
}

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Service is the session-scoped day collection for one user. Mutations are
// written through the repository first and committed to memory only after
// the write succeeds.
type Service struct {
	mu       sync.Mutex
	repo     Repository
	identity Identity
	idGen    IDGenerator
	clock    Clock
	goal     domain.GoalOptions
	loc      *time.Location
	tags     *TagRegistry

	userID  string
	days    []domain.Day
	drafts  map[string]domain.Day
	current string
}

// NewService constructs a new value for this package.
func NewService(repo Repository, identity Identity, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	if identity == nil {
		identity = StaticIdentity("")
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Service{
		repo:     repo,
		identity: identity,
		idGen:    idGen,
		clock:    clock,
		goal:     cfg.Goal,
		loc:      cfg.Location,
		tags:     NewTagRegistry(repo, idGen, nil),
		drafts:   map[string]domain.Day{},
	}
}

// Tags returns the tag registry bound to this session.
func (s *Service) Tags() *TagRegistry {
	return s.tags
}

// UserID returns the user the collection was loaded for.
func (s *Service) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Load replaces the in-memory collection with the user's stored days and tags.
// Without an authenticated user the collection is empty.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.days = nil
	s.drafts = map[string]domain.Day{}
	s.current = ""
	s.userID = ""

	userID, ok := s.identity.CurrentUser(ctx)
	if !ok {
		s.tags.reset("")
		return nil
	}
	days, err := s.repo.ListDays(ctx, userID)
	if err != nil {
		return persistenceError("list days", err)
	}
	if err := s.tags.load(ctx, userID); err != nil {
		return err
	}
	s.userID = userID
	s.days = cloneDays(days)
	s.selectCurrentLocked()
	return nil
}

// Days returns stored days ordered by date, plus unsaved drafts.
func (s *Service) Days() []domain.Day {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := cloneDays(s.days)
	for _, draft := range s.drafts {
		out = append(out, draft.Clone())
	}
	slices.SortStableFunc(out, func(a, b domain.Day) int { return strings.Compare(a.Date, b.Date) })
	return out
}

// Day returns the day for date.
func (s *Service) Day(date string) (domain.Day, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, err := s.dayLocked(date)
	if err != nil {
		return domain.Day{}, err
	}
	return day.Clone(), nil
}

// Current returns the current day when one is selected.
func (s *Service) Current() (domain.Day, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, ok := s.currentLocked()
	if !ok {
		return domain.Day{}, false
	}
	return day.Clone(), true
}

// HasActiveDay reports whether the current day exists and is still open.
func (s *Service) HasActiveDay() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, ok := s.currentLocked()
	return ok && !day.Completed()
}

// DayResult reports the day a create or select landed on.
type DayResult struct {
	Day domain.Day
	// Existed is true when a day for the date was already present.
	Existed bool
	// NeedsReopen is true when the day is finalized and must be reopened
	// through an explicit confirmation before editing.
	NeedsReopen bool
}

// CreateDay returns the day for date, creating an empty one when none
// exists. An empty date means today. New days are held in memory until the
// first activity is added.
func (s *Service) CreateDay(ctx context.Context, date string) (DayResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireUserLocked(); err != nil {
		return DayResult{}, err
	}
	if strings.TrimSpace(date) == "" {
		date = domain.DateOf(s.clock().In(s.loc))
	}
	date, err := domain.NormalizeDate(date)
	if err != nil {
		return DayResult{}, validationError(err)
	}

	if existing, err := s.dayLocked(date); err == nil {
		s.current = existing.Date
		return DayResult{Day: existing.Clone(), Existed: true, NeedsReopen: existing.Completed()}, nil
	}

	day, err := domain.NewDay(s.idGen(), date, s.clock())
	if err != nil {
		return DayResult{}, validationError(err)
	}
	s.drafts[day.Date] = day
	s.current = day.Date
	return DayResult{Day: day.Clone()}, nil
}

// SelectDay makes an existing day current.
func (s *Service) SelectDay(_ context.Context, date string) (DayResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, err := s.dayLocked(date)
	if err != nil {
		return DayResult{}, err
	}
	s.current = day.Date
	return DayResult{Day: day.Clone(), Existed: true, NeedsReopen: day.Completed()}, nil
}

// TagNames attaches registry tags to an activity write by name.
type TagNames struct {
	Names []string
	// Create adds unknown names to the registry. Creation happens only after
	// the target day and the activity fields have been validated.
	Create bool
}

// AddActivity appends a new activity to the day for date, or to the current
// day when date is empty.
func (s *Service) AddActivity(ctx context.Context, date string, in domain.ActivityInput) (domain.Day, domain.Activity, error) {
	return s.AddActivityWithTags(ctx, date, in, TagNames{})
}

// AddActivityWithTags is AddActivity with tags resolved from names and
// appended after in.Tags. A rejected write leaves the registry untouched.
func (s *Service) AddActivityWithTags(ctx context.Context, date string, in domain.ActivityInput, names TagNames) (domain.Day, domain.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, err := s.targetLocked(date)
	if err != nil {
		return domain.Day{}, domain.Activity{}, err
	}
	if day.Completed() {
		return domain.Day{}, domain.Activity{}, validationError(domain.ErrDayCompleted)
	}
	activity, err := domain.NewActivity(s.idGen(), in)
	if err != nil {
		return domain.Day{}, domain.Activity{}, validationError(err)
	}
	if activity.Tags, err = s.attachTags(ctx, activity.Tags, names); err != nil {
		return domain.Day{}, domain.Activity{}, err
	}
	next := day.Clone()
	if err := next.AddActivity(activity, s.clock()); err != nil {
		return domain.Day{}, domain.Activity{}, validationError(err)
	}
	if err := s.saveLocked(ctx, next); err != nil {
		return domain.Day{}, domain.Activity{}, err
	}
	return next.Clone(), activity, nil
}

// EditActivity replaces the fields of one activity. An unknown activity id
// leaves the day unchanged and reports false.
func (s *Service) EditActivity(ctx context.Context, date, activityID string, in domain.ActivityInput) (domain.Day, bool, error) {
	return s.EditActivityWithTags(ctx, date, activityID, in, TagNames{})
}

// EditActivityWithTags is EditActivity with tags resolved from names.
func (s *Service) EditActivityWithTags(ctx context.Context, date, activityID string, in domain.ActivityInput, names TagNames) (domain.Day, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, err := s.targetLocked(date)
	if err != nil {
		return domain.Day{}, false, err
	}
	if _, ok := day.Activity(activityID); !ok {
		return day.Clone(), false, nil
	}
	if day.Completed() {
		return domain.Day{}, false, validationError(domain.ErrDayCompleted)
	}
	replacement, err := domain.NewActivity(activityID, in)
	if err != nil {
		return domain.Day{}, false, validationError(err)
	}
	if replacement.Tags, err = s.attachTags(ctx, replacement.Tags, names); err != nil {
		return domain.Day{}, false, err
	}
	next := day.Clone()
	changed, err := next.EditActivity(activityID, replacement, s.clock())
	if err != nil {
		return domain.Day{}, false, validationError(err)
	}
	if err := s.saveLocked(ctx, next); err != nil {
		return domain.Day{}, false, err
	}
	return next.Clone(), changed, nil
}

// RemoveResult reports the outcome of RemoveActivity.
type RemoveResult struct {
	Day     domain.Day
	Removed bool
	// DayDeleted is true when the removed activity was the last one.
	DayDeleted bool
}

// RemoveActivity drops one activity. Removing the last activity deletes the day.
func (s *Service) RemoveActivity(ctx context.Context, date, activityID string) (RemoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, err := s.targetLocked(date)
	if err != nil {
		return RemoveResult{}, err
	}
	next := day.Clone()
	removed, err := next.RemoveActivity(activityID, s.clock())
	if err != nil {
		return RemoveResult{}, validationError(err)
	}
	if !removed {
		return RemoveResult{Day: day.Clone()}, nil
	}
	if len(next.Activities) == 0 {
		if err := s.deleteLocked(ctx, next.Date); err != nil {
			return RemoveResult{}, err
		}
		return RemoveResult{Day: next, Removed: true, DayDeleted: true}, nil
	}
	if err := s.saveLocked(ctx, next); err != nil {
		return RemoveResult{}, err
	}
	return RemoveResult{Day: next.Clone(), Removed: true}, nil
}

// CompleteDay finalizes a day and stamps its commitment level.
func (s *Service) CompleteDay(ctx context.Context, date string) (domain.Day, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, err := s.targetLocked(date)
	if err != nil {
		return domain.Day{}, err
	}
	next := day.Clone()
	if err := next.Complete(s.clock()); err != nil {
		return domain.Day{}, validationError(err)
	}
	if err := s.saveLocked(ctx, next); err != nil {
		return domain.Day{}, err
	}
	return next.Clone(), nil
}

// ReopenDay returns a finalized day to editable state.
func (s *Service) ReopenDay(ctx context.Context, date string) (domain.Day, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, err := s.targetLocked(date)
	if err != nil {
		return domain.Day{}, err
	}
	next := day.Clone()
	if err := next.Reopen(s.clock()); err != nil {
		return domain.Day{}, validationError(err)
	}
	if err := s.saveLocked(ctx, next); err != nil {
		return domain.Day{}, err
	}
	return next.Clone(), nil
}

// DeleteDay removes a day explicitly.
func (s *Service) DeleteDay(ctx context.Context, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, err := s.targetLocked(date)
	if err != nil {
		return err
	}
	return s.deleteLocked(ctx, day.Date)
}

// NextStartTime suggests the start of the next activity for a day.
func (s *Service) NextStartTime(date string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, err := s.targetLocked(date)
	if err != nil {
		return "", err
	}
	return day.NextStartTime(), nil
}

// CommitmentSeries recomputes the commitment history on every call.
func (s *Service) CommitmentSeries() []domain.CommitmentData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CommitmentSeries(s.days)
}

// DailyGoal computes the adaptive goal from stored history.
func (s *Service) DailyGoal() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.DailyGoal(s.days, s.goal)
}

// Stats aggregates the stored history.
func (s *Service) Stats() domain.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ComputeStats(s.days)
}

// Highlights summarizes the stored history.
func (s *Service) Highlights() domain.Highlights {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ComputeHighlights(s.days, 5)
}

// Progress reports goal progress for a day, or for the current day when
// date is empty.
func (s *Service) Progress(date string) (domain.GoalProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, err := s.targetLocked(date)
	if err != nil {
		return domain.GoalProgress{}, err
	}
	return domain.Progress(day, domain.DailyGoal(s.days, s.goal)), nil
}

func (s *Service) requireUserLocked() error {
	if s.userID == "" {
		return ErrUnauthenticated
	}
	return nil
}

// targetLocked resolves date, falling back to the current day.
func (s *Service) targetLocked(date string) (domain.Day, error) {
	if err := s.requireUserLocked(); err != nil {
		return domain.Day{}, err
	}
	if strings.TrimSpace(date) == "" {
		day, ok := s.currentLocked()
		if !ok {
			return domain.Day{}, ErrNotFound
		}
		return day, nil
	}
	return s.dayLocked(date)
}

func (s *Service) dayLocked(date string) (domain.Day, error) {
	date, err := domain.NormalizeDate(date)
	if err != nil {
		return domain.Day{}, validationError(err)
	}
	if idx := domain.FindDay(s.days, date); idx >= 0 {
		return s.days[idx], nil
	}
	if draft, ok := s.drafts[date]; ok {
		return draft, nil
	}
	return domain.Day{}, ErrNotFound
}

func (s *Service) currentLocked() (domain.Day, bool) {
	if s.current == "" {
		return domain.Day{}, false
	}
	day, err := s.dayLocked(s.current)
	if err != nil {
		return domain.Day{}, false
	}
	return day, true
}

func (s *Service) selectCurrentLocked() {
	s.current = ""
	if idx := domain.SelectCurrent(s.days); idx >= 0 {
		s.current = s.days[idx].Date
	}
}

// saveLocked persists day and then upserts it into memory as current.
func (s *Service) saveLocked(ctx context.Context, day domain.Day) error {
	if err := s.repo.PutDay(ctx, s.userID, day.Date, day); err != nil {
		return persistenceError("put day", err)
	}
	stored := day.Clone()
	if idx := slices.IndexFunc(s.days, func(d domain.Day) bool { return d.ID == stored.ID || d.Date == stored.Date }); idx >= 0 {
		s.days[idx] = stored
	} else {
		s.days = append(s.days, stored)
	}
	delete(s.drafts, stored.Date)
	s.current = stored.Date
	return nil
}

// deleteLocked removes the day from the store when it was ever persisted,
// then from memory, and reselects the current day.
func (s *Service) deleteLocked(ctx context.Context, date string) error {
	idx := domain.FindDay(s.days, date)
	if idx >= 0 {
		if err := s.repo.DeleteDay(ctx, s.userID, date); err != nil && !errors.Is(err, ErrNotFound) {
			return persistenceError("delete day", err)
		}
		s.days = slices.Delete(s.days, idx, idx+1)
	}
	delete(s.drafts, date)
	if s.current == date {
		s.selectCurrentLocked()
	}
	return nil
}

// attachTags appends the tags named by names to tags, skipping ids already present.
func (s *Service) attachTags(ctx context.Context, tags []domain.Tag, names TagNames) ([]domain.Tag, error) {
	if len(names.Names) == 0 {
		return tags, nil
	}
	resolved, err := s.tags.Resolve(ctx, names.Names, names.Create)
	if err != nil {
		return nil, err
	}
	for _, tag := range resolved {
		if !slices.ContainsFunc(tags, func(t domain.Tag) bool { return t.ID == tag.ID }) {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

func cloneDays(days []domain.Day) []domain.Day {
	out := make([]domain.Day, 0, len(days))
	for _, d := range days {
		out = append(out, d.Clone())
	}
	return out
}
