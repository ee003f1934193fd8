package common

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hylla/dayflow/internal/app"
	"github.com/hylla/dayflow/internal/domain"
)

// AppServiceAdapter maps transport contracts onto app.Service.
type AppServiceAdapter struct {
	service *app.Service
	insight app.InsightGenerator
}

var _ JournalService = (*AppServiceAdapter)(nil)

// NewAppServiceAdapter builds one common adapter over an app.Service instance.
// insight may be nil, in which case insight calls report ErrUnavailable.
func NewAppServiceAdapter(service *app.Service, insight app.InsightGenerator) *AppServiceAdapter {
	return &AppServiceAdapter{service: service, insight: insight}
}

// ListDays returns every day in date order.
func (a *AppServiceAdapter) ListDays(_ context.Context) ([]DayView, error) {
	days := a.service.Days()
	out := make([]DayView, 0, len(days))
	for _, day := range days {
		out = append(out, a.view(day))
	}
	return out, nil
}

// GetDay returns one day by date or the current day.
func (a *AppServiceAdapter) GetDay(_ context.Context, date string) (DayView, error) {
	date = resolveDate(date)
	if date == "" {
		day, ok := a.service.Current()
		if !ok {
			return DayView{}, fmt.Errorf("get day: no current day: %w", ErrNotFound)
		}
		return a.view(day), nil
	}
	day, err := a.service.Day(date)
	if err != nil {
		return DayView{}, mapAppError("get day", err)
	}
	return a.view(day), nil
}

// CreateDay creates or selects a day. "current" targets the current day and
// falls back to today when none is selected.
func (a *AppServiceAdapter) CreateDay(ctx context.Context, in CreateDayRequest) (CreateDayResult, error) {
	date := resolveDate(in.Date)
	if date == "" && strings.TrimSpace(in.Date) != "" {
		if current, ok := a.service.Current(); ok {
			date = current.Date
		}
	}
	res, err := a.service.CreateDay(ctx, date)
	if err != nil {
		return CreateDayResult{}, mapAppError("create day", err)
	}
	return CreateDayResult{Day: a.view(res.Day), Existed: res.Existed, NeedsReopen: res.NeedsReopen}, nil
}

// AddActivity appends one activity.
func (a *AppServiceAdapter) AddActivity(ctx context.Context, in ActivityRequest) (DayView, error) {
	day, _, err := a.service.AddActivityWithTags(ctx, resolveDate(in.Date), activityInput(in), tagNames(in))
	if err != nil {
		return DayView{}, mapAppError("add activity", err)
	}
	return a.view(day), nil
}

// EditActivity replaces one activity.
func (a *AppServiceAdapter) EditActivity(ctx context.Context, in ActivityRequest) (EditActivityResult, error) {
	if strings.TrimSpace(in.ActivityID) == "" {
		return EditActivityResult{}, fmt.Errorf("edit activity: activity_id is required: %w", ErrInvalidRequest)
	}
	day, changed, err := a.service.EditActivityWithTags(ctx, resolveDate(in.Date), strings.TrimSpace(in.ActivityID), activityInput(in), tagNames(in))
	if err != nil {
		return EditActivityResult{}, mapAppError("edit activity", err)
	}
	return EditActivityResult{Day: a.view(day), Changed: changed}, nil
}

// RemoveActivity removes one activity, deleting the day when it empties.
func (a *AppServiceAdapter) RemoveActivity(ctx context.Context, in RemoveActivityRequest) (RemoveActivityResult, error) {
	if strings.TrimSpace(in.ActivityID) == "" {
		return RemoveActivityResult{}, fmt.Errorf("remove activity: activity_id is required: %w", ErrInvalidRequest)
	}
	res, err := a.service.RemoveActivity(ctx, resolveDate(in.Date), strings.TrimSpace(in.ActivityID))
	if err != nil {
		return RemoveActivityResult{}, mapAppError("remove activity", err)
	}
	out := RemoveActivityResult{Removed: res.Removed, DayDeleted: res.DayDeleted}
	if !res.DayDeleted {
		view := a.view(res.Day)
		out.Day = &view
	}
	return out, nil
}

// CompleteDay finalizes a day.
func (a *AppServiceAdapter) CompleteDay(ctx context.Context, date string) (DayView, error) {
	day, err := a.service.CompleteDay(ctx, resolveDate(date))
	if err != nil {
		return DayView{}, mapAppError("complete day", err)
	}
	return a.view(day), nil
}

// ReopenDay reopens a finalized day.
func (a *AppServiceAdapter) ReopenDay(ctx context.Context, date string) (DayView, error) {
	day, err := a.service.ReopenDay(ctx, resolveDate(date))
	if err != nil {
		return DayView{}, mapAppError("reopen day", err)
	}
	return a.view(day), nil
}

// DeleteDay removes a day.
func (a *AppServiceAdapter) DeleteDay(ctx context.Context, date string) error {
	return mapAppError("delete day", a.service.DeleteDay(ctx, resolveDate(date)))
}

// NextStartTime suggests the next activity start.
func (a *AppServiceAdapter) NextStartTime(_ context.Context, date string) (string, error) {
	next, err := a.service.NextStartTime(resolveDate(date))
	if err != nil {
		return "", mapAppError("next start time", err)
	}
	return next, nil
}

// ListTags lists available tags.
func (a *AppServiceAdapter) ListTags(_ context.Context) ([]domain.Tag, error) {
	return a.service.Tags().List(), nil
}

// CreateTag creates one tag.
func (a *AppServiceAdapter) CreateTag(ctx context.Context, name string) (domain.Tag, error) {
	tag, err := a.service.Tags().Create(ctx, name)
	if err != nil {
		return domain.Tag{}, mapAppError("create tag", err)
	}
	return tag, nil
}

// Stats returns journal-wide aggregates.
func (a *AppServiceAdapter) Stats(_ context.Context) (StatsView, error) {
	return StatsView{
		Stats:      a.service.Stats(),
		DailyGoal:  a.service.DailyGoal(),
		Highlights: a.service.Highlights(),
	}, nil
}

// CommitmentSeries returns the commitment history.
func (a *AppServiceAdapter) CommitmentSeries(_ context.Context) ([]domain.CommitmentData, error) {
	return a.service.CommitmentSeries(), nil
}

// Insight asks the configured generator about one day.
func (a *AppServiceAdapter) Insight(ctx context.Context, in InsightRequest) (InsightResult, error) {
	date := resolveDate(in.Date)
	day, err := a.GetDay(ctx, date)
	if err != nil {
		return InsightResult{}, err
	}
	text, err := a.service.Insight(ctx, a.insight, day.Date, in.Instruction)
	if err != nil {
		return InsightResult{}, mapAppError("insight", err)
	}
	return InsightResult{Date: day.Date, Text: text}, nil
}

func activityInput(in ActivityRequest) domain.ActivityInput {
	return domain.ActivityInput{
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Description: in.Description,
		IsPrivate:   in.IsPrivate,
	}
}

func tagNames(in ActivityRequest) app.TagNames {
	return app.TagNames{Names: in.Tags, Create: in.CreateTags}
}

func (a *AppServiceAdapter) view(day domain.Day) DayView {
	progress, err := a.service.Progress(day.Date)
	if err != nil {
		progress = domain.Progress(day, a.service.DailyGoal())
	}
	return DayView{Day: day, NextStartTime: day.NextStartTime(), Progress: progress}
}

func resolveDate(date string) string {
	date = strings.TrimSpace(date)
	if strings.EqualFold(date, CurrentDay) {
		return ""
	}
	return date
}

// mapAppError maps app/domain errors into transport-layer error sentinels.
func mapAppError(operation string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, app.ErrNotFound):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrNotFound, err))
	case errors.Is(err, domain.ErrDayCompleted), errors.Is(err, domain.ErrDayNotCompleted):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrConflict, err))
	case errors.Is(err, app.ErrValidation):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrInvalidRequest, err))
	case errors.Is(err, app.ErrUnauthenticated):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrUnauthenticated, err))
	case errors.Is(err, app.ErrPersistence):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrPersistence, err))
	case errors.Is(err, app.ErrInsightUnavailable):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrUnavailable, err))
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}
