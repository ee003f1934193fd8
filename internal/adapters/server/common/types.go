// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"

	"github.com/hylla/dayflow/internal/domain"
)

// Transport-visible error categories.
var (
	ErrInvalidRequest  = errors.New("invalid request")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrPersistence     = errors.New("persistence failed")
	ErrUnavailable     = errors.New("unavailable")
)

// CurrentDay is accepted wherever a date is expected and selects the current day.
const CurrentDay = "current"

// DayView is a day plus the values a client needs to render it.
type DayView struct {
	domain.Day
	NextStartTime string              `json:"nextStartTime"`
	Progress      domain.GoalProgress `json:"progress"`
}

// CreateDayRequest creates or selects the day for Date. Empty means today.
type CreateDayRequest struct {
	Date string `json:"date,omitempty"`
}

// CreateDayResult reports where a create landed.
type CreateDayResult struct {
	Day         DayView `json:"day"`
	Existed     bool    `json:"existed"`
	NeedsReopen bool    `json:"needs_reopen"`
}

// ActivityRequest carries add/edit input. Tags are names; unknown names are
// created when CreateTags is set.
type ActivityRequest struct {
	Date        string   `json:"date,omitempty"`
	ActivityID  string   `json:"activity_id,omitempty"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	IsPrivate   bool     `json:"is_private,omitempty"`
	CreateTags  bool     `json:"create_tags,omitempty"`
}

// EditActivityResult reports an edit. Changed is false for an unknown activity.
type EditActivityResult struct {
	Day     DayView `json:"day"`
	Changed bool    `json:"changed"`
}

// RemoveActivityRequest identifies one activity.
type RemoveActivityRequest struct {
	Date       string `json:"date,omitempty"`
	ActivityID string `json:"activity_id"`
}

// RemoveActivityResult reports a removal. Day is omitted when the day was deleted.
type RemoveActivityResult struct {
	Removed    bool     `json:"removed"`
	DayDeleted bool     `json:"day_deleted"`
	Day        *DayView `json:"day,omitempty"`
}

// StatsView bundles the journal-wide derived values.
type StatsView struct {
	Stats      domain.Stats      `json:"stats"`
	DailyGoal  int               `json:"daily_goal"`
	Highlights domain.Highlights `json:"highlights"`
}

// InsightRequest asks for advisory text about one day.
type InsightRequest struct {
	Date        string `json:"date,omitempty"`
	Instruction string `json:"instruction,omitempty"`
}

// InsightResult carries the generated text.
type InsightResult struct {
	Date string `json:"date"`
	Text string `json:"text"`
}

// JournalService is the surface both transports expose.
type JournalService interface {
	ListDays(context.Context) ([]DayView, error)
	GetDay(context.Context, string) (DayView, error)
	CreateDay(context.Context, CreateDayRequest) (CreateDayResult, error)
	AddActivity(context.Context, ActivityRequest) (DayView, error)
	EditActivity(context.Context, ActivityRequest) (EditActivityResult, error)
	RemoveActivity(context.Context, RemoveActivityRequest) (RemoveActivityResult, error)
	CompleteDay(context.Context, string) (DayView, error)
	ReopenDay(context.Context, string) (DayView, error)
	DeleteDay(context.Context, string) error
	NextStartTime(context.Context, string) (string, error)
	ListTags(context.Context) ([]domain.Tag, error)
	CreateTag(context.Context, string) (domain.Tag, error)
	Stats(context.Context) (StatsView, error)
	CommitmentSeries(context.Context) ([]domain.CommitmentData, error)
	Insight(context.Context, InsightRequest) (InsightResult, error)
}
