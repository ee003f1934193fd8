package app

import (
	"context"
	"strings"

	"github.com/hylla/dayflow/internal/domain"
)

// Repository persists one document per (user, date) and one tag set per user.
type Repository interface {
	ListDays(ctx context.Context, userID string) ([]domain.Day, error)
	PutDay(ctx context.Context, userID, date string, day domain.Day) error
	DeleteDay(ctx context.Context, userID, date string) error
	// GetTagSet reports false when the user never stored a tag set.
	GetTagSet(ctx context.Context, userID string) ([]domain.Tag, bool, error)
	PutTagSet(ctx context.Context, userID string, tags []domain.Tag) error
}

// Identity exposes the authenticated user.
type Identity interface {
	CurrentUser(ctx context.Context) (string, bool)
}

// StaticIdentity always reports the configured user. An empty value means
// nobody is signed in.
type StaticIdentity string

// CurrentUser implements Identity.
func (s StaticIdentity) CurrentUser(context.Context) (string, bool) {
	user := strings.TrimSpace(string(s))
	return user, user != ""
}

// InsightGenerator turns a day's activity summaries into advisory text.
type InsightGenerator interface {
	GenerateInsight(ctx context.Context, req InsightRequest) (string, error)
}
