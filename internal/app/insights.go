package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/hylla/dayflow/internal/domain"
)

// DefaultInsightInstruction is sent when the caller gives none.
const DefaultInsightInstruction = "Summarize how this day went and suggest one improvement for tomorrow."

// EmptyInsightNotice is returned instead of calling the generator for a day
// with nothing to share.
const EmptyInsightNotice = "No shareable activities recorded for this day yet."

// ActivitySummary is the activity shape that crosses the insight boundary.
type ActivitySummary struct {
	StartTime   string   `json:"startTime"`
	EndTime     string   `json:"endTime"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
}

// InsightRequest is the typed payload for an InsightGenerator.
type InsightRequest struct {
	Instruction string            `json:"instruction"`
	Date        string            `json:"date"`
	Activities  []ActivitySummary `json:"activities"`
}

// Render formats the activity list as plain text lines.
func (r InsightRequest) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\n", r.Date)
	for _, a := range r.Activities {
		fmt.Fprintf(&b, "- %s-%s: %s", a.StartTime, a.EndTime, a.Description)
		if len(a.Tags) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(a.Tags, ", "))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// SummarizeActivities builds insight summaries in display order. Private
// activities are left out.
func SummarizeActivities(day domain.Day) []ActivitySummary {
	out := make([]ActivitySummary, 0, len(day.Activities))
	for _, a := range day.SortedActivities() {
		if a.IsPrivate {
			continue
		}
		tags := make([]string, 0, len(a.Tags))
		for _, t := range a.Tags {
			tags = append(tags, t.Name)
		}
		out = append(out, ActivitySummary{
			StartTime:   a.StartTime,
			EndTime:     a.EndTime,
			Description: a.Description,
			Tags:        tags,
		})
	}
	return out
}

// Insight asks gen for advisory text about a day. It never mutates state.
func (s *Service) Insight(ctx context.Context, gen InsightGenerator, date, instruction string) (string, error) {
	day, err := s.lookup(date)
	if err != nil {
		return "", err
	}
	req := InsightRequest{
		Instruction: strings.TrimSpace(instruction),
		Date:        day.Date,
		Activities:  SummarizeActivities(day),
	}
	if req.Instruction == "" {
		req.Instruction = DefaultInsightInstruction
	}
	if len(req.Activities) == 0 {
		return EmptyInsightNotice, nil
	}
	if gen == nil {
		return "", ErrInsightUnavailable
	}
	text, err := gen.GenerateInsight(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInsightUnavailable, err)
	}
	return text, nil
}

func (s *Service) lookup(date string) (domain.Day, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, err := s.targetLocked(date)
	if err != nil {
		return domain.Day{}, err
	}
	return day.Clone(), nil
}
