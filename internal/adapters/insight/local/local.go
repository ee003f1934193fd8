// Package local implements app.InsightGenerator without any network call.
package local

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hylla/dayflow/internal/app"
	"github.com/hylla/dayflow/internal/domain"
)

// Generator writes a deterministic markdown digest of a day.
type Generator struct{}

var _ app.InsightGenerator = Generator{}

// GenerateInsight implements app.InsightGenerator.
func (Generator) GenerateInsight(_ context.Context, req app.InsightRequest) (string, error) {
	var (
		total    int
		longest  app.ActivitySummary
		longestM = -1
		tagMins  = map[string]int{}
	)
	for _, a := range req.Activities {
		m := domain.Activity{StartTime: a.StartTime, EndTime: a.EndTime}.DurationMinutes()
		total += m
		if m > longestM {
			longest, longestM = a, m
		}
		for _, tag := range a.Tags {
			tagMins[tag] += m
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", req.Date)
	fmt.Fprintf(&b, "- **%d** activities, **%s** tracked\n", len(req.Activities), formatMinutes(total))
	if longestM >= 0 {
		fmt.Fprintf(&b, "- Longest block: %s (%s-%s, %s)\n", longest.Description, longest.StartTime, longest.EndTime, formatMinutes(longestM))
	}
	if len(tagMins) > 0 {
		names := make([]string, 0, len(tagMins))
		for name := range tagMins {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			if tagMins[names[i]] != tagMins[names[j]] {
				return tagMins[names[i]] > tagMins[names[j]]
			}
			return names[i] < names[j]
		})
		b.WriteString("\n### Time by tag\n\n")
		for _, name := range names {
			fmt.Fprintf(&b, "- %s: %s\n", name, formatMinutes(tagMins[name]))
		}
	}
	return b.String(), nil
}

func formatMinutes(m int) string {
	sign := ""
	if m < 0 {
		sign, m = "-", -m
	}
	return fmt.Sprintf("%s%dh%02dm", sign, m/60, m%60)
}
