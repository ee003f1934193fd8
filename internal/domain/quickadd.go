package domain

import (
	"errors"
	"strings"
)

// ErrInvalidQuickAdd reports a quick-add line without a leading time range.
var ErrInvalidQuickAdd = errors.New("expected HH:MM-HH:MM description #tag")

// QuickAdd is one parsed quick-add line.
type QuickAdd struct {
	StartTime   string
	EndTime     string
	Description string
	TagNames    []string
}

// ParseQuickAdd reads "HH:MM-HH:MM description #tag #tag". Tag tokens may
// appear anywhere after the range; duplicate tag names are kept once.
func ParseQuickAdd(line string) (QuickAdd, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return QuickAdd{}, ErrInvalidQuickAdd
	}
	startRaw, endRaw, ok := strings.Cut(fields[0], "-")
	if !ok {
		return QuickAdd{}, ErrInvalidQuickAdd
	}
	start, err := ParseTimeOfDay(startRaw)
	if err != nil {
		return QuickAdd{}, err
	}
	end, err := ParseTimeOfDay(endRaw)
	if err != nil {
		return QuickAdd{}, err
	}

	out := QuickAdd{StartTime: start, EndTime: end}
	words := make([]string, 0, len(fields)-1)
	seen := map[string]struct{}{}
	for _, field := range fields[1:] {
		name, isTag := strings.CutPrefix(field, "#")
		if !isTag {
			words = append(words, field)
			continue
		}
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out.TagNames = append(out.TagNames, name)
	}
	out.Description = strings.Join(words, " ")
	if out.Description == "" {
		return QuickAdd{}, ErrInvalidDescription
	}
	return out, nil
}

// Input converts the line into activity input using resolved tags.
func (q QuickAdd) Input(tags []Tag) ActivityInput {
	return ActivityInput{
		StartTime:   q.StartTime,
		EndTime:     q.EndTime,
		Description: q.Description,
		Tags:        tags,
	}
}
