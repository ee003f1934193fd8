package domain

import (
	"slices"
	"strings"
)

// Activity is one timestamped entry inside a Day.
type Activity struct {
	ID          string `json:"id"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Description string `json:"description"`
	Tags        []Tag  `json:"tags"`
	IsPrivate   bool   `json:"isPrivate,omitempty"`
}

// ActivityInput holds the user-editable fields of an activity.
type ActivityInput struct {
	StartTime   string
	EndTime     string
	Description string
	Tags        []Tag
	IsPrivate   bool
}

// NewActivity validates the input and builds an activity. End before start is
// accepted and scores as a negative duration.
func NewActivity(id string, in ActivityInput) (Activity, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Activity{}, ErrInvalidID
	}
	start, err := ParseTimeOfDay(in.StartTime)
	if err != nil {
		return Activity{}, err
	}
	end, err := ParseTimeOfDay(in.EndTime)
	if err != nil {
		return Activity{}, err
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return Activity{}, ErrInvalidDescription
	}
	return Activity{
		ID:          id,
		StartTime:   start,
		EndTime:     end,
		Description: description,
		Tags:        slices.Clone(in.Tags),
		IsPrivate:   in.IsPrivate,
	}, nil
}

// DurationMinutes returns end minus start in minutes. Unparseable times count as zero.
func (a Activity) DurationMinutes() int {
	start, err := minutesOfDay(a.StartTime)
	if err != nil {
		return 0
	}
	end, err := minutesOfDay(a.EndTime)
	if err != nil {
		return 0
	}
	return end - start
}

// HasTag reports whether the activity references tagID.
func (a Activity) HasTag(tagID string) bool {
	return slices.ContainsFunc(a.Tags, func(t Tag) bool { return t.ID == tagID })
}
