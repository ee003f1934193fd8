package domain

import (
	"slices"
	"strings"
	"time"
)

// Day is one user's activity log for a single calendar date. Date is the
// persistence key; ID is an opaque identity assigned on creation.
//
// IsCompleted and Finalizado always move together. Both are kept because
// stored documents and derived views read one or the other.
type Day struct {
	ID              string     `json:"id"`
	Date            string     `json:"date"`
	Activities      []Activity `json:"activities"`
	CommitmentLevel *float64   `json:"commitmentLevel,omitempty"`
	IsCompleted     bool       `json:"isCompleted"`
	Finalizado      bool       `json:"finalizado"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// NewDay constructs an empty, open day.
func NewDay(id, date string, now time.Time) (Day, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Day{}, ErrInvalidID
	}
	date, err := NormalizeDate(date)
	if err != nil {
		return Day{}, err
	}
	now = now.UTC()
	return Day{
		ID:         id,
		Date:       date,
		Activities: []Activity{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Completed reports whether the day has been finalized.
func (d Day) Completed() bool {
	return d.IsCompleted || d.Finalizado
}

// Clone returns a deep copy safe to mutate.
func (d Day) Clone() Day {
	out := d
	out.Activities = make([]Activity, len(d.Activities))
	for i, a := range d.Activities {
		a.Tags = slices.Clone(a.Tags)
		out.Activities[i] = a
	}
	if d.CommitmentLevel != nil {
		level := *d.CommitmentLevel
		out.CommitmentLevel = &level
	}
	return out
}

// AddActivity appends a.
func (d *Day) AddActivity(a Activity, now time.Time) error {
	if d.Completed() {
		return ErrDayCompleted
	}
	d.Activities = append(d.Activities, a)
	d.touch(now)
	return nil
}

// EditActivity replaces every field except ID of the matching activity.
// It returns false and leaves the day untouched when nothing matches.
func (d *Day) EditActivity(activityID string, in Activity, now time.Time) (bool, error) {
	if d.Completed() {
		return false, ErrDayCompleted
	}
	idx := d.activityIndex(activityID)
	if idx < 0 {
		return false, nil
	}
	in.ID = d.Activities[idx].ID
	d.Activities[idx] = in
	d.touch(now)
	return true, nil
}

// RemoveActivity filters out the matching activity. A caller seeing an
// empty day afterwards must delete it rather than persist it.
func (d *Day) RemoveActivity(activityID string, now time.Time) (bool, error) {
	if d.Completed() {
		return false, ErrDayCompleted
	}
	idx := d.activityIndex(activityID)
	if idx < 0 {
		return false, nil
	}
	d.Activities = slices.Delete(d.Activities, idx, idx+1)
	d.touch(now)
	return true, nil
}

// Complete stamps the commitment level and finalizes the day.
func (d *Day) Complete(now time.Time) error {
	if len(d.Activities) == 0 {
		return ErrEmptyDay
	}
	level := CommitmentLevel(d.Activities)
	d.CommitmentLevel = &level
	d.IsCompleted = true
	d.Finalizado = true
	d.touch(now)
	return nil
}

// Reopen makes a finalized day editable again. The previous commitment level
// is kept until the next Complete.
func (d *Day) Reopen(now time.Time) error {
	if !d.Completed() {
		return ErrDayNotCompleted
	}
	d.IsCompleted = false
	d.Finalizado = false
	d.touch(now)
	return nil
}

// NextStartTime returns the end time of the latest-starting activity.
func (d Day) NextStartTime() string {
	sorted := d.SortedActivities()
	if len(sorted) == 0 {
		return DefaultStartTime
	}
	return sorted[len(sorted)-1].EndTime
}

// SortedActivities returns activities in display order. Insertion order
// breaks ties.
func (d Day) SortedActivities() []Activity {
	out := slices.Clone(d.Activities)
	slices.SortStableFunc(out, func(a, b Activity) int {
		am, aerr := minutesOfDay(a.StartTime)
		bm, berr := minutesOfDay(b.StartTime)
		if aerr != nil || berr != nil {
			return strings.Compare(a.StartTime, b.StartTime)
		}
		return am - bm
	})
	return out
}

// Activity returns the activity with id.
func (d Day) Activity(id string) (Activity, bool) {
	idx := d.activityIndex(id)
	if idx < 0 {
		return Activity{}, false
	}
	return d.Activities[idx], true
}

func (d Day) activityIndex(id string) int {
	return slices.IndexFunc(d.Activities, func(a Activity) bool { return a.ID == id })
}

func (d *Day) touch(now time.Time) {
	d.UpdatedAt = now.UTC()
}

// FindDay returns the index of the day keyed by date, or -1.
func FindDay(days []Day, date string) int {
	return slices.IndexFunc(days, func(d Day) bool { return d.Date == date })
}

// SelectCurrent picks the most recently dated open day, falling back to the
// last day by date when every day is completed. It returns -1 for no days.
func SelectCurrent(days []Day) int {
	best := -1
	for i, d := range days {
		if d.Completed() {
			continue
		}
		if best < 0 || d.Date > days[best].Date {
			best = i
		}
	}
	if best >= 0 {
		return best
	}
	for i, d := range days {
		if best < 0 || d.Date > days[best].Date {
			best = i
		}
	}
	return best
}
