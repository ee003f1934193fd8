package domain

import "slices"

// Commitment level bounds, in tenths.
const (
	minLevelTenths = 10
	maxLevelTenths = 100
)

// CommitmentLevel scores a day's activities:
//
//	count*1.5 + uniqueTags*0.8 + (minutes/60)*0.5
//
// clamped to [1, 10] and rounded half away from zero to one decimal.
// The sum is kept in integer 1/120ths so rounding is exact.
func CommitmentLevel(activities []Activity) float64 {
	tags := make(map[string]struct{})
	minutes := 0
	for _, a := range activities {
		for _, t := range a.Tags {
			tags[t.ID] = struct{}{}
		}
		minutes += a.DurationMinutes()
	}
	// raw*120 = count*180 + tags*96 + minutes.
	units := len(activities)*180 + len(tags)*96 + minutes
	units = min(max(units, minLevelTenths*12), maxLevelTenths*12)
	tenths := (units + 6) / 12
	return float64(tenths) / 10
}

// GoalOptions configure DailyGoal. Zero fields take the defaults.
type GoalOptions struct {
	DefaultGoal int
	MaxGoal     int
	WindowSize  int
}

// Goal defaults.
const (
	DefaultDailyGoal  = 5
	DefaultMaxGoal    = 12
	DefaultGoalWindow = 7
)

func (o GoalOptions) normalized() GoalOptions {
	if o.DefaultGoal <= 0 {
		o.DefaultGoal = DefaultDailyGoal
	}
	if o.MaxGoal <= 0 {
		o.MaxGoal = DefaultMaxGoal
	}
	if o.MaxGoal < o.DefaultGoal {
		o.MaxGoal = o.DefaultGoal
	}
	if o.WindowSize <= 0 {
		o.WindowSize = DefaultGoalWindow
	}
	return o
}

// DailyGoal averages activity counts over the most recent WindowSize days,
// rounds half up, and clamps into [DefaultGoal, MaxGoal].
func DailyGoal(days []Day, opts GoalOptions) int {
	opts = opts.normalized()
	if len(days) == 0 {
		return opts.DefaultGoal
	}
	recent := slices.Clone(days)
	slices.SortStableFunc(recent, func(a, b Day) int {
		switch {
		case a.Date > b.Date:
			return -1
		case a.Date < b.Date:
			return 1
		}
		return 0
	})
	if len(recent) > opts.WindowSize {
		recent = recent[:opts.WindowSize]
	}
	sum := 0
	for _, d := range recent {
		sum += len(d.Activities)
	}
	n := len(recent)
	goal := (2*sum + n) / (2 * n)
	return min(max(goal, opts.DefaultGoal), opts.MaxGoal)
}
