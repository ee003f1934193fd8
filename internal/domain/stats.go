package domain

import "slices"

// Stats summarizes a user's whole journal.
type Stats struct {
	TotalActivities   int     `json:"totalActivities"`
	FinalizedDays     int     `json:"finalizedDays"`
	PendingDays       int     `json:"pendingDays"`
	AverageActivities float64 `json:"averageActivities"`
}

// ComputeStats aggregates activity and completion counts.
func ComputeStats(days []Day) Stats {
	var s Stats
	for _, d := range days {
		s.TotalActivities += len(d.Activities)
		if d.Completed() {
			s.FinalizedDays++
		} else {
			s.PendingDays++
		}
	}
	if len(days) > 0 {
		s.AverageActivities = float64(s.TotalActivities) / float64(len(days))
	}
	return s
}

// GoalProgress describes how far a day is toward its goal.
type GoalProgress struct {
	Count   int     `json:"count"`
	Goal    int     `json:"goal"`
	Percent float64 `json:"percent"`
	HalfWay bool    `json:"halfWay"`
	Reached bool    `json:"reached"`
}

// Progress computes goal progress for one day. Reached requires a finalized day.
func Progress(day Day, goal int) GoalProgress {
	p := GoalProgress{Count: len(day.Activities), Goal: goal}
	if goal <= 0 {
		return p
	}
	p.Percent = min(float64(p.Count*100)/float64(goal), 100)
	p.HalfWay = p.Count*2 >= goal
	p.Reached = day.Completed() && p.Count >= goal
	return p
}

// Highlights are the history facts shown on the insights screen.
type Highlights struct {
	// MostProductiveDay is the date with the most activities. Later dates win ties.
	MostProductiveDay   string `json:"mostProductiveDay,omitempty"`
	MostProductiveCount int    `json:"mostProductiveCount"`
	// TopTag is the most referenced tag name. Names break ties alphabetically.
	TopTag      string `json:"topTag,omitempty"`
	TopTagCount int    `json:"topTagCount"`
	// RecentDays lists dates with activities, newest first.
	RecentDays []string `json:"recentDays"`
}

// ComputeHighlights derives Highlights, keeping at most recent entries in RecentDays.
func ComputeHighlights(days []Day, recent int) Highlights {
	h := Highlights{RecentDays: []string{}}
	tagCounts := map[string]int{}
	for _, d := range days {
		n := len(d.Activities)
		if n > 0 && (n > h.MostProductiveCount || (n == h.MostProductiveCount && d.Date > h.MostProductiveDay)) {
			h.MostProductiveDay = d.Date
			h.MostProductiveCount = n
		}
		for _, a := range d.Activities {
			for _, t := range a.Tags {
				tagCounts[t.Name]++
			}
		}
	}
	for name, count := range tagCounts {
		if count > h.TopTagCount || (count == h.TopTagCount && name < h.TopTag) {
			h.TopTag = name
			h.TopTagCount = count
		}
	}

	withActivities := make([]string, 0, len(days))
	for _, d := range days {
		if len(d.Activities) > 0 {
			withActivities = append(withActivities, d.Date)
		}
	}
	slices.Sort(withActivities)
	slices.Reverse(withActivities)
	if recent > 0 && len(withActivities) > recent {
		withActivities = withActivities[:recent]
	}
	h.RecentDays = append(h.RecentDays, withActivities...)
	return h
}
