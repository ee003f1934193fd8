package domain

import "slices"

// CommitmentData is one point of the commitment history.
type CommitmentData struct {
	Date            string  `json:"date"`
	Level           float64 `json:"level"`
	ActivitiesCount int     `json:"activitiesCount"`
}

// CommitmentSeries lists every day with a stamped level, oldest first.
// Reopened days keep their stale level and still appear.
func CommitmentSeries(days []Day) []CommitmentData {
	out := make([]CommitmentData, 0, len(days))
	for _, d := range days {
		if d.CommitmentLevel == nil {
			continue
		}
		out = append(out, CommitmentData{
			Date:            d.Date,
			Level:           *d.CommitmentLevel,
			ActivitiesCount: len(d.Activities),
		})
	}
	slices.SortStableFunc(out, func(a, b CommitmentData) int {
		switch {
		case a.Date < b.Date:
			return -1
		case a.Date > b.Date:
			return 1
		}
		return 0
	})
	return out
}
