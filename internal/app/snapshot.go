package app

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hylla/dayflow/internal/domain"
)

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "dayflow.snapshot.v1"

// Snapshot is a portable export of one user's journal.
type Snapshot struct {
	Version    string       `json:"version"`
	ExportedAt time.Time    `json:"exported_at"`
	UserID     string       `json:"user_id"`
	Days       []domain.Day `json:"days"`
	Tags       []domain.Tag `json:"tags"`
}

// ExportSnapshot captures the stored days and tags of the loaded user.
// Unsaved draft days are not exported.
func (s *Service) ExportSnapshot(_ context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireUserLocked(); err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: s.clock().UTC(),
		UserID:     s.userID,
		Days:       cloneDays(s.days),
		Tags:       s.tags.List(),
	}
	snap.sort()
	return snap, nil
}

// ImportSnapshot upserts every day and the tag set through the repository,
// then reloads the collection. Days not in the snapshot are kept.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) error {
	snap.Days = slices.Clone(snap.Days)
	if err := snap.Validate(); err != nil {
		return validationError(err)
	}
	snap.sort()

	s.mu.Lock()
	userID := s.userID
	s.mu.Unlock()
	if userID == "" {
		return ErrUnauthenticated
	}

	for _, day := range snap.Days {
		if err := s.repo.PutDay(ctx, userID, day.Date, day); err != nil {
			return persistenceError("put day", err)
		}
	}
	if len(snap.Tags) > 0 {
		if err := s.repo.PutTagSet(ctx, userID, snap.Tags); err != nil {
			return persistenceError("put tag set", err)
		}
	}
	return s.Load(ctx)
}

// Validate checks the snapshot and rewrites day dates into canonical form.
func (s *Snapshot) Validate() error {
	if s.Version != "" && s.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version: %q", s.Version)
	}
	dates := map[string]struct{}{}
	for i, d := range s.Days {
		if strings.TrimSpace(d.ID) == "" {
			return fmt.Errorf("days[%d].id is required", i)
		}
		date, err := domain.NormalizeDate(d.Date)
		if err != nil {
			return fmt.Errorf("days[%d].date %q: %w", i, d.Date, err)
		}
		if _, exists := dates[date]; exists {
			return fmt.Errorf("duplicate day date: %q", date)
		}
		dates[date] = struct{}{}
		s.Days[i].Date = date
		if len(d.Activities) == 0 {
			return fmt.Errorf("days[%d] has no activities", i)
		}
		for j, a := range d.Activities {
			if strings.TrimSpace(a.ID) == "" {
				return fmt.Errorf("days[%d].activities[%d].id is required", i, j)
			}
		}
	}
	tagIDs := map[string]struct{}{}
	for i, t := range s.Tags {
		if _, err := domain.NewTag(t.ID, t.Name, t.Color, t.Icon); err != nil {
			return fmt.Errorf("tags[%d]: %w", i, err)
		}
		if _, exists := tagIDs[t.ID]; exists {
			return fmt.Errorf("duplicate tag id: %q", t.ID)
		}
		tagIDs[t.ID] = struct{}{}
	}
	return nil
}

func (s *Snapshot) sort() {
	slices.SortStableFunc(s.Days, func(a, b domain.Day) int { return strings.Compare(a.Date, b.Date) })
}
