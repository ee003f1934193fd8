// Package docstore holds the document layout shared by the key/value storage
// backends: one JSON document per (user, date) and one tag-set document per user.
package docstore

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hylla/dayflow/internal/domain"
)

const keySep = "/"

// DayKey returns the key of one day document.
func DayKey(userID, date string) []byte {
	return []byte("day" + keySep + userID + keySep + date)
}

// DayPrefix returns the key prefix shared by every day document of userID.
func DayPrefix(userID string) []byte {
	return []byte("day" + keySep + userID + keySep)
}

// TagSetKey returns the key of the tag-set document of userID.
func TagSetKey(userID string) []byte {
	return []byte("tags" + keySep + userID)
}

// EncodeDay marshals day, normalizing nil activities to an empty list.
func EncodeDay(day domain.Day) ([]byte, error) {
	if day.Activities == nil {
		day.Activities = []domain.Activity{}
	}
	raw, err := json.Marshal(day)
	if err != nil {
		return nil, fmt.Errorf("encode day %s: %w", day.Date, err)
	}
	return raw, nil
}

// DecodeDay unmarshals one day document.
func DecodeDay(raw []byte) (domain.Day, error) {
	var day domain.Day
	if err := json.Unmarshal(raw, &day); err != nil {
		return domain.Day{}, fmt.Errorf("decode day: %w", err)
	}
	if day.Activities == nil {
		day.Activities = []domain.Activity{}
	}
	return day, nil
}

// EncodeTags marshals a tag set.
func EncodeTags(tags []domain.Tag) ([]byte, error) {
	if tags == nil {
		tags = []domain.Tag{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	return raw, nil
}

// DecodeTags unmarshals a tag set.
func DecodeTags(raw []byte) ([]domain.Tag, error) {
	tags := []domain.Tag{}
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return tags, nil
}

// ValidUserID rejects ids that would break key prefixes.
func ValidUserID(userID string) error {
	if strings.TrimSpace(userID) == "" || strings.Contains(userID, keySep) {
		return fmt.Errorf("invalid user id %q", userID)
	}
	return nil
}
