package domain

import (
	"strings"
)

// Tag is a shared category label referenced by activities.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon,omitempty"`
}

// TagPalette lists the colors assigned to user-created tags.
var TagPalette = []string{
	"#8B5CF6",
	"#06B6D4",
	"#10B981",
	"#F59E0B",
	"#EF4444",
	"#EC4899",
	"#6366F1",
	"#8B5A2B",
}

// NewTag validates and normalizes one tag.
func NewTag(id, name, color, icon string) (Tag, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return Tag{}, ErrInvalidID
	}
	if name == "" {
		return Tag{}, ErrInvalidName
	}
	return Tag{
		ID:    id,
		Name:  name,
		Color: strings.TrimSpace(color),
		Icon:  strings.TrimSpace(icon),
	}, nil
}

// DefaultTags returns the seed tag set used when a user has no stored tags.
func DefaultTags() []Tag {
	return []Tag{
		{ID: "1", Name: "Trabalho", Color: "#8B5CF6"},
		{ID: "2", Name: "Estudo", Color: "#06B6D4"},
		{ID: "3", Name: "Exercício", Color: "#10B981"},
		{ID: "4", Name: "Lazer", Color: "#F59E0B"},
		{ID: "5", Name: "Família", Color: "#EF4444"},
		{ID: "6", Name: "Saúde", Color: "#EC4899"},
	}
}

// FindTagByName matches case-insensitively after trimming.
func FindTagByName(tags []Tag, name string) (Tag, bool) {
	name = strings.TrimSpace(name)
	for _, tag := range tags {
		if strings.EqualFold(tag.Name, name) {
			return tag, true
		}
	}
	return Tag{}, false
}

// FindTagByID returns the tag carrying id.
func FindTagByID(tags []Tag, id string) (Tag, bool) {
	for _, tag := range tags {
		if tag.ID == id {
			return tag, true
		}
	}
	return Tag{}, false
}
