package domain

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseQuickAdd(t *testing.T) {
	got, err := ParseQuickAdd("  9:05-10:30 Leitura do #Estudo capítulo #lazer #estudo ")
	if err != nil {
		t.Fatalf("ParseQuickAdd() error = %v", err)
	}
	want := QuickAdd{
		StartTime:   "09:05",
		EndTime:     "10:30",
		Description: "Leitura do capítulo",
		TagNames:    []string{"Estudo", "lazer"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("quick add mismatch (-want +got):\n%s", diff)
	}
	in := got.Input([]Tag{tagStudy})
	if in.StartTime != "09:05" || in.Description != "Leitura do capítulo" || len(in.Tags) != 1 {
		t.Fatalf("unexpected input %#v", in)
	}
}

func TestParseQuickAddErrors(t *testing.T) {
	cases := []struct {
		line string
		want error
	}{
		{"", ErrInvalidQuickAdd},
		{"Leitura", ErrInvalidQuickAdd},
		{"25:00-10:00 Leitura", ErrInvalidTime},
		{"09:00-1000 Leitura", ErrInvalidTime},
		{"09:00-10:00", ErrInvalidDescription},
		{"09:00-10:00 #Estudo", ErrInvalidDescription},
	}
	for _, tt := range cases {
		if _, err := ParseQuickAdd(tt.line); !errors.Is(err, tt.want) {
			t.Fatalf("ParseQuickAdd(%q) error = %v, want %v", tt.line, err, tt.want)
		}
	}
}
