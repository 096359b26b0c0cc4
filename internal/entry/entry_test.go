package entry

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidateUpdateTime(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"03:00", false},
		{"00:00", false},
		{"23:59", false},
		{"3:5", false},
		{" 7:30", false},
		{"24:00", true},
		{"12:60", true},
		{"-1:00", true},
		{"12", true},
		{"12:00:00", true},
		{"ab:cd", true},
		{"", true},
		{":", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := ValidateUpdateTime(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateUpdateTime(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidTime) {
				t.Errorf("error = %v, want ErrInvalidTime", err)
			}
		})
	}
}

func TestParseUpdateTime(t *testing.T) {
	h, m, err := ParseUpdateTime("04:30")
	if err != nil || h != 4 || m != 30 {
		t.Errorf("ParseUpdateTime(04:30) = %d, %d, %v", h, m, err)
	}
}

func TestNextRun(t *testing.T) {
	day := func(d, h, m int) time.Time { return time.Date(2026, 10, d, h, m, 0, 0, time.UTC) }

	tests := []struct {
		name string
		now  time.Time
		h, m int
		want time.Time
	}{
		{"later today", day(18, 1, 15), 3, 0, day(18, 3, 0)},
		{"already passed", day(18, 4, 0), 3, 0, day(19, 3, 0)},
		{"exactly now", day(18, 3, 0), 3, 0, day(19, 3, 0)},
		{"month rollover", time.Date(2026, 10, 31, 23, 0, 0, 0, time.UTC), 0, 30, time.Date(2026, 11, 1, 0, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextRun(tt.now, tt.h, tt.m); !got.Equal(tt.want) {
				t.Errorf("NextRun() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	e, err := New("", "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if e.Title != DefaultTitle || e.UpdateTime != DefaultUpdateTime {
		t.Errorf("New() = %+v, want defaults", e)
	}
	if !strings.HasPrefix(e.ID, idPrefix) || len(e.ID) != len(idPrefix)+36 {
		t.Errorf("ID = %q, want ent- prefixed UUID", e.ID)
	}

	if _, err := New("x", "25:00"); !errors.Is(err, ErrInvalidTime) {
		t.Errorf("New(25:00) error = %v, want ErrInvalidTime", err)
	}
}
