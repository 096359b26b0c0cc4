package entry

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultUpdateTime is used when an entry is created without an update time.
const DefaultUpdateTime = "03:00"

// DefaultTitle is the title given to entries created without one.
const DefaultTitle = "Integration List Exporter"

// idPrefix marks entry IDs.
const idPrefix = "ent-"

// Entry is one configured exporter instance.
type Entry struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	UpdateTime string    `json:"update_time"`
	CreatedAt  time.Time `json:"created_at"`
}

// New returns an Entry with a fresh ID. Empty fields take their defaults.
// The update time is validated.
func New(title, updateTime string) (Entry, error) {
	if title == "" {
		title = DefaultTitle
	}
	if updateTime == "" {
		updateTime = DefaultUpdateTime
	}
	if err := ValidateUpdateTime(updateTime); err != nil {
		return Entry{}, err
	}
	return Entry{
		ID:         GenerateID(),
		Title:      title,
		UpdateTime: updateTime,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// GenerateID creates a new entry ID.
func GenerateID() string {
	return idPrefix + uuid.New().String()
}

// ValidateUpdateTime checks that s is "HH:MM" with hours 0-23 and minutes 0-59.
func ValidateUpdateTime(s string) error {
	_, _, err := ParseUpdateTime(s)
	return err
}

// ParseUpdateTime splits an "HH:MM" string into hours and minutes.
// Surrounding whitespace in either field is tolerated.
func ParseUpdateTime(s string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(s, ":")
	if !ok || strings.Contains(m, ":") {
		return 0, 0, fmt.Errorf("%w: %q is not HH:MM", ErrInvalidTime, s)
	}

	hour, err = strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: hours in %q", ErrInvalidTime, s)
	}
	minute, err = strconv.Atoi(strings.TrimSpace(m))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: minutes in %q", ErrInvalidTime, s)
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q out of range", ErrInvalidTime, s)
	}
	return hour, minute, nil
}

// NextRun returns the first time strictly after now that falls on hour:minute
// in now's location.
func NextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, hour, minute, 0, 0, now.Location())
	}
	return next
}
