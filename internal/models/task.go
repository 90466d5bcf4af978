package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

type Task struct {
	ID            int64        `db:"id"`
	Name          string       `db:"name"`
	Description   *string      `db:"description"`
	ScheduledDate time.Time    `db:"scheduled_date"`
	Priority      TaskPriority `db:"priority"`
	Tags          []Tag        `db:"-"`
}

// HasTag reports whether tagID is in the task's tag set.
func (t *Task) HasTag(tagID int64) bool {
	for _, tag := range t.Tags {
		if tag.ID == tagID {
			return true
		}
	}
	return false
}

// AddTag adds tag to the set; adding a present tag is a no-op.
func (t *Task) AddTag(tag Tag) {
	if t.HasTag(tag.ID) {
		return
	}
	t.Tags = append(t.Tags, tag)
	sortTags(t.Tags)
}

// RemoveTag drops tagID from the set and reports whether it was present.
func (t *Task) RemoveTag(tagID int64) bool {
	for i, tag := range t.Tags {
		if tag.ID == tagID {
			t.Tags = append(t.Tags[:i], t.Tags[i+1:]...)
			return true
		}
	}
	return false
}

// TagNames lists the names of the task's tags in id order.
func (t *Task) TagNames() []string {
	names := make([]string, len(t.Tags))
	for i, tag := range t.Tags {
		names[i] = tag.Name
	}
	return names
}

func sortTags(tags []Tag) {
	sort.Slice(tags, func(i, j int) bool { return tags[i].ID < tags[j].ID })
}

// Accepted scheduledDate layouts. Values without a zone are taken as UTC.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// DateTime is an ISO-8601 date-time that also accepts zone-less values.
type DateTime time.Time

func ParseDateTime(s string) (DateTime, error) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return DateTime(t.UTC()), nil
		}
	}
	return DateTime{}, fmt.Errorf("invalid date-time %q, expected ISO-8601 such as 2025-07-01T10:41", s)
}

func (d DateTime) Time() time.Time {
	return time.Time(d)
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(d).UTC().Format(time.RFC3339Nano))
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date-time must be a string: %w", err)
	}
	parsed, err := ParseDateTime(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TaskCreateRequest is the payload of POST /task/save.
type TaskCreateRequest struct {
	Name          string       `json:"name" validate:"required,min=2,max=55"`
	Description   *string      `json:"description"`
	ScheduledDate *DateTime    `json:"scheduledDate" validate:"required,futureorpresent"`
	Priority      TaskPriority `json:"priority" validate:"required,priority"`
}

// TaskUpdateRequest carries a partial update; nil fields are left untouched.
type TaskUpdateRequest struct {
	Name          *string       `json:"name" validate:"omitempty,min=2,max=55"`
	Description   *string       `json:"description"`
	ScheduledDate *DateTime     `json:"scheduledDate" validate:"omitempty,futureorpresent"`
	Priority      *TaskPriority `json:"priority" validate:"omitempty,priority"`
}

type TaskResponse struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	Description   *string       `json:"description"`
	ScheduledDate DateTime      `json:"scheduledDate"`
	Priority      TaskPriority  `json:"priority"`
	Tags          []TagResponse `json:"tags"`
}

type TaskPriorityResponse struct {
	Priority string `json:"priority"`
	Level    int    `json:"level"`
}
