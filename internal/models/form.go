package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// TaskFormData is the user supplied part of a task on create.
type TaskFormData struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    Priority  `json:"priority"`
	DueDate     time.Time `json:"dueDate"`
	Tags        []string  `json:"tags"`
	SharedWith  []string  `json:"sharedWith"`
}

// Normalize trims text fields, drops duplicate tags and collaborators and
// defaults the priority to medium.
func (f TaskFormData) Normalize() TaskFormData {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	if f.Priority == "" {
		f.Priority = PriorityMedium
	}
	f.Tags = UniqueStrings(f.Tags)
	f.SharedWith = UniqueStrings(f.SharedWith)
	return f
}

// Validate checks the form the way the task dialog does before submitting.
// The due date may not fall before the start of the current day.
func (f TaskFormData) Validate(now time.Time) error {
	errs := ValidationErrors{}
	if strings.TrimSpace(f.Title) == "" {
		errs["title"] = "Title is required"
	}
	if strings.TrimSpace(f.Description) == "" {
		errs["description"] = "Description is required"
	}
	if f.Priority != "" && !f.Priority.Valid() {
		errs["priority"] = fmt.Sprintf("Unknown priority %q", f.Priority)
	}
	if f.DueDate.IsZero() {
		errs["dueDate"] = "Due date is required"
	} else if f.DueDate.Before(StartOfDay(now)) {
		errs["dueDate"] = "Due date cannot be in the past"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidationErrors maps a form field to its error message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+v[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// TaskPatch carries the fields of a partial update. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *Priority  `json:"priority"`
	Status      *Status    `json:"status"`
	DueDate     *time.Time `json:"dueDate"`
	Tags        *[]string  `json:"tags"`
	SharedWith  *[]string  `json:"sharedWith"`
}

// Empty reports whether the patch sets nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil && p.Status == nil &&
		p.DueDate == nil && p.Tags == nil && p.SharedWith == nil
}

// Apply merges the patch into t and refreshes UpdatedAt.
// Unknown priority or status values are ignored.
func (p TaskPatch) Apply(t Task, now time.Time) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil && p.Priority.Valid() {
		t.Priority = *p.Priority
	}
	if p.Status != nil && p.Status.Valid() {
		t.Status = *p.Status
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Tags != nil {
		t.Tags = UniqueStrings(*p.Tags)
	}
	if p.SharedWith != nil {
		t.SharedWith = UniqueStrings(*p.SharedWith)
	}

	t.UpdatedAt = now
	if t.UpdatedAt.Before(t.CreatedAt) {
		t.UpdatedAt = t.CreatedAt
	}
	return t
}

// UniqueStrings trims values and removes empties and duplicates,
// keeping the first occurrence order.
func UniqueStrings(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
