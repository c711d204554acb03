package tasks

import (
	"strings"
	"time"

	"taskboard/internal/models"
)

// DueBucket names a time window the due date must fall into.
type DueBucket string

const (
	DueAll       DueBucket = "all"
	DueToday     DueBucket = "today"
	DueOverdue   DueBucket = "overdue"
	DueThisWeek  DueBucket = "this-week"
	DueThisMonth DueBucket = "this-month"
)

// ParseDueBucket maps raw input to a bucket. Anything unknown is DueAll.
func ParseDueBucket(raw string) DueBucket {
	switch b := DueBucket(strings.ToLower(strings.TrimSpace(raw))); b {
	case DueToday, DueOverdue, DueThisWeek, DueThisMonth:
		return b
	default:
		return DueAll
	}
}

// FilterCriteria is the set of active constraints narrowing the visible tasks.
// Empty sets and an empty search do not constrain anything.
type FilterCriteria struct {
	Status   []models.Status   `json:"status"`
	Priority []models.Priority `json:"priority"`
	DueDate  DueBucket         `json:"dueDate"`
	Search   string            `json:"search"`
}

// DefaultCriteria matches every task.
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{
		Status:   []models.Status{},
		Priority: []models.Priority{},
		DueDate:  DueAll,
	}
}

// IsDefault reports whether no filter is active.
func (c FilterCriteria) IsDefault() bool {
	return len(c.Status) == 0 && len(c.Priority) == 0 &&
		ParseDueBucket(string(c.DueDate)) == DueAll && c.Search == ""
}

// FilterPatch is a partial update of the criteria. Nil fields keep their value.
type FilterPatch struct {
	Status   *[]models.Status   `json:"status"`
	Priority *[]models.Priority `json:"priority"`
	DueDate  *DueBucket         `json:"dueDate"`
	Search   *string            `json:"search"`
}

// Merge returns c with the set fields of p applied.
func (c FilterCriteria) Merge(p FilterPatch) FilterCriteria {
	if p.Status != nil {
		c.Status = append([]models.Status{}, *p.Status...)
	}
	if p.Priority != nil {
		c.Priority = append([]models.Priority{}, *p.Priority...)
	}
	if p.DueDate != nil {
		c.DueDate = *p.DueDate
	}
	if p.Search != nil {
		c.Search = *p.Search
	}
	return c
}

// Filter returns the tasks satisfying every active predicate of c, in their
// original order. The due date predicates are evaluated against now.
func Filter(list []models.Task, c FilterCriteria, now time.Time) []models.Task {
	bucket := ParseDueBucket(string(c.DueDate))
	search := strings.ToLower(c.Search)

	out := make([]models.Task, 0, len(list))
	for _, t := range list {
		if len(c.Status) > 0 && !containsStatus(c.Status, t.Status) {
			continue
		}
		if len(c.Priority) > 0 && !containsPriority(c.Priority, t.Priority) {
			continue
		}
		if !inBucket(t, bucket, now) {
			continue
		}
		if search != "" && !matchesSearch(t, search) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func containsStatus(set []models.Status, s models.Status) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func containsPriority(set []models.Priority, p models.Priority) bool {
	for _, v := range set {
		if v == p {
			return true
		}
	}
	return false
}

func inBucket(t models.Task, bucket DueBucket, now time.Time) bool {
	due := t.DueDate.In(now.Location())
	switch bucket {
	case DueToday:
		return sameDay(due, now)
	case DueOverdue:
		return due.Before(now) && t.Status != models.StatusCompleted
	case DueThisWeek:
		return startOfWeek(due).Equal(startOfWeek(now))
	case DueThisMonth:
		return due.Year() == now.Year() && due.Month() == now.Month()
	default:
		return true
	}
}

func matchesSearch(t models.Task, needle string) bool {
	if strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// startOfWeek returns midnight of the Sunday starting t's week.
func startOfWeek(t time.Time) time.Time {
	day := models.StartOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}
