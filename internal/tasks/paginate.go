package tasks

import (
	"time"

	"taskboard/internal/models"
)

// Pagination describes where a page sits in the filtered sequence.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Page is the visible slice of the filtered tasks.
type Page struct {
	Tasks      []models.Task `json:"tasks"`
	Pagination Pagination    `json:"pagination"`
}

// Paginate cuts the 1-based page out of list. A page past the end yields an
// empty slice; the page number is never clamped.
func Paginate(list []models.Task, page, limit int) (Page, error) {
	if page < 1 {
		return Page{}, ErrInvalidPage
	}
	if limit < 1 {
		return Page{}, ErrInvalidLimit
	}

	total := len(list)
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	meta := Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}

	// page-1 < totalPages keeps (page-1)*limit below total.
	if page-1 >= totalPages {
		return Page{Tasks: []models.Task{}, Pagination: meta}, nil
	}
	start := (page - 1) * limit
	end := start + min(limit, total-start)
	return Page{Tasks: list[start:end:end], Pagination: meta}, nil
}

// Query filters list with c and returns the requested page of the result.
func Query(list []models.Task, c FilterCriteria, page, limit int, now time.Time) (Page, error) {
	return Paginate(Filter(list, c, now), page, limit)
}
