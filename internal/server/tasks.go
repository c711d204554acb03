package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"taskboard/internal/models"
	"taskboard/internal/tasks"
)

const dateLayout = "2006-01-02"

var errEmptyUpdate = errors.New("no fields to update")

type createTaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	DueDate     string   `json:"dueDate"`
	Tags        []string `json:"tags"`
	SharedWith  []string `json:"sharedWith"`
}

type updateTaskRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Priority    *string   `json:"priority"`
	Status      *string   `json:"status"`
	DueDate     *string   `json:"dueDate"`
	Tags        *[]string `json:"tags"`
	SharedWith  *[]string `json:"sharedWith"`
}

type shareRequest struct {
	Email string `json:"email"`
}

// handleListTasks filters and paginates the collection from query parameters.
// The limit parameter is capped at the configured page size.
func (s *Server) handleListTasks(c *gin.Context) {
	criteria := tasks.FilterCriteria{
		DueDate: tasks.ParseDueBucket(c.Query("due")),
		Search:  c.Query("search"),
	}
	for _, v := range splitQuery(c.QueryArray("status")) {
		criteria.Status = append(criteria.Status, models.Status(v))
	}
	for _, v := range splitQuery(c.QueryArray("priority")) {
		criteria.Priority = append(criteria.Priority, models.Priority(v))
	}

	page, err := intQuery(c, "page", 1)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, tasks.ErrInvalidPage)
		return
	}
	limit, err := intQuery(c, "limit", s.deps.PageSize)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, tasks.ErrInvalidLimit)
		return
	}
	// A client may ask for smaller pages, never larger ones.
	limit = min(limit, s.deps.PageSize)

	result, err := tasks.Query(s.deps.Tasks.List(), criteria, page, limit, s.deps.Now())
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, result)
}

// handleGetTask returns a single task.
func (s *Server) handleGetTask(c *gin.Context) {
	task, ok := s.deps.Tasks.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"task": task})
}

// handleCreateTask validates the form and adds a new task.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	now := s.deps.Now()
	form := models.TaskFormData{
		Title:       req.Title,
		Description: req.Description,
		Priority:    models.Priority(req.Priority),
		Tags:        req.Tags,
		SharedWith:  req.SharedWith,
	}
	if req.DueDate != "" {
		due, err := parseDate(req.DueDate, now.Location())
		if err != nil {
			s.respondError(c, http.StatusUnprocessableEntity, models.ValidationErrors{"dueDate": "Due date is not a valid date"})
			return
		}
		form.DueDate = due
	}
	if err := form.Validate(now); err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}

	task := s.deps.Tasks.Create(c.Request.Context(), form)
	respondSuccess(c, http.StatusCreated, gin.H{"task": task})
}

// handleUpdateTask merges the supplied fields into a task. Unknown ids are
// accepted and leave the collection untouched.
func (s *Server) handleUpdateTask(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	patch, err := req.patch(s.deps.Now())
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	if patch.Empty() {
		s.respondError(c, http.StatusBadRequest, errEmptyUpdate)
		return
	}

	task, found := s.deps.Tasks.Update(c.Request.Context(), c.Param("id"), patch)
	respondMutation(c, task, found)
}

// handleDeleteTask removes a task completely.
func (s *Server) handleDeleteTask(c *gin.Context) {
	if !s.deps.Tasks.Delete(c.Request.Context(), c.Param("id")) {
		respondSuccess(c, http.StatusOK, gin.H{"status": "unchanged"})
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}

// handleCycleStatus advances the task to its next status.
func (s *Server) handleCycleStatus(c *gin.Context) {
	task, found := s.deps.Tasks.CycleStatus(c.Request.Context(), c.Param("id"))
	respondMutation(c, task, found)
}

// handleShare adds a collaborator to the task.
func (s *Server) handleShare(c *gin.Context) {
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	task, found, err := s.deps.Tasks.Share(c.Request.Context(), c.Param("id"), req.Email)
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondMutation(c, task, found)
}

// handleUnshare removes a collaborator from the task.
func (s *Server) handleUnshare(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		var req shareRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			s.respondError(c, http.StatusBadRequest, err)
			return
		}
		email = req.Email
	}
	task, found := s.deps.Tasks.Unshare(c.Request.Context(), c.Param("id"), email)
	respondMutation(c, task, found)
}

// handleShareLink returns the public link of a task.
func (s *Server) handleShareLink(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.deps.Tasks.Get(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"link": tasks.ShareLink(s.deps.ShareBaseURL, id)})
}

// handleRefresh simulates reloading the tasks from a backend.
func (s *Server) handleRefresh(c *gin.Context) {
	s.deps.Tasks.Refresh(c.Request.Context())
	respondSuccess(c, http.StatusOK, gin.H{"status": "refreshed"})
}

// handleStats returns the dashboard counters.
func (s *Server) handleStats(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{"stats": s.deps.Tasks.Stats()})
}

// handleNotifications lists the latest user facing notifications.
func (s *Server) handleNotifications(c *gin.Context) {
	if s.deps.Notifications == nil {
		respondSuccess(c, http.StatusOK, gin.H{"notifications": []any{}})
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"notifications": s.deps.Notifications.Entries()})
}

func respondMutation(c *gin.Context, task models.Task, found bool) {
	if !found {
		respondSuccess(c, http.StatusOK, gin.H{"status": "unchanged"})
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"task": task})
}

func (r updateTaskRequest) patch(now time.Time) (models.TaskPatch, error) {
	var p models.TaskPatch
	errs := models.ValidationErrors{}

	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		if title == "" {
			errs["title"] = "Title is required"
		}
		p.Title = &title
	}
	if r.Description != nil {
		desc := strings.TrimSpace(*r.Description)
		if desc == "" {
			errs["description"] = "Description is required"
		}
		p.Description = &desc
	}
	if r.Priority != nil {
		prio := models.Priority(*r.Priority)
		if !prio.Valid() {
			errs["priority"] = fmt.Sprintf("Unknown priority %q", *r.Priority)
		}
		p.Priority = &prio
	}
	if r.Status != nil {
		st := models.Status(*r.Status)
		if !st.Valid() {
			errs["status"] = fmt.Sprintf("Unknown status %q", *r.Status)
		}
		p.Status = &st
	}
	if r.DueDate != nil {
		due, err := parseDate(*r.DueDate, now.Location())
		switch {
		case err != nil:
			errs["dueDate"] = "Due date is not a valid date"
		case due.Before(models.StartOfDay(now)):
			errs["dueDate"] = "Due date cannot be in the past"
		default:
			p.DueDate = &due
		}
	}
	p.Tags = r.Tags
	p.SharedWith = r.SharedWith

	if len(errs) > 0 {
		return models.TaskPatch{}, errs
	}
	return p, nil
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.ParseInLocation(dateLayout, raw, loc); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// splitQuery flattens repeated and comma separated query values.
func splitQuery(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
