package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/tasks"
)

type pageRequest struct {
	Page int `json:"page"`
}

// handleBoardView renders the active page with the current criteria.
func (s *Server) handleBoardView(c *gin.Context) {
	s.respondBoard(c)
}

// handleSetFilters merges the supplied criteria; the board returns to page 1.
func (s *Server) handleSetFilters(c *gin.Context) {
	var patch tasks.FilterPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	s.deps.Board.SetFilters(patch)
	s.respondBoard(c)
}

// handleClearFilters drops every active filter.
func (s *Server) handleClearFilters(c *gin.Context) {
	s.deps.Board.ClearFilters()
	s.respondBoard(c)
}

// handleSetPage switches the visible page.
func (s *Server) handleSetPage(c *gin.Context) {
	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if err := s.deps.Board.SetPage(req.Page); err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	s.respondBoard(c)
}

func (s *Server) respondBoard(c *gin.Context) {
	view, err := s.deps.Board.View(s.deps.Now())
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	criteria := s.deps.Board.Criteria()
	respondSuccess(c, http.StatusOK, gin.H{
		"tasks":            view.Tasks,
		"pagination":       view.Pagination,
		"filters":          criteria,
		"hasActiveFilters": !criteria.IsDefault(),
	})
}
