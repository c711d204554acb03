package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleCurrentUser returns the signed in user.
func (s *Server) handleCurrentUser(c *gin.Context) {
	user, ok := s.deps.Sessions.Current()
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"user": user})
}

// handleLogin signs in with e-mail and password.
func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := s.deps.Sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"user": user})
}

// handleLoginGoogle signs in with the mock Google account.
func (s *Server) handleLoginGoogle(c *gin.Context) {
	user, err := s.deps.Sessions.LoginWithGoogle(c.Request.Context())
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"user": user})
}

// handleLogout ends the session.
func (s *Server) handleLogout(c *gin.Context) {
	if err := s.deps.Sessions.Logout(c.Request.Context()); err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "signed out"})
}
