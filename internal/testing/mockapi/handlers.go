package mockapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thinkpad-online/notes/internal/models"
)

func (s *Server) postSignup(c *gin.Context) {
	var request models.SignupRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if len(request.Username) == 0 || len(request.Email) == 0 || len(request.Password) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "All fields are required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[strings.ToLower(request.Email)]; exists {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
		return
	}

	s.addUserLocked(request.Username, request.Email, request.Password)
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

func (s *Server) postLogin(c *gin.Context) {
	var request models.LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, exists := s.accounts[strings.ToLower(request.Email)]
	if !exists || acct.password != request.Password {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{
		Message: "Login successful",
		User:    acct.user,
		Token:   s.issueTokenLocked(acct.user.ID),
	})
}

func (s *Server) getNotes(c *gin.Context) {
	userID := c.GetString("userID")

	s.mu.Lock()
	defer s.mu.Unlock()

	notes := []models.Note{}
	for _, note := range s.notes {
		if note.Owner.ID == userID {
			notes = append(notes, note)
		}
	}
	c.JSON(http.StatusOK, notes)
}

// getPublicNotes embeds the author the way the real feed does.
func (s *Server) getPublicNotes(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	usernames := make(map[string]string, len(s.accounts))
	for _, acct := range s.accounts {
		usernames[acct.user.ID] = acct.user.Username
	}

	notes := []gin.H{}
	for _, note := range s.notes {
		if !note.IsPublic {
			continue
		}
		var owner any
		if username, ok := usernames[note.Owner.ID]; ok {
			owner = gin.H{"_id": note.Owner.ID, "username": username}
		}
		notes = append(notes, gin.H{
			"_id":       note.ID,
			"title":     note.Title,
			"content":   note.Content,
			"isPublic":  note.IsPublic,
			"user":      owner,
			"createdAt": note.CreatedAt,
			"updatedAt": note.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, notes)
}

func (s *Server) postNote(c *gin.Context) {
	var input models.NoteInput
	if err := c.ShouldBindJSON(&input); err != nil || len(input.Title) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Title is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c.JSON(http.StatusCreated, s.addNoteLocked(c.GetString("userID"), input))
}

func (s *Server) putNote(c *gin.Context) {
	var input models.NoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.findOwnedLocked(c.Param("id"), c.GetString("userID"))
	if index < 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Note not found"})
		return
	}

	s.clock = s.clock.Add(time.Minute)
	note := &s.notes[index]
	note.Title = input.Title
	note.Content = input.Content
	note.IsPublic = input.IsPublic
	note.UpdatedAt = s.clock

	c.JSON(http.StatusOK, *note)
}

func (s *Server) deleteNote(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.findOwnedLocked(c.Param("id"), c.GetString("userID"))
	if index < 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Note not found"})
		return
	}

	s.notes = append(s.notes[:index], s.notes[index+1:]...)
	c.Status(http.StatusNoContent)
}

func (s *Server) findOwnedLocked(id, userID string) int {
	for i, note := range s.notes {
		if note.ID == id && note.Owner.ID == userID {
			return i
		}
	}
	return -1
}
