// Package mockapi is an in-memory fake of the notes REST API for tests.
package mockapi

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thinkpad-online/notes/internal/common"
	"github.com/thinkpad-online/notes/internal/models"
)

type account struct {
	user     models.User
	password string
}

type Server struct {
	mu       sync.Mutex
	accounts map[string]*account // by email
	tokens   map[string]string   // token to user id
	notes    []models.Note
	clock    time.Time
	headers  []http.Header
	failures map[string]int
}

func New() *Server {
	return &Server{
		accounts: make(map[string]*account),
		tokens:   make(map[string]string),
		failures: make(map[string]int),
		clock:    time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

// Handler returns the gin engine serving the API routes.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(s.record)

	auth := router.Group("/api/auth")
	auth.POST("/signup", s.postSignup)
	auth.POST("/login", s.postLogin)

	notes := router.Group("/api/notes")
	notes.GET("/public", s.getPublicNotes)

	owned := notes.Group("", s.requireToken)
	owned.GET("", s.getNotes)
	owned.POST("", s.postNote)
	owned.PUT("/:id", s.putNote)
	owned.DELETE("/:id", s.deleteNote)

	return router
}

// AddUser registers an account directly and returns its record.
func (s *Server) AddUser(username, email, password string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(username, email, password)
}

func (s *Server) addUserLocked(username, email, password string) models.User {
	user := models.User{
		ID:       uuid.NewString(),
		Username: username,
		Email:    email,
	}
	s.accounts[strings.ToLower(email)] = &account{user: user, password: password}
	return user
}

// IssueToken returns a valid bearer token for the user id.
func (s *Server) IssueToken(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueTokenLocked(userID)
}

func (s *Server) issueTokenLocked(userID string) string {
	token, err := common.GenerateSecureRandomString(32)
	if err != nil {
		token = uuid.NewString()
	}
	s.tokens[token] = userID
	return token
}

// AddNote stores a note owned by userID. Each note is created one minute
// after the previous one.
func (s *Server) AddNote(userID string, input models.NoteInput) models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addNoteLocked(userID, input)
}

func (s *Server) addNoteLocked(userID string, input models.NoteInput) models.Note {
	s.clock = s.clock.Add(time.Minute)
	note := models.Note{
		ID:        uuid.NewString(),
		Title:     input.Title,
		Content:   input.Content,
		IsPublic:  input.IsPublic,
		Owner:     models.NoteOwner{ID: userID},
		CreatedAt: s.clock,
		UpdatedAt: s.clock,
	}
	s.notes = append(s.notes, note)
	return note
}

// Fail makes every request to path answer with status.
func (s *Server) Fail(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = status
}

// Headers returns the headers of every request served so far.
func (s *Server) Headers() []http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]http.Header(nil), s.headers...)
}

func (s *Server) record(c *gin.Context) {
	s.mu.Lock()
	s.headers = append(s.headers, c.Request.Header.Clone())
	status, failing := s.failures[c.Request.URL.Path]
	s.mu.Unlock()

	if failing {
		c.AbortWithStatusJSON(status, gin.H{"message": http.StatusText(status)})
		return
	}
	c.Next()
}

func (s *Server) requireToken(c *gin.Context) {
	token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")

	s.mu.Lock()
	userID, ok := s.tokens[token]
	s.mu.Unlock()

	if !found || !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}
	c.Set("userID", userID)
	c.Next()
}
