package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/thinkpad-online/notes/internal/common"
	"github.com/thinkpad-online/notes/internal/models"
)

// TokenSource returns the bearer credential for authenticated calls. An empty
// string means nobody is logged in.
type TokenSource func() string

type Client struct {
	client *resty.Client
	token  TokenSource
}

// NewClient creates a client for the API at endpoint. token may be nil for
// clients that only use the public endpoints.
func NewClient(endpoint string, timeout time.Duration, token TokenSource) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(endpoint, "/")).
		SetHeader("X-Client", common.GetClientIdentifier().String()).
		SetHeader("User-Agent", common.UserAgent()).
		SetHeader("Accept", "application/json")

	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	if token == nil {
		token = func() string { return "" }
	}

	return &Client{
		client: client,
		token:  token,
	}
}

func (c *Client) Signup(ctx context.Context, request models.SignupRequest) (*models.MessageResponse, error) {
	var response models.MessageResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", false, request, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func (c *Client) Login(ctx context.Context, request models.LoginRequest) (*models.AuthResponse, error) {
	var response models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", false, request, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// ListNotes returns the notes of the logged in user.
func (c *Client) ListNotes(ctx context.Context) ([]models.Note, error) {
	var notes []models.Note
	if err := c.do(ctx, http.MethodGet, "/api/notes", true, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) PublicNotes(ctx context.Context) ([]models.Note, error) {
	var notes []models.Note
	if err := c.do(ctx, http.MethodGet, "/api/notes/public", false, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) CreateNote(ctx context.Context, input models.NoteInput) (*models.Note, error) {
	var note models.Note
	if err := c.do(ctx, http.MethodPost, "/api/notes", true, input, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) UpdateNote(ctx context.Context, id string, input models.NoteInput) (*models.Note, error) {
	var note models.Note
	if err := c.do(ctx, http.MethodPut, notePath(id), true, input, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, notePath(id), true, nil, nil)
}

func notePath(id string) string {
	return fmt.Sprintf("/api/notes/%s", url.PathEscape(id))
}

func (c *Client) do(ctx context.Context, method, path string, authenticated bool, body, result any) error {
	req := c.client.R().SetContext(ctx)

	if authenticated {
		token := c.token()
		if len(token) == 0 {
			return ErrNoCredential
		}
		req.SetAuthToken(token)
	}

	if body != nil {
		req.SetBody(body)
	}

	logrus.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
	}).Debugln("Sending API request")

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("failed to send %s %s: %w", method, path, err)
	}

	if resp.IsError() {
		apiErr := &Error{Status: resp.StatusCode()}

		var message models.MessageResponse
		if err := json.Unmarshal(resp.Body(), &message); err == nil {
			apiErr.Message = message.Message
		}

		logrus.WithFields(logrus.Fields{
			"method": method,
			"path":   path,
			"status": apiErr.Status,
		}).Debugln("API request failed")

		return apiErr
	}

	if result == nil || resp.StatusCode() == http.StatusNoContent || len(resp.Body()) == 0 {
		return nil
	}

	if err := json.Unmarshal(resp.Body(), result); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}

	return nil
}
