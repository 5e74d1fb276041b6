package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/manjeet0006/fullstack-chat/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type (
	// Client talks to the chat API over one cookie-holding HTTP client,
	// so the session survives across calls and the websocket dial.
	Client struct {
		host string
		http *http.Client
	}

	// APIError carries the server's {"message": ...} body for a failed
	// call.
	APIError struct {
		Status  int    `json:"-"`
		Message string `json:"message"`
	}

	signupInput struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	loginInput struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
)

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

// UserMessage is the human-readable message to surface in the UI.
func (e *APIError) UserMessage() string {
	return e.Message
}

func NewClient(host string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		host: host,
		http: &http.Client{Jar: jar},
	}, nil
}

// Jar exposes the session cookies for the websocket dial.
func (c *Client) Jar() http.CookieJar {
	return c.http.Jar
}

func (c *Client) Signup(ctx context.Context, fullName, email, password string) (*model.User, error) {
	var user model.User
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/signup",
		signupInput{FullName: fullName, Email: email, Password: password}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*model.User, error) {
	var user model.User
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/login",
		loginInput{Email: email, Password: password}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

func (c *Client) Check(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/check", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetUsers(ctx context.Context) ([]*model.User, error) {
	var users []*model.User
	if err := c.doJSON(ctx, http.MethodGet, "/api/message/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) GetMessages(ctx context.Context, partnerID primitive.ObjectID) ([]*model.Message, error) {
	var messages []*model.Message
	path := fmt.Sprintf("/api/message/%s", partnerID.Hex())
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (c *Client) SendMessage(ctx context.Context, partnerID primitive.ObjectID, input model.SendMessageInput) (*model.Message, error) {
	var msg model.Message
	path := fmt.Sprintf("/api/message/send/%s", partnerID.Hex())
	if err := c.doJSON(ctx, http.MethodPost, path, input, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// WebsocketURL is the ws:// endpoint matching the client's host.
func (c *Client) WebsocketURL() string {
	u := url.URL{Scheme: "ws", Host: c.host, Path: "/ws"}
	return u.String()
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	u := url.URL{Scheme: "http", Host: c.host, Path: path}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	defer io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			apiErr.Message = ""
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
