package api

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"

	"portal-chat/internal/config"
	"portal-chat/internal/models"
)

// Client talks to the portal's request/response endpoints. The push
// channel is handled elsewhere; everything here is plain HTTP.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	http    *fasthttp.Client
}

// ReadInfo reports who has read a message and when.
type ReadInfo struct {
	MessageID string       `json:"message_id"`
	Readers   []ReadRecord `json:"readers"`
}

type ReadRecord struct {
	UserID   string    `json:"user_id"`
	UserName string    `json:"user_name"`
	ReadAt   time.Time `json:"read_at"`
}

// NewClient creates an API client bound to the configured portal server.
func NewClient(cfg *config.ServerConfig, sessionToken string) *Client {
	return &Client{
		baseURL: cfg.APIBaseURL,
		token:   sessionToken,
		timeout: cfg.APITimeout,
		http:    &fasthttp.Client{},
	}
}

// do performs one request and decodes a 2xx JSON body into out (out may
// be nil for endpoints whose body is irrelevant).
func (c *Client) do(method, path string, out interface{}) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	if err := c.http.DoTimeout(req, resp, c.timeout); err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		return fmt.Errorf("request %s %s: unexpected status %d", method, path, status)
	}

	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// FetchRooms returns the full room directory for the session user.
func (c *Client) FetchRooms() ([]models.Room, error) {
	var rooms []models.Room
	if err := c.do(fasthttp.MethodGet, "/chat/rooms", &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// FetchUnreadTotal returns the unread message count across all rooms.
func (c *Client) FetchUnreadTotal() (int, error) {
	var body struct {
		Total int `json:"total"`
	}
	if err := c.do(fasthttp.MethodGet, "/chat/unread-total", &body); err != nil {
		return 0, err
	}
	return body.Total, nil
}

// FetchRoomMessages returns the stored timeline for a room, oldest first.
func (c *Client) FetchRoomMessages(roomID string) ([]models.Message, error) {
	var msgs []models.Message
	if err := c.do(fasthttp.MethodGet, "/chat/rooms/"+roomID+"/messages", &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// MarkRoomRead tells the server the session user has read a room.
func (c *Client) MarkRoomRead(roomID string) error {
	return c.do(fasthttp.MethodPost, "/chat/rooms/"+roomID+"/read", nil)
}

// DeleteMessage deletes one message with the given scope.
func (c *Client) DeleteMessage(messageID string, scope models.DeleteScope) error {
	return c.do(fasthttp.MethodDelete, "/chat/messages/"+messageID+"?scope="+string(scope), nil)
}

// FetchReadInfo returns per-reader read timestamps for a message.
func (c *Client) FetchReadInfo(messageID string) (*ReadInfo, error) {
	info := &ReadInfo{}
	if err := c.do(fasthttp.MethodGet, "/chat/messages/"+messageID+"/read-info", info); err != nil {
		return nil, err
	}
	return info, nil
}
