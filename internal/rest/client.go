package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/timebank/chat-client/internal/domain"

	"github.com/google/uuid"
)

const headerRequestID = "X-Request-ID"

// Client — тонкая обёртка над REST-границей платформы. Ошибки транспорта и
// не-2xx статусы возвращаются caller-у как есть, без повторов.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpc:   http.DefaultClient,
	}
}

type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Status, e.Body)
}

func (c *Client) do(ctx context.Context, method, path string, query map[string]string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	q := req.URL.Query()
	for k, v := range query {
		q.Set(k, v)
	}
	req.URL.RawQuery = q.Encode()

	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<12))
		slog.Warn("rest call failed",
			"method", method, "path", path, "status", resp.StatusCode)
		return &apiError{Status: resp.StatusCode, Body: string(data)}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// GET /messages/private/{userId}/?offset&limit
func (c *Client) PrivateMessages(ctx context.Context, otherUserID int64, offset, limit int) ([]PrivateMessageItem, error) {
	var items []PrivateMessageItem
	err := c.do(ctx, http.MethodGet,
		fmt.Sprintf("/messages/private/%d/", otherUserID),
		pageQuery(offset, limit), nil, &items)
	return items, err
}

// GET /messages/group/{groupId}/?offset&limit
func (c *Client) GroupMessages(ctx context.Context, groupID int64, offset, limit int) ([]GroupMessageItem, error) {
	var items []GroupMessageItem
	err := c.do(ctx, http.MethodGet,
		fmt.Sprintf("/messages/group/%d/", groupID),
		pageQuery(offset, limit), nil, &items)
	return items, err
}

// POST /messages/send/
// Для группового чата отправка идёт по сокету, REST-путь здесь в первую
// очередь приватный; общие поля ответа (id, message, created_at) декодятся
// в обоих случаях.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (*PrivateMessageItem, error) {
	if req.Message == "" {
		return nil, domain.ErrEmptyMessage
	}
	if req.IsGroupChat && req.GroupID == nil {
		return nil, domain.ErrInvalidTarget
	}
	if !req.IsGroupChat && req.OtherUserID == nil {
		return nil, domain.ErrInvalidTarget
	}
	if req.MessageType == "" {
		req.MessageType = domain.KindText
	}

	var created PrivateMessageItem
	if err := c.do(ctx, http.MethodPost, "/messages/send/", nil, req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// GET /messages/private/
func (c *Client) PrivateConversations(ctx context.Context) ([]domain.Conversation, error) {
	var items []domain.Conversation
	err := c.do(ctx, http.MethodGet, "/messages/private/", nil, nil, &items)
	return items, err
}

// GET /users/{id}/
func (c *Client) User(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d/", id), nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GET /groups/{id}/
func (c *Client) Group(ctx context.Context, id int64) (*domain.Group, error) {
	var g domain.Group
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/groups/%d/", id), nil, nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func pageQuery(offset, limit int) map[string]string {
	return map[string]string{
		"offset": strconv.Itoa(offset),
		"limit":  strconv.Itoa(limit),
	}
}
