package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"article-catalog/internal/model"

	"github.com/go-resty/resty/v2"
)

var (
	ErrNotFound = errors.New("article not found")
	ErrConflict = errors.New("article already exists")
)

// APIError is a non-2xx answer from the article service.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("article api: %d %s %v", e.StatusCode, e.Message, e.Fields)
	}
	return fmt.Sprintf("article api: %d %s", e.StatusCode, e.Message)
}

// Is lets errors.Is match 404 and 409 against the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	}
	return false
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// Client talks to the /articles HTTP surface.
type Client struct {
	rc *resty.Client
}

type Option func(*resty.Client)

// WithTimeout sets the per-request timeout (default 10s).
func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) { c.SetTimeout(d) }
}

func New(baseURL string, opts ...Option) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10*time.Second).
		SetHeader("Accept", "application/json")
	for _, opt := range opts {
		opt(rc)
	}
	return &Client{rc: rc}
}

func (c *Client) List(ctx context.Context) ([]model.Article, error) {
	var out []model.Article
	resp, err := c.rc.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&errorBody{}).
		Get("/articles/all")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Article{}
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, code string) (*model.Article, error) {
	var out model.Article
	resp, err := c.rc.R().
		SetContext(ctx).
		SetPathParam("code", code).
		SetResult(&out).
		SetError(&errorBody{}).
		Get("/articles/{code}")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Create(ctx context.Context, article model.Article) (*model.Article, error) {
	var out model.Article
	resp, err := c.rc.R().
		SetContext(ctx).
		SetBody(article).
		SetResult(&out).
		SetError(&errorBody{}).
		Post("/articles/create")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the article stored under code; article.Code is ignored by the server.
func (c *Client) Update(ctx context.Context, code string, article model.Article) (*model.Article, error) {
	var out model.Article
	resp, err := c.rc.R().
		SetContext(ctx).
		SetPathParam("code", code).
		SetBody(article).
		SetResult(&out).
		SetError(&errorBody{}).
		Put("/articles/update/{code}")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Delete(ctx context.Context, code string) error {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetPathParam("code", code).
		SetError(&errorBody{}).
		Delete("/articles/delete/{code}")
	return check(resp, err)
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("article api request: %w", err)
	}
	if !resp.IsError() {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode(), Message: resp.Status()}
	if body, ok := resp.Error().(*errorBody); ok && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Fields = body.Fields
	}
	return apiErr
}
