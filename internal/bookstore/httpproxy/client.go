// Package httpproxy implements bookstore.StockManager and bookstore.BookStore against a
// remote bookstore speaking the JSON/HTTP contract served by package server.
//
// Every failure is reported as a *bookstore.Error so the workload counts it as a failed
// interaction. Rejections keep the server's code; network failures, unexpected statuses
// and malformed responses use bookstore.CodeTransport. Context cancellation is returned
// unchanged.
package httpproxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/certainbookstore/bookbench/internal/bookstore"
	"github.com/certainbookstore/bookbench/internal/tracing"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 16 << 20

// Client is a bookstore.Service backed by HTTP. It is safe for concurrent use.
type Client struct {
	base      string
	http      *http.Client
	propagate bool
}

var _ bookstore.Service = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.http.Timeout = d }
}

// WithTracePropagation injects W3C trace context headers into every request.
func WithTracePropagation(enabled bool) Option {
	return func(cl *Client) { cl.propagate = enabled }
}

// New returns a client for the bookstore at baseURL, e.g. "http://localhost:8081".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("httpproxy: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("httpproxy: base url %q must use http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("httpproxy: base url %q has no host", baseURL)
	}

	c := &Client{
		base: strings.TrimRight(u.String(), "/"),
		http: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConnsPerHost: 64,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

func (c *Client) GetBooks(ctx context.Context) ([]bookstore.StockBook, error) {
	body, err := c.do(ctx, http.MethodGet, "/stock/books", nil)
	if err != nil {
		return nil, err
	}
	var books []bookstore.StockBook
	if err := unmarshalField(body, "books", &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (c *Client) AddBooks(ctx context.Context, books []bookstore.StockBook) error {
	if books == nil {
		books = []bookstore.StockBook{}
	}
	_, err := c.do(ctx, http.MethodPost, "/stock/books", map[string]interface{}{"books": books})
	return err
}

func (c *Client) AddCopies(ctx context.Context, copies []bookstore.BookCopy) error {
	if copies == nil {
		copies = []bookstore.BookCopy{}
	}
	_, err := c.do(ctx, http.MethodPost, "/stock/copies", map[string]interface{}{"copies": copies})
	return err
}

func (c *Client) GetEditorPicks(ctx context.Context, n int) ([]bookstore.Book, error) {
	body, err := c.do(ctx, http.MethodGet, "/editor-picks?n="+strconv.Itoa(n), nil)
	if err != nil {
		return nil, err
	}
	var books []bookstore.Book
	if err := unmarshalField(body, "books", &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (c *Client) BuyBooks(ctx context.Context, order []bookstore.BookCopy) error {
	if order == nil {
		order = []bookstore.BookCopy{}
	}
	_, err := c.do(ctx, http.MethodPost, "/buy", map[string]interface{}{"copies": order})
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, bookstore.Errorf(bookstore.CodeInvalidRequest, "encode %s %s: %v", method, path, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reqBody)
	if err != nil {
		return nil, &bookstore.Error{Code: bookstore.CodeTransport, Message: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.propagate {
		tracing.InjectHTTPHeaders(ctx, req.Header)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &bookstore.Error{Code: bookstore.CodeTransport, Message: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &bookstore.Error{Code: bookstore.CodeTransport, Message: "read response", Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	return nil, decodeError(resp.StatusCode, body)
}

// decodeError turns a non-2xx response into a *bookstore.Error, keeping the server's
// code when the body carries an error envelope.
func decodeError(status int, body []byte) *bookstore.Error {
	if gjson.ValidBytes(body) {
		envelope := gjson.GetBytes(body, "error")
		if code := envelope.Get("code").String(); code != "" {
			return &bookstore.Error{Code: bookstore.Code(code), Message: envelope.Get("message").String()}
		}
	}
	snippet := strings.TrimSpace(string(body))
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}
	return bookstore.Errorf(bookstore.CodeTransport, "unexpected status %d: %s", status, snippet)
}

func unmarshalField(body []byte, field string, dst interface{}) error {
	if !gjson.ValidBytes(body) {
		return bookstore.Errorf(bookstore.CodeTransport, "malformed response body")
	}
	raw := gjson.GetBytes(body, field)
	if !raw.Exists() || raw.Type == gjson.Null {
		return nil
	}
	if !raw.IsArray() {
		return bookstore.Errorf(bookstore.CodeTransport, "response field %q is not an array", field)
	}
	if err := json.Unmarshal([]byte(raw.Raw), dst); err != nil {
		return &bookstore.Error{Code: bookstore.CodeTransport, Message: "decode " + field, Err: err}
	}
	return nil
}
