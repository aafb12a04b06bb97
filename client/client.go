// Package client is the HTTP transport the roster and board models talk to.
// It speaks JSON and multipart over fasthttp and turns network failures and
// non-2xx replies into *TransportError.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

// ErrUnexpectedResponse marks a 2xx reply whose body or status is not the
// shape the endpoint promises.
var ErrUnexpectedResponse = errors.New("unexpected response format")

// TransportError is a request that failed on the wire or got a non-2xx reply.
type TransportError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Response is a completed 2xx exchange.
type Response struct {
	StatusCode int
	Body       []byte
}

type Client struct {
	baseURL string
	token   string
	http    *fasthttp.Client
	log     logrus.FieldLogger
}

type Option func(*Client)

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithDial replaces the dialer, e.g. with an in-memory listener.
func WithDial(dial fasthttp.DialFunc) Option {
	return func(c *Client) { c.http.Dial = dial }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) { c.log = log }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &fasthttp.Client{
			Name:                     "taskctl",
			MaxIdleConnDuration:      30 * time.Second,
		},
		log: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetToken swaps the bearer credential, e.g. after login or logout.
func (c *Client) SetToken(token string) {
	c.token = token
}

// UploadURL is where the server serves an uploaded attachment back.
func (c *Client) UploadURL(filename string) string {
	if filename == "" {
		return ""
	}
	return c.baseURL + "/uploads/" + url.PathEscape(filename)
}

// Do sends one request. A context deadline bounds the exchange; without one
// the call waits as long as the server takes.
func (c *Client) Do(ctx context.Context, method, path, contentType string, body []byte) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if contentType != "" {
		req.Header.SetContentType(contentType)
	}
	if c.token != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+c.token)
	}
	if body != nil {
		req.SetBody(body)
	}

	start := time.Now()
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.http.DoDeadline(req, resp, deadline)
	} else {
		err = c.http.Do(req, resp)
	}

	entry := c.log.WithFields(logrus.Fields{
		"method":  method,
		"path":    path,
		"latency": time.Since(start).String(),
	})
	if err != nil {
		entry.WithError(err).Debug("api request failed")
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}

	status := resp.StatusCode()
	entry.WithField("status", status).Debug("api request")

	out := &Response{
		StatusCode: status,
		Body:       append([]byte(nil), resp.Body()...),
	}
	if status < fasthttp.StatusOK || status >= fasthttp.StatusMultipleChoices {
		return nil, &TransportError{
			Method:     method,
			Path:       path,
			StatusCode: status,
			Message:    errorMessage(out.Body),
		}
	}
	return out, nil
}

// GetJSON issues a GET and decodes the reply into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) (*Response, error) {
	resp, err := c.Do(ctx, fasthttp.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}
	return resp, decode(resp, out)
}

// SendJSON issues method with in encoded as JSON. A nil in sends no body.
func (c *Client) SendJSON(ctx context.Context, method, path string, in, out any) (*Response, error) {
	var (
		body        []byte
		contentType string
	)
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		contentType = "application/json"
	}

	resp, err := c.Do(ctx, method, path, contentType, body)
	if err != nil {
		return nil, err
	}
	return resp, decode(resp, out)
}

// SendMultipart issues method with form encoded as multipart/form-data.
func (c *Client) SendMultipart(ctx context.Context, method, path string, form *Form, out any) (*Response, error) {
	contentType, body, err := form.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
	}

	resp, err := c.Do(ctx, method, path, contentType, body)
	if err != nil {
		return nil, err
	}
	return resp, decode(resp, out)
}

func decode(resp *Response, out any) error {
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	return nil
}

// errorMessage pulls a human-readable reason out of an error reply.
func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}
