package client

import (
	"context"
	"net/http"
	"sync"

	"github.com/caelisco/plenoptiform/form"
	"github.com/caelisco/plenoptiform/options"
	"github.com/caelisco/plenoptiform/response"
)

// Client is a reusable HTTP client for form submissions.
type Client struct {
	client    *http.Client        // HTTP client used to make requests.
	global    *options.Option     // Global options applied to all requests.
	mu        sync.Mutex          // Guards responses.
	responses []response.Response // Store responses for reference.
}

// New returns a reusable Client.
// It is possible to include a global Option which will be used on all subsequent requests.
func New(opts ...*options.Option) *Client {
	return NewCustom(&http.Client{}, opts...)
}

// NewCustom returns a reusable client with a custom defined *http.Client
// This is useful in scenarios where you want to change any configurations for the http.Client
func NewCustom(hc *http.Client, opts ...*options.Option) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		client: hc,
		global: options.New(opts...),
	}
}

// GetGlobalOptions returns a copy of the global options of the client.
func (c *Client) GetGlobalOptions() *options.Option {
	return c.global.Clone()
}

// UpdateGlobalOptions replaces the global options of the client.
func (c *Client) UpdateGlobalOptions(opt *options.Option) {
	c.global = options.New(opt)
}

// Clear clears any Responses that have already been made and kept.
func (c *Client) Clear() {
	c.mu.Lock()
	c.responses = nil
	c.mu.Unlock()
}

// doRequest merges the request options over a copy of the global options,
// sets the given headers and performs the request.
func (c *Client) doRequest(ctx context.Context, method string, url string, payload any, header http.Header, opts ...*options.Option) (response.Response, error) {
	opt := c.global.Clone()
	if len(opts) > 0 && opts[0] != nil {
		opt.Merge(opts[0])
	}
	for k, v := range header {
		opt.Header[k] = v
	}

	resp, err := doRequest(ctx, c.client, method, url, payload, opt)

	c.mu.Lock()
	c.responses = append(c.responses, resp)
	c.mu.Unlock()
	return resp, err
}

// Post performs an HTTP POST to the specified URL with the given payload.
func (c *Client) Post(ctx context.Context, url string, payload any, opts ...*options.Option) (response.Response, error) {
	return c.doRequest(ctx, http.MethodPost, url, payload, nil, opts...)
}

// PostForm performs an HTTP POST with an x-www-form-urlencoded body, keeping the payload's key order.
func (c *Client) PostForm(ctx context.Context, url string, payload form.Payload, opts ...*options.Option) (response.Response, error) {
	return c.doRequest(ctx, http.MethodPost, url, payload, http.Header{ContentType: {FormEncoded}}, opts...)
}

// Responses returns a copy of the responses made by this Client, in completion order.
func (c *Client) Responses() []response.Response {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]response.Response(nil), c.responses...)
}
