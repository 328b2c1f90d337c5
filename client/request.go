package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Request is the pipeline's in-flight request record: method, path, headers
// and the body as bytes, so the one allowed post-refresh replay can rebuild
// a byte-identical request.
type Request struct {
	Method      string
	Path        string // endpoint path starting with "/", relative to the base URL
	Query       url.Values
	Header      http.Header
	ContentType string
	Body        []byte
}

// Response is a completed 2xx response with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// DecodeJSON unmarshals the response body into v.
func (r *Response) DecodeJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// Get issues a GET request through the pipeline.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// PostJSON issues a POST with a JSON-encoded body. A nil payload posts an
// empty body.
func (c *Client) PostJSON(ctx context.Context, path string, payload any) (*Response, error) {
	req := &Request{Method: http.MethodPost, Path: path}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		req.Body = body
		req.ContentType = "application/json"
	}
	return c.Do(ctx, req)
}

// PostMultipart issues a POST with a multipart/form-data body built from
// fields and optional file parts.
func (c *Client) PostMultipart(ctx context.Context, path string, fields []FormField, files ...FilePart) (*Response, error) {
	body, contentType, err := buildMultipart(fields, files...)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, &Request{
		Method:      http.MethodPost,
		Path:        path,
		ContentType: contentType,
		Body:        body,
	})
}

// PutJSON issues a PUT with a JSON-encoded body.
func (c *Client) PutJSON(ctx context.Context, path string, payload any) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return c.Do(ctx, &Request{
		Method:      http.MethodPut,
		Path:        path,
		ContentType: "application/json",
		Body:        body,
	})
}

// Delete issues a DELETE request through the pipeline.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// build materializes the Request into an http.Request carrying the given
// bearer token. Called once per attempt so a replay gets a fresh body reader
// and the refreshed token.
func (c *Client) build(ctx context.Context, req *Request, bearer string) (*http.Request, error) {
	endpoint := c.baseURL + req.Path
	if len(req.Query) > 0 {
		endpoint += "?" + req.Query.Encode()
	}

	var body *bytes.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	} else {
		body = bytes.NewReader(nil)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	for name, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	if bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+bearer)
	}
	return httpReq, nil
}
