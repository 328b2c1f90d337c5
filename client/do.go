package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/novademy/novademy-go/apierr"
)

// Do sends the request through the pipeline.
//
// Outbound, the stored access token (if any) is attached as a bearer header;
// absence is not an error at this layer; the request proceeds
// unauthenticated and the server decides. Inbound, a 2xx response passes
// through unchanged. A 401 triggers exactly one refresh-and-replay cycle;
// a 401 that survives it surfaces as apierr.AuthExpiredError with the local
// session cleared. Every other failure is classified into the apierr
// taxonomy. Within one logical request the steps are strictly sequential:
// attach token, send, on 401 refresh, replay.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	bearer := c.accessToken()

	status, header, body, err := c.send(ctx, req, bearer)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		return c.refreshAndReplay(ctx, req, body)
	}
	return c.finish(req, status, header, body, bearer != "")
}

// refreshAndReplay handles the one allowed retry after a 401. If the refresh
// fails the session is cleared and the original 401 is surfaced; the
// pipeline never loops.
func (c *Client) refreshAndReplay(ctx context.Context, req *Request, originalBody []byte) (*Response, error) {
	if err := c.refreshSession(ctx); err != nil {
		c.logger.Warn().Err(err).Str("path", req.Path).Msg("token refresh failed; clearing session")
		c.clearAfterAuthFailure()
		return nil, &apierr.AuthExpiredError{Status: http.StatusUnauthorized, Body: originalBody}
	}

	bearer := c.accessToken()
	status, header, body, err := c.send(ctx, req, bearer)
	if err != nil {
		return nil, err
	}

	// A request that already used its retry is not retried again.
	if status == http.StatusUnauthorized {
		c.logger.Warn().Str("path", req.Path).Msg("replayed request rejected again; clearing session")
		c.clearAfterAuthFailure()
		return nil, &apierr.AuthExpiredError{Status: status, Body: body}
	}
	return c.finish(req, status, header, body, bearer != "")
}

// send performs one HTTP attempt and reads the full body. Transport-level
// failures are classified here; HTTP statuses are the caller's concern.
func (c *Client) send(ctx context.Context, req *Request, bearer string) (int, http.Header, []byte, error) {
	httpReq, err := c.build(ctx, req, bearer)
	if err != nil {
		return 0, nil, nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, classifyTransport(err)
	}
	return resp.StatusCode, resp.Header, body, nil
}

func (c *Client) finish(req *Request, status int, header http.Header, body []byte, hadToken bool) (*Response, error) {
	if status >= 200 && status < 300 {
		return &Response{StatusCode: status, Header: header, Body: body}, nil
	}
	c.logger.Debug().Int("status", status).Str("path", req.Path).Msg("api request failed")
	return nil, apierr.Classify(status, body, hadToken)
}

func (c *Client) clearAfterAuthFailure() {
	if err := c.ClearSession(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to clear session after auth failure")
	}
}

// classifyTransport maps errors where no usable response reached the client.
// Caller-driven cancellation passes through untouched; deadline overruns
// become TimeoutError; everything else is a NetworkError.
func classifyTransport(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &apierr.TimeoutError{Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return &apierr.TimeoutError{Err: err}
	}
	return &apierr.NetworkError{Err: err}
}
