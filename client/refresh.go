package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/novademy/novademy-go/session"
	"github.com/novademy/novademy-go/token"
)

// ErrNoRefreshToken is returned when a refresh is attempted with no refresh
// token stored; the session is irrecoverable and gets cleared.
var ErrNoRefreshToken = errors.New("no refresh token stored")

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type pendingRefresh struct {
	done chan struct{}
	err  error
}

// refreshSession coalesces concurrent refresh attempts into a single
// in-flight call: the first 401 handler performs the refresh, later ones
// wait on its outcome. This keeps concurrent expiries from racing each other
// over the single-use refresh token.
func (c *Client) refreshSession(ctx context.Context) error {
	c.refreshMu.Lock()
	if p := c.pending; p != nil {
		c.refreshMu.Unlock()
		select {
		case <-p.done:
			return p.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p := &pendingRefresh{done: make(chan struct{})}
	c.pending = p
	c.refreshMu.Unlock()

	p.err = c.doRefresh(ctx)

	c.refreshMu.Lock()
	c.pending = nil
	c.refreshMu.Unlock()
	close(p.done)
	return p.err
}

// doRefresh exchanges the stored refresh token for a new token pair and
// persists both, plus the user id decoded from the new access token. The
// call goes directly to the underlying http.Client, never back through the
// pipeline, so a 401 from the refresh endpoint itself cannot recurse.
func (c *Client) doRefresh(ctx context.Context) error {
	refreshToken, err := c.store.Get(session.KeyRefreshToken)
	if err != nil {
		return fmt.Errorf("read refresh token: %w", err)
	}
	if refreshToken == "" {
		return ErrNoRefreshToken
	}

	payload, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return fmt.Errorf("encode refresh request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/refresh", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build refresh request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return classifyTransport(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("refresh rejected: status %d", resp.StatusCode)
	}

	var tokens refreshResponse
	if err := json.Unmarshal(body, &tokens); err != nil {
		return fmt.Errorf("decode refresh response: %w", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		return errors.New("refresh response missing tokens")
	}

	if err := c.StoreTokens(tokens.AccessToken, tokens.RefreshToken); err != nil {
		return err
	}
	c.logger.Debug().Msg("access token refreshed")
	return nil
}

// StoreTokens persists a new token pair, replacing the old values, and
// records the user id decoded (unverified) from the access token. Used by
// the refresh flow and by the auth service on login.
func (c *Client) StoreTokens(accessToken, refreshToken string) error {
	if err := c.store.Set(session.KeyAccessToken, accessToken); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	if err := c.store.Set(session.KeyRefreshToken, refreshToken); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}

	claims, err := token.Decode(accessToken)
	if err != nil {
		// Convenience extraction only; an undecodable user id never fails
		// the login or refresh that produced valid tokens.
		c.logger.Warn().Err(err).Msg("could not decode user id from access token")
		return nil
	}
	if id := claims.UserID(); id != "" {
		if err := c.store.Set(session.KeyUserID, id); err != nil {
			return fmt.Errorf("store user id: %w", err)
		}
	}
	return nil
}

// ForceRefresh runs a refresh cycle outside the 401 path, e.g. for an
// explicit auth.Service.Refresh call. Failures clear the session just like
// an in-pipeline refresh failure.
func (c *Client) ForceRefresh(ctx context.Context) error {
	if err := c.refreshSession(ctx); err != nil {
		c.clearAfterAuthFailure()
		return err
	}
	return nil
}
