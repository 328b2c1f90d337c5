package client_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/novademy/novademy-go/apierr"
	"github.com/novademy/novademy-go/client"
	"github.com/novademy/novademy-go/session"
	"github.com/novademy/novademy-go/session/storefakes"
)

type testConfig struct {
	baseURL string
	timeout time.Duration
}

func (c testConfig) GetBaseURL() string { return c.baseURL }

func (c testConfig) GetHTTPTimeout() time.Duration {
	if c.timeout == 0 {
		return 2 * time.Second
	}
	return c.timeout
}

func makeToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

func newClient(t *testing.T, baseURL string, store session.Store) *client.Client {
	t.Helper()
	c, err := client.New(testConfig{baseURL: baseURL}, store, client.WithHTTPClient(&http.Client{Timeout: 2 * time.Second}))
	require.NoError(t, err)
	return c
}

func writeTokens(w http.ResponseWriter, access, refresh string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"accessToken":  access,
		"refreshToken": refresh,
	})
}

func TestDo_AttachesStoredBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	store := storefakes.NewWithSession("the-access-token", "the-refresh-token", "user-1")
	c := newClient(t, server.URL, store)

	resp, err := c.Get(context.Background(), "/course", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Bearer the-access-token", gotAuth)
}

func TestDo_NoTokenProceedsUnauthenticated(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := newClient(t, server.URL, storefakes.New())

	_, err := c.Get(context.Background(), "/course", nil)
	require.NoError(t, err)
	require.Empty(t, gotAuth)
}

func TestDo_StoreReadFailureDegradesToUnauthenticated(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	store := storefakes.New()
	store.GetErr = context.DeadlineExceeded // any storage-medium error

	c := newClient(t, server.URL, store)

	_, err := c.Get(context.Background(), "/course", nil)
	require.NoError(t, err)
	require.Empty(t, gotAuth)
}

// Scenario: a request 401s, the stored refresh token is valid, and the
// refresh endpoint issues new tokens. The original request is replayed with
// the new access token and its result is what the caller sees; both new
// tokens are persisted.
func TestDo_RefreshAndReplayOn401(t *testing.T) {
	newAccess := makeToken(t, map[string]any{"id": "user-1", "exp": time.Now().Add(time.Hour).Unix()})

	var refreshCalls, apiCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "old-refresh", body["refreshToken"])
		writeTokens(w, newAccess, "new-refresh")
	})
	mux.HandleFunc("/course", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&apiCalls, 1)
		if r.Header.Get("Authorization") != "Bearer "+newAccess {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`[{"id":"c1"}]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	store := storefakes.NewWithSession("old-access", "old-refresh", "user-1")
	c := newClient(t, server.URL, store)

	resp, err := c.Get(context.Background(), "/course", nil)
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":"c1"}]`, string(resp.Body))

	require.EqualValues(t, 1, refreshCalls)
	require.EqualValues(t, 2, apiCalls) // original + one replay

	access, _ := store.Get(session.KeyAccessToken)
	refresh, _ := store.Get(session.KeyRefreshToken)
	userID, _ := store.Get(session.KeyUserID)
	require.Equal(t, newAccess, access)
	require.Equal(t, "new-refresh", refresh)
	require.Equal(t, "user-1", userID)
}

// A second 401 on the replayed request is surfaced, never retried again.
func TestDo_ReplayedRequestNotRetriedTwice(t *testing.T) {
	var refreshCalls, apiCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		writeTokens(w, "still-rejected", "new-refresh")
	})
	mux.HandleFunc("/course", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&apiCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	store := storefakes.NewWithSession("old-access", "old-refresh", "user-1")
	c := newClient(t, server.URL, store)

	_, err := c.Get(context.Background(), "/course", nil)

	var expired *apierr.AuthExpiredError
	require.ErrorAs(t, err, &expired)
	require.EqualValues(t, 1, refreshCalls)
	require.EqualValues(t, 2, apiCalls)
	require.Equal(t, 0, store.Len())
}

// Scenario: 401 with no refresh token stored. The caller gets an
// AuthExpiredError and the store is empty afterward; no refresh call is
// ever issued.
func TestDo_401WithoutRefreshTokenClearsSession(t *testing.T) {
	var refreshCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
	})
	mux.HandleFunc("/course", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	store := storefakes.New()
	require.NoError(t, store.Set(session.KeyAccessToken, "stale-access"))
	c := newClient(t, server.URL, store)

	_, err := c.Get(context.Background(), "/course", nil)

	var expired *apierr.AuthExpiredError
	require.ErrorAs(t, err, &expired)
	require.EqualValues(t, 0, refreshCalls)
	require.Equal(t, 0, store.Len())
}

func TestDo_RefreshRejectedClearsSessionAndSurfacesOriginal401(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	mux.HandleFunc("/course", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"token invalid"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	store := storefakes.NewWithSession("old-access", "old-refresh", "user-1")
	c := newClient(t, server.URL, store)

	_, err := c.Get(context.Background(), "/course", nil)

	var expired *apierr.AuthExpiredError
	require.ErrorAs(t, err, &expired)
	require.Equal(t, http.StatusUnauthorized, expired.Status)
	require.Contains(t, string(expired.Body), "token invalid")
	require.Equal(t, 0, store.Len())
}

// Concurrent 401 handlers share one in-flight refresh.
func TestDo_ConcurrentRefreshIsSingleFlight(t *testing.T) {
	newAccess := makeToken(t, map[string]any{"id": "user-1", "exp": time.Now().Add(time.Hour).Unix()})

	var refreshCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		time.Sleep(100 * time.Millisecond)
		writeTokens(w, newAccess, "new-refresh")
	})
	mux.HandleFunc("/course", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+newAccess {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`[]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	store := storefakes.NewWithSession("old-access", "old-refresh", "user-1")
	c := newClient(t, server.URL, store)

	const n = 8
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(n)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			<-start
			_, err := c.Get(context.Background(), "/course", nil)
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, refreshCalls)
}

func TestDo_TransportClassification(t *testing.T) {
	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
		}))
		defer server.Close()

		c, err := client.New(testConfig{baseURL: server.URL}, storefakes.New(),
			client.WithHTTPClient(&http.Client{Timeout: 30 * time.Millisecond}))
		require.NoError(t, err)

		_, err = c.Get(context.Background(), "/course", nil)
		var timeout *apierr.TimeoutError
		require.ErrorAs(t, err, &timeout)
	})

	t.Run("network unreachable", func(t *testing.T) {
		c := newClient(t, "http://127.0.0.1:1", storefakes.New())

		_, err := c.Get(context.Background(), "/course", nil)
		var network *apierr.NetworkError
		require.ErrorAs(t, err, &network)
	})

	t.Run("caller cancellation passes through", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		c := newClient(t, server.URL, storefakes.New())
		_, err := c.Get(ctx, "/course", nil)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestDo_StatusClassification(t *testing.T) {
	status := http.StatusOK
	body := ""
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	defer server.Close()

	t.Run("403 without token", func(t *testing.T) {
		status = http.StatusForbidden
		c := newClient(t, server.URL, storefakes.New())

		_, err := c.Get(context.Background(), "/package", nil)
		var forbidden *apierr.ForbiddenError
		require.ErrorAs(t, err, &forbidden)
		require.False(t, forbidden.Authenticated)
	})

	t.Run("403 with token", func(t *testing.T) {
		status = http.StatusForbidden
		c := newClient(t, server.URL, storefakes.NewWithSession("tok", "ref", "u"))

		_, err := c.Get(context.Background(), "/package", nil)
		var forbidden *apierr.ForbiddenError
		require.ErrorAs(t, err, &forbidden)
		require.True(t, forbidden.Authenticated)
	})

	t.Run("400 with field errors", func(t *testing.T) {
		status = http.StatusBadRequest
		body = `{"title":"One or more validation errors occurred.","errors":{"Email":["Email is invalid"]}}`
		c := newClient(t, server.URL, storefakes.New())

		_, err := c.PostJSON(context.Background(), "/auth/register", map[string]string{})
		var validation *apierr.ValidationError
		require.ErrorAs(t, err, &validation)
		require.Equal(t, "Email is invalid", validation.FieldError("Email"))
	})

	t.Run("409", func(t *testing.T) {
		status = http.StatusConflict
		body = ""
		c := newClient(t, server.URL, storefakes.New())

		_, err := c.PostJSON(context.Background(), "/auth/register", map[string]string{})
		var conflict *apierr.ConflictError
		require.ErrorAs(t, err, &conflict)
	})

	t.Run("429", func(t *testing.T) {
		status = http.StatusTooManyRequests
		c := newClient(t, server.URL, storefakes.New())

		_, err := c.Get(context.Background(), "/openai/ask", nil)
		var limited *apierr.RateLimitedError
		require.ErrorAs(t, err, &limited)
	})

	t.Run("500 catch-all keeps payload", func(t *testing.T) {
		status = http.StatusInternalServerError
		body = `{"message":"boom"}`
		c := newClient(t, server.URL, storefakes.New())

		_, err := c.Get(context.Background(), "/course", nil)
		var api *apierr.APIError
		require.ErrorAs(t, err, &api)
		require.Equal(t, http.StatusInternalServerError, api.Status)
		require.JSONEq(t, `{"message":"boom"}`, string(api.Body))
	})
}

func TestForceRefresh_FailureClearsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	store := storefakes.NewWithSession("a", "r", "u")
	c := newClient(t, server.URL, store)

	err := c.ForceRefresh(context.Background())
	require.Error(t, err)
	require.Equal(t, 0, store.Len())
}
