package packages_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/novademy/novademy-go/client"
	"github.com/novademy/novademy-go/packages"
	"github.com/novademy/novademy-go/session"
	"github.com/novademy/novademy-go/session/storefakes"
)

type testConfig struct {
	baseURL string
}

func (c testConfig) GetBaseURL() string            { return c.baseURL }
func (c testConfig) GetHTTPTimeout() time.Duration { return 2 * time.Second }

func newService(t *testing.T, baseURL string, store session.Store) *packages.Service {
	t.Helper()
	c, err := client.New(testConfig{baseURL: baseURL}, store)
	require.NoError(t, err)
	svc, err := packages.NewService(c)
	require.NoError(t, err)
	return svc
}

func TestPackages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/package", r.URL.Path)
		require.Equal(t, "riyaziyyat", r.URL.Query().Get("search"))
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": "p1", "title": "Abituriyent", "price": 29.99, "courseCount": 4},
		})
	}))
	defer server.Close()

	svc := newService(t, server.URL, storefakes.New())

	pkgs, err := svc.Packages(context.Background(), "riyaziyyat")
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	require.Equal(t, "Abituriyent", pkgs[0].Title)
	require.Equal(t, 29.99, pkgs[0].Price)
}

func TestActiveSubscriptions_RequiresLogin(t *testing.T) {
	svc := newService(t, "http://127.0.0.1:1", storefakes.New())

	_, err := svc.ActiveSubscriptions(context.Background())
	require.ErrorIs(t, err, packages.ErrNotAuthenticated)
}

func TestPurchase(t *testing.T) {
	t.Run("unauthenticated fails locally with no network call", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
		}))
		defer server.Close()

		svc := newService(t, server.URL, storefakes.New())

		_, err := svc.Purchase(context.Background(), "p1")
		require.ErrorIs(t, err, packages.ErrNotAuthenticated)
		require.EqualValues(t, 0, calls)
	})

	t.Run("already purchased fails locally with no purchase call", func(t *testing.T) {
		var purchaseCalls int32
		mux := http.NewServeMux()
		mux.HandleFunc("/subscription/active/user-1", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{"id": "s1", "packageId": "p1", "status": "active"},
			})
		})
		mux.HandleFunc("/subscription", func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&purchaseCalls, 1)
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		store := storefakes.NewWithSession("access", "refresh", "user-1")
		svc := newService(t, server.URL, store)

		_, err := svc.Purchase(context.Background(), "p1")
		require.ErrorIs(t, err, packages.ErrAlreadyPurchased)
		require.EqualValues(t, 0, purchaseCalls)
	})

	t.Run("purchases an annual subscription", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/subscription/active/user-1", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode([]map[string]any{})
		})
		mux.HandleFunc("/subscription", func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "p2", body["packageId"])
			require.EqualValues(t, 12, body["duration"])
			_ = json.NewEncoder(w).Encode(map[string]string{"subscriptionId": "sub-42"})
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		store := storefakes.NewWithSession("access", "refresh", "user-1")
		svc := newService(t, server.URL, store)

		result, err := svc.Purchase(context.Background(), "p2")
		require.NoError(t, err)
		require.Equal(t, "sub-42", result.SubscriptionID)
	})
}

func TestIsPurchased(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/subscription/active/user-1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": "s1", "packageId": "p1", "status": "active"},
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	store := storefakes.NewWithSession("access", "refresh", "user-1")
	svc := newService(t, server.URL, store)

	purchased, err := svc.IsPurchased(context.Background(), "p1")
	require.NoError(t, err)
	require.True(t, purchased)

	purchased, err = svc.IsPurchased(context.Background(), "p9")
	require.NoError(t, err)
	require.False(t, purchased)
}
