package config

import (
	"strings"
	"time"
)

const (
	baseURLVar = "NOVADEMY_BASE_URL"
	timeoutVar = "NOVADEMY_TIMEOUT"

	defaultBaseURL = "https://novademy-api.azurewebsites.net/api/v1"

	// DefaultHTTPTimeout is the uniform per-request deadline. Exceeding it
	// yields a timeout error, never a refresh attempt.
	DefaultHTTPTimeout = 10 * time.Second
)

type API struct{}

var _ APIConfig = API{}

// GetBaseURL returns the API origin plus base path (e.g.
// "https://novademy-api.azurewebsites.net/api/v1"). A trailing slash is
// stripped so endpoint paths can always start with "/".
func (API) GetBaseURL() string {
	return strings.TrimRight(GetEnv(baseURLVar, defaultBaseURL), "/")
}

func (API) GetHTTPTimeout() time.Duration {
	v := GetEnv(timeoutVar, "")
	if v == "" {
		return DefaultHTTPTimeout
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return DefaultHTTPTimeout
	}
	return d
}
