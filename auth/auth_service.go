// Package auth is the authentication façade over the request pipeline:
// login, registration, email verification, refresh, logout and the current
// user profile. It is the only domain service allowed to mutate the stored
// session, and it does so exclusively through the pipeline's token
// operations.
package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/novademy/novademy-go/apierr"
	"github.com/novademy/novademy-go/client"
)

var codePattern = regexp.MustCompile(`^[0-9]{4}$`)

// Service exposes the authentication operations of the API.
type Service struct {
	client *client.Client
	logger zerolog.Logger
}

// ServiceOption modifies a Service during construction.
type ServiceOption func(*Service)

// WithLogger sets the service logger. Default is a nop logger.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService initializes the authentication service with its pipeline.
func NewService(c *client.Client, options ...ServiceOption) (*Service, error) {
	if c == nil {
		return nil, errors.New("[NewService] client is required")
	}
	s := &Service{client: c, logger: zerolog.Nop()}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Login authenticates with username and password and persists the issued
// token pair plus the user id extracted from the access token's claims.
func (s *Service) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	resp, err := s.client.PostMultipart(ctx, "/auth/login", []client.FormField{
		{Name: "username", Value: username},
		{Name: "password", Value: password},
	})
	if err != nil {
		return nil, err
	}

	var pair TokenPair
	if err := resp.DecodeJSON(&pair); err != nil {
		return nil, err
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return nil, stderrors.New("login response missing tokens")
	}

	if err := s.client.StoreTokens(pair.AccessToken, pair.RefreshToken); err != nil {
		return nil, err
	}
	s.logger.Info().Str("username", username).Msg("logged in")
	return &pair, nil
}

// Register creates a new account. The form uses the backend model's exact
// PascalCase field names; a profile picture, when provided, is attached as a
// file part with its MIME type inferred from the extension.
func (s *Service) Register(ctx context.Context, data RegisterData) (*RegisterResult, error) {
	fields := []client.FormField{
		{Name: "Username", Value: strings.TrimSpace(data.Username)},
		{Name: "Password", Value: data.Password},
		{Name: "FirstName", Value: strings.TrimSpace(data.FirstName)},
		{Name: "LastName", Value: strings.TrimSpace(data.LastName)},
		{Name: "Email", Value: strings.ToLower(strings.TrimSpace(data.Email))},
		{Name: "PhoneNumber", Value: strings.TrimSpace(data.PhoneNumber)},
		{Name: "RoleId", Value: fmt.Sprintf("%d", data.RoleID)},
		{Name: "Group", Value: fmt.Sprintf("%d", data.Group)},
		{Name: "Sector", Value: fmt.Sprintf("%d", data.Sector)},
	}

	var files []client.FilePart
	if data.ProfilePicture != "" {
		files = append(files, client.FilePart{Field: "ProfilePicture", Path: data.ProfilePicture})
	}

	resp, err := s.client.PostMultipart(ctx, "/auth/register", fields, files...)
	if err != nil {
		return nil, err
	}

	result, err := registerResult(resp)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("userId", result.ID).Msg("registered")
	return result, nil
}

// VerifyEmail submits the 4-digit verification code for a newly registered
// user. Malformed input fails locally before any network round trip.
func (s *Service) VerifyEmail(ctx context.Context, userID, code string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return ErrInvalidUserID
	}
	if !codePattern.MatchString(code) {
		return ErrInvalidCode
	}

	_, err := s.client.PostJSON(ctx, "/auth/verify-email", map[string]string{
		"userId": userID,
		"code":   code,
	})
	return err
}

// Refresh exchanges the stored refresh token for a new pair and returns it.
// On failure the session is cleared.
func (s *Service) Refresh(ctx context.Context) (*TokenPair, error) {
	if err := s.client.ForceRefresh(ctx); err != nil {
		return nil, err
	}
	snap := s.client.Session()
	return &TokenPair{AccessToken: snap.AccessToken, RefreshToken: snap.RefreshToken}, nil
}

// Logout notifies the server best-effort and then unconditionally clears
// the local session. A failed server call never leaves stale tokens behind.
func (s *Service) Logout(ctx context.Context) error {
	snap := s.client.Session()
	if snap.UserID != "" {
		if _, err := s.client.PostJSON(ctx, "/auth/logout/"+snap.UserID, nil); err != nil {
			s.logger.Warn().Err(err).Msg("server logout failed; clearing local session anyway")
		}
	}
	return s.client.ClearSession()
}

// CurrentUser fetches the authenticated user's profile. A 401 (beyond the
// pipeline's refresh attempt) or 404 means "no user" and returns nil, nil.
func (s *Service) CurrentUser(ctx context.Context) (*User, error) {
	resp, err := s.client.Get(ctx, "/auth/me", nil)
	if err != nil {
		var expired *apierr.AuthExpiredError
		var notFound *apierr.NotFoundError
		if stderrors.As(err, &expired) || stderrors.As(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}

	var user User
	if err := resp.DecodeJSON(&user); err != nil {
		return nil, err
	}
	return &user, nil
}
