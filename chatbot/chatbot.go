// Package chatbot asks the lesson assistant questions. Before spending a
// network round trip it checks the stored access token's expiry locally,
// so a request doomed to 401 fails fast with ErrSessionExpired instead. The
// expiry check is a UX shortcut over unverified claims; the server still
// authorizes every request that does go out.
package chatbot

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/novademy/novademy-go/apierr"
	"github.com/novademy/novademy-go/client"
	"github.com/novademy/novademy-go/token"
)

// ErrSessionExpired is the local fast-fail for an access token that is
// already past its expiry.
var ErrSessionExpired = errors.New("your session has expired, please log in again")

// Kind labels a chatbot failure for display.
type Kind string

const (
	KindSessionExpired Kind = "session_expired"
	KindForbidden      Kind = "forbidden"
	KindLessonMissing  Kind = "lesson_missing"
	KindRateLimited    Kind = "rate_limited"
	KindUnavailable    Kind = "unavailable"
	KindOther          Kind = "other"
)

// Error is a user-displayable chatbot failure. It wraps the pipeline's
// classified error so callers can still inspect the underlying cause.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

// Answer is the assistant's reply.
type Answer struct {
	Answer string `json:"answer"`
}

// Service exposes the lesson question-answering endpoint.
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

// NewService initializes the chatbot service with its pipeline.
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

// AskQuestion sends a question about a lesson and returns the assistant's
// answer. A locally expired session fails fast without a network call.
func (s *Service) AskQuestion(ctx context.Context, lessonID, question string) (*Answer, error) {
	snap := s.client.Session()
	if snap.AccessToken != "" {
		claims, err := token.Decode(snap.AccessToken)
		if err == nil && token.IsExpired(claims, token.NowTimeFunc()) {
			s.logger.Debug().Msg("access token already expired; skipping chatbot call")
			return nil, &Error{Kind: KindSessionExpired, Status: 401, Message: ErrSessionExpired.Error(), cause: ErrSessionExpired}
		}
	}

	resp, err := s.client.PostMultipart(ctx, "/openai/ask", []client.FormField{
		{Name: "lessonId", Value: lessonID},
		{Name: "question", Value: question},
	})
	if err != nil {
		return nil, s.classify(err)
	}

	var answer Answer
	if err := resp.DecodeJSON(&answer); err != nil {
		return nil, err
	}
	return &answer, nil
}

// classify turns the pipeline's error taxonomy into user-displayable
// chatbot errors without discarding the underlying classification.
func (s *Service) classify(err error) error {
	var expired *apierr.AuthExpiredError
	if stderrors.As(err, &expired) {
		return &Error{Kind: KindSessionExpired, Status: expired.Status, Message: ErrSessionExpired.Error(), cause: err}
	}

	var forbidden *apierr.ForbiddenError
	if stderrors.As(err, &forbidden) {
		return &Error{Kind: KindForbidden, Status: 403, Message: "you do not have access to this lesson", cause: err}
	}

	var notFound *apierr.NotFoundError
	if stderrors.As(err, &notFound) {
		return &Error{Kind: KindLessonMissing, Status: 404, Message: "the lesson could not be found", cause: err}
	}

	var limited *apierr.RateLimitedError
	if stderrors.As(err, &limited) {
		return &Error{Kind: KindRateLimited, Status: 429, Message: "too many questions, please try again later", cause: err}
	}

	var network *apierr.NetworkError
	var timeout *apierr.TimeoutError
	if stderrors.As(err, &network) || stderrors.As(err, &timeout) {
		return &Error{Kind: KindUnavailable, Message: "no response from the server, check your internet connection", cause: err}
	}

	var api *apierr.APIError
	if stderrors.As(err, &api) {
		msg := serverMessage(api.Body)
		if msg == "" {
			msg = "an error occurred while processing your question"
		}
		return &Error{Kind: KindOther, Status: api.Status, Message: msg, cause: err}
	}
	return err
}

func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}
