// Package packages covers the purchasable side of the catalog: subscription
// packages and the user's subscriptions, including the guarded purchase
// flow. The guards fail locally, so an unauthenticated or duplicate purchase
// never reaches the server.
package packages

import (
	"context"
	"errors"
	"net/url"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/novademy/novademy-go/client"
)

var (
	// ErrNotAuthenticated is returned when a purchase is attempted without
	// a logged-in session.
	ErrNotAuthenticated = errors.New("log in to purchase a package")
	// ErrAlreadyPurchased is returned when the user already holds an active
	// subscription for the package.
	ErrAlreadyPurchased = errors.New("package already purchased")
)

// subscriptionMonths is the fixed annual duration sent with every purchase.
const subscriptionMonths = 12

// Package is a purchasable bundle of courses.
type Package struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       float64         `json:"price"`
	Image       string          `json:"image"`
	CourseCount int             `json:"courseCount"`
	Courses     []PackageCourse `json:"courses"`
}

// PackageCourse is the course summary embedded in a package.
type PackageCourse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// Subscription is a user's time-bounded grant of access to a package.
type Subscription struct {
	ID           string `json:"id"`
	PackageID    string `json:"packageId"`
	PackageTitle string `json:"packageTitle"`
	ExpiryDate   string `json:"expiryDate"`
	Status       string `json:"status"` // "active", "expired" or "cancelled"
}

// PurchaseResult carries the id of the subscription created by a purchase.
type PurchaseResult struct {
	SubscriptionID string `json:"subscriptionId"`
}

// Service exposes package listings and the subscription/purchase flow.
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

// NewService initializes the package service with its pipeline.
func NewService(c *client.Client, options ...ServiceOption) (*Service, error) {
	if c == nil {
		return nil, pkgerrors.New("[NewService] client is required")
	}
	s := &Service{client: c, logger: zerolog.Nop()}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Packages lists all packages, optionally filtered by a search query.
func (s *Service) Packages(ctx context.Context, search string) ([]Package, error) {
	var query url.Values
	if search != "" {
		query = url.Values{"search": []string{search}}
	}
	resp, err := s.client.Get(ctx, "/package", query)
	if err != nil {
		return nil, err
	}
	var packages []Package
	if err := resp.DecodeJSON(&packages); err != nil {
		return nil, err
	}
	return packages, nil
}

// Package fetches one package by id.
func (s *Service) Package(ctx context.Context, id string) (*Package, error) {
	resp, err := s.client.Get(ctx, "/package/"+id, nil)
	if err != nil {
		return nil, err
	}
	var pkg Package
	if err := resp.DecodeJSON(&pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// ActiveSubscriptions lists the current user's active subscriptions.
// Requires a logged-in session for the user id.
func (s *Service) ActiveSubscriptions(ctx context.Context) ([]Subscription, error) {
	snap := s.client.Session()
	if snap.UserID == "" {
		return nil, ErrNotAuthenticated
	}
	resp, err := s.client.Get(ctx, "/subscription/active/"+snap.UserID, nil)
	if err != nil {
		return nil, err
	}
	var subs []Subscription
	if err := resp.DecodeJSON(&subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// IsPurchased reports whether the current user holds an active subscription
// for the package.
func (s *Service) IsPurchased(ctx context.Context, packageID string) (bool, error) {
	subs, err := s.ActiveSubscriptions(ctx)
	if err != nil {
		return false, err
	}
	for _, sub := range subs {
		if sub.PackageID == packageID {
			return true, nil
		}
	}
	return false, nil
}

// Purchase buys an annual subscription for the package. It fails locally,
// with no purchase call issued, when the user is not authenticated or the
// package is already purchased.
func (s *Service) Purchase(ctx context.Context, packageID string) (*PurchaseResult, error) {
	snap := s.client.Session()
	if !snap.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	purchased, err := s.IsPurchased(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if purchased {
		return nil, ErrAlreadyPurchased
	}

	resp, err := s.client.PostJSON(ctx, "/subscription", map[string]any{
		"packageId": packageID,
		"duration":  subscriptionMonths,
	})
	if err != nil {
		return nil, err
	}

	var result PurchaseResult
	if err := resp.DecodeJSON(&result); err != nil {
		return nil, err
	}
	s.logger.Info().Str("packageId", packageID).Str("subscriptionId", result.SubscriptionID).Msg("package purchased")
	return &result, nil
}
