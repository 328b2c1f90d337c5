// Package catalog provides read-only access to courses and lessons. It
// holds no local state; every call maps one endpoint to one typed result.
package catalog

import (
	"context"
	"net/url"

	"github.com/pkg/errors"

	"github.com/novademy/novademy-go/client"
)

// Instructor identifies the teacher of a course.
type Instructor struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Course is a course listing with its lessons when the detail endpoint
// includes them. Instructor is nil when the listing endpoint omits it.
type Course struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Subject     string      `json:"subject"`
	Image       string      `json:"image"`
	Lessons     []Lesson    `json:"lessons"`
	Instructor  *Instructor `json:"instructor"`
}

// Lesson is a single lesson within a course.
type Lesson struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	VideoURL    string `json:"videoUrl"`
	Order       int    `json:"order"`
	IsFree      bool   `json:"isFree"`
}

// Service exposes the catalog read endpoints.
type Service struct {
	client *client.Client
}

// NewService initializes the catalog service with its pipeline.
func NewService(c *client.Client) (*Service, error) {
	if c == nil {
		return nil, errors.New("[NewService] client is required")
	}
	return &Service{client: c}, nil
}

// Courses lists all courses, optionally filtered by a search query.
func (s *Service) Courses(ctx context.Context, search string) ([]Course, error) {
	var query url.Values
	if search != "" {
		query = url.Values{"search": []string{search}}
	}
	resp, err := s.client.Get(ctx, "/course", query)
	if err != nil {
		return nil, err
	}
	var courses []Course
	if err := resp.DecodeJSON(&courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// Course fetches one course by id.
func (s *Service) Course(ctx context.Context, id string) (*Course, error) {
	resp, err := s.client.Get(ctx, "/course/"+id, nil)
	if err != nil {
		return nil, err
	}
	var course Course
	if err := resp.DecodeJSON(&course); err != nil {
		return nil, err
	}
	return &course, nil
}

// LessonsByCourse lists the lessons of a course.
func (s *Service) LessonsByCourse(ctx context.Context, courseID string) ([]Lesson, error) {
	resp, err := s.client.Get(ctx, "/lesson/course/"+courseID, nil)
	if err != nil {
		return nil, err
	}
	var lessons []Lesson
	if err := resp.DecodeJSON(&lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

// Lesson fetches one lesson by id.
func (s *Service) Lesson(ctx context.Context, id string) (*Lesson, error) {
	resp, err := s.client.Get(ctx, "/lesson/"+id, nil)
	if err != nil {
		return nil, err
	}
	var lesson Lesson
	if err := resp.DecodeJSON(&lesson); err != nil {
		return nil, err
	}
	return &lesson, nil
}
