package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/novademy/novademy-go/internal/utils"
)

func newCatalogCommands(app func() *app) []*cobra.Command {
	return []*cobra.Command{
		newCoursesCommand(app),
		newCourseCommand(app),
		newLessonsCommand(app),
		newLessonCommand(app),
	}
}

func newCoursesCommand(app func() *app) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "courses",
		Short: "List courses",
		RunE: func(cmd *cobra.Command, args []string) error {
			courses, err := app().catalog.Courses(cmd.Context(), search)
			if err != nil {
				return err
			}
			for _, course := range courses {
				fmt.Printf("%s  %-30s %s\n", course.ID, course.Title, course.Subject)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Filter courses by a search query")
	return cmd
}

func newCourseCommand(app func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "course <id>",
		Short: "Show one course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			course, err := app().catalog.Course(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s - %s\n%s\n", course.Title, course.Subject, course.Description)
			instructor := utils.Value(course.Instructor)
			if instructor.FirstName != "" || instructor.LastName != "" {
				fmt.Printf("Instructor: %s %s\n", instructor.FirstName, instructor.LastName)
			}
			for _, lesson := range course.Lessons {
				fmt.Printf("  %2d. %s\n", lesson.Order, lesson.Title)
			}
			return nil
		},
	}
}

func newLessonsCommand(app func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lessons <courseId>",
		Short: "List the lessons of a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lessons, err := app().catalog.LessonsByCourse(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, lesson := range lessons {
				free := ""
				if lesson.IsFree {
					free = " (free)"
				}
				fmt.Printf("%s  %2d. %s%s\n", lesson.ID, lesson.Order, lesson.Title, free)
			}
			return nil
		},
	}
}

func newLessonCommand(app func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lesson <id>",
		Short: "Show one lesson",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lesson, err := app().catalog.Lesson(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s\n%s\nVideo: %s\n", lesson.Title, lesson.Description, lesson.VideoURL)
			return nil
		},
	}
}
