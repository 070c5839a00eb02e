package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/yigit/coursebot/internal/app/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CourseAdder inserts a course unless one with the same ID already exists.
type CourseAdder interface {
	AddCourse(ctx context.Context, course *models.Course) (bool, error)
}

type catalogue struct {
	Courses []courseEntry `yaml:"courses" validate:"dive"`
}

type courseEntry struct {
	CourseID      string   `yaml:"course_id" validate:"required"`
	CourseName    string   `yaml:"course_name" validate:"required"`
	Program       string   `yaml:"program"`
	Instructor    string   `yaml:"instructor"`
	Credits       int      `yaml:"credits" validate:"gte=0"`
	Room          string   `yaml:"room"`
	Schedule      string   `yaml:"schedule"`
	Capacity      int      `yaml:"capacity" validate:"gte=0"`
	EnrolledCount int      `yaml:"enrolled_count" validate:"gte=0,ltefield=Capacity"`
	Prerequisites []string `yaml:"prerequisites"`
}

func (e courseEntry) toModel() *models.Course {
	return &models.Course{
		CourseID:      strings.TrimSpace(e.CourseID),
		CourseName:    e.CourseName,
		Program:       e.Program,
		Instructor:    e.Instructor,
		Credits:       e.Credits,
		Room:          e.Room,
		Schedule:      e.Schedule,
		Capacity:      e.Capacity,
		EnrolledCount: e.EnrolledCount,
		Prerequisites: e.Prerequisites,
	}
}

// LoadCourseFile reads a YAML course catalogue from path.
func LoadCourseFile(path string) ([]*models.Course, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read course catalogue: %w", err)
	}
	courses, err := ParseCourses(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("course catalogue %s: %w", path, err)
	}
	return courses, nil
}

// ParseCourses decodes and validates a course catalogue. Unknown keys and
// duplicate course IDs are rejected.
func ParseCourses(r io.Reader) ([]*models.Course, error) {
	var cat catalogue
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cat); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse course catalogue: %w", err)
	}

	if err := validate.Struct(cat); err != nil {
		return nil, fmt.Errorf("invalid course catalogue: %w", err)
	}

	seen := make(map[string]bool, len(cat.Courses))
	courses := make([]*models.Course, 0, len(cat.Courses))
	for _, entry := range cat.Courses {
		course := entry.toModel()
		if seen[course.CourseID] {
			return nil, fmt.Errorf("duplicate course %s in catalogue", course.CourseID)
		}
		seen[course.CourseID] = true
		courses = append(courses, course)
	}
	return courses, nil
}

// CreateCourses adds every catalogue course that is not stored yet. Existing
// courses keep their enrolled count, so a restart never resets seats. It keeps
// going past a failing course and returns the joined errors.
func CreateCourses(ctx context.Context, store CourseAdder, courses []*models.Course, lgr zerolog.Logger) (int, error) {
	lgr.Info().Int("catalogue", len(courses)).Msg("Checking/Creating catalogue courses...")

	var finalErr error
	added, existing := 0, 0
	for _, course := range courses {
		created, err := store.AddCourse(ctx, course)
		if err != nil {
			lgr.Error().Err(err).Str("courseID", course.CourseID).Msg("Error creating course")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if created {
			added++
		} else {
			existing++
		}
	}

	lgr.Info().Int("added", added).Int("existing", existing).Msg("Catalogue courses loaded")
	return added, finalErr
}
