//go:generate go run go.uber.org/mock/mockgen -source=repositories.go -destination=../../mocks/mock_repositories.go -package=mocks
package repositories

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/coursebot/internal/app/models"
)

// CourseStore gives access to course records.
type CourseStore interface {
	// GetCourse returns apperrors.ErrCourseNotFound when no course has the ID.
	GetCourse(ctx context.Context, courseID string) (*models.Course, error)
	ListCourses(ctx context.Context) ([]*models.Course, error)
	// IncrementEnrolled atomically adds delta to the enrolled count, only if the
	// result stays within [0, capacity]. It returns the updated course, or
	// ErrCourseNotFound, ErrCourseFull (delta > 0) or ErrEnrollmentUnderflow (delta < 0).
	IncrementEnrolled(ctx context.Context, courseID string, delta int) (*models.Course, error)
}

// RegistrationStore gives access to registration records.
type RegistrationStore interface {
	// CreateRegistration returns apperrors.ErrAlreadyRegistered when the student
	// already holds a registration for the course.
	CreateRegistration(ctx context.Context, reg *models.Registration) error
	// DeleteRegistration returns apperrors.ErrRegistrationNotFound when nothing was deleted.
	DeleteRegistration(ctx context.Context, registrationID string) error
	FindByStudent(ctx context.Context, studentID string) ([]*models.Registration, error)
	FindByCourse(ctx context.Context, courseID string) ([]*models.Registration, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	Courses       CourseStore
	Registrations RegistrationStore
}

// NewRepositories initializes the Postgres-backed repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		Courses:       NewCourseRepository(db),
		Registrations: NewRegistrationRepository(db),
	}
}

// NewBadgerRepositories initializes the Badger-backed repositories.
// retryAttempts bounds how often a conflicting transaction is replayed.
func NewBadgerRepositories(db *badger.DB, retryAttempts int) *Repositories {
	return &Repositories{
		Courses:       NewBadgerCourseRepository(db, retryAttempts),
		Registrations: NewBadgerRegistrationRepository(db, retryAttempts),
	}
}
