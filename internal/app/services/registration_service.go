package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/yigit/coursebot/internal/app/models"
	"github.com/yigit/coursebot/internal/app/repositories"
	"github.com/yigit/coursebot/internal/pkg/apperrors"
)

const (
	// releaseTimeout bounds a seat release once the registration side has been settled.
	releaseTimeout = 5 * time.Second
	// joinConcurrency bounds parallel course lookups when listing a student's courses.
	joinConcurrency = 8
)

// RegistrationService defines the course registration operations
type RegistrationService interface {
	ListCourses(ctx context.Context) ([]*models.Course, error)
	// Register enrolls the student. On ErrCourseFull and ErrAlreadyRegistered the
	// course is returned with the error so callers can name it.
	Register(ctx context.Context, studentID, courseID string) (*models.Course, error)
	ListStudentCourses(ctx context.Context, studentID string) ([]models.EnrolledCourse, error)
	Unregister(ctx context.Context, studentID, courseID string) (*models.Registration, error)
	CourseRoster(ctx context.Context, courseID string) (*models.Course, []*models.Registration, error)
}

// registrationServiceImpl implements the RegistrationService interface
type registrationServiceImpl struct {
	courses       repositories.CourseStore
	registrations repositories.RegistrationStore
	logger        zerolog.Logger
	newID         func() string
	now           func() time.Time
}

// NewRegistrationService creates a new registration service instance
func NewRegistrationService(courses repositories.CourseStore, registrations repositories.RegistrationStore, logger zerolog.Logger) RegistrationService {
	return &registrationServiceImpl{
		courses:       courses,
		registrations: registrations,
		logger:        logger,
		newID:         func() string { return uuid.New().String() },
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func validateIDs(studentID, courseID string) error {
	if strings.TrimSpace(studentID) == "" {
		return apperrors.ErrIdentityMissing
	}
	if strings.TrimSpace(courseID) == "" {
		return fmt.Errorf("%w: course ID cannot be empty", apperrors.ErrValidationFailed)
	}
	return nil
}

// ListCourses returns every course
func (s *registrationServiceImpl) ListCourses(ctx context.Context) ([]*models.Course, error) {
	courses, err := s.courses.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing courses: %w", err)
	}
	return courses, nil
}

// Register checks the course and the student's registrations, reserves a seat with
// the store's guarded increment, then inserts the registration. The reservation is
// what guarantees capacity; the earlier checks only give an early answer.
func (s *registrationServiceImpl) Register(ctx context.Context, studentID, courseID string) (*models.Course, error) {
	if err := validateIDs(studentID, courseID); err != nil {
		return nil, err
	}
	log := s.logger.With().Str("studentID", studentID).Str("courseID", courseID).Logger()

	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrCourseNotFound) {
			log.Warn().Msg("Course not found")
			return nil, err
		}
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}
	log.Info().Int("enrolled", course.EnrolledCount).Int("capacity", course.Capacity).Msg("Course found")

	if course.IsFull() {
		log.Warn().Msg("Course is full")
		return course, apperrors.ErrCourseFull
	}

	existing, err := s.registrations.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving student registrations: %w", err)
	}
	if lo.ContainsBy(existing, func(r *models.Registration) bool { return r.CourseID == courseID }) {
		log.Warn().Msg("Student already registered")
		return course, apperrors.ErrAlreadyRegistered
	}

	updated, err := s.courses.IncrementEnrolled(ctx, courseID, 1)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrCourseFull):
			log.Warn().Msg("Last seat taken by a concurrent registration")
			return course, err
		case errors.Is(err, apperrors.ErrCourseNotFound):
			return nil, err
		default:
			return nil, fmt.Errorf("error reserving seat: %w", err)
		}
	}

	reg := models.NewRegistration(s.newID(), studentID, courseID, s.now())
	log.Info().Str("registrationID", reg.RegistrationID).Msg("Creating registration")
	if err := s.registrations.CreateRegistration(ctx, reg); err != nil {
		if relErr := s.releaseSeat(ctx, courseID); relErr != nil {
			log.Error().Err(relErr).Msg("Failed to release reserved seat")
		}
		if errors.Is(err, apperrors.ErrAlreadyRegistered) {
			log.Warn().Msg("Concurrent duplicate registration rejected by store")
			return course, err
		}
		return nil, fmt.Errorf("error creating registration: %w", err)
	}

	log.Info().Int("enrolled", updated.EnrolledCount).Msg("Successfully registered student")
	return updated, nil
}

// releaseSeat decrements the course's enrolled count. It runs detached from ctx:
// once the registration is gone (or was never stored) a request deadline must not
// leak the seat.
func (s *registrationServiceImpl) releaseSeat(ctx context.Context, courseID string) error {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	_, err := s.courses.IncrementEnrolled(releaseCtx, courseID, -1)
	return err
}

// ListStudentCourses joins each of the student's registrations to its course
func (s *registrationServiceImpl) ListStudentCourses(ctx context.Context, studentID string) ([]models.EnrolledCourse, error) {
	if strings.TrimSpace(studentID) == "" {
		return nil, apperrors.ErrIdentityMissing
	}

	regs, err := s.registrations.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving student registrations: %w", err)
	}
	s.logger.Info().Str("studentID", studentID).Int("count", len(regs)).Msg("Student registrations loaded")

	enrolled := make([]models.EnrolledCourse, len(regs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(joinConcurrency)
	for i, reg := range regs {
		i, reg := i, reg
		enrolled[i].Registration = reg
		g.Go(func() error {
			course, err := s.courses.GetCourse(gctx, reg.CourseID)
			if err != nil {
				if errors.Is(err, apperrors.ErrCourseNotFound) {
					s.logger.Warn().Str("courseID", reg.CourseID).Msg("Registration references a missing course")
					return nil
				}
				return err
			}
			enrolled[i].Course = course
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("error retrieving registered courses: %w", err)
	}

	return enrolled, nil
}

// Unregister deletes the student's registration for the course and frees its seat
func (s *registrationServiceImpl) Unregister(ctx context.Context, studentID, courseID string) (*models.Registration, error) {
	if err := validateIDs(studentID, courseID); err != nil {
		return nil, err
	}
	log := s.logger.With().Str("studentID", studentID).Str("courseID", courseID).Logger()

	regs, err := s.registrations.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving student registrations: %w", err)
	}

	reg, found := lo.Find(regs, func(r *models.Registration) bool { return r.CourseID == courseID })
	if !found {
		log.Warn().Msg("Student not registered for course")
		return nil, apperrors.ErrRegistrationNotFound
	}

	log.Info().Str("registrationID", reg.RegistrationID).Msg("Deleting registration")
	if err := s.registrations.DeleteRegistration(ctx, reg.RegistrationID); err != nil {
		if errors.Is(err, apperrors.ErrRegistrationNotFound) {
			log.Warn().Msg("Registration already removed")
			return nil, err
		}
		return nil, fmt.Errorf("error deleting registration: %w", err)
	}

	if err := s.releaseSeat(ctx, courseID); err != nil {
		if !apperrors.Is(err, apperrors.ErrEnrollmentUnderflow, apperrors.ErrCourseNotFound) {
			return nil, fmt.Errorf("error freeing seat: %w", err)
		}
		log.Warn().Err(err).Msg("Enrolled count not decremented")
	}

	log.Info().Msg("Successfully unregistered student")
	return reg, nil
}

// CourseRoster returns a course with all its registrations
func (s *registrationServiceImpl) CourseRoster(ctx context.Context, courseID string) (*models.Course, []*models.Registration, error) {
	if strings.TrimSpace(courseID) == "" {
		return nil, nil, fmt.Errorf("%w: course ID cannot be empty", apperrors.ErrValidationFailed)
	}

	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrCourseNotFound) {
			return nil, nil, apperrors.NewCustomError(err, fmt.Sprintf("course %s not found", courseID))
		}
		return nil, nil, fmt.Errorf("error retrieving course: %w", err)
	}

	regs, err := s.registrations.FindByCourse(ctx, courseID)
	if err != nil {
		return nil, nil, fmt.Errorf("error retrieving course registrations: %w", err)
	}
	return course, regs, nil
}
