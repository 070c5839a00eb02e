package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/yigit/coursebot/internal/app/models"
	"github.com/yigit/coursebot/internal/pkg/apperrors"
)

// BadgerCourseRepository stores courses in an embedded Badger database
type BadgerCourseRepository struct {
	db            *badger.DB
	retryAttempts int
}

// NewBadgerCourseRepository creates a new BadgerCourseRepository
func NewBadgerCourseRepository(db *badger.DB, retryAttempts int) *BadgerCourseRepository {
	return &BadgerCourseRepository{db: db, retryAttempts: retryAttempts}
}

func validateCourse(course *models.Course) error {
	if strings.TrimSpace(course.CourseID) == "" {
		return fmt.Errorf("%w: course ID is required", apperrors.ErrValidationFailed)
	}
	if course.Capacity < 0 || course.EnrolledCount < 0 || course.EnrolledCount > course.Capacity {
		return fmt.Errorf("%w: enrolled count must be within [0, capacity]", apperrors.ErrValidationFailed)
	}
	return nil
}

// PutCourse inserts or replaces a course record.
func (r *BadgerCourseRepository) PutCourse(ctx context.Context, course *models.Course) error {
	if err := validateCourse(course); err != nil {
		return err
	}

	return updateWithRetry(ctx, r.db, r.retryAttempts, func(txn *badger.Txn) error {
		return setJSON(txn, courseKey(course.CourseID), course)
	})
}

// AddCourse stores the course only if its ID is not taken yet and reports whether
// it did. An existing record, and its enrolled count, is left untouched.
func (r *BadgerCourseRepository) AddCourse(ctx context.Context, course *models.Course) (bool, error) {
	if err := validateCourse(course); err != nil {
		return false, err
	}

	added := false
	err := updateWithRetry(ctx, r.db, r.retryAttempts, func(txn *badger.Txn) error {
		added = false
		if _, err := txn.Get(courseKey(course.CourseID)); err == nil {
			return nil
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		added = true
		return setJSON(txn, courseKey(course.CourseID), course)
	})
	if err != nil {
		return false, fmt.Errorf("error adding course: %w", err)
	}
	return added, nil
}

// GetCourse retrieves a course by ID
func (r *BadgerCourseRepository) GetCourse(ctx context.Context, courseID string) (*models.Course, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	course := &models.Course{}
	err := r.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, courseKey(courseID), course)
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("error getting course by ID: %w", err)
	}
	return course, nil
}

// ListCourses retrieves all courses ordered by ID
func (r *BadgerCourseRepository) ListCourses(ctx context.Context) ([]*models.Course, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	courses := []*models.Course{}
	err := r.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, []byte(coursePrefix), func(val []byte) error {
			course := &models.Course{}
			if err := json.Unmarshal(val, course); err != nil {
				return fmt.Errorf("unmarshal course: %w", err)
			}
			courses = append(courses, course)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("error listing courses: %w", err)
	}
	return courses, nil
}

// IncrementEnrolled reads, checks and writes the course in one transaction.
// Conflicting concurrent updates are replayed, never merged blindly.
func (r *BadgerCourseRepository) IncrementEnrolled(ctx context.Context, courseID string, delta int) (*models.Course, error) {
	if delta == 0 {
		return nil, fmt.Errorf("%w: enrollment delta must not be zero", apperrors.ErrValidationFailed)
	}

	var updated *models.Course
	err := updateWithRetry(ctx, r.db, r.retryAttempts, func(txn *badger.Txn) error {
		course := &models.Course{}
		if err := getJSON(txn, courseKey(courseID), course); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return apperrors.ErrCourseNotFound
			}
			return err
		}

		next := course.EnrolledCount + delta
		switch {
		case next > course.Capacity:
			return apperrors.ErrCourseFull
		case next < 0:
			return apperrors.ErrEnrollmentUnderflow
		}

		course.EnrolledCount = next
		updated = course
		return setJSON(txn, courseKey(courseID), course)
	})
	if err != nil {
		if apperrors.Is(err, apperrors.ErrCourseNotFound, apperrors.ErrCourseFull, apperrors.ErrEnrollmentUnderflow) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating enrolled count: %w", err)
	}
	return updated, nil
}
