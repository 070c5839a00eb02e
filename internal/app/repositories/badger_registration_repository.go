package repositories

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/yigit/coursebot/internal/app/models"
	"github.com/yigit/coursebot/internal/pkg/apperrors"
)

// BadgerRegistrationRepository stores registrations in an embedded Badger database.
// The student index key doubles as the (student, course) uniqueness constraint.
type BadgerRegistrationRepository struct {
	db            *badger.DB
	retryAttempts int
}

// NewBadgerRegistrationRepository creates a new BadgerRegistrationRepository
func NewBadgerRegistrationRepository(db *badger.DB, retryAttempts int) *BadgerRegistrationRepository {
	return &BadgerRegistrationRepository{db: db, retryAttempts: retryAttempts}
}

// CreateRegistration stores the registration and both secondary index entries
func (r *BadgerRegistrationRepository) CreateRegistration(ctx context.Context, reg *models.Registration) error {
	if strings.TrimSpace(reg.RegistrationID) == "" {
		return apperrors.ErrInvalidRegistrationID
	}
	if strings.TrimSpace(reg.StudentID) == "" || strings.TrimSpace(reg.CourseID) == "" {
		return fmt.Errorf("%w: student ID and course ID are required", apperrors.ErrValidationFailed)
	}

	err := updateWithRetry(ctx, r.db, r.retryAttempts, func(txn *badger.Txn) error {
		idxKey := studentIndexKey(reg.StudentID, reg.CourseID)
		if _, err := txn.Get(idxKey); err == nil {
			return apperrors.ErrAlreadyRegistered
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if _, err := txn.Get(registrationKey(reg.RegistrationID)); err == nil {
			return fmt.Errorf("registration %s already exists", reg.RegistrationID)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := setJSON(txn, registrationKey(reg.RegistrationID), reg); err != nil {
			return err
		}
		if err := txn.Set(idxKey, []byte(reg.RegistrationID)); err != nil {
			return err
		}
		return txn.Set(courseIndexKey(reg.CourseID, reg.StudentID), []byte(reg.RegistrationID))
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyRegistered) {
			return err
		}
		return fmt.Errorf("error creating registration: %w", err)
	}
	return nil
}

// DeleteRegistration removes the registration and its index entries
func (r *BadgerRegistrationRepository) DeleteRegistration(ctx context.Context, registrationID string) error {
	if strings.TrimSpace(registrationID) == "" {
		return apperrors.ErrInvalidRegistrationID
	}

	err := updateWithRetry(ctx, r.db, r.retryAttempts, func(txn *badger.Txn) error {
		reg := &models.Registration{}
		if err := getJSON(txn, registrationKey(registrationID), reg); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return apperrors.ErrRegistrationNotFound
			}
			return err
		}

		if err := txn.Delete(registrationKey(registrationID)); err != nil {
			return err
		}
		if err := txn.Delete(studentIndexKey(reg.StudentID, reg.CourseID)); err != nil {
			return err
		}
		return txn.Delete(courseIndexKey(reg.CourseID, reg.StudentID))
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrRegistrationNotFound) {
			return err
		}
		return fmt.Errorf("error deleting registration: %w", err)
	}
	return nil
}

// FindByStudent returns the registrations of a student ordered by course ID
func (r *BadgerRegistrationRepository) FindByStudent(ctx context.Context, studentID string) ([]*models.Registration, error) {
	regs, err := r.findByIndex(ctx, studentIndexPrefix(studentID), func(reg *models.Registration) bool {
		return reg.StudentID == studentID
	})
	if err != nil {
		return nil, err
	}
	sortRegistrations(regs, func(reg *models.Registration) string { return reg.CourseID })
	return regs, nil
}

// FindByCourse returns the registrations of a course ordered by student ID
func (r *BadgerRegistrationRepository) FindByCourse(ctx context.Context, courseID string) ([]*models.Registration, error) {
	regs, err := r.findByIndex(ctx, courseIndexPrefix(courseID), func(reg *models.Registration) bool {
		return reg.CourseID == courseID
	})
	if err != nil {
		return nil, err
	}
	sortRegistrations(regs, func(reg *models.Registration) string { return reg.StudentID })
	return regs, nil
}

// sortRegistrations orders by plain ID; index keys sort by ID length first.
func sortRegistrations(regs []*models.Registration, by func(*models.Registration) string) {
	slices.SortFunc(regs, func(a, b *models.Registration) int {
		return strings.Compare(by(a), by(b))
	})
}

// findByIndex loads the registrations referenced under prefix. Records that do
// not match exactly are skipped.
func (r *BadgerRegistrationRepository) findByIndex(ctx context.Context, prefix string, match func(*models.Registration) bool) ([]*models.Registration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	regs := []*models.Registration{}
	err := r.db.View(func(txn *badger.Txn) error {
		var ids []string
		if err := scanPrefix(txn, []byte(prefix), func(val []byte) error {
			ids = append(ids, string(val))
			return nil
		}); err != nil {
			return err
		}

		for _, id := range ids {
			reg := &models.Registration{}
			if err := getJSON(txn, registrationKey(id), reg); err != nil {
				return fmt.Errorf("registration %s referenced by index: %w", id, err)
			}
			if match(reg) {
				regs = append(regs, reg)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error querying registrations: %w", err)
	}
	return regs, nil
}
