package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/coursebot/internal/app/models"
	"github.com/yigit/coursebot/internal/pkg/apperrors"
	"github.com/yigit/coursebot/internal/pkg/dberrors"
	"github.com/yigit/coursebot/internal/pkg/logger"
)

// studentCourseUnique is the (student_id, course_id) constraint of the registrations table.
const studentCourseUnique = "registrations_student_course_key"

var registrationColumns = []string{
	"registration_id", "student_id", "course_id", "status", "registration_date", "grade",
}

// RegistrationRepository handles registration database operations
type RegistrationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewRegistrationRepository creates a new RegistrationRepository
func NewRegistrationRepository(db *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateRegistration inserts a registration; the unique constraint rejects a second
// registration for the same student and course.
func (r *RegistrationRepository) CreateRegistration(ctx context.Context, reg *models.Registration) error {
	registeredOn, err := time.Parse(models.RegistrationDateLayout, reg.RegistrationDate)
	if err != nil {
		return fmt.Errorf("%w: registration date %q: %v", apperrors.ErrValidationFailed, reg.RegistrationDate, err)
	}

	sql, args, err := r.sb.Insert("registrations").
		Columns(registrationColumns...).
		Values(reg.RegistrationID, reg.StudentID, reg.CourseID, string(reg.Status), registeredOn, reg.Grade).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create registration SQL")
		return fmt.Errorf("failed to build create registration query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		err = createRegistrationError(err)
		if !errors.Is(err, apperrors.ErrAlreadyRegistered) {
			logger.Error().Err(err).
				Str("studentID", reg.StudentID).
				Str("courseID", reg.CourseID).
				Msg("Error executing create registration query")
		}
		return err
	}

	return nil
}

// createRegistrationError maps an insert failure; only the (student, course)
// unique constraint means the student is already registered.
func createRegistrationError(err error) error {
	if dberrors.IsDuplicateConstraintError(err, studentCourseUnique) {
		return apperrors.ErrAlreadyRegistered
	}
	return fmt.Errorf("error creating registration: %w", err)
}

// DeleteRegistration deletes a registration by ID
func (r *RegistrationRepository) DeleteRegistration(ctx context.Context, registrationID string) error {
	if strings.TrimSpace(registrationID) == "" {
		return apperrors.ErrInvalidRegistrationID
	}

	sql, args, err := r.sb.Delete("registrations").
		Where(squirrel.Eq{"registration_id": registrationID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete registration SQL")
		return fmt.Errorf("failed to build delete registration query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("registrationID", registrationID).Msg("Error executing delete registration query")
		return fmt.Errorf("error deleting registration: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrRegistrationNotFound
	}

	return nil
}

// FindByStudent returns the registrations of a student ordered by course ID
func (r *RegistrationRepository) FindByStudent(ctx context.Context, studentID string) ([]*models.Registration, error) {
	return r.findBy(ctx, "student_id", studentID, "course_id")
}

// FindByCourse returns the registrations of a course ordered by student ID
func (r *RegistrationRepository) FindByCourse(ctx context.Context, courseID string) ([]*models.Registration, error) {
	return r.findBy(ctx, "course_id", courseID, "student_id")
}

func (r *RegistrationRepository) findQuery(column, value, orderBy string) (string, []interface{}, error) {
	return r.sb.Select(registrationColumns...).
		From("registrations").
		Where(squirrel.Eq{column: value}).
		OrderBy(orderBy + " ASC").
		ToSql()
}

func (r *RegistrationRepository) findBy(ctx context.Context, column, value, orderBy string) ([]*models.Registration, error) {
	sql, args, err := r.findQuery(column, value, orderBy)
	if err != nil {
		logger.Error().Err(err).Str("column", column).Msg("Error building find registrations SQL")
		return nil, fmt.Errorf("failed to build find registrations query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str(column, value).Msg("Error executing find registrations query")
		return nil, fmt.Errorf("error querying registrations: %w", err)
	}
	defer rows.Close()

	regs := []*models.Registration{}
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning registration row")
			return nil, fmt.Errorf("error scanning registration row: %w", err)
		}
		regs = append(regs, reg)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating registration rows")
		return nil, fmt.Errorf("error iterating registration rows: %w", err)
	}

	return regs, nil
}

func scanRegistration(row pgx.Row) (*models.Registration, error) {
	reg := &models.Registration{}
	var status string
	var registeredOn time.Time
	if err := row.Scan(&reg.RegistrationID, &reg.StudentID, &reg.CourseID, &status, &registeredOn, &reg.Grade); err != nil {
		return nil, err
	}
	reg.Status = models.RegistrationStatus(status)
	reg.RegistrationDate = registeredOn.Format(models.RegistrationDateLayout)
	return reg, nil
}
