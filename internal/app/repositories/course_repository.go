package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/coursebot/internal/app/models"
	"github.com/yigit/coursebot/internal/pkg/apperrors"
	"github.com/yigit/coursebot/internal/pkg/dberrors"
	"github.com/yigit/coursebot/internal/pkg/logger"
)

const enrolledCountCheck = "courses_enrolled_count_check"

var courseColumns = []string{
	"course_id", "course_name", "program", "instructor", "credits",
	"room", "schedule", "capacity", "enrolled_count", "prerequisites",
}

// CourseRepository handles course database operations
type CourseRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanCourse(row pgx.Row) (*models.Course, error) {
	course := &models.Course{}
	err := row.Scan(
		&course.CourseID,
		&course.CourseName,
		&course.Program,
		&course.Instructor,
		&course.Credits,
		&course.Room,
		&course.Schedule,
		&course.Capacity,
		&course.EnrolledCount,
		&course.Prerequisites,
	)
	if err != nil {
		return nil, err
	}
	return course, nil
}

// GetCourse retrieves a course by ID
func (r *CourseRepository) GetCourse(ctx context.Context, courseID string) (*models.Course, error) {
	sql, args, err := r.sb.Select(courseColumns...).
		From("courses").
		Where(squirrel.Eq{"course_id": courseID}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get course SQL")
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}

	course, err := scanCourse(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Str("courseID", courseID).Msg("Error scanning course row")
		return nil, fmt.Errorf("error getting course by ID: %w", err)
	}

	return course, nil
}

// ListCourses retrieves all courses ordered by ID
func (r *CourseRepository) ListCourses(ctx context.Context) ([]*models.Course, error) {
	sql, args, err := r.sb.Select(courseColumns...).
		From("courses").
		OrderBy("course_id ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list courses SQL")
		return nil, fmt.Errorf("failed to build list courses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list courses query")
		return nil, fmt.Errorf("error querying courses: %w", err)
	}
	defer rows.Close()

	courses := []*models.Course{}
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning course row during list")
			return nil, fmt.Errorf("error scanning course row: %w", err)
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating course rows")
		return nil, fmt.Errorf("error iterating course rows: %w", err)
	}

	return courses, nil
}

// IncrementEnrolled applies delta to enrolled_count in a single guarded UPDATE.
// Postgres takes a row lock for the update, so concurrent callers cannot push the
// count outside [0, capacity].
func (r *CourseRepository) IncrementEnrolled(ctx context.Context, courseID string, delta int) (*models.Course, error) {
	if delta == 0 {
		return nil, fmt.Errorf("%w: enrollment delta must not be zero", apperrors.ErrValidationFailed)
	}

	sql, args, err := r.incrementEnrolledQuery(courseID, delta)
	if err != nil {
		logger.Error().Err(err).Msg("Error building increment enrolled SQL")
		return nil, fmt.Errorf("failed to build increment enrolled query: %w", err)
	}

	course, err := scanCourse(r.db.QueryRow(ctx, sql, args...))
	if err == nil {
		return course, nil
	}

	if !guardRejected(err) {
		logger.Error().Err(err).Str("courseID", courseID).Int("delta", delta).Msg("Error executing increment enrolled query")
		return nil, fmt.Errorf("error updating enrolled count: %w", err)
	}

	// The guard rejected the update; find out whether the course exists at all.
	_, getErr := r.GetCourse(ctx, courseID)
	return nil, rejectionError(delta, getErr)
}

func (r *CourseRepository) incrementEnrolledQuery(courseID string, delta int) (string, []interface{}, error) {
	return r.sb.Update("courses").
		Set("enrolled_count", squirrel.Expr("enrolled_count + ?", delta)).
		Where(squirrel.Eq{"course_id": courseID}).
		Where(squirrel.Expr("enrolled_count + ? BETWEEN 0 AND capacity", delta)).
		Suffix("RETURNING " + strings.Join(courseColumns, ", ")).
		ToSql()
}

// guardRejected reports whether the guarded UPDATE left the row untouched: either
// no row matched the WHERE clause or the table CHECK fired.
func guardRejected(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || dberrors.IsCheckConstraintError(err, enrolledCountCheck)
}

// rejectionError names a rejected update given the result of re-reading the course.
func rejectionError(delta int, lookupErr error) error {
	if lookupErr != nil {
		return lookupErr
	}
	if delta > 0 {
		return apperrors.ErrCourseFull
	}
	return apperrors.ErrEnrollmentUnderflow
}
