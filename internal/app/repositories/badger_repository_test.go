package repositories

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
	"github.com/yigit/coursebot/internal/app/models"
	"github.com/yigit/coursebot/internal/pkg/apperrors"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testCourse(id string, capacity, enrolled int) *models.Course {
	return &models.Course{
		CourseID:      id,
		CourseName:    "Course " + id,
		Instructor:    "Dr. Sarah Williams",
		Schedule:      "Mon/Wed 10:00-11:30 AM",
		Room:          "B-204",
		Credits:       3,
		Capacity:      capacity,
		EnrolledCount: enrolled,
	}
}

func Test_Put_Get_And_List_Courses(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewBadgerCourseRepository(openTestDB(t), 5)

	// Given two courses stored out of order
	req.NoError(repo.PutCourse(ctx, testCourse("MATH201", 30, 0)))
	req.NoError(repo.PutCourse(ctx, testCourse("CS101", 40, 2)))

	// When fetching one course
	course, err := repo.GetCourse(ctx, "CS101")
	req.NoError(err)
	req.Equal(testCourse("CS101", 40, 2), course)

	// Then listing returns all courses ordered by ID
	courses, err := repo.ListCourses(ctx)
	req.NoError(err)
	req.Len(courses, 2)
	req.Equal("CS101", courses[0].CourseID)
	req.Equal("MATH201", courses[1].CourseID)
}

func Test_Get_Missing_Course(t *testing.T) {
	req := require.New(t)
	repo := NewBadgerCourseRepository(openTestDB(t), 5)

	_, err := repo.GetCourse(context.Background(), "NOPE")
	req.ErrorIs(err, apperrors.ErrCourseNotFound)
}

func Test_List_Courses_Empty_Store(t *testing.T) {
	req := require.New(t)
	repo := NewBadgerCourseRepository(openTestDB(t), 5)

	courses, err := repo.ListCourses(context.Background())
	req.NoError(err)
	req.Empty(courses)
}

func Test_Put_Course_Rejects_Invalid_Counts(t *testing.T) {
	req := require.New(t)
	repo := NewBadgerCourseRepository(openTestDB(t), 5)

	req.ErrorIs(repo.PutCourse(context.Background(), testCourse("CS101", 10, 11)), apperrors.ErrValidationFailed)
	req.ErrorIs(repo.PutCourse(context.Background(), testCourse("", 10, 0)), apperrors.ErrValidationFailed)
}

func Test_Increment_Enrolled_Stays_Within_Bounds(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewBadgerCourseRepository(openTestDB(t), 5)
	req.NoError(repo.PutCourse(ctx, testCourse("CS101", 1, 0)))

	// Taking the only seat succeeds
	updated, err := repo.IncrementEnrolled(ctx, "CS101", 1)
	req.NoError(err)
	req.Equal(1, updated.EnrolledCount)

	// A second seat does not exist
	_, err = repo.IncrementEnrolled(ctx, "CS101", 1)
	req.ErrorIs(err, apperrors.ErrCourseFull)

	// Releasing works once, then would underflow
	updated, err = repo.IncrementEnrolled(ctx, "CS101", -1)
	req.NoError(err)
	req.Equal(0, updated.EnrolledCount)

	_, err = repo.IncrementEnrolled(ctx, "CS101", -1)
	req.ErrorIs(err, apperrors.ErrEnrollmentUnderflow)

	_, err = repo.IncrementEnrolled(ctx, "NOPE", 1)
	req.ErrorIs(err, apperrors.ErrCourseNotFound)

	course, err := repo.GetCourse(ctx, "CS101")
	req.NoError(err)
	req.Equal(0, course.EnrolledCount)
}

func Test_Concurrent_Increments_Never_Exceed_Capacity(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	capacity, contenders := 5, 20
	repo := NewBadgerCourseRepository(openTestDB(t), 100)
	req.NoError(repo.PutCourse(ctx, testCourse("CS101", capacity, 0)))

	var succeeded, full atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.IncrementEnrolled(ctx, "CS101", 1)
			switch {
			case err == nil:
				succeeded.Add(1)
			case apperrors.Is(err, apperrors.ErrCourseFull):
				full.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	req.Equal(int32(capacity), succeeded.Load())
	req.Equal(int32(contenders-capacity), full.Load())

	course, err := repo.GetCourse(ctx, "CS101")
	req.NoError(err)
	req.Equal(capacity, course.EnrolledCount)
}

func Test_Increment_Enrolled_Honors_Cancelled_Context(t *testing.T) {
	req := require.New(t)
	repo := NewBadgerCourseRepository(openTestDB(t), 5)
	req.NoError(repo.PutCourse(context.Background(), testCourse("CS101", 5, 0)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.IncrementEnrolled(ctx, "CS101", 1)
	req.ErrorIs(err, context.Canceled)
}

func Test_Create_And_Find_Registrations(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewBadgerRegistrationRepository(openTestDB(t), 5)
	now := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

	// Given S1 registered for two courses and S10 for one
	req.NoError(repo.CreateRegistration(ctx, models.NewRegistration("r1", "S1", "MATH201", now)))
	req.NoError(repo.CreateRegistration(ctx, models.NewRegistration("r2", "S1", "CS101", now)))
	req.NoError(repo.CreateRegistration(ctx, models.NewRegistration("r3", "S10", "CS101", now)))

	// When fetching by student
	regs, err := repo.FindByStudent(ctx, "S1")
	req.NoError(err)

	// Then only S1's registrations come back, ordered by course
	req.Len(regs, 2)
	req.Equal("CS101", regs[0].CourseID)
	req.Equal("MATH201", regs[1].CourseID)
	req.Equal("2025-01-15", regs[0].RegistrationDate)
	req.Equal(models.RegistrationEnrolled, regs[0].Status)

	byCourse, err := repo.FindByCourse(ctx, "CS101")
	req.NoError(err)
	req.Len(byCourse, 2)
	req.Equal("S1", byCourse[0].StudentID)
	req.Equal("S10", byCourse[1].StudentID)

	none, err := repo.FindByStudent(ctx, "S2")
	req.NoError(err)
	req.Empty(none)
}

func Test_Create_Duplicate_Registration(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewBadgerRegistrationRepository(openTestDB(t), 5)
	now := time.Now()

	req.NoError(repo.CreateRegistration(ctx, models.NewRegistration("r1", "S1", "CS101", now)))
	err := repo.CreateRegistration(ctx, models.NewRegistration("r2", "S1", "CS101", now))
	req.ErrorIs(err, apperrors.ErrAlreadyRegistered)

	regs, err := repo.FindByStudent(ctx, "S1")
	req.NoError(err)
	req.Len(regs, 1)
	req.Equal("r1", regs[0].RegistrationID)
}

func Test_Concurrent_Duplicate_Registrations_Store_One(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewBadgerRegistrationRepository(openTestDB(t), 100)

	var created atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reg := models.NewRegistration(fmt.Sprintf("r%d", i), "S1", "CS101", time.Now())
			err := repo.CreateRegistration(ctx, reg)
			if err == nil {
				created.Add(1)
			} else if !apperrors.Is(err, apperrors.ErrAlreadyRegistered) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	req.Equal(int32(1), created.Load())
	regs, err := repo.FindByCourse(ctx, "CS101")
	req.NoError(err)
	req.Len(regs, 1)
}

func Test_Delete_Registration(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewBadgerRegistrationRepository(openTestDB(t), 5)
	req.NoError(repo.CreateRegistration(ctx, models.NewRegistration("r1", "S1", "CS101", time.Now())))

	req.NoError(repo.DeleteRegistration(ctx, "r1"))
	req.ErrorIs(repo.DeleteRegistration(ctx, "r1"), apperrors.ErrRegistrationNotFound)
	req.ErrorIs(repo.DeleteRegistration(ctx, ""), apperrors.ErrInvalidRegistrationID)

	regs, err := repo.FindByStudent(ctx, "S1")
	req.NoError(err)
	req.Empty(regs)
	regs, err = repo.FindByCourse(ctx, "CS101")
	req.NoError(err)
	req.Empty(regs)

	// The uniqueness slot is free again
	req.NoError(repo.CreateRegistration(ctx, models.NewRegistration("r2", "S1", "CS101", time.Now())))
}

func Test_Registrations_With_Colon_IDs_Stay_Separate(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewBadgerRegistrationRepository(openTestDB(t), 5)
	now := time.Now()

	// Given IDs that would collide if joined with a plain separator
	req.NoError(repo.CreateRegistration(ctx, models.NewRegistration("r1", "S1:X", "CS101", now)))
	req.NoError(repo.CreateRegistration(ctx, models.NewRegistration("r2", "S1", "X:CS101", now)))

	// Then S1 sees only its own registration
	regs, err := repo.FindByStudent(ctx, "S1")
	req.NoError(err)
	req.Len(regs, 1)
	req.Equal("r2", regs[0].RegistrationID)

	regs, err = repo.FindByStudent(ctx, "S1:X")
	req.NoError(err)
	req.Len(regs, 1)
	req.Equal("r1", regs[0].RegistrationID)

	regs, err = repo.FindByCourse(ctx, "CS101")
	req.NoError(err)
	req.Len(regs, 1)
	req.Equal("S1:X", regs[0].StudentID)

	// And S1 can still register for CS101 itself
	req.NoError(repo.CreateRegistration(ctx, models.NewRegistration("r3", "S1", "CS101", now)))
	regs, err = repo.FindByStudent(ctx, "S1")
	req.NoError(err)
	req.Len(regs, 2)

	// Deleting one leaves the look-alike untouched
	req.NoError(repo.DeleteRegistration(ctx, "r3"))
	regs, err = repo.FindByCourse(ctx, "CS101")
	req.NoError(err)
	req.Len(regs, 1)
	req.Equal("r1", regs[0].RegistrationID)
}

func Test_Index_Keys_Are_Prefix_Free(t *testing.T) {
	tests := []struct {
		description string
		a, b        []byte
	}{
		{"student suffix", studentIndexKey("S1", "X:CS101"), studentIndexKey("S1:X", "CS101")},
		{"course suffix", courseIndexKey("CS101", "S1:X"), courseIndexKey("CS101:S1", "X")},
		{"numeric suffix", studentIndexKey("S1", "0CS101"), studentIndexKey("S10", "CS101")},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			require.NotEqual(t, string(tt.a), string(tt.b))
		})
	}

	require.NotContains(t, string(studentIndexKey("S1:X", "CS101")), studentIndexPrefix("S1"))
	require.NotContains(t, string(studentIndexKey("S10", "CS101")), studentIndexPrefix("S1"))
}

func Test_Find_Skips_Index_Entries_For_Other_Records(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewBadgerRegistrationRepository(db, 5)
	req.NoError(repo.CreateRegistration(ctx, models.NewRegistration("r1", "S2", "CS101", time.Now())))

	// An index entry under S1 pointing at another student's record
	req.NoError(db.Update(func(txn *badger.Txn) error {
		return txn.Set(studentIndexKey("S1", "CS101"), []byte("r1"))
	}))

	regs, err := repo.FindByStudent(ctx, "S1")
	req.NoError(err)
	req.Empty(regs)
}

func Test_Add_Course_Only_When_Absent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewBadgerCourseRepository(openTestDB(t), 5)

	added, err := repo.AddCourse(ctx, testCourse("CS101", 40, 2))
	req.NoError(err)
	req.True(added)

	_, err = repo.IncrementEnrolled(ctx, "CS101", 1)
	req.NoError(err)

	// Adding again leaves the stored record alone
	added, err = repo.AddCourse(ctx, testCourse("CS101", 10, 0))
	req.NoError(err)
	req.False(added)

	course, err := repo.GetCourse(ctx, "CS101")
	req.NoError(err)
	req.Equal(40, course.Capacity)
	req.Equal(3, course.EnrolledCount)

	_, err = repo.AddCourse(ctx, testCourse("", 10, 0))
	req.ErrorIs(err, apperrors.ErrValidationFailed)
	_, err = repo.AddCourse(ctx, testCourse("MATH201", 1, 2))
	req.ErrorIs(err, apperrors.ErrValidationFailed)
}

func Test_Find_Orders_By_Plain_ID(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewBadgerRegistrationRepository(openTestDB(t), 5)
	now := time.Now()

	// Shorter IDs must not jump ahead of lexically smaller ones
	req.NoError(repo.CreateRegistration(ctx, models.NewRegistration("r1", "S1", "Z1", now)))
	req.NoError(repo.CreateRegistration(ctx, models.NewRegistration("r2", "S1", "AB12", now)))
	req.NoError(repo.CreateRegistration(ctx, models.NewRegistration("r3", "ZZ", "CS101", now)))
	req.NoError(repo.CreateRegistration(ctx, models.NewRegistration("r4", "AAA1", "CS101", now)))

	regs, err := repo.FindByStudent(ctx, "S1")
	req.NoError(err)
	req.Equal([]string{"AB12", "Z1"}, []string{regs[0].CourseID, regs[1].CourseID})

	roster, err := repo.FindByCourse(ctx, "CS101")
	req.NoError(err)
	req.Equal([]string{"AAA1", "ZZ"}, []string{roster[0].StudentID, roster[1].StudentID})
}
