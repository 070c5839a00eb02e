package models

import "time"

// RegistrationStatus is the lifecycle state of a registration
type RegistrationStatus string

const (
	// RegistrationEnrolled is the only status the assistant produces
	RegistrationEnrolled RegistrationStatus = "enrolled"
)

// RegistrationDateLayout is the layout of Registration.RegistrationDate
const RegistrationDateLayout = "2006-01-02"

// Registration links one student to one course.
type Registration struct {
	RegistrationID   string             `json:"registrationId" db:"registration_id"`
	StudentID        string             `json:"studentId" db:"student_id"`
	CourseID         string             `json:"courseId" db:"course_id"`
	Status           RegistrationStatus `json:"status" db:"status"`
	RegistrationDate string             `json:"registrationDate" db:"registration_date"`
	Grade            *string            `json:"grade,omitempty" db:"grade"` // Nullable
}

// NewRegistration builds an enrolled registration dated at now.
func NewRegistration(id, studentID, courseID string, now time.Time) *Registration {
	return &Registration{
		RegistrationID:   id,
		StudentID:        studentID,
		CourseID:         courseID,
		Status:           RegistrationEnrolled,
		RegistrationDate: now.Format(RegistrationDateLayout),
	}
}

// EnrolledCourse is a registration joined to its course record.
// Course is nil when the course record no longer exists.
type EnrolledCourse struct {
	Registration *Registration
	Course       *Course
}
