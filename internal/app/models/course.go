package models

// Course represents a course students can register for.
// EnrolledCount never exceeds Capacity; the stores enforce this on every update.
type Course struct {
	CourseID      string   `json:"courseId" db:"course_id"`
	CourseName    string   `json:"courseName" db:"course_name"`
	Program       string   `json:"program" db:"program"`
	Instructor    string   `json:"instructor" db:"instructor"`
	Credits       int      `json:"credits" db:"credits"`
	Room          string   `json:"room" db:"room"`
	Schedule      string   `json:"schedule" db:"schedule"`
	Capacity      int      `json:"capacity" db:"capacity"`
	EnrolledCount int      `json:"enrolledCount" db:"enrolled_count"`
	Prerequisites []string `json:"prerequisites,omitempty" db:"prerequisites"`
}

// AvailableSeats returns how many seats are still free.
func (c *Course) AvailableSeats() int {
	if c.EnrolledCount >= c.Capacity {
		return 0
	}
	return c.Capacity - c.EnrolledCount
}

// IsFull reports whether no seat is left.
func (c *Course) IsFull() bool {
	return c.EnrolledCount >= c.Capacity
}
