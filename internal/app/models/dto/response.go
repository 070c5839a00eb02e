package dto

import (
	"time"

	"github.com/samber/lo"
	"github.com/yigit/coursebot/internal/app/models"
)

// Course availability labels
const (
	AvailabilityOpen = "OPEN"
	AvailabilityFull = "FULL"
)

// APIResponse is the envelope of the reporting endpoints
type APIResponse struct {
	Success   bool         `json:"success" example:"true"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// NewAPIResponse wraps data in a successful envelope
func NewAPIResponse(data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// CourseAvailabilityResponse describes seat availability for one course
type CourseAvailabilityResponse struct {
	CourseID       string   `json:"courseId" example:"CS101"`
	CourseName     string   `json:"courseName" example:"Introduction to Programming"`
	Program        string   `json:"program" example:"Computer Science"`
	Instructor     string   `json:"instructor" example:"Dr. Sarah Williams"`
	Schedule       string   `json:"schedule" example:"Mon/Wed 10:00-11:30 AM"`
	Credits        int      `json:"credits" example:"3"`
	Capacity       int      `json:"capacity" example:"40"`
	EnrolledCount  int      `json:"enrolledCount" example:"2"`
	AvailableSeats int      `json:"availableSeats" example:"38"`
	Status         string   `json:"status" example:"OPEN" enums:"OPEN,FULL"`
	Prerequisites  []string `json:"prerequisites,omitempty"`
}

// NewCourseAvailabilityResponses maps courses onto availability rows
func NewCourseAvailabilityResponses(courses []*models.Course) []CourseAvailabilityResponse {
	return lo.Map(courses, func(c *models.Course, _ int) CourseAvailabilityResponse {
		status := AvailabilityOpen
		if c.IsFull() {
			status = AvailabilityFull
		}
		return CourseAvailabilityResponse{
			CourseID:       c.CourseID,
			CourseName:     c.CourseName,
			Program:        c.Program,
			Instructor:     c.Instructor,
			Schedule:       c.Schedule,
			Credits:        c.Credits,
			Capacity:       c.Capacity,
			EnrolledCount:  c.EnrolledCount,
			AvailableSeats: c.AvailableSeats(),
			Status:         status,
			Prerequisites:  c.Prerequisites,
		}
	})
}

// CourseRosterResponse lists the registrations of one course
type CourseRosterResponse struct {
	CourseID      string                 `json:"courseId" example:"CS101"`
	CourseName    string                 `json:"courseName" example:"Introduction to Programming"`
	EnrolledCount int                    `json:"enrolledCount" example:"2"`
	Registrations []RegistrationResponse `json:"registrations"`
}

// RegistrationResponse is one roster entry
type RegistrationResponse struct {
	RegistrationID   string  `json:"registrationId"`
	StudentID        string  `json:"studentId" example:"S1001"`
	Status           string  `json:"status" example:"enrolled"`
	RegistrationDate string  `json:"registrationDate" example:"2025-01-15"`
	Grade            *string `json:"grade,omitempty"`
}

// NewCourseRosterResponse builds a roster from a course and its registrations
func NewCourseRosterResponse(course *models.Course, regs []*models.Registration) CourseRosterResponse {
	return CourseRosterResponse{
		CourseID:      course.CourseID,
		CourseName:    course.CourseName,
		EnrolledCount: course.EnrolledCount,
		Registrations: lo.Map(regs, func(r *models.Registration, _ int) RegistrationResponse {
			return RegistrationResponse{
				RegistrationID:   r.RegistrationID,
				StudentID:        r.StudentID,
				Status:           string(r.Status),
				RegistrationDate: r.RegistrationDate,
				Grade:            r.Grade,
			}
		}),
	}
}
