package intents

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yigit/coursebot/internal/app/models"
)

const (
	msgIdentityError      = "I couldn’t verify your student identity."
	msgUnhandledIntent    = "I'm not sure how to handle that yet."
	msgNoCourses          = "No courses are currently available."
	msgAskRegisterCourse  = "Which course would you like to register for?"
	msgAskDropCourse      = "Which course would you like to drop?"
	msgRegisterFailed     = "Something went wrong while registering."
	msgUnregisterFailed   = "Something went wrong while dropping the course."
	msgListCoursesFailed  = "Something went wrong while fetching courses."
	msgViewCoursesFailed  = "Something went wrong while fetching your courses."
	msgNotAvailable       = "TBA"
	msgCreditsUnavailable = "N/A"
)

const msgLibraryHours = "📚 Library Hours:\n" +
	"Mon–Thu: 8AM–10PM\n" +
	"Fri: 8AM–6PM\n" +
	"Sat: 10AM–5PM\n" +
	"Sun: 12PM–8PM\n" +
	"\nDuring finals week: OPEN 24/7!"

const msgFallback = "🤔 I didn't understand that. I can help you with:\n" +
	"• Registering for courses\n" +
	"• Viewing your courses\n" +
	"• Dropping a course\n" +
	"• Checking library hours\n\n" +
	"What would you like to do?"

func orTBA(s string) string {
	if strings.TrimSpace(s) == "" {
		return msgNotAvailable
	}
	return s
}

func credits(c *models.Course) string {
	if c.Credits <= 0 {
		return msgCreditsUnavailable
	}
	return strconv.Itoa(c.Credits)
}

func formatAvailableCourses(courses []*models.Course) string {
	var b strings.Builder
	b.WriteString("📚 Available Courses:\n\n")
	fmt.Fprintf(&b, "Total: %d\n\n", len(courses))
	for _, c := range courses {
		fmt.Fprintf(&b, "- %s (%s)\n", c.CourseName, c.CourseID)
		fmt.Fprintf(&b, "  Instructor: %s\n", orTBA(c.Instructor))
		fmt.Fprintf(&b, "  Schedule: %s\n", orTBA(c.Schedule))
		fmt.Fprintf(&b, "  Capacity: %d/%d\n\n", c.EnrolledCount, c.Capacity)
	}
	return b.String()
}

func formatRegistered(session Session, c *models.Course) string {
	return fmt.Sprintf("🎉 Success, %s! You're now registered for %s (%s).\n\n", session.Name, c.CourseName, c.CourseID) +
		fmt.Sprintf("📅 Schedule: %s\n", orTBA(c.Schedule)) +
		fmt.Sprintf("👨‍🏫 Instructor: %s\n", orTBA(c.Instructor)) +
		fmt.Sprintf("🏫 Room: %s\n", orTBA(c.Room)) +
		fmt.Sprintf("💳 Credits: %s\n\n", credits(c)) +
		"Let me know if you want to view or drop a course!"
}

func formatCourseNotFound(courseID string) string {
	return fmt.Sprintf("Course %s does not exist.", courseID)
}

func formatCourseFull(c *models.Course) string {
	return fmt.Sprintf("%s is full.", c.CourseName)
}

func formatAlreadyRegistered(c *models.Course) string {
	return fmt.Sprintf("You are already registered for %s.", c.CourseName)
}

func formatNoRegistrations(session Session) string {
	return fmt.Sprintf("%s, you are not registered for any courses yet.", session.Name)
}

func formatRegisteredCourses(session Session, enrolled []models.EnrolledCourse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here are your registered courses, %s:\n\n", session.Name)
	for _, e := range enrolled {
		courseID := e.Registration.CourseID
		name, schedule, room := courseID, msgNotAvailable, msgNotAvailable
		if e.Course != nil {
			name, schedule, room = e.Course.CourseName, orTBA(e.Course.Schedule), orTBA(e.Course.Room)
		}
		fmt.Fprintf(&b, "- %s (%s)\n", name, courseID)
		fmt.Fprintf(&b, "  Schedule: %s\n", schedule)
		fmt.Fprintf(&b, "  Room: %s\n\n", room)
	}
	return b.String()
}

func formatNotRegistered(courseID string) string {
	return fmt.Sprintf("You are not registered for %s.", courseID)
}

func formatDropped(courseID string) string {
	return fmt.Sprintf("✔ You have successfully dropped %s.", courseID)
}
