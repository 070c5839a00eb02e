package intents

import "strings"

// Session attribute keys set by the sign-in flow
const (
	AttrStudentID = "student_id"
	AttrName      = "name"
)

const defaultStudentName = "Student"

// Session is the caller identity carried in the session attributes.
// The dispatcher trusts it as given.
type Session struct {
	StudentID string
	Name      string
}

// SessionFromAttributes reads the session identity. A missing name falls back to "Student".
func SessionFromAttributes(attrs map[string]string) Session {
	s := Session{
		StudentID: strings.TrimSpace(attrs[AttrStudentID]),
		Name:      strings.TrimSpace(attrs[AttrName]),
	}
	if s.Name == "" {
		s.Name = defaultStudentName
	}
	return s
}

// Identified reports whether a student ID is present
func (s Session) Identified() bool {
	return s.StudentID != ""
}
