package intents

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"GetAvailableCoursesIntent", KindGetAvailableCourses},
		{"RegisterCourseIntent", KindRegisterCourse},
		{"RegisterCourse", KindRegisterCourse},
		{"ViewRegisteredCoursesIntent", KindViewRegisteredCourses},
		{"UnregisterCourseIntent", KindUnregisterCourse},
		{"LibraryHoursIntent", KindLibraryHours},
		{"FallbackIntent", KindFallback},
		{"registercourseintent", KindUnknown},
		{"Intent", KindUnknown},
		{"", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseKind(tt.name))
		})
	}
}

func TestKind_Names_Round_Trip(t *testing.T) {
	for k := range kindNames {
		assert.Equal(t, k, ParseKind(k.WireName()))
		assert.Equal(t, k, ParseKind(k.String()))
	}
	assert.Equal(t, "Unknown", KindUnknown.String())
	assert.Empty(t, KindUnknown.WireName())
}

func TestSessionFromAttributes(t *testing.T) {
	s := SessionFromAttributes(map[string]string{AttrStudentID: " S1001 ", AttrName: "Alex"})
	assert.Equal(t, Session{StudentID: "S1001", Name: "Alex"}, s)
	assert.True(t, s.Identified())

	anonymous := SessionFromAttributes(nil)
	assert.Equal(t, "Student", anonymous.Name)
	assert.False(t, anonymous.Identified())
}
