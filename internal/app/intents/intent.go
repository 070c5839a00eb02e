package intents

import "strings"

// Kind is the closed set of intents the assistant fulfills.
type Kind int

const (
	KindUnknown Kind = iota
	KindGetAvailableCourses
	KindRegisterCourse
	KindViewRegisteredCourses
	KindUnregisterCourse
	KindLibraryHours
	KindFallback
)

// wireSuffix is appended to intent names by the conversation manager.
const wireSuffix = "Intent"

var kindNames = map[Kind]string{
	KindGetAvailableCourses:   "GetAvailableCourses",
	KindRegisterCourse:        "RegisterCourse",
	KindViewRegisteredCourses: "ViewRegisteredCourses",
	KindUnregisterCourse:      "UnregisterCourse",
	KindLibraryHours:          "LibraryHours",
	KindFallback:              "Fallback",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

// ParseKind maps an intent name onto a Kind. Both "RegisterCourseIntent" and
// "RegisterCourse" are accepted; anything else is KindUnknown.
func ParseKind(name string) Kind {
	if k, ok := kindsByName[strings.TrimSuffix(name, wireSuffix)]; ok {
		return k
	}
	return KindUnknown
}

// String returns the intent name without the wire suffix
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// WireName returns the intent name as the conversation manager sends it
func (k Kind) WireName() string {
	if k == KindUnknown {
		return ""
	}
	return k.String() + wireSuffix
}
