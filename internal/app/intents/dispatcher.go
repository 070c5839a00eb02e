// Package intents fulfills the assistant's intents. Every inbound event yields
// exactly one outbound event: a terminal Close or an ElicitSlot.
package intents

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/coursebot/internal/app/models/dto"
	"github.com/yigit/coursebot/internal/app/services"
	"github.com/yigit/coursebot/internal/pkg/apperrors"
)

// SlotCourseID is the slot holding the course the student refers to
const SlotCourseID = "CourseID"

// Dispatcher routes intents to their handlers
type Dispatcher struct {
	registrations services.RegistrationService
	logger        zerolog.Logger
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(registrations services.RegistrationService, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		registrations: registrations,
		logger:        logger,
	}
}

// Dispatch fulfills one event. Unrecognized intents are answered, not rejected.
func (d *Dispatcher) Dispatch(ctx context.Context, event *dto.LexEvent) *dto.LexResponse {
	name := event.SessionState.Intent.Name
	kind := ParseKind(name)
	session := SessionFromAttributes(event.SessionState.SessionAttributes)

	log := d.logger.With().Str("intent", name).Str("studentID", session.StudentID).Logger()
	log.Info().Msg("Processing intent")

	switch kind {
	case KindGetAvailableCourses:
		return d.handleAvailableCourses(ctx, event, log)
	case KindRegisterCourse:
		return d.handleRegisterCourse(ctx, event, session, log)
	case KindViewRegisteredCourses:
		return d.handleViewCourses(ctx, event, session, log)
	case KindUnregisterCourse:
		return d.handleUnregisterCourse(ctx, event, session, log)
	case KindLibraryHours:
		return fulfilled(event, msgLibraryHours)
	case KindFallback:
		return fulfilled(event, msgFallback)
	default:
		log.Warn().Msg("Unrecognized intent")
		return fulfilled(event, msgUnhandledIntent)
	}
}

func courseSlot(event *dto.LexEvent) (string, bool) {
	value, ok := event.SessionState.Intent.SlotValue(SlotCourseID)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

func (d *Dispatcher) handleAvailableCourses(ctx context.Context, event *dto.LexEvent, log zerolog.Logger) *dto.LexResponse {
	courses, err := d.registrations.ListCourses(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error listing courses")
		return failed(event, msgListCoursesFailed)
	}
	log.Info().Int("count", len(courses)).Msg("Found available courses")

	if len(courses) == 0 {
		log.Warn().Msg("No courses found")
		return fulfilled(event, msgNoCourses)
	}
	return fulfilled(event, formatAvailableCourses(courses))
}

// handleRegisterCourse asks for the course before checking identity, so a missing
// slot always yields an elicitation.
func (d *Dispatcher) handleRegisterCourse(ctx context.Context, event *dto.LexEvent, session Session, log zerolog.Logger) *dto.LexResponse {
	courseID, ok := courseSlot(event)
	if !ok {
		return elicitSlot(event, SlotCourseID, msgAskRegisterCourse)
	}
	if !session.Identified() {
		log.Error().Msg("Missing student_id in session attributes")
		return failed(event, msgIdentityError)
	}

	course, err := d.registrations.Register(ctx, session.StudentID, courseID)
	switch {
	case err == nil:
		return fulfilled(event, formatRegistered(session, course))
	case errors.Is(err, apperrors.ErrCourseNotFound):
		return failed(event, formatCourseNotFound(courseID))
	case errors.Is(err, apperrors.ErrCourseFull) && course != nil:
		return failed(event, formatCourseFull(course))
	case errors.Is(err, apperrors.ErrAlreadyRegistered) && course != nil:
		return failed(event, formatAlreadyRegistered(course))
	default:
		log.Error().Err(err).Str("courseID", courseID).Msg("Error during registration")
		return failed(event, msgRegisterFailed)
	}
}

func (d *Dispatcher) handleViewCourses(ctx context.Context, event *dto.LexEvent, session Session, log zerolog.Logger) *dto.LexResponse {
	if !session.Identified() {
		log.Error().Msg("Missing student_id in session attributes")
		return failed(event, msgIdentityError)
	}

	enrolled, err := d.registrations.ListStudentCourses(ctx, session.StudentID)
	if err != nil {
		log.Error().Err(err).Msg("Error listing registered courses")
		return failed(event, msgViewCoursesFailed)
	}

	if len(enrolled) == 0 {
		return fulfilled(event, formatNoRegistrations(session))
	}
	return fulfilled(event, formatRegisteredCourses(session, enrolled))
}

func (d *Dispatcher) handleUnregisterCourse(ctx context.Context, event *dto.LexEvent, session Session, log zerolog.Logger) *dto.LexResponse {
	courseID, ok := courseSlot(event)
	if !ok {
		return elicitSlot(event, SlotCourseID, msgAskDropCourse)
	}
	if !session.Identified() {
		log.Error().Msg("Missing student_id in session attributes")
		return failed(event, msgIdentityError)
	}

	_, err := d.registrations.Unregister(ctx, session.StudentID, courseID)
	switch {
	case err == nil:
		return fulfilled(event, formatDropped(courseID))
	case errors.Is(err, apperrors.ErrRegistrationNotFound):
		return failed(event, formatNotRegistered(courseID))
	default:
		log.Error().Err(err).Str("courseID", courseID).Msg("Error during unregistration")
		return failed(event, msgUnregisterFailed)
	}
}
