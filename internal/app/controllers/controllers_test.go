package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/yigit/coursebot/internal/app/intents"
	"github.com/yigit/coursebot/internal/app/models"
	"github.com/yigit/coursebot/internal/app/models/dto"
	"github.com/yigit/coursebot/internal/app/repositories"
	"github.com/yigit/coursebot/internal/app/services"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repos := repositories.NewBadgerRepositories(db, 10)
	courses := repos.Courses.(*repositories.BadgerCourseRepository)
	require.NoError(t, courses.PutCourse(context.Background(), &models.Course{
		CourseID: "CS101", CourseName: "Introduction to Programming", Capacity: 2, EnrolledCount: 1,
	}))
	require.NoError(t, courses.PutCourse(context.Background(), &models.Course{
		CourseID: "MATH201", CourseName: "Calculus II", Capacity: 1, EnrolledCount: 1,
	}))

	service := services.NewRegistrationService(repos.Courses, repos.Registrations, zerolog.Nop())
	lex := NewLexController(intents.NewDispatcher(service, zerolog.Nop()), time.Second, zerolog.Nop())
	course := NewCourseController(service)

	router := gin.New()
	router.POST("/api/v1/lex/fulfillment", lex.Fulfill)
	router.GET("/api/v1/courses", course.GetCourseAvailability)
	router.GET("/api/v1/courses/:id/registrations", course.GetCourseRoster)
	return router
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const registerEvent = `{
  "sessionId": "abc",
  "invocationSource": "FulfillmentCodeHook",
  "sessionState": {
    "intent": {
      "name": "RegisterCourseIntent",
      "state": "InProgress",
      "confirmationState": "None",
      "slots": {"CourseID": {"value": {"originalValue": "cs101", "interpretedValue": "CS101"}}}
    },
    "sessionAttributes": {"student_id": "S1001", "name": "Alex"}
  }
}`

func TestLexController_Fulfill(t *testing.T) {
	req := require.New(t)
	router := newTestRouter(t)

	rec := serve(router, http.MethodPost, "/api/v1/lex/fulfillment", registerEvent)
	req.Equal(http.StatusOK, rec.Code)

	var resp map[string]interface{}
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	state := resp["sessionState"].(map[string]interface{})
	req.Equal("Close", state["dialogAction"].(map[string]interface{})["type"])
	req.Equal(map[string]interface{}{"name": "RegisterCourseIntent", "state": "Fulfilled"}, state["intent"])
	req.Equal(map[string]interface{}{"student_id": "S1001", "name": "Alex"}, state["sessionAttributes"])

	messages := resp["messages"].([]interface{})
	req.Len(messages, 1)
	req.Equal("PlainText", messages[0].(map[string]interface{})["contentType"])
}

func TestLexController_Fulfill_Elicits_Missing_Slot(t *testing.T) {
	req := require.New(t)
	router := newTestRouter(t)
	body := `{"sessionState": {"intent": {"name": "UnregisterCourseIntent", "slots": {"CourseID": null}}}}`

	rec := serve(router, http.MethodPost, "/api/v1/lex/fulfillment", body)
	req.Equal(http.StatusOK, rec.Code)

	var resp dto.LexResponse
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	req.Equal(dto.DialogActionElicitSlot, resp.SessionState.DialogAction.Type)
	req.Equal("CourseID", resp.SessionState.DialogAction.SlotToElicit)
	req.Equal("UnregisterCourseIntent", resp.SessionState.Intent.Name)
	req.NotContains(rec.Body.String(), "sessionAttributes")
}

func TestLexController_Fulfill_Rejects_Malformed_Events(t *testing.T) {
	tests := []struct {
		description string
		body        string
	}{
		{"Should reject invalid JSON", `{"sessionState": `},
		{"Should reject a missing intent name", `{"sessionState": {"intent": {"slots": {}}}}`},
		{"Should reject a missing session state", `{"sessionId": "abc"}`},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			req := require.New(t)
			router := newTestRouter(t)

			rec := serve(router, http.MethodPost, "/api/v1/lex/fulfillment", tt.body)
			req.Equal(http.StatusBadRequest, rec.Code)

			var resp dto.ErrorResponse
			req.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
			req.False(resp.Success)
			req.Equal(dto.ErrorCodeValidationFailed, resp.Error.Code)
		})
	}
}

func TestCourseController_GetCourseAvailability(t *testing.T) {
	req := require.New(t)
	router := newTestRouter(t)

	rec := serve(router, http.MethodGet, "/api/v1/courses", "")
	req.Equal(http.StatusOK, rec.Code)

	var resp struct {
		Success bool                             `json:"success"`
		Data    []dto.CourseAvailabilityResponse `json:"data"`
	}
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	req.True(resp.Success)
	req.Len(resp.Data, 2)
	req.Equal("CS101", resp.Data[0].CourseID)
	req.Equal(1, resp.Data[0].AvailableSeats)
	req.Equal(dto.AvailabilityOpen, resp.Data[0].Status)
	req.Equal(dto.AvailabilityFull, resp.Data[1].Status)
}

func TestCourseController_GetCourseRoster(t *testing.T) {
	req := require.New(t)
	router := newTestRouter(t)
	req.Equal(http.StatusOK, serve(router, http.MethodPost, "/api/v1/lex/fulfillment", registerEvent).Code)

	rec := serve(router, http.MethodGet, "/api/v1/courses/CS101/registrations", "")
	req.Equal(http.StatusOK, rec.Code)

	var resp struct {
		Data dto.CourseRosterResponse `json:"data"`
	}
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	req.Equal(2, resp.Data.EnrolledCount)
	req.Len(resp.Data.Registrations, 1)
	req.Equal("S1001", resp.Data.Registrations[0].StudentID)

	missing := serve(router, http.MethodGet, "/api/v1/courses/NOPE/registrations", "")
	req.Equal(http.StatusNotFound, missing.Code)
	req.Contains(missing.Body.String(), "course NOPE not found")
}
