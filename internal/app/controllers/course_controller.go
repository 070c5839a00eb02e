package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/coursebot/internal/app/models/dto"
	"github.com/yigit/coursebot/internal/app/services"
	"github.com/yigit/coursebot/internal/middleware"
)

// CourseController serves the read-only course reports
type CourseController struct {
	registrationService services.RegistrationService
}

// NewCourseController creates a new CourseController
func NewCourseController(registrationService services.RegistrationService) *CourseController {
	return &CourseController{
		registrationService: registrationService,
	}
}

// GetCourseAvailability lists every course with its seat availability
// @Summary Get course availability
// @Tags courses
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.CourseAvailabilityResponse} "Courses retrieved successfully"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses [get]
func (c *CourseController) GetCourseAvailability(ctx *gin.Context) {
	courses, err := c.registrationService.ListCourses(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewCourseAvailabilityResponses(courses)))
}

// GetCourseRoster lists the registrations of one course
// @Summary Get course roster
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.CourseRosterResponse} "Roster retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id}/registrations [get]
func (c *CourseController) GetCourseRoster(ctx *gin.Context) {
	course, regs, err := c.registrationService.CourseRoster(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewCourseRosterResponse(course, regs)))
}
