package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/coursebot/internal/app/controllers"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	lexController *controllers.LexController,
	courseController *controllers.CourseController,
) {
	// API version group
	v1 := router.Group("/api/v1")

	lex := v1.Group("/lex")
	{
		lex.POST("/fulfillment", lexController.Fulfill)
	}

	courses := v1.Group("/courses")
	{
		courses.GET("", courseController.GetCourseAvailability)
		courses.GET("/:id/registrations", courseController.GetCourseRoster)
	}
}
