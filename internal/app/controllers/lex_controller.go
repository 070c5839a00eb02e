package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/coursebot/internal/app/intents"
	"github.com/yigit/coursebot/internal/app/models/dto"
	"github.com/yigit/coursebot/internal/middleware"
)

// LexController receives fulfillment events from the conversation manager
type LexController struct {
	dispatcher     *intents.Dispatcher
	requestTimeout time.Duration
	logger         zerolog.Logger
}

// NewLexController creates a new LexController
func NewLexController(dispatcher *intents.Dispatcher, requestTimeout time.Duration, logger zerolog.Logger) *LexController {
	return &LexController{
		dispatcher:     dispatcher,
		requestTimeout: requestTimeout,
		logger:         logger,
	}
}

// Fulfill handles one fulfillment event
// @Summary Fulfill an intent
// @Description Fulfills one conversation turn and returns a Close or ElicitSlot dialog action
// @Tags lex
// @Accept json
// @Produce json
// @Param request body dto.LexEvent true "Fulfillment event"
// @Success 200 {object} dto.LexResponse "Dialog action for the conversation manager"
// @Failure 400 {object} dto.ErrorResponse "Malformed event"
// @Router /lex/fulfillment [post]
func (c *LexController) Fulfill(ctx *gin.Context) {
	var event dto.LexEvent
	if !middleware.BindAndValidate(ctx, &event) {
		c.logger.Warn().Msg("Rejected malformed fulfillment event")
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), c.requestTimeout)
	defer cancel()

	ctx.JSON(http.StatusOK, c.dispatcher.Dispatch(reqCtx, &event))
}
