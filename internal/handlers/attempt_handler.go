package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizhub/quiz-service/internal/services"
	"github.com/quizhub/quiz-service/internal/utils"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
}

func NewAttemptHandler(attemptService services.AttemptService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
	}
}

// CreateAttempt opens a new attempt for a user on a quiz
// @Summary Create attempt
// @Tags attempts
// @Accept json
// @Produce json
// @Param attempt body services.CreateAttemptRequest true "Attempt data"
// @Success 201 {object} models.QuizAttempt
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts [post]
func (h *AttemptHandler) CreateAttempt(c *gin.Context) {
	h.LogRequest(c, "Creating attempt")

	var req services.CreateAttemptRequest
	if !h.bindJSON(c, &req) {
		return
	}

	attempt, err := h.attemptService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, attempt)
}

// GetAttempt returns an attempt with its user and quiz
// @Summary Get attempt
// @Tags attempts
// @Produce json
// @Param id path int true "Attempt ID"
// @Success 200 {object} models.QuizAttempt
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{id} [get]
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Getting attempt", "attempt_id", id)

	attempt, err := h.attemptService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

// ListAttempts returns every attempt, newest first
// @Summary List attempts
// @Tags attempts
// @Produce json
// @Success 200 {array} models.QuizAttempt
// @Router /attempts [get]
func (h *AttemptHandler) ListAttempts(c *gin.Context) {
	h.LogRequest(c, "Listing attempts")

	attempts, err := h.attemptService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempts)
}

// UpdateScore patches the coarse 0-100 score of an attempt
// @Summary Update attempt score
// @Tags attempts
// @Accept json
// @Produce json
// @Param id path int true "Attempt ID"
// @Param score body services.UpdateScoreRequest true "Score"
// @Success 200 {object} models.QuizAttempt
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{id}/score [patch]
func (h *AttemptHandler) UpdateScore(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Updating attempt score", "attempt_id", id)

	var req services.UpdateScoreRequest
	if !h.bindJSON(c, &req) {
		return
	}

	attempt, err := h.attemptService.UpdateScore(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

// CompleteAttempt records the final result of an attempt
// @Summary Complete attempt
// @Description Moves a CREATED attempt to COMPLETED. A second completion returns 409.
// @Tags attempts
// @Accept json
// @Produce json
// @Param id path int true "Attempt ID"
// @Param result body services.CompleteAttemptRequest true "Result"
// @Success 200 {object} models.QuizAttempt
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /attempts/{id}/complete [post]
func (h *AttemptHandler) CompleteAttempt(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Completing attempt", "attempt_id", id)

	var req services.CompleteAttemptRequest
	if !h.bindJSON(c, &req) {
		return
	}

	attempt, err := h.attemptService.Complete(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

// DeleteAttempt removes an attempt that no answer references
// @Summary Delete attempt
// @Tags attempts
// @Produce json
// @Param id path int true "Attempt ID"
// @Success 200 {object} SuccessResponse{data=services.DeleteResponse}
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /attempts/{id} [delete]
func (h *AttemptHandler) DeleteAttempt(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting attempt", "attempt_id", id)

	result, err := h.attemptService.Delete(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Attempt deleted successfully",
		Data:    result,
	})
}
