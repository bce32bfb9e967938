package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quizhub/quiz-service/internal/services"
	"github.com/quizhub/quiz-service/internal/utils"
	"github.com/quizhub/quiz-service/internal/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type LeaderboardHandler struct {
	BaseHandler
	rankingService services.RankingService
	exportService  services.ExportService
	validator      *validator.Validator
}

func NewLeaderboardHandler(
	rankingService services.RankingService,
	exportService services.ExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *LeaderboardHandler {
	return &LeaderboardHandler{
		BaseHandler:    NewBaseHandler(logger),
		rankingService: rankingService,
		exportService:  exportService,
		validator:      validator,
	}
}

// GetGeneralLeaderboard ranks users over every completed attempt
// @Summary General leaderboard
// @Tags leaderboard
// @Produce json
// @Param limit query int false "Number of entries" default(10)
// @Success 200 {array} services.LeaderboardEntry
// @Failure 400 {object} ErrorResponse
// @Router /leaderboard [get]
func (h *LeaderboardHandler) GetGeneralLeaderboard(c *gin.Context) {
	query, ok := h.bindQuery(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Getting general leaderboard", "limit", query.Limit)

	entries, err := h.rankingService.GeneralLeaderboard(c.Request.Context(), query.Limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// GetSubjectLeaderboard ranks users over the attempts on one subject's quizzes
// @Summary Subject leaderboard
// @Tags leaderboard
// @Produce json
// @Param subject_id path int true "Subject ID"
// @Param limit query int false "Number of entries" default(10)
// @Success 200 {array} services.LeaderboardEntry
// @Failure 400 {object} ErrorResponse
// @Router /leaderboard/subjects/{subject_id} [get]
func (h *LeaderboardHandler) GetSubjectLeaderboard(c *gin.Context) {
	subjectID, ok := h.parseIDParam(c, "subject_id")
	if !ok {
		return
	}
	query, ok := h.bindQuery(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Getting subject leaderboard", "subject_id", subjectID, "limit", query.Limit)

	entries, err := h.rankingService.LeaderboardBySubject(c.Request.Context(), subjectID, query.Limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// GetUserStats returns a user's aggregate statistics and recent attempts
// @Summary User statistics
// @Tags leaderboard
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} services.UserStatsResponse
// @Failure 404 {object} ErrorResponse
// @Router /leaderboard/users/{user_id} [get]
func (h *LeaderboardHandler) GetUserStats(c *gin.Context) {
	userID, ok := h.parseIDParam(c, "user_id")
	if !ok {
		return
	}

	h.LogRequest(c, "Getting user statistics", "user_id", userID)

	stats, err := h.rankingService.UserStats(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetRecentBestScores lists the highest raw scores of the last days
// @Summary Recent best scores
// @Tags leaderboard
// @Produce json
// @Param days query int false "Window in days" default(7)
// @Param limit query int false "Number of entries" default(10)
// @Success 200 {array} services.RecentScoreEntry
// @Failure 400 {object} ErrorResponse
// @Router /leaderboard/recent [get]
func (h *LeaderboardHandler) GetRecentBestScores(c *gin.Context) {
	query, ok := h.bindQuery(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Getting recent best scores", "days", query.Days, "limit", query.Limit)

	entries, err := h.rankingService.RecentBestScores(c.Request.Context(), query.Days, query.Limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// ExportLeaderboard downloads the leaderboard as an xlsx workbook
// @Summary Export leaderboard
// @Tags leaderboard
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param subject_id query int false "Restrict to one subject"
// @Param limit query int false "Number of entries" default(10)
// @Success 200 {file} file
// @Router /leaderboard/export [get]
func (h *LeaderboardHandler) ExportLeaderboard(c *gin.Context) {
	query, ok := h.bindQuery(c)
	if !ok {
		return
	}
	subjectID := h.parseUintQueryPtr(c, "subject_id")

	h.LogRequest(c, "Exporting leaderboard", "limit", query.Limit)

	data, err := h.exportService.ExportLeaderboard(c.Request.Context(), subjectID, query.Limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("leaderboard-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *LeaderboardHandler) bindQuery(c *gin.Context) (validator.LeaderboardQuery, bool) {
	var query validator.LeaderboardQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Kind:    string(services.KindValidation),
			Details: err.Error(),
		})
		return query, false
	}
	if err := h.validator.Validate(&query); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Kind:    string(services.KindValidation),
			Details: err,
		})
		return query, false
	}
	return query, true
}
