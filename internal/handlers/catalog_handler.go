package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizhub/quiz-service/internal/services"
	"github.com/quizhub/quiz-service/internal/utils"
)

// CatalogHandler serves subjects, categories and users
type CatalogHandler struct {
	BaseHandler
	catalogService services.CatalogService
}

func NewCatalogHandler(catalogService services.CatalogService, logger utils.Logger) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler:    NewBaseHandler(logger),
		catalogService: catalogService,
	}
}

// CreateSubject
// @Summary Create subject
// @Tags catalog
// @Accept json
// @Produce json
// @Param subject body services.CreateSubjectRequest true "Subject data"
// @Success 201 {object} models.Subject
// @Failure 409 {object} ErrorResponse
// @Router /subjects [post]
func (h *CatalogHandler) CreateSubject(c *gin.Context) {
	h.LogRequest(c, "Creating subject")

	var req services.CreateSubjectRequest
	if !h.bindJSON(c, &req) {
		return
	}

	subject, err := h.catalogService.CreateSubject(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, subject)
}

// ListSubjects
// @Summary List subjects
// @Tags catalog
// @Produce json
// @Success 200 {array} models.Subject
// @Router /subjects [get]
func (h *CatalogHandler) ListSubjects(c *gin.Context) {
	h.LogRequest(c, "Listing subjects")

	subjects, err := h.catalogService.ListSubjects(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subjects)
}

// GetSubject returns a subject with its categories
// @Summary Get subject
// @Tags catalog
// @Produce json
// @Param id path int true "Subject ID"
// @Success 200 {object} models.Subject
// @Failure 404 {object} ErrorResponse
// @Router /subjects/{id} [get]
func (h *CatalogHandler) GetSubject(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	subject, err := h.catalogService.GetSubject(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subject)
}

// CreateCategory
// @Summary Create category
// @Tags catalog
// @Accept json
// @Produce json
// @Param category body services.CreateCategoryRequest true "Category data"
// @Success 201 {object} models.Category
// @Failure 404 {object} ErrorResponse
// @Router /categories [post]
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	h.LogRequest(c, "Creating category")

	var req services.CreateCategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

// ListCategories
// @Summary List categories
// @Tags catalog
// @Produce json
// @Param subject_id query int false "Subject filter"
// @Success 200 {array} models.Category
// @Router /categories [get]
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	h.LogRequest(c, "Listing categories")

	categories, err := h.catalogService.ListCategories(c.Request.Context(), h.parseUintQueryPtr(c, "subject_id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

// CreateUser
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Param user body services.CreateUserRequest true "User data"
// @Success 201 {object} models.User
// @Failure 409 {object} ErrorResponse
// @Router /users [post]
func (h *CatalogHandler) CreateUser(c *gin.Context) {
	h.LogRequest(c, "Creating user")

	var req services.CreateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.catalogService.CreateUser(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// ListUsers
// @Summary List users
// @Tags users
// @Produce json
// @Param q query string false "Matches name or email"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} services.UserListResponse
// @Router /users [get]
func (h *CatalogHandler) ListUsers(c *gin.Context) {
	h.LogRequest(c, "Listing users")

	response, err := h.catalogService.ListUsers(
		c.Request.Context(),
		c.Query("q"),
		h.parseIntQuery(c, "limit", 20),
		h.parseIntQuery(c, "offset", 0),
	)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetUser
// @Summary Get user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [get]
func (h *CatalogHandler) GetUser(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.catalogService.GetUser(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
