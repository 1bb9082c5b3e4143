package lifecycle

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"montafacil/internal/domain"
	"montafacil/internal/middleware"
	"montafacil/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers lifecycle routes under the protected group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	services := rg.Group("/services")
	{
		services.POST("", middleware.StoreOnly(), h.CreateService)
		services.GET("/open", middleware.AssemblerOnly(), h.ListOpen)
		services.GET("/mine", middleware.StoreOnly(), h.ListMine)
		services.GET("/:id", h.GetService)
		services.DELETE("/:id", middleware.StoreOnly(), h.DeleteService)

		services.POST("/:id/apply", middleware.AssemblerOnly(), h.Apply)
		services.GET("/:id/applications", middleware.StoreOnly(), h.ListApplications)
		services.POST("/:id/confirm", middleware.AssemblerOnly(), h.Confirm)
		services.POST("/:id/complete", h.Complete)
	}

	applications := rg.Group("/applications")
	{
		applications.GET("/mine", middleware.AssemblerOnly(), h.ListMyApplications)
		applications.POST("/:id/accept", middleware.StoreOnly(), h.Accept)
	}
}

// CreateService godoc
// @Summary      Post a new assembly service
// @Tags         Services
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body CreateServiceRequest true "Service fields"
// @Success      201 {object} domain.Service
// @Router       /services [post]
func (h *Handler) CreateService(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	svc, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"service": svc})
}

func (h *Handler) ListOpen(c *gin.Context) {
	userID := c.GetInt64("user_id")

	listings, err := h.service.ListOpenFor(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"services": listings})
}

func (h *Handler) ListMine(c *gin.Context) {
	userID := c.GetInt64("user_id")

	services, err := h.service.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"services": services})
}

func (h *Handler) GetService(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	svc, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"service": svc})
}

func (h *Handler) DeleteService(c *gin.Context) {
	userID := c.GetInt64("user_id")
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, id); err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Apply godoc
// @Summary      Apply to an open service
// @Description  Idempotent: a repeated apply returns the existing application with its current status
// @Tags         Services
// @Security     BearerAuth
// @Router       /services/{id}/apply [post]
func (h *Handler) Apply(c *gin.Context) {
	userID := c.GetInt64("user_id")
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req ApplyRequest
	_ = c.ShouldBindJSON(&req)

	app, err := h.service.Apply(c.Request.Context(), userID, id, req.Note)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"application": app})
}

func (h *Handler) ListApplications(c *gin.Context) {
	userID := c.GetInt64("user_id")
	id, ok := parseID(c)
	if !ok {
		return
	}

	apps, err := h.service.ListApplications(c.Request.Context(), userID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"applications": apps})
}

func (h *Handler) ListMyApplications(c *gin.Context) {
	userID := c.GetInt64("user_id")

	apps, err := h.service.ListMyApplications(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"applications": apps})
}

// Accept godoc
// @Summary      Accept an application
// @Description  Atomically accepts one application, rejects its siblings and moves the service to in-progress
// @Tags         Services
// @Security     BearerAuth
// @Router       /applications/{id}/accept [post]
func (h *Handler) Accept(c *gin.Context) {
	userID := c.GetInt64("user_id")
	id, ok := parseID(c)
	if !ok {
		return
	}

	app, err := h.service.Accept(c.Request.Context(), userID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"application": app})
}

func (h *Handler) Confirm(c *gin.Context) {
	userID := c.GetInt64("user_id")
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.ConfirmByAssembler(c.Request.Context(), userID, id); err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"confirmed": true})
}

func (h *Handler) Complete(c *gin.Context) {
	userID := c.GetInt64("user_id")
	role := domain.UserRole(c.GetString("role"))
	id, ok := parseID(c)
	if !ok {
		return
	}

	svc, err := h.service.Complete(c.Request.Context(), userID, role, id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"service": svc})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrServiceNotOpen), errors.Is(err, ErrConflict), errors.Is(err, ErrNotDeletable):
		response.Error(c, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, ErrGeocodingFailed):
		response.Error(c, http.StatusBadGateway, "GEOCODING_FAILED", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid ID")
		return 0, false
	}
	return id, true
}
