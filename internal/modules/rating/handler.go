package rating

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"montafacil/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	services := rg.Group("/services/:id/ratings")
	{
		services.POST("", h.Submit)
		services.GET("", h.List)
	}
}

// Submit godoc
// @Summary      Rate the counterparty of a completed service
// @Description  One rating per direction; a second submission returns 409
// @Tags         Ratings
// @Security     BearerAuth
// @Router       /services/{id}/ratings [post]
func (h *Handler) Submit(c *gin.Context) {
	userID := c.GetInt64("user_id")
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.service.Submit(c.Request.Context(), userID, id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

func (h *Handler) List(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ratings, err := h.service.ListByService(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"ratings": ratings})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrNotCompleted), errors.Is(err, ErrAlreadyRated), errors.Is(err, ErrNoCounterparty):
		response.Error(c, http.StatusConflict, "CONFLICT", err.Error())
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
