package payment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"montafacil/internal/middleware"
	"montafacil/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers payment routes under the protected group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	services := rg.Group("/services/:id/payment")
	{
		services.POST("/charge", middleware.StoreOnly(), h.CreateCharge)
		services.POST("/proof", h.SubmitProof)
		services.POST("/decision", h.Decide)
	}
}

// RegisterWebhookRoutes registers the gateway callback outside auth: the
// gateway does not hold a user token.
func (h *Handler) RegisterWebhookRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/pix", h.Webhook)
}

// CreateCharge godoc
// @Summary      Create a PIX charge for a confirmed service
// @Tags         Payments
// @Security     BearerAuth
// @Produce      json
// @Success      201 {object} CreateChargeResponse
// @Router       /services/{id}/payment/charge [post]
func (h *Handler) CreateCharge(c *gin.Context) {
	userID := c.GetInt64("user_id")
	id, ok := parseID(c)
	if !ok {
		return
	}

	charge, err := h.service.CreateCharge(c.Request.Context(), userID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"charge": charge})
}

func (h *Handler) SubmitProof(c *gin.Context) {
	userID := c.GetInt64("user_id")
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req ProofRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.service.SubmitManualProof(c.Request.Context(), userID, id, req); err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submitted": true})
}

func (h *Handler) Decide(c *gin.Context) {
	userID := c.GetInt64("user_id")
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.service.Decide(c.Request.Context(), userID, id, req); err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"decided": true})
}

// Webhook godoc
// @Summary      PIX gateway status callback
// @Description  Idempotent: redeliveries of a processed reference are acknowledged without side effects
// @Tags         Payments
// @Router       /webhooks/pix [post]
func (h *Handler) Webhook(c *gin.Context) {
	var payload WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.service.ReconcileWebhook(c.Request.Context(), payload); err != nil {
		if errors.Is(err, ErrUnknownReference) {
			response.Error(c, http.StatusNotFound, "UNKNOWN_REFERENCE", err.Error())
			return
		}
		// Non-2xx so the gateway retries the delivery.
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	response.Success(c, http.StatusOK, gin.H{"received": true})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrNotReady):
		response.Error(c, http.StatusConflict, "NOT_READY", err.Error())
	case errors.Is(err, ErrNoDocument):
		response.Error(c, http.StatusUnprocessableEntity, "NO_DOCUMENT", err.Error())
	case errors.Is(err, ErrGatewayUnavailable):
		response.Error(c, http.StatusBadGateway, "GATEWAY_UNAVAILABLE", err.Error())
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
