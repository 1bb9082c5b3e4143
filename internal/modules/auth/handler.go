package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"montafacil/internal/pkg/response"
	"montafacil/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register/store", h.RegisterStore)
		authGroup.POST("/register/assembler", h.RegisterAssembler)
		authGroup.POST("/login", h.Login)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	userGroup := protected.Group("/users")
	{
		userGroup.GET("/me", h.GetMe)
		userGroup.GET("/me/bank-account", h.GetBankAccount)
		userGroup.PUT("/me/bank-account", h.UpsertBankAccount)
	}
}

// RegisterStore godoc
// @Summary      Register a store owner
// @Description  Creates the user account and its store profile in one step
// @Tags         Auth
// @Param        request body RegisterStoreRequest true "Registration fields"
// @Success      201 {object} map[string]interface{}
// @Router       /auth/register/store [POST]
func (h *Handler) RegisterStore(c *gin.Context) {
	var req RegisterStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", errs)
		return
	}

	user, err := h.service.RegisterStore(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "This email is already registered")
			return
		}
		response.Error(c, http.StatusInternalServerError, "REGISTRATION_FAILED", "Failed to register store owner")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user": user})
}

// RegisterAssembler godoc
// @Summary      Register an assembler
// @Description  Creates the user account and its assembler profile in one step
// @Tags         Auth
// @Param        request body RegisterAssemblerRequest true "Registration fields"
// @Success      201 {object} map[string]interface{}
// @Router       /auth/register/assembler [POST]
func (h *Handler) RegisterAssembler(c *gin.Context) {
	var req RegisterAssemblerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", errs)
		return
	}

	user, err := h.service.RegisterAssembler(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "This email is already registered")
			return
		}
		response.Error(c, http.StatusInternalServerError, "REGISTRATION_FAILED", "Failed to register assembler")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user": user})
}

// Login godoc
// @Summary      Authenticate and issue a JWT
// @Tags         Auth
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} map[string]interface{}
// @Router       /auth/login [POST]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
			return
		}
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to log in")
		return
	}

	response.Success(c, http.StatusOK, result)
}

func (h *Handler) GetMe(c *gin.Context) {
	userID := c.GetInt64("user_id")

	result, err := h.service.Me(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
		return
	}

	response.Success(c, http.StatusOK, result)
}

func (h *Handler) GetBankAccount(c *gin.Context) {
	userID := c.GetInt64("user_id")

	account, err := h.service.GetBankAccount(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNoBankAccount) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "No bank account registered")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bank_account": account})
}

func (h *Handler) UpsertBankAccount(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req BankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", errs)
		return
	}

	account, err := h.service.UpsertBankAccount(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bank_account": account})
}
