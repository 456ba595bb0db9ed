package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devdish/devdish/backend/internal/middleware"
	"github.com/devdish/devdish/backend/internal/service"
	"github.com/devdish/devdish/backend/internal/types"
)

type AuthHandler struct {
	responder
	authService service.IAuthService
}

func NewAuthHandler(authService service.IAuthService, debug bool) *AuthHandler {
	return &AuthHandler{
		responder:   responder{debug: debug},
		authService: authService,
	}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.GET("/me", middleware.AuthMiddleware(h.authService), h.Me)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	user, token, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err, "User")
		return
	}

	respondMessage(c, http.StatusCreated, "User registered successfully", types.AuthResponse{User: user, Token: token})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err, "User")
		return
	}

	respondMessage(c, http.StatusOK, "Login successful", types.AuthResponse{User: user, Token: token})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err, "User")
		return
	}
	respond(c, http.StatusOK, gin.H{"user": user})
}
