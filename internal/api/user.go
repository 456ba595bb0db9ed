package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devdish/devdish/backend/internal/middleware"
	"github.com/devdish/devdish/backend/internal/query"
	"github.com/devdish/devdish/backend/internal/service"
	"github.com/devdish/devdish/backend/internal/types"
)

type UserHandler struct {
	responder
	userService   service.IUserService
	authService   service.IAuthService
	uploadLimiter *middleware.RateLimiter
}

func NewUserHandler(userService service.IUserService, authService service.IAuthService, uploadLimiter *middleware.RateLimiter, debug bool) *UserHandler {
	return &UserHandler{
		responder:     responder{debug: debug},
		userService:   userService,
		authService:   authService,
		uploadLimiter: uploadLimiter,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("/:id", h.GetProfile)
		users.GET("/:id/profile", h.GetProfile)
		users.GET("/:id/recipes", h.GetPublicRecipes)
		users.GET("/:id/avatar", h.GetAvatar)
		users.PUT("/profile", middleware.AuthMiddleware(h.authService), h.UpdateProfile)
		users.POST("/avatar",
			middleware.AuthMiddleware(h.authService),
			h.uploadLimiter.RateLimitMiddleware(),
			h.UploadAvatar)
	}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.fail(c, err, "User")
		return
	}

	profile, err := h.userService.Profile(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "User")
		return
	}
	respond(c, http.StatusOK, profile)
}

func (h *UserHandler) GetPublicRecipes(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.fail(c, err, "User")
		return
	}

	var filter query.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.badRequest(c, err)
		return
	}

	result, err := h.userService.PublicRecipes(c.Request.Context(), id, filter)
	if err != nil {
		h.fail(c, err, "User")
		return
	}
	respond(c, http.StatusOK, result)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req types.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		h.fail(c, err, "User")
		return
	}
	respondMessage(c, http.StatusOK, "Profile updated successfully", gin.H{"user": user})
}

func (h *UserHandler) UploadAvatar(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	up, closeFile, err := formUpload(c, "avatar")
	if err != nil {
		h.fail(c, err, "User")
		return
	}
	defer closeFile()

	user, err := h.userService.SetAvatar(c.Request.Context(), userID, up)
	if err != nil {
		h.fail(c, err, "User")
		return
	}
	respondMessage(c, http.StatusOK, "Avatar uploaded successfully", gin.H{"user": user})
}

func (h *UserHandler) GetAvatar(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.fail(c, err, "User")
		return
	}

	obj, err := h.userService.Avatar(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "User")
		return
	}
	stream(c, obj)
}
