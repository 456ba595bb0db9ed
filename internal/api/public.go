package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devdish/devdish/backend/internal/middleware"
	"github.com/devdish/devdish/backend/internal/query"
	"github.com/devdish/devdish/backend/internal/service"
)

// PublicHandler serves shared recipes and their likes.
type PublicHandler struct {
	responder
	interactionService service.IInteractionService
	authService        service.IAuthService
	likeLimiter        *middleware.RateLimiter
}

func NewPublicHandler(interactionService service.IInteractionService, authService service.IAuthService, likeLimiter *middleware.RateLimiter, debug bool) *PublicHandler {
	return &PublicHandler{
		responder:          responder{debug: debug},
		interactionService: interactionService,
		authService:        authService,
		likeLimiter:        likeLimiter,
	}
}

func (h *PublicHandler) RegisterRoutes(router *gin.RouterGroup) {
	public := router.Group("/public")
	{
		public.GET("/recipes", h.ListRecipes)
		public.GET("/recipes/:id", h.GetRecipe)
		public.POST("/recipes/:id/like",
			middleware.AuthMiddleware(h.authService),
			h.likeLimiter.RateLimitMiddleware(),
			h.ToggleLike)
		public.GET("/liked", middleware.AuthMiddleware(h.authService), h.LikedRecipes)
		public.GET("/recipes/liked/mine", middleware.AuthMiddleware(h.authService), h.LikedRecipes)
	}
}

func (h *PublicHandler) ListRecipes(c *gin.Context) {
	var filter query.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.badRequest(c, err)
		return
	}

	result, err := h.interactionService.ListPublic(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err, "Recipe")
		return
	}
	respond(c, http.StatusOK, result)
}

// GetRecipe looks a recipe up by its public identifier.
func (h *PublicHandler) GetRecipe(c *gin.Context) {
	recipe, err := h.interactionService.GetPublic(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Recipe")
		return
	}
	respond(c, http.StatusOK, gin.H{"recipe": recipe})
}

func (h *PublicHandler) ToggleLike(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	id, err := parseID(c)
	if err != nil {
		h.fail(c, err, "Recipe")
		return
	}

	result, err := h.interactionService.ToggleLike(c.Request.Context(), id, userID)
	if err != nil {
		h.fail(c, err, "Recipe")
		return
	}
	respond(c, http.StatusOK, result)
}

func (h *PublicHandler) LikedRecipes(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var filter query.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.badRequest(c, err)
		return
	}

	result, err := h.interactionService.Liked(c.Request.Context(), userID, filter)
	if err != nil {
		h.fail(c, err, "Recipe")
		return
	}
	respond(c, http.StatusOK, result)
}
