package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devdish/devdish/backend/internal/middleware"
	"github.com/devdish/devdish/backend/internal/query"
	"github.com/devdish/devdish/backend/internal/service"
	"github.com/devdish/devdish/backend/internal/types"
)

// RecipeHandler serves the caller's own recipes.
type RecipeHandler struct {
	responder
	recipeService service.IRecipeService
	authService   service.IAuthService
	createLimiter *middleware.RateLimiter
}

func NewRecipeHandler(recipeService service.IRecipeService, authService service.IAuthService, createLimiter *middleware.RateLimiter, debug bool) *RecipeHandler {
	return &RecipeHandler{
		responder:     responder{debug: debug},
		recipeService: recipeService,
		authService:   authService,
		createLimiter: createLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")

	// images are linked from public pages, so they skip auth
	recipes.GET("/:id/image", h.GetImage)

	protected := recipes.Group("")
	protected.Use(middleware.AuthMiddleware(h.authService))
	{
		protected.GET("", h.ListRecipes)
		protected.GET("/stats", h.GetStats)
		protected.GET("/tags/user-tags", h.GetTags)
		protected.GET("/:id", h.GetRecipe)
		protected.POST("", h.createLimiter.RateLimitMiddleware(), h.CreateRecipe)
		protected.PUT("/:id", h.UpdateRecipe)
		protected.DELETE("/:id", h.DeleteRecipe)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var filter query.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.badRequest(c, err)
		return
	}

	result, err := h.recipeService.List(c.Request.Context(), userID, filter)
	if err != nil {
		h.fail(c, err, "Recipe")
		return
	}
	respond(c, http.StatusOK, result)
}

func (h *RecipeHandler) GetStats(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	stats, err := h.recipeService.Stats(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err, "Recipe")
		return
	}
	respond(c, http.StatusOK, stats)
}

func (h *RecipeHandler) GetTags(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	tags, err := h.recipeService.Tags(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err, "Recipe")
		return
	}
	respond(c, http.StatusOK, gin.H{"tags": tags})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	id, err := parseID(c)
	if err != nil {
		h.fail(c, err, "Recipe")
		return
	}

	recipe, err := h.recipeService.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.fail(c, err, "Recipe")
		return
	}
	respond(c, http.StatusOK, gin.H{"recipe": recipe})
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req types.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	recipe, err := h.recipeService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.fail(c, err, "Recipe")
		return
	}
	respondMessage(c, http.StatusCreated, "Recipe created successfully", gin.H{"recipe": recipe})
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	id, err := parseID(c)
	if err != nil {
		h.fail(c, err, "Recipe")
		return
	}

	var req types.UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	recipe, err := h.recipeService.Update(c.Request.Context(), userID, id, &req)
	if err != nil {
		h.fail(c, err, "Recipe")
		return
	}
	respondMessage(c, http.StatusOK, "Recipe updated successfully", gin.H{"recipe": recipe})
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	id, err := parseID(c)
	if err != nil {
		h.fail(c, err, "Recipe")
		return
	}

	if err := h.recipeService.Delete(c.Request.Context(), userID, id); err != nil {
		h.fail(c, err, "Recipe")
		return
	}
	respondMessage(c, http.StatusOK, "Recipe deleted successfully", nil)
}

func (h *RecipeHandler) GetImage(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.fail(c, err, "Recipe")
		return
	}

	obj, err := h.recipeService.Image(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Recipe")
		return
	}
	stream(c, obj)
}
