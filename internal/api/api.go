package api

import (
	"github.com/gin-gonic/gin"

	"github.com/devdish/devdish/backend/internal/middleware"
	"github.com/devdish/devdish/backend/internal/service"
)

// Services bundles what the handlers depend on.
type Services struct {
	Auth         service.IAuthService
	Recipes      service.IRecipeService
	Interactions service.IInteractionService
	Users        service.IUserService
	Images       service.IImageService
}

// Limiters holds the per-user rate limiters. Nil limiters are disabled.
type Limiters struct {
	Like           *middleware.RateLimiter
	RecipeCreation *middleware.RateLimiter
	Upload         *middleware.RateLimiter
}

// SetupAPI registers every route under /api, plus /health at the root.
func SetupAPI(router *gin.Engine, svc Services, limiters Limiters, checks map[string]Check, debug bool) {
	useJSONFieldNames()

	NewHealthHandler(checks).RegisterRoutes(router)

	api := router.Group("/api")
	NewAuthHandler(svc.Auth, debug).RegisterRoutes(api)
	NewRecipeHandler(svc.Recipes, svc.Auth, limiters.RecipeCreation, debug).RegisterRoutes(api)
	NewPublicHandler(svc.Interactions, svc.Auth, limiters.Like, debug).RegisterRoutes(api)
	NewUserHandler(svc.Users, svc.Auth, limiters.Upload, debug).RegisterRoutes(api)
	NewUploadHandler(svc.Images, svc.Recipes, svc.Auth, limiters.Upload, debug).RegisterRoutes(api)
}
