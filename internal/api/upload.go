package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/devdish/devdish/backend/internal/middleware"
	"github.com/devdish/devdish/backend/internal/service"
	"github.com/devdish/devdish/backend/internal/types"
)

type UploadHandler struct {
	responder
	imageService  service.IImageService
	recipeService service.IRecipeService
	authService   service.IAuthService
	uploadLimiter *middleware.RateLimiter
}

func NewUploadHandler(imageService service.IImageService, recipeService service.IRecipeService, authService service.IAuthService, uploadLimiter *middleware.RateLimiter, debug bool) *UploadHandler {
	return &UploadHandler{
		responder:     responder{debug: debug},
		imageService:  imageService,
		recipeService: recipeService,
		authService:   authService,
		uploadLimiter: uploadLimiter,
	}
}

func (h *UploadHandler) RegisterRoutes(router *gin.RouterGroup) {
	upload := router.Group("/upload")
	upload.Use(middleware.AuthMiddleware(h.authService))
	{
		upload.POST("/image", h.uploadLimiter.RateLimitMiddleware(), h.UploadImage)
	}
}

// UploadImage stores an image. With a recipeId form value the image is
// attached to that recipe, replacing any previous one.
func (h *UploadHandler) UploadImage(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	up, closeFile, err := formUpload(c, "image")
	if err != nil {
		h.fail(c, err, "Image")
		return
	}
	defer closeFile()

	if raw := c.PostForm("recipeId"); raw != "" {
		recipeID, err := uuid.Parse(raw)
		if err != nil {
			h.fail(c, service.ErrInvalidID, "Recipe")
			return
		}
		recipe, err := h.recipeService.SetImage(c.Request.Context(), userID, recipeID, up)
		if err != nil {
			h.fail(c, err, "Recipe")
			return
		}
		respondMessage(c, http.StatusCreated, "Image uploaded successfully", types.UploadResponse{
			Image:    *recipe.Image,
			URL:      "/api/recipes/" + recipe.ID.String() + "/image",
			RecipeID: recipe.ID.String(),
		})
		return
	}

	img, err := h.imageService.Upload(c.Request.Context(), userID, up)
	if err != nil {
		h.fail(c, err, "Image")
		return
	}
	respondMessage(c, http.StatusCreated, "Image uploaded successfully", types.UploadResponse{Image: *img})
}

// formUpload opens the multipart file stored under field. The returned
// func closes it.
func formUpload(c *gin.Context, field string) (*service.Upload, func(), error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, service.NewValidationError(field, "No file uploaded")
		}
		return nil, func() {}, service.NewValidationError(field, "Could not read uploaded file")
	}

	file, err := header.Open()
	if err != nil {
		return nil, func() {}, err
	}

	return &service.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}, func() { file.Close() }, nil
}
