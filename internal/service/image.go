package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	_ "image/gif"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/devdish/devdish/backend/config"
	"github.com/devdish/devdish/backend/internal/blob"
	"github.com/devdish/devdish/backend/internal/model"
)

const uploadPrefix = "uploads"

const defaultMaxImagePixels = 40_000_000

// allowedImageTypes lists the raster formats accepted for upload. Each has
// a registered decoder, so the payload is checked against its header.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Upload is an image file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImageService validates, resizes and stores uploaded images.
type ImageService struct {
	store     blob.Store
	maxBytes  int64
	maxWidth  int
	maxPixels int64
}

var _ IImageService = (*ImageService)(nil)

func NewImageService(store blob.Store, cfg config.StorageConfig) *ImageService {
	maxPixels := cfg.MaxImagePixels
	if maxPixels <= 0 {
		maxPixels = defaultMaxImagePixels
	}
	return &ImageService{
		store:     store,
		maxBytes:  cfg.MaxImageBytes,
		maxWidth:  cfg.MaxImageWidth,
		maxPixels: maxPixels,
	}
}

func userPrefix(ownerID uuid.UUID) string {
	return path.Join(uploadPrefix, ownerID.String()) + "/"
}

// Upload stores up under the owner's prefix. Images wider than the
// configured maximum are downscaled; JPEG and PNG keep their encoding.
func (s *ImageService) Upload(ctx context.Context, ownerID uuid.UUID, up *Upload) (*model.Image, error) {
	if up == nil || up.Body == nil {
		return nil, NewValidationError("image", "No file uploaded")
	}
	if up.Size > s.maxBytes {
		return nil, NewValidationError("image", fmt.Sprintf("File size exceeds the %d byte limit", s.maxBytes))
	}

	data, err := io.ReadAll(io.LimitReader(up.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, NewValidationError("image", fmt.Sprintf("File size exceeds the %d byte limit", s.maxBytes))
	}

	contentType := mediaType(up.ContentType)
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mediaType(http.DetectContentType(data))
	}
	if !allowedImageTypes[contentType] {
		return nil, NewValidationError("image", "Only JPEG, PNG, GIF and WebP images are allowed")
	}

	data, err = s.fit(data, contentType)
	if errors.Is(err, errTooManyPixels) {
		return nil, NewValidationError("image", fmt.Sprintf("Image dimensions exceed the %d pixel limit", s.maxPixels))
	}
	if err != nil {
		return nil, NewValidationError("image", "Invalid image file")
	}

	ext := strings.ToLower(filepath.Ext(up.Filename))
	img := &model.Image{
		Key:         userPrefix(ownerID) + uuid.NewString() + ext,
		ContentType: contentType,
		Filename:    filepath.Base(up.Filename),
	}
	if err := s.store.Put(ctx, img.Key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return nil, err
	}

	log.Debug().Str("key", img.Key).Int("bytes", len(data)).Msg("Stored image")
	return img, nil
}

var errTooManyPixels = errors.New("image has too many pixels")

func mediaType(contentType string) string {
	t, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(t))
}

// fit checks the image header and downscales JPEG and PNG images wider
// than maxWidth. Other formats are stored untouched. Images whose header
// claims more than maxPixels are rejected before any pixel data is decoded.
func (s *ImageService) fit(data []byte, contentType string) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.New("image has no pixels")
	}
	if int64(cfg.Width)*int64(cfg.Height) > s.maxPixels {
		return nil, errTooManyPixels
	}
	if contentType != "image/jpeg" && contentType != "image/png" {
		return data, nil
	}
	if s.maxWidth <= 0 || cfg.Width <= s.maxWidth {
		return data, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	height := cfg.Height * s.maxWidth / cfg.Width
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, s.maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if contentType == "image/png" {
		err = png.Encode(&buf, dst)
	} else {
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *ImageService) Open(ctx context.Context, img *model.Image) (*blob.Object, error) {
	if img.IsZero() {
		return nil, ErrImageMissing
	}
	obj, err := s.store.Get(ctx, img.Key)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, ErrImageMissing
	}
	if err != nil {
		return nil, err
	}
	if img.ContentType != "" {
		obj.ContentType = img.ContentType
	}
	return obj, nil
}

// Remove deletes img from the store. Failures only leave an orphaned
// object, so they are logged and dropped.
func (s *ImageService) Remove(ctx context.Context, img *model.Image) {
	if img.IsZero() {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.store.Delete(ctx, img.Key); err != nil {
		log.Warn().Err(err).Str("key", img.Key).Msg("Failed to delete image object")
	}
}

// CheckOwnership rejects image references outside the owner's upload prefix.
func (s *ImageService) CheckOwnership(ownerID uuid.UUID, img *model.Image) error {
	if img.IsZero() {
		return nil
	}
	key := path.Clean(img.Key)
	if key != img.Key || !strings.HasPrefix(key, userPrefix(ownerID)) {
		return NewValidationError("image", "Image reference is not one of your uploads")
	}
	return nil
}
