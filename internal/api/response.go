package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/devdish/devdish/backend/internal/blob"
	"github.com/devdish/devdish/backend/internal/service"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Success bool                 `json:"success"`
	Message string               `json:"message,omitempty"`
	Data    interface{}          `json:"data,omitempty"`
	Errors  []service.FieldError `json:"errors,omitempty"`
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func respondMessage(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// responder maps service errors to HTTP replies. Internal error detail is
// only exposed when debug is set.
type responder struct {
	debug bool
}

// fail writes the reply for err. resource names what a NotFound refers to.
func (r responder) fail(c *gin.Context, err error, resource string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, Response{Message: "Validation failed", Errors: verr.Fields})
	case errors.Is(err, service.ErrInvalidID):
		c.JSON(http.StatusBadRequest, Response{Message: "Invalid ID format"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Message: resource + " not found"})
	case errors.Is(err, service.ErrImageMissing):
		c.JSON(http.StatusNotFound, Response{Message: "Image not found"})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusForbidden, Response{Message: "Not authorized to perform this action"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, Response{Message: "Invalid credentials"})
	case errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusBadRequest, Response{Message: "User with this email or username already exists"})
	case errors.Is(err, service.ErrUsernameTaken):
		c.JSON(http.StatusBadRequest, Response{Message: "Username is already taken"})
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn().Err(err).Str("path", c.FullPath()).Msg("Request timed out")
		c.JSON(http.StatusGatewayTimeout, Response{Message: "Request timed out"})
	default:
		_ = c.Error(err)
		log.Error().Err(err).Str("method", c.Request.Method).Str("path", c.FullPath()).Msg("Request failed")
		message := "Server error"
		if r.debug {
			message = fmt.Sprintf("Server error: %v", err)
		}
		c.JSON(http.StatusInternalServerError, Response{Message: message})
	}
}

// badRequest replies to a body or form that failed to bind.
func (r responder) badRequest(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		r.fail(c, fieldErrors(verrs), "")
		return
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		r.fail(c, service.NewValidationError(typeErr.Field, fmt.Sprintf("%s has the wrong type", typeErr.Field)), "")
	case errors.As(err, &syntaxErr):
		c.JSON(http.StatusBadRequest, Response{Message: "Invalid JSON body"})
	default:
		c.JSON(http.StatusBadRequest, Response{Message: "Invalid request body"})
	}
}

func fieldErrors(verrs validator.ValidationErrors) *service.ValidationError {
	out := &service.ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, service.FieldError{
			Field:   fieldPath(fe),
			Message: fieldMessage(fe),
		})
	}
	return out
}

// fieldPath drops the request struct name from the namespace, so
// "CreateRecipeRequest.ingredients[0].unit" becomes "ingredients[0].unit".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Please provide a valid email"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must contain at least %s items", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s cannot exceed %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s cannot contain more than %s items", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	}
	return fmt.Sprintf("%s is invalid", field)
}

var registerTagName sync.Once

// useJSONFieldNames makes validation errors report json field names.
func useJSONFieldNames() {
	registerTagName.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
}

func parseID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, service.ErrInvalidID
	}
	return id, nil
}

// stream copies a stored object to the client.
func stream(c *gin.Context, obj *blob.Object) {
	defer obj.Body.Close()

	size := obj.Size
	if size <= 0 {
		size = -1
	}
	c.DataFromReader(http.StatusOK, size, obj.ContentType, obj.Body, map[string]string{
		"Cache-Control":          "public, max-age=86400",
		"X-Content-Type-Options": "nosniff",
	})
}
