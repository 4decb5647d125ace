package httpapi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	apperrors "github.com/louisbranch/leaveledger/internal/platform/errors"
	"github.com/louisbranch/leaveledger/internal/services/leave/api/wire"
	"go.uber.org/zap"
)

func (h *Handler) ok(c *gin.Context, status int, data any) {
	c.JSON(status, wire.OK(data))
}

func (h *Handler) respondError(c *gin.Context, err error) {
	code := apperrors.CodeOf(err)
	if code == apperrors.CodeInternal {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(code.HTTPStatus(), wire.Fail(err))
}

func (h *Handler) abortWithError(c *gin.Context, err error) {
	h.respondError(c, err)
	c.Abort()
}

var registerTagNames sync.Once

// useJSONFieldNames makes validation errors name fields by their JSON key.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		engine.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	})
}

// bind decodes the JSON body into target and runs its binding tags.
func (h *Handler) bind(c *gin.Context, target any) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		h.respondError(c, bindingError(err))
		return false
	}
	return true
}

func bindingError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		messages := make([]string, 0, len(validationErrs))
		fields := make([]string, 0, len(validationErrs))
		for _, fieldErr := range validationErrs {
			fields = append(fields, fieldErr.Field())
			messages = append(messages, describeFieldError(fieldErr))
		}
		return apperrors.WithMetadata(
			apperrors.CodeValidation,
			strings.Join(messages, "; "),
			map[string]string{"fields": strings.Join(fields, ",")},
		)
	}
	return apperrors.Wrap(apperrors.CodeValidation, "Invalid request body", err)
}

func describeFieldError(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fieldErr.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fieldErr.Field(), fieldErr.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fieldErr.Field(), fieldErr.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted as YYYY-MM-DD", fieldErr.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fieldErr.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", fieldErr.Field(), fieldErr.Tag())
	}
}
