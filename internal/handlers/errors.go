package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/SscSPs/koperasi_ledger/internal/apperrors"
	"github.com/SscSPs/koperasi_ledger/internal/middleware"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error  string            `json:"error"`
	Errors map[string]string `json:"errors,omitempty"`
}

var registerTagNames sync.Once

// useWireFieldNames makes validator report json/form names instead of Go field names.
func useWireFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
	})
}

// statusFor maps a service error onto its HTTP status.
func statusFor(err error) int {
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrReference):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrComputation):
		return http.StatusInternalServerError
	case errors.As(err, &appErr) && appErr.Code >= 400:
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// respondError writes err using the shared error body. Server errors hide
// their cause behind fallback.
func respondError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromContext(c)
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		attrs := []any{slog.String("error", err.Error()), slog.Int("status", status)}
		if errors.Is(err, apperrors.ErrComputation) {
			attrs = append(attrs, slog.Bool("alert", true))
		}
		logger.Error(fallback, attrs...)
		c.JSON(status, errorResponse{Error: fallback})
		return
	}
	logger.Warn("Request failed", slog.String("error", err.Error()), slog.Int("status", status))
	c.JSON(status, errorResponse{Error: err.Error(), Errors: apperrors.FieldErrors(err)})
}

// respondBindError converts a gin binding failure into a 400.
func respondBindError(c *gin.Context, err error) {
	middleware.GetLoggerFromContext(c).Warn("Failed to bind request", slog.String("error", err.Error()))
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fieldPath(fe)] = fieldMessage(fe)
		}
		c.JSON(http.StatusBadRequest, errorResponse{Error: "validation failed", Errors: fields})
		return
	}
	c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request format: " + err.Error()})
}

// fieldPath drops the top-level struct name, e.g. CreateJournalRequest.details[0].akun_id.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	}
	return fmt.Sprintf("failed %q validation", fe.Tag())
}
