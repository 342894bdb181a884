// Package web defines common components for a web application.
package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/bank-ledger/internal/domain"
	"github.com/go-petr/bank-ledger/pkg/errorspkg"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Response holds the common response type for all APIs.
type Response struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Error wraps a given err into json friendly struct.
func Error(err error) Response {
	return Response{Error: err.Error()}
}

// Status returns the HTTP status code for the ledger error kind of err.
func Status(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// AbortWithError writes the error response matching err.
//
// Store and unclassified failures are reported as errorspkg.ErrInternal.
func AbortWithError(gctx *gin.Context, err error) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(gctx.Request.Context()).Error().Err(err).Str("kind", domain.Kind(err)).Send()
		gctx.AbortWithStatusJSON(status, Error(errorspkg.ErrInternal))

		return
	}

	gctx.AbortWithStatusJSON(status, Error(err))
}

// AbortWithBindingError writes the 400 response for a request that failed to bind.
func AbortWithBindingError(gctx *gin.Context, err error) {
	zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()
	gctx.AbortWithStatusJSON(http.StatusBadRequest, Response{Error: BindingErrorMsg(err)})
}

// BindingErrorMsg turns a binding error into a client facing message.
func BindingErrorMsg(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		field := ve[0]
		return field.Field() + GetErrorMsg(field)
	}

	return "invalid request"
}

// GetErrorMsg returns the message suffix describing the failed validation rule.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " field is required"
	case "min":
		return " must be at least " + fe.Param()
	case "max":
		return " must be at most " + fe.Param()
	case "email":
		return " must be a valid email"
	case "datetime":
		return " must match the layout " + fe.Param()
	case "decimal":
		return " must be a decimal number"
	case "account_kind":
		return " must be one of SAVINGS, CURRENT"
	case "operation_mode":
		return " must be one of SELF, JOINT"
	case "customer_class":
		return " must be one of PUBLIC, STAFF"
	}

	return " is invalid"
}
