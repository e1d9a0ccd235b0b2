package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/YousofDev/Invoice-Tracker/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps a service error to its HTTP response. Internal errors are
// logged in full and surfaced as an opaque message; everything else renders
// its reason to the caller.
func respondError(c *gin.Context, err error) {
	var ae *apierror.Error
	if errors.As(err, &ae) {
		if ae.Kind == apierror.Internal {
			log.Error().Err(ae).Str("path", c.FullPath()).Msg("internal error")
			c.JSON(http.StatusInternalServerError, apierror.New("internal server error"))
			return
		}
		c.JSON(ae.HTTPStatus(), apierror.New(ae.Msg))
		return
	}
	c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
}

// parseIDParam parses the :id path segment as a UUID, writing the 400
// response itself on failure.
func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid ID"))
		return uuid.Nil, false
	}
	return id, true
}
