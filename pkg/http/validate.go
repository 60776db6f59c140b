package http

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"PortfolioAssist/pkg/util"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate *validator.Validate

// tagCodes overrides the ERR_<TAG> code for tags that share a meaning with a builtin.
var tagCodes = map[string]string{
	"notblank": "ERR_REQUIRED",
}

func init() {
	validate = validator.New()

	// Report fields by their JSON names so errors line up with form inputs.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = validate.RegisterValidation("positive_amount", func(fl validator.FieldLevel) bool {
		v, ok := util.ParseFiniteFloat(fl.Field().String())
		return ok && v > 0
	})
}

// MessageProvider lets a request override messages per "field.tag".
type MessageProvider interface {
	ValidationMessages() map[string]string
}

// ReadAndValidateRequest reads and validates request body.
func ReadAndValidateRequest(c echo.Context, req interface{}) interface{} {
	// Bind request
	if err := c.Bind(req); err != nil {
		return validatorDefaultRules(req, err)
	}

	if errs := ValidateStruct(c.Request().Context(), req); len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateStruct applies defaults then validation tags. It returns nil when req is valid.
func ValidateStruct(ctx context.Context, req interface{}) []ValidationError {
	// Set default values
	if err := defaults.Set(req); err != nil {
		return validatorDefaultRules(req, err)
	}

	// Validate struct
	if err := validate.StructCtx(ctx, req); err != nil {
		return validatorDefaultRules(req, err)
	}
	return nil
}

func validatorDefaultRules(req interface{}, err error) []ValidationError {
	var messages map[string]string
	if mp, ok := req.(MessageProvider); ok {
		messages = mp.ValidationMessages()
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		errs := make([]ValidationError, 0, len(validationErrors))
		for _, e := range validationErrors {
			code, ok := tagCodes[e.Tag()]
			if !ok {
				code = "ERR_" + strings.ToUpper(e.Tag())
			}
			msg, ok := messages[e.Field()+"."+e.Tag()]
			if !ok {
				msg = getErrorMessage(e)
			}
			errs = append(errs, ValidationError{
				Code:    code,
				Field:   e.Field(),
				Message: msg,
				Params:  getErrorParams(e),
			})
		}
		return errs
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return []ValidationError{{
			Code:    "ERR_UNKNOWN",
			Message: fmt.Sprintf("%v", he.Message),
		}}
	}

	return []ValidationError{{
		Code:    "ERR_UNKNOWN",
		Message: err.Error(),
	}}
}

func getErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "positive_amount":
		return fmt.Sprintf("%s must be a positive number", field)
	case "numeric":
		return fmt.Sprintf("%s must be numeric", field)
	case "min":
		if fe.Type().Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Type().Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

func getErrorParams(fe validator.FieldError) map[string]interface{} {
	params := make(map[string]interface{})

	switch fe.Tag() {
	case "min", "gte":
		params["min"] = fe.Param()
	case "max", "lte":
		params["max"] = fe.Param()
	case "gt", "lt":
		params["value"] = fe.Param()
	case "oneof":
		params["options"] = strings.Split(fe.Param(), " ")
	}

	return params
}
