package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// CriterionTag validates a report criterion name
const CriterionTag = "criterion"

var validatorOnce sync.Once

// messages by validator tag; param is the tag parameter
var messages = map[string]func(param string) string{
	"required":   func(string) string { return "This field is required" },
	"min":        func(p string) string { return "Must be at least " + p },
	"max":        func(p string) string { return "Must be at most " + p },
	"uuid":       func(string) string { return "Invalid UUID format" },
	"oneof":      func(p string) string { return "Must be one of: " + p },
	CriterionTag: func(string) string { return "Unknown criterion" },
}

// SetupValidator configures gin's validator once: errors are reported
// under the json name of a field, or its form name for query structs, and
// the criterion tag is registered.
func SetupValidator() {
	validatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(fieldName)
		_ = v.RegisterValidation(CriterionTag, func(fl validator.FieldLevel) bool {
			_, err := catalog.ParseCriterion(fl.Field().String())
			return err == nil
		})
	})
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		switch name {
		case "-":
			return ""
		case "":
			continue
		}
		return name
	}
	return ""
}

func fieldErrors(err error) validator.ValidationErrors {
	var fe validator.ValidationErrors
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}

// FormatValidationErrors builds the 400 envelope for a binding error. Bind
// failures that are not field validations, such as a non-numeric page,
// carry no details.
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail
	for _, e := range fieldErrors(err) {
		msg := "Invalid value"
		if m, ok := messages[e.Tag()]; ok {
			msg = m(e.Param())
		}
		details = append(details, dto.ValidationDetail{Field: e.Field(), Message: msg})
	}
	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HasTagError reports whether err holds a field validation failure for tag
func HasTagError(err error, tag string) bool {
	for _, e := range fieldErrors(err) {
		if e.Tag() == tag {
			return true
		}
	}
	return false
}

// HandleValidationError writes the 400 validation response
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
}
