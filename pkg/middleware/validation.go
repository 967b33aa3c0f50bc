package middleware

import (
	stderrors "errors"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/location-manager/zone-service/pkg/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func registerCustom(v *validator.Validate) {
	_ = v.RegisterValidation("latitude_range", validateLatitude)
	_ = v.RegisterValidation("longitude_range", validateLongitude)
	_ = v.RegisterValidation("hex_color", validateHexColor)
	_ = v.RegisterValidation("tariff_mode", validateTariffMode)
	_ = v.RegisterValidation("validation_mode", validateValidationMode)
	_ = v.RegisterValidation("colombia_mode", validateColombiaMode)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// InitValidator registers the zone-service validators on a standalone instance and on Gin's binding engine
func InitValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		registerCustom(validate)

		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			registerCustom(v)
		}
	})

	return validate
}

func validateLatitude(fl validator.FieldLevel) bool {
	v := fl.Field().Float()
	return v >= -90 && v <= 90
}

func validateLongitude(fl validator.FieldLevel) bool {
	v := fl.Field().Float()
	return v >= -180 && v <= 180
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validateTariffMode(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "fixed", "surcharge":
		return true
	}
	return false
}

func validateValidationMode(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "polygons", "nearest_site":
		return true
	}
	return false
}

func validateColombiaMode(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "cargo", "calculated":
		return true
	}
	return false
}

// ValidationErrorFormatter formats validation errors into a map
func ValidationErrorFormatter(err error) map[string]string {
	fields := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if stderrors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			fields[e.Field()] = formatValidationError(e)
		}
	}

	return fields
}

// fieldMessages holds the message for tags whose text does not depend on the parameter
var fieldMessages = map[string]string{
	"required":        "is required",
	"email":           "must be a valid email address",
	"latitude_range":  "must be between -90 and 90",
	"longitude_range": "must be between -180 and 180",
	"hex_color":       "must be a hex color such as #FFA500",
	"tariff_mode":     "must be one of: fixed, surcharge",
	"validation_mode": "must be one of: polygons, nearest_site",
	"colombia_mode":   "must be one of: cargo, calculated",
}

// paramMessages prefix the tag parameter, e.g. "must be at least 3"
var paramMessages = map[string]string{
	"min":   "must be at least ",
	"max":   "must be at most ",
	"gte":   "must be greater than or equal to ",
	"lte":   "must be less than or equal to ",
	"oneof": "must be one of: ",
}

func formatValidationError(e validator.FieldError) string {
	if msg, ok := fieldMessages[e.Tag()]; ok {
		return msg
	}
	if prefix, ok := paramMessages[e.Tag()]; ok {
		return prefix + e.Param()
	}
	return "is invalid"
}

// BindAndValidate binds the JSON body and validates it
func BindAndValidate(c *gin.Context, obj interface{}) *errors.AppError {
	if err := c.ShouldBindJSON(obj); err != nil {
		var validationErrors validator.ValidationErrors
		if stderrors.As(err, &validationErrors) {
			return errors.ErrValidationWithFields("validation failed", ValidationErrorFormatter(validationErrors))
		}
		return errors.ErrBadRequest("invalid request body: " + err.Error())
	}
	return nil
}

// SanitizeString strips null bytes and surrounding whitespace
func SanitizeString(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\x00", ""))
}

// InputSanitizer sanitizes query parameters
func InputSanitizer() gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Request.URL.Query()
		for key, values := range query {
			for i, v := range values {
				values[i] = SanitizeString(v)
			}
			query[key] = values
		}
		c.Request.URL.RawQuery = query.Encode()

		c.Next()
	}
}

// ContentType rejects non-JSON bodies on write methods
func ContentType() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			contentType := c.GetHeader("Content-Type")
			if !strings.HasPrefix(contentType, "application/json") && c.Request.ContentLength > 0 {
				AbortWithAppError(c, errors.NewAppError("INVALID_CONTENT_TYPE", "Content-Type must be application/json", http.StatusUnsupportedMediaType))
				return
			}
		}
		c.Next()
	}
}
