package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/location-manager/zone-service/pkg/errors"
)

// APIErrorResponse is the body of every non-2xx reply
type APIErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
	Timestamp string            `json:"timestamp"`
	Path      string            `json:"path"`
}

func writeError(c *gin.Context, appErr *errors.AppError, abort bool) {
	body := APIErrorResponse{
		Code:      appErr.Code,
		Message:   appErr.Message,
		Details:   appErr.Details,
		RequestID: GetRequestID(c),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      c.Request.URL.Path,
	}
	if abort {
		c.AbortWithStatusJSON(appErr.HTTPStatus, body)
		return
	}
	c.JSON(appErr.HTTPStatus, body)
}

// ErrorHandler renders the last error attached with c.Error when the handler
// wrote no body. mapper may be nil.
func ErrorHandler(logger *slog.Logger, mapper *errors.Mapper) gin.HandlerFunc {
	if mapper == nil {
		mapper = errors.NewMapper()
	}
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		appErr := mapper.Map(c.Errors.Last().Err)
		logError(logger, c, appErr)
		writeError(c, appErr, false)
	}
}

// ErrorResponder writes logged error replies for one request
type ErrorResponder struct {
	ctx    *gin.Context
	logger *slog.Logger
}

func NewErrorResponder(ctx *gin.Context, logger *slog.Logger) *ErrorResponder {
	return &ErrorResponder{ctx: ctx, logger: logger}
}

// RespondWithAppError logs appErr and writes it
func (r *ErrorResponder) RespondWithAppError(appErr *errors.AppError) {
	logError(r.logger, r.ctx, appErr)
	writeError(r.ctx, appErr, false)
}

// RespondValidationError writes a 400 with per-field messages
func (r *ErrorResponder) RespondValidationError(message string, fields map[string]string) {
	r.RespondWithAppError(errors.ErrValidationWithFields(message, fields))
}

// RespondInternalError writes a 500 that hides err from the caller
func (r *ErrorResponder) RespondInternalError(err error) {
	r.RespondWithAppError(errors.ErrInternal("").Wrap(err))
}

// Client errors are warnings; only 5xx replies are logged as errors.
func logError(logger *slog.Logger, c *gin.Context, appErr *errors.AppError) {
	level := slog.LevelWarn
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		level = slog.LevelError
	}

	attrs := []any{
		"code", appErr.Code,
		"status", appErr.HTTPStatus,
		"message", appErr.Message,
		"method", c.Request.Method,
		"route", c.FullPath(),
		"requestId", GetRequestID(c),
	}
	if appErr.Err != nil {
		attrs = append(attrs, "error", appErr.Err.Error())
	}
	if len(appErr.Details) > 0 {
		attrs = append(attrs, "details", appErr.Details)
	}
	logger.Log(c.Request.Context(), level, "API error", attrs...)
}

// AbortWithAppError stops the chain and writes appErr without logging
func AbortWithAppError(c *gin.Context, appErr *errors.AppError) {
	writeError(c, appErr, true)
}
