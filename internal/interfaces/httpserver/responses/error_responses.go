package responses

import (
	"errors"
	"net/http"

	"github.com/folioworks/media-ingest/internal/utils/platformerrors"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the JSON error envelope returned by every endpoint. Code
// carries the per-site UUID so a single log line can be matched to a response.
type ErrorResponse struct {
	Code      string `json:"code,omitempty"`
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`

	cause error
}

// Cause returns the underlying error the response was built from.
func (r ErrorResponse) Cause() error { return r.cause }

// HandleError maps a service error to an HTTP response. Platform errors keep
// their type-derived status, code and request id; anything else is a 500 with
// the caller's fallback message.
func HandleError(reqCtx *gin.Context, err error, fallback string) {
	var perr *platformerrors.PlatformError
	if !errors.As(err, &perr) {
		reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Error:   fallback,
			Message: fallback,
			cause:   err,
		})
		return
	}

	msg := perr.Message
	if msg == "" {
		msg = fallback
	}
	reqCtx.AbortWithStatusJSON(platformerrors.ErrorTypeToHTTPStatus(perr.GetErrorType()), ErrorResponse{
		Code:      perr.GetUUID(),
		Error:     msg,
		Message:   msg,
		RequestID: perr.GetRequestID(),
		cause:     perr,
	})
}

// HandleNewError builds a route-layer platform error and responds with it.
// Used where the failure originates in the handler itself, such as request
// binding.
func HandleNewError(reqCtx *gin.Context, errorType platformerrors.ErrorType, message string, uuid string) {
	perr := platformerrors.NewError(reqCtx.Request.Context(), platformerrors.LayerRoute, errorType, message, nil, uuid)
	reqCtx.AbortWithStatusJSON(platformerrors.ErrorTypeToHTTPStatus(errorType), ErrorResponse{
		Code:      perr.GetUUID(),
		Error:     message,
		Message:   message,
		RequestID: perr.GetRequestID(),
		cause:     perr,
	})
}
