package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	fcerrors "github.com/fascase/fascase/internal/errors"
)

// errorBody is the envelope every 4xx/5xx response carries.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusForError maps structured errors to HTTP statuses. Validation
// failures are the client's fault; a missing index is temporary
// unavailability; everything else is a server error.
func statusForError(err error) int {
	switch fcerrors.GetCode(err) {
	case fcerrors.ErrCodeIndexNotReady:
		return http.StatusServiceUnavailable
	case fcerrors.ErrCodeNetworkTimeout, fcerrors.ErrCodeNetworkUnavailable, fcerrors.ErrCodeEmbedQuota:
		return http.StatusBadGateway
	}
	if fcerrors.GetCategory(err) == fcerrors.CategoryValidation {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	writeErrorStatus(c, statusForError(err), fcerrors.GetCode(err), userMessage(err))
}

func writeErrorStatus(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// userMessage returns the structured error's message without its cause
// chain; internal detail stays in the logs.
func userMessage(err error) string {
	var fe *fcerrors.FascaseError
	if errors.As(err, &fe) {
		return fe.Message
	}
	return err.Error()
}
