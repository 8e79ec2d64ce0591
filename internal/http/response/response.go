package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mindmirror/mindmirror-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError writes err using its status and code. Errors that are not
// *apierr.Error become a generic 500.
func RespondAPIError(c *gin.Context, err error) {
	apiErr := apierr.As(err)
	if apiErr == nil {
		RespondError(c, http.StatusInternalServerError, apierr.CodeStorage, nil)
		return
	}
	if apiErr.Cause != nil {
		_ = c.Error(apiErr.Cause)
	}
	status := apiErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	RespondError(c, status, apiErr.Code, apiErr.Err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

func RespondMessage(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, MessageResponse{Message: msg})
}
