package response

import (
	"github.com/gin-gonic/gin"

	"staybook/internal/shared/apperror"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError maps a domain error to its status code and error payload.
// Untyped errors are reported as internal without leaking their text.
func RespondError(c *gin.Context, message string, err error) {
	appErr, ok := apperror.As(err)
	if !ok {
		_ = c.Error(err)
		RespondJSON(c, "error", apperror.HTTPStatus(apperror.KindInternal), message, nil, map[string]interface{}{
			"kind":   apperror.KindInternal,
			"reason": "internal server error",
		})
		return
	}
	RespondJSON(c, "error", apperror.HTTPStatus(appErr.Kind), message, nil, appErr.Payload())
}
