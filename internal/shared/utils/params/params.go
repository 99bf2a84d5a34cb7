package params

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"staybook/internal/shared/utils/response"
)

// UUID parses the named path parameter, responding 400 when it is malformed.
func UUID(c *gin.Context, name string) (uuid.UUID, bool) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid "+name, nil, map[string]interface{}{
			"kind":   "validation",
			"reason": name + " must be a valid UUID",
		})
		return uuid.Nil, false
	}
	return id, true
}
