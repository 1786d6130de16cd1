package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/skillsenselab/menustream/errors"
)

// DataResponse is the standard success envelope.
type DataResponse struct {
	Data interface{} `json:"data"`
}

// RespondWithError writes an error response. AppError values map to their
// HTTP status and structured body; anything else becomes a 500.
func RespondWithError(c *gin.Context, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}
	c.JSON(appErr.HTTPStatus, appErr.ToResponse())
}

// RespondOK writes a 200 response with the standard data envelope.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}

// RespondAccepted writes a 202 response with the standard data envelope.
func RespondAccepted(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, DataResponse{Data: data})
}

// RespondNoContent writes a 204 response with no body.
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
