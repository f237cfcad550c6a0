package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aishare/models"
)

// JSONResponse defines the uniform structure for API responses.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes a JSON response with the given status code.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success returns a standard success response.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, http.StatusOK, 0, "success", data)
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}

// AppError maps the application error taxonomy onto HTTP statuses.
func AppError(ctx *gin.Context, err error) {
	if ae, ok := err.(*models.AppError); ok {
		switch ae.Kind {
		case models.KindValidation:
			Error(ctx, http.StatusBadRequest, 40000, ae.Message)
			return
		case models.KindPermission:
			Error(ctx, http.StatusForbidden, 40300, ae.Message)
			return
		case models.KindNotFound:
			Error(ctx, http.StatusNotFound, 40400, ae.Message)
			return
		}
	}
	Error(ctx, http.StatusInternalServerError, 50000, "internal server error")
}
