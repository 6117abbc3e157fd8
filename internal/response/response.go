package response

import (
	"net/http"

	"entitlement-api/internal/apperror"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"
)

// Response represents a successful callable response
type Response struct {
	Result interface{} `json:"result"`
}

// ErrorBody is the error object of a failed callable response
type ErrorBody struct {
	Status  string                 `json:"status"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorResponse represents a failed callable response
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Success returns a success response
func Success(result interface{}) Response {
	return Response{Result: result}
}

// Error returns an error response
func Error(err *apperror.Error) ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Status:  apperror.Status(err.Code),
			Code:    apperror.Slug(err.Code),
			Message: err.Message,
			Details: err.Details,
		},
	}
}

// HTTPStatus maps an error code onto the HTTP status of the response
func HTTPStatus(code codes.Code) int {
	switch code {
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.InvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// SuccessJSON sends a success JSON response
func SuccessJSON(c *gin.Context, result interface{}) {
	c.JSON(http.StatusOK, Success(result))
}

// ErrorJSON sends an error JSON response
func ErrorJSON(c *gin.Context, err error) {
	appErr := apperror.From(err)
	c.JSON(HTTPStatus(appErr.Code), Error(appErr))
}

// AbortWithError sends an error JSON response and stops the handler chain
func AbortWithError(c *gin.Context, err error) {
	appErr := apperror.From(err)
	c.AbortWithStatusJSON(HTTPStatus(appErr.Code), Error(appErr))
}
