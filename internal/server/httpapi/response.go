package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/goodnight/internal/common"
	"github.com/gin-gonic/gin"
)

// Error codes carried in the response envelope.
const (
	codeInvalidArgument = "INVALID_ARGUMENT"
	codeUnauthorized    = "UNAUTHORIZED"
	codeForbidden       = "FORBIDDEN"
	codeNotFound        = "NOT_FOUND"
	codeAlreadyExists   = "ALREADY_EXISTS"
	codeInternal        = "INTERNAL"
)

// ErrorResponse is the structured error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func writeError(c *gin.Context, statusCode int, code, message, details string) {
	c.JSON(statusCode, ErrorResponse{Error: message, Code: code, Details: details})
}

func abortWithError(c *gin.Context, statusCode int, code, message, details string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{Error: message, Code: code, Details: details})
}

// handleServiceError maps sentinel errors onto the HTTP envelope. Anything
// unrecognized is an internal failure: logged with the request id, surfaced
// without details.
func (s *Server) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		writeError(c, http.StatusBadRequest, codeInvalidArgument, err.Error(), "")
	case errors.Is(err, common.ErrorUnauthorized):
		writeError(c, http.StatusUnauthorized, codeUnauthorized, "unauthorized", "")
	case errors.Is(err, common.ErrorForbidden):
		writeError(c, http.StatusForbidden, codeForbidden, "forbidden", "")
	case errors.Is(err, common.ErrorNotFound):
		writeError(c, http.StatusNotFound, codeNotFound, "not found", "")
	case errors.Is(err, common.ErrorAlreadyExists):
		writeError(c, http.StatusConflict, codeAlreadyExists, err.Error(), "")
	default:
		s.logger.Error(c.Request.Context(), "internal error",
			"request_id", c.GetString("request_id"), "error", err.Error())
		writeError(c, http.StatusInternalServerError, codeInternal, "internal error", "")
	}
}
