package http

import (
	"errors"
	"net/http"

	"github.com/davidbz/transly/internal/domain"
)

const (
	codeInvalidRequest         = "invalid_request"
	codeInsufficientCapability = "insufficient_capability"
	codeTimeout                = "timeout"
	codeConnectionFailed       = "connection_failed"
	codeAPIError               = "api_error"
	codeInternal               = "internal"
)

// errorResponse is the body of every failed request and of SSE error events.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// classifyError maps a domain error to an HTTP status and a stable code.
func classifyError(err error) (int, errorResponse) {
	resp := errorResponse{Error: err.Error()}

	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		resp.Code = codeInvalidRequest
		return http.StatusBadRequest, resp
	case errors.Is(err, domain.ErrInsufficientCapability):
		resp.Code = codeInsufficientCapability
		return http.StatusUnprocessableEntity, resp
	case errors.Is(err, domain.ErrTimeout):
		resp.Code = codeTimeout
		return http.StatusGatewayTimeout, resp
	case errors.Is(err, domain.ErrConnectionFailed):
		resp.Code = codeConnectionFailed
		return http.StatusBadGateway, resp
	case errors.Is(err, domain.ErrAPI):
		resp.Code = codeAPIError
		return http.StatusBadGateway, resp
	default:
		resp.Code = codeInternal
		return http.StatusInternalServerError, resp
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, body := classifyError(err)
	writeJSON(w, status, body)
}
