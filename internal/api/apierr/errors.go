package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tapforge/clicker-server/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodePlayerNotFound      = "PLAYER_NOT_FOUND"
	CodeNameTaken           = "NAME_TAKEN"
	CodeInvalidName         = "INVALID_NAME"
	CodeInvalidAction       = "INVALID_ACTION"
	CodeUnknownUpgrade      = "UNKNOWN_UPGRADE"
	CodeInsufficientFunds   = "INSUFFICIENT_FUNDS"
	CodeClickRateExceeded   = "CLICK_RATE_EXCEEDED"
	CodeRequestNotFound     = "FRIEND_REQUEST_NOT_FOUND"
	CodeRequestExists       = "FRIEND_REQUEST_EXISTS"
	CodeAlreadyFriends      = "ALREADY_FRIENDS"
	CodeSelfFriendRequest   = "SELF_FRIEND_REQUEST"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrInvalidToken):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or missing token"}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrNameTaken):
		return &httpError{http.StatusConflict, APIError{CodeNameTaken, "Name is already taken"}}
	case errors.Is(err, model.ErrInvalidName):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidName, "Name must be 1-32 characters"}}
	case errors.Is(err, model.ErrInvalidAction):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidAction, "Malformed action in batch"}}
	case errors.Is(err, model.ErrUnknownUpgrade):
		return &httpError{http.StatusBadRequest, APIError{CodeUnknownUpgrade, "Unknown upgrade id"}}
	case errors.Is(err, model.ErrInsufficientFunds):
		return &httpError{http.StatusBadRequest, APIError{CodeInsufficientFunds, "Not enough score for purchase"}}
	case errors.Is(err, model.ErrClickRateExceeded):
		return &httpError{http.StatusBadRequest, APIError{CodeClickRateExceeded, "Too many clicks for elapsed time"}}
	case errors.Is(err, model.ErrFriendRequestNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRequestNotFound, "Friend request not found"}}
	case errors.Is(err, model.ErrFriendRequestExists):
		return &httpError{http.StatusConflict, APIError{CodeRequestExists, "Friend request already sent"}}
	case errors.Is(err, model.ErrAlreadyFriends):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyFriends, "Players are already friends"}}
	case errors.Is(err, model.ErrSelfFriendRequest):
		return &httpError{http.StatusBadRequest, APIError{CodeSelfFriendRequest, "Cannot befriend yourself"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError() error {
	return &httpError{http.StatusForbidden, APIError{CodeForbidden, "Not allowed"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
