package errutil

import (
	"errors"
	"net/http"
)

// CoreStatus is the transport-agnostic error category carried by BaseError.
type CoreStatus string

const (
	StatusBadRequest       CoreStatus = "bad_request"
	StatusValidationFailed CoreStatus = "validation_failed"
	StatusUnauthorized     CoreStatus = "unauthorized"
	StatusForbidden        CoreStatus = "forbidden"
	StatusNotFound         CoreStatus = "not_found"
	StatusConflict         CoreStatus = "conflict"
	StatusInternal         CoreStatus = "internal"
	StatusNotImplemented   CoreStatus = "not_implemented"
	StatusUnknown          CoreStatus = "unknown"
)

// HTTPStatus converts the CoreStatus to its closest HTTP status code equivalent.
func (s CoreStatus) HTTPStatus() int {
	switch s {
	case StatusBadRequest, StatusValidationFailed:
		return http.StatusBadRequest
	case StatusUnauthorized:
		return http.StatusUnauthorized
	case StatusForbidden:
		return http.StatusForbidden
	case StatusNotFound:
		return http.StatusNotFound
	case StatusConflict:
		return http.StatusConflict
	case StatusNotImplemented:
		return http.StatusNotImplemented
	case StatusInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// IsStatus reports whether err carries the given CoreStatus.
func IsStatus(err error, code CoreStatus) bool {
	if err == nil {
		return false
	}
	var be BaseError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}
