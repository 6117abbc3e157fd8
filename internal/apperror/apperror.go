// Package apperror defines the three error kinds a callable endpoint can
// return and maps downstream failures onto them.
package apperror

import (
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error is a caller-facing failure with a machine-readable code.
type Error struct {
	Code    codes.Code
	Message string
	Details map[string]interface{}
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", Slug(e.Code), e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", Slug(e.Code), e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Unauthenticated reports a call without a caller identity.
func Unauthenticated(message string) *Error {
	return &Error{Code: codes.Unauthenticated, Message: message}
}

// InvalidArgument reports a payload missing required fields.
func InvalidArgument(message string) *Error {
	return &Error{Code: codes.InvalidArgument, Message: message}
}

// Internal reports a downstream failure. Upstream code and details are
// copied from cause when it is a googleapi or gRPC status error.
func Internal(message string, cause error) *Error {
	return &Error{
		Code:    codes.Internal,
		Message: message,
		Details: upstreamDetails(cause),
		cause:   cause,
	}
}

// From converts any error into an *Error, treating unknown errors as Internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("internal error", err)
}

// Slug returns the lower-case hyphenated code name used on the wire.
func Slug(c codes.Code) string {
	switch c {
	case codes.Unauthenticated:
		return "unauthenticated"
	case codes.InvalidArgument:
		return "invalid-argument"
	default:
		return "internal"
	}
}

// Status returns the upper-case canonical status name used on the wire.
func Status(c codes.Code) string {
	switch c {
	case codes.Unauthenticated:
		return "UNAUTHENTICATED"
	case codes.InvalidArgument:
		return "INVALID_ARGUMENT"
	default:
		return "INTERNAL"
	}
}

func upstreamDetails(cause error) map[string]interface{} {
	if cause == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(cause, &apiErr) {
		details := map[string]interface{}{}
		if len(apiErr.Details) > 0 {
			details["details"] = apiErr.Details
		} else if len(apiErr.Errors) > 0 {
			details["details"] = apiErr.Errors
		} else {
			details["details"] = map[string]interface{}{}
		}
		details["code"] = apiErr.Code
		return details
	}

	if st, ok := status.FromError(cause); ok && st.Code() != codes.Unknown {
		return map[string]interface{}{
			"code":    st.Code().String(),
			"details": st.Message(),
		}
	}

	return map[string]interface{}{
		"code":    "unknown",
		"details": map[string]interface{}{},
	}
}
