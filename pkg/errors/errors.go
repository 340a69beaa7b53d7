package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies validation failures so callers can branch on the
// failure class instead of matching message strings.
type ErrorCode string

const (
	CodeParameterInvalid   ErrorCode = "parameter_invalid"
	CodeDiscoveryConflict  ErrorCode = "discovery_conflict"
	CodeDiscoveryFailed    ErrorCode = "discovery_failed"
	CodeDeploymentNotFound ErrorCode = "deployment_not_found"
	CodeUnauthorized       ErrorCode = "unauthorized"
	CodeEndpointNotFound   ErrorCode = "endpoint_not_found"
	CodeBadRequest         ErrorCode = "bad_request"
	CodeGatewayUnreachable ErrorCode = "gateway_unreachable"
	CodeTokenRequestFailed ErrorCode = "token_request_failed"
	CodeResourceNotFound   ErrorCode = "resource_not_found"
)

type ValidationError struct {
	Code    ErrorCode
	Message string
	cause   error
}

func (e *ValidationError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error { return e.cause }

func NewParameterError(format string, args ...any) error {
	return &ValidationError{Code: CodeParameterInvalid, Message: fmt.Sprintf(format, args...)}
}

func NewDiscoveryConflictError() error {
	return &ValidationError{Code: CodeDiscoveryConflict, Message: "both static models and dynamic discovery configured"}
}

func NewDiscoveryError(format string, args ...any) error {
	return &ValidationError{Code: CodeDiscoveryFailed, Message: fmt.Sprintf(format, args...)}
}

func NewDeploymentNotFoundError(deployment string) error {
	return &ValidationError{Code: CodeDeploymentNotFound, Message: fmt.Sprintf("deployment %q not found", deployment)}
}

func NewUnauthorizedError(endpoint string) error {
	return &ValidationError{Code: CodeUnauthorized, Message: fmt.Sprintf("authentication failed (401) calling %s", endpoint)}
}

func NewEndpointNotFoundError(url string) error {
	return &ValidationError{Code: CodeEndpointNotFound, Message: fmt.Sprintf("endpoint not found (404): %s", url)}
}

func NewBadRequestError(body string) error {
	return &ValidationError{Code: CodeBadRequest, Message: fmt.Sprintf("gateway rejected request (400): %s", body)}
}

func NewGatewayUnreachableError(cause error) error {
	return &ValidationError{Code: CodeGatewayUnreachable, Message: "gateway unreachable", cause: cause}
}

func NewTokenRequestError(format string, args ...any) error {
	return &ValidationError{Code: CodeTokenRequestFailed, Message: fmt.Sprintf(format, args...)}
}

func NewRunNotFoundError(id string) error {
	return &ValidationError{Code: CodeResourceNotFound, Message: fmt.Sprintf("validation run %q not found", id)}
}

func NewConnectionNotFoundError(name string) error {
	return &ValidationError{Code: CodeResourceNotFound, Message: fmt.Sprintf("connection %q not found", name)}
}

func codeOf(err error) (ErrorCode, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code, true
	}
	return "", false
}

func IsParameterError(err error) bool {
	c, ok := codeOf(err)
	return ok && c == CodeParameterInvalid
}

func IsUnauthorizedError(err error) bool {
	c, ok := codeOf(err)
	return ok && c == CodeUnauthorized
}

func IsDeploymentNotFoundError(err error) bool {
	c, ok := codeOf(err)
	return ok && c == CodeDeploymentNotFound
}

func IsResourceNotFoundError(err error) bool {
	c, ok := codeOf(err)
	return ok && c == CodeResourceNotFound
}

func IsGatewayUnreachableError(err error) bool {
	c, ok := codeOf(err)
	return ok && c == CodeGatewayUnreachable
}
