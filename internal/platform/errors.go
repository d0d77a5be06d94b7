package platform

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// NoApprovedPackageError reports a model package group without any approved
// package.
type NoApprovedPackageError struct {
	Group string
}

func (e *NoApprovedPackageError) Error() string {
	return fmt.Sprintf("no approved ModelPackage found in group %q", e.Group)
}

// RemoteServiceError wraps a failed AWS call. Message is the service's own
// error message when one is available.
type RemoteServiceError struct {
	Op      string
	Code    string
	Message string
	Err     error
}

func (e *RemoteServiceError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *RemoteServiceError) Unwrap() error {
	return e.Err
}

// WrapRemote converts an SDK error into a RemoteServiceError for op.
func WrapRemote(op string, err error) error {
	if err == nil {
		return nil
	}
	remote := &RemoteServiceError{Op: op, Message: err.Error(), Err: err}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		remote.Code = apiErr.ErrorCode()
		remote.Message = apiErr.ErrorMessage()
	}
	return remote
}
