// Package identity ensures a directory account exists for a new employee.
//
// All implementations are idempotent by lookup: a second call for the same
// username resets the credential instead of failing on "already exists". That
// property is what makes event redelivery safe for the identity step.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/smithy-go"

	"github.com/innovatech/deskprov/internal/rbac"
)

// Request carries everything needed to create or reset one identity.
type Request struct {
	Username    string
	DisplayName string
	Email       string
	Credential  string
	Group       rbac.GroupRef
}

// Validate rejects requests missing required fields before any external call.
func (r Request) Validate() error {
	if r.Username == "" || r.Credential == "" {
		return fmt.Errorf("%w: username and credential are required", ErrInvalidRequest)
	}
	return nil
}

// Failure kinds for identity operations. ErrUnavailable is transient and the
// attempt may be retried via event redelivery; the other two are fatal.
var (
	ErrUnavailable      = errors.New("identity service unavailable")
	ErrInvalidRequest   = errors.New("invalid identity request")
	ErrPermissionDenied = errors.New("identity permission denied")
)

// Provisioner ensures an identity exists with the given credential.
type Provisioner interface {
	EnsureIdentity(ctx context.Context, req Request) error
}

// Noop is the identity provisioner for the local-account backend, where user
// creation is embedded in the bootstrap payload instead.
type Noop struct{}

// EnsureIdentity does nothing beyond input validation.
func (Noop) EnsureIdentity(_ context.Context, req Request) error {
	return req.Validate()
}

// classify maps an AWS API error to the identity failure taxonomy.
func classify(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	switch apiErr.ErrorCode() {
	case "AccessDeniedException", "AuthorizationErrorException", "UnauthorizedOperation":
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	case "ValidationException", "InvalidParameterException", "InvalidParameterValueException":
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}
