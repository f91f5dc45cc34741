// Package auth resolves the identity behind a request and decides what that
// identity may do.
package auth

import (
	"context"
	"errors"
)

// Identity is the authenticated principal of a request. A nil *Identity
// is the anonymous caller.
type Identity struct {
	UserID   uint
	Username string
}

type contextKey string

const identityContextKey contextKey = "identity"

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// FromContext returns the identity stored in ctx, or nil for anonymous.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey).(*Identity)
	return id
}

type Action int

const (
	// ActionRead covers list and retrieve of public resources.
	ActionRead Action = iota
	// ActionReadOwn lists records scoped to the requester, such as follow edges.
	ActionReadOwn
	ActionCreate
	ActionUpdate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionRead:
		return "read"
	case ActionReadOwn:
		return "read-own"
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	}
	return "unknown"
}

// Owned is implemented by entities with an author.
type Owned interface {
	OwnerID() uint
}

var ErrAuthenticationRequired = errors.New("Authentication credentials were not provided.")

// PermissionDeniedError rejects an authenticated identity.
type PermissionDeniedError struct {
	Reason string
}

func (e *PermissionDeniedError) Error() string { return e.Reason }

// Authorize returns nil when id may perform action on target, and
// ErrAuthenticationRequired or a *PermissionDeniedError otherwise. target
// is the already fetched instance for update and delete, nil otherwise;
// ownership is checked against it without reloading.
func Authorize(id *Identity, action Action, target Owned) error {
	if action == ActionRead {
		return nil
	}
	if id == nil {
		return ErrAuthenticationRequired
	}

	switch action {
	case ActionReadOwn, ActionCreate:
		return nil
	case ActionUpdate:
		if target == nil || target.OwnerID() != id.UserID {
			return &PermissionDeniedError{Reason: "Modifying another user's content is forbidden!"}
		}
		return nil
	case ActionDelete:
		if target == nil || target.OwnerID() != id.UserID {
			return &PermissionDeniedError{Reason: "Deleting another user's content is forbidden!"}
		}
		return nil
	}
	return &PermissionDeniedError{Reason: "You do not have permission to perform this action."}
}
