package register

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeInvalidTransition = "INVALID_REGISTRATION_TRANSITION"
)

// ErrInvalidTransition is returned when a requested lifecycle change is not
// allowed, e.g. activating a record that is already active.
var ErrInvalidTransition = goerrors.New("invalid registration lifecycle transition", goerrors.CategoryConflict).
	WithTextCode(textCodeInvalidTransition).
	WithCode(goerrors.CodeConflict)

// UserStatus is the registration lifecycle state derived from the record's
// active flag.
type UserStatus = string

const (
	// UserStatusPending is a registered record awaiting token redemption.
	UserStatusPending UserStatus = "pending"
	// UserStatusActive is a record whose activation token was redeemed.
	UserStatusActive UserStatus = "active"
)

// StatusOf maps a user record onto its lifecycle state.
func StatusOf(user *User) UserStatus {
	if user != nil && user.Active {
		return UserStatusActive
	}
	return UserStatusPending
}

// LifecycleTransition is passed into hooks for additional processing.
type LifecycleTransition struct {
	Actor ActorRef
	User  *User
	From  UserStatus
	To    UserStatus
}

// LifecycleHook is executed before or after a transition. A before hook
// returning an error aborts the transition.
type LifecycleHook func(ctx context.Context, tr LifecycleTransition) error

// Lifecycle centralizes the pending to active transition: the guard, the
// flag flip, and the hook invocations around it. Persistence stays with the
// caller since the record of truth is remote.
type Lifecycle struct {
	before []LifecycleHook
	after  []LifecycleHook
	logger Logger
}

// LifecycleOption customizes lifecycle behavior.
type LifecycleOption func(*Lifecycle)

// WithBeforeActivate registers a hook that runs before the flag is flipped.
func WithBeforeActivate(hook LifecycleHook) LifecycleOption {
	return func(l *Lifecycle) {
		if hook != nil {
			l.before = append(l.before, hook)
		}
	}
}

// WithAfterActivate registers a hook that runs after the flag is flipped.
// After hooks are best-effort: failures are logged, not returned.
func WithAfterActivate(hook LifecycleHook) LifecycleOption {
	return func(l *Lifecycle) {
		if hook != nil {
			l.after = append(l.after, hook)
		}
	}
}

// WithLifecycleLogger overrides the logger used for after-hook failures.
func WithLifecycleLogger(logger Logger) LifecycleOption {
	return func(l *Lifecycle) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLifecycle creates a lifecycle with sane defaults.
func NewLifecycle(opts ...LifecycleOption) *Lifecycle {
	l := &Lifecycle{logger: defLogger{}}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Activate moves user from pending to active, running hooks around the
// change. The record is mutated in place; writing it back to the resource
// server remains the caller's job.
func (l *Lifecycle) Activate(ctx context.Context, actor ActorRef, user *User) error {
	if user == nil {
		return goerrors.New("lifecycle requires a user record", goerrors.CategoryInternal)
	}

	if StatusOf(user) == UserStatusActive {
		return ErrInvalidTransition
	}

	tr := LifecycleTransition{
		Actor: actor,
		User:  user,
		From:  UserStatusPending,
		To:    UserStatusActive,
	}

	for _, hook := range l.before {
		if err := hook(ctx, tr); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryOperation, "activation rejected by lifecycle hook")
		}
	}

	user.Active = true

	for _, hook := range l.after {
		if err := hook(ctx, tr); err != nil {
			l.logger.Warn("lifecycle after hook error: %v", err)
		}
	}

	return nil
}
