package register_test

import (
	"context"
	"errors"
	"testing"

	register "github.com/goliatone/go-register"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycle_Activate(t *testing.T) {
	lifecycle := register.NewLifecycle()
	user := &register.User{UserName: "alice"}

	err := lifecycle.Activate(context.Background(), register.ActorRef{ID: "alice"}, user)
	require.NoError(t, err)
	assert.True(t, user.Active)
	assert.Equal(t, register.UserStatusActive, register.StatusOf(user))
}

func TestLifecycle_ActivateAlreadyActive(t *testing.T) {
	lifecycle := register.NewLifecycle()
	user := &register.User{UserName: "alice", Active: true}

	err := lifecycle.Activate(context.Background(), register.ActorRef{ID: "alice"}, user)
	require.Error(t, err)
	assert.True(t, errors.Is(err, register.ErrInvalidTransition))
	assert.True(t, user.Active)
}

func TestLifecycle_BeforeHookAborts(t *testing.T) {
	boom := errors.New("before hook failed")
	lifecycle := register.NewLifecycle(
		register.WithBeforeActivate(func(ctx context.Context, tr register.LifecycleTransition) error {
			return boom
		}),
	)

	user := &register.User{UserName: "bob"}
	err := lifecycle.Activate(context.Background(), register.ActorRef{ID: "bob"}, user)
	require.Error(t, err)
	assert.False(t, user.Active, "aborted transition must not flip the flag")
}

func TestLifecycle_AfterHookObservesTransition(t *testing.T) {
	var seen register.LifecycleTransition
	lifecycle := register.NewLifecycle(
		register.WithAfterActivate(func(ctx context.Context, tr register.LifecycleTransition) error {
			seen = tr
			return nil
		}),
	)

	user := &register.User{UserName: "carol"}
	require.NoError(t, lifecycle.Activate(context.Background(), register.ActorRef{ID: "carol"}, user))

	assert.Equal(t, register.UserStatusPending, seen.From)
	assert.Equal(t, register.UserStatusActive, seen.To)
	assert.Equal(t, "carol", seen.Actor.ID)
}

func TestLifecycle_AfterHookErrorDoesNotFail(t *testing.T) {
	lifecycle := register.NewLifecycle(
		register.WithAfterActivate(func(ctx context.Context, tr register.LifecycleTransition) error {
			return errors.New("sink offline")
		}),
	)

	user := &register.User{UserName: "dave"}
	err := lifecycle.Activate(context.Background(), register.ActorRef{ID: "dave"}, user)
	require.NoError(t, err)
	assert.True(t, user.Active)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, register.UserStatusPending, register.StatusOf(&register.User{}))
	assert.Equal(t, register.UserStatusActive, register.StatusOf(&register.User{Active: true}))
}
