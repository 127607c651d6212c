package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"Student": RoleStudent,
		"teacher": RoleTeacher,
		" ADMIN ": RoleAdmin,
	}
	for input, want := range cases {
		got, err := ParseRole(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got)
	}

	_, err := ParseRole("superuser")
	require.ErrorIs(t, err, ErrValidation)
	assert.False(t, Role("Dean").Valid())
	assert.True(t, RoleTeacher.Valid())
}

func TestActor(t *testing.T) {
	id := uuid.New()
	actor := (&User{ID: id, Role: RoleAdmin, Active: true}).Actor()

	assert.True(t, actor.IsAdmin())
	assert.True(t, actor.IsOwner(id))
	assert.False(t, actor.IsOwner(uuid.New()))
	assert.False(t, Actor{}.IsOwner(uuid.Nil))
}

func TestErrorCode(t *testing.T) {
	cases := map[error]string{
		fmt.Errorf("%w: bad", ErrValidation):   "validation_error",
		fmt.Errorf("%w: no", ErrUnauthorized):  "authorization_error",
		ErrNotFound:                            "not_found",
		ErrCapacityExceeded:                    "capacity_exceeded",
		ErrAlreadyJoined:                       "already_joined",
		ErrNotJoined:                           "not_joined",
		fmt.Errorf("wrap: %w", ErrConflict):    "conflict",
		errors.New("socket closed"):            "internal_error",
	}
	for err, want := range cases {
		assert.Equal(t, want, ErrorCode(err), err.Error())
	}
}
