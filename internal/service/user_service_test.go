package service

import (
	"context"
	"net/http"
	"testing"

	"case-portal-be/internal/entity"
	"case-portal-be/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupRole(t *testing.T) {
	f := newTestFactory(t)
	svc := NewUserService(f)
	staff := seedUser(t, f, "staff@firm.test", entity.UserRoleStaff, "correct-horse")

	role, err := svc.LookupRole(context.Background(), staff.Id)
	require.NoError(t, err)
	require.NotNil(t, role)
	assert.Equal(t, entity.UserRoleStaff, *role)

	role, err = svc.LookupRole(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, role)

	staff.Status = entity.UserStatusDisabled
	require.NoError(t, f.NewUnitOfWork(context.Background()).UserRepository().Update(context.Background(), staff))
	role, err = svc.LookupRole(context.Background(), staff.Id)
	require.NoError(t, err)
	assert.Nil(t, role)
}

func TestResolveActorUsesProfileRole(t *testing.T) {
	f := newTestFactory(t)
	svc := NewUserService(f)
	admin := seedUser(t, f, "admin@firm.test", entity.UserRoleAdmin, "correct-horse")

	actor, err := svc.ResolveActor(context.Background(), admin.Id, "sid-9")
	require.NoError(t, err)
	assert.Equal(t, entity.UserRoleAdmin, actor.Role)
	assert.Equal(t, "sid-9", actor.SessionID)
	assert.True(t, actor.Privileged())

	_, err = svc.ResolveActor(context.Background(), uuid.New(), "sid-9")
	assert.Equal(t, http.StatusUnauthorized, apperror.CodeOf(err))

	me, err := svc.Me(context.Background(), admin.Id)
	require.NoError(t, err)
	assert.Equal(t, "admin@firm.test", me.Email)
}
