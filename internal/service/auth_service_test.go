package service

import (
	"context"
	"net/http"
	"testing"

	"case-portal-be/internal/dto"
	"case-portal-be/internal/entity"
	"case-portal-be/internal/pkg/apperror"
	"case-portal-be/internal/repository/specification"
	adminUser "case-portal-be/pkg/admin/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	svc       IAuthService
	sessions  *fakeSessions
	publisher *recordingPublisher
}

func newAuthFixture(t *testing.T) (*authFixture, func() []*entity.AuditLog) {
	f := newTestFactory(t)
	sessions := &fakeSessions{}
	publisher := &recordingPublisher{}
	svc := NewAuthService(f, sessions, adminUser.NewManager(nopLogger(), publisher), NewAuditService(f, nopLogger()), nopLogger())

	audits := func() []*entity.AuditLog {
		logs, err := f.NewUnitOfWork(context.Background()).AuditLogRepository().FindAll(context.Background())
		require.NoError(t, err)
		return logs
	}
	return &authFixture{svc: svc, sessions: sessions, publisher: publisher}, audits
}

func TestSetupCreatesFirstAdminOnce(t *testing.T) {
	fx, audits := newAuthFixture(t)
	ctx := context.Background()

	status, err := fx.svc.SetupStatus(ctx)
	require.NoError(t, err)
	assert.True(t, status.SetupRequired)

	res, err := fx.svc.Setup(ctx, &dto.SetupRequest{Email: "Owner@Firm.test", Password: "correct-horse", FullName: "Owner"})
	require.NoError(t, err)
	assert.Equal(t, "owner@firm.test", res.User.Email)
	assert.Equal(t, string(entity.UserRoleAdmin), res.User.Role)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, []string{"setup"}, fx.publisher.created)

	status, err = fx.svc.SetupStatus(ctx)
	require.NoError(t, err)
	assert.False(t, status.SetupRequired)

	_, err = fx.svc.Setup(ctx, &dto.SetupRequest{Email: "second@firm.test", Password: "correct-horse", FullName: "Second"})
	assert.Equal(t, http.StatusConflict, apperror.CodeOf(err))

	logs := audits()
	require.Len(t, logs, 1)
	assert.Equal(t, entity.AuditActionSetup, logs[0].Action)
}

func TestLogin(t *testing.T) {
	fx, audits := newAuthFixture(t)
	ctx := context.Background()
	_, err := fx.svc.Setup(ctx, &dto.SetupRequest{Email: "owner@firm.test", Password: "correct-horse", FullName: "Owner"})
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := fx.svc.Login(ctx, &dto.LoginRequest{Email: "owner@firm.test", Password: "nope"})
		assert.Equal(t, http.StatusUnauthorized, apperror.CodeOf(err))
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := fx.svc.Login(ctx, &dto.LoginRequest{Email: "ghost@firm.test", Password: "correct-horse"})
		assert.Equal(t, http.StatusUnauthorized, apperror.CodeOf(err))
	})

	t.Run("success is case insensitive on email", func(t *testing.T) {
		res, err := fx.svc.Login(ctx, &dto.LoginRequest{Email: " OWNER@firm.test ", Password: "correct-horse"})
		require.NoError(t, err)
		assert.Equal(t, "owner@firm.test", res.User.Email)
	})

	var success, failed int
	for _, l := range audits() {
		if l.Action != entity.AuditActionLogin {
			continue
		}
		if l.Details["status"] == "success" {
			success++
		} else {
			failed++
		}
	}
	assert.Equal(t, 1, success)
	assert.Equal(t, 2, failed)
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	f := newTestFactory(t)
	user := seedUser(t, f, "client@firm.test", entity.UserRoleClient, "correct-horse")
	user.Status = entity.UserStatusDisabled
	require.NoError(t, f.NewUnitOfWork(context.Background()).UserRepository().Update(context.Background(), user))

	svc := NewAuthService(f, &fakeSessions{}, adminUser.NewManager(nopLogger(), &recordingPublisher{}), NewAuditService(f, nopLogger()), nopLogger())
	_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "client@firm.test", Password: "correct-horse"})
	assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
}

func TestLogoutRevokesSession(t *testing.T) {
	fx, audits := newAuthFixture(t)
	userId := uuid.New()

	require.NoError(t, fx.svc.Logout(context.Background(), userId, "sid-1"))
	require.NoError(t, fx.svc.Logout(context.Background(), userId, ""))

	assert.Equal(t, []string{"sid-1"}, fx.sessions.revoked)
	logs := audits()
	require.Len(t, logs, 1)
	assert.Equal(t, entity.AuditActionLogout, logs[0].Action)
}

func TestSetupStoresHashedPassword(t *testing.T) {
	f := newTestFactory(t)
	svc := NewAuthService(f, &fakeSessions{}, adminUser.NewManager(nopLogger(), &recordingPublisher{}), NewAuditService(f, nopLogger()), nopLogger())
	_, err := svc.Setup(context.Background(), &dto.SetupRequest{Email: "owner@firm.test", Password: "correct-horse", FullName: "Owner"})
	require.NoError(t, err)

	stored, err := f.NewUnitOfWork(context.Background()).UserRepository().FindOne(context.Background(), specification.ByEmail{Email: "owner@firm.test"})
	require.NoError(t, err)
	require.NotNil(t, stored.PasswordHash)
	assert.NotEqual(t, "correct-horse", *stored.PasswordHash)
}
