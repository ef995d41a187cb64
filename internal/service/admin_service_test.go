package service

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"case-portal-be/internal/dto"
	"case-portal-be/internal/entity"
	"case-portal-be/internal/pkg/apperror"
	"case-portal-be/internal/pkg/logger"
	"case-portal-be/internal/repository/unitofwork"
	"case-portal-be/pkg/admin/dashboard"
	adminUser "case-portal-be/pkg/admin/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanMailer struct {
	sent chan string
}

func (m *chanMailer) SendWelcome(toEmail, fullName, role string) error {
	m.sent <- toEmail
	return nil
}

type adminFixture struct {
	svc       IAdminService
	factory   unitofwork.RepositoryFactory
	sessions  *fakeSessions
	publisher *recordingPublisher
	mailer    *chanMailer
	admin     *entity.User
}

func newAdminFixture(t *testing.T, log logger.ILogger) *adminFixture {
	f := newTestFactory(t)
	publisher := &recordingPublisher{}
	sessions := &fakeSessions{}
	mailer := &chanMailer{sent: make(chan string, 4)}
	svc := NewAdminService(f, log, adminUser.NewManager(log, publisher), dashboard.NewAggregator(log),
		publisher, sessions, mailer, NewAuditService(f, log))

	return &adminFixture{
		svc:       svc,
		factory:   f,
		sessions:  sessions,
		publisher: publisher,
		mailer:    mailer,
		admin:     seedUser(t, f, "admin@firm.test", entity.UserRoleAdmin, "correct-horse"),
	}
}

func TestCreateUserSendsWelcomeMail(t *testing.T) {
	fx := newAdminFixture(t, nopLogger())
	title := "paralegal"

	res, err := fx.svc.CreateUser(context.Background(), fx.admin.Id, dto.CreateUserRequest{
		Email: "Para@Firm.test", Password: "correct-horse", FullName: "Pat Para", Role: "staff", StaffRole: &title,
	})
	require.NoError(t, err)
	assert.Equal(t, "para@firm.test", res.Email)
	require.NotNil(t, res.StaffRole)
	assert.Equal(t, "paralegal", *res.StaffRole)

	select {
	case to := <-fx.mailer.sent:
		assert.Equal(t, "para@firm.test", to)
	case <-time.After(2 * time.Second):
		t.Fatal("welcome mail not sent")
	}

	_, err = fx.svc.CreateUser(context.Background(), fx.admin.Id, dto.CreateUserRequest{
		Email: "para@firm.test", Password: "correct-horse", FullName: "Again", Role: "client",
	})
	assert.Equal(t, http.StatusConflict, apperror.CodeOf(err))
}

func TestCreateUserDropsStaffRoleForClients(t *testing.T) {
	fx := newAdminFixture(t, nopLogger())
	title := "attorney"

	res, err := fx.svc.CreateUser(context.Background(), fx.admin.Id, dto.CreateUserRequest{
		Email: "client@firm.test", Password: "correct-horse", FullName: "C Lient", Role: "client", StaffRole: &title,
	})
	require.NoError(t, err)
	assert.Nil(t, res.StaffRole)
}

func TestDeleteUserRevokesSessions(t *testing.T) {
	fx := newAdminFixture(t, nopLogger())
	client := seedUser(t, fx.factory, "client@firm.test", entity.UserRoleClient, "correct-horse")

	_, err := fx.svc.DeleteUser(context.Background(), fx.admin.Id, fx.admin.Id)
	assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))

	res, err := fx.svc.DeleteUser(context.Background(), fx.admin.Id, client.Id)
	require.NoError(t, err)
	assert.Equal(t, 2, res.SessionsRevoked)
	assert.Equal(t, client.Id, fx.sessions.users[0])
	assert.Equal(t, client.Id, fx.publisher.deleted[0])

	_, err = fx.svc.DeleteUser(context.Background(), fx.admin.Id, client.Id)
	assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
}

func TestListUsersFiltersByRole(t *testing.T) {
	fx := newAdminFixture(t, nopLogger())
	seedUser(t, fx.factory, "c1@firm.test", entity.UserRoleClient, "correct-horse")
	seedUser(t, fx.factory, "c2@firm.test", entity.UserRoleClient, "correct-horse")

	res, err := fx.svc.ListUsers(context.Background(), dto.UserListQuery{Role: "client"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)
	assert.Len(t, res.Users, 2)

	_, err = fx.svc.ListUsers(context.Background(), dto.UserListQuery{Role: "partner"})
	assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
}

func TestDashboardStats(t *testing.T) {
	fx := newAdminFixture(t, nopLogger())
	client := seedUser(t, fx.factory, "client@firm.test", entity.UserRoleClient, "correct-horse")
	c := seedCase(t, fx.factory, client.Id)
	seedDocument(t, fx.factory, c.Id, client.Id)

	stats, err := fx.svc.GetDashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Users)
	assert.Equal(t, int64(1), stats.OpenCases)
	assert.Equal(t, int64(1), stats.Documents)
	assert.Equal(t, int64(1), stats.PendingDocuments)
}

func TestSystemLogsReadBackFromFile(t *testing.T) {
	log := logger.NewZapLogger(filepath.Join(t.TempDir(), "app.log"), true)
	fx := newAdminFixture(t, log)

	log.Info("ADMIN", "first", nil)
	log.Warn("ADMIN", "second", map[string]interface{}{"k": "v"})
	_ = log.Sync()

	entries, err := fx.svc.GetSystemLogs(context.Background(), 0, 10, "WARN")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "second", entries[0].Message)

	detail, err := fx.svc.GetLogDetail(context.Background(), entries[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "v", detail.Details["k"])

	_, err = fx.svc.GetLogDetail(context.Background(), "missing")
	assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
}
