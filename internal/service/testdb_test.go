package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"case-portal-be/internal/entity"
	"case-portal-be/internal/model"
	"case-portal-be/internal/pkg/logger"
	"case-portal-be/internal/repository/unitofwork"
	"case-portal-be/internal/websocket"
	adminEvents "case-portal-be/pkg/admin/events"
	"case-portal-be/pkg/session"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func newTestFactory(t *testing.T) unitofwork.RepositoryFactory {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormLogger.Default.LogMode(gormLogger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return unitofwork.NewRepositoryFactory(db)
}

func seedUser(t *testing.T, f unitofwork.RepositoryFactory, email string, role entity.UserRole, password string) *entity.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	hashStr := string(hash)

	user := &entity.User{
		Id:           uuid.New(),
		Email:        email,
		PasswordHash: &hashStr,
		FullName:     "Test " + string(role),
		Role:         role,
		Status:       entity.UserStatusActive,
	}
	require.NoError(t, f.NewUnitOfWork(context.Background()).UserRepository().Create(context.Background(), user))
	return user
}

func seedCase(t *testing.T, f unitofwork.RepositoryFactory, client uuid.UUID) *entity.Case {
	t.Helper()
	c := &entity.Case{
		Id:       uuid.New(),
		Title:    "Estate of Doe",
		ClientId: client,
		Status:   entity.CaseStatusOpen,
	}
	require.NoError(t, f.NewUnitOfWork(context.Background()).CaseRepository().Create(context.Background(), c))
	return c
}

func seedDocument(t *testing.T, f unitofwork.RepositoryFactory, caseId, uploader uuid.UUID) *entity.Document {
	t.Helper()
	doc := &entity.Document{
		Id:          uuid.New(),
		CaseId:      caseId,
		Filename:    "brief.pdf",
		MimeType:    "application/pdf",
		Size:        128,
		BucketName:  "case-documents",
		StoragePath: "cases/" + caseId.String() + "/" + uuid.NewString() + "-brief.pdf",
		UploadedAt:  time.Now(),
		UploadedBy:  uploader,
		Status:      entity.DocumentStatusPending,
	}
	require.NoError(t, f.NewUnitOfWork(context.Background()).DocumentRepository().Create(context.Background(), doc))
	return doc
}

func actorOf(u *entity.User) Actor {
	return Actor{UserID: u.Id, SessionID: "sid-" + u.Id.String()[:8], Role: u.Role}
}

type fakeSessions struct {
	mu       sync.Mutex
	issued   []uuid.UUID
	revoked  []string
	users    []uuid.UUID
	issueErr error
}

func (f *fakeSessions) Issue(ctx context.Context, userID uuid.UUID, role string) (string, *session.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.issueErr != nil {
		return "", nil, f.issueErr
	}
	f.issued = append(f.issued, userID)
	return "token-" + userID.String(), &session.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func (f *fakeSessions) Revoke(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, sessionID)
	return nil
}

func (f *fakeSessions) RevokeUser(ctx context.Context, userID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, userID)
	return 2, nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	created  []string
	deleted  []uuid.UUID
	statuses []adminEvents.DocumentStatusChange
}

func (p *recordingPublisher) PublishUserCreated(ctx context.Context, userId uuid.UUID, email, role, source string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, source)
}

func (p *recordingPublisher) PublishUserDeleted(ctx context.Context, userId uuid.UUID, sessionsRevoked int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, userId)
}

func (p *recordingPublisher) PublishDocumentStatusChanged(ctx context.Context, doc adminEvents.DocumentStatusChange) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses = append(p.statuses, doc)
}

type sentMessage struct {
	userID uuid.UUID
	msg    websocket.Message
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (n *recordingNotifier) Send(userID uuid.UUID, msg websocket.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{userID: userID, msg: msg})
}

func (n *recordingNotifier) messages() []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMessage(nil), n.sent...)
}

func nopLogger() logger.ILogger { return logger.NewNopLogger() }
