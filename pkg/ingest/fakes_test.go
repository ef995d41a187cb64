package ingest

import (
	"context"
	"errors"
	"io"
	"sync"

	"case-portal-be/internal/entity"
	"case-portal-be/pkg/aiservice"
	"case-portal-be/pkg/events"
	"case-portal-be/pkg/session"
	"case-portal-be/pkg/storage"

	"github.com/google/uuid"
)

type fakeSessions struct {
	mu       sync.Mutex
	calls    int
	aliveFor int // 0 means always live
	dead     bool
}

func (f *fakeSessions) Live(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.dead || (f.aliveFor > 0 && f.calls > f.aliveFor) {
		return session.ErrNoSession
	}
	return nil
}

func (f *fakeSessions) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type uploadCall struct {
	Bucket string
	Key    string
}

type fakeObjects struct {
	mu         sync.Mutex
	failures   map[string]error
	objects    map[string]bool
	uploads    []uploadCall
	removes    []uploadCall
	keepOnDrop bool
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{failures: map[string]error{}, objects: map[string]bool{}}
}

func (f *fakeObjects) Upload(ctx context.Context, bucket, key, contentType string, body io.Reader, size int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, uploadCall{Bucket: bucket, Key: key})
	if err := f.failures[bucket]; err != nil {
		return "", err
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	f.objects[bucket+"/"+key] = true
	return key, nil
}

func (f *fakeObjects) Remove(ctx context.Context, bucket string, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		f.removes = append(f.removes, uploadCall{Bucket: bucket, Key: key})
		if !f.keepOnDrop {
			delete(f.objects, bucket+"/"+key)
		}
	}
	return nil
}

func (f *fakeObjects) Exists(ctx context.Context, bucket, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.objects[bucket+"/"+key], nil
}

func (f *fakeObjects) UploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

func (f *fakeObjects) ObjectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func unavailable(bucket string) error {
	return &storage.Error{Kind: storage.KindUnavailable, Op: "put", Bucket: bucket, Err: errors.New("connection refused")}
}

func denied(bucket string) error {
	return &storage.Error{Kind: storage.KindAuth, Op: "put", Bucket: bucket, Err: errors.New("AccessDenied")}
}

type fakeDocuments struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]entity.Document
	createErr error
	creates   int
}

func newFakeDocuments() *fakeDocuments {
	return &fakeDocuments{rows: map[uuid.UUID]entity.Document{}}
}

func (f *fakeDocuments) Create(ctx context.Context, doc *entity.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	f.rows[doc.Id] = *doc
	return nil
}

func (f *fakeDocuments) FindByID(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	return &doc, nil
}

func (f *fakeDocuments) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type parserFunc func(ctx context.Context, req aiservice.ParseRequest) (string, error)

func (f parserFunc) ParseDocument(ctx context.Context, req aiservice.ParseRequest) (string, error) {
	return f(ctx, req)
}

type auditRecord struct {
	Action     string
	ResourceID string
	Details    map[string]interface{}
}

type recordingAuditor struct {
	mu      sync.Mutex
	records []auditRecord
}

func (a *recordingAuditor) LogEvent(ctx context.Context, userID uuid.UUID, action, resourceType, resourceID string, details map[string]interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, auditRecord{Action: action, ResourceID: resourceID, Details: details})
}

func (a *recordingAuditor) Actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.records))
	for _, r := range a.records {
		out = append(out, r.Action)
	}
	return out
}

type recordingSink struct {
	mu     sync.Mutex
	events []events.Event
}

func (s *recordingSink) Publish(ctx context.Context, e events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) Types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.EventType())
	}
	return out
}

type fixture struct {
	sessions  *fakeSessions
	objects   *fakeObjects
	documents *fakeDocuments
	auditor   *recordingAuditor
	sink      *recordingSink
	parser    parserFunc
	pipeline  *Pipeline
}

func newFixture(buckets ...string) *fixture {
	if len(buckets) == 0 {
		buckets = []string{"case-documents", "documents"}
	}
	f := &fixture{
		sessions:  &fakeSessions{},
		objects:   newFakeObjects(),
		documents: newFakeDocuments(),
		auditor:   &recordingAuditor{},
		sink:      &recordingSink{},
	}
	f.parser = func(ctx context.Context, req aiservice.ParseRequest) (string, error) {
		return "task-" + req.Filename, nil
	}
	f.pipeline = NewPipeline(Config{Buckets: buckets}, Deps{
		Sessions:  f.sessions,
		Objects:   f.objects,
		Documents: f.documents,
		Parser:    parserFunc(func(ctx context.Context, req aiservice.ParseRequest) (string, error) { return f.parser(ctx, req) }),
		Auditor:   f.auditor,
		Events:    f.sink,
	})
	return f
}

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")

func pdfUpload(caseID uuid.UUID) UploadRequest {
	return UploadRequest{
		SessionID: "sid-1",
		UserID:    uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		UserRole:  entity.UserRoleStaff,
		CaseID:    &caseID,
		File:      FileInput{Filename: "brief.pdf", ContentType: "application/pdf", Content: pdfBytes},
		Notes:     "summarize the brief",
	}
}

func collect() (func(UploadResult), func() []UploadResult) {
	var mu sync.Mutex
	var got []UploadResult
	return func(r UploadResult) {
			mu.Lock()
			got = append(got, r)
			mu.Unlock()
		}, func() []UploadResult {
			mu.Lock()
			defer mu.Unlock()
			return append([]UploadResult(nil), got...)
		}
}

