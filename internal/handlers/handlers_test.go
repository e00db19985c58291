package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/clima-backend/internal/models"
	"github.com/AnshRaj112/clima-backend/internal/services"
)

var handlerEpoch = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu        sync.Mutex
	events    []models.Feedback
	deadlines []time.Duration // time left on each Publish context
	err       error
}

func (p *recordingPublisher) Publish(ctx context.Context, record models.Feedback) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, record)
	if dl, ok := ctx.Deadline(); ok {
		p.deadlines = append(p.deadlines, time.Until(dl))
	}
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type recordingAuditor struct {
	mu       sync.Mutex
	attempts []models.AdminLoginAttempt
	err      error
}

func (a *recordingAuditor) Record(_ context.Context, attempt models.AdminLoginAttempt) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.attempts = append(a.attempts, attempt)
	return a.err
}

func (a *recordingAuditor) Recent(_ context.Context, limit int) ([]models.AdminLoginAttempt, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return nil, a.err
	}
	out := []models.AdminLoginAttempt{}
	for i := len(a.attempts) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, a.attempts[i])
	}
	return out, nil
}

// failingStore fails every call with err.
type failingStore struct {
	services.FeedbackStore
	err error
}

func (s failingStore) Insert(context.Context, *models.Feedback) (primitive.ObjectID, error) {
	return primitive.NilObjectID, s.err
}

func (s failingStore) ListAll(context.Context) ([]models.Feedback, error) { return nil, s.err }

func (s failingStore) ListSince(context.Context, time.Time) ([]models.Feedback, error) {
	return nil, s.err
}

func (s failingStore) ListFiltered(context.Context, models.FeedbackFilter) ([]models.Feedback, error) {
	return nil, s.err
}

func (s failingStore) Query(context.Context, models.FeedbackFilter, int, int) (*models.FeedbackPage, error) {
	return nil, s.err
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), "body: %s", rec.Body.String())
	return v
}
