package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/oriontask/orion-api/internal/api/shared"
	"github.com/oriontask/orion-api/internal/domain/policy"
	"github.com/oriontask/orion-api/internal/service"
	"github.com/oriontask/orion-api/internal/store"
)

// Stub stores satisfy the interfaces without behavior; the tests below only
// exercise paths that fail before any store call.
type stubTaskStore struct{ store.TaskStore }
type stubDharmaStore struct{ store.DharmaStore }

func newStubTaskHandler(t *testing.T) *TaskHandler {
	t.Helper()
	svc := service.NewTaskService(nil, stubTaskStore{}, stubDharmaStore{}, policy.New(policy.Config{}), nil)
	return NewTaskHandler(svc, nil)
}

func withUserID(req *http.Request, userID uuid.UUID) *http.Request {
	ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
	return req.WithContext(ctx)
}

func withChiParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestTaskHandlerRejectsMissingUser(t *testing.T) {
	t.Parallel()

	handler := newStubTaskHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader("{}"))
	rr := httptest.NewRecorder()
	handler.CreateTask(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	rr = httptest.NewRecorder()
	handler.ListTasks(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestTaskHandlerRejectsBadPathID(t *testing.T) {
	t.Parallel()

	handler := newStubTaskHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/tasks/not-a-uuid/done", nil)
	req = withUserID(req, uuid.New())
	req = withChiParam(req, "id", "not-a-uuid")
	rr := httptest.NewRecorder()

	handler.MarkAsDone(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTaskHandlerRejectsBadBody(t *testing.T) {
	t.Parallel()

	handler := newStubTaskHandler(t)

	// Malformed JSON.
	req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader("{broken"))
	req = withUserID(req, uuid.New())
	rr := httptest.NewRecorder()
	handler.CreateTask(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Title under the minimum length.
	req = httptest.NewRequest(http.MethodPost, "/api/tasks",
		strings.NewReader(`{"dharma_id":"`+uuid.NewString()+`","title":"Hi"}`))
	req = withUserID(req, uuid.New())
	rr = httptest.NewRecorder()
	handler.CreateTask(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTaskHandlerRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	handler := newStubTaskHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/tasks/x/status",
		strings.NewReader(`{"status":"paused"}`))
	req = withUserID(req, uuid.New())
	req = withChiParam(req, "id", uuid.NewString())
	rr := httptest.NewRecorder()

	handler.ChangeStatus(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTaskHandlerListRejectsBadFilters(t *testing.T) {
	t.Parallel()

	handler := newStubTaskHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks?dharma_id=nope", nil)
	req = withUserID(req, uuid.New())
	rr := httptest.NewRecorder()
	handler.ListTasks(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/tasks?status=paused", nil)
	req = withUserID(req, uuid.New())
	rr = httptest.NewRecorder()
	handler.ListTasks(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
