package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"article-catalog/internal/model"
	"article-catalog/internal/service"
	"article-catalog/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestServer(t *testing.T) (*Server, *store.MemoryStore) {
	st := store.NewMemoryStore()
	return New(service.New(st, zap.NewNop()), zap.NewNop()), st
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeArticle(t *testing.T, rec *httptest.ResponseRecorder) model.Article {
	t.Helper()
	var a model.Article
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	return a
}

func TestCreateAndGet_RoundTrip(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/articles/create", `{"code":"A1","designation":"Widget","price":9.99}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = do(t, s, http.MethodGet, "/articles/A1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.NewArticle("A1", "Widget", 9.99), decodeArticle(t, rec))
}

func TestCreate_DuplicateIsConflictAndKeepsFirst(t *testing.T) {
	s, st := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/articles/create", `{"code":"A1","designation":"Widget","price":9.99}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, s, http.MethodPost, "/articles/create", `{"code":"A1","designation":"Other","price":1}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"article already exists"}`, rec.Body.String())

	got, err := st.Get(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Designation)
}

func TestCreate_BadRequests(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/articles/create", `{"code":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/articles/create", `{"designation":"nameless","price":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"error":"validation failed","fields":{"code":"required"}}`, rec.Body.String())
}

func TestList(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/articles/all", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	for _, body := range []string{
		`{"code":"A1","designation":"Widget","price":9.99}`,
		`{"code":"B2","designation":"Gadget","price":0}`,
		`{"code":"C3","designation":"Gizmo","price":-2.5}`,
	} {
		require.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, "/articles/create", body).Code)
	}

	rec = do(t, s, http.MethodGet, "/articles/all", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var all []model.Article
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.ElementsMatch(t, []model.Article{
		model.NewArticle("A1", "Widget", 9.99),
		model.NewArticle("B2", "Gadget", 0),
		model.NewArticle("C3", "Gizmo", -2.5),
	}, all)
}

func TestUpdate_PathOverridesBody(t *testing.T) {
	s, st := newTestServer(t)
	require.Equal(t, http.StatusCreated,
		do(t, s, http.MethodPost, "/articles/create", `{"code":"A1","designation":"Widget","price":9.99}`).Code)

	rec := do(t, s, http.MethodPut, "/articles/update/A1", `{"code":"A2","designation":"X","price":1.0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.NewArticle("A1", "X", 1.0), decodeArticle(t, rec))

	ctx := context.Background()
	got, err := st.Get(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, model.NewArticle("A1", "X", 1.0), *got)

	exists, err := st.Exists(ctx, "A2")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUpdate_MissingIsNotFound(t *testing.T) {
	s, st := newTestServer(t)

	rec := do(t, s, http.MethodPut, "/articles/update/ghost", `{"designation":"X","price":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	all, err := st.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDelete(t *testing.T) {
	s, _ := newTestServer(t)
	require.Equal(t, http.StatusCreated,
		do(t, s, http.MethodPost, "/articles/create", `{"code":"A1","designation":"Widget","price":9.99}`).Code)

	rec := do(t, s, http.MethodDelete, "/articles/delete/A1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/articles/A1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodDelete, "/articles/delete/A1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreate_UnroutableCodesRejected(t *testing.T) {
	s, st := newTestServer(t)

	for code, tag := range map[string]string{
		"A/1": "excludesall",
		".":   "ne",
		"..":  "ne",
		"all": "ne",
	} {
		body, err := json.Marshal(model.NewArticle(code, "Widget", 1))
		require.NoError(t, err)

		rec := do(t, s, http.MethodPost, "/articles/create", string(body))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, code)
		assert.JSONEq(t, `{"error":"validation failed","fields":{"code":"`+tag+`"}}`, rec.Body.String(), code)
	}

	all, err := st.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRouting_FallbacksAnswerJSON(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := New(service.New(store.NewMemoryStore(), zap.NewNop()), zap.New(core))

	rec := do(t, s, http.MethodDelete, "/articles/create", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"method not allowed"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	rec = do(t, s, http.MethodGet, "/articles/create/x", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"route not found"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	// GET on a path segment that is not "all" is a lookup by code.
	rec = do(t, s, http.MethodGet, "/articles/create", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"article not found"}`, rec.Body.String())

	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 3)
	assert.EqualValues(t, http.StatusMethodNotAllowed, entries[0].ContextMap()["status"])
	assert.EqualValues(t, http.StatusNotFound, entries[1].ContextMap()["status"])
	assert.Equal(t, "/articles/create/x", entries[1].ContextMap()["path"])
}

func TestHealthAndRequestID(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

// stubService fails or panics on demand.
type stubService struct {
	err   error
	panic bool
}

func (s stubService) CreateArticle(context.Context, *model.Article) error { return s.err }
func (s stubService) UpdateArticle(context.Context, *model.Article) error { return s.err }
func (s stubService) DeleteArticle(context.Context, string) error { return s.err }
func (s stubService) GetArticle(context.Context, string) (*model.Article, error) { return nil, s.err }

func (s stubService) FindAllArticles(context.Context) ([]model.Article, error) {
	if s.panic {
		panic("boom")
	}
	return nil, s.err
}

func TestInternalErrorsAreMasked(t *testing.T) {
	s := New(stubService{err: errors.New("connection refused")}, zap.NewNop())

	rec := do(t, s, http.MethodGet, "/articles/X", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestListNilBecomesEmptyArray(t *testing.T) {
	s := New(stubService{}, zap.NewNop())

	rec := do(t, s, http.MethodGet, "/articles/all", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestPanicIsRecovered(t *testing.T) {
	s := New(stubService{panic: true}, zap.NewNop())

	rec := do(t, s, http.MethodGet, "/articles/all", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPanicAfterWriteKeepsResponse(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	s := New(stubService{}, zap.New(core))

	h := s.recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("partial"))
		panic("late")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles/all", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "partial", rec.Body.String())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, true, logs.All()[0].ContextMap()["response_started"])
}

func TestStartStop(t *testing.T) {
	s, _ := newTestServer(t)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start("0") }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.ErrorIs(t, <-errCh, http.ErrServerClosed)
}
