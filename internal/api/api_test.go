package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sitebuilder/internal/auth"
	"sitebuilder/internal/catalog"
	"sitebuilder/internal/config"
	"sitebuilder/internal/domain"
	"sitebuilder/internal/monitoring"
	"sitebuilder/internal/service"
	"sitebuilder/internal/storage"
)

type testServer struct {
	router  *gin.Engine
	session *service.Session
}

func setupServer(t *testing.T, authEndpoint string) *testServer {
	t.Helper()
	state, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "builder.db"))
	require.NoError(t, err)
	t.Cleanup(func() { state.Close() })

	logger := zap.NewNop()
	session := service.NewSession(service.SessionDeps{
		Library:       catalog.MustDefault(),
		Projects:      service.NewProjectStore(state, logger),
		Logger:        logger,
		AutosaveDelay: time.Hour,
	})
	t.Cleanup(session.Close)

	metrics := monitoring.New()
	router := NewRouter(Deps{
		Session: session,
		Auth:    auth.NewClient(config.AuthConfig{Endpoint: authEndpoint, Timeout: 2 * time.Second}, logger, metrics),
		Events:  service.NewBroadcaster(),
		Logger:  logger,
		Metrics: metrics,
		Login:   RateLimitConfig{RequestsPerSecond: 1, Burst: 2},
	})
	return &testServer{router: router, session: session}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w, out
}

func TestCanvasFlow(t *testing.T) {
	s := setupServer(t, "http://unused")

	w, out := s.do(t, http.MethodPost, "/api/canvas/components", gin.H{"type": "heading"})
	require.Equal(t, http.StatusCreated, w.Code)
	heading := out["id"].(string)

	w, out = s.do(t, http.MethodPost, "/api/canvas/components", gin.H{"type": "button"})
	require.Equal(t, http.StatusCreated, w.Code)
	button := out["id"].(string)

	_, out = s.do(t, http.MethodPost, "/api/canvas/components", gin.H{"type": "carousel"})
	assert.Equal(t, false, out["applied"])

	_, out = s.do(t, http.MethodPost, "/api/canvas/reorder", gin.H{"sourceId": button, "targetId": heading})
	assert.Equal(t, true, out["applied"])

	comps := s.session.Components()
	require.Len(t, comps, 2)
	assert.Equal(t, button, comps[0].ID)

	_, out = s.do(t, http.MethodPut, "/api/canvas/components/"+button+"/style", gin.H{"key": "padding", "value": "0"})
	assert.Equal(t, true, out["applied"])

	_, out = s.do(t, http.MethodPatch, "/api/canvas/components/missing", gin.H{"content": "x"})
	assert.Equal(t, false, out["applied"])

	_, out = s.do(t, http.MethodDelete, "/api/canvas/components/"+heading, nil)
	assert.Equal(t, true, out["applied"])
	assert.Len(t, s.session.Components(), 1)
}

func TestInspectorEndpoints(t *testing.T) {
	s := setupServer(t, "http://unused")

	w, _ := s.do(t, http.MethodGet, "/api/inspector", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	s.do(t, http.MethodPost, "/api/canvas/components", gin.H{"type": "divider"})

	w, out := s.do(t, http.MethodGet, "/api/inspector", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, out["controls"], 2)

	w, _ = s.do(t, http.MethodPut, "/api/inspector/content", gin.H{"value": "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, _ = s.do(t, http.MethodPut, "/api/inspector/backgroundColor", gin.H{"value": "#000000"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInspectorRejectsBadAlignment(t *testing.T) {
	s := setupServer(t, "http://unused")

	_, out := s.do(t, http.MethodPost, "/api/canvas/components", gin.H{"type": "heading"})
	id, _ := out["id"].(string)
	require.NotEmpty(t, id)

	w, out := s.do(t, http.MethodPut, "/api/inspector/textAlign", gin.H{"id": id, "value": "justify"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, out["error"], "justify")

	w, _ = s.do(t, http.MethodPut, "/api/inspector/textAlign", gin.H{"id": id, "value": "center"})
	assert.Equal(t, http.StatusOK, w.Code)
	comp, _ := s.session.Component(id)
	assert.Equal(t, "center", comp.Styles[domain.StyleTextAlign])
}

func TestProjectEndpoints(t *testing.T) {
	s := setupServer(t, "http://unused")

	w, _ := s.do(t, http.MethodPost, "/api/projects", gin.H{"name": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, out := s.do(t, http.MethodPost, "/api/projects", gin.H{"name": "Лендинг"})
	require.Equal(t, http.StatusCreated, w.Code)
	projectID := out["id"].(string)

	s.do(t, http.MethodPost, "/api/canvas/templates/hero", nil)
	w, out = s.do(t, http.MethodPost, "/api/session/save", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, out["componentCount"])

	_, out = s.do(t, http.MethodGet, "/api/projects", nil)
	assert.Len(t, out["projects"], 1)

	w, _ = s.do(t, http.MethodDelete, "/api/projects/"+projectID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, out = s.do(t, http.MethodDelete, "/api/projects/"+projectID+"?confirm=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(domain.SessionUnsaved), out["state"])

	w, _ = s.do(t, http.MethodPost, "/api/projects/"+projectID+"/open", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLoginEndpoint(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseMultipartForm(1 << 20)
		if r.FormValue("password") != "right" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()
	s := setupServer(t, upstream.URL)

	w, out := s.do(t, http.MethodPost, "/api/login", gin.H{"username": "admin", "password": "right"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/dashboard", out["redirect"])

	w, out = s.do(t, http.MethodPost, "/api/login", gin.H{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, out["error"], "login rejected")

	// burst of 2 is spent
	w, _ = s.do(t, http.MethodPost, "/api/login", gin.H{"username": "admin", "password": "right"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRoutesAndHealth(t *testing.T) {
	s := setupServer(t, "http://unused")

	w, out := s.do(t, http.MethodGet, "/api/routes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, out["routes"], 5)

	w, _ = s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sitebuilder_http_requests_total")
}

// streamRecorder adds the CloseNotifier that gin's Stream requires.
type streamRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func newStreamRecorder() *streamRecorder {
	return &streamRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool, 1)}
}

func (r *streamRecorder) CloseNotify() <-chan bool { return r.closed }

func TestEventStream(t *testing.T) {
	s := setupServer(t, "http://unused")
	events := service.NewBroadcaster()
	h := &handlers{session: s.session, events: events, logger: zap.NewNop()}

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := newStreamRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	done := make(chan struct{})
	go func() {
		h.streamEvents(c)
		close(done)
	}()

	for events.Subscribers() == 0 {
		time.Sleep(time.Millisecond)
	}
	events.Emit(context.Background(), service.EventCanvasChanged, gin.H{"op": "add"})
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	assert.Contains(t, w.Body.String(), "event:"+service.EventCanvasChanged)
}
