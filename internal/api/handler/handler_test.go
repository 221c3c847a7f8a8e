package handler

import (
	"Viewpoint/internal/model"
	"Viewpoint/internal/service"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

type fakeTracker struct {
	mu     sync.Mutex
	reqs   []*service.TrackViewReq
	result *service.TrackResult
}

func (f *fakeTracker) TrackView(_ context.Context, req *service.TrackViewReq) *service.TrackResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.result != nil {
		return f.result
	}
	return &service.TrackResult{Tracked: true}
}

type refreshCall struct {
	entityType model.EntityType
	id         uint64
}

type fakeAnalytics struct {
	service.AnalyticsService
	refreshes []refreshCall
	record    any
	err       error
	gotForce  bool
}

func (f *fakeAnalytics) RequestRefresh(_ context.Context, entityType model.EntityType, id uint64) {
	f.refreshes = append(f.refreshes, refreshCall{entityType: entityType, id: id})
}

func (f *fakeAnalytics) GetAnalytics(_ context.Context, _ model.EntityType, _ uint64, force bool) (any, error) {
	f.gotForce = force
	return f.record, f.err
}

type fakeResources struct {
	owners map[model.ResourceType]map[uint64]uint64
	err    error
}

func (f *fakeResources) FindOwner(_ context.Context, t model.ResourceType, id uint64) (uint64, error) {
	if f.err != nil {
		return 0, f.err
	}
	owner, ok := f.owners[t][id]
	if !ok {
		return 0, service.ErrEntityNotFound
	}
	return owner, nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(t *testing.T, r http.Handler, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}
