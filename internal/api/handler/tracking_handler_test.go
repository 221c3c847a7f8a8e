package handler

import (
	"Viewpoint/internal/api/dto"
	"Viewpoint/internal/model"
	"Viewpoint/internal/pkg/consts"
	"Viewpoint/internal/service"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTrackingRouter(tracker *fakeTracker, analytics *fakeAnalytics, resources *fakeResources, viewerID uint64) *gin.Engine {
	h := NewTrackingHandler(tracker, analytics, resources)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", viewerID)
		c.Next()
	})
	r.POST("/tracking/resources/:type/:id/view", h.TrackResourceView)
	r.POST("/tracking/profiles/:id/view", h.TrackProfileView)
	r.POST("/tracking/posts/:id/view", h.TrackPostView)
	r.POST("/tracking/videos/:id/view", h.TrackVideoView)
	r.POST("/tracking/photos/:id/view", h.TrackPhotoView)
	return r
}

func defaultResources() *fakeResources {
	return &fakeResources{owners: map[model.ResourceType]map[uint64]uint64{
		model.ResourceProfile: {3: 3},
		model.ResourcePost:    {12: 3},
		model.ResourceVideo:   {4: 3},
		model.ResourcePhoto:   {8: 9},
	}}
}

func decodeTrack(t *testing.T, env envelope) dto.TrackViewResp {
	t.Helper()
	var resp dto.TrackViewResp
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	return resp
}

func TestTrackPostView_Tracked(t *testing.T) {
	tracker := &fakeTracker{}
	analytics := &fakeAnalytics{}
	r := newTrackingRouter(tracker, analytics, defaultResources(), 5)

	rec, env := perform(t, r, http.MethodPost, "/tracking/posts/12/view", `{"window_minutes": 10}`, map[string]string{
		"X-Forwarded-For": "203.0.113.7",
		"User-Agent":      "ua",
		"Referer":         "https://example.com",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 200, env.Code)
	assert.Equal(t, dto.TrackViewResp{Success: true, Tracked: true}, decodeTrack(t, env))

	require.Len(t, tracker.reqs, 1)
	req := tracker.reqs[0]
	assert.Equal(t, model.ResourcePost, req.ResourceType)
	assert.Equal(t, uint64(12), req.ResourceID)
	assert.Equal(t, uint64(3), req.OwnerUserID)
	require.NotNil(t, req.ViewerUserID)
	assert.Equal(t, uint64(5), *req.ViewerUserID)
	assert.Equal(t, 10, req.WindowMinutes)
	assert.Equal(t, "203.0.113.7", req.Client.ForwardedFor)
	assert.Equal(t, "ua", req.Client.UserAgent)
	assert.Equal(t, "https://example.com", req.Client.Referrer)

	assert.Equal(t, []refreshCall{{entityType: model.EntityPost, id: 12}}, analytics.refreshes)
}

func TestTrackProfileView_AnonymousRefreshesUser(t *testing.T) {
	tracker := &fakeTracker{}
	analytics := &fakeAnalytics{}
	r := newTrackingRouter(tracker, analytics, defaultResources(), 0)

	_, env := perform(t, r, http.MethodPost, "/tracking/resources/profile/3/view", "", nil)

	assert.True(t, decodeTrack(t, env).Tracked)
	require.Len(t, tracker.reqs, 1)
	assert.Nil(t, tracker.reqs[0].ViewerUserID)
	assert.Equal(t, 0, tracker.reqs[0].WindowMinutes)
	assert.Equal(t, []refreshCall{{entityType: model.EntityUser, id: 3}}, analytics.refreshes)
}

func TestTrackView_DuplicateDoesNotRefresh(t *testing.T) {
	tracker := &fakeTracker{result: &service.TrackResult{Tracked: false, Reason: consts.ReasonDuplicate}}
	analytics := &fakeAnalytics{}
	r := newTrackingRouter(tracker, analytics, defaultResources(), 5)

	rec, env := perform(t, r, http.MethodPost, "/tracking/videos/4/view", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.TrackViewResp{Success: true, Tracked: false, Reason: consts.ReasonDuplicate}, decodeTrack(t, env))
	assert.Empty(t, analytics.refreshes)
}

func TestTrackView_UnknownResource(t *testing.T) {
	tracker := &fakeTracker{}
	r := newTrackingRouter(tracker, &fakeAnalytics{}, defaultResources(), 5)

	rec, env := perform(t, r, http.MethodPost, "/tracking/photos/999/view", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.TrackViewResp{Success: true, Tracked: false, Reason: consts.ReasonResourceNotFound}, decodeTrack(t, env))
	assert.Empty(t, tracker.reqs)
}

func TestTrackView_OwnerLookupFailure(t *testing.T) {
	resources := defaultResources()
	resources.err = errors.New("db down")
	r := newTrackingRouter(&fakeTracker{}, &fakeAnalytics{}, resources, 5)

	rec, env := perform(t, r, http.MethodPost, "/tracking/posts/12/view", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.TrackViewResp{Success: true, Tracked: false, Reason: consts.ReasonSaveFailed}, decodeTrack(t, env))
}

func TestTrackView_BadRequests(t *testing.T) {
	r := newTrackingRouter(&fakeTracker{}, &fakeAnalytics{}, defaultResources(), 5)

	cases := []struct {
		name string
		path string
		body string
	}{
		{"unknown type", "/tracking/resources/story/1/view", ""},
		{"non numeric id", "/tracking/posts/abc/view", ""},
		{"zero id", "/tracking/posts/0/view", ""},
		{"window too large", "/tracking/posts/12/view", `{"window_minutes": 999999}`},
		{"negative window", "/tracking/posts/12/view", `{"window_minutes": -1}`},
		{"wrong json type", "/tracking/posts/12/view", `{"window_minutes": "ten"}`},
		{"broken json", "/tracking/posts/12/view", `{"window_minutes":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, env := perform(t, r, http.MethodPost, tc.path, tc.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, 400, env.Code)
		})
	}
}
