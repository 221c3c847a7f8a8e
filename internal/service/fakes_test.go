package service

import (
	"Viewpoint/internal/model"
	"Viewpoint/internal/pkg/geo"
	"context"
	"sync"
	"time"
)

type interactionRow struct {
	kind       model.InteractionKind
	targetType model.ResourceType
	targetID   uint64
}

// memStore 内存版的浏览、互动、资源与关注存储
type memStore struct {
	mu           sync.Mutex
	views        []*model.ResourceView
	nextViewID   uint64
	owners       map[model.ResourceType]map[uint64]uint64
	interactions []interactionRow
	follows      []model.UserFollow

	createErr error
	findErr   error
	countErr  error
	countHits int
}

func newMemStore() *memStore {
	return &memStore{owners: map[model.ResourceType]map[uint64]uint64{
		model.ResourceProfile: {},
		model.ResourcePost:    {},
		model.ResourceVideo:   {},
		model.ResourcePhoto:   {},
	}}
}

func (m *memStore) addUser(id uint64) {
	m.owners[model.ResourceProfile][id] = id
}

func (m *memStore) addContent(t model.ResourceType, id, owner uint64) {
	m.owners[t][id] = owner
}

func (m *memStore) addInteraction(kind model.InteractionKind, t model.ResourceType, id uint64, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < n; i++ {
		m.interactions = append(m.interactions, interactionRow{kind: kind, targetType: t, targetID: id})
	}
}

func (m *memStore) Create(_ context.Context, view *model.ResourceView) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.nextViewID++
	cp := *view
	cp.ID = m.nextViewID
	view.ID = cp.ID
	m.views = append(m.views, &cp)
	return nil
}

func (m *memStore) FindRecentByViewer(_ context.Context, t model.ResourceType, id, viewerID uint64, since time.Time) (*model.ResourceView, error) {
	return m.findRecent(t, id, since, func(v *model.ResourceView) bool {
		return v.ViewerUserID != nil && *v.ViewerUserID == viewerID
	})
}

func (m *memStore) FindRecentByIP(_ context.Context, t model.ResourceType, id uint64, ip string, since time.Time) (*model.ResourceView, error) {
	return m.findRecent(t, id, since, func(v *model.ResourceView) bool {
		return v.IPAddress != nil && *v.IPAddress == ip
	})
}

func (m *memStore) findRecent(t model.ResourceType, id uint64, since time.Time, match func(*model.ResourceView) bool) (*model.ResourceView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	var latest *model.ResourceView
	for _, v := range m.views {
		if v.ResourceType != t || v.ResourceID != id || v.CreatedAt.Before(since) || !match(v) {
			continue
		}
		if latest == nil || v.CreatedAt.After(latest.CreatedAt) {
			latest = v
		}
	}
	return latest, nil
}

func (m *memStore) CountByResource(_ context.Context, t model.ResourceType, id uint64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.countHits++
	var n int64
	for _, v := range m.views {
		if v.ResourceType == t && v.ResourceID == id {
			n++
		}
	}
	return n, nil
}

func (m *memStore) CountContentViewsByOwner(_ context.Context, ownerID uint64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, v := range m.views {
		if v.ResourceType != model.ResourceProfile && v.OwnerUserID == ownerID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) CountByTarget(_ context.Context, kind model.InteractionKind, t model.ResourceType, id uint64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	var n int64
	for _, r := range m.interactions {
		if r.kind == kind && r.targetType == t && r.targetID == id {
			n++
		}
	}
	return n, nil
}

func (m *memStore) CountReceivedByOwner(_ context.Context, kind model.InteractionKind, ownerID uint64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	var n int64
	for _, r := range m.interactions {
		if r.kind != kind || r.targetType == model.ResourceProfile {
			continue
		}
		if owner, ok := m.owners[r.targetType][r.targetID]; ok && owner == ownerID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) FindOwner(_ context.Context, t model.ResourceType, id uint64) (uint64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	owner, ok := m.owners[t][id]
	return owner, ok, nil
}

func (m *memStore) Exists(ctx context.Context, entityType model.EntityType, id uint64) (bool, error) {
	_, ok, err := m.FindOwner(ctx, entityType.ResourceType(), id)
	return ok, err
}

func (m *memStore) CountContentByOwner(_ context.Context, t model.ResourceType, ownerID uint64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, owner := range m.owners[t] {
		if owner == ownerID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) GetUserFollowerCount(_ context.Context, userID uint64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, f := range m.follows {
		if f.FollowingID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) GetUserFollowingCount(_ context.Context, userID uint64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, f := range m.follows {
		if f.FollowerID == userID {
			n++
		}
	}
	return n, nil
}

// memAnalytics 内存版聚合记录存储
type memAnalytics[T any] struct {
	mu      sync.Mutex
	rows    map[uint64]T
	key     func(*T) uint64
	upserts int
	getErr  error
}

func newMemAnalytics[T any](key func(*T) uint64) *memAnalytics[T] {
	return &memAnalytics[T]{rows: map[uint64]T{}, key: key}
}

func (m *memAnalytics[T]) Get(_ context.Context, id uint64) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (m *memAnalytics[T]) Upsert(_ context.Context, record *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	m.rows[m.key(record)] = *record
	return nil
}

func (m *memAnalytics[T]) upsertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upserts
}

// inlineRunner 同步执行后台任务
type inlineRunner struct {
	mu    sync.Mutex
	names []string
	full  bool
}

func (r *inlineRunner) Go(ctx context.Context, name string, fn func(context.Context) error) bool {
	r.mu.Lock()
	if r.full {
		r.mu.Unlock()
		return false
	}
	r.names = append(r.names, name)
	r.mu.Unlock()

	_ = fn(context.WithoutCancel(ctx))
	return true
}

// fixedResolver 按 IP 返回预设归属地
type fixedResolver struct {
	locations map[string]geo.Location
	calls     []string
}

func (f *fixedResolver) Resolve(_ context.Context, ip string) geo.Location {
	f.calls = append(f.calls, ip)
	return f.locations[ip]
}

// fakeClock 可手动推进的时钟
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
