package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-blog-api/cache"
	"github.com/goliatone/go-blog-api/internal/auth"
	"github.com/goliatone/go-blog-api/internal/cacheinfra"
	"github.com/goliatone/go-blog-api/internal/model"
	"github.com/goliatone/go-blog-api/pkg/testsupport"
)

var errDatabase = errors.New("database unavailable")

// callTracker counts method calls so tests can tell cache hits from
// database round trips.
type callTracker struct {
	mu        sync.RWMutex
	callCount map[string]int
}

func (c *callTracker) trackCall(method string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.callCount == nil {
		c.callCount = make(map[string]int)
	}
	c.callCount[method]++
}

func (c *callTracker) getCallCount(method string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.callCount[method]
}

type mockUserStore struct {
	callTracker
	lock   sync.Mutex
	users  []model.User
	nextID int64
	err    error
}

func newMockUserStore(users ...model.User) *mockUserStore {
	return &mockUserStore{users: users, nextID: int64(len(users)) + 1}
}

func (m *mockUserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	m.trackCall("FindByEmail")
	if m.err != nil {
		return nil, m.err
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (m *mockUserStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	m.trackCall("GetByID")
	if m.err != nil {
		return nil, m.err
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (m *mockUserStore) Create(_ context.Context, name, email, passwordHash string) (*model.User, error) {
	m.trackCall("Create")
	if m.err != nil {
		return nil, m.err
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	user := model.User{ID: m.nextID, Name: name, Email: email, Password: passwordHash, CreatedAt: time.Now()}
	m.nextID++
	m.users = append(m.users, user)
	return &user, nil
}

func (m *mockUserStore) ListWithoutPassword(context.Context) ([]model.User, error) {
	m.trackCall("ListWithoutPassword")
	if m.err != nil {
		return nil, m.err
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	users := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u.Public())
	}
	return users, nil
}

func (m *mockUserStore) TopUsersWithLatestComments(context.Context) ([]model.TopUserPost, error) {
	m.trackCall("TopUsersWithLatestComments")
	if m.err != nil {
		return nil, m.err
	}
	return nil, nil
}

func (m *mockUserStore) TopUsersWithLatestCommentsOptimized(context.Context) ([]model.TopUser, error) {
	m.trackCall("TopUsersWithLatestCommentsOptimized")
	if m.err != nil {
		return nil, m.err
	}
	comment := "latest"
	return []model.TopUser{{UserID: 1, Name: "Ada", PostCount: 2, LatestComment: &comment}}, nil
}

type mockPostStore struct {
	callTracker
	lock      sync.Mutex
	posts     []model.Post
	nextID    int64
	err       error
	listErr   error
	createErr error
}

func newMockPostStore(posts ...model.Post) *mockPostStore {
	return &mockPostStore{posts: posts, nextID: int64(len(posts)) + 1}
}

func (m *mockPostStore) ListByUser(_ context.Context, userID int64) ([]model.Post, error) {
	m.trackCall("ListByUser")
	if m.err != nil {
		return nil, m.err
	}
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	posts := []model.Post{}
	for _, p := range m.posts {
		if p.UserID == userID {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

func (m *mockPostStore) Create(_ context.Context, userID int64, title, content string) (*model.Post, error) {
	m.trackCall("Create")
	if m.err != nil {
		return nil, m.err
	}
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	post := model.Post{ID: m.nextID, UserID: userID, Title: title, Content: content}
	m.nextID++
	m.posts = append(m.posts, post)
	return &post, nil
}

func (m *mockPostStore) GetByID(_ context.Context, id int64) (*model.Post, error) {
	m.trackCall("GetByID")
	if m.err != nil {
		return nil, m.err
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	for _, p := range m.posts {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

type mockCommentStore struct {
	callTracker
	comments []model.Comment
	err      error
}

func (m *mockCommentStore) Create(_ context.Context, postID, userID int64, content string) (*model.Comment, error) {
	m.trackCall("Create")
	if m.err != nil {
		return nil, m.err
	}
	comment := model.Comment{ID: int64(len(m.comments)) + 1, PostID: postID, UserID: &userID, Content: content}
	m.comments = append(m.comments, comment)
	return &comment, nil
}

// failingStore is a cache backend that is down.
type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}
func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}
func (failingStore) Delete(context.Context, string) error { return errors.New("connection refused") }
func (failingStore) Ping(context.Context) error           { return errors.New("connection refused") }
func (failingStore) Close() error                         { return nil }

func newTestAccessor(t *testing.T) cache.Accessor {
	t.Helper()
	store, err := cacheinfra.NewSturdycStore(cacheinfra.DefaultConfig())
	if err != nil {
		t.Fatalf("NewSturdycStore() failed: %v", err)
	}
	return cache.NewAccessor(store, cache.NewJSONCodec(), time.Hour, testsupport.DiscardLogger())
}

func newDownAccessor() cache.Accessor {
	return cache.NewAccessor(failingStore{}, cache.NewJSONCodec(), time.Hour, testsupport.DiscardLogger())
}

func newTestTokens() *auth.Tokens {
	return auth.NewTokens("test-secret", time.Hour)
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() failed: %v", err)
	}
	return hash
}
