package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/pointfeed/internal/common"
	"github.com/dmitrijs2005/pointfeed/internal/dbx"
	"github.com/dmitrijs2005/pointfeed/internal/server/media"
	"github.com/dmitrijs2005/pointfeed/internal/server/models"
	"github.com/dmitrijs2005/pointfeed/internal/server/notify"
	"github.com/dmitrijs2005/pointfeed/internal/server/repositories/follows"
	"github.com/dmitrijs2005/pointfeed/internal/server/repositories/posts"
	"github.com/dmitrijs2005/pointfeed/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/pointfeed/internal/server/repositories/users"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// --- users ---

type fakeUsers struct {
	mu     sync.Mutex
	byID   map[string]*models.User
	seq    int
	getErr error
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[string]*models.User{}} }

func (f *fakeUsers) add(u models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == "" {
		f.seq++
		u.ID = fmt.Sprintf("u-%d", f.seq)
	}
	cp := u
	f.byID[u.ID] = &cp
	return &cp
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	for _, existing := range f.byID {
		if (u.Email != "" && existing.Email == u.Email) || (u.PhoneNumber != "" && existing.PhoneNumber == u.PhoneNumber) {
			f.mu.Unlock()
			return nil, common.ErrorAlreadyExists
		}
	}
	f.mu.Unlock()
	return f.add(*u), nil
}

func (f *fakeUsers) find(match func(*models.User) bool) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.ID == id })
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.Email == email })
}

func (f *fakeUsers) GetByPhone(_ context.Context, phone string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.PhoneNumber == phone })
}

func (f *fakeUsers) Exists(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byID[id]
	return ok, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id string, hash []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUsers) TouchLastLogin(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		u.LastLogin = time.Now()
		return nil
	}
	return common.ErrorNotFound
}

// --- follows ---

type fakeFollows struct {
	mu    sync.Mutex
	edges map[string]map[string]bool
}

func newFakeFollows() *fakeFollows { return &fakeFollows{edges: map[string]map[string]bool{}} }

func (f *fakeFollows) Follow(_ context.Context, follower, followee string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.edges[follower] == nil {
		f.edges[follower] = map[string]bool{}
	}
	f.edges[follower][followee] = true
	return nil
}

func (f *fakeFollows) Unfollow(_ context.Context, follower, followee string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.edges[follower], followee)
	return nil
}

func (f *fakeFollows) FollowingOf(_ context.Context, follower string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.edges[follower]))
	for id := range f.edges[follower] {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// --- posts ---

type fakePosts struct {
	mu   sync.Mutex
	byID map[string]*models.Post
	seq  int
}

func newFakePosts() *fakePosts { return &fakePosts{byID: map[string]*models.Post{}} }

func (f *fakePosts) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	p.ID = fmt.Sprintf("p-%d", f.seq)
	p.CreatedAt = time.Unix(int64(f.seq), 0)
	p.UpdatedAt = p.CreatedAt
	cp := *p
	f.byID[p.ID] = &cp
	return p, nil
}

func (f *fakePosts) Get(_ context.Context, id string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok || p.Deleted {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePosts) Update(_ context.Context, id, body, mediaURL string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok || p.Deleted {
		return nil, common.ErrorNotFound
	}
	p.Body = body
	if mediaURL != "" {
		p.MediaURL = mediaURL
	}
	cp := *p
	return &cp, nil
}

func (f *fakePosts) SoftDelete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok || p.Deleted {
		return common.ErrorNotFound
	}
	p.Deleted = true
	return nil
}

func (f *fakePosts) list(match func(*models.Post) bool) []*models.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Post, 0)
	for _, p := range f.byID {
		if !p.Deleted && match(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakePosts) ListByAuthor(_ context.Context, author string) ([]*models.Post, error) {
	return f.list(func(p *models.Post) bool { return p.AuthorID == author }), nil
}

// --- tokens ---

type fakeTokens struct {
	mu     sync.Mutex
	issued []*models.IssuedToken
}

func (f *fakeTokens) Create(_ context.Context, t *models.IssuedToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issued = append(f.issued, t)
	return nil
}
func (f *fakeTokens) Revoke(context.Context, string, time.Time) error { return nil }
func (f *fakeTokens) IsRevoked(context.Context, string) (bool, error) { return false, nil }
func (f *fakeTokens) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

// --- manager ---

type fakeRepoManager struct {
	users   *fakeUsers
	follows *fakeFollows
	posts   *fakePostsWithFeed
	tokens  *fakeTokens
}

// fakePostsWithFeed resolves the feed through the fake follow graph.
type fakePostsWithFeed struct {
	*fakePosts
	follows *fakeFollows
}

func (f *fakePostsWithFeed) FeedFor(ctx context.Context, follower string, limit int) ([]*models.Post, error) {
	ids, _ := f.follows.FollowingOf(ctx, follower)
	set := map[string]bool{}
	for _, id := range ids {
		set[id] = true
	}
	out := f.list(func(p *models.Post) bool { return set[p.AuthorID] })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newFakeRepoManager() *fakeRepoManager {
	fl := newFakeFollows()
	return &fakeRepoManager{
		users:   newFakeUsers(),
		follows: fl,
		posts:   &fakePostsWithFeed{fakePosts: newFakePosts(), follows: fl},
		tokens:  &fakeTokens{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository           { return m.users }
func (m *fakeRepoManager) Follows(dbx.DBTX) follows.Repository       { return m.follows }
func (m *fakeRepoManager) Posts(dbx.DBTX) posts.Repository           { return m.posts }
func (m *fakeRepoManager) Tokens(dbx.DBTX) tokens.Repository         { return m.tokens }

// --- collaborators ---

type recordingSender struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg notify.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

type fakeUploader struct {
	url   string
	err   error
	calls int
}

func (f *fakeUploader) Upload(context.Context, *media.Upload) (string, error) {
	f.calls++
	return f.url, f.err
}
