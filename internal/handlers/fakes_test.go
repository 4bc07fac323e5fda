package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"todoapi/internal/auth"
	dom "todoapi/internal/domain"
	"todoapi/internal/repo"
	"todoapi/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	seq    int64
	byName map[string]dom.User
}

var _ repo.UserRepo = (*fakeUserRepo)(nil)

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (dom.User, error) {
	u, ok := f.byName[username]
	if !ok {
		return dom.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (dom.User, error) {
	for _, u := range f.byName {
		if u.ID == id {
			return u, nil
		}
	}
	return dom.User{}, pgx.ErrNoRows
}

func (f *fakeUserRepo) Create(_ context.Context, username, passwordHash string) (dom.User, error) {
	if _, exists := f.byName[username]; exists {
		return dom.User{}, &pgconn.PgError{Code: "23505"}
	}
	f.seq++
	u := dom.User{ID: f.seq, Username: username, PasswordHash: passwordHash}
	f.byName[username] = u
	return u, nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int64) error {
	for name, u := range f.byName {
		if u.ID == id {
			delete(f.byName, name)
		}
	}
	return nil
}

type fakeTodoRepo struct {
	seq  int64
	byID map[int64]dom.Todo
}

var _ repo.TodoRepo = (*fakeTodoRepo)(nil)

func (f *fakeTodoRepo) Create(_ context.Context, t dom.Todo) (dom.Todo, error) {
	f.seq++
	t.ID = f.seq
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	f.byID[t.ID] = t
	return t, nil
}

func (f *fakeTodoRepo) GetByID(_ context.Context, id int64) (dom.Todo, error) {
	t, ok := f.byID[id]
	if !ok || t.DeletedAt != nil {
		return dom.Todo{}, pgx.ErrNoRows
	}
	return t, nil
}

func (f *fakeTodoRepo) List(_ context.Context, userID int64) ([]dom.Todo, error) {
	var list []dom.Todo
	for _, t := range f.byID {
		if t.UserID == userID && t.DeletedAt == nil {
			list = append(list, t)
		}
	}
	return list, nil
}

func (f *fakeTodoRepo) Update(_ context.Context, id int64, patch dom.Todo) (dom.Todo, error) {
	t, ok := f.byID[id]
	if !ok || t.DeletedAt != nil {
		return dom.Todo{}, pgx.ErrNoRows
	}
	t.Title = patch.Title
	t.Description = patch.Description
	t.DueAt = patch.DueAt
	t.IsDone = patch.IsDone
	f.byID[id] = t
	return t, nil
}

func (f *fakeTodoRepo) SoftDelete(_ context.Context, id int64) error {
	t, ok := f.byID[id]
	if !ok || t.DeletedAt != nil {
		return nil
	}
	now := time.Now().UTC()
	t.DeletedAt = &now
	f.byID[id] = t
	return nil
}

func (f *fakeTodoRepo) MarkDone(_ context.Context, id int64, done bool) (dom.Todo, error) {
	t, ok := f.byID[id]
	if !ok || t.DeletedAt != nil {
		return dom.Todo{}, pgx.ErrNoRows
	}
	t.IsDone = done
	f.byID[id] = t
	return t, nil
}

func (f *fakeTodoRepo) Search(_ context.Context, userID int64, q string) ([]dom.Todo, error) {
	q = strings.ToLower(q)
	var list []dom.Todo
	for _, t := range f.byID {
		if t.UserID != userID || t.DeletedAt != nil {
			continue
		}
		if strings.Contains(strings.ToLower(t.Title), q) || strings.Contains(strings.ToLower(t.Description), q) {
			list = append(list, t)
		}
	}
	return list, nil
}

func (f *fakeTodoRepo) Overdue(_ context.Context, userID int64) ([]dom.Todo, error) {
	now := time.Now().UTC()
	var list []dom.Todo
	for _, t := range f.byID {
		if t.UserID == userID && t.DeletedAt == nil && !t.IsDone && t.DueAt != nil && t.DueAt.Before(now) {
			list = append(list, t)
		}
	}
	return list, nil
}

// testServer wires real services and a real Redis-backed session store
// (miniredis) over in-memory repos, mirroring the app's route setup.
type testServer struct {
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	sessions := auth.NewStore(rdb, time.Hour)
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	userSvc := service.NewUserService(&fakeUserRepo{byName: map[string]dom.User{}}, hasher)
	todoSvc := service.NewTodoService(&fakeTodoRepo{byID: map[int64]dom.Todo{}}, nil)

	authH := NewAuthHandler(sessions, userSvc, zap.NewNop(), false)
	todoH := NewTodoHandler(todoSvc)

	r := gin.New()
	api := r.Group("/api/v1")
	api.POST("/auth/register", authH.Register)
	api.POST("/auth/login", authH.Login)
	api.POST("/auth/logout", authH.Logout)

	protected := api.Group("", auth.RequireSession(sessions, userSvc))
	protected.GET("/auth/me", authH.Me)
	protected.DELETE("/auth/account", authH.DeleteAccount)
	protected.POST("/todos", todoH.Create)
	protected.GET("/todos", todoH.List)
	protected.GET("/todos/search", todoH.Search)
	protected.GET("/todos/overdue", todoH.Overdue)
	protected.GET("/todos/:id", todoH.GetByID)
	protected.PATCH("/todos/:id", todoH.Update)
	protected.DELETE("/todos/:id", todoH.Delete)
	protected.POST("/todos/:id/complete", todoH.Complete)

	return &testServer{router: r}
}

func (ts *testServer) do(method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range w.Result().Cookies() {
		if ck.Name == auth.SessionCookieName && ck.Value != "" {
			return ck
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}
