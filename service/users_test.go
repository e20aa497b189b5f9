package service

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-blog-api/cache"
	"github.com/goliatone/go-blog-api/internal/model"
	"github.com/goliatone/go-blog-api/pkg/testsupport"
)

func newUserService(t *testing.T, users *mockUserStore, accessor cache.Accessor) *UserService {
	t.Helper()
	return NewUserService(users, accessor, cache.NewDefaultKeySerializer(), newTestTokens(), testsupport.DiscardLogger())
}

func TestUserService_SignupThenLogin(t *testing.T) {
	ctx := context.Background()
	users := newMockUserStore()
	svc := newUserService(t, users, newTestAccessor(t))

	created, err := svc.CreateUser(ctx, "Ada", "ada@example.com", "analytical")
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	if created.Token == "" {
		t.Error("expected a token on signup")
	}
	if created.User.Password != "" {
		t.Error("signup result must not carry the password hash")
	}
	if created.User.Email != "ada@example.com" {
		t.Errorf("expected email ada@example.com, got %s", created.User.Email)
	}

	if stored := users.users[0].Password; stored == "analytical" || stored == "" {
		t.Errorf("expected stored password to be hashed, got %q", stored)
	}

	logged, err := svc.Login(ctx, "ada@example.com", "analytical")
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	if logged.Token == "" || logged.User.ID != created.User.ID {
		t.Errorf("unexpected login result %+v", logged)
	}
	if logged.User.Password != "" {
		t.Error("login result must not carry the password hash")
	}
}

func TestUserService_SignupConflict(t *testing.T) {
	ctx := context.Background()
	users := newMockUserStore(model.User{ID: 1, Name: "Ada", Email: "ada@example.com", Password: "x"})
	svc := newUserService(t, users, newTestAccessor(t))

	_, err := svc.CreateUser(ctx, "Other Ada", "ada@example.com", "password")
	if !goerrors.IsCategory(err, goerrors.CategoryConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.Code != 409 {
		t.Errorf("expected status 409, got %v", err)
	}
	if rich.Message != "User already exists with this email address" {
		t.Errorf("unexpected message %q", rich.Message)
	}
	if count := users.getCallCount("Create"); count != 0 {
		t.Errorf("expected no insert on conflict, got %d", count)
	}
}

func TestUserService_LoginFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	users := newMockUserStore(model.User{ID: 1, Name: "Ada", Email: "ada@example.com", Password: hashed(t, "analytical")})
	svc := newUserService(t, users, newTestAccessor(t))

	_, wrongPassword := svc.Login(ctx, "ada@example.com", "wrong-password")
	_, unknownEmail := svc.Login(ctx, "nobody@example.com", "analytical")

	for name, err := range map[string]error{"wrong password": wrongPassword, "unknown email": unknownEmail} {
		var rich *goerrors.Error
		if !goerrors.As(err, &rich) {
			t.Fatalf("%s: expected go-errors value, got %v", name, err)
		}
		if rich.Category != goerrors.CategoryAuth || rich.Code != 400 || rich.Message != "Invalid Credentials" {
			t.Errorf("%s: unexpected error %+v", name, rich)
		}
	}
}

func TestUserService_ListUsersCached(t *testing.T) {
	ctx := context.Background()
	users := newMockUserStore(
		model.User{ID: 1, Name: "Ada", Email: "ada@example.com", Password: "h1"},
		model.User{ID: 2, Name: "Linus", Email: "linus@example.com", Password: "h2"},
	)
	svc := newUserService(t, users, newTestAccessor(t))

	first, err := svc.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() failed: %v", err)
	}
	second, err := svc.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() failed: %v", err)
	}

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 users on both calls, got %d and %d", len(first), len(second))
	}
	if count := users.getCallCount("ListWithoutPassword"); count != 1 {
		t.Errorf("expected one database call, got %d", count)
	}
	for _, u := range second {
		if u.Password != "" {
			t.Errorf("user %d: cached list must not carry passwords", u.ID)
		}
	}
}

func TestUserService_SignupInvalidatesUserList(t *testing.T) {
	ctx := context.Background()
	users := newMockUserStore(model.User{ID: 1, Name: "Ada", Email: "ada@example.com", Password: "h1"})
	svc := newUserService(t, users, newTestAccessor(t))

	if _, err := svc.ListUsers(ctx); err != nil {
		t.Fatalf("ListUsers() failed: %v", err)
	}
	if _, err := svc.CreateUser(ctx, "Grace", "grace@example.com", "compiler"); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}

	list, err := svc.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() failed: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("expected new user to be listed, got %d users", len(list))
	}
	if count := users.getCallCount("ListWithoutPassword"); count != 2 {
		t.Errorf("expected cache to be invalidated by signup, got %d database calls", count)
	}
}

func TestUserService_ListUsersEmpty(t *testing.T) {
	ctx := context.Background()
	users := newMockUserStore()
	svc := newUserService(t, users, newTestAccessor(t))

	for i := 0; i < 2; i++ {
		if _, err := svc.ListUsers(ctx); !goerrors.IsNotFound(err) {
			t.Fatalf("call %d: expected not found, got %v", i, err)
		}
	}
	if count := users.getCallCount("ListWithoutPassword"); count != 2 {
		t.Errorf("empty user list must not be cached, got %d database calls", count)
	}
}

func TestUserService_CacheDown(t *testing.T) {
	ctx := context.Background()
	users := newMockUserStore(model.User{ID: 1, Name: "Ada", Email: "ada@example.com", Password: "h1"})
	svc := newUserService(t, users, newDownAccessor())

	for i := 0; i < 2; i++ {
		list, err := svc.ListUsers(ctx)
		if err != nil {
			t.Fatalf("ListUsers() failed with cache down: %v", err)
		}
		if len(list) != 1 {
			t.Errorf("expected 1 user, got %d", len(list))
		}
	}
	if count := users.getCallCount("ListWithoutPassword"); count != 2 {
		t.Errorf("expected every call to reach the database, got %d", count)
	}

	if _, err := svc.CreateUser(ctx, "Grace", "grace@example.com", "compiler"); err != nil {
		t.Errorf("CreateUser() must not fail when the cache is down: %v", err)
	}
}

func TestUserService_DatabaseError(t *testing.T) {
	ctx := context.Background()
	users := newMockUserStore()
	users.err = goerrors.Wrap(errDatabase, goerrors.CategoryInternal, "failed to fetch users")
	svc := newUserService(t, users, newTestAccessor(t))

	if _, err := svc.ListUsers(ctx); !goerrors.IsInternal(err) {
		t.Errorf("expected internal error, got %v", err)
	}
	if _, err := svc.TopUsersByPostsAndLatestComment(ctx); !goerrors.IsInternal(err) {
		t.Errorf("expected internal error, got %v", err)
	}
}

func TestUserService_TopUsers(t *testing.T) {
	ctx := context.Background()
	users := newMockUserStore()
	svc := newUserService(t, users, newTestAccessor(t))

	baseline, err := svc.TopUsersByPostsAndLatestComment(ctx)
	if err != nil {
		t.Fatalf("TopUsersByPostsAndLatestComment() failed: %v", err)
	}
	if baseline == nil || len(baseline) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", baseline)
	}

	optimized, err := svc.TopUsersByPostsAndLatestCommentOptimized(ctx)
	if err != nil {
		t.Fatalf("TopUsersByPostsAndLatestCommentOptimized() failed: %v", err)
	}
	if len(optimized) != 1 || optimized[0].PostCount != 2 {
		t.Errorf("unexpected rows %+v", optimized)
	}

	for i := 0; i < 2; i++ {
		_, _ = svc.TopUsersByPostsAndLatestCommentOptimized(ctx)
	}
	if count := users.getCallCount("TopUsersWithLatestCommentsOptimized"); count != 3 {
		t.Errorf("reports are not cached, expected 3 calls, got %d", count)
	}
}
