package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/pagination"
)

// --- モック定義 ---

// mockUserService はUserServiceInterfaceのモック実装。
type mockUserService struct {
	getProfileFn func(ctx context.Context, nickname string, p pagination.Params) (*model.ProfileResult, error)
	listPostsFn  func(ctx context.Context, nickname string, p pagination.Params) (*model.Page[model.PostWithAuthor], error)
	searchFn     func(ctx context.Context, query string, p pagination.Params) (*model.Page[model.User], error)
	withdrawFn   func(ctx context.Context, userID string) error
}

func (m *mockUserService) GetProfile(ctx context.Context, nickname string, p pagination.Params) (*model.ProfileResult, error) {
	if m.getProfileFn != nil {
		return m.getProfileFn(ctx, nickname, p)
	}
	return nil, model.NewNotFoundError("User")
}

func (m *mockUserService) ListPosts(ctx context.Context, nickname string, p pagination.Params) (*model.Page[model.PostWithAuthor], error) {
	if m.listPostsFn != nil {
		return m.listPostsFn(ctx, nickname, p)
	}
	return nil, model.NewNotFoundError("User")
}

func (m *mockUserService) Search(ctx context.Context, query string, p pagination.Params) (*model.Page[model.User], error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, p)
	}
	return pagination.NewPage[model.User](nil, 0, p), nil
}

func (m *mockUserService) Withdraw(ctx context.Context, userID string) error {
	if m.withdrawFn != nil {
		return m.withdrawFn(ctx, userID)
	}
	return nil
}

// --- GET /api/users/{nickname} ---

func TestUserHandler_Profile(t *testing.T) {
	svc := &mockUserService{
		getProfileFn: func(ctx context.Context, nickname string, p pagination.Params) (*model.ProfileResult, error) {
			if nickname != "alice" {
				t.Errorf("nickname = %q, want %q", nickname, "alice")
			}
			u := testUser("user-1", "alice")
			posts := []model.PostWithAuthor{*testPost("post-1", "user-1")}
			return &model.ProfileResult{User: &u, Posts: pagination.NewPage(posts, 1, p)}, nil
		},
	}
	h := NewUserHandler(svc)

	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/api/users/alice", nil), "nickname", "alice")
	w := httptest.NewRecorder()
	h.Profile(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := decodeBody(t, w)
	user := body["user"].(map[string]any)
	if _, ok := user["email"]; ok {
		t.Error("profile must use the public user view")
	}
	posts := body["posts"].(map[string]any)
	if items := posts["items"].([]any); len(items) != 1 {
		t.Errorf("len(posts.items) = %d, want 1", len(items))
	}
	if posts["total"] != float64(1) || posts["current_page"] != float64(1) {
		t.Errorf("posts pagination = %v", posts)
	}
}

func TestUserHandler_Profile_NotFound(t *testing.T) {
	h := NewUserHandler(&mockUserService{})

	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/api/users/nobody", nil), "nickname", "nobody")
	w := httptest.NewRecorder()
	h.Profile(w, req)

	assertError(t, w, http.StatusNotFound, "User not found")
}

// --- GET /api/users/{nickname}/posts ---

func TestUserHandler_Posts(t *testing.T) {
	svc := &mockUserService{
		listPostsFn: func(ctx context.Context, nickname string, p pagination.Params) (*model.Page[model.PostWithAuthor], error) {
			return pagination.NewPage([]model.PostWithAuthor{*testPost("post-1", "user-1")}, 1, p), nil
		},
	}
	h := NewUserHandler(svc)

	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/api/users/alice/posts", nil), "nickname", "alice")
	w := httptest.NewRecorder()
	h.Posts(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if posts := decodeBody(t, w)["posts"].([]any); len(posts) != 1 {
		t.Errorf("len(posts) = %d, want 1", len(posts))
	}
}

// --- GET /api/users/search ---

func TestUserHandler_Search(t *testing.T) {
	svc := &mockUserService{
		searchFn: func(ctx context.Context, query string, p pagination.Params) (*model.Page[model.User], error) {
			if query != "ali" {
				t.Errorf("query = %q, want %q", query, "ali")
			}
			return pagination.NewPage([]model.User{testUser("user-1", "alice")}, 1, p), nil
		},
	}
	h := NewUserHandler(svc)

	w := httptest.NewRecorder()
	h.Search(w, httptest.NewRequest(http.MethodGet, "/api/users/search?q=ali", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	users := decodeBody(t, w)["users"].([]any)
	if len(users) != 1 {
		t.Fatalf("len(users) = %d, want 1", len(users))
	}
	if _, ok := users[0].(map[string]any)["email"]; ok {
		t.Error("search results must use the public user view")
	}
}

func TestUserHandler_Search_MissingQuery(t *testing.T) {
	svc := &mockUserService{
		searchFn: func(ctx context.Context, query string, p pagination.Params) (*model.Page[model.User], error) {
			return nil, model.NewValidationError("Search query is required")
		},
	}
	h := NewUserHandler(svc)

	w := httptest.NewRecorder()
	h.Search(w, httptest.NewRequest(http.MethodGet, "/api/users/search", nil))

	assertError(t, w, http.StatusBadRequest, "Search query is required")
}

// --- DELETE /api/users/me ---

func TestUserHandler_Withdraw_Success(t *testing.T) {
	withdrawCalled := false
	svc := &mockUserService{
		withdrawFn: func(ctx context.Context, userID string) error {
			withdrawCalled = true
			if userID != "user-123" {
				t.Errorf("userID = %q, want %q", userID, "user-123")
			}
			return nil
		},
	}

	h := NewUserHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/users/me", nil)
	req = withUserID(req, "user-123")
	w := httptest.NewRecorder()

	h.Withdraw(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if !withdrawCalled {
		t.Error("expected Withdraw to be called")
	}
}

func TestUserHandler_Withdraw_NoUserID_ReturnsUnauthorized(t *testing.T) {
	h := NewUserHandler(&mockUserService{})

	req := httptest.NewRequest(http.MethodDelete, "/api/users/me", nil)
	// ユーザーIDを注入しない
	w := httptest.NewRecorder()

	h.Withdraw(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestUserHandler_Withdraw_UserNotFound(t *testing.T) {
	svc := &mockUserService{
		withdrawFn: func(ctx context.Context, userID string) error {
			return model.NewNotFoundError("User")
		},
	}
	h := NewUserHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodDelete, "/api/users/me", nil), "user-123")
	w := httptest.NewRecorder()
	h.Withdraw(w, req)

	assertError(t, w, http.StatusNotFound, "User not found")
}
