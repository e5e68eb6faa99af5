package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/pagination"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	GetProfile(ctx context.Context, nickname string, p pagination.Params) (*model.ProfileResult, error)
	ListPosts(ctx context.Context, nickname string, p pagination.Params) (*model.Page[model.PostWithAuthor], error)
	Search(ctx context.Context, query string, p pagination.Params) (*model.Page[model.User], error)
	// Withdraw はユーザーの退会処理を実行する。
	// ユーザーの記事・コメントと、その記事へのコメントを一括削除する。
	Withdraw(ctx context.Context, userID string) error
}

// UserHandler はユーザー関連のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// profilePostsResponse はプロフィールに含める記事一覧。
// 要素はpostsではなくitemsキーに入る。
type profilePostsResponse struct {
	Items []postSummaryResponse `json:"items"`
	pageMeta
}

type profileResponse struct {
	User  publicUserResponse   `json:"user"`
	Posts profilePostsResponse `json:"posts"`
}

// Profile はユーザーのプロフィールと記事一覧を返す。
// GET /api/users/{nickname}
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	p := pagination.ParseParams(r.URL.Query(), pagination.DefaultPostsPerPage)

	result, err := h.service.GetProfile(r.Context(), chi.URLParam(r, "nickname"), p)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		User: toPublicUser(result.User),
		Posts: profilePostsResponse{
			Items:    toPostSummaries(result.Posts.Items),
			pageMeta: toPageMeta(result.Posts),
		},
	})
}

// Posts はユーザーの記事一覧を新しい順で返す。
// GET /api/users/{nickname}/posts
func (h *UserHandler) Posts(w http.ResponseWriter, r *http.Request) {
	p := pagination.ParseParams(r.URL.Query(), pagination.DefaultPostsPerPage)

	page, err := h.service.ListPosts(r.Context(), chi.URLParam(r, "nickname"), p)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPostList(page))
}

// Search はニックネームでユーザーを検索する。
// GET /api/users/search?q=xxx
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	p := pagination.ParseParams(query, pagination.DefaultUsersPerPage)

	page, err := h.service.Search(r.Context(), query.Get("q"), p)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserList(page))
}

// Withdraw はユーザーの退会処理を実行する。
// DELETE /api/users/me
func (h *UserHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Withdraw(r.Context(), userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
