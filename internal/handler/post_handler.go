package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/pagination"
)

// PostServiceInterface は記事ハンドラーが必要とするサービスインターフェース。
type PostServiceInterface interface {
	List(ctx context.Context, p pagination.Params) (*model.Page[model.PostWithAuthor], error)
	Get(ctx context.Context, id string) (*model.PostWithAuthor, error)
	Create(ctx context.Context, identityID, title, content string) (*model.PostWithAuthor, error)
	Update(ctx context.Context, identityID, id string, upd model.PostUpdate) (*model.PostWithAuthor, error)
	Delete(ctx context.Context, identityID, id string) error
	Search(ctx context.Context, query string, p pagination.Params) (*model.Page[model.PostWithAuthor], error)
}

// PostHandler は記事関連のHTTPハンドラー。
type PostHandler struct {
	service PostServiceInterface
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(service PostServiceInterface) *PostHandler {
	return &PostHandler{
		service: service,
	}
}

// postRequest は記事の作成・更新リクエストのボディ。
// 更新時はnilのフィールドを変更しない。
type postRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type postEnvelope struct {
	Message string             `json:"message,omitempty"`
	Post    postDetailResponse `json:"post"`
}

// List は記事一覧を新しい順で返す。
// GET /api/posts?page=1&per_page=10
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	p := pagination.ParseParams(r.URL.Query(), pagination.DefaultPostsPerPage)

	page, err := h.service.List(r.Context(), p)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPostList(page))
}

// Get は記事詳細を返す。
// GET /api/posts/{id}
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, postEnvelope{Post: toPostDetail(post)})
}

// Create は記事を作成する。
// POST /api/posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req postRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title == nil || req.Content == nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("Missing required fields: title, content"))
		return
	}

	post, err := h.service.Create(r.Context(), userID, *req.Title, *req.Content)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, postEnvelope{
		Message: "Post created successfully",
		Post:    toPostDetail(post),
	})
}

// Update は記事を部分更新する。
// PUT /api/posts/{id}
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req postRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), model.PostUpdate{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, postEnvelope{
		Message: "Post updated successfully",
		Post:    toPostDetail(post),
	})
}

// Delete は記事と関連コメントを削除する。
// DELETE /api/posts/{id}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Post deleted successfully"})
}

// Search はタイトルまたは本文で記事を検索する。
// GET /api/posts/search?q=xxx
func (h *PostHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	p := pagination.ParseParams(query, pagination.DefaultPostsPerPage)

	page, err := h.service.Search(r.Context(), query.Get("q"), p)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPostList(page))
}
