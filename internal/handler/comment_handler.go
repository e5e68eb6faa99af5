package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/pagination"
)

// CommentServiceInterface はコメントハンドラーが必要とするサービスインターフェース。
type CommentServiceInterface interface {
	ListForPost(ctx context.Context, postID string, p pagination.Params) (*model.Page[model.CommentWithAuthor], error)
	ListForUser(ctx context.Context, userID string, p pagination.Params) (*model.Page[model.CommentWithAuthor], error)
	Get(ctx context.Context, id string) (*model.CommentWithAuthor, error)
	Create(ctx context.Context, identityID, postID, content string) (*model.CommentWithAuthor, error)
	Update(ctx context.Context, identityID, id, content string) (*model.CommentWithAuthor, error)
	Delete(ctx context.Context, identityID, id string) error
}

// CommentHandler はコメント関連のHTTPハンドラー。
type CommentHandler struct {
	service CommentServiceInterface
}

// NewCommentHandler はCommentHandlerを生成する。
func NewCommentHandler(service CommentServiceInterface) *CommentHandler {
	return &CommentHandler{
		service: service,
	}
}

type createCommentRequest struct {
	Content *string `json:"content"`
	PostID  *string `json:"post_id"`
}

type updateCommentRequest struct {
	Content *string `json:"content"`
}

type commentEnvelope struct {
	Message string          `json:"message,omitempty"`
	Comment commentResponse `json:"comment"`
}

// ListForPost は記事のコメント一覧を古い順で返す。
// GET /api/comments/post/{postID}
func (h *CommentHandler) ListForPost(w http.ResponseWriter, r *http.Request) {
	p := pagination.ParseParams(r.URL.Query(), pagination.DefaultCommentsPerPage)

	page, err := h.service.ListForPost(r.Context(), chi.URLParam(r, "postID"), p)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCommentList(page))
}

// ListForUser はユーザーのコメント一覧を新しい順で返す。
// GET /api/comments/user/{userID}
func (h *CommentHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	p := pagination.ParseParams(r.URL.Query(), pagination.DefaultCommentsPerPage)

	page, err := h.service.ListForUser(r.Context(), chi.URLParam(r, "userID"), p)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCommentList(page))
}

// Get はコメントを返す。
// GET /api/comments/{id}
func (h *CommentHandler) Get(w http.ResponseWriter, r *http.Request) {
	comment, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, commentEnvelope{Comment: toComment(comment)})
}

// Create はコメントを投稿する。
// POST /api/comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req createCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Content == nil || req.PostID == nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("Missing required fields: content, post_id"))
		return
	}

	comment, err := h.service.Create(r.Context(), userID, *req.PostID, *req.Content)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, commentEnvelope{
		Message: "Comment created successfully",
		Comment: toComment(comment),
	})
}

// Update はコメント本文を更新する。
// PUT /api/comments/{id}
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req updateCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Content == nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("Content is required"))
		return
	}

	comment, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), *req.Content)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, commentEnvelope{
		Message: "Comment updated successfully",
		Comment: toComment(comment),
	})
}

// Delete はコメントを削除する。
// DELETE /api/comments/{id}
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Comment deleted successfully"})
}
