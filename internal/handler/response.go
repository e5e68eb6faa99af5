package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/hitoshi/blogman/internal/model"
)

// maxRequestBodyBytes はJSONリクエストボディの上限サイズ。
const maxRequestBodyBytes = 1 << 20

var errInvalidBody = model.NewValidationError("Invalid JSON body")

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON はリクエストボディをdstにデコードする。
// 空ボディ・不正なJSON・サイズ超過の場合は400を書き込みfalseを返す。
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("No data provided"))
			return false
		}
		writeAPIErrorResponse(w, http.StatusBadRequest, errInvalidBody)
		return false
	}
	return true
}

// messageResponse はメッセージのみのレスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// --- ユーザー ---

// publicUserResponse は他ユーザーにも公開するユーザー情報。メールアドレスを含まない。
type publicUserResponse struct {
	ID        string    `json:"id"`
	Nickname  string    `json:"nickname"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// privateUserResponse は本人にのみ返すユーザー情報。
type privateUserResponse struct {
	publicUserResponse
	Email string `json:"email"`
}

func toPublicUser(u *model.User) publicUserResponse {
	return publicUserResponse{
		ID:        u.ID,
		Nickname:  u.Nickname,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toPrivateUser(u *model.User) privateUserResponse {
	return privateUserResponse{
		publicUserResponse: toPublicUser(u),
		Email:              u.Email,
	}
}

// --- 記事 ---

// postSummaryResponse は一覧用の記事表現。本文を含まない。
type postSummaryResponse struct {
	ID            string             `json:"id"`
	Title         string             `json:"title"`
	Author        publicUserResponse `json:"author"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	CommentsCount int                `json:"comments_count"`
}

// postDetailResponse は詳細用の記事表現。
type postDetailResponse struct {
	postSummaryResponse
	Content string `json:"content"`
}

func toPostSummary(p *model.PostWithAuthor) postSummaryResponse {
	return postSummaryResponse{
		ID:            p.ID,
		Title:         p.Title,
		Author:        toPublicUser(&p.Author),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		CommentsCount: p.CommentsCount,
	}
}

func toPostDetail(p *model.PostWithAuthor) postDetailResponse {
	return postDetailResponse{
		postSummaryResponse: toPostSummary(p),
		Content:             p.Content,
	}
}

func toPostSummaries(posts []model.PostWithAuthor) []postSummaryResponse {
	out := make([]postSummaryResponse, 0, len(posts))
	for i := range posts {
		out = append(out, toPostSummary(&posts[i]))
	}
	return out
}

// --- コメント ---

type commentResponse struct {
	ID        string             `json:"id"`
	Content   string             `json:"content"`
	Author    publicUserResponse `json:"author"`
	PostID    string             `json:"post_id"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func toComment(c *model.CommentWithAuthor) commentResponse {
	return commentResponse{
		ID:        c.ID,
		Content:   c.Content,
		Author:    toPublicUser(&c.Author),
		PostID:    c.PostID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toComments(comments []model.CommentWithAuthor) []commentResponse {
	out := make([]commentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, toComment(&comments[i]))
	}
	return out
}

// --- ページネーション ---

// pageMeta は一覧レスポンスに共通するページネーション情報。
// 埋め込み先の構造体ではトップレベルのフィールドとしてシリアライズされる。
type pageMeta struct {
	Total       int  `json:"total"`
	Pages       int  `json:"pages"`
	CurrentPage int  `json:"current_page"`
	PerPage     int  `json:"per_page"`
	HasNext     bool `json:"has_next"`
	HasPrev     bool `json:"has_prev"`
}

func toPageMeta[T any](p *model.Page[T]) pageMeta {
	return pageMeta{
		Total:       p.Total,
		Pages:       p.Pages,
		CurrentPage: p.CurrentPage,
		PerPage:     p.PerPage,
		HasNext:     p.HasNext,
		HasPrev:     p.HasPrev,
	}
}

type postListResponse struct {
	Posts []postSummaryResponse `json:"posts"`
	pageMeta
}

func toPostList(p *model.Page[model.PostWithAuthor]) postListResponse {
	return postListResponse{
		Posts:    toPostSummaries(p.Items),
		pageMeta: toPageMeta(p),
	}
}

type commentListResponse struct {
	Comments []commentResponse `json:"comments"`
	pageMeta
}

func toCommentList(p *model.Page[model.CommentWithAuthor]) commentListResponse {
	return commentListResponse{
		Comments: toComments(p.Items),
		pageMeta: toPageMeta(p),
	}
}

type userListResponse struct {
	Users []publicUserResponse `json:"users"`
	pageMeta
}

func toUserList(p *model.Page[model.User]) userListResponse {
	users := make([]publicUserResponse, 0, len(p.Items))
	for i := range p.Items {
		users = append(users, toPublicUser(&p.Items[i]))
	}
	return userListResponse{
		Users:    users,
		pageMeta: toPageMeta(p),
	}
}
