package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/blogman/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, nickname, email, password string) (*model.AuthResult, error)
	Authenticate(ctx context.Context, email, password string) (*model.AuthResult, error)
	CurrentUser(ctx context.Context, userID string) (*model.User, error)
	Refresh(ctx context.Context, userID string) (string, error)
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		service: service,
	}
}

// signupRequest はユーザー登録リクエストのボディ。
// nilのフィールドはキー自体が存在しないことを表す。
type signupRequest struct {
	Nickname *string `json:"nickname"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type loginRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// authResponse は登録・ログイン成功時のレスポンス。
type authResponse struct {
	Message     string              `json:"message"`
	AccessToken string              `json:"access_token"`
	User        privateUserResponse `json:"user"`
}

type meResponse struct {
	User privateUserResponse `json:"user"`
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
}

// Signup はユーザーを登録し、アクセストークンを発行する。
// POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Nickname == nil || req.Email == nil || req.Password == nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("Missing required fields: nickname, email, password"))
		return
	}

	result, err := h.service.Register(r.Context(), *req.Nickname, *req.Email, *req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Message:     "User registered successfully",
		AccessToken: result.AccessToken,
		User:        toPrivateUser(result.User),
	})
}

// Login はメールアドレスとパスワードで認証し、アクセストークンを発行する。
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == nil || req.Password == nil || *req.Email == "" || *req.Password == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("Missing email or password"))
		return
	}

	result, err := h.service.Authenticate(r.Context(), *req.Email, *req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Message:     "Login successful",
		AccessToken: result.AccessToken,
		User:        toPrivateUser(result.User),
	})
}

// Me は認証済みユーザーの情報を返す。
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	user, err := h.service.CurrentUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meResponse{User: toPrivateUser(user)})
}

// Refresh は認証済みユーザーに新しいアクセストークンを発行する。
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	token, err := h.service.Refresh(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, refreshResponse{AccessToken: token})
}
