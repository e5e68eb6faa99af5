// Package auth はユーザー登録・ログイン・アクセストークンの発行と検証を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/blogman/internal/metrics"
	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/repository"
	"github.com/hitoshi/blogman/internal/validation"
)

// TokenIssuer はアクセストークンの発行インターフェース。
type TokenIssuer interface {
	Issue(userID string) (string, error)
	Refresh(userID string) (string, error)
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo  repository.UserRepository
	hasher    PasswordHasher
	tokens    TokenIssuer
	validator *validation.Validator
	metrics   metrics.MetricsCollector
	now       func() time.Time

	// 不明なメールアドレスでのログイン時に照合するハッシュ
	dummyHash string
}

// NewService はServiceを生成する。collectorがnilの場合はメトリクスを記録しない。
func NewService(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	validator *validation.Validator,
	collector metrics.MetricsCollector,
) *Service {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	// 照合時間を揃えるため、起動時に一度だけダミーのハッシュを生成する
	dummyHash, err := hasher.Hash(uuid.NewString())
	if err != nil {
		slog.Error("failed to prepare dummy password hash", slog.String("error", err.Error()))
	}
	return &Service{
		userRepo:  userRepo,
		hasher:    hasher,
		tokens:    tokens,
		validator: validator,
		metrics:   collector,
		now:       time.Now,
		dummyHash: dummyHash,
	}
}

// NormalizeEmail はメールアドレスをトリムして小文字化する。保存と検索の両方で使用する。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register はユーザーを登録し、アクセストークンを発行する。
// 重複チェックはnickname → emailの順。事前チェックをすり抜けた同時登録は
// ストアの一意制約違反として検出し、Conflictに変換する。
// トークンは永続化の前に発行するため、失敗時にユーザーだけが残ることはない。
func (s *Service) Register(ctx context.Context, nickname, email, password string) (*model.AuthResult, error) {
	nickname = strings.TrimSpace(nickname)
	email = NormalizeEmail(email)

	if err := s.validator.Signup(nickname, email, password); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByNickname(ctx, nickname)
	if err != nil {
		return nil, fmt.Errorf("failed to check nickname: %w", err)
	}
	if existing != nil {
		return nil, errNicknameTaken
	}

	existing, err = s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, errEmailTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := model.Timestamp(s.now())
	user := &model.User{
		ID:           uuid.NewString(),
		Nickname:     nickname,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateNickname):
			return nil, errNicknameTaken
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, errEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.RecordUserRegistered()
	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("nickname", user.Nickname),
	)

	return &model.AuthResult{User: user, AccessToken: token}, nil
}

var (
	errNicknameTaken = model.NewConflictError("Nickname already exists")
	errEmailTaken    = model.NewConflictError("Email already registered")
)

// Authenticate はメールアドレスとパスワードでログインし、アクセストークンを発行する。
// メールアドレス不明とパスワード不一致は区別せず、同じエラーを返す。
func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		// 不明なメールアドレスでもパスワード不一致と同じだけ照合処理を行う
		s.hasher.Compare(s.dummyHash, password)
		s.metrics.RecordLogin(false)
		return nil, model.ErrInvalidCredentials
	}
	if !s.hasher.Compare(user.PasswordHash, password) {
		s.metrics.RecordLogin(false)
		return nil, model.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.RecordLogin(true)
	slog.Info("user logged in", slog.String("user_id", user.ID))

	return &model.AuthResult{User: user, AccessToken: token}, nil
}

// CurrentUser はトークン検証済みのユーザーIDからユーザーを取得する。
// トークン発行後にユーザーが削除されていた場合はNotFoundを返す。
func (s *Service) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewNotFoundError("User")
	}
	return user, nil
}

// Refresh は認証済みユーザーに新しいトークンを発行する。
func (s *Service) Refresh(ctx context.Context, userID string) (string, error) {
	token, err := s.tokens.Refresh(userID)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}
	return token, nil
}
