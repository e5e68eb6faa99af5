// Package user はユーザープロフィール・検索・退会のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/pagination"
	"github.com/hitoshi/blogman/internal/repository"
	"github.com/hitoshi/blogman/internal/validation"
)

// Service はユーザー管理のサービス層。
type Service struct {
	userRepo  repository.UserRepository
	postRepo  repository.PostRepository
	validator *validation.Validator
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	validator *validation.Validator,
) *Service {
	return &Service{
		userRepo:  userRepo,
		postRepo:  postRepo,
		validator: validator,
	}
}

// GetProfile はニックネームでユーザーを取得し、その投稿一覧（新しい順）と合わせて返す。
func (s *Service) GetProfile(ctx context.Context, nickname string, p pagination.Params) (*model.ProfileResult, error) {
	user, err := s.findByNickname(ctx, nickname)
	if err != nil {
		return nil, err
	}

	posts, err := s.listPosts(ctx, user.ID, p)
	if err != nil {
		return nil, err
	}

	return &model.ProfileResult{User: user, Posts: posts}, nil
}

// ListPosts はニックネームで指定したユーザーの投稿一覧を返す。
func (s *Service) ListPosts(ctx context.Context, nickname string, p pagination.Params) (*model.Page[model.PostWithAuthor], error) {
	user, err := s.findByNickname(ctx, nickname)
	if err != nil {
		return nil, err
	}
	return s.listPosts(ctx, user.ID, p)
}

// Search はニックネームの部分一致でユーザーを検索する。
// クエリはトリム後2文字以上が必要。結果はnickname昇順。
func (s *Service) Search(ctx context.Context, query string, p pagination.Params) (*model.Page[model.User], error) {
	query = strings.TrimSpace(query)
	if err := s.validator.SearchQuery(query); err != nil {
		return nil, err
	}

	users, total, err := s.userRepo.SearchByNickname(ctx, query, p)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return pagination.NewPage(users, total, p), nil
}

// Withdraw はユーザーの退会処理を実行する。
// 削除順序: ユーザーの記事へのコメント → ユーザーのコメント → ユーザーの記事 → user
// 全ての削除はリポジトリ層の単一トランザクションで行う。
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return model.NewNotFoundError("User")
	}

	slog.Info("user withdrawal started",
		slog.String("user_id", userID),
	)

	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewNotFoundError("User")
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	slog.Info("user withdrawn",
		slog.String("user_id", userID),
	)

	return nil
}

func (s *Service) findByNickname(ctx context.Context, nickname string) (*model.User, error) {
	user, err := s.userRepo.FindByNickname(ctx, nickname)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewNotFoundError("User")
	}
	return user, nil
}

func (s *Service) listPosts(ctx context.Context, authorID string, p pagination.Params) (*model.Page[model.PostWithAuthor], error) {
	posts, total, err := s.postRepo.ListByAuthor(ctx, authorID, p)
	if err != nil {
		return nil, fmt.Errorf("failed to list user posts: %w", err)
	}
	return pagination.NewPage(posts, total, p), nil
}
