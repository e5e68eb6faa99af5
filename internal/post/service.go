// Package post は記事の閲覧・投稿・編集・削除・検索のドメインロジックを提供する。
package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/blogman/internal/authz"
	"github.com/hitoshi/blogman/internal/metrics"
	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/pagination"
	"github.com/hitoshi/blogman/internal/repository"
	"github.com/hitoshi/blogman/internal/validation"
)

// Service は記事のサービス層。
type Service struct {
	postRepo  repository.PostRepository
	validator *validation.Validator
	metrics   metrics.MetricsCollector
	now       func() time.Time
}

// NewService はServiceを生成する。collectorがnilの場合はメトリクスを記録しない。
func NewService(
	postRepo repository.PostRepository,
	validator *validation.Validator,
	collector metrics.MetricsCollector,
) *Service {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &Service{
		postRepo:  postRepo,
		validator: validator,
		metrics:   collector,
		now:       time.Now,
	}
}

// List は記事一覧を新しい順で返す。本文は含まない。
func (s *Service) List(ctx context.Context, p pagination.Params) (*model.Page[model.PostWithAuthor], error) {
	posts, total, err := s.postRepo.List(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return pagination.NewPage(posts, total, p), nil
}

// Get は記事を本文付きで返す。
func (s *Service) Get(ctx context.Context, id string) (*model.PostWithAuthor, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if post == nil {
		return nil, errPostNotFound
	}
	return post, nil
}

// Create は記事を作成する。著者は認証済みのidentity。
// タイトルと本文は前後の空白のみトリムし、入力どおりのテキストとして保存する。
func (s *Service) Create(ctx context.Context, identityID, title, content string) (*model.PostWithAuthor, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if err := s.validator.Post(title, content); err != nil {
		return nil, err
	}

	now := model.Timestamp(s.now())
	post := &model.Post{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		AuthorID:  identityID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		if errors.Is(err, repository.ErrAuthorReferenceMissing) {
			return nil, errIdentityGone
		}
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.metrics.RecordPostCreated()
	slog.Info("post created",
		slog.String("post_id", post.ID),
		slog.String("author_id", identityID),
	)

	return s.Get(ctx, post.ID)
}

// Update は記事を部分更新する。指定されたフィールドのみ変更し、作成時と同じルールで再検証する。
// 判定順: 存在確認(NotFound) → 所有者確認(Forbidden) → 入力検証(ValidationError)
func (s *Service) Update(ctx context.Context, identityID, id string, upd model.PostUpdate) (*model.PostWithAuthor, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwner(identityID, current.AuthorID, authz.ActionEdit, "posts"); err != nil {
		return nil, err
	}
	if upd.Title == nil && upd.Content == nil {
		return nil, model.NewValidationError("No data provided")
	}

	updated := current.Post
	if upd.Title != nil {
		updated.Title = strings.TrimSpace(*upd.Title)
		if err := s.validator.Title(updated.Title); err != nil {
			return nil, err
		}
	}
	if upd.Content != nil {
		updated.Content = strings.TrimSpace(*upd.Content)
		if err := s.validator.Content(updated.Content); err != nil {
			return nil, err
		}
	}
	updated.UpdatedAt = model.NextUpdatedAt(current.UpdatedAt, s.now())

	if err := s.postRepo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errPostNotFound
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	slog.Info("post updated", slog.String("post_id", id))

	current.Post = updated
	return current, nil
}

// Delete は記事と関連コメントを削除する。
func (s *Service) Delete(ctx context.Context, identityID, id string) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.RequireOwner(identityID, current.AuthorID, authz.ActionDelete, "posts"); err != nil {
		return err
	}

	if err := s.postRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errPostNotFound
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}

	slog.Info("post deleted",
		slog.String("post_id", id),
		slog.Int("comments_deleted", current.CommentsCount),
	)
	return nil
}

// Search はタイトルまたは本文の部分一致で記事を検索する。クエリはトリム後2文字以上。
func (s *Service) Search(ctx context.Context, query string, p pagination.Params) (*model.Page[model.PostWithAuthor], error) {
	query = strings.TrimSpace(query)
	if err := s.validator.SearchQuery(query); err != nil {
		return nil, err
	}

	posts, total, err := s.postRepo.Search(ctx, query, p)
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	return pagination.NewPage(posts, total, p), nil
}

var (
	errPostNotFound = model.NewNotFoundError("Post")
	// トークン発行後に削除されたユーザーによる作成
	errIdentityGone = model.NewUnauthenticatedError("User no longer exists")
)
