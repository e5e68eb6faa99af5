// Package comment は記事へのコメントのドメインロジックを提供する。
package comment

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

// PostFinder は記事の存在確認に使用するインターフェース。
type PostFinder interface {
	FindByID(ctx context.Context, id string) (*model.PostWithAuthor, error)
}

// UserFinder はユーザーの存在確認に使用するインターフェース。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// Service はコメントのサービス層。
type Service struct {
	commentRepo repository.CommentRepository
	posts       PostFinder
	users       UserFinder
	validator   *validation.Validator
	metrics     metrics.MetricsCollector
	now         func() time.Time
}

// NewService はServiceを生成する。collectorがnilの場合はメトリクスを記録しない。
func NewService(
	commentRepo repository.CommentRepository,
	posts PostFinder,
	users UserFinder,
	validator *validation.Validator,
	collector metrics.MetricsCollector,
) *Service {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &Service{
		commentRepo: commentRepo,
		posts:       posts,
		users:       users,
		validator:   validator,
		metrics:     collector,
		now:         time.Now,
	}
}

// ListForPost は記事のコメント一覧を古い順で返す。記事が存在しない場合はNotFound。
func (s *Service) ListForPost(ctx context.Context, postID string, p pagination.Params) (*model.Page[model.CommentWithAuthor], error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	comments, total, err := s.commentRepo.ListByPost(ctx, postID, p)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return pagination.NewPage(comments, total, p), nil
}

// ListForUser はユーザーのコメント一覧を新しい順で返す。ユーザーが存在しない場合はNotFound。
func (s *Service) ListForUser(ctx context.Context, userID string, p pagination.Params) (*model.Page[model.CommentWithAuthor], error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, model.NewNotFoundError("User")
	}

	comments, total, err := s.commentRepo.ListByAuthor(ctx, userID, p)
	if err != nil {
		return nil, fmt.Errorf("failed to list user comments: %w", err)
	}
	return pagination.NewPage(comments, total, p), nil
}

// Get はコメントを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.CommentWithAuthor, error) {
	comment, err := s.commentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	if comment == nil {
		return nil, errCommentNotFound
	}
	return comment, nil
}

// Create は記事にコメントを投稿する。
// 本文の検証を先に行い、その後に記事の存在を確認する。
func (s *Service) Create(ctx context.Context, identityID, postID, content string) (*model.CommentWithAuthor, error) {
	content = strings.TrimSpace(content)
	if err := s.validator.Content(content); err != nil {
		return nil, err
	}
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	now := model.Timestamp(s.now())
	comment := &model.Comment{
		ID:        uuid.NewString(),
		Content:   content,
		PostID:    postID,
		AuthorID:  identityID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		switch {
		case errors.Is(err, repository.ErrPostReferenceMissing):
			// 存在確認の後に記事が削除された
			return nil, errPostNotFound
		case errors.Is(err, repository.ErrAuthorReferenceMissing):
			return nil, errIdentityGone
		}
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.metrics.RecordCommentCreated()
	slog.Info("comment created",
		slog.String("comment_id", comment.ID),
		slog.String("post_id", postID),
		slog.String("author_id", identityID),
	)

	return s.Get(ctx, comment.ID)
}

// Update はコメント本文を更新する。
// 判定順: 存在確認(NotFound) → 所有者確認(Forbidden) → 入力検証(ValidationError)
func (s *Service) Update(ctx context.Context, identityID, id, content string) (*model.CommentWithAuthor, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwner(identityID, current.AuthorID, authz.ActionEdit, "comments"); err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if err := s.validator.Content(content); err != nil {
		return nil, err
	}

	updated := current.Comment
	updated.Content = content
	updated.UpdatedAt = model.NextUpdatedAt(current.UpdatedAt, s.now())

	if err := s.commentRepo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errCommentNotFound
		}
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	slog.Info("comment updated", slog.String("comment_id", id))

	current.Comment = updated
	return current, nil
}

// Delete はコメントを削除する。
func (s *Service) Delete(ctx context.Context, identityID, id string) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.RequireOwner(identityID, current.AuthorID, authz.ActionDelete, "comments"); err != nil {
		return err
	}

	if err := s.commentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errCommentNotFound
		}
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	slog.Info("comment deleted", slog.String("comment_id", id))
	return nil
}

func (s *Service) requirePost(ctx context.Context, postID string) error {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to get post: %w", err)
	}
	if post == nil {
		return errPostNotFound
	}
	return nil
}

var (
	errCommentNotFound = model.NewNotFoundError("Comment")
	errPostNotFound    = model.NewNotFoundError("Post")
	errIdentityGone    = model.NewUnauthenticatedError("User no longer exists")
)
