// Package repository はデータ永続化のインターフェースとPostgreSQL実装を提供する。
package repository

import (
	"context"

	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/pagination"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail は小文字化済みのメールアドレスでユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByNickname はニックネームでユーザーを取得する。見つからない場合はnilを返す。
	FindByNickname(ctx context.Context, nickname string) (*model.User, error)

	// Create はユーザーを作成する。
	// 一意制約違反はErrDuplicateNickname / ErrDuplicateEmailとして返す。
	Create(ctx context.Context, user *model.User) error

	// SearchByNickname はニックネームの大文字小文字を区別しない部分一致で検索する。
	// nickname昇順で、該当ページのユーザーと総件数を返す。
	SearchByNickname(ctx context.Context, query string, p pagination.Params) ([]model.User, int, error)

	// DeleteByID は指定IDのユーザーを削除する。
	// 所有する記事、その記事へのコメント、ユーザー自身のコメントを同一トランザクションで削除する。
	// 対象が存在しない場合はErrNotFoundを返す。
	DeleteByID(ctx context.Context, id string) error
}

// PostRepository は記事データの永続化インターフェース。
type PostRepository interface {
	// FindByID は指定IDの記事を著者情報付きで取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.PostWithAuthor, error)

	// List は記事一覧をcreated_at降順で返す。本文は含まない。
	List(ctx context.Context, p pagination.Params) ([]model.PostWithAuthor, int, error)

	// ListByAuthor は指定ユーザーの記事一覧をcreated_at降順で返す。本文は含まない。
	ListByAuthor(ctx context.Context, authorID string, p pagination.Params) ([]model.PostWithAuthor, int, error)

	// Search はタイトルまたは本文の大文字小文字を区別しない部分一致で検索する。
	// created_at降順で返す。本文は含まない。
	Search(ctx context.Context, query string, p pagination.Params) ([]model.PostWithAuthor, int, error)

	// Create は記事を作成する。著者が存在しない場合はErrAuthorReferenceMissingを返す。
	Create(ctx context.Context, post *model.Post) error

	// Update はタイトル・本文・updated_atを更新する。著者は変更しない。
	// 対象が存在しない場合はErrNotFoundを返す。
	Update(ctx context.Context, post *model.Post) error

	// Delete は記事と関連コメントを同一トランザクションで削除する。
	// 対象が存在しない場合はErrNotFoundを返す。
	Delete(ctx context.Context, id string) error
}

// CommentRepository はコメントデータの永続化インターフェース。
type CommentRepository interface {
	// FindByID は指定IDのコメントを著者情報付きで取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.CommentWithAuthor, error)

	// ListByPost は記事のコメント一覧をcreated_at昇順（古い順）で返す。
	ListByPost(ctx context.Context, postID string, p pagination.Params) ([]model.CommentWithAuthor, int, error)

	// ListByAuthor はユーザーのコメント一覧をcreated_at降順（新しい順）で返す。
	ListByAuthor(ctx context.Context, authorID string, p pagination.Params) ([]model.CommentWithAuthor, int, error)

	// Create はコメントを作成する。
	// 記事が存在しない場合はErrPostReferenceMissing、著者が存在しない場合はErrAuthorReferenceMissingを返す。
	Create(ctx context.Context, comment *model.Comment) error

	// Update は本文とupdated_atを更新する。対象が存在しない場合はErrNotFoundを返す。
	Update(ctx context.Context, comment *model.Comment) error

	// Delete はコメントを削除する。対象が存在しない場合はErrNotFoundを返す。
	Delete(ctx context.Context, id string) error
}
