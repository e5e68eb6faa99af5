package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/pagination"
)

// commentRow はコメントと著者をJOINした1行を表す。
type commentRow struct {
	ID              string    `db:"id"`
	Content         string    `db:"content"`
	PostID          string    `db:"post_id"`
	AuthorID        string    `db:"author_id"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
	AuthorNickname  string    `db:"author_nickname"`
	AuthorCreatedAt time.Time `db:"author_created_at"`
	AuthorUpdatedAt time.Time `db:"author_updated_at"`
}

func (r commentRow) toModel() model.CommentWithAuthor {
	return model.CommentWithAuthor{
		Comment: model.Comment{
			ID:        r.ID,
			Content:   r.Content,
			PostID:    r.PostID,
			AuthorID:  r.AuthorID,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		},
		Author: model.User{
			ID:        r.AuthorID,
			Nickname:  r.AuthorNickname,
			CreatedAt: r.AuthorCreatedAt,
			UpdatedAt: r.AuthorUpdatedAt,
		},
	}
}

const commentSelect = `SELECT c.id, c.content, c.post_id, c.author_id, c.created_at, c.updated_at,
		       u.nickname AS author_nickname, u.created_at AS author_created_at, u.updated_at AS author_updated_at
		FROM comments c
		JOIN users u ON u.id = c.author_id`

// PostgresCommentRepo はPostgreSQLを使用したコメントリポジトリ。
type PostgresCommentRepo struct {
	db *sqlx.DB
}

// NewPostgresCommentRepo はPostgresCommentRepoを生成する。
func NewPostgresCommentRepo(db *sqlx.DB) *PostgresCommentRepo {
	return &PostgresCommentRepo{db: db}
}

// FindByID は指定IDのコメントを取得する。見つからない場合はnilを返す。
func (r *PostgresCommentRepo) FindByID(ctx context.Context, id string) (*model.CommentWithAuthor, error) {
	if !isUUID(id) {
		return nil, nil
	}

	var row commentRow
	err := r.db.GetContext(ctx, &row, commentSelect+` WHERE c.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find comment by ID: %w", err)
	}

	comment := row.toModel()
	return &comment, nil
}

// ListByPost は記事のコメント一覧を古い順で返す。
func (r *PostgresCommentRepo) ListByPost(ctx context.Context, postID string, p pagination.Params) ([]model.CommentWithAuthor, int, error) {
	if !isUUID(postID) {
		return []model.CommentWithAuthor{}, 0, nil
	}
	return r.list(ctx, `c.post_id = $1`, `c.created_at ASC, c.id ASC`, postID, p)
}

// ListByAuthor はユーザーのコメント一覧を新しい順で返す。
func (r *PostgresCommentRepo) ListByAuthor(ctx context.Context, authorID string, p pagination.Params) ([]model.CommentWithAuthor, int, error) {
	if !isUUID(authorID) {
		return []model.CommentWithAuthor{}, 0, nil
	}
	return r.list(ctx, `c.author_id = $1`, `c.created_at DESC, c.id DESC`, authorID, p)
}

func (r *PostgresCommentRepo) list(ctx context.Context, where, orderBy, arg string, p pagination.Params) ([]model.CommentWithAuthor, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT count(*) FROM comments c WHERE `+where, arg); err != nil {
		return nil, 0, fmt.Errorf("failed to count comments: %w", err)
	}

	var rows []commentRow
	if err := r.db.SelectContext(ctx, &rows,
		commentSelect+` WHERE `+where+` ORDER BY `+orderBy+` LIMIT $2 OFFSET $3`,
		arg, p.Limit(), p.Offset(),
	); err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}

	comments := make([]model.CommentWithAuthor, len(rows))
	for i, row := range rows {
		comments[i] = row.toModel()
	}
	return comments, total, nil
}

// Create はコメントを作成する。
func (r *PostgresCommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (id, content, post_id, author_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		comment.ID, comment.Content, comment.PostID, comment.AuthorID, comment.CreatedAt, comment.UpdatedAt,
	)
	if err != nil {
		if mapped := translateConstraintError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

// Update は本文とupdated_atを更新する。post_id・author_idは更新対象に含めない。
func (r *PostgresCommentRepo) Update(ctx context.Context, comment *model.Comment) error {
	if !isUUID(comment.ID) {
		return ErrNotFound
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE comments SET content = $1, updated_at = $2 WHERE id = $3`,
		comment.Content, comment.UpdatedAt, comment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return requireAffected(result)
}

// Delete はコメントを削除する。
func (r *PostgresCommentRepo) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return ErrNotFound
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return requireAffected(result)
}

// compile-time interface check
var _ CommentRepository = (*PostgresCommentRepo)(nil)
