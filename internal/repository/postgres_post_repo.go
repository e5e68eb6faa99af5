package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hitoshi/blogman/internal/database"
	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/pagination"
)

// postRow は記事と著者、コメント数をJOINした1行を表す。
type postRow struct {
	ID              string    `db:"id"`
	Title           string    `db:"title"`
	Content         string    `db:"content"`
	AuthorID        string    `db:"author_id"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
	AuthorNickname  string    `db:"author_nickname"`
	AuthorCreatedAt time.Time `db:"author_created_at"`
	AuthorUpdatedAt time.Time `db:"author_updated_at"`
	CommentsCount   int       `db:"comments_count"`
}

func (r postRow) toModel() model.PostWithAuthor {
	return model.PostWithAuthor{
		Post: model.Post{
			ID:        r.ID,
			Title:     r.Title,
			Content:   r.Content,
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
		CommentsCount: r.CommentsCount,
	}
}

// postSelect は記事取得の共通SELECT句。
// 一覧（サマリー表示）では本文を読まない。
func postSelect(withContent bool) string {
	content := `'' AS content`
	if withContent {
		content = `p.content`
	}
	return `SELECT p.id, p.title, ` + content + `, p.author_id, p.created_at, p.updated_at,
		       u.nickname AS author_nickname, u.created_at AS author_created_at, u.updated_at AS author_updated_at,
		       (SELECT count(*) FROM comments c WHERE c.post_id = p.id) AS comments_count
		FROM posts p
		JOIN users u ON u.id = p.author_id`
}

// PostgresPostRepo はPostgreSQLを使用した記事リポジトリ。
type PostgresPostRepo struct {
	db *sqlx.DB
}

// NewPostgresPostRepo はPostgresPostRepoを生成する。
func NewPostgresPostRepo(db *sqlx.DB) *PostgresPostRepo {
	return &PostgresPostRepo{db: db}
}

// FindByID は指定IDの記事を本文と著者情報付きで取得する。見つからない場合はnilを返す。
func (r *PostgresPostRepo) FindByID(ctx context.Context, id string) (*model.PostWithAuthor, error) {
	if !isUUID(id) {
		return nil, nil
	}

	var row postRow
	err := r.db.GetContext(ctx, &row, postSelect(true)+` WHERE p.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post by ID: %w", err)
	}

	post := row.toModel()
	return &post, nil
}

// List は記事一覧をcreated_at降順で返す。
func (r *PostgresPostRepo) List(ctx context.Context, p pagination.Params) ([]model.PostWithAuthor, int, error) {
	return r.listWhere(ctx, "", nil, p)
}

// ListByAuthor は指定ユーザーの記事一覧をcreated_at降順で返す。
func (r *PostgresPostRepo) ListByAuthor(ctx context.Context, authorID string, p pagination.Params) ([]model.PostWithAuthor, int, error) {
	if !isUUID(authorID) {
		return []model.PostWithAuthor{}, 0, nil
	}
	return r.listWhere(ctx, `p.author_id = $1`, []any{authorID}, p)
}

// Search はタイトルまたは本文の部分一致で記事を検索する。
func (r *PostgresPostRepo) Search(ctx context.Context, query string, p pagination.Params) ([]model.PostWithAuthor, int, error) {
	return r.listWhere(ctx, `(p.title ILIKE $1 OR p.content ILIKE $1)`, []any{containsPattern(query)}, p)
}

// listWhere は条件付きの記事一覧と総件数を返す。
// whereのプレースホルダは$1から始まり、LIMIT/OFFSETはその後ろに付与する。
func (r *PostgresPostRepo) listWhere(ctx context.Context, where string, args []any, p pagination.Params) ([]model.PostWithAuthor, int, error) {
	whereClause := ""
	if where != "" {
		whereClause = ` WHERE ` + where
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT count(*) FROM posts p`+whereClause, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	n := len(args)
	query := postSelect(false) + whereClause +
		fmt.Sprintf(` ORDER BY p.created_at DESC, p.id DESC LIMIT $%d OFFSET $%d`, n+1, n+2)

	var rows []postRow
	if err := r.db.SelectContext(ctx, &rows, query, append(args, p.Limit(), p.Offset())...); err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}

	posts := make([]model.PostWithAuthor, len(rows))
	for i, row := range rows {
		posts[i] = row.toModel()
	}
	return posts, total, nil
}

// Create は記事を作成する。
func (r *PostgresPostRepo) Create(ctx context.Context, post *model.Post) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO posts (id, title, content, author_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		post.ID, post.Title, post.Content, post.AuthorID, post.CreatedAt, post.UpdatedAt,
	)
	if err != nil {
		if mapped := translateConstraintError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

// Update はタイトル・本文・updated_atを更新する。author_idは更新対象に含めない。
func (r *PostgresPostRepo) Update(ctx context.Context, post *model.Post) error {
	if !isUUID(post.ID) {
		return ErrNotFound
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE posts SET title = $1, content = $2, updated_at = $3 WHERE id = $4`,
		post.Title, post.Content, post.UpdatedAt, post.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	return requireAffected(result)
}

// Delete は記事と関連コメントを同一トランザクションで削除する。
// 削除順序: comments → posts
func (r *PostgresPostRepo) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return ErrNotFound
	}

	return database.WithTx(ctx, r.db, "delete post", func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE post_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete post comments: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete post: %w", err)
		}
		return requireAffected(result)
	})
}

// compile-time interface check
var _ PostRepository = (*PostgresPostRepo)(nil)
