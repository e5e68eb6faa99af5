package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hitoshi/blogman/internal/database"
	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/pagination"
)

// userRow はusersテーブルの1行を表す。
type userRow struct {
	ID           string    `db:"id"`
	Nickname     string    `db:"nickname"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r userRow) toModel() model.User {
	return model.User{
		ID:           r.ID,
		Nickname:     r.Nickname,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

const userColumns = `id, nickname, email, password_hash, created_at, updated_at`

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sqlx.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sqlx.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByEmail はメールアドレスでユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// FindByNickname はニックネームでユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByNickname(ctx context.Context, nickname string) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE nickname = $1`, nickname)
}

// NULバイトを含む値はPostgreSQLがエラーにするため、クエリを発行せず「存在しない」とする。
func (r *PostgresUserRepo) findOne(ctx context.Context, query string, arg string) (*model.User, error) {
	if strings.ContainsRune(arg, 0) {
		return nil, nil
	}
	var row userRow
	err := r.db.GetContext(ctx, &row, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	user := row.toModel()
	return &user, nil
}

// Create はユーザーを作成する。
// 一意性はusers_nickname_key / users_email_key制約で保証し、違反はドメインエラーに変換する。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, nickname, email, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Nickname, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if mapped := translateConstraintError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// SearchByNickname はニックネームの部分一致（大文字小文字を区別しない）で検索する。
func (r *PostgresUserRepo) SearchByNickname(ctx context.Context, query string, p pagination.Params) ([]model.User, int, error) {
	pattern := containsPattern(query)

	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT count(*) FROM users WHERE nickname ILIKE $1`, pattern,
	); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows,
		`SELECT `+userColumns+` FROM users
		 WHERE nickname ILIKE $1
		 ORDER BY nickname ASC
		 LIMIT $2 OFFSET $3`,
		pattern, p.Limit(), p.Offset(),
	); err != nil {
		return nil, 0, fmt.Errorf("failed to search users: %w", err)
	}

	users := make([]model.User, len(rows))
	for i, row := range rows {
		users[i] = row.toModel()
	}
	return users, total, nil
}

// DeleteByID は指定IDのユーザーを削除する。
// 削除順序: ユーザーの記事へのコメント → ユーザーのコメント → ユーザーの記事 → ユーザー
func (r *PostgresUserRepo) DeleteByID(ctx context.Context, id string) error {
	if !isUUID(id) {
		return ErrNotFound
	}

	return database.WithTx(ctx, r.db, "delete user", func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM comments WHERE post_id IN (SELECT id FROM posts WHERE author_id = $1)`, id,
		); err != nil {
			return fmt.Errorf("failed to delete comments on user's posts: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE author_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete user's comments: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE author_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete user's posts: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return requireAffected(result)
	})
}

// requireAffected は更新・削除で1行も影響しなかった場合にErrNotFoundを返す。
func requireAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
