package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// TxBeginner はトランザクション開始用のインターフェース。
// *sqlx.DB が満たす。
type TxBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// WithTx はfnを1つのトランザクション内で実行する。
// fnがエラーを返すかpanicした場合はロールバックし、成功時のみコミットする。
// reasonはログ出力用の識別子。
func WithTx(ctx context.Context, db TxBeginner, reason string, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction (%s): %w", reason, err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rec := recover(); rec != nil {
			_ = tx.Rollback()
			slog.Error("panic in transaction, rolled back",
				slog.String("reason", reason),
				slog.Any("panic", rec),
			)
			panic(rec)
		}
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			slog.Error("transaction rollback failed",
				slog.String("reason", reason),
				slog.String("error", rbErr.Error()),
			)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction (%s): %w", reason, err)
	}
	committed = true

	return nil
}
