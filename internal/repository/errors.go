package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// リポジトリ層が返す既知のエラー。
// サービス層はerrors.Isでこれらを判定し、APIErrorに変換する。
var (
	// ErrNotFound は更新・削除対象の行が存在しない場合に返す。
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateNickname はusers.nicknameの一意制約違反。
	ErrDuplicateNickname = errors.New("duplicate nickname")
	// ErrDuplicateEmail はusers.emailの一意制約違反。
	ErrDuplicateEmail = errors.New("duplicate email")
	// ErrAuthorReferenceMissing は参照先のユーザーが存在しない場合の外部キー違反。
	ErrAuthorReferenceMissing = errors.New("referenced author does not exist")
	// ErrPostReferenceMissing は参照先の記事が存在しない場合の外部キー違反。
	ErrPostReferenceMissing = errors.New("referenced post does not exist")
)

// PostgreSQLのSQLSTATE
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// 制約名とドメインエラーの対応
var constraintErrors = map[string]error{
	"users_nickname_key":      ErrDuplicateNickname,
	"users_email_key":         ErrDuplicateEmail,
	"posts_author_id_fkey":    ErrAuthorReferenceMissing,
	"comments_author_id_fkey": ErrAuthorReferenceMissing,
	"comments_post_id_fkey":   ErrPostReferenceMissing,
}

// translateConstraintError はlib/pqの制約違反エラーをドメインエラーに変換する。
// 対応しないエラーはそのまま返す。
func translateConstraintError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	if pqErr.Code != pqUniqueViolation && pqErr.Code != pqForeignKeyViolation {
		return err
	}
	if mapped, ok := constraintErrors[pqErr.Constraint]; ok {
		return mapped
	}
	return err
}

// escapeLike はLIKE/ILIKEパターンのメタ文字をエスケープする。
func escapeLike(s string) string {
	var b []rune
	for _, r := range s {
		switch r {
		case '\\', '%', '_':
			b = append(b, '\\', r)
		default:
			b = append(b, r)
		}
	}
	return string(b)
}

// containsPattern は部分一致検索用のILIKEパターンを返す。
func containsPattern(query string) string {
	return "%" + escapeLike(query) + "%"
}

// isUUID はidがUUID形式かどうかを返す。
// UUID以外のIDはクエリを発行せず「存在しない」として扱う。
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
