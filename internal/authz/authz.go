// Package authz は記事・コメントの変更操作に対する所有者チェックを提供する。
package authz

import "github.com/hitoshi/blogman/internal/model"

// Action は所有者チェックの対象となる操作。エラーメッセージに使用する。
type Action string

const (
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// RequireOwner は操作者がリソースの著者であることを確認する。
// 存在確認は呼び出し側で先に行うこと（NotFoundはForbiddenより優先される）。
// resourceは複数形の名詞（"posts", "comments"）を渡す。
func RequireOwner(identityID, authorID string, action Action, resource string) error {
	if identityID == "" || identityID != authorID {
		return model.NewForbiddenError("You can only " + string(action) + " your own " + resource)
	}
	return nil
}
