// Package model はドメインモデルを定義する。
package model

import "time"

// User はブログの利用ユーザーを表す。
// PasswordHashにはbcryptハッシュのみを保持し、平文パスワードは保持しない。
type User struct {
	ID           string
	Nickname     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AuthResult は登録・ログイン成功時に返すユーザーとアクセストークンの組。
type AuthResult struct {
	User        *User
	AccessToken string
}
