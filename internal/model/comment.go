package model

import "time"

// Comment は記事に対するコメントを表す。
// PostIDとAuthorIDは作成時に一度だけ設定される。
type Comment struct {
	ID        string
	Content   string
	PostID    string
	AuthorID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CommentWithAuthor はコメントと著者情報を結合したモデル。
type CommentWithAuthor struct {
	Comment
	Author User
}
