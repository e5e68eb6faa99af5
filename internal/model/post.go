package model

import "time"

// Post はユーザーが公開する記事を表す。
// AuthorIDは作成時に一度だけ設定され、以後変更されない。
type Post struct {
	ID        string
	Title     string
	Content   string
	AuthorID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PostWithAuthor は記事と著者情報、コメント数を結合したモデル。
// 一覧・詳細の表示用にusersテーブルとJOINして取得される。
type PostWithAuthor struct {
	Post
	Author        User
	CommentsCount int
}

// PostUpdate は記事の部分更新内容を表す。
// nilフィールドは変更しない。
type PostUpdate struct {
	Title   *string
	Content *string
}
