package model

// Page はページネーション済みの一覧結果を表す。
// 範囲外のページを指定した場合、Itemsは空になるがエラーにはならない。
type Page[T any] struct {
	Items       []T
	Total       int
	Pages       int
	CurrentPage int
	PerPage     int
	HasNext     bool
	HasPrev     bool
}

// ProfileResult はユーザープロフィールと投稿一覧を表す。
type ProfileResult struct {
	User  *User
	Posts *Page[PostWithAuthor]
}
