// Package pagination は一覧APIで共通のページ番号ベースのページネーションを提供する。
package pagination

import (
	"math"
	"net/url"
	"strconv"

	"github.com/hitoshi/blogman/internal/model"
)

// 一覧種別ごとのデフォルトページサイズ
const (
	DefaultPostsPerPage    = 10
	DefaultUsersPerPage    = 10
	DefaultCommentsPerPage = 20

	// MaxPerPage はper_pageの上限。超えた場合はデフォルト値にフォールバックする。
	MaxPerPage = 100
)

// Params はページ番号とページサイズを表す。
// ParseParamsまたはNewParamsで生成した値は常にPage>=1かつ1<=PerPage<=MaxPerPageを満たす。
type Params struct {
	Page    int
	PerPage int
}

// NewParams は値を正規化したParamsを返す。
// 範囲外の値はエラーにせずデフォルト値にフォールバックする。
// pageはOffsetがオーバーフローしない値に丸める（結果は空ページになる）。
func NewParams(page, perPage, defaultPerPage int) Params {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > MaxPerPage {
		perPage = defaultPerPage
	}
	if maxPage := math.MaxInt / perPage; page > maxPage {
		page = maxPage
	}
	return Params{Page: page, PerPage: perPage}
}

// ParseParams はクエリパラメータ page と per_page を解析する。
// 数値でない値や範囲外の値はエラーにせずデフォルト値にフォールバックする。
func ParseParams(query url.Values, defaultPerPage int) Params {
	return NewParams(
		parseInt(query.Get("page"), 1),
		parseInt(query.Get("per_page"), defaultPerPage),
		defaultPerPage,
	)
}

// Offset はSQLのOFFSETに渡す値を返す。
func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Limit はSQLのLIMITに渡す値を返す。
func (p Params) Limit() int {
	return p.PerPage
}

// NewPage はページの要素と総件数からページネーション結果を組み立てる。
// itemsがnilの場合も空スライスとして扱う。
func NewPage[T any](items []T, total int, p Params) *model.Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := TotalPages(total, p.PerPage)
	return &model.Page[T]{
		Items:       items,
		Total:       total,
		Pages:       pages,
		CurrentPage: p.Page,
		PerPage:     p.PerPage,
		HasNext:     p.Page < pages,
		HasPrev:     p.Page > 1,
	}
}

// TotalPages はceil(total/perPage)を返す。totalが0の場合は0。
func TotalPages(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

func parseInt(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return i
}
