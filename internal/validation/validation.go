// Package validation はリクエスト入力の形式チェックを提供する。
// 検証ルールはgo-playground/validatorのタグで表し、失敗時はユーザー向けメッセージを持つ
// model.APIError（ValidationError）を返す。
package validation

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/blogman/internal/model"
)

// フィールド名とタグの組み合わせごとのエラーメッセージ
var messages = map[string]string{
	"Nickname.min":     "Nickname must be between 3 and 50 characters",
	"Nickname.max":     "Nickname must be between 3 and 50 characters",
	"Nickname.nonul":   "Nickname contains invalid characters",
	"Password.min":     "Password must be at least 6 characters long",
	"Email.required":   "Invalid email format",
	"Email.email":      "Invalid email format",
	"Email.max":        "Email must be 120 characters or less",
	"Email.nonul":      "Invalid email format",
	"Title.required":   "Title cannot be empty",
	"Title.max":        "Title must be 200 characters or less",
	"Title.nonul":      "Title contains invalid characters",
	"Content.required": "Content cannot be empty",
	"Content.nonul":    "Content contains invalid characters",
	"Query.required":   "Search query is required",
	"Query.min":        "Search query must be at least 2 characters",
	"Query.nonul":      "Search query contains invalid characters",
}

// 上限値はマイグレーションの列定義（VARCHAR長）と一致させる。
// nonulはPostgreSQLのtext型に保存できないNULバイトを拒否する。

// signupInput はユーザー登録の検証対象。
// フィールドの宣言順がエラー判定の優先順になる。
type signupInput struct {
	Nickname string `validate:"min=3,max=50,nonul"`
	Password string `validate:"min=6"`
	Email    string `validate:"required,max=120,nonul,email"`
}

// postInput は記事作成の検証対象。
type postInput struct {
	Title   string `validate:"required,max=200,nonul"`
	Content string `validate:"required,nonul"`
}

// Validator は入力検証を行う。goroutineセーフ。
type Validator struct {
	v *validator.Validate
}

// New はValidatorを生成する。
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// 組み込みタグ名と衝突しないため登録は失敗しない
	_ = v.RegisterValidation("nonul", func(fl validator.FieldLevel) bool {
		return !strings.ContainsRune(fl.Field().String(), 0)
	})
	return &Validator{v: v}
}

// Signup はユーザー登録の入力を検証する。
// 呼び出し側でトリム・小文字化を済ませた値を渡すこと。
// 長さは文字数（rune数）で判定する。
func (v *Validator) Signup(nickname, email, password string) error {
	return v.structErr(signupInput{Nickname: nickname, Password: password, Email: email})
}

// Post は記事作成時のタイトルと本文を検証する。
func (v *Validator) Post(title, content string) error {
	if title == "" || content == "" {
		return model.NewValidationError("Title and content cannot be empty")
	}
	return v.structErr(postInput{Title: title, Content: content})
}

// Title は記事更新時のタイトルを検証する。
func (v *Validator) Title(title string) error {
	return v.varErr("Title", title, "required,max=200,nonul")
}

// Content は記事・コメントの本文を検証する。
func (v *Validator) Content(content string) error {
	return v.varErr("Content", content, "required,nonul")
}

// SearchQuery は検索クエリを検証する。トリム済みの値を渡すこと。
func (v *Validator) SearchQuery(query string) error {
	return v.varErr("Query", query, "required,min=2,nonul")
}

func (v *Validator) structErr(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return model.NewValidationError("Invalid input")
	}
	return toAPIError(verrs[0].Field(), verrs[0].Tag())
}

func (v *Validator) varErr(field string, value any, tag string) error {
	err := v.v.Var(value, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return model.NewValidationError("Invalid input")
	}
	return toAPIError(field, verrs[0].Tag())
}

func toAPIError(field, tag string) *model.APIError {
	if msg, ok := messages[field+"."+tag]; ok {
		return model.NewValidationError(msg)
	}
	return model.NewValidationError("Invalid " + field)
}
