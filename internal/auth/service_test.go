package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/pagination"
	"github.com/hitoshi/blogman/internal/repository"
	"github.com/hitoshi/blogman/internal/validation"
)

// --- モック定義 ---

// mockUserRepo はメモリ上でユーザーを保持するUserRepositoryのモック。
// 関数フィールドが設定されている場合はそちらを優先する。
type mockUserRepo struct {
	users map[string]*model.User

	findByEmailFn func(ctx context.Context, email string) (*model.User, error)
	createFn      func(ctx context.Context, user *model.User) error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[string]*model.User{}}
}

func (m *mockUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	return m.users[id], nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) FindByNickname(_ context.Context, nickname string) (*model.User, error) {
	for _, u := range m.users {
		if u.Nickname == nickname {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) SearchByNickname(_ context.Context, _ string, _ pagination.Params) ([]model.User, int, error) {
	return nil, 0, nil
}

func (m *mockUserRepo) DeleteByID(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

type mockTokenIssuer struct {
	issueFn func(userID string) (string, error)
}

func (m *mockTokenIssuer) Issue(userID string) (string, error) {
	if m.issueFn != nil {
		return m.issueFn(userID)
	}
	return "token-for-" + userID, nil
}

func (m *mockTokenIssuer) Refresh(userID string) (string, error) {
	return "refreshed-for-" + userID, nil
}

// --- compile-time interface checks ---
var _ repository.UserRepository = (*mockUserRepo)(nil)
var _ TokenIssuer = (*mockTokenIssuer)(nil)
var _ TokenIssuer = (*TokenService)(nil)

func newTestService(repo *mockUserRepo, tokens TokenIssuer) *Service {
	if tokens == nil {
		tokens = &mockTokenIssuer{}
	}
	return NewService(repo, NewBcryptHasher(bcrypt.MinCost), tokens, validation.New(), nil)
}

func assertCode(t *testing.T, err error, want string) {
	t.Helper()
	if got := model.CodeOf(err); got != want {
		t.Errorf("error code = %q, want %q (err: %v)", got, want, err)
	}
}

// --- テスト ---

func TestRegister_ThenAuthenticate(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	result, err := svc.Register(ctx, "  alice  ", "A@X.com", "secret1")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if result.User.Nickname != "alice" {
		t.Errorf("nickname = %q, want trimmed %q", result.User.Nickname, "alice")
	}
	if result.User.Email != "a@x.com" {
		t.Errorf("email = %q, want lower-cased %q", result.User.Email, "a@x.com")
	}
	if result.User.PasswordHash == "secret1" || result.User.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
	if result.AccessToken != "token-for-"+result.User.ID {
		t.Errorf("unexpected token %q", result.AccessToken)
	}
	if !result.User.UpdatedAt.Equal(result.User.CreatedAt) {
		t.Error("timestamps should be equal on creation")
	}

	login, err := svc.Authenticate(ctx, "a@x.COM", "secret1")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if login.User.ID != result.User.ID {
		t.Error("authenticated user should be the registered one")
	}
}

func TestRegister_ValidationErrors(t *testing.T) {
	svc := newTestService(newMockUserRepo(), nil)
	ctx := context.Background()

	tests := []struct {
		name                      string
		nickname, email, password string
	}{
		{"ニックネーム短すぎ", "ab", "a@x.com", "secret1"},
		{"空白のみのニックネーム", "     ", "a@x.com", "secret1"},
		{"パスワード短すぎ", "alice", "a@x.com", "12345"},
		{"メール形式不正", "alice", "nope", "secret1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.nickname, tt.email, tt.password)
			assertCode(t, err, model.ErrCodeValidation)
		})
	}
}

func TestRegister_DuplicateNickname(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "a@x.com", "secret1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, err := svc.Register(ctx, "alice", "other@x.com", "secret1")
	assertCode(t, err, model.ErrCodeConflict)
	if err.(*model.APIError).Message != "Nickname already exists" {
		t.Errorf("message = %q", err.(*model.APIError).Message)
	}
	if len(repo.users) != 1 {
		t.Errorf("users = %d, want 1", len(repo.users))
	}
}

func TestRegister_NicknameCheckedBeforeEmail(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	svc.Register(ctx, "alice", "a@x.com", "secret1")

	_, err := svc.Register(ctx, "alice", "a@x.com", "secret1")
	if apiErr, ok := err.(*model.APIError); !ok || apiErr.Message != "Nickname already exists" {
		t.Errorf("err = %v, want nickname conflict", err)
	}

	_, err = svc.Register(ctx, "bob", "A@x.com", "secret1")
	if apiErr, ok := err.(*model.APIError); !ok || apiErr.Message != "Email already registered" {
		t.Errorf("err = %v, want email conflict", err)
	}
}

// 事前チェック後に同時登録で一意制約違反になった場合もConflictになること
func TestRegister_StoreConstraintRace(t *testing.T) {
	repo := newMockUserRepo()
	repo.createFn = func(_ context.Context, _ *model.User) error {
		return repository.ErrDuplicateEmail
	}
	svc := newTestService(repo, nil)

	_, err := svc.Register(context.Background(), "alice", "a@x.com", "secret1")
	assertCode(t, err, model.ErrCodeConflict)
}

func TestRegister_StoreFailureIsInternal(t *testing.T) {
	repo := newMockUserRepo()
	repo.createFn = func(_ context.Context, _ *model.User) error {
		return errors.New("connection reset")
	}
	svc := newTestService(repo, nil)

	_, err := svc.Register(context.Background(), "alice", "a@x.com", "secret1")
	assertCode(t, err, model.ErrCodeInternal)
}

func TestRegister_TokenFailurePersistsNothing(t *testing.T) {
	repo := newMockUserRepo()
	tokens := &mockTokenIssuer{issueFn: func(string) (string, error) {
		return "", errors.New("signing failed")
	}}
	svc := newTestService(repo, tokens)

	if _, err := svc.Register(context.Background(), "alice", "a@x.com", "secret1"); err == nil {
		t.Fatal("expected error")
	}
	if len(repo.users) != 0 {
		t.Error("no user should be persisted when token issuance fails")
	}
}

func TestAuthenticate_UniformFailure(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()
	svc.Register(ctx, "alice", "a@x.com", "secret1")

	_, wrongPassword := svc.Authenticate(ctx, "a@x.com", "wrong-password")
	_, unknownEmail := svc.Authenticate(ctx, "nobody@x.com", "secret1")

	assertCode(t, wrongPassword, model.ErrCodeUnauthenticated)
	assertCode(t, unknownEmail, model.ErrCodeUnauthenticated)
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Errorf("failures must be indistinguishable: %q vs %q", wrongPassword, unknownEmail)
	}
}

// countingHasher は照合の呼び出し回数を数えるPasswordHasher。
type countingHasher struct {
	PasswordHasher
	compares int
}

func (h *countingHasher) Compare(hash, password string) bool {
	h.compares++
	return h.PasswordHasher.Compare(hash, password)
}

func TestAuthenticate_UnknownEmailStillCompares(t *testing.T) {
	repo := newMockUserRepo()
	hasher := &countingHasher{PasswordHasher: NewBcryptHasher(bcrypt.MinCost)}
	svc := NewService(repo, hasher, &mockTokenIssuer{}, validation.New(), nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "a@x.com", "secret1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, err := svc.Authenticate(ctx, "nobody@x.com", "secret1")
	assertCode(t, err, model.ErrCodeUnauthenticated)
	if hasher.compares != 1 {
		t.Errorf("compares after unknown email = %d, want 1", hasher.compares)
	}

	_, err = svc.Authenticate(ctx, "a@x.com", "wrong-password")
	assertCode(t, err, model.ErrCodeUnauthenticated)
	if hasher.compares != 2 {
		t.Errorf("compares after wrong password = %d, want 2", hasher.compares)
	}

	// 2回目以降もダミーハッシュとの照合は失敗する
	_, err = svc.Authenticate(ctx, "nobody@x.com", "secret1")
	assertCode(t, err, model.ErrCodeUnauthenticated)
}

func TestRegister_LongPassword(t *testing.T) {
	svc := newTestService(newMockUserRepo(), nil)
	ctx := context.Background()
	long := strings.Repeat("p", 100)

	if _, err := svc.Register(ctx, "alice", "a@x.com", long); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := svc.Authenticate(ctx, "a@x.com", long); err != nil {
		t.Errorf("Authenticate() error = %v", err)
	}
}

func TestAuthenticate_RepoError(t *testing.T) {
	repo := newMockUserRepo()
	repo.findByEmailFn = func(context.Context, string) (*model.User, error) {
		return nil, errors.New("db down")
	}
	svc := newTestService(repo, nil)

	_, err := svc.Authenticate(context.Background(), "a@x.com", "secret1")
	assertCode(t, err, model.ErrCodeInternal)
}

func TestCurrentUser(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	result, _ := svc.Register(ctx, "alice", "a@x.com", "secret1")

	user, err := svc.CurrentUser(ctx, result.User.ID)
	if err != nil || user.Nickname != "alice" {
		t.Fatalf("CurrentUser() = %v, %v", user, err)
	}

	// トークン発行後に削除されたユーザー
	repo.DeleteByID(ctx, result.User.ID)
	_, err = svc.CurrentUser(ctx, result.User.ID)
	assertCode(t, err, model.ErrCodeNotFound)
}

func TestRefresh(t *testing.T) {
	svc := newTestService(newMockUserRepo(), nil)
	token, err := svc.Refresh(context.Background(), "user-1")
	if err != nil || token != "refreshed-for-user-1" {
		t.Errorf("Refresh() = %q, %v", token, err)
	}
}

func TestRegister_WithRealTokenService(t *testing.T) {
	tokens := NewTokenService("secret", time.Hour)
	svc := newTestService(newMockUserRepo(), tokens)

	result, err := svc.Register(context.Background(), "alice", "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	id, err := tokens.Verify(result.AccessToken)
	if err != nil || id != result.User.ID {
		t.Errorf("Verify() = %q, %v", id, err)
	}
}
