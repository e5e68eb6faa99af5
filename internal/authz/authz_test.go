package authz

import (
	"testing"

	"github.com/hitoshi/blogman/internal/model"
)

func TestRequireOwner(t *testing.T) {
	tests := []struct {
		name     string
		identity string
		author   string
		action   Action
		resource string
		wantMsg  string
	}{
		{"著者本人は許可", "u1", "u1", ActionEdit, "posts", ""},
		{"他人の記事の編集は拒否", "u2", "u1", ActionEdit, "posts", "You can only edit your own posts"},
		{"他人のコメントの削除は拒否", "u2", "u1", ActionDelete, "comments", "You can only delete your own comments"},
		{"空のidentityは拒否", "", "", ActionEdit, "posts", "You can only edit your own posts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireOwner(tt.identity, tt.author, tt.action, tt.resource)
			if tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			apiErr, ok := err.(*model.APIError)
			if !ok {
				t.Fatalf("expected *model.APIError, got %T", err)
			}
			if apiErr.Code != model.ErrCodeForbidden {
				t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeForbidden)
			}
			if apiErr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.wantMsg)
			}
		})
	}
}
