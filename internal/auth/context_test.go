package auth

import (
	"context"
	"testing"
)

func TestWithAuthRoundTrip(t *testing.T) {
	ac := AuthContext{UserID: 42, Email: "alice@example.com", SessionID: 7}
	ctx := WithAuth(context.Background(), ac)

	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected auth context")
	}
	if got.UserID != 42 {
		t.Errorf("UserID = %d, want 42", got.UserID)
	}
	if got.Email != "alice@example.com" {
		t.Errorf("Email = %q", got.Email)
	}
	if got.SessionID != 7 {
		t.Errorf("SessionID = %d, want 7", got.SessionID)
	}
}

func TestFromContextMissing(t *testing.T) {
	_, ok := FromContext(context.Background())
	if ok {
		t.Error("expected no auth context")
	}
}

func TestUserIDMissing(t *testing.T) {
	if id := UserID(context.Background()); id != 0 {
		t.Errorf("UserID = %d, want 0", id)
	}
}
