package cache

import (
	"context"
	"testing"
	"time"

	"github.com/cortexa-affect/internal/models"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	UseClient(nil, "")
	ctx := context.Background()

	if Enabled() || Client() != nil {
		t.Fatalf("cache should be disabled without a client")
	}
	if err := Ping(ctx); err != nil {
		t.Fatalf("ping on disabled cache should succeed, got %v", err)
	}
	if err := SetAccountAuthState(ctx, &AccountAuthState{AccountID: 1}); err != nil {
		t.Fatalf("set on disabled cache should be a noop, got %v", err)
	}
	state, hit, err := GetAccountAuthState(ctx, 1)
	if err != nil || hit || state != nil {
		t.Fatalf("get on disabled cache want miss, got %v %v %v", state, hit, err)
	}
}

func TestBuildKeyUsesPrefix(t *testing.T) {
	UseClient(nil, "affect")
	defer UseClient(nil, "")

	if got := BuildKey(" captcha:image:abc "); got != "affect:captcha:image:abc" {
		t.Fatalf("key want affect:captcha:image:abc got %s", got)
	}
	if got := BuildKey(""); got != "affect" {
		t.Fatalf("empty key should return prefix, got %s", got)
	}
	if got := accountAuthStateKey(42); got != "auth:account:42" {
		t.Fatalf("auth state key mismatch: %s", got)
	}
}

func TestBuildAccountAuthState(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	changed := now.Add(-time.Minute)
	state := BuildAccountAuthState(&models.Account{
		ID:                7,
		Status:            "active",
		TokenVersion:      3,
		PasswordChangedAt: &changed,
	}, now)
	if state.AccountID != 7 || state.TokenVersion != 3 || state.Status != "active" {
		t.Fatalf("unexpected state: %+v", state)
	}
	if state.PasswordChangedAt != changed.Unix() || state.UpdatedAt != now.Unix() {
		t.Fatalf("timestamps mismatch: %+v", state)
	}
	if BuildAccountAuthState(nil, now) != nil {
		t.Fatalf("nil account should yield nil state")
	}
}
