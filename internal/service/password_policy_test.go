package service

import (
	"errors"
	"testing"

	"github.com/cortexa-affect/internal/config"
)

func TestValidatePasswordDefaultPolicy(t *testing.T) {
	policy := config.Default().Security.PasswordPolicy

	tests := []struct {
		password string
		wantKey  string
	}{
		{"short1", "password_min_length"},
		{"alllowercase1", "password_require_upper"},
		{"NoDigitsHere", "password_require_number"},
		{"Passw0rd", ""},
		{"Passw0rd!", ""},
	}
	for _, tt := range tests {
		err := ValidatePassword(policy, tt.password)
		if tt.wantKey == "" {
			if err != nil {
				t.Fatalf("expected %q to pass, got %v", tt.password, err)
			}
			continue
		}
		var policyErr *PasswordPolicyError
		if !errors.As(err, &policyErr) {
			t.Fatalf("expected policy error for %q, got %v", tt.password, err)
		}
		if policyErr.Key != tt.wantKey {
			t.Fatalf("unexpected key for %q: %s", tt.password, policyErr.Key)
		}
		if !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("expected errors.Is ErrWeakPassword for %q", tt.password)
		}
	}
}

func TestValidatePasswordRejectsNonASCIIClasses(t *testing.T) {
	policy := config.Default().Security.PasswordPolicy
	for _, password := range []string{"ÉÉÉÉÉÉÉ٣", "abcdefgh١Z", "ÄbcdefgH"} {
		if err := ValidatePassword(policy, password); !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("expected %q to be rejected, got %v", password, err)
		}
	}
	if err := ValidatePassword(policy, "Ärger123Z"); err != nil {
		t.Fatalf("expected non-ASCII filler with ASCII upper and digit to pass, got %v", err)
	}
}

func TestValidatePasswordCannotBeLoosened(t *testing.T) {
	loose := []config.PasswordPolicyConfig{
		{},
		{MinLength: 4},
		{MinLength: 8, RequireUpper: false, RequireNumber: false},
	}
	for _, policy := range loose {
		for _, password := range []string{"a", "Abc1", "abcdefgh1", "ABCDEFGHI"} {
			if err := ValidatePassword(policy, password); !errors.Is(err, ErrWeakPassword) {
				t.Fatalf("policy %+v: expected %q to be rejected, got %v", policy, password, err)
			}
		}
		if err := ValidatePassword(policy, "Passw0rd"); err != nil {
			t.Fatalf("policy %+v: expected baseline password to pass, got %v", policy, err)
		}
	}
}

func TestValidatePasswordStricterConfigApplies(t *testing.T) {
	policy := config.PasswordPolicyConfig{MinLength: 10, RequireSpecial: true}
	if err := ValidatePassword(policy, "Passw0rd!"); err == nil {
		t.Fatalf("expected min length 10 to reject 9 characters")
	}
	err := ValidatePassword(policy, "Passw0rdXYZ")
	var policyErr *PasswordPolicyError
	if !errors.As(err, &policyErr) || policyErr.Key != "password_require_special" {
		t.Fatalf("expected special character rule, got %v", err)
	}
	if err := ValidatePassword(policy, "Passw0rd!XY"); err != nil {
		t.Fatalf("expected stricter policy to pass, got %v", err)
	}
}

func TestNewPasswordResetServiceDefaultsPolicy(t *testing.T) {
	got := NewPasswordResetService(nil, nil, nil, nil).PasswordPolicy()
	if got.MinLength != 8 || !got.RequireUpper || !got.RequireNumber {
		t.Fatalf("unexpected policy without config: %+v", got)
	}
}

func TestDescribePasswordPolicy(t *testing.T) {
	tests := []struct {
		policy config.PasswordPolicyConfig
		want   string
	}{
		{
			policy: config.PasswordPolicyConfig{MinLength: 8, RequireUpper: true, RequireNumber: true},
			want:   "Password must be at least 8 characters with one uppercase letter and one number.",
		},
		{
			policy: config.PasswordPolicyConfig{},
			want:   "Password must be at least 8 characters with one uppercase letter and one number.",
		},
		{
			policy: config.PasswordPolicyConfig{MinLength: 12},
			want:   "Password must be at least 12 characters with one uppercase letter and one number.",
		},
		{
			policy: config.PasswordPolicyConfig{RequireLower: true, RequireSpecial: true},
			want:   "Password must be at least 8 characters with one uppercase letter, one lowercase letter, one number and one special character.",
		},
	}
	for _, tt := range tests {
		if got := DescribePasswordPolicy(tt.policy); got != tt.want {
			t.Fatalf("DescribePasswordPolicy() = %q, want %q", got, tt.want)
		}
	}
}
