package service

import (
	"fmt"
	"strings"

	"github.com/cortexa-affect/internal/config"
	"github.com/cortexa-affect/internal/constants"
)

// PasswordPolicyError 密码策略校验失败
type PasswordPolicyError struct {
	Key     string
	Message string
}

func (e *PasswordPolicyError) Error() string {
	return e.Message
}

// Is 使 errors.Is(err, ErrWeakPassword) 成立
func (e *PasswordPolicyError) Is(target error) bool {
	return target == ErrWeakPassword
}

// EffectivePasswordPolicy 合并配置与基线：至少 8 位且含大写字母和数字
func EffectivePasswordPolicy(policy config.PasswordPolicyConfig) config.PasswordPolicyConfig {
	if policy.MinLength < constants.PasswordMinLength {
		policy.MinLength = constants.PasswordMinLength
	}
	policy.RequireUpper = true
	policy.RequireNumber = true
	return policy
}

// ValidatePassword 按策略校验密码，字符类别只认 ASCII
func ValidatePassword(policy config.PasswordPolicyConfig, password string) error {
	policy = EffectivePasswordPolicy(policy)
	message := DescribePasswordPolicy(policy)
	if len([]rune(password)) < policy.MinLength {
		return &PasswordPolicyError{Key: "password_min_length", Message: message}
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, r := range password {
		switch {
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case 'a' <= r && r <= 'z':
			hasLower = true
		case '0' <= r && r <= '9':
			hasNumber = true
		default:
			hasSpecial = true
		}
	}

	if policy.RequireUpper && !hasUpper {
		return &PasswordPolicyError{Key: "password_require_upper", Message: message}
	}
	if policy.RequireLower && !hasLower {
		return &PasswordPolicyError{Key: "password_require_lower", Message: message}
	}
	if policy.RequireNumber && !hasNumber {
		return &PasswordPolicyError{Key: "password_require_number", Message: message}
	}
	if policy.RequireSpecial && !hasSpecial {
		return &PasswordPolicyError{Key: "password_require_special", Message: message}
	}

	return nil
}

// DescribePasswordPolicy 生成面向用户的策略说明
func DescribePasswordPolicy(policy config.PasswordPolicyConfig) string {
	policy = EffectivePasswordPolicy(policy)
	var rules []string
	if policy.RequireUpper {
		rules = append(rules, "one uppercase letter")
	}
	if policy.RequireLower {
		rules = append(rules, "one lowercase letter")
	}
	if policy.RequireNumber {
		rules = append(rules, "one number")
	}
	if policy.RequireSpecial {
		rules = append(rules, "one special character")
	}

	var b strings.Builder
	b.WriteString("Password must ")
	b.WriteString(fmt.Sprintf("be at least %d characters with ", policy.MinLength))
	b.WriteString(joinRules(rules))
	b.WriteString(".")
	return b.String()
}

func joinRules(rules []string) string {
	switch len(rules) {
	case 0:
		return ""
	case 1:
		return rules[0]
	default:
		return strings.Join(rules[:len(rules)-1], ", ") + " and " + rules[len(rules)-1]
	}
}
