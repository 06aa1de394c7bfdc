package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/cortexa-affect/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// AccountAuthState 账号鉴权快照
// 改密后 TokenVersion 递增，旧会话据此失效
type AccountAuthState struct {
	AccountID         uint   `json:"account_id"`
	Status            string `json:"status"`
	TokenVersion      uint64 `json:"token_version"`
	PasswordChangedAt int64  `json:"password_changed_at"`
	UpdatedAt         int64  `json:"updated_at"`
}

func accountAuthStateKey(accountID uint) string {
	return fmt.Sprintf("auth:account:%d", accountID)
}

// BuildAccountAuthState 从账号模型构建鉴权快照
func BuildAccountAuthState(account *models.Account, now time.Time) *AccountAuthState {
	if account == nil {
		return nil
	}
	state := &AccountAuthState{
		AccountID:    account.ID,
		Status:       account.Status,
		TokenVersion: account.TokenVersion,
		UpdatedAt:    now.Unix(),
	}
	if account.PasswordChangedAt != nil {
		state.PasswordChangedAt = account.PasswordChangedAt.Unix()
	}
	return state
}

// GetAccountAuthState 获取账号鉴权快照
func GetAccountAuthState(ctx context.Context, accountID uint) (*AccountAuthState, bool, error) {
	if accountID == 0 {
		return nil, false, nil
	}
	var state AccountAuthState
	hit, err := GetJSON(ctx, accountAuthStateKey(accountID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetAccountAuthState 写入账号鉴权快照
func SetAccountAuthState(ctx context.Context, state *AccountAuthState) error {
	if state == nil || state.AccountID == 0 {
		return nil
	}
	return SetJSON(ctx, accountAuthStateKey(state.AccountID), state, authStateCacheTTL)
}
