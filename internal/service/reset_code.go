package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/cortexa-affect/internal/constants"

	"github.com/google/uuid"
	"golang.org/x/crypto/scrypt"
)

// scrypt 参数与 Node.js scryptSync 默认值一致
const (
	resetCodeScryptN = 16384
	resetCodeScryptR = 8
	resetCodeScryptP = 1
)

// ResetCode 新生成的验证码及其存储形式
type ResetCode struct {
	Code string
	Salt string
	Hash string
}

// GenerateResetCode 生成 6 位验证码、随机盐与 scrypt 哈希
func GenerateResetCode() (ResetCode, error) {
	code, err := randomResetCode(constants.ResetCodeLength)
	if err != nil {
		return ResetCode{}, err
	}
	saltBytes := make([]byte, constants.ResetCodeSaltBytes)
	if _, err := rand.Read(saltBytes); err != nil {
		return ResetCode{}, err
	}
	salt := hex.EncodeToString(saltBytes)
	hash, err := HashResetCode(code, salt, constants.ResetCodeHashBytes)
	if err != nil {
		return ResetCode{}, err
	}
	return ResetCode{Code: code, Salt: salt, Hash: hash}, nil
}

// HashResetCode 计算验证码的 scrypt 哈希（hex）
func HashResetCode(code, salt string, keyLen int) (string, error) {
	key, err := deriveResetCodeKey(code, salt, keyLen)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}

// ResetCodeMatches 以常量时间比较候选验证码与存储哈希
func ResetCodeMatches(code, salt, storedHash string) (bool, error) {
	stored, err := hex.DecodeString(storedHash)
	if err != nil {
		return false, fmt.Errorf("decode stored reset code hash: %w", err)
	}
	if len(stored) == 0 {
		return false, nil
	}
	candidate, err := deriveResetCodeKey(code, salt, len(stored))
	if err != nil {
		return false, err
	}
	if len(candidate) != len(stored) {
		return false, nil
	}
	return subtle.ConstantTimeCompare(candidate, stored) == 1, nil
}

// NewSessionToken 生成重置会话令牌
func NewSessionToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// IsResetCodeFormat 判断是否为 6 位验证码格式
func IsResetCodeFormat(code string) bool {
	return len([]rune(code)) == constants.ResetCodeLength
}

func deriveResetCodeKey(code, salt string, keyLen int) ([]byte, error) {
	return scrypt.Key([]byte(code), []byte(salt), resetCodeScryptN, resetCodeScryptR, resetCodeScryptP, keyLen)
}

func randomResetCode(length int) (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n.Int64()), nil
}
