package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Hash 以 bcrypt 產生密碼雜湊；cost 超出範圍時使用預設值
func Hash(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify 比對密碼；不符時回傳 false 而非錯誤
func Verify(hash, plain string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// DummyVerify 帳號不存在時仍執行一次比對，讓回應時間與密碼錯誤一致
func DummyVerify(plain string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plain))
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("agentmarket-dummy-password"), bcrypt.DefaultCost)
