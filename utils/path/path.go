package path

import (
	"os"
	"path/filepath"
	"runtime"
)

// RootPath 傳回原始碼樹的專案根目錄（/project/utils/path/path.go → /project）
func RootPath() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		panic("無法取得 caller 位置")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
}

// Exists 路徑是否存在
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Resolve 找出設定檔實際位置：絕對路徑直接使用，否則依序嘗試工作目錄與各 base 目錄。
// 都找不到時回傳最後一個候選，讓呼叫端的讀檔錯誤帶出完整路徑。
func Resolve(name string, bases ...string) string {
	if filepath.IsAbs(name) {
		return name
	}
	candidates := []string{name}
	for _, base := range bases {
		candidates = append(candidates, filepath.Join(base, name))
	}
	for _, candidate := range candidates {
		if ok, _ := Exists(candidate); ok {
			return candidate
		}
	}
	return candidates[len(candidates)-1]
}
