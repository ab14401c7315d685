package repository

import (
	"time"

	"github.com/google/wire"
	"go.mongodb.org/mongo-driver/bson"
)

// Wire 依賴提供
var ProviderSet = wire.NewSet(
	NewProviderRepository,
	NewListingRepository,
	NewUsageEventRepository,
)

func withUpdatedAt(update bson.M) bson.M {
	// 確保 $currentDate 存在
	currentDate, ok := update["$currentDate"].(bson.M)
	if !ok || currentDate == nil {
		currentDate = bson.M{}
	}
	currentDate["updatedAt"] = true
	update["$currentDate"] = currentDate
	return update
}

// mongo 只保存到毫秒，先截斷讓回傳值與資料庫一致
func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func pageOptions(page int64, size int64) (skip int64, limit int64) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 20
	}
	return page * size, size
}
