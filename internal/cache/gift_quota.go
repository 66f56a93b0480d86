package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// 每日计数键保留 48 小时，跨天读取后自然过期
const giftQuotaTTL = 48 * time.Hour

func giftQuotaKey(fanID uint, day time.Time) string {
	return fmt.Sprintf("gift:sent:%d:%s", fanID, day.UTC().Format("20060102"))
}

// GetDailySentCount 读取粉丝当日已发送的礼物请求数
// Redis 未启用时返回未命中，调用方回退数据库口径。
func GetDailySentCount(ctx context.Context, fanID uint, day time.Time) (int64, bool, error) {
	if !Enabled() || fanID == 0 {
		return 0, false, nil
	}
	val, err := redisClient.Get(ctx, buildKey(giftQuotaKey(fanID, day))).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return val, true, nil
}

// IncrDailySentCount 发送成功后递增当日计数
func IncrDailySentCount(ctx context.Context, fanID uint, day time.Time) error {
	if !Enabled() || fanID == 0 {
		return nil
	}
	key := buildKey(giftQuotaKey(fanID, day))
	pipe := redisClient.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, giftQuotaTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// SetDailySentCount 回填当日计数（数据库兜底口径同步回缓存）
func SetDailySentCount(ctx context.Context, fanID uint, day time.Time, count int64) error {
	if !Enabled() || fanID == 0 {
		return nil
	}
	return redisClient.Set(ctx, buildKey(giftQuotaKey(fanID, day)), count, giftQuotaTTL).Err()
}
