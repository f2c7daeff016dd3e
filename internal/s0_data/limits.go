package s0_data

import (
	"golang.org/x/time/rate"

	"github.com/wonny/conviction-radar/pkg/config"
	"github.com/wonny/conviction-radar/pkg/httputil"
	"github.com/wonny/conviction-radar/pkg/redis"
)

// YahooLimiters builds the limiter chain for Yahoo calls
// 프로세스 내 token bucket + (Redis 활성 시) 프로세스 간 sliding window
func YahooLimiters(cfg *config.Config, rdb *redis.Client) []httputil.Limiter {
	limiters := []httputil.Limiter{
		rate.NewLimiter(rate.Limit(cfg.Yahoo.RatePerSec), burst(cfg.Yahoo.RateBurst)),
	}

	if rdb != nil && rdb.Enabled() {
		limiters = append(limiters, rdb.Limiter(redis.YahooRateLimit))
	}

	return limiters
}

func burst(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
