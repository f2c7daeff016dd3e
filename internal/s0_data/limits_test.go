package s0_data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/conviction-radar/pkg/config"
	"github.com/wonny/conviction-radar/pkg/redis"
)

func TestYahooLimiters(t *testing.T) {
	cfg := &config.Config{Yahoo: config.YahooConfig{RatePerSec: 5, RateBurst: 0}}

	assert.Len(t, YahooLimiters(cfg, nil), 1)

	rdb, err := redis.New(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, YahooLimiters(cfg, rdb), 1, "disabled redis adds nothing")
}
