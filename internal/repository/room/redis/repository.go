package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type repo struct {
	rc             *redis.Client
	maxScoreScript string
	expireDuration time.Duration
}

func NewRepo(rc *redis.Client, expireDuration time.Duration) *repo {
	return &repo{
		rc:             rc,
		expireDuration: expireDuration,
		maxScoreScript: rc.ScriptLoad(context.Background(), `
			local maxScore = redis.call('ZREVRANGE', KEYS[1], 0, 0, 'WITHSCORES')
			local nextScore = 1
			if #maxScore > 0 then
				nextScore = tonumber(maxScore[2]) + 1
			end
			redis.call('ZADD', KEYS[1], nextScore, ARGV[1])
			return nextScore
		`).Val(),
	}
}

// ServerNowMs returns the store clock in unix milliseconds so every
// writer stamps playback updates against the same clock. Falls back to
// the local clock if the TIME command fails.
func (r repo) ServerNowMs(ctx context.Context) int64 {
	t, err := r.rc.Time(ctx).Result()
	if err != nil {
		return time.Now().UnixMilli()
	}

	return t.UnixMilli()
}
