package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// JobLock is a best-effort advisory lock keyed by job id. It reduces duplicate
// work when a visibility timeout expires mid-run; it is never relied on for
// correctness — deterministic chunk ids and upsert writes carry that.
type JobLock struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewJobLock(rdb *redis.Client, ttl time.Duration) *JobLock {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &JobLock{rdb: rdb, ttl: ttl}
}

// TryAcquire returns a release func when the lock is taken, or false when
// another worker holds it. Redis being unreachable counts as acquired:
// best-effort means processing proceeds without the lock.
func (l *JobLock) TryAcquire(ctx context.Context, jobId string) (func(), bool) {
	if l == nil || l.rdb == nil {
		return func() {}, true
	}

	key := "ingestion:job-lock:" + jobId
	holder := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, key, holder, l.ttl).Result()
	if err != nil {
		return func() {}, true
	}
	if !ok {
		return nil, false
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, _ = releaseScript.Run(ctx, l.rdb, []string{key}, holder).Result()
	}
	return release, true
}
