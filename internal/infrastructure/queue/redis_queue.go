package queue

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisQueue moves jobs from the API to cmd/worker and results back, using
// LPUSH/BRPOP on two lists.
type RedisQueue struct {
	rdb       *redis.Client
	jobKey    string
	resultKey string
}

func NewRedisQueue(rdb *redis.Client, jobKey, resultKey string) *RedisQueue {
	return &RedisQueue{rdb: rdb, jobKey: jobKey, resultKey: resultKey}
}

func (q *RedisQueue) Push(ctx context.Context, job Job) error {
	serialized, err := SerializeJob(job)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, q.jobKey, serialized).Err()
}

// Pop blocks up to timeout (zero blocks forever). It returns nil, nil when the
// timeout passes without a job.
func (q *RedisQueue) Pop(ctx context.Context, timeout time.Duration) (*Job, error) {
	val, err := q.rdb.BRPop(ctx, timeout, q.jobKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return DeserializeJob(val[1])
}

func (q *RedisQueue) PushResult(ctx context.Context, processed ProcessedJob) error {
	serialized, err := SerializeProcessedJob(processed)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, q.resultKey, serialized).Err()
}

func (q *RedisQueue) PopResult(ctx context.Context, timeout time.Duration) (*ProcessedJob, error) {
	val, err := q.rdb.BRPop(ctx, timeout, q.resultKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return DeserializeProcessedJob(val[1])
}

func (q *RedisQueue) Ping(ctx context.Context) error {
	return q.rdb.Ping(ctx).Err()
}
