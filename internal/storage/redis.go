package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/neexbeast/travel-planner/internal/travel"
)

const (
	seqKey      = "travel:history:seq"
	recordsKey  = "travel:history:records"
	timelineKey = "travel:history:timeline"
)

// ConnectRedis parses redisURL, creates a client, and verifies connectivity with a ping.
func ConnectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return client, nil
}

// RedisHistory is a HistoryStore kept in Redis. Ids come from INCR; records
// live in a hash keyed by id and a sorted set orders them by timestamp.
type RedisHistory struct {
	client redis.UniversalClient
}

// NewRedisHistory constructs a RedisHistory on client.
func NewRedisHistory(client redis.UniversalClient) *RedisHistory {
	return &RedisHistory{client: client}
}

// Initialize checks connectivity and seeds the id sequence if it is absent.
func (h *RedisHistory) Initialize(ctx context.Context) error {
	if err := h.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("pinging redis: %w", err)
	}
	if err := h.client.SetNX(ctx, seqKey, 0, 0).Err(); err != nil {
		return fmt.Errorf("seeding history sequence: %w", err)
	}
	return nil
}

// Append stores rec and returns its id.
func (h *RedisHistory) Append(ctx context.Context, rec travel.HistoryRecord) (int64, error) {
	id, err := h.client.Incr(ctx, seqKey).Result()
	if err != nil {
		return 0, fmt.Errorf("allocating history id: %w", err)
	}
	rec.ID = id

	b, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("marshaling history record %d: %w", id, err)
	}

	member := strconv.FormatInt(id, 10)
	_, err = h.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, recordsKey, member, b)
		pipe.ZAdd(ctx, timelineKey, redis.Z{Score: float64(rec.Timestamp.UnixMilli()), Member: member})
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("storing history record %d: %w", id, err)
	}

	return id, nil
}

// ListAll returns every record, newest first with ties broken by id.
func (h *RedisHistory) ListAll(ctx context.Context) ([]travel.HistoryRecord, error) {
	ids, err := h.client.ZRevRange(ctx, timelineKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading history timeline: %w", err)
	}

	records := []travel.HistoryRecord{}
	if len(ids) == 0 {
		return records, nil
	}

	vals, err := h.client.HMGet(ctx, recordsKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("reading history records: %w", err)
	}

	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("history record %s missing from %s", ids[i], recordsKey)
		}
		var rec travel.HistoryRecord
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			return nil, fmt.Errorf("unmarshaling history record %s: %w", ids[i], err)
		}
		records = append(records, rec)
	}

	// Sorted-set members with equal scores order lexically, which is wrong for ids.
	sort.SliceStable(records, func(i, j int) bool {
		return newerFirst(records[i], records[j])
	})

	return records, nil
}

func newerFirst(a, b travel.HistoryRecord) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.After(b.Timestamp)
	}
	return a.ID > b.ID
}
