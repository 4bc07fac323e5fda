package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	dom "todoapi/internal/domain"

	"github.com/redis/go-redis/v9"
)

// TodoCache caches per-user todo list, search, and overdue results in Redis.
// Keys are scoped by user ID so one user's writes never evict another's
// cached reads.
type TodoCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTodoCache returns a new TodoCache.
func NewTodoCache(rdb *redis.Client, ttl time.Duration) *TodoCache {
	return &TodoCache{rdb: rdb, ttl: ttl}
}

func userPrefix(userID int64) string {
	return "todo:" + strconv.FormatInt(userID, 10) + ":"
}

// GetList returns the cached list for userID or nil if miss.
func (c *TodoCache) GetList(ctx context.Context, userID int64) ([]dom.Todo, error) {
	return c.get(ctx, userPrefix(userID)+"list")
}

// SetList stores the list for userID.
func (c *TodoCache) SetList(ctx context.Context, userID int64, list []dom.Todo) error {
	return c.set(ctx, userPrefix(userID)+"list", list)
}

// GetSearch returns the cached search result for userID and query q, or nil if miss.
func (c *TodoCache) GetSearch(ctx context.Context, userID int64, q string) ([]dom.Todo, error) {
	return c.get(ctx, userPrefix(userID)+"search:"+normalizeQuery(q))
}

// SetSearch stores the search result for userID and query q.
func (c *TodoCache) SetSearch(ctx context.Context, userID int64, q string, list []dom.Todo) error {
	return c.set(ctx, userPrefix(userID)+"search:"+normalizeQuery(q), list)
}

// GetOverdue returns the cached overdue list for userID or nil if miss.
func (c *TodoCache) GetOverdue(ctx context.Context, userID int64) ([]dom.Todo, error) {
	return c.get(ctx, userPrefix(userID)+"overdue")
}

// SetOverdue stores the overdue list for userID.
func (c *TodoCache) SetOverdue(ctx context.Context, userID int64, list []dom.Todo) error {
	return c.set(ctx, userPrefix(userID)+"overdue", list)
}

// InvalidateUser removes every cached entry for userID (invalidation on write).
func (c *TodoCache) InvalidateUser(ctx context.Context, userID int64) error {
	iter := c.rdb.Scan(ctx, 0, userPrefix(userID)+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (c *TodoCache) get(ctx context.Context, key string) ([]dom.Todo, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []dom.Todo
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *TodoCache) set(ctx context.Context, key string, list []dom.Todo) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}

func normalizeQuery(q string) string {
	return strings.TrimSpace(strings.ToLower(q))
}
