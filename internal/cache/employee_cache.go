package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/employee-directory/internal/domain"
)

const keyPrefix = "employee:"

// EmployeeCache is a read-through cache for employee records keyed by id.
// All methods tolerate a nil client: the cache degrades to a no-op when
// Redis is unavailable.
type EmployeeCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewEmployeeCache builds a cache over the given client.
func NewEmployeeCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *EmployeeCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &EmployeeCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached record for the id, if present.
func (c *EmployeeCache) Get(ctx context.Context, id string) (*domain.Employee, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	payload, err := c.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("employee cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var employee domain.Employee
	if err := json.Unmarshal(payload, &employee); err != nil {
		c.logger.Debug("employee cache entry corrupt", zap.String("id", id), zap.Error(err))
		return nil, false
	}
	return &employee, true
}

// Set stores the record with the configured TTL.
func (c *EmployeeCache) Set(ctx context.Context, employee *domain.Employee) {
	if c == nil || c.client == nil || employee == nil {
		return
	}

	payload, err := json.Marshal(employee)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, keyPrefix+employee.ID, payload, c.ttl).Err(); err != nil {
		c.logger.Debug("employee cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached record for the id.
func (c *EmployeeCache) Invalidate(ctx context.Context, id string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		c.logger.Debug("employee cache invalidate failed", zap.Error(err))
	}
}
