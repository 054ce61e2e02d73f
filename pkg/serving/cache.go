package serving

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/glucora-health/screening/pkg/common/logger"
	"github.com/glucora-health/screening/pkg/screening"
	"github.com/redis/go-redis/v9"
)

// Cache is a read-through store for completed assessments. Scoring is
// deterministic per record, so identical submissions can be answered from
// Redis. Failures degrade to direct scoring, never to an error.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(record screening.InputRecord) (string, error) {
	row, err := record.Vector()
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(row)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("assessment:%s", hex.EncodeToString(sum[:])), nil
}

func (c *Cache) Get(ctx context.Context, record screening.InputRecord) (*AssessResponse, bool) {
	key, err := cacheKey(record)
	if err != nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.WithError(err).Debug("assessment cache read failed")
		}
		return nil, false
	}
	var resp AssessResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

func (c *Cache) Set(ctx context.Context, record screening.InputRecord, resp AssessResponse) {
	key, err := cacheKey(record)
	if err != nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logger.Log.WithError(err).Debug("assessment cache write failed")
	}
}
