package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// statusCache is an optional redis read-through cache for the room status
// aggregate, the one read-heavy query. It fails open: any redis problem is
// treated as a cache miss.
type statusCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// UseRedisCache enables caching of room status responses with the given TTL.
func (s *ReservationService) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	if redisClient == nil || ttl <= 0 {
		return
	}
	s.cache = &statusCache{redis: redisClient, ttl: ttl}
}

func statusCacheKey(day string) string {
	return fmt.Sprintf("roomstatus:%s", day)
}

func (s *ReservationService) readStatusCache(ctx context.Context, day string) (map[string]RoomStatus, bool) {
	if s.cache == nil {
		return nil, false
	}
	val, err := s.cache.redis.Get(ctx, statusCacheKey(day)).Result()
	if err != nil {
		return nil, false
	}
	var statuses map[string]RoomStatus
	if err := json.Unmarshal([]byte(val), &statuses); err != nil {
		return nil, false
	}
	return statuses, true
}

func (s *ReservationService) writeStatusCache(ctx context.Context, day string, statuses map[string]RoomStatus) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(statuses)
	if err != nil {
		return
	}
	if err := s.cache.redis.Set(ctx, statusCacheKey(day), data, s.cache.ttl).Err(); err != nil {
		s.logger.Debug().Err(err).Msg("status cache write failed")
	}
}

// invalidateStatus drops the cached aggregate after any mutation so readers
// never see a stale count for longer than one round trip.
func (s *ReservationService) invalidateStatus(ctx context.Context, day string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.redis.Del(ctx, statusCacheKey(day)).Err(); err != nil {
		s.logger.Debug().Err(err).Msg("status cache invalidation failed")
	}
}
