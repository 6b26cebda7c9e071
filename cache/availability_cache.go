package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"booking-service/data"

	"github.com/go-redis/redis"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	cacheCheck   = "availability:check:%s:%s:%s"
	cacheRoomAll = "availability:check:%s:*"

	checkTTL = 30 * time.Second
)

// AvailabilityCache keeps recent availability-check answers in Redis. Entries
// are short-lived and dropped on any ledger mutation for the room, so a stale
// positive can survive at most one TTL window.
type AvailabilityCache struct {
	cli    *redis.Client
	logger *logrus.Logger
	Tracer trace.Tracer
}

func New(address string, logger *logrus.Logger, tracer trace.Tracer) *AvailabilityCache {
	client := redis.NewClient(&redis.Options{
		Addr: address,
	})

	return &AvailabilityCache{
		cli:    client,
		logger: logger,
		Tracer: tracer,
	}
}

func (ac *AvailabilityCache) Ping() {
	val, _ := ac.cli.Ping().Result()
	ac.logger.Info(val)
}

func checkKey(roomID string, checkIn, checkOut time.Time) string {
	return fmt.Sprintf(cacheCheck, roomID,
		data.NormalizeDate(checkIn).Format("2006-01-02"),
		data.NormalizeDate(checkOut).Format("2006-01-02"))
}

func (ac *AvailabilityCache) GetCheck(roomID string, checkIn, checkOut time.Time, ctx context.Context) (*data.CheckAvailabilityResult, bool) {
	_, span := ac.Tracer.Start(ctx, "AvailabilityCache.GetCheck")
	defer span.End()

	raw, err := ac.cli.Get(checkKey(roomID, checkIn, checkOut)).Bytes()
	if err != nil {
		return nil, false
	}
	var result data.CheckAvailabilityResult
	if err := json.Unmarshal(raw, &result); err != nil {
		span.SetStatus(codes.Error, "Error decoding cached availability check: "+err.Error())
		return nil, false
	}
	return &result, true
}

func (ac *AvailabilityCache) PostCheck(roomID string, checkIn, checkOut time.Time, result *data.CheckAvailabilityResult, ctx context.Context) {
	_, span := ac.Tracer.Start(ctx, "AvailabilityCache.PostCheck")
	defer span.End()

	raw, err := json.Marshal(result)
	if err != nil {
		span.SetStatus(codes.Error, "Error encoding availability check: "+err.Error())
		return
	}
	if err := ac.cli.Set(checkKey(roomID, checkIn, checkOut), raw, checkTTL).Err(); err != nil {
		span.SetStatus(codes.Error, "Error setting availability check in Redis: "+err.Error())
		ac.logger.WithFields(logrus.Fields{"room_id": roomID}).Warn("Error caching availability check: ", err)
	}
}

// InvalidateRoom drops every cached answer for the room. Called after any
// ledger mutation; failure is logged and swallowed, the TTL bounds staleness.
func (ac *AvailabilityCache) InvalidateRoom(roomID string, ctx context.Context) {
	_, span := ac.Tracer.Start(ctx, "AvailabilityCache.InvalidateRoom")
	defer span.End()

	keys, err := ac.cli.Keys(fmt.Sprintf(cacheRoomAll, roomID)).Result()
	if err != nil {
		ac.logger.WithFields(logrus.Fields{"room_id": roomID}).Warn("Error listing cache keys: ", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := ac.cli.Del(keys...).Err(); err != nil {
		span.SetStatus(codes.Error, "Error invalidating availability cache: "+err.Error())
		ac.logger.WithFields(logrus.Fields{"room_id": roomID}).Warn("Error invalidating availability cache: ", err)
	}
}
