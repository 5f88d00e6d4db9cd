package realtime

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/groomer-scheduler/internal/logger"
)

const channelPrefix = "groomer:changes:"

// RedisBridge shares the change feed between API instances. Publish goes to
// Redis; Run delivers whatever Redis hands back to the local Bus.
type RedisBridge struct {
	rdb   *redis.Client
	local *Bus
}

func NewRedisBridge(rdb *redis.Client, local *Bus) *RedisBridge {
	return &RedisBridge{rdb: rdb, local: local}
}

func (r *RedisBridge) Publish(ctx context.Context, changes ...Change) {
	for _, c := range changes {
		payload, err := json.Marshal(c)
		if err != nil {
			continue
		}
		if err := r.rdb.Publish(ctx, channelPrefix+c.SalonID.String(), payload).Err(); err != nil {
			logger.Get().Warn("redis publish failed, delivering locally",
				zap.Error(err),
				zap.String("table", string(c.Table)),
			)
			r.local.deliver(c)
		}
	}
}

// Run blocks until ctx is done.
func (r *RedisBridge) Run(ctx context.Context) {
	sub := r.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	log := logger.Get()
	ch := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if !strings.HasPrefix(msg.Channel, channelPrefix) {
				continue
			}

			var c Change
			if err := json.Unmarshal([]byte(msg.Payload), &c); err != nil {
				log.Warn("invalid change payload", zap.Error(err))
				continue
			}
			r.local.deliver(c)
		}
	}
}

var _ Publisher = (*RedisBridge)(nil)
