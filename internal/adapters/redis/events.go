package redisad

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"smarttour/internal/domain"
)

const Channel = "smarttour:models"

type event struct {
	Kind domain.ModelKind `json:"kind"`
}

// Events publishes and consumes model-refresh notices over Redis pub/sub.
type Events struct {
	c       *redis.Client
	channel string
}

func New(addr, pass string, db int) *Events {
	return &Events{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}), channel: Channel}
}

func (e *Events) Ping(ctx context.Context) error { return e.c.Ping(ctx).Err() }

func (e *Events) Close() error { return e.c.Close() }

func (e *Events) Publish(ctx context.Context, kind domain.ModelKind) error {
	b, _ := json.Marshal(event{Kind: kind})
	if err := e.c.Publish(ctx, e.channel, b).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", kind, err)
	}
	return nil
}

// Subscribe calls fn for each notice until ctx is done. The subscription is
// confirmed before Subscribe starts delivering, so events published after it
// returns from the first Receive are not lost.
func (e *Events) Subscribe(ctx context.Context, fn func(context.Context, domain.ModelKind)) error {
	ps := e.c.Subscribe(ctx, e.channel)
	defer ps.Close()
	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", e.channel, err)
	}

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Warn().Err(err).Str("payload", msg.Payload).Msg("drop malformed model event")
				continue
			}
			fn(ctx, ev.Kind)
		}
	}
}
