// internal/dating/events.go
// Change signals: compatibility updates go out, profile edits come in.

package dating

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	DefaultCompatibilityChannel = "compatibility:changed"
	DefaultProfileChannel       = "profile:changed"
)

type EventPublisher interface {
	PublishCompatibilityChanged(ctx context.Context, evt CompatibilityChanged) error
}

type NopPublisher struct{}

func (NopPublisher) PublishCompatibilityChanged(context.Context, CompatibilityChanged) error {
	return nil
}

// MultiPublisher delivers to every publisher and joins their errors.
type MultiPublisher []EventPublisher

func (m MultiPublisher) PublishCompatibilityChanged(ctx context.Context, evt CompatibilityChanged) error {
	var errs []error
	for _, p := range m {
		if err := p.PublishCompatibilityChanged(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type RedisPublisher struct {
	client         *redis.Client
	compatChannel  string
	profileChannel string
}

func NewRedisPublisher(client *redis.Client, compatChannel, profileChannel string) *RedisPublisher {
	if compatChannel == "" {
		compatChannel = DefaultCompatibilityChannel
	}
	if profileChannel == "" {
		profileChannel = DefaultProfileChannel
	}
	return &RedisPublisher{client: client, compatChannel: compatChannel, profileChannel: profileChannel}
}

func (p *RedisPublisher) PublishCompatibilityChanged(ctx context.Context, evt CompatibilityChanged) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode compatibility event: %w", err)
	}
	if err := p.client.Publish(ctx, p.compatChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.compatChannel, err)
	}
	return nil
}

// PublishProfileChanged announces a profile edit to every listener.
func (p *RedisPublisher) PublishProfileChanged(ctx context.Context, userID int64) error {
	payload, err := json.Marshal(ProfileChanged{UserID: userID})
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, p.profileChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.profileChannel, err)
	}
	return nil
}

// ProfileChangeListener consumes profile change signals from Redis and
// flags the affected records.
type ProfileChangeListener struct {
	client  *redis.Client
	channel string
	service Service
	logger  *zap.Logger
}

func NewProfileChangeListener(client *redis.Client, channel string, service Service, logger *zap.Logger) *ProfileChangeListener {
	if channel == "" {
		channel = DefaultProfileChannel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileChangeListener{client: client, channel: channel, service: service, logger: logger}
}

// Run blocks until ctx is done or the subscription closes.
func (l *ProfileChangeListener) Run(ctx context.Context) error {
	sub := l.client.Subscribe(ctx, l.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", l.channel, err)
	}
	l.logger.Info("listening for profile changes", zap.String("channel", l.channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			l.handle(ctx, msg.Payload)
		}
	}
}

func (l *ProfileChangeListener) handle(ctx context.Context, payload string) {
	var evt ProfileChanged
	if err := json.Unmarshal([]byte(payload), &evt); err != nil || evt.UserID <= 0 {
		l.logger.Warn("ignoring malformed profile change", zap.String("payload", payload))
		return
	}

	if _, err := l.service.ProfileChanged(ctx, evt.UserID); err != nil {
		l.logger.Error("profile change failed", zap.Int64("user_id", evt.UserID), zap.Error(err))
	}
}
