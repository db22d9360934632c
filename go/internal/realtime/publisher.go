package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/draft/events"
)

// Config holds NATS connection settings for the room broadcast channel.
type Config struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration
	SubjectPrefix string
}

func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		MaxReconnects: -1, // infinite
		ReconnectWait: 2 * time.Second,
		SubjectPrefix: "draftroom",
	}
}

// Broadcaster publishes and subscribes room events on NATS. Delivery is
// best-effort and ephemeral: a session that was not subscribed when a message
// went out never sees it, and reconciles from the persisted snapshot instead.
type Broadcaster struct {
	nc     *nats.Conn
	config Config
}

// Connect dials NATS with reconnect handling.
func Connect(cfg Config) (*Broadcaster, error) {
	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &Broadcaster{nc: nc, config: cfg}, nil
}

func (b *Broadcaster) subject(inviteCode string) string {
	return fmt.Sprintf("%s.%s.events", b.config.SubjectPrefix, inviteCode)
}

// Publish sends one event on the room's channel.
func (b *Broadcaster) Publish(inviteCode string, event *events.RoomEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal room event: %w", err)
	}
	if err := b.nc.Publish(b.subject(inviteCode), data); err != nil {
		return fmt.Errorf("publish room event: %w", err)
	}
	log.Debug().
		Str("room_id", event.RoomID).
		Str("event_type", string(event.Type)).
		Msg("published room event")
	return nil
}

// SubscribeRoom delivers the room's events into out. A full channel drops the
// message rather than blocking the NATS callback; the persisted snapshot is
// the backstop for anything dropped.
func (b *Broadcaster) SubscribeRoom(inviteCode string, out chan<- *events.RoomEvent) (*nats.Subscription, error) {
	sub, err := b.nc.Subscribe(b.subject(inviteCode), func(msg *nats.Msg) {
		var event events.RoomEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			log.Error().Err(err).Msg("malformed room event; dropping")
			return
		}
		select {
		case out <- &event:
		default:
			log.Warn().
				Str("event_type", string(event.Type)).
				Msg("session inbox full; dropping broadcast")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to room channel: %w", err)
	}
	return sub, nil
}

// Close drains the connection.
func (b *Broadcaster) Close() {
	if b.nc != nil {
		b.nc.Close()
	}
}
