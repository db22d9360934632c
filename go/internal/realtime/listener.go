package realtime

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// ListenerConfig holds configuration for the Postgres row-change listener.
type ListenerConfig struct {
	DatabaseURL      string        // Postgres DSN for LISTEN/NOTIFY
	NotifyChannel    string        // channel carrying room ids
	FallbackInterval time.Duration // how often to force a refresh regardless
	PingInterval     time.Duration
}

func DefaultListenerConfig(dsn string) ListenerConfig {
	return ListenerConfig{
		DatabaseURL:      dsn,
		NotifyChannel:    "room_changes",
		FallbackInterval: 30 * time.Second,
		PingInterval:     90 * time.Second,
	}
}

// RowChangeListener surfaces row-level changes on a room's persisted records.
// Notifications are at-least-once: the payload is only the room id, and the
// receiver re-reads the rows, so duplicates and the periodic fallback refresh
// are harmless.
type RowChangeListener struct {
	listener *pq.Listener
	cfg      ListenerConfig
	roomID   uuid.UUID
	out      chan<- uuid.UUID
}

// NewRowChangeListener starts LISTENing for changes scoped to one room.
func NewRowChangeListener(cfg ListenerConfig, roomID uuid.UUID, out chan<- uuid.UUID) (*RowChangeListener, error) {
	l := pq.NewListener(
		cfg.DatabaseURL,
		10*time.Second,
		time.Minute,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Error().Err(err).Msg("row-change listener event")
			}
		},
	)
	if err := l.Listen(cfg.NotifyChannel); err != nil {
		return nil, err
	}

	log.Info().
		Str("channel", cfg.NotifyChannel).
		Str("room_id", roomID.String()).
		Msg("listening for room row changes")

	return &RowChangeListener{listener: l, cfg: cfg, roomID: roomID, out: out}, nil
}

// Start pumps notifications until the context ends.
func (l *RowChangeListener) Start(ctx context.Context) error {
	pingTicker := time.NewTicker(l.cfg.PingInterval)
	fallbackTicker := time.NewTicker(l.cfg.FallbackInterval)
	defer pingTicker.Stop()
	defer fallbackTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return l.Stop()
		case note := <-l.listener.Notify:
			if note == nil {
				// nil notification means the connection was lost and re-established
				l.emit()
				continue
			}
			id, err := uuid.Parse(note.Extra)
			if err != nil {
				log.Error().Err(err).Msg("invalid room id in notification")
				continue
			}
			if id == l.roomID {
				l.emit()
			}
		case <-fallbackTicker.C:
			// At-least-once backstop for missed notifications.
			l.emit()
		case <-pingTicker.C:
			if err := l.listener.Ping(); err != nil {
				log.Error().Err(err).Msg("failed to ping listener")
			}
		}
	}
}

func (l *RowChangeListener) emit() {
	select {
	case l.out <- l.roomID:
	default:
		// Receiver already has a refresh pending; coalesce.
	}
}

func (l *RowChangeListener) Stop() error {
	return l.listener.Close()
}
