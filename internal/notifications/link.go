package notifications

import (
	"context"
	"time"

	"github.com/angelmondragon/pressing-admin/pkg/enums"
	"github.com/angelmondragon/pressing-admin/pkg/logger"
)

// TokenReader returns the current backend token, "" when signed out.
type TokenReader interface {
	Token(ctx context.Context) (string, error)
}

// Attacher subscribes a consumer to a channel.
type Attacher func(ch *Channel) []*Subscription

// Link keeps a channel in step with the operator session: it connects when a token appears,
// reconnects with the new token after a re-login and disconnects on sign-out. Disconnect drops
// every listener, so attachers run again before each connection.
type Link struct {
	ch       *Channel
	tokens   TokenReader
	attach   []Attacher
	userID   func(ctx context.Context) any
	logg     *logger.Logger
	current  string
	attached bool
	kick     chan struct{}
}

// LinkOption customises a Link.
type LinkOption func(*Link)

// WithUserChannel also joins the personal notification channel of the user returned by id.
func WithUserChannel(id func(ctx context.Context) any) LinkOption {
	return func(l *Link) {
		l.userID = id
	}
}

// WithLinkLogger sets the logger used for sync failures.
func WithLinkLogger(logg *logger.Logger) LinkOption {
	return func(l *Link) {
		if logg != nil {
			l.logg = logg
		}
	}
}

func NewLink(ch *Channel, tokens TokenReader, attach []Attacher, opts ...LinkOption) *Link {
	l := &Link{ch: ch, tokens: tokens, attach: attach, logg: logger.Nop(), kick: make(chan struct{}, 1)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Sync reads the token once and connects, reconnects or disconnects accordingly. It is not
// safe for concurrent use; Run calls it from a single goroutine.
func (l *Link) Sync(ctx context.Context) error {
	token, err := l.tokens.Token(ctx)
	if err != nil {
		return err
	}
	if token == l.current {
		return nil
	}
	if l.current != "" {
		l.ch.Disconnect()
		l.attached = false
	}
	l.current = token
	if token == "" {
		return nil
	}

	if !l.attached {
		for _, attach := range l.attach {
			attach(l.ch)
		}
		l.ch.On(enums.EventConnected, func(e Event) {
			if e.Connected {
				l.join(ctx)
			}
		})
		l.attached = true
	}
	return l.ch.Connect(ctx, token)
}

func (l *Link) join(ctx context.Context) {
	if err := l.ch.JoinAdminChannel(); err != nil {
		l.logg.Error(ctx, "join admin channel failed", err)
	}
	if l.userID == nil {
		return
	}
	if id := l.userID(ctx); id != nil {
		if err := l.ch.JoinUserNotificationChannel(id); err != nil {
			l.logg.Error(ctx, "join notification channel failed", err)
		}
	}
}

// Kick asks Run to sync now instead of waiting for the next tick.
func (l *Link) Kick() {
	select {
	case l.kick <- struct{}{}:
	default:
	}
}

// Run syncs immediately and then every interval until ctx is done, then disconnects.
func (l *Link) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer l.ch.Disconnect()

	l.syncLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			l.syncLogged(ctx)
		case <-l.kick:
			l.syncLogged(ctx)
		}
	}
}

func (l *Link) syncLogged(ctx context.Context) {
	if err := l.Sync(ctx); err != nil && ctx.Err() == nil {
		l.logg.Error(ctx, "notification link sync failed", err)
	}
}
