// Package board keeps the operator's live view: today's tours and the orders waiting to be
// processed, refreshed on a ticker and whenever the notification channel reports activity.
package board

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/pressing-admin/internal/listview"
	"github.com/angelmondragon/pressing-admin/internal/notifications"
	"github.com/angelmondragon/pressing-admin/pkg/config"
	"github.com/angelmondragon/pressing-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/logger"
	"github.com/angelmondragon/pressing-admin/pkg/models"
	"github.com/angelmondragon/pressing-admin/pkg/pagination"
	"github.com/angelmondragon/pressing-admin/pkg/types"
)

const (
	FilterStatut      = "statut"
	FilterDateTournee = "dateTournee"
	FilterEstActif    = "estActif"
)

// Lister is the list verb shared by the domain services.
type Lister[T any] interface {
	List(ctx context.Context, params pagination.Params) (*pagination.Page[T], error)
}

// Subscriber is the part of the notification channel the board listens to.
type Subscriber interface {
	On(event enums.NotificationEvent, handler func(notifications.Event)) *notifications.Subscription
}

// Snapshot is the rendered board.
type Snapshot struct {
	Date        string                             `json:"date"`
	Orders      listview.Snapshot[models.Commande] `json:"orders"`
	Tours       listview.Snapshot[models.Tournee]  `json:"tours"`
	RefreshedAt *time.Time                         `json:"refreshedAt,omitempty"`
}

type Board struct {
	orders   *listview.View[models.Commande]
	tours    *listview.View[models.Tournee]
	interval time.Duration
	logg     *logger.Logger
	now      func() time.Time

	kick chan struct{}

	mu          sync.Mutex
	day         string
	refreshedAt time.Time
}

// Option customises a Board.
type Option func(*Board)

// WithClock overrides the time source used to pick "today".
func WithClock(now func() time.Time) Option {
	return func(b *Board) {
		if now != nil {
			b.now = now
		}
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(b *Board) {
		if logg != nil {
			b.logg = logg
		}
	}
}

// New builds the board views. Orders are filtered on the waiting status; tours on the current day.
func New(orders Lister[models.Commande], tours Lister[models.Tournee], cfg config.BoardConfig, opts ...Option) (*Board, error) {
	if orders == nil || tours == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "board requires order and tour services")
	}
	b := &Board{
		orders:   listview.New(orders.List, cfg.PerPage),
		tours:    listview.New(tours.List, cfg.PerPage),
		interval: cfg.RefreshInterval,
		logg:     logger.Nop(),
		now:      time.Now,
		kick:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.orders.Configure(pagination.Params{Filters: map[string]string{FilterStatut: string(enums.OrderStatusEnAttente)}})
	return b, nil
}

// Refresh reloads both views concurrently. The tour filter follows the current day.
func (b *Board) Refresh(ctx context.Context) error {
	today := types.NewDate(b.now()).String()
	b.mu.Lock()
	dayChanged := b.day != today
	b.day = today
	b.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return b.orders.Refresh(gctx)
	})
	g.Go(func() error {
		if dayChanged {
			return b.tours.SetFilter(gctx, FilterDateTournee, today)
		}
		return b.tours.Refresh(gctx)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	b.mu.Lock()
	b.refreshedAt = b.now()
	b.mu.Unlock()
	return nil
}

// Kick requests a refresh from the Run loop without blocking.
func (b *Board) Kick() {
	select {
	case b.kick <- struct{}{}:
	default:
	}
}

// Attach refreshes the board on new notifications and on reconnection.
func (b *Board) Attach(sub Subscriber) []*notifications.Subscription {
	onActivity := func(notifications.Event) { b.Kick() }
	return []*notifications.Subscription{
		sub.On(enums.EventNotification, onActivity),
		sub.On(enums.EventNotifications, onActivity),
		sub.On(enums.EventConnected, func(ev notifications.Event) {
			if ev.Connected {
				b.Kick()
			}
		}),
	}
}

// Run refreshes once, then on every tick or kick until ctx is done.
func (b *Board) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if b.interval > 0 {
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	b.refreshLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			b.refreshLogged(ctx)
		case <-b.kick:
			b.refreshLogged(ctx)
		}
	}
}

func (b *Board) refreshLogged(ctx context.Context) {
	if err := b.Refresh(ctx); err != nil && ctx.Err() == nil {
		b.logg.Error(ctx, "board refresh failed", err)
	}
}

func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	snap := Snapshot{Date: b.day}
	if !b.refreshedAt.IsZero() {
		at := b.refreshedAt
		snap.RefreshedAt = &at
	}
	b.mu.Unlock()
	snap.Orders = b.orders.Snapshot()
	snap.Tours = b.tours.Snapshot()
	return snap
}
