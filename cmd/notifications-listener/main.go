package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/pressing-admin/internal/notifications"
	"github.com/angelmondragon/pressing-admin/pkg/config"
	"github.com/angelmondragon/pressing-admin/pkg/enums"
	"github.com/angelmondragon/pressing-admin/pkg/logger"
	pkgredis "github.com/angelmondragon/pressing-admin/pkg/redis"
	"github.com/angelmondragon/pressing-admin/pkg/session"
)

const serviceName = "notifications-listener"

var loggedEvents = []enums.NotificationEvent{
	enums.EventNotification,
	enums.EventNotifications,
	enums.EventUserChannel,
	enums.EventAdminChannel,
	enums.EventConnected,
}

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rdb *pkgredis.Client
	if cfg.Redis.Enabled() {
		rdb, err = pkgredis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	}

	store, err := session.NewStore(cfg.Session, rdb)
	if err != nil {
		logg.Error(ctx, "failed to open session store", err)
		return
	}
	sess := session.New(store)

	token, err := sess.Token(ctx)
	if err != nil {
		logg.Error(ctx, "failed to read session", err)
		return
	}
	if token == "" {
		logg.Warn(ctx, "no stored session; sign in through the dashboard first")
		return
	}

	ch := notifications.NewChannelFromConfig(cfg.Socket, notifications.WithLogger(logg))
	link := notifications.NewLink(ch, sess, []notifications.Attacher{logEvents(ctx, logg)},
		notifications.WithLinkLogger(logg),
		notifications.WithUserChannel(func(ctx context.Context) any {
			claims, err := sess.Claims(ctx)
			if err != nil {
				return nil
			}
			return claims.UserID
		}),
	)

	logg.Info(logg.WithField(ctx, "socket_url", cfg.Socket.URL), "listening for notifications")
	if err := link.Run(ctx, 30*time.Second); err != nil {
		logg.Error(ctx, "notification listener stopped", err)
	}
}

func logEvents(ctx context.Context, logg *logger.Logger) notifications.Attacher {
	return func(ch *notifications.Channel) []*notifications.Subscription {
		subs := make([]*notifications.Subscription, 0, len(loggedEvents))
		for _, event := range loggedEvents {
			subs = append(subs, ch.On(event, func(e notifications.Event) {
				fields := map[string]any{"event": e.Name.String()}
				if e.Name == enums.EventConnected {
					fields["connected"] = e.Connected
				}
				if len(e.Data) > 0 {
					fields["data"] = string(e.Data)
				}
				logg.Info(logg.WithFields(ctx, fields), "notification event")
			}))
		}
		return subs
	}
}
