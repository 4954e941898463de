package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/pressing-admin/api/controllers"
	"github.com/angelmondragon/pressing-admin/api/middleware"
	"github.com/angelmondragon/pressing-admin/api/routes"
	"github.com/angelmondragon/pressing-admin/internal/auth"
	"github.com/angelmondragon/pressing-admin/internal/board"
	"github.com/angelmondragon/pressing-admin/internal/catalog"
	"github.com/angelmondragon/pressing-admin/internal/clients"
	"github.com/angelmondragon/pressing-admin/internal/notifications"
	"github.com/angelmondragon/pressing-admin/internal/operations"
	"github.com/angelmondragon/pressing-admin/internal/orders"
	"github.com/angelmondragon/pressing-admin/internal/payments"
	"github.com/angelmondragon/pressing-admin/internal/promotions"
	"github.com/angelmondragon/pressing-admin/internal/tariffs"
	"github.com/angelmondragon/pressing-admin/internal/tours"
	"github.com/angelmondragon/pressing-admin/internal/wizard"
	"github.com/angelmondragon/pressing-admin/pkg/apiclient"
	"github.com/angelmondragon/pressing-admin/pkg/config"
	"github.com/angelmondragon/pressing-admin/pkg/instance"
	"github.com/angelmondragon/pressing-admin/pkg/logger"
	"github.com/angelmondragon/pressing-admin/pkg/metrics"
	pkgredis "github.com/angelmondragon/pressing-admin/pkg/redis"
	"github.com/angelmondragon/pressing-admin/pkg/session"
)

const (
	serviceName     = "dashboard"
	linkInterval    = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

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

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "dashboard stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	var rdb *pkgredis.Client
	if cfg.Redis.Enabled() {
		rdb, err = pkgredis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, rdb.Close())
		}()
	}

	store, err := session.NewStore(cfg.Session, rdb)
	if err != nil {
		return err
	}
	sess := session.New(store)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ch := notifications.NewChannelFromConfig(cfg.Socket,
		notifications.WithLogger(logg),
		notifications.WithMetrics(metrics.NewSocketMetrics(reg)),
	)

	// The link is built after the client, so the 401 hook reaches it through this variable.
	var link *notifications.Link
	api, err := apiclient.NewFromConfig(cfg.API,
		apiclient.WithSession(sess),
		apiclient.WithLogger(logg),
		apiclient.WithMetrics(metrics.NewAPIClientMetrics(reg)),
		apiclient.WithUnauthorizedHandler(func(context.Context) {
			if link != nil {
				link.Kick()
			}
		}),
	)
	if err != nil {
		return err
	}

	svc, err := newServices(api, sess, logg)
	if err != nil {
		return err
	}

	feed := notifications.NewFeed(cfg.Socket.FeedSize)
	live, err := board.New(svc.orders, svc.tours, cfg.Board, board.WithLogger(logg))
	if err != nil {
		return err
	}
	link = notifications.NewLink(ch, sess,
		[]notifications.Attacher{
			feed.Attach,
			func(c *notifications.Channel) []*notifications.Subscription { return live.Attach(c) },
		},
		notifications.WithUserChannel(func(ctx context.Context) any {
			claims, err := sess.Claims(ctx)
			if err != nil {
				return nil
			}
			return claims.UserID
		}),
		notifications.WithLinkLogger(logg),
	)

	drafts, err := wizard.NewDraftStore(cfg.Wizard, rdb)
	if err != nil {
		return err
	}

	deps := routes.Deps{
		Config:        cfg,
		Logger:        logg,
		Session:       sess,
		Backend:       api,
		Gatherer:      reg,
		Auth:          svc.auth,
		Orders:        svc.orders,
		Payments:      svc.payments,
		Tours:         svc.tours,
		Operations:    svc.operations,
		Promotions:    svc.promotions,
		Tariffs:       svc.tariffs,
		Clients:       svc.clients,
		Notifications: svc.notifications,
		Catalog:       svc.catalog,
		Tarifs:        svc.catalog.TarifsKilometriques,
		Feed:          feed,
		Board:         live,
		Drafts:        drafts,
	}
	if rdb != nil {
		deps.Redis = controllers.Pinger(rdb)
		deps.Idempotency = middleware.IdempotencyStore(rdb)
	}

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
		"backend":  api.BaseURL(),
		"socket":   cfg.Socket.URL,
	})
	logg.Info(logCtx, "starting dashboard server")

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return live.Run(groupCtx) })
	group.Go(func() error { return link.Run(groupCtx, linkInterval) })
	group.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logg.Info(logCtx, "shutting down dashboard server")
		return server.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

type services struct {
	auth          auth.Service
	orders        orders.Service
	payments      payments.Service
	tours         tours.Service
	operations    operations.Service
	promotions    promotions.Service
	tariffs       tariffs.Service
	clients       clients.Service
	notifications notifications.Service
	catalog       *catalog.Catalog
}

func newServices(api *apiclient.Client, sess *session.Session, logg *logger.Logger) (*services, error) {
	var (
		s   services
		err error
	)
	if s.auth, err = auth.NewService(api, sess, logg); err != nil {
		return nil, err
	}
	if s.orders, err = orders.NewService(api); err != nil {
		return nil, err
	}
	if s.payments, err = payments.NewService(api); err != nil {
		return nil, err
	}
	if s.tours, err = tours.NewService(api); err != nil {
		return nil, err
	}
	if s.operations, err = operations.NewService(api); err != nil {
		return nil, err
	}
	if s.promotions, err = promotions.NewService(api); err != nil {
		return nil, err
	}
	if s.tariffs, err = tariffs.NewService(api); err != nil {
		return nil, err
	}
	if s.clients, err = clients.NewService(api); err != nil {
		return nil, err
	}
	if s.notifications, err = notifications.NewService(api); err != nil {
		return nil, err
	}
	if s.catalog, err = catalog.New(api); err != nil {
		return nil, err
	}
	return &s, nil
}
