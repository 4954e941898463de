package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/pressing-admin/api/controllers"
	"github.com/angelmondragon/pressing-admin/api/middleware"
	"github.com/angelmondragon/pressing-admin/internal/auth"
	"github.com/angelmondragon/pressing-admin/internal/board"
	"github.com/angelmondragon/pressing-admin/internal/clients"
	"github.com/angelmondragon/pressing-admin/internal/notifications"
	"github.com/angelmondragon/pressing-admin/internal/operations"
	"github.com/angelmondragon/pressing-admin/internal/orders"
	"github.com/angelmondragon/pressing-admin/internal/payments"
	"github.com/angelmondragon/pressing-admin/internal/promotions"
	"github.com/angelmondragon/pressing-admin/internal/tariffs"
	"github.com/angelmondragon/pressing-admin/internal/tours"
	"github.com/angelmondragon/pressing-admin/internal/wizard"
	"github.com/angelmondragon/pressing-admin/pkg/config"
	"github.com/angelmondragon/pressing-admin/pkg/logger"
)

// Deps are the services the dashboard routes call.
type Deps struct {
	Config  *config.Config
	Logger  *logger.Logger
	Session middleware.SessionReader

	// Backend and Redis are probed by readiness. A nil Redis is skipped.
	Backend controllers.Pinger
	Redis   controllers.Pinger
	// Idempotency stores replayable responses. Nil disables replay.
	Idempotency middleware.IdempotencyStore
	Gatherer    prometheus.Gatherer

	Auth          auth.Service
	Orders        orders.Service
	Payments      payments.Service
	Tours         tours.Service
	Operations    operations.Service
	Promotions    promotions.Service
	Tariffs       tariffs.Service
	Clients       clients.Service
	Notifications notifications.Service
	Catalog       controllers.CatalogLookup
	Tarifs        controllers.TarifLister
	Feed          controllers.LiveFeed
	Board         *board.Board
	Drafts        wizard.DraftStore
	Now           func() time.Time
}

func NewRouter(deps Deps) http.Handler {
	cfg, logg := deps.Config, deps.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.LoginRoute(cfg.API.LoginRoute),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Backend, deps.Redis))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/dashboard", func(r chi.Router) {
		r.Post("/auth/login", controllers.AuthLogin(deps.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(deps.Session, logg))
			r.Use(middleware.Idempotency(deps.Idempotency, logg))

			r.Post("/auth/logout", controllers.AuthLogout(deps.Auth, logg))
			r.Get("/auth/me", controllers.AuthMe(deps.Auth, logg))

			if deps.Board != nil {
				r.Get("/board", controllers.BoardSnapshot(deps.Board, logg))
			}
			r.Get("/overview", controllers.BoardOverview(board.Sources{
				Orders:     deps.Orders,
				Tours:      deps.Tours,
				Payments:   deps.Payments,
				Promotions: deps.Promotions,
			}, deps.Now, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.ListOrders(deps.Orders, logg))
				r.Post("/", controllers.CreateOrder(deps.Orders, logg))
				r.Get("/statuts", controllers.ListOrderStatuses(deps.Orders, logg))
				r.Route("/{orderId}", func(r chi.Router) {
					r.Get("/", controllers.GetOrder(deps.Orders, logg))
					r.Put("/", controllers.UpdateOrder(deps.Orders, logg))
					r.Post("/status", controllers.ChangeOrderStatus(deps.Orders, logg))
					r.Post("/archive", controllers.ArchiveOrder(deps.Orders, logg))
					r.Post("/restore", controllers.RestoreOrder(deps.Orders, logg))
					r.Get("/ticket.png", controllers.OrderTicket(deps.Orders, logg))
					r.Get("/payments", controllers.ListOrderPayments(deps.Payments, logg))
				})
			})

			r.Route("/payments", func(r chi.Router) {
				r.Get("/", controllers.ListPayments(deps.Payments, logg))
				r.Post("/", controllers.CreatePayment(deps.Payments, logg))
				r.Route("/{paymentId}", func(r chi.Router) {
					r.Get("/", controllers.GetPayment(deps.Payments, logg))
					r.Post("/valider", controllers.ValidatePayment(deps.Payments, logg))
					r.Post("/rejeter", controllers.RejectPayment(deps.Payments, logg))
					r.Post("/rembourser", controllers.RefundPayment(deps.Payments, logg))
				})
			})

			r.Route("/tours", func(r chi.Router) {
				r.Get("/", controllers.ListTours(deps.Tours, logg))
				r.Post("/", controllers.CreateTour(deps.Tours, logg))
				r.Route("/{tourId}", func(r chi.Router) {
					r.Get("/", controllers.GetTour(deps.Tours, logg))
					r.Put("/", controllers.UpdateTour(deps.Tours, logg))
					r.Delete("/", controllers.DeleteTour(deps.Tours, logg))
					r.Post("/demarrer", controllers.StartTour(deps.Tours, logg))
					r.Post("/terminer", controllers.FinishTour(deps.Tours, logg))
					r.Post("/annuler", controllers.CancelTour(deps.Tours, logg))
				})
			})

			r.Route("/operations", func(r chi.Router) {
				r.Get("/", controllers.ListOperations(deps.Operations, logg))
				r.Route("/{operationId}", func(r chi.Router) {
					r.Get("/", controllers.GetOperation(deps.Operations, logg))
					r.Post("/status", controllers.ChangeOperationStatus(deps.Operations, logg))
					r.Get("/proofs", controllers.ListOperationProofs(deps.Operations, logg))
					r.Post("/proofs", controllers.UploadOperationProof(deps.Operations, logg))
				})
			})

			r.Route("/promotions", func(r chi.Router) {
				r.Get("/", controllers.ListPromotions(deps.Promotions, logg))
				r.Post("/", controllers.CreatePromotion(deps.Promotions, logg))
				r.Post("/validate", controllers.ValidatePromotionForm(logg))
				r.Get("/code/{code}", controllers.GetPromotionByCode(deps.Promotions, logg))
				r.Route("/{promotionId}", func(r chi.Router) {
					r.Get("/", controllers.GetPromotion(deps.Promotions, logg))
					r.Put("/", controllers.UpdatePromotion(deps.Promotions, logg))
					r.Delete("/", controllers.DeletePromotion(deps.Promotions, logg))
					r.Post("/toggle", controllers.TogglePromotion(deps.Promotions, logg))
					r.Post("/archive", controllers.ArchivePromotion(deps.Promotions, logg))
					r.Post("/restore", controllers.RestorePromotion(deps.Promotions, logg))
				})
			})

			r.Route("/catalog", func(r chi.Router) {
				r.Get("/", controllers.CatalogResources(deps.Catalog))
				r.Route("/{resource}", func(r chi.Router) {
					r.Get("/", controllers.ListCatalog(deps.Catalog, logg))
					r.Post("/", controllers.CreateCatalogItem(deps.Catalog, logg))
					r.Get("/public", controllers.ListPublicCatalog(deps.Catalog, logg))
					r.Route("/{itemId}", func(r chi.Router) {
						r.Get("/", controllers.GetCatalogItem(deps.Catalog, logg))
						r.Put("/", controllers.UpdateCatalogItem(deps.Catalog, logg))
						r.Delete("/", controllers.DeleteCatalogItem(deps.Catalog, logg))
						r.Post("/toggle", controllers.ToggleCatalogItem(deps.Catalog, logg))
						r.Post("/archive", controllers.ArchiveCatalogItem(deps.Catalog, logg))
						r.Post("/restore", controllers.RestoreCatalogItem(deps.Catalog, logg))
					})
				})
			})

			r.Route("/tariffs", func(r chi.Router) {
				r.Get("/", controllers.ListCurrentTariffs(deps.Tariffs, logg))
				r.Post("/", controllers.CreateTariffVersion(deps.Tariffs, logg))
				r.Get("/history", controllers.TariffHistory(deps.Tariffs, logg))
			})

			r.Route("/clients", func(r chi.Router) {
				r.Get("/", controllers.ListClients(deps.Clients, logg))
				r.Get("/{clientId}", controllers.GetClient(deps.Clients, logg))
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
				if deps.Feed != nil {
					r.Get("/live", controllers.LiveNotifications(deps.Feed, logg))
				}
				r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, deps.Feed, logg))
				r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notifications, deps.Feed, logg))
			})

			wizards := &controllers.Wizards{
				Drafts:     deps.Drafts,
				Orders:     deps.Orders,
				Tours:      deps.Tours,
				Promotions: deps.Promotions,
				Tarifs:     deps.Tarifs,
				Logger:     logg,
			}
			r.Route("/wizards/{kind}", func(r chi.Router) {
				r.Post("/", wizards.Create())
				r.Route("/{draftId}", func(r chi.Router) {
					r.Get("/", wizards.Get())
					r.Patch("/", wizards.Update())
					r.Delete("/", wizards.Discard())
					r.Post("/next", wizards.Next())
					r.Post("/back", wizards.Back())
					r.Post("/promotion", wizards.ApplyPromotion())
					r.Post("/submit", wizards.Submit())
				})
			})
		})
	})

	return r
}
