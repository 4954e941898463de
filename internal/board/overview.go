package board

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/pressing-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/models"
	"github.com/angelmondragon/pressing-admin/pkg/pagination"
	"github.com/angelmondragon/pressing-admin/pkg/types"
)

// Sources are the services counted by Overview.
type Sources struct {
	Orders     Lister[models.Commande]
	Tours      Lister[models.Tournee]
	Payments   Lister[models.Paiement]
	Promotions Lister[models.Promotion]
}

// Counts is the dashboard headline.
type Counts struct {
	Date             string `json:"date"`
	OrdersToProcess  int    `json:"ordersToProcess"`
	ToursToday       int    `json:"toursToday"`
	PendingPayments  int    `json:"pendingPayments"`
	ActivePromotions int    `json:"activePromotions"`
}

// Overview fetches the four counts concurrently. Each query asks for a single row and reads the
// pagination total. The first failure cancels the others.
func Overview(ctx context.Context, src Sources, now time.Time) (Counts, error) {
	if src.Orders == nil || src.Tours == nil || src.Payments == nil || src.Promotions == nil {
		return Counts{}, pkgerrors.New(pkgerrors.CodeDependency, "overview requires every source")
	}
	today := types.NewDate(now).String()
	counts := Counts{Date: today}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := total(ctx, src.Orders, FilterStatut, string(enums.OrderStatusEnAttente))
		counts.OrdersToProcess = n
		return err
	})
	g.Go(func() error {
		n, err := total(ctx, src.Tours, FilterDateTournee, today)
		counts.ToursToday = n
		return err
	})
	g.Go(func() error {
		n, err := total(ctx, src.Payments, FilterStatut, string(enums.PaymentStatusEnAttente))
		counts.PendingPayments = n
		return err
	})
	g.Go(func() error {
		n, err := total(ctx, src.Promotions, FilterEstActif, "true")
		counts.ActivePromotions = n
		return err
	})
	if err := g.Wait(); err != nil {
		return Counts{}, err
	}
	return counts, nil
}

func total[T any](ctx context.Context, lister Lister[T], key, value string) (int, error) {
	page, err := lister.List(ctx, pagination.Params{Page: 1, PerPage: 1, Filters: map[string]string{key: value}})
	if err != nil {
		return 0, err
	}
	return page.Total(), nil
}
