package tariffs

import (
	"context"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pressing-admin/internal/validation"
	"github.com/angelmondragon/pressing-admin/pkg/apiclient"
	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/models"
	"github.com/angelmondragon/pressing-admin/pkg/pagination"
	"github.com/angelmondragon/pressing-admin/pkg/types"
)

const (
	basePath    = "/admin/tarifs"
	historyPath = "/admin/tarifs/historique"
)

// Service reads and versions prices. Existing versions are never edited: a new price is a new
// version.
type Service interface {
	ListCurrent(ctx context.Context, params pagination.Params) (*pagination.Page[models.Tarif], error)
	History(ctx context.Context, filter HistoryFilter) ([]models.Tarif, error)
	CreateVersion(ctx context.Context, input VersionInput) (*models.Tarif, error)
}

// HistoryFilter narrows the version history to one priced entity.
type HistoryFilter struct {
	ServiceID          int64
	OptionTraitementID int64
	TypeLingeID        int64
}

func (f HistoryFilter) params() pagination.Params {
	filters := map[string]string{}
	if f.ServiceID > 0 {
		filters["serviceId"] = strconv.FormatInt(f.ServiceID, 10)
	}
	if f.OptionTraitementID > 0 {
		filters["optionTraitementId"] = strconv.FormatInt(f.OptionTraitementID, 10)
	}
	if f.TypeLingeID > 0 {
		filters["typeLingeId"] = strconv.FormatInt(f.TypeLingeID, 10)
	}
	return pagination.Params{Filters: filters}
}

// VersionInput creates a new price version for a service or a treatment option.
type VersionInput struct {
	ServiceID          *int64          `json:"serviceId,omitempty"`
	OptionTraitementID *int64          `json:"optionTraitementId,omitempty"`
	TypeLingeID        *int64          `json:"typeLingeId,omitempty"`
	PrixBase           decimal.Decimal `json:"prixBase" validate:"gte=0"`
	PrixSupplementaire decimal.Decimal `json:"prixSupplementaire" validate:"gte=0"`
	DateDebutValidite  types.Date      `json:"dateDebutValidite" validate:"required"`
	DateFinValidite    *types.Date     `json:"dateFinValidite,omitempty"`
	Motif              string          `json:"motif" validate:"required,max=255"`
}

// Validate requires exactly one priced target and a coherent validity window.
func (i VersionInput) Validate() validation.Violations {
	v := validation.Struct(i)
	targets := 0
	if i.ServiceID != nil {
		targets++
	}
	if i.OptionTraitementID != nil {
		targets++
	}
	if targets != 1 {
		v.Add("serviceId", "Choisissez un service ou une option de traitement")
	}
	if i.DateFinValidite != nil && !i.DateDebutValidite.IsZero() && !i.DateDebutValidite.Before(*i.DateFinValidite) {
		v.Add("dateFinValidite", "La date de fin doit être postérieure à la date de début")
	}
	return v
}

type service struct {
	api apiclient.Requester
}

// NewService wires the tariffs service.
func NewService(api apiclient.Requester) (Service, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "api client required")
	}
	return &service{api: api}, nil
}

func (s *service) ListCurrent(ctx context.Context, params pagination.Params) (*pagination.Page[models.Tarif], error) {
	return apiclient.GetPage[models.Tarif](ctx, s.api, basePath, params)
}

// History returns every version matching filter, newest version first.
func (s *service) History(ctx context.Context, filter HistoryFilter) ([]models.Tarif, error) {
	page, err := apiclient.GetPage[models.Tarif](ctx, s.api, historyPath, filter.params())
	if err != nil {
		return nil, err
	}
	versions := page.Data
	sort.SliceStable(versions, func(i, j int) bool {
		return versions[i].Version > versions[j].Version
	})
	return versions, nil
}

func (s *service) CreateVersion(ctx context.Context, input VersionInput) (*models.Tarif, error) {
	if v := input.Validate(); !v.Empty() {
		return nil, v.Err()
	}
	env, err := s.api.Post(ctx, basePath, input)
	if err != nil {
		return nil, err
	}
	tarif, err := apiclient.DecodeData[models.Tarif](env)
	if err != nil {
		return nil, err
	}
	return &tarif, nil
}

// CurrentFor picks the version valid on day with the highest version number.
func CurrentFor(versions []models.Tarif, day types.Date) (models.Tarif, bool) {
	var (
		best  models.Tarif
		found bool
	)
	for _, version := range versions {
		if !version.ValidOn(day) {
			continue
		}
		if !found || version.Version > best.Version {
			best, found = version, true
		}
	}
	return best, found
}
