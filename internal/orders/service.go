package orders

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pressing-admin/internal/validation"
	"github.com/angelmondragon/pressing-admin/pkg/apiclient"
	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/models"
	"github.com/angelmondragon/pressing-admin/pkg/pagination"
	"github.com/angelmondragon/pressing-admin/pkg/types"
)

const (
	basePath     = "/admin/commandes"
	statusesPath = "/statuts"
)

// Service reads and updates customer orders. Orders are never deleted, only archived.
type Service interface {
	List(ctx context.Context, params pagination.Params) (*pagination.Page[models.Commande], error)
	Get(ctx context.Context, id int64) (*models.Commande, error)
	Create(ctx context.Context, input CreateInput) (*models.Commande, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*models.Commande, error)
	ChangeStatus(ctx context.Context, id int64, input StatusInput) (*models.Commande, error)
	Archive(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
	ListStatuses(ctx context.Context) ([]models.Statut, error)
}

// LigneInput is one priced line of a new order.
type LigneInput struct {
	ServiceID     int64                `json:"serviceId" validate:"required"`
	TypeLingeID   *int64               `json:"typeLingeId,omitempty"`
	TemperatureID *int64               `json:"temperatureId,omitempty"`
	Quantite      int                  `json:"quantite" validate:"gte=1"`
	PrixUnitaire  decimal.Decimal      `json:"prixUnitaire" validate:"gte=0"`
	Options       []models.OptionLigne `json:"options,omitempty"`
}

// SousTotal is the unit price times the quantity plus the treatment options.
func (l LigneInput) SousTotal() decimal.Decimal {
	total := l.PrixUnitaire.Mul(decimal.NewFromInt(int64(l.Quantite)))
	for _, option := range l.Options {
		total = total.Add(option.Prix)
	}
	return total
}

// CreateInput is the payload of a new order. Amounts are the ones computed by the order wizard.
type CreateInput struct {
	ClientID            int64           `json:"clientId" validate:"required"`
	AdresseCollecte     string          `json:"adresseCollecte" validate:"required"`
	DistanceCollecte    decimal.Decimal `json:"distanceCollecte" validate:"gte=0"`
	DateCollecte        types.Date      `json:"dateCollecte" validate:"required"`
	CreneauCollecteID   int64           `json:"creneauCollecteId" validate:"required"`
	AdresseLivraison    string          `json:"adresseLivraison" validate:"required"`
	DistanceLivraison   decimal.Decimal `json:"distanceLivraison" validate:"gte=0"`
	DelaiLivraisonID    int64           `json:"delaiLivraisonId" validate:"required"`
	DateLivraisonPrevue types.Date      `json:"dateLivraisonPrevue"`
	CodePromo           string          `json:"codePromo,omitempty"`
	Notes               string          `json:"notes,omitempty" validate:"max=1000"`
	Lignes              []LigneInput    `json:"lignes" validate:"min=1,dive"`
	MontantSousTotal    decimal.Decimal `json:"montantSousTotal"`
	FraisLivraison      decimal.Decimal `json:"fraisLivraison"`
	MontantRemise       decimal.Decimal `json:"montantRemise"`
	MontantTotal        decimal.Decimal `json:"montantTotal"`
}

func (i CreateInput) Validate() validation.Violations {
	return validation.Struct(i)
}

// UpdateInput edits the logistics details of an existing order. Nil fields are left unchanged.
type UpdateInput struct {
	AdresseCollecte   *string     `json:"adresseCollecte,omitempty" validate:"omitempty,min=1"`
	AdresseLivraison  *string     `json:"adresseLivraison,omitempty" validate:"omitempty,min=1"`
	DateCollecte      *types.Date `json:"dateCollecte,omitempty"`
	CreneauCollecteID *int64      `json:"creneauCollecteId,omitempty"`
	DelaiLivraisonID  *int64      `json:"delaiLivraisonId,omitempty"`
	Notes             *string     `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

func (i UpdateInput) Validate() validation.Violations {
	return validation.Struct(i)
}

// StatusInput moves an order to another status.
type StatusInput struct {
	StatutID    int64  `json:"statutId" validate:"required"`
	Commentaire string `json:"commentaire,omitempty" validate:"max=500"`
}

type service struct {
	api apiclient.Requester
}

// NewService wires the orders service.
func NewService(api apiclient.Requester) (Service, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "api client required")
	}
	return &service{api: api}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*pagination.Page[models.Commande], error) {
	return apiclient.GetPage[models.Commande](ctx, s.api, basePath, params)
}

func (s *service) Get(ctx context.Context, id int64) (*models.Commande, error) {
	order, err := apiclient.GetData[models.Commande](ctx, s.api, apiclient.Path(basePath, id))
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Commande, error) {
	input.CodePromo = strings.ToUpper(strings.TrimSpace(input.CodePromo))
	env, err := s.api.Post(ctx, basePath, input)
	if err != nil {
		return nil, err
	}
	order, err := apiclient.DecodeData[models.Commande](env)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateInput) (*models.Commande, error) {
	env, err := s.api.Put(ctx, apiclient.Path(basePath, id), input)
	if err != nil {
		return nil, err
	}
	return s.orderOrFetch(ctx, id, env)
}

func (s *service) ChangeStatus(ctx context.Context, id int64, input StatusInput) (*models.Commande, error) {
	if input.StatutID <= 0 {
		return nil, validation.Violations{"statutId": "Ce champ est requis"}.Err()
	}
	env, err := s.api.Patch(ctx, apiclient.Path(basePath, id, "statut"), input)
	if err != nil {
		return nil, err
	}
	return s.orderOrFetch(ctx, id, env)
}

func (s *service) Archive(ctx context.Context, id int64) error {
	_, err := s.api.Patch(ctx, apiclient.Path(basePath, id, "archive"), nil)
	return err
}

func (s *service) Restore(ctx context.Context, id int64) error {
	_, err := s.api.Patch(ctx, apiclient.Path(basePath, id, "restore"), nil)
	return err
}

func (s *service) ListStatuses(ctx context.Context) ([]models.Statut, error) {
	page, err := apiclient.GetList[models.Statut](ctx, s.api, statusesPath)
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}

func (s *service) orderOrFetch(ctx context.Context, id int64, env *apiclient.Envelope) (*models.Commande, error) {
	if env != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		order, err := apiclient.DecodeData[models.Commande](env)
		if err != nil {
			return nil, err
		}
		return &order, nil
	}
	return s.Get(ctx, id)
}
