package promotions

import (
	"context"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pressing-admin/internal/resource"
	"github.com/angelmondragon/pressing-admin/internal/validation"
	"github.com/angelmondragon/pressing-admin/pkg/apiclient"
	"github.com/angelmondragon/pressing-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/models"
	"github.com/angelmondragon/pressing-admin/pkg/pagination"
	"github.com/angelmondragon/pressing-admin/pkg/types"
)

const (
	adminPath  = "/admin/promotions"
	publicPath = "/promotions/code"
)

var (
	codePattern   = regexp.MustCompile(`^[A-Z0-9_-]{3,30}$`)
	maxPercentage = decimal.NewFromInt(100)
)

// Service manages discount codes.
type Service interface {
	List(ctx context.Context, params pagination.Params) (*pagination.Page[models.Promotion], error)
	Get(ctx context.Context, id int64) (*models.Promotion, error)
	GetByCode(ctx context.Context, code string) (*models.Promotion, error)
	Create(ctx context.Context, input Input) (*models.Promotion, error)
	Update(ctx context.Context, id int64, input Input) (*models.Promotion, error)
	Delete(ctx context.Context, id int64) error
	ToggleActive(ctx context.Context, id int64) (*models.Promotion, error)
	Archive(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
}

// Input is the create/update payload of a promotion.
type Input struct {
	Code                       string              `json:"code" validate:"required"`
	Description                string              `json:"description,omitempty" validate:"max=500"`
	TypeReduction              enums.ReductionType `json:"typeReduction" validate:"required,oneof=pourcentage montant_fixe"`
	ValeurReduction            decimal.Decimal     `json:"valeurReduction" validate:"gt=0"`
	MontantMinimum             *decimal.Decimal    `json:"montantMinimum,omitempty"`
	DateDebut                  types.Date          `json:"dateDebut" validate:"required"`
	DateFin                    types.Date          `json:"dateFin" validate:"required"`
	UtilisationsMax            *int                `json:"utilisationsMax,omitempty" validate:"omitempty,gte=1"`
	EstCumulable               bool                `json:"estCumulable"`
	PremiereCommandeUniquement bool                `json:"premiereCommandeUniquement"`
	EstActif                   bool                `json:"estActif"`
}

// Normalize upper-cases and trims the code.
func (i Input) Normalize() Input {
	i.Code = strings.ToUpper(strings.TrimSpace(i.Code))
	return i
}

// Validate applies the form rules checked before saving.
func (i Input) Validate() validation.Violations {
	i = i.Normalize()
	v := validation.Struct(i)
	if i.Code != "" && !codePattern.MatchString(i.Code) {
		v.Add("code", "Le code doit contenir 3 à 30 caractères parmi A-Z, 0-9, _ et -")
	}
	if i.TypeReduction == enums.ReductionTypePourcentage && i.ValeurReduction.GreaterThan(maxPercentage) {
		v.Add("valeurReduction", "Une réduction en pourcentage ne peut pas dépasser 100")
	}
	if !i.DateDebut.IsZero() && !i.DateFin.IsZero() && !i.DateDebut.Before(i.DateFin) {
		v.Add("dateFin", "La date de fin doit être postérieure à la date de début")
	}
	if i.MontantMinimum != nil && i.MontantMinimum.IsNegative() {
		v.Add("montantMinimum", "Doit être supérieur ou égal à 0")
	}
	return v
}

type service struct {
	api       apiclient.Requester
	resources *resource.Resource[models.Promotion, Input]
}

// NewService wires the promotions service.
func NewService(api apiclient.Requester) (Service, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "api client required")
	}
	res, err := resource.New[models.Promotion, Input](api, adminPath, "")
	if err != nil {
		return nil, err
	}
	return &service{api: api, resources: res}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*pagination.Page[models.Promotion], error) {
	return s.resources.List(ctx, params)
}

func (s *service) Get(ctx context.Context, id int64) (*models.Promotion, error) {
	return s.resources.Get(ctx, id)
}

// GetByCode looks a code up on the public endpoint used when an order is entered.
func (s *service) GetByCode(ctx context.Context, code string) (*models.Promotion, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promotion code required")
	}
	promo, err := apiclient.GetData[models.Promotion](ctx, s.api, apiclient.PathOf(publicPath, code))
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

func (s *service) Create(ctx context.Context, input Input) (*models.Promotion, error) {
	return s.resources.Create(ctx, input.Normalize())
}

func (s *service) Update(ctx context.Context, id int64, input Input) (*models.Promotion, error) {
	return s.resources.Update(ctx, id, input.Normalize())
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.resources.Delete(ctx, id)
}

func (s *service) ToggleActive(ctx context.Context, id int64) (*models.Promotion, error) {
	return s.resources.ToggleActive(ctx, id)
}

func (s *service) Archive(ctx context.Context, id int64) error {
	return s.resources.Archive(ctx, id)
}

func (s *service) Restore(ctx context.Context, id int64) error {
	return s.resources.Restore(ctx, id)
}
