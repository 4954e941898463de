package payments

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pressing-admin/internal/validation"
	"github.com/angelmondragon/pressing-admin/pkg/apiclient"
	"github.com/angelmondragon/pressing-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/models"
	"github.com/angelmondragon/pressing-admin/pkg/pagination"
)

const (
	basePath   = "/admin/paiements"
	ordersPath = "/admin/commandes"
)

// Service records and settles payments.
type Service interface {
	List(ctx context.Context, params pagination.Params) (*pagination.Page[models.Paiement], error)
	ListForOrder(ctx context.Context, orderID int64) ([]models.Paiement, error)
	Get(ctx context.Context, id int64) (*models.Paiement, error)
	Create(ctx context.Context, input CreateInput) (*models.Paiement, error)
	Valider(ctx context.Context, id int64) (*models.Paiement, error)
	Rejeter(ctx context.Context, id int64, motif string) (*models.Paiement, error)
	Rembourser(ctx context.Context, id int64, input RefundInput) (*models.Paiement, error)
}

// CreateInput records a payment against an order.
type CreateInput struct {
	CommandeID   int64               `json:"commandeId" validate:"required"`
	Montant      decimal.Decimal     `json:"montant" validate:"gt=0"`
	Methode      enums.PaymentMethod `json:"methode" validate:"required,oneof=especes carte mobile_money virement"`
	Reference    string              `json:"reference,omitempty" validate:"max=100"`
	DatePaiement *time.Time          `json:"datePaiement,omitempty"`
}

func (i CreateInput) Validate() validation.Violations {
	return validation.Struct(i)
}

// RefundInput refunds part or all of a validated payment.
type RefundInput struct {
	MontantRembourse decimal.Decimal `json:"montantRembourse" validate:"gt=0"`
	Motif            string          `json:"motif,omitempty" validate:"max=500"`
}

// Validate checks the refund against the payment it applies to.
func (i RefundInput) Validate(payment models.Paiement) validation.Violations {
	v := validation.Struct(i)
	if i.MontantRembourse.GreaterThan(payment.Montant) {
		v.Add("montantRembourse", "Le remboursement ne peut pas dépasser le montant payé")
	}
	return v
}

type rejectBody struct {
	Motif string `json:"motif"`
}

type service struct {
	api apiclient.Requester
}

// NewService wires the payments service.
func NewService(api apiclient.Requester) (Service, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "api client required")
	}
	return &service{api: api}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*pagination.Page[models.Paiement], error) {
	return apiclient.GetPage[models.Paiement](ctx, s.api, basePath, params)
}

func (s *service) ListForOrder(ctx context.Context, orderID int64) ([]models.Paiement, error) {
	page, err := apiclient.GetList[models.Paiement](ctx, s.api, apiclient.Path(ordersPath, orderID, "paiements"))
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.Paiement, error) {
	payment, err := apiclient.GetData[models.Paiement](ctx, s.api, apiclient.Path(basePath, id))
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Paiement, error) {
	env, err := s.api.Post(ctx, basePath, input)
	if err != nil {
		return nil, err
	}
	payment, err := apiclient.DecodeData[models.Paiement](env)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *service) Valider(ctx context.Context, id int64) (*models.Paiement, error) {
	env, err := s.api.Patch(ctx, apiclient.Path(basePath, id, "valider"), nil)
	if err != nil {
		return nil, err
	}
	return s.paymentOrFetch(ctx, id, env)
}

func (s *service) Rejeter(ctx context.Context, id int64, motif string) (*models.Paiement, error) {
	motif = strings.TrimSpace(motif)
	if motif == "" {
		return nil, validation.Violations{"motif": "Ce champ est requis"}.Err()
	}
	env, err := s.api.Patch(ctx, apiclient.Path(basePath, id, "rejeter"), rejectBody{Motif: motif})
	if err != nil {
		return nil, err
	}
	return s.paymentOrFetch(ctx, id, env)
}

// Rembourser refunds a validated payment. The payment is fetched first and the refund is refused
// locally when it is not valide, already refunded, or the amount is out of range.
func (s *service) Rembourser(ctx context.Context, id int64, input RefundInput) (*models.Paiement, error) {
	payment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !payment.Refundable() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment cannot be refunded").
			WithDetails(map[string]any{"statut": payment.Statut, "estRembourse": payment.EstRembourse})
	}
	if v := input.Validate(*payment); !v.Empty() {
		return nil, v.Err()
	}
	env, err := s.api.Post(ctx, apiclient.Path(basePath, id, "rembourser"), input)
	if err != nil {
		return nil, err
	}
	return s.paymentOrFetch(ctx, id, env)
}

func (s *service) paymentOrFetch(ctx context.Context, id int64, env *apiclient.Envelope) (*models.Paiement, error) {
	if env != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		payment, err := apiclient.DecodeData[models.Paiement](env)
		if err != nil {
			return nil, err
		}
		return &payment, nil
	}
	return s.Get(ctx, id)
}
