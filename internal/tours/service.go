package tours

import (
	"context"
	"fmt"

	"github.com/angelmondragon/pressing-admin/internal/validation"
	"github.com/angelmondragon/pressing-admin/pkg/apiclient"
	"github.com/angelmondragon/pressing-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/models"
	"github.com/angelmondragon/pressing-admin/pkg/pagination"
	"github.com/angelmondragon/pressing-admin/pkg/types"
)

const basePath = "/admin/tournees"

// Service plans delivery tours and drives their lifecycle.
type Service interface {
	List(ctx context.Context, params pagination.Params) (*pagination.Page[models.Tournee], error)
	Get(ctx context.Context, id int64) (*models.Tournee, error)
	Create(ctx context.Context, input Input) (*models.Tournee, error)
	Update(ctx context.Context, id int64, input Input) (*models.Tournee, error)
	Delete(ctx context.Context, id int64) error
	Demarrer(ctx context.Context, id int64) (*models.Tournee, error)
	Terminer(ctx context.Context, id int64) (*models.Tournee, error)
	Annuler(ctx context.Context, id int64) (*models.Tournee, error)
}

// OperationInput schedules one collection or delivery inside a tour.
type OperationInput struct {
	CommandeID int64               `json:"commandeId" validate:"required"`
	Type       enums.OperationType `json:"type" validate:"required,oneof=collecte livraison"`
	Ordre      int                 `json:"ordre,omitempty" validate:"gte=0"`
	DatePrevue types.Date          `json:"datePrevue"`
}

// Input is the create/update payload of a tour.
type Input struct {
	DateTournee types.Date       `json:"dateTournee" validate:"required"`
	HeureDebut  types.Clock      `json:"heureDebut"`
	HeureFin    types.Clock      `json:"heureFin"`
	LivreurID   int64            `json:"livreurId" validate:"required"`
	Notes       string           `json:"notes,omitempty" validate:"max=1000"`
	Operations  []OperationInput `json:"operations" validate:"min=1,dive"`
}

// Validate applies the tag rules plus the time window and duplicate checks.
func (i Input) Validate() validation.Violations {
	v := validation.Struct(i)
	if !i.HeureDebut.Before(i.HeureFin) {
		v.Add("heureFin", "L'heure de fin doit être postérieure à l'heure de début")
	}
	v.Merge(duplicateOperations(i.Operations))
	return v
}

// duplicateOperations flags every operation repeating an earlier (commande, type) pair.
func duplicateOperations(ops []OperationInput) validation.Violations {
	v := validation.Violations{}
	type key struct {
		commande int64
		kind     enums.OperationType
	}
	seen := map[key]int{}
	for i, op := range ops {
		k := key{op.CommandeID, op.Type}
		if first, ok := seen[k]; ok {
			v.Add(fmt.Sprintf("operations[%d]", i), fmt.Sprintf("Doublon de l'opération %d", first+1))
			continue
		}
		seen[k] = i
	}
	return v
}

type service struct {
	api apiclient.Requester
}

// NewService wires the tours service.
func NewService(api apiclient.Requester) (Service, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "api client required")
	}
	return &service{api: api}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*pagination.Page[models.Tournee], error) {
	return apiclient.GetPage[models.Tournee](ctx, s.api, basePath, params)
}

func (s *service) Get(ctx context.Context, id int64) (*models.Tournee, error) {
	tour, err := apiclient.GetData[models.Tournee](ctx, s.api, apiclient.Path(basePath, id))
	if err != nil {
		return nil, err
	}
	return &tour, nil
}

func (s *service) Create(ctx context.Context, input Input) (*models.Tournee, error) {
	env, err := s.api.Post(ctx, basePath, input)
	if err != nil {
		return nil, err
	}
	tour, err := apiclient.DecodeData[models.Tournee](env)
	if err != nil {
		return nil, err
	}
	return &tour, nil
}

func (s *service) Update(ctx context.Context, id int64, input Input) (*models.Tournee, error) {
	env, err := s.api.Put(ctx, apiclient.Path(basePath, id), input)
	if err != nil {
		return nil, err
	}
	return s.tourOrFetch(ctx, id, env)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	_, err := s.api.Delete(ctx, apiclient.Path(basePath, id))
	return err
}

func (s *service) Demarrer(ctx context.Context, id int64) (*models.Tournee, error) {
	return s.transition(ctx, id, enums.TourStatusEnCours, "demarrer")
}

func (s *service) Terminer(ctx context.Context, id int64) (*models.Tournee, error) {
	return s.transition(ctx, id, enums.TourStatusTerminee, "terminer")
}

func (s *service) Annuler(ctx context.Context, id int64) (*models.Tournee, error) {
	return s.transition(ctx, id, enums.TourStatusAnnulee, "annuler")
}

// transition fetches the tour and only calls the backend when the move is allowed from its
// current status.
func (s *service) transition(ctx context.Context, id int64, next enums.TourStatus, action string) (*models.Tournee, error) {
	tour, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tour.Statut.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot %s a tour that is %s", action, tour.Statut)).
			WithDetails(map[string]any{"statut": tour.Statut, "cible": next})
	}
	env, err := s.api.Patch(ctx, apiclient.Path(basePath, id, action), nil)
	if err != nil {
		return nil, err
	}
	return s.tourOrFetch(ctx, id, env)
}

func (s *service) tourOrFetch(ctx context.Context, id int64, env *apiclient.Envelope) (*models.Tournee, error) {
	if env != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		tour, err := apiclient.DecodeData[models.Tournee](env)
		if err != nil {
			return nil, err
		}
		return &tour, nil
	}
	return s.Get(ctx, id)
}
