package operations

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/angelmondragon/pressing-admin/internal/validation"
	"github.com/angelmondragon/pressing-admin/pkg/apiclient"
	"github.com/angelmondragon/pressing-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/models"
	"github.com/angelmondragon/pressing-admin/pkg/pagination"
)

const (
	basePath   = "/admin/operations-logistiques"
	proofField = "preuve"
	// MaxProofSize bounds uploaded proof files.
	MaxProofSize = 5 << 20
)

var allowedProofTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
	"application/pdf": {},
}

// Service tracks collections and deliveries and their proofs.
type Service interface {
	List(ctx context.Context, params pagination.Params) (*pagination.Page[models.OperationLogistique], error)
	Get(ctx context.Context, id int64) (*models.OperationLogistique, error)
	ChangeStatus(ctx context.Context, id int64, input StatusInput) (*models.OperationLogistique, error)
	ListProofs(ctx context.Context, id int64) ([]models.Preuve, error)
	AddProof(ctx context.Context, id int64, proof Proof) (*models.Preuve, error)
}

// StatusInput updates an operation's status.
type StatusInput struct {
	Statut      enums.OperationStatus `json:"statut" validate:"required,oneof=planifiee en_cours effectuee echouee annulee"`
	Commentaire string                `json:"commentaire,omitempty" validate:"max=500"`
}

func (i StatusInput) Validate() validation.Violations {
	return validation.Struct(i)
}

// Proof is a file attached to a completed operation.
type Proof struct {
	Filename    string
	ContentType string
	Content     []byte
	Description string
}

// Validate checks size and type before any network call.
func (p Proof) Validate() validation.Violations {
	v := validation.Violations{}
	if len(p.Content) == 0 {
		v.Add(proofField, "Un fichier est requis")
		return v
	}
	if len(p.Content) > MaxProofSize {
		v.Add(proofField, fmt.Sprintf("Le fichier dépasse %d Mo", MaxProofSize>>20))
	}
	if _, ok := allowedProofTypes[p.contentType()]; !ok {
		v.Add(proofField, "Formats acceptés: JPEG, PNG, WebP, PDF")
	}
	return v
}

func (p Proof) contentType() string {
	if ct := strings.TrimSpace(p.ContentType); ct != "" {
		return strings.ToLower(strings.SplitN(ct, ";", 2)[0])
	}
	return strings.SplitN(http.DetectContentType(p.Content), ";", 2)[0]
}

type service struct {
	api apiclient.Requester
}

// NewService wires the logistics operations service.
func NewService(api apiclient.Requester) (Service, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "api client required")
	}
	return &service{api: api}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*pagination.Page[models.OperationLogistique], error) {
	return apiclient.GetPage[models.OperationLogistique](ctx, s.api, basePath, params)
}

func (s *service) Get(ctx context.Context, id int64) (*models.OperationLogistique, error) {
	op, err := apiclient.GetData[models.OperationLogistique](ctx, s.api, apiclient.Path(basePath, id))
	if err != nil {
		return nil, err
	}
	return &op, nil
}

func (s *service) ChangeStatus(ctx context.Context, id int64, input StatusInput) (*models.OperationLogistique, error) {
	if v := input.Validate(); !v.Empty() {
		return nil, v.Err()
	}
	env, err := s.api.Patch(ctx, apiclient.Path(basePath, id, "statut"), input)
	if err != nil {
		return nil, err
	}
	if env != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		op, err := apiclient.DecodeData[models.OperationLogistique](env)
		if err != nil {
			return nil, err
		}
		return &op, nil
	}
	return s.Get(ctx, id)
}

func (s *service) ListProofs(ctx context.Context, id int64) ([]models.Preuve, error) {
	page, err := apiclient.GetList[models.Preuve](ctx, s.api, apiclient.Path(basePath, id, "preuves"))
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}

// AddProof uploads a proof file. Proofs are only accepted once the operation is effectuee.
func (s *service) AddProof(ctx context.Context, id int64, proof Proof) (*models.Preuve, error) {
	if v := proof.Validate(); !v.Empty() {
		return nil, v.Err()
	}
	op, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !op.Statut.AcceptsProofs() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "proofs can only be added to a completed operation").
			WithDetails(map[string]any{"statut": op.Statut})
	}
	upload := apiclient.Upload{
		Field:       proofField,
		Filename:    proof.Filename,
		ContentType: proof.contentType(),
		Content:     proof.Content,
	}
	if proof.Description != "" {
		upload.Fields = map[string]string{"description": proof.Description}
	}
	env, err := s.api.Upload(ctx, apiclient.Path(basePath, id, "preuves"), upload)
	if err != nil {
		return nil, err
	}
	saved, err := apiclient.DecodeData[models.Preuve](env)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}
