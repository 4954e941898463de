package clients

import (
	"context"

	"github.com/angelmondragon/pressing-admin/pkg/apiclient"
	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/models"
	"github.com/angelmondragon/pressing-admin/pkg/pagination"
)

const basePath = "/admin/clients"

// Service reads the customer directory.
type Service interface {
	List(ctx context.Context, params pagination.Params) (*pagination.Page[models.Client], error)
	Get(ctx context.Context, id int64) (*models.Client, error)
}

type service struct {
	api apiclient.Requester
}

func NewService(api apiclient.Requester) (Service, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "api client required")
	}
	return &service{api: api}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*pagination.Page[models.Client], error) {
	return apiclient.GetPage[models.Client](ctx, s.api, basePath, params)
}

func (s *service) Get(ctx context.Context, id int64) (*models.Client, error) {
	client, err := apiclient.GetData[models.Client](ctx, s.api, apiclient.Path(basePath, id))
	if err != nil {
		return nil, err
	}
	return &client, nil
}
