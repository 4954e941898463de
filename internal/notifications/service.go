// Package notifications covers operator notifications: the REST inbox, the live socket channel
// and the in-memory feed fed by it.
package notifications

import (
	"context"

	"github.com/angelmondragon/pressing-admin/pkg/apiclient"
	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/models"
	"github.com/angelmondragon/pressing-admin/pkg/pagination"
)

const basePath = "/notifications"

// Service is the REST side of notifications.
type Service interface {
	List(ctx context.Context, params pagination.Params) (*pagination.Page[models.Notification], error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context) error
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

func (s *service) List(ctx context.Context, params pagination.Params) (*pagination.Page[models.Notification], error) {
	return apiclient.GetPage[models.Notification](ctx, s.api, basePath, params)
}

func (s *service) MarkRead(ctx context.Context, id int64) error {
	_, err := s.api.Patch(ctx, apiclient.Path(basePath, id, "lu"), nil)
	return err
}

func (s *service) MarkAllRead(ctx context.Context) error {
	_, err := s.api.Patch(ctx, basePath+"/lu", nil)
	return err
}
