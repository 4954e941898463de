package controllers

import (
	"net/http"

	"github.com/angelmondragon/pressing-admin/api/responses"
	"github.com/angelmondragon/pressing-admin/api/validators"
	"github.com/angelmondragon/pressing-admin/internal/notifications"
	"github.com/angelmondragon/pressing-admin/pkg/logger"
	"github.com/angelmondragon/pressing-admin/pkg/models"
)

const maxLiveNotifications = 50

// LiveFeed is the in-memory view of notifications pushed over the socket.
type LiveFeed interface {
	Recent(limit int) []models.Notification
	Unread() int
	Connected() bool
	MarkRead(id int64) bool
	MarkAllRead()
}

type liveNotificationsResponse struct {
	Connected bool                  `json:"connected"`
	Unread    int                   `json:"unread"`
	Items     []models.Notification `json:"items"`
}

// ListNotifications returns the paginated notification history from the backend.
func ListNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParseListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// LiveNotifications returns what the socket delivered since startup.
func LiveNotifications(feed LiveFeed, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 20, 1, maxLiveNotifications)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items := feed.Recent(limit)
		if items == nil {
			items = []models.Notification{}
		}
		responses.WriteSuccess(w, liveNotificationsResponse{
			Connected: feed.Connected(),
			Unread:    feed.Unread(),
			Items:     items,
		})
	}
}

// MarkNotificationRead marks one notification read on the backend and in the live feed.
func MarkNotificationRead(svc notifications.Service, feed LiveFeed, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "notificationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.MarkRead(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if feed != nil {
			feed.MarkRead(id)
		}
		responses.WriteNoContent(w)
	}
}

func MarkAllNotificationsRead(svc notifications.Service, feed LiveFeed, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.MarkAllRead(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if feed != nil {
			feed.MarkAllRead()
		}
		responses.WriteNoContent(w)
	}
}
