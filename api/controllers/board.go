package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/pressing-admin/api/responses"
	"github.com/angelmondragon/pressing-admin/internal/board"
	"github.com/angelmondragon/pressing-admin/pkg/logger"
)

// BoardSnapshot returns the last refreshed day board. ?refresh=true reloads it first.
func BoardSnapshot(b *board.Board, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("refresh") == "true" {
			if err := b.Refresh(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		responses.WriteSuccess(w, b.Snapshot())
	}
}

// BoardOverview returns the dashboard counters.
func BoardOverview(src board.Sources, now func() time.Time, logg *logger.Logger) http.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := board.Overview(r.Context(), src, now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, counts)
	}
}
