package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/angelmondragon/pressing-admin/api/responses"
	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/logger"
	"github.com/angelmondragon/pressing-admin/pkg/session"
)

// SessionReader is the part of the operator session the middleware reads.
type SessionReader interface {
	Token(ctx context.Context) (string, error)
	Claims(ctx context.Context) (*session.Claims, error)
}

// LoginRoute tags every request with the login redirect reported on UNAUTHORIZED errors.
func LoginRoute(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(responses.WithLoginRoute(r.Context(), route)))
		})
	}
}

// RequireSession rejects requests while no backend token is stored and seeds the context with
// the operator claims when the token is a JWT.
func RequireSession(sess SessionReader, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sess == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session unavailable"))
				return
			}
			token, err := sess.Token(r.Context())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session"))
				return
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "not signed in"))
				return
			}

			ctx := r.Context()
			claims, err := sess.Claims(ctx)
			switch {
			case err == nil:
				userID := ""
				if claims.UserID != nil {
					userID = fmt.Sprint(claims.UserID)
				}
				ctx = context.WithValue(ctx, ctxUserID, userID)
				ctx = context.WithValue(ctx, ctxRole, claims.Role)
				if logg != nil {
					ctx = logg.WithFields(ctx, map[string]any{
						"user_id":       userID,
						"operator_role": claims.Role,
					})
				}
			case errors.Is(err, session.ErrOpaqueToken):
			default:
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read session claims"))
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
