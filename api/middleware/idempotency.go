package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/angelmondragon/pressing-admin/api/responses"
	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/logger"
	pkgredis "github.com/angelmondragon/pressing-admin/pkg/redis"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	// ReplayedHeader marks a response served from the idempotency store.
	ReplayedHeader = "Idempotent-Replayed"

	defaultIdempotencyTTL  = 24 * time.Hour
	criticalIdempotencyTTL = 7 * 24 * time.Hour
)

// IdempotencyStore persists replayable responses.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (string, error)
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	IdempotencyKey(scope, key string) string
}

// replayableRoutes lists the submissions that create backend records, as path.Match patterns.
var replayableRoutes = []struct {
	pattern string
	ttl     time.Duration
}{
	{"/api/dashboard/orders", defaultIdempotencyTTL},
	{"/api/dashboard/tours", defaultIdempotencyTTL},
	{"/api/dashboard/promotions", defaultIdempotencyTTL},
	{"/api/dashboard/tariffs", defaultIdempotencyTTL},
	{"/api/dashboard/operations/*/proofs", defaultIdempotencyTTL},
	{"/api/dashboard/wizards/*/*/submit", defaultIdempotencyTTL},
	{"/api/dashboard/payments", criticalIdempotencyTTL},
	{"/api/dashboard/payments/*/rembourser", criticalIdempotencyTTL},
}

// replayedResponse is what the store keeps per key. Body is base64 in JSON.
type replayedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType,omitempty"`
	Body        []byte `json:"body"`
	Fingerprint string `json:"fingerprint"`
}

// Idempotency replays the stored response of a repeated POST carrying the same Idempotency-Key
// from the same operator. Requests without the header, or on other routes, pass through. A key
// reused with a different body is a CONFLICT. 5xx responses are not stored so they can be retried.
func Idempotency(store IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
			ttl, replayable := routeTTL(r.Method, strings.TrimRight(r.URL.Path, "/"))
			if store == nil || key == "" || !replayable {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			storeKey := store.IdempotencyKey(UserIDFromContext(ctx)+"|"+r.URL.Path, key)
			fingerprint := fingerprintBody(body)

			stored, err := lookupResponse(ctx, store, storeKey)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if stored != nil {
				if stored.Fingerprint != fingerprint {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "idempotency key reused with a different request body").
						WithDetails(map[string]any{"idempotencyKey": key}))
					return
				}
				stored.write(w)
				return
			}

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)
			status := capture.statusCode()
			if status >= http.StatusInternalServerError {
				return
			}

			payload, err := json.Marshal(replayedResponse{
				Status:      status,
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
				Fingerprint: fingerprint,
			})
			if err == nil {
				_, err = store.SetNX(ctx, storeKey, string(payload), ttl)
			}
			if err != nil {
				logg.Error(logg.WithField(ctx, "idempotency_key", key), "storing idempotent response failed", err)
			}
		})
	}
}

func routeTTL(method, urlPath string) (time.Duration, bool) {
	if method != http.MethodPost || urlPath == "" {
		return 0, false
	}
	for _, route := range replayableRoutes {
		if ok, _ := path.Match(route.pattern, urlPath); ok {
			return route.ttl, true
		}
	}
	return 0, false
}

func lookupResponse(ctx context.Context, store IdempotencyStore, key string) (*replayedResponse, error) {
	raw, err := store.Get(ctx, key)
	switch {
	case errors.Is(err, pkgredis.ErrNotFound):
		return nil, nil
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency key")
	case raw == "":
		return nil, nil
	}
	var stored replayedResponse
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotent response")
	}
	return &stored, nil
}

func (s *replayedResponse) write(w http.ResponseWriter) {
	if s.ContentType != "" {
		w.Header().Set("Content-Type", s.ContentType)
	}
	w.Header().Set(ReplayedHeader, "true")
	w.WriteHeader(s.Status)
	_, _ = w.Write(s.Body)
}

func fingerprintBody(body []byte) string {
	sum := sha256.Sum256(bytes.TrimSpace(body))
	return hex.EncodeToString(sum[:])
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *responseCapture) statusCode() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}
