package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const actorKey contextKey = "actor"

// requireActor resolves the acting party from the X-Actor-ID header set by the
// fronting auth layer. Authentication itself happens upstream; the engine only
// needs an explicit identity on every call.
func requireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-Actor-ID")
		if raw == "" {
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing X-Actor-ID header")
			return
		}
		actorID, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid X-Actor-ID header")
			return
		}
		ctx := context.WithValue(r.Context(), actorKey, actorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func actorFromContext(ctx context.Context) (uuid.UUID, bool) {
	actorID, ok := ctx.Value(actorKey).(uuid.UUID)
	return actorID, ok
}
