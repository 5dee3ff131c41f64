package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"shopcore/pkg/model"
)

// Identity is the caller as resolved by the upstream auth gateway. This
// service trusts the gateway's headers and does not verify tokens itself.
type Identity struct {
	UserID uuid.UUID
	Role   model.Role
}

type identityKeyType struct{}

var identityKey identityKeyType

// ResolveIdentity extracts X-User-Id and X-User-Role set by the gateway. An
// unknown or missing role downgrades to the non-privileged one; a missing or
// malformed user id leaves the request anonymous.
func ResolveIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(r.Header.Get("X-User-Id"))
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		role, ok := model.ParseRole(r.Header.Get("X-User-Role"))
		if !ok {
			role = model.RoleUser
		}

		ctx := context.WithValue(r.Context(), identityKey, Identity{UserID: userID, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
