package auth

import (
	"net/http"

	"github.com/nikhilarsid/review-service/internal/domain"
	"github.com/nikhilarsid/review-service/pkg/middleware"
)

// IdentityFromRequest builds the caller identity from claims stored by
// middleware.Auth. It reports false for unauthenticated requests.
func IdentityFromRequest(r *http.Request) (domain.Identity, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok || claims.UserID == "" {
		return domain.Identity{}, false
	}
	return domain.Identity{
		UserID:        claims.UserID,
		DisplayName:   DisplayName(claims.Name, claims.Email, claims.UserID),
		Authorization: r.Header.Get("Authorization"),
	}, true
}
